package service

import (
	"context"
	"fmt"

	repository "github.com/parkgolf/slot-service/internal/database/postgres"
	"github.com/parkgolf/slot-service/internal/entity"

	"github.com/sirupsen/logrus"
)

type capacityService struct {
	slotRepo repository.SlotRepository
	cache    SlotCache
}

// NewCapacityService creates the capacity ledger. All mutations funnel
// through the repository's locked row operations; this layer adds validation,
// cache invalidation and logging.
func NewCapacityService(slotRepo repository.SlotRepository, cache SlotCache) CapacityService {
	return &capacityService{slotRepo: slotRepo, cache: cache}
}

func (s *capacityService) Reserve(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	if playerCount <= 0 {
		return nil, fmt.Errorf("%w: player count must be positive", entity.ErrInvalidInput)
	}

	slot, err := s.slotRepo.Reserve(ctx, bookingID, slotID, playerCount)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, slotID)
	logrus.Infof("Reserved %d seats on slot %d for booking %d (booked=%d/%d, status=%s)",
		playerCount, slotID, bookingID, slot.BookedPlayers, slot.MaxPlayers, slot.Status)

	return slot, nil
}

func (s *capacityService) Release(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	if playerCount <= 0 {
		return nil, fmt.Errorf("%w: player count must be positive", entity.ErrInvalidInput)
	}

	slot, err := s.slotRepo.Release(ctx, bookingID, slotID, playerCount)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, slotID)
	logrus.Infof("Released seats on slot %d for booking %d (booked=%d/%d, status=%s)",
		slotID, bookingID, slot.BookedPlayers, slot.MaxPlayers, slot.Status)

	return slot, nil
}

func (s *capacityService) Book(ctx context.Context, slotID int64, playerCount int) (*entity.Slot, error) {
	if playerCount <= 0 {
		return nil, fmt.Errorf("%w: player count must be positive", entity.ErrInvalidInput)
	}

	slot, err := s.slotRepo.AdjustCapacity(ctx, slotID, playerCount)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, slotID)
	return slot, nil
}

func (s *capacityService) ReleaseDirect(ctx context.Context, slotID int64, playerCount int) (*entity.Slot, error) {
	if playerCount <= 0 {
		return nil, fmt.Errorf("%w: player count must be positive", entity.ErrInvalidInput)
	}

	slot, err := s.slotRepo.AdjustCapacity(ctx, slotID, -playerCount)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, slotID)
	return slot, nil
}

func (s *capacityService) invalidate(ctx context.Context, slotID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, slotID); err != nil {
		logrus.Warnf("Failed to invalidate slot %d in cache: %v", slotID, err)
	}
}
