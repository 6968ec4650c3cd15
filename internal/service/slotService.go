package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	repository "github.com/parkgolf/slot-service/internal/database/postgres"
	"github.com/parkgolf/slot-service/internal/entity"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type slotService struct {
	slotRepo     repository.SlotRepository
	scheduleRepo repository.ScheduleRepository
	gameRepo     repository.GameRepository
	cache        SlotCache
	readTimeout  time.Duration
}

// NewSlotService creates a new SlotService. The cache may be nil; readTimeout
// bounds the synchronous slot lookup.
func NewSlotService(
	slotRepo repository.SlotRepository,
	scheduleRepo repository.ScheduleRepository,
	gameRepo repository.GameRepository,
	cache SlotCache,
	readTimeout time.Duration,
) SlotService {
	if readTimeout <= 0 {
		readTimeout = 5 * time.Second
	}
	return &slotService{
		slotRepo:     slotRepo,
		scheduleRepo: scheduleRepo,
		gameRepo:     gameRepo,
		cache:        cache,
		readTimeout:  readTimeout,
	}
}

// GenerateSlots expands the game's active weekly schedules into dated slots
// over [DateFrom, DateTo]. Existing (game, date, start_time) rows are skipped,
// which makes re-running the same range idempotent. With Overwrite set,
// unbooked slots in range are deleted first; slots holding reservations are
// never deleted.
func (s *slotService) GenerateSlots(ctx context.Context, req *GenerateSlotsRequest) (*GenerateSlotsResult, error) {
	from, err := time.Parse(dateLayout, req.DateFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date_from %q", entity.ErrInvalidInput, req.DateFrom)
	}
	to, err := time.Parse(dateLayout, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date_to %q", entity.ErrInvalidInput, req.DateTo)
	}
	if from.After(to) {
		return nil, entity.ErrInvalidDateRange
	}

	game, err := s.gameRepo.GetByID(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %d: %w", req.GameID, err)
	}

	schedules, err := s.scheduleRepo.GetActiveByGame(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules for game %d: %w", req.GameID, err)
	}
	if len(schedules) == 0 {
		return nil, entity.ErrNoScheduleDefined
	}

	byWeekday := make(map[int]*entity.WeeklySchedule, len(schedules))
	for _, schedule := range schedules {
		byWeekday[schedule.DayOfWeek] = schedule
	}

	var candidates []*entity.Slot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		schedule, ok := byWeekday[int(d.Weekday())]
		if !ok {
			continue
		}

		windows, err := expandWindow(schedule.StartTime, schedule.EndTime, schedule.IntervalMinutes, game.EstimatedDuration)
		if err != nil {
			logrus.Warnf("Skipping schedule %d with bad window: %v", schedule.ID, err)
			continue
		}

		price, premium := game.PriceFor(d)
		for _, w := range windows {
			candidates = append(candidates, &entity.Slot{
				GameID:        req.GameID,
				Date:          d,
				StartTime:     w.start,
				EndTime:       w.end,
				MaxPlayers:    game.MaxPlayers,
				BookedPlayers: 0,
				Price:         price,
				IsPremium:     premium,
				Status:        entity.SlotStatusAvailable,
				Active:        true,
			})
		}
	}

	result := &GenerateSlotsResult{}

	if req.Overwrite {
		deleted, err := s.slotRepo.DeleteUnbookedInRange(ctx, req.GameID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to clear slots in range: %w", err)
		}
		result.Deleted = int(deleted)
	}

	created, err := s.slotRepo.CreateBatch(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to create slots: %w", err)
	}

	result.Created = created
	result.Skipped = len(candidates) - created

	logrus.Infof("Generated slots for game %d [%s..%s]: created=%d skipped=%d deleted=%d",
		req.GameID, req.DateFrom, req.DateTo, result.Created, result.Skipped, result.Deleted)

	return result, nil
}

// GetSlot fetches slot details with a bounded wait, consulting the cache
// first. Cache errors are treated as misses.
func (s *slotService) GetSlot(ctx context.Context, id int64) (*entity.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	if s.cache != nil {
		if slot, err := s.cache.Get(ctx, id); err == nil {
			return slot, nil
		}
	}

	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, slot); err != nil {
			logrus.Warnf("Failed to cache slot %d: %v", id, err)
		}
	}

	return slot, nil
}

func (s *slotService) ListSlots(ctx context.Context, req *ListSlotsRequest) ([]*entity.Slot, error) {
	from, err := time.Parse(dateLayout, req.DateFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date_from %q", entity.ErrInvalidInput, req.DateFrom)
	}
	to, err := time.Parse(dateLayout, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date_to %q", entity.ErrInvalidInput, req.DateTo)
	}
	if from.After(to) {
		return nil, entity.ErrInvalidDateRange
	}

	return s.slotRepo.ListByGame(ctx, req.GameID, from, to, req.AvailableOnly)
}

// SetSlotStatus applies an administrative status override (CLOSED or
// MAINTENANCE, or reopening to AVAILABLE).
func (s *slotService) SetSlotStatus(ctx context.Context, id int64, status entity.SlotStatus) error {
	switch status {
	case entity.SlotStatusAvailable, entity.SlotStatusClosed, entity.SlotStatusMaintenance:
	default:
		return fmt.Errorf("%w: status %q cannot be set directly", entity.ErrInvalidInput, status)
	}

	if err := s.slotRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			logrus.Warnf("Failed to invalidate slot %d in cache: %v", id, err)
		}
	}

	return nil
}

type slotWindow struct {
	start string
	end   string
}

// expandWindow emits slot windows starting at startTime, stepping by interval
// minutes, each spanning duration minutes; the last slot is the one whose end
// still fits inside the schedule window.
func expandWindow(startTime, endTime string, interval, duration int) ([]slotWindow, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, entity.ErrInvalidTimeWindow
	}
	if interval <= 0 || duration <= 0 {
		return nil, fmt.Errorf("%w: interval and duration must be positive", entity.ErrInvalidInput)
	}

	var windows []slotWindow
	for cur := start; cur+duration <= end; cur += interval {
		windows = append(windows, slotWindow{
			start: formatClock(cur),
			end:   formatClock(cur + duration),
		})
	}

	return windows, nil
}

func parseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: bad time %q", entity.ErrInvalidInput, value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: bad hour in %q", entity.ErrInvalidInput, value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", entity.ErrInvalidInput, value)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}
