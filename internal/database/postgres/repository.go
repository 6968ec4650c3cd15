package repository

import (
	"context"
	"time"

	"github.com/parkgolf/slot-service/internal/entity"
)

type SlotRepository interface {
	// Basic operations
	GetByID(ctx context.Context, id int64) (*entity.Slot, error)
	ListByGame(ctx context.Context, gameID int64, from, to time.Time, availableOnly bool) ([]*entity.Slot, error)
	UpdateStatus(ctx context.Context, id int64, status entity.SlotStatus) error

	// Generation operations
	CreateBatch(ctx context.Context, slots []*entity.Slot) (created int, err error)
	DeleteUnbookedInRange(ctx context.Context, gameID int64, from, to time.Time) (int64, error)

	// Capacity operations; each runs as a single transaction holding a row
	// lock on the slot, the sole serialization point for capacity accounting.
	Reserve(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error)
	Release(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error)
	AdjustCapacity(ctx context.Context, slotID int64, delta int) (*entity.Slot, error)

	// Maintenance operations
	CloseBefore(ctx context.Context, date time.Time, batchSize int) (int64, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.WeeklySchedule) error
	GetByID(ctx context.Context, id int64) (*entity.WeeklySchedule, error)
	GetActiveByGame(ctx context.Context, gameID int64) ([]*entity.WeeklySchedule, error)
	Update(ctx context.Context, schedule *entity.WeeklySchedule) error
	Delete(ctx context.Context, id int64) error
}

type GameRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
}
