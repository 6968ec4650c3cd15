package service

import (
	"context"

	"github.com/parkgolf/slot-service/internal/entity"
)

// GenerateSlotsRequest expands a game's weekly schedules into dated slots.
type GenerateSlotsRequest struct {
	GameID    int64  `json:"game_id" binding:"required"`
	DateFrom  string `json:"date_from" binding:"required"` // "2006-01-02"
	DateTo    string `json:"date_to" binding:"required"`
	Overwrite bool   `json:"overwrite"`
}

type GenerateSlotsResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
}

type ListSlotsRequest struct {
	GameID        int64
	DateFrom      string
	DateTo        string
	AvailableOnly bool
}

type CreateScheduleRequest struct {
	GameID          int64  `json:"game_id" binding:"required"`
	DayOfWeek       int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime       string `json:"start_time" binding:"required"`
	EndTime         string `json:"end_time" binding:"required"`
	IntervalMinutes int    `json:"interval_minutes" binding:"required,min=1,max=720"`
}

type UpdateScheduleRequest struct {
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	IntervalMinutes *int    `json:"interval_minutes"`
	Active          *bool   `json:"active"`
}

// SlotCache is the read-path cache for slot details. A Get error of any kind
// is treated as a miss.
type SlotCache interface {
	Get(ctx context.Context, id int64) (*entity.Slot, error)
	Set(ctx context.Context, slot *entity.Slot) error
	Invalidate(ctx context.Context, id int64) error
}

// SlotService owns slot generation and the synchronous slot read path.
type SlotService interface {
	GenerateSlots(ctx context.Context, req *GenerateSlotsRequest) (*GenerateSlotsResult, error)
	GetSlot(ctx context.Context, id int64) (*entity.Slot, error)
	ListSlots(ctx context.Context, req *ListSlotsRequest) ([]*entity.Slot, error)
	SetSlotStatus(ctx context.Context, id int64, status entity.SlotStatus) error
}

// CapacityService is the capacity ledger: race-free reserve/release
// accounting on a single slot.
type CapacityService interface {
	// Saga operations, idempotent per booking.
	Reserve(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error)
	Release(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error)

	// Direct capacity adjustments for non-saga callers.
	Book(ctx context.Context, slotID int64, playerCount int) (*entity.Slot, error)
	ReleaseDirect(ctx context.Context, slotID int64, playerCount int) (*entity.Slot, error)
}

// ScheduleService manages the recurring weekly availability rules consumed by
// the generator.
type ScheduleService interface {
	CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*entity.WeeklySchedule, error)
	GetSchedule(ctx context.Context, id int64) (*entity.WeeklySchedule, error)
	GetGameSchedules(ctx context.Context, gameID int64) ([]*entity.WeeklySchedule, error)
	UpdateSchedule(ctx context.Context, id int64, req *UpdateScheduleRequest) (*entity.WeeklySchedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
}
