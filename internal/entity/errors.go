package entity

import "errors"

var (
	// Slot errors
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotUnavailable   = errors.New("slot is not available")
	ErrCapacityExceeded  = errors.New("not enough capacity")
	ErrSlotAlreadyExists = errors.New("slot already exists")

	// Schedule errors
	ErrScheduleNotFound  = errors.New("weekly schedule not found")
	ErrScheduleConflict  = errors.New("weekly schedule already exists for this day")
	ErrNoScheduleDefined = errors.New("no schedule defined for game")
	ErrInvalidTimeWindow = errors.New("open time must be earlier than close time")

	// Game errors
	ErrGameNotFound = errors.New("game not found")

	// General errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidDateRange = errors.New("date range start must not be after end")
)
