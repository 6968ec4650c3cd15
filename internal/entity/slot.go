package entity

import (
	"time"
)

type SlotStatus string

const (
	SlotStatusAvailable   SlotStatus = "AVAILABLE"
	SlotStatusFullyBooked SlotStatus = "FULLY_BOOKED"
	SlotStatusClosed      SlotStatus = "CLOSED"
	SlotStatusMaintenance SlotStatus = "MAINTENANCE"
)

// Slot is a concrete, dated, priced, capacity-bounded bookable window for a game.
type Slot struct {
	ID            int64      `json:"id" db:"id"`
	GameID        int64      `json:"game_id" db:"game_id"`
	Date          time.Time  `json:"date" db:"date"`
	StartTime     string     `json:"start_time" db:"start_time"`
	EndTime       string     `json:"end_time" db:"end_time"`
	MaxPlayers    int        `json:"max_players" db:"max_players"`
	BookedPlayers int        `json:"booked_players" db:"booked_players"`
	Price         float64    `json:"price" db:"price"`
	IsPremium     bool       `json:"is_premium" db:"is_premium"`
	Status        SlotStatus `json:"status" db:"status"`
	Active        bool       `json:"active" db:"active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// SlotReservation records the seats a booking holds on a slot, keyed by
// (booking_id, slot_id). It makes reserve/release idempotent per booking.
type SlotReservation struct {
	BookingID   int64     `json:"booking_id" db:"booking_id"`
	SlotID      int64     `json:"slot_id" db:"slot_id"`
	PlayerCount int       `json:"player_count" db:"player_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (s *Slot) AvailableSeats() int {
	return s.MaxPlayers - s.BookedPlayers
}

// ApplyReserve checks availability and adds playerCount to the booked count.
// It must only be called while the slot row is locked; the caller persists
// the mutated fields in the same transaction.
func (s *Slot) ApplyReserve(playerCount int) error {
	if s.Status != SlotStatusAvailable || !s.Active {
		return ErrSlotUnavailable
	}
	if s.AvailableSeats() < playerCount {
		return ErrCapacityExceeded
	}

	s.BookedPlayers += playerCount
	if s.BookedPlayers >= s.MaxPlayers {
		s.Status = SlotStatusFullyBooked
	}
	return nil
}

// ApplyRelease subtracts playerCount from the booked count, clamping at zero
// so a duplicate or over-counted release never drives the count negative.
// CLOSED and MAINTENANCE are administrative overrides and are left untouched.
func (s *Slot) ApplyRelease(playerCount int) {
	s.BookedPlayers -= playerCount
	if s.BookedPlayers < 0 {
		s.BookedPlayers = 0
	}

	if s.Status == SlotStatusFullyBooked && s.BookedPlayers < s.MaxPlayers {
		s.Status = SlotStatusAvailable
	}
}
