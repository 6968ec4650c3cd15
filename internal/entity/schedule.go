package entity

import (
	"time"
)

// WeeklySchedule is a recurring weekly availability rule for a game.
// At most one active schedule exists per (game_id, day_of_week).
type WeeklySchedule struct {
	ID              int64     `json:"id" db:"id"`
	GameID          int64     `json:"game_id" db:"game_id"`
	DayOfWeek       int       `json:"day_of_week" db:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	StartTime       string    `json:"start_time" db:"start_time"`   // "HH:MM"
	EndTime         string    `json:"end_time" db:"end_time"`
	IntervalMinutes int       `json:"interval_minutes" db:"interval_minutes"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Game pairs a front-nine and back-nine course into a bookable product.
// Games are administered elsewhere; this service only reads them.
type Game struct {
	ID                int64    `json:"id" db:"id"`
	Name              string   `json:"name" db:"name"`
	BasePrice         float64  `json:"base_price" db:"base_price"`
	WeekendPrice      *float64 `json:"weekend_price,omitempty" db:"weekend_price"`
	MaxPlayers        int      `json:"max_players" db:"max_players"`
	EstimatedDuration int      `json:"estimated_duration" db:"estimated_duration"` // minutes
	Active            bool     `json:"active" db:"active"`
}

// PriceFor returns the slot price for the given date: the weekend price on
// Saturday/Sunday when one is defined, the base price otherwise.
func (g *Game) PriceFor(date time.Time) (price float64, premium bool) {
	wd := date.Weekday()
	weekend := wd == time.Sunday || wd == time.Saturday
	if weekend && g.WeekendPrice != nil {
		return *g.WeekendPrice, true
	}
	return g.BasePrice, weekend
}
