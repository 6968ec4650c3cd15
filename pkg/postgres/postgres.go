package postgres

import (
	"database/sql"
	"fmt"

	"github.com/parkgolf/slot-service/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			base_price NUMERIC(10,2) NOT NULL,
			weekend_price NUMERIC(10,2),
			max_players INTEGER NOT NULL,
			estimated_duration INTEGER NOT NULL,
			active BOOLEAN DEFAULT true
		)`,

		`CREATE TABLE IF NOT EXISTS weekly_schedules (
			id SERIAL PRIMARY KEY,
			game_id INTEGER REFERENCES games(id),
			day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
			start_time VARCHAR(5) NOT NULL,
			end_time VARCHAR(5) NOT NULL,
			interval_minutes INTEGER NOT NULL,
			active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (game_id, day_of_week)
		)`,

		`CREATE TABLE IF NOT EXISTS game_time_slots (
			id SERIAL PRIMARY KEY,
			game_id INTEGER REFERENCES games(id),
			date DATE NOT NULL,
			start_time VARCHAR(5) NOT NULL,
			end_time VARCHAR(5) NOT NULL,
			max_players INTEGER NOT NULL,
			booked_players INTEGER NOT NULL DEFAULT 0,
			price NUMERIC(10,2) NOT NULL,
			is_premium BOOLEAN DEFAULT false,
			status VARCHAR(20) DEFAULT 'AVAILABLE',
			active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (game_id, date, start_time),
			CHECK (booked_players >= 0 AND booked_players <= max_players)
		)`,

		`CREATE TABLE IF NOT EXISTS slot_reservations (
			booking_id BIGINT NOT NULL,
			slot_id INTEGER REFERENCES game_time_slots(id) ON DELETE CASCADE,
			player_count INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (booking_id, slot_id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_slots_game_date ON game_time_slots(game_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_status ON game_time_slots(status)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_date ON game_time_slots(date)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_game ON weekly_schedules(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_slot ON slot_reservations(slot_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
