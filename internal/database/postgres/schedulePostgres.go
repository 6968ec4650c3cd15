package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/parkgolf/slot-service/internal/entity"
)

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.WeeklySchedule) error {
	query := `
		INSERT INTO weekly_schedules (game_id, day_of_week, start_time, end_time, interval_minutes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		schedule.GameID,
		schedule.DayOfWeek,
		schedule.StartTime,
		schedule.EndTime,
		schedule.IntervalMinutes,
		schedule.Active,
		now,
		now,
	).Scan(&schedule.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return entity.ErrScheduleConflict
		}
		return fmt.Errorf("failed to create weekly schedule: %w", err)
	}

	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*entity.WeeklySchedule, error) {
	query := `
		SELECT id, game_id, day_of_week, start_time, end_time, interval_minutes, active, created_at, updated_at
		FROM weekly_schedules
		WHERE id = $1
	`

	var schedule entity.WeeklySchedule
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&schedule.ID,
		&schedule.GameID,
		&schedule.DayOfWeek,
		&schedule.StartTime,
		&schedule.EndTime,
		&schedule.IntervalMinutes,
		&schedule.Active,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly schedule: %w", err)
	}

	return &schedule, nil
}

func (r *scheduleRepository) GetActiveByGame(ctx context.Context, gameID int64) ([]*entity.WeeklySchedule, error) {
	query := `
		SELECT id, game_id, day_of_week, start_time, end_time, interval_minutes, active, created_at, updated_at
		FROM weekly_schedules
		WHERE game_id = $1 AND active = true
		ORDER BY day_of_week ASC
	`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*entity.WeeklySchedule
	for rows.Next() {
		var schedule entity.WeeklySchedule
		err := rows.Scan(
			&schedule.ID,
			&schedule.GameID,
			&schedule.DayOfWeek,
			&schedule.StartTime,
			&schedule.EndTime,
			&schedule.IntervalMinutes,
			&schedule.Active,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly schedule: %w", err)
		}
		schedules = append(schedules, &schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly schedules: %w", err)
	}

	return schedules, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *entity.WeeklySchedule) error {
	query := `
		UPDATE weekly_schedules
		SET start_time = $1, end_time = $2, interval_minutes = $3, active = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		schedule.StartTime,
		schedule.EndTime,
		schedule.IntervalMinutes,
		schedule.Active,
		time.Now(),
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update weekly schedule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrScheduleNotFound
	}

	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM weekly_schedules WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete weekly schedule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrScheduleNotFound
	}

	return nil
}

type gameRepository struct {
	db *sql.DB
}

func NewGameRepository(db *sql.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) GetByID(ctx context.Context, id int64) (*entity.Game, error) {
	query := `
		SELECT id, name, base_price, weekend_price, max_players, estimated_duration, active
		FROM games
		WHERE id = $1
	`

	var game entity.Game
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&game.ID,
		&game.Name,
		&game.BasePrice,
		&game.WeekendPrice,
		&game.MaxPlayers,
		&game.EstimatedDuration,
		&game.Active,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}
