package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/parkgolf/slot-service/internal/entity"
)

type slotRepository struct {
	db *sql.DB
}

func NewSlotRepository(db *sql.DB) SlotRepository {
	return &slotRepository{db: db}
}

const slotColumns = `id, game_id, date, start_time, end_time, max_players, booked_players, price, is_premium, status, active, created_at, updated_at`

func scanSlot(row interface{ Scan(...interface{}) error }) (*entity.Slot, error) {
	var slot entity.Slot
	err := row.Scan(
		&slot.ID,
		&slot.GameID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.MaxPlayers,
		&slot.BookedPlayers,
		&slot.Price,
		&slot.IsPremium,
		&slot.Status,
		&slot.Active,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) GetByID(ctx context.Context, id int64) (*entity.Slot, error) {
	query := fmt.Sprintf(`SELECT %s FROM game_time_slots WHERE id = $1`, slotColumns)

	slot, err := scanSlot(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	return slot, nil
}

func (r *slotRepository) ListByGame(ctx context.Context, gameID int64, from, to time.Time, availableOnly bool) ([]*entity.Slot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM game_time_slots
		WHERE game_id = $1 AND date >= $2 AND date <= $3
	`, slotColumns)
	if availableOnly {
		query += ` AND status = 'AVAILABLE' AND active = true`
	}
	query += ` ORDER BY date ASC, start_time ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []*entity.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	return slots, nil
}

func (r *slotRepository) UpdateStatus(ctx context.Context, id int64, status entity.SlotStatus) error {
	query := `UPDATE game_time_slots SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update slot status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrSlotNotFound
	}

	return nil
}

// CreateBatch inserts the given slots, skipping rows that collide with the
// (game_id, date, start_time) uniqueness constraint. The returned count is
// the number of rows actually inserted, which makes generation idempotent.
func (r *slotRepository) CreateBatch(ctx context.Context, slots []*entity.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO game_time_slots (
			game_id, date, start_time, end_time, max_players, booked_players,
			price, is_premium, status, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id, date, start_time) DO NOTHING
	`

	created := 0
	now := time.Now()
	for _, slot := range slots {
		result, err := tx.ExecContext(ctx, query,
			slot.GameID,
			slot.Date,
			slot.StartTime,
			slot.EndTime,
			slot.MaxPlayers,
			slot.BookedPlayers,
			slot.Price,
			slot.IsPremium,
			slot.Status,
			slot.Active,
			now,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert slot: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		created += int(rowsAffected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// DeleteUnbookedInRange removes generated slots in [from, to] that hold no
// reservations. Slots with booked players survive an overwrite.
func (r *slotRepository) DeleteUnbookedInRange(ctx context.Context, gameID int64, from, to time.Time) (int64, error) {
	query := `
		DELETE FROM game_time_slots
		WHERE game_id = $1 AND date >= $2 AND date <= $3 AND booked_players = 0
	`
	result, err := r.db.ExecContext(ctx, query, gameID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete slots in range: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Reserve books playerCount seats on the slot for bookingID. The availability
// check and the mutation happen under one row lock so two reservations racing
// for the last seats cannot both succeed. A repeated reserve for the same
// booking is a no-op returning the current slot.
func (r *slotRepository) Reserve(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slot, err := getSlotForUpdate(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}

	// Redelivered command: the reservation already exists.
	var existing int
	query := `SELECT player_count FROM slot_reservations WHERE booking_id = $1 AND slot_id = $2`
	err = tx.QueryRowContext(ctx, query, bookingID, slotID).Scan(&existing)
	if err == nil {
		return slot, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing reservation: %w", err)
	}

	if err := slot.ApplyReserve(playerCount); err != nil {
		return nil, err
	}

	if err := updateSlotCapacity(ctx, tx, slot); err != nil {
		return nil, err
	}

	query = `INSERT INTO slot_reservations (booking_id, slot_id, player_count, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, bookingID, slotID, playerCount, time.Now()); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("concurrent reservation for booking %d: %w", bookingID, err)
		}
		return nil, fmt.Errorf("failed to record reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return slot, nil
}

// Release frees seats on the slot. When a reservation row exists for the
// booking its recorded count wins over playerCount and the row is deleted, so
// a duplicate release has no further effect. Without a reservation row the
// count is subtracted directly, clamped at zero.
func (r *slotRepository) Release(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slot, err := getSlotForUpdate(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}

	reserved := playerCount
	var recorded int
	query := `SELECT player_count FROM slot_reservations WHERE booking_id = $1 AND slot_id = $2`
	err = tx.QueryRowContext(ctx, query, bookingID, slotID).Scan(&recorded)
	switch err {
	case nil:
		reserved = recorded
		query = `DELETE FROM slot_reservations WHERE booking_id = $1 AND slot_id = $2`
		if _, err := tx.ExecContext(ctx, query, bookingID, slotID); err != nil {
			return nil, fmt.Errorf("failed to delete reservation: %w", err)
		}
	case sql.ErrNoRows:
		// No ledger row; fall back to the requested count.
	default:
		return nil, fmt.Errorf("failed to check reservation: %w", err)
	}

	slot.ApplyRelease(reserved)

	if err := updateSlotCapacity(ctx, tx, slot); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return slot, nil
}

// AdjustCapacity applies a direct, non-saga capacity change: positive delta
// books seats, negative delta releases them.
func (r *slotRepository) AdjustCapacity(ctx context.Context, slotID int64, delta int) (*entity.Slot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slot, err := getSlotForUpdate(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}

	if delta >= 0 {
		if err := slot.ApplyReserve(delta); err != nil {
			return nil, err
		}
	} else {
		slot.ApplyRelease(-delta)
	}

	if err := updateSlotCapacity(ctx, tx, slot); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return slot, nil
}

// CloseBefore marks past-dated open slots CLOSED in batches.
func (r *slotRepository) CloseBefore(ctx context.Context, date time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	query := `
		UPDATE game_time_slots SET status = 'CLOSED', updated_at = $1
		WHERE id IN (
			SELECT id FROM game_time_slots
			WHERE date < $2 AND status IN ('AVAILABLE', 'FULLY_BOOKED')
			LIMIT $3
		)
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), date, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to close past slots: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func getSlotForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*entity.Slot, error) {
	query := fmt.Sprintf(`SELECT %s FROM game_time_slots WHERE id = $1 FOR UPDATE`, slotColumns)

	slot, err := scanSlot(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot with lock: %w", err)
	}

	return slot, nil
}

func updateSlotCapacity(ctx context.Context, tx *sql.Tx, slot *entity.Slot) error {
	query := `UPDATE game_time_slots SET booked_players = $1, status = $2, updated_at = $3 WHERE id = $4`
	if _, err := tx.ExecContext(ctx, query, slot.BookedPlayers, slot.Status, time.Now(), slot.ID); err != nil {
		return fmt.Errorf("failed to update slot capacity: %w", err)
	}
	return nil
}
