package repository

import (
	"context"
	"fmt"
	"time"

	"scrimbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TimerRepository implements persisted timer data access
type TimerRepository struct {
	q Queryable
}

// NewTimerRepository creates a new timer repository
func NewTimerRepository(tx Queryable) *TimerRepository {
	return &TimerRepository{q: tx}
}

// Upsert inserts the timer or replaces the pending record with the same
// (event, scrim_id) key. The unique index makes replace-not-duplicate hold
// even when two schedulers race.
func (r *TimerRepository) Upsert(ctx context.Context, timer *entities.Timer) error {
	query := `
		INSERT INTO timers (event, scrim_id, fire_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event, scrim_id)
		DO UPDATE SET fire_at = EXCLUDED.fire_at, payload = EXCLUDED.payload, created_at = now()
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		timer.Event,
		timer.ScrimID,
		timer.FireAt,
		timer.Payload,
	).Scan(&timer.ID, &timer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert %s timer for scrim %d: %w", timer.Event, timer.ScrimID, err)
	}

	return nil
}

// Delete removes the pending timer for the key; returns false when no timer
// was pending
func (r *TimerRepository) Delete(ctx context.Context, event entities.TimerEvent, scrimID int64) (bool, error) {
	result, err := r.q.Exec(ctx,
		`DELETE FROM timers WHERE event = $1 AND scrim_id = $2`,
		event, scrimID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s timer for scrim %d: %w", event, scrimID, err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteByID removes a specific timer record
func (r *TimerRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM timers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete timer %d: %w", id, err)
	}
	return nil
}

// DeleteAllForScrim removes every pending timer owned by a scrim
func (r *TimerRepository) DeleteAllForScrim(ctx context.Context, scrimID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM timers WHERE scrim_id = $1`, scrimID); err != nil {
		return fmt.Errorf("failed to delete timers for scrim %d: %w", scrimID, err)
	}
	return nil
}

// GetByKey retrieves the pending timer for the key, nil if none
func (r *TimerRepository) GetByKey(ctx context.Context, event entities.TimerEvent, scrimID int64) (*entities.Timer, error) {
	query := `
		SELECT id, event, scrim_id, fire_at, payload, created_at
		FROM timers
		WHERE event = $1 AND scrim_id = $2
	`

	var t entities.Timer
	err := r.q.QueryRow(ctx, query, event, scrimID).Scan(
		&t.ID,
		&t.Event,
		&t.ScrimID,
		&t.FireAt,
		&t.Payload,
		&t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s timer for scrim %d: %w", event, scrimID, err)
	}

	return &t, nil
}

// GetDue returns all timers with fire_at at or before the given instant,
// earliest first
func (r *TimerRepository) GetDue(ctx context.Context, before time.Time) ([]*entities.Timer, error) {
	query := `
		SELECT id, event, scrim_id, fire_at, payload, created_at
		FROM timers
		WHERE fire_at <= $1
		ORDER BY fire_at ASC
	`

	rows, err := r.q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to get due timers: %w", err)
	}
	defer rows.Close()

	var timers []*entities.Timer
	for rows.Next() {
		var t entities.Timer
		err := rows.Scan(
			&t.ID,
			&t.Event,
			&t.ScrimID,
			&t.FireAt,
			&t.Payload,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timer: %w", err)
		}
		timers = append(timers, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timers: %w", err)
	}

	return timers, nil
}

// NextFireTime returns the earliest pending fire_at, nil when no timers are
// pending
func (r *TimerRepository) NextFireTime(ctx context.Context) (*time.Time, error) {
	var fireAt *time.Time
	err := r.q.QueryRow(ctx, `SELECT MIN(fire_at) FROM timers`).Scan(&fireAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get next fire time: %w", err)
	}

	return fireAt, nil
}
