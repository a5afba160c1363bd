package entities

import "time"

// TimerEvent names the kind of deferred transition a timer drives.
type TimerEvent string

const (
	TimerEventScrimOpen TimerEvent = "scrim_open"
	TimerEventAutoclean TimerEvent = "autoclean"
)

// Timer is a persisted instruction to run an event handler at a future
// instant. (Event, ScrimID) is the sole deduplication key: scheduling again
// for the same key replaces the pending record.
type Timer struct {
	ID        int64          `db:"id"`
	Event     TimerEvent     `db:"event"`
	ScrimID   int64          `db:"scrim_id"`
	FireAt    time.Time      `db:"fire_at"`
	Payload   map[string]any `db:"payload"`
	CreatedAt time.Time      `db:"created_at"`
}

// Due reports whether the timer should have fired by now.
func (t *Timer) Due(now time.Time) bool {
	return !t.FireAt.After(now)
}
