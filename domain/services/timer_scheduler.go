package services

import (
	"context"
	"fmt"
	"time"

	"scrimbot/domain/entities"
	"scrimbot/domain/interfaces"
)

// timerScheduler implements the TimerScheduler interface on top of the timer
// repository. It is constructed per unit of work so timer mutations commit or
// roll back together with the scrim mutation that requested them; waking the
// sweep worker is the caller's job after commit.
type timerScheduler struct {
	timerRepo interfaces.TimerRepository
}

// NewTimerScheduler creates a new timer scheduler over the given repository.
func NewTimerScheduler(timerRepo interfaces.TimerRepository) interfaces.TimerScheduler {
	return &timerScheduler{timerRepo: timerRepo}
}

// Schedule arms a timer for (event, scrimID). The keyed upsert in the
// repository makes a second schedule for the same key a replacement, never a
// duplicate.
func (s *timerScheduler) Schedule(ctx context.Context, event entities.TimerEvent, scrimID int64, fireAt time.Time, payload map[string]any) error {
	timer := &entities.Timer{
		Event:   event,
		ScrimID: scrimID,
		FireAt:  fireAt,
		Payload: payload,
	}
	if err := s.timerRepo.Upsert(ctx, timer); err != nil {
		return fmt.Errorf("failed to schedule %s timer for scrim %d: %w", event, scrimID, err)
	}
	return nil
}

// Reschedule is the cancel-then-schedule operation; with the keyed upsert the
// two collapse into one statement, which is what makes it atomic. With no
// prior timer it behaves as Schedule.
func (s *timerScheduler) Reschedule(ctx context.Context, event entities.TimerEvent, scrimID int64, fireAt time.Time, payload map[string]any) error {
	return s.Schedule(ctx, event, scrimID, fireAt, payload)
}

// Cancel removes the pending timer for the key. Cancelling a timer that does
// not exist is a no-op.
func (s *timerScheduler) Cancel(ctx context.Context, event entities.TimerEvent, scrimID int64) error {
	if _, err := s.timerRepo.Delete(ctx, event, scrimID); err != nil {
		return fmt.Errorf("failed to cancel %s timer for scrim %d: %w", event, scrimID, err)
	}
	return nil
}
