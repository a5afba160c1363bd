package application

import (
	"context"
	"fmt"
	"time"

	"scrimbot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// TimerHandler performs the effect of a fired timer. The sweeper has already
// locked the owning scrim row and confirmed the record is still the pending
// one; the handler runs inside the same transaction and must be idempotent,
// since delivery is at-least-once.
type TimerHandler func(ctx context.Context, uow UnitOfWork, scrim *entities.Scrim, timer *entities.Timer) error

// idleRecheck bounds how long the sweeper sleeps when it believes nothing is
// pending, as a backstop against a missed wakeup.
const idleRecheck = 1 * time.Hour

// retryBackoff paces re-sweeps while a due timer keeps failing to process,
// instead of hammering the database until the handler recovers.
const retryBackoff = 30 * time.Second

// TimerSweeper drives persisted timers: it sleeps until the earliest pending
// fire_at (or a wakeup nudge), then processes every due record, each in its
// own transaction. Restart recovery is RecoverPending, which must finish
// before the control channel starts accepting requests.
type TimerSweeper struct {
	uowFactory UnitOfWorkFactory
	handlers   map[entities.TimerEvent]TimerHandler
	wake       chan struct{}
	backoff    time.Duration
}

// NewTimerSweeper creates a new timer sweeper. Handlers are registered before
// Start; the map is not guarded.
func NewTimerSweeper(uowFactory UnitOfWorkFactory) *TimerSweeper {
	return &TimerSweeper{
		uowFactory: uowFactory,
		handlers:   make(map[entities.TimerEvent]TimerHandler),
		wake:       make(chan struct{}, 1),
		backoff:    retryBackoff,
	}
}

// Register installs the handler for an event kind.
func (w *TimerSweeper) Register(event entities.TimerEvent, handler TimerHandler) {
	w.handlers[event] = handler
	log.WithField("event", event).Info("Registered timer handler")
}

// Wake nudges the sweep loop to re-read the timer table. Safe to call from
// any goroutine; a pending nudge is never duplicated.
func (w *TimerSweeper) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// RecoverPending fires every already-due timer exactly once and re-arms the
// rest (re-arming is implicit: pending rows are the armed state). Run once at
// startup, before requests are accepted, so no due timer is ever neither
// pending nor fired.
func (w *TimerSweeper) RecoverPending(ctx context.Context) error {
	log.Info("Recovering persisted timers")
	return w.processDue(ctx)
}

// Start begins the sweep loop and returns a cleanup function.
func (w *TimerSweeper) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Timer sweeper started")

		for {
			if err := w.processDue(ctx); err != nil {
				log.Errorf("Error processing due timers: %v", err)
			}

			next := w.nextFireTime(ctx)
			if next == nil {
				select {
				case <-ctx.Done():
					log.Info("Timer sweeper shutting down (context cancelled)...")
					return
				case <-stopChan:
					log.Info("Timer sweeper shutting down (stop requested)...")
					return
				case <-w.wake:
					continue
				case <-time.After(idleRecheck):
					continue
				}
			}

			waitDuration := time.Until(*next)
			if waitDuration <= 0 {
				// A due row survived the sweep, meaning its handler failed;
				// pause before retrying instead of spinning on the database.
				waitDuration = w.backoff
			} else {
				log.Infof("Next timer fires at %v (in %v)", next.UTC(), waitDuration)
			}

			select {
			case <-ctx.Done():
				log.Info("Timer sweeper shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Timer sweeper shutting down (stop requested)...")
				return
			case <-w.wake:
			case <-time.After(waitDuration):
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// nextFireTime reads the earliest pending fire_at in a short read transaction.
func (w *TimerSweeper) nextFireTime(ctx context.Context) *time.Time {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction for next fire time: %v", err)
		return nil
	}
	defer uow.Rollback()

	next, err := uow.TimerRepository().NextFireTime(ctx)
	if err != nil {
		log.Errorf("Failed to get next fire time: %v", err)
		return nil
	}
	return next
}

// processDue fires all timers due as of now, each in its own transaction so
// one failing owner never blocks the rest.
func (w *TimerSweeper) processDue(ctx context.Context) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	due, err := uow.TimerRepository().GetDue(ctx, time.Now().UTC())
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get due timers: %w", err)
	}
	uow.Rollback()

	if len(due) == 0 {
		return nil
	}

	var successCount, failureCount int
	for _, timer := range due {
		if err := w.processTimer(ctx, timer); err != nil {
			log.Errorf("Error processing %s timer for scrim %d: %v", timer.Event, timer.ScrimID, err)
			failureCount++
		} else {
			successCount++
		}
	}

	log.WithFields(log.Fields{
		"total_due":  len(due),
		"successful": successCount,
		"failed":     failureCount,
	}).Info("Completed timer sweep")

	return nil
}

// processTimer fires a single timer. The scrim row lock serializes the fire
// against in-flight edits/deletes of the same scrim; the timer record is
// deleted in the same transaction as the handler's effect, so a crash in
// between re-fires it (at-least-once) and idempotent handlers absorb that.
func (w *TimerSweeper) processTimer(ctx context.Context, timer *entities.Timer) error {
	handler, ok := w.handlers[timer.Event]
	if !ok {
		// No handler can ever fire this record; without removal it would be
		// re-read on every sweep.
		log.WithField("event", timer.Event).Warn("No handler for timer event, discarding record")
		return w.discardTimer(ctx, timer.ID)
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scrim, err := uow.ScrimRepository().GetByIDForUpdate(ctx, timer.ScrimID)
	if err != nil {
		return fmt.Errorf("failed to lock scrim %d: %w", timer.ScrimID, err)
	}
	if scrim == nil {
		// Owner is gone: treat as already-cancelled and reap the record.
		if err := uow.TimerRepository().DeleteAllForScrim(ctx, timer.ScrimID); err != nil {
			return fmt.Errorf("failed to reap orphaned timers for scrim %d: %w", timer.ScrimID, err)
		}
		return uow.Commit()
	}

	// Re-read under the scrim lock: an edit that slipped in may have
	// rescheduled or cancelled this key, in which case the newer record wins.
	current, err := uow.TimerRepository().GetByKey(ctx, timer.Event, timer.ScrimID)
	if err != nil {
		return fmt.Errorf("failed to re-read timer: %w", err)
	}
	if current == nil || current.ID != timer.ID || !current.FireAt.Equal(timer.FireAt) {
		return uow.Commit()
	}

	if err := handler(ctx, uow, scrim, current); err != nil {
		return fmt.Errorf("%s handler failed for scrim %d: %w", timer.Event, timer.ScrimID, err)
	}

	if err := uow.TimerRepository().DeleteByID(ctx, current.ID); err != nil {
		return fmt.Errorf("failed to delete fired timer: %w", err)
	}

	return uow.Commit()
}

func (w *TimerSweeper) discardTimer(ctx context.Context, id int64) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.TimerRepository().DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to discard timer %d: %w", id, err)
	}
	return uow.Commit()
}
