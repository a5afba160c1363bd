package application

import (
	"context"
	"fmt"
	"time"

	"scrimbot/domain/entities"
	"scrimbot/domain/services"

	log "github.com/sirupsen/logrus"
)

// ScrimOpenHandler fires the registration-open transition. "Open" is not a
// persisted controller state; the fired timer is the effect, and the handler
// then rolls the recurring window to the next allowed day.
type ScrimOpenHandler struct {
	announcer ScrimAnnouncer
	now       func() time.Time
}

// NewScrimOpenHandler creates a new scrim open handler.
func NewScrimOpenHandler(announcer ScrimAnnouncer) *ScrimOpenHandler {
	return &ScrimOpenHandler{
		announcer: announcer,
		now:       time.Now,
	}
}

// HandleOpen is the TimerHandler for scrim_open events. It runs inside the
// sweeper's transaction with the scrim row locked. Idempotent: a delivery
// that arrives after the window was already advanced (e.g. a re-fire after a
// crash between effect and cleanup) is a no-op.
func (h *ScrimOpenHandler) HandleOpen(ctx context.Context, uow UnitOfWork, scrim *entities.Scrim, timer *entities.Timer) error {
	if scrim.OpenTime.After(timer.FireAt) {
		// A previous delivery already advanced the window.
		log.WithFields(log.Fields{
			"scrim_id": scrim.ID,
			"guild_id": scrim.GuildID,
		}).Info("Registration already opened, skipping duplicate fire")
		return nil
	}

	// Announcing before commit means a commit failure re-announces on the
	// retry; that is the documented at-least-once trade-off, and the notice
	// itself is best-effort.
	if err := h.announcer.AnnounceScrimOpen(ctx, scrim); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"scrim_id":   scrim.ID,
			"channel_id": scrim.RegistrationChannelID,
		}).Warn("Failed to announce registration open")
	}

	next := scrim.NextOpenTime(h.now())
	scrim.OpenTime = next
	if err := uow.ScrimRepository().Update(ctx, scrim); err != nil {
		return fmt.Errorf("failed to advance open time for scrim %d: %w", scrim.ID, err)
	}

	scheduler := services.NewTimerScheduler(uow.TimerRepository())
	if err := scheduler.Schedule(ctx, entities.TimerEventScrimOpen, scrim.ID, next, timerPayload(scrim)); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"scrim_id":  scrim.ID,
		"guild_id":  scrim.GuildID,
		"next_open": next.UTC(),
	}).Info("Registration opened")

	return nil
}
