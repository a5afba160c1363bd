package application

import (
	"context"
	"fmt"
	"time"

	"scrimbot/domain/entities"
	"scrimbot/domain/services"

	log "github.com/sirupsen/logrus"
)

// AutocleanHandler purges stale registration data when an autoclean timer
// fires and re-arms the next daily cycle.
type AutocleanHandler struct {
	cleaner RegistrationCleaner
	now     func() time.Time
}

// NewAutocleanHandler creates a new autoclean handler.
func NewAutocleanHandler(cleaner RegistrationCleaner) *AutocleanHandler {
	return &AutocleanHandler{
		cleaner: cleaner,
		now:     time.Now,
	}
}

// HandleAutoclean is the TimerHandler for autoclean events. Idempotent: if
// autoclean was toggled off or the cycle already advanced, the delivery is
// dropped without effect.
func (h *AutocleanHandler) HandleAutoclean(ctx context.Context, uow UnitOfWork, scrim *entities.Scrim, timer *entities.Timer) error {
	if !scrim.HasAutoclean() {
		log.WithField("scrim_id", scrim.ID).Info("Autoclean disabled, skipping fire")
		return nil
	}
	if scrim.AutocleanTime.After(timer.FireAt) {
		// A previous delivery already advanced the cycle.
		return nil
	}

	if err := h.cleaner.CleanRegistration(ctx, scrim); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"scrim_id":   scrim.ID,
			"channel_id": scrim.RegistrationChannelID,
		}).Warn("Failed to clean registration channel")
	}

	next := scrim.AutocleanTime.Add(24 * time.Hour)
	scrim.AutocleanTime = &next
	if err := uow.ScrimRepository().Update(ctx, scrim); err != nil {
		return fmt.Errorf("failed to advance autoclean time for scrim %d: %w", scrim.ID, err)
	}

	scheduler := services.NewTimerScheduler(uow.TimerRepository())
	if err := scheduler.Schedule(ctx, entities.TimerEventAutoclean, scrim.ID, next, timerPayload(scrim)); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"scrim_id":       scrim.ID,
		"guild_id":       scrim.GuildID,
		"next_autoclean": next.UTC(),
	}).Info("Autoclean completed")

	return nil
}
