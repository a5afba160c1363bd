package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scrimbot/application/dto"
	"scrimbot/domain/entities"
	"scrimbot/domain/interfaces"
	"scrimbot/domain/services"
	"scrimbot/domain/utils"

	log "github.com/sirupsen/logrus"
)

// Waker nudges the timer sweep worker after a commit made new timer rows
// visible, so a freshly scheduled timer is picked up without waiting out the
// current sleep.
type Waker interface {
	Wake()
}

// ScrimLifecycle is the single authority over scrim state transitions. It
// validates referenced resources, reconciles edits through the differ,
// persists the result and drives the timer scheduler, all within one
// transaction per request.
type ScrimLifecycle struct {
	uowFactory  UnitOfWorkFactory
	validator   interfaces.ResourceValidator
	provisioner interfaces.GuildProvisioner
	waker       Waker
	now         func() time.Time
}

// NewScrimLifecycle creates a new scrim lifecycle controller.
func NewScrimLifecycle(uowFactory UnitOfWorkFactory, validator interfaces.ResourceValidator, provisioner interfaces.GuildProvisioner, waker Waker) *ScrimLifecycle {
	return &ScrimLifecycle{
		uowFactory:  uowFactory,
		validator:   validator,
		provisioner: provisioner,
		waker:       waker,
		now:         time.Now,
	}
}

// CreateScrim handles a create_new_scrim request. Validation and persistence
// are all-or-nothing: any denial before commit leaves no record and no timer.
// The supporting guild infrastructure (moderator role, log channel) is a
// best-effort idempotent phase after commit whose failure does not undo the
// persisted scrim.
func (s *ScrimLifecycle) CreateScrim(ctx context.Context, req dto.CreateScrimRequest) (int64, error) {
	if err := s.validator.ValidateGuild(ctx, req.GuildID); err != nil {
		return 0, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, req.GuildID)
	if err != nil {
		return 0, fmt.Errorf("failed to get guild settings: %w", err)
	}
	if !settings.SetupComplete() {
		return 0, services.ErrSetupRequired
	}

	caps, err := s.validator.GuildCapabilities(ctx, req.GuildID)
	if err != nil {
		return 0, err
	}
	if missing := caps.Missing(entities.RequiredGuildCapabilities); missing != 0 {
		return 0, &services.GuildCapabilityError{Missing: missing}
	}

	if err := s.validateChannelAssignment(ctx, uow, req.GuildID, req.RegistrationChannelID, 0); err != nil {
		return 0, err
	}
	if err := s.validateChannelAssignment(ctx, uow, req.GuildID, req.SlotlistChannelID, 0); err != nil {
		return 0, err
	}
	if err := s.validator.ValidateRole(ctx, req.GuildID, req.RoleID, entities.ForbiddenRoleCapabilities); err != nil {
		return 0, err
	}

	scrim := &entities.Scrim{
		GuildID:               req.GuildID,
		HostID:                req.HostID,
		Name:                  req.Name,
		RegistrationChannelID: req.RegistrationChannelID,
		SlotlistChannelID:     req.SlotlistChannelID,
		RoleID:                req.RoleID,
		RequiredMentions:      req.RequiredMentions,
		TotalSlots:            req.TotalSlots,
		OpenTime:              utils.InstantFromWireMillis(req.OpenTimeMillis),
		OpenDays:              entities.AllWeekdays,
	}
	if err := uow.ScrimRepository().Create(ctx, scrim); err != nil {
		return 0, fmt.Errorf("failed to persist scrim: %w", err)
	}

	scheduler := services.NewTimerScheduler(uow.TimerRepository())
	if err := scheduler.Schedule(ctx, entities.TimerEventScrimOpen, scrim.ID, scrim.OpenTime, timerPayload(scrim)); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.waker.Wake()

	s.ensureGuildInfra(ctx, scrim, settings)

	log.WithFields(log.Fields{
		"scrim_id":  scrim.ID,
		"guild_id":  scrim.GuildID,
		"open_time": scrim.OpenTime.UTC(),
	}).Info("Scrim created")

	return scrim.ID, nil
}

// EditScrim handles an edit_scrim request. The edit is all-or-nothing: every
// changed reference validates or none of the edit is applied, and all field
// changes (autoclean flag and open days included) land in one transaction.
func (s *ScrimLifecycle) EditScrim(ctx context.Context, req dto.EditScrimRequest) error {
	if err := s.validator.ValidateGuild(ctx, req.GuildID); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.ScrimRepository().GetByIDForUpdate(ctx, req.ID)
	if err != nil {
		return mapLockErr(err)
	}
	if existing == nil {
		return services.ErrScrimNotFound
	}

	desired := s.desiredFromEdit(req)
	diff := services.DiffScrim(existing, desired, req.PingRoleID != nil)
	if diff.Empty() {
		// Nothing changed; no revalidation, no reschedule, still a success.
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	if diff.NeedsRegistrationChannelCheck {
		if err := s.validateChannelAssignment(ctx, uow, req.GuildID, desired.RegistrationChannelID, req.ID); err != nil {
			return err
		}
	}
	if diff.NeedsSlotlistChannelCheck {
		if err := s.validateChannelAssignment(ctx, uow, req.GuildID, desired.SlotlistChannelID, req.ID); err != nil {
			return err
		}
	}
	if diff.NeedsRoleCheck {
		if err := s.validator.ValidateRole(ctx, req.GuildID, desired.RoleID, entities.ForbiddenRoleCapabilities); err != nil {
			return err
		}
	}

	diff.Apply(existing, desired)

	scheduler := services.NewTimerScheduler(uow.TimerRepository())
	if diff.RescheduleOpen {
		if err := scheduler.Reschedule(ctx, entities.TimerEventScrimOpen, existing.ID, existing.OpenTime, timerPayload(existing)); err != nil {
			return err
		}
	}
	// Timer reconciliation may roll a stale autoclean instant forward, so the
	// record write comes after it and persists the shifted value.
	if err := s.reconcileAutocleanTimer(ctx, scheduler, existing, &diff); err != nil {
		return err
	}

	if err := uow.ScrimRepository().Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update scrim %d: %w", req.ID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.waker.Wake()

	log.WithFields(log.Fields{
		"scrim_id": existing.ID,
		"guild_id": existing.GuildID,
		"changed":  len(diff.Changed),
	}).Info("Scrim updated")

	return nil
}

// DeleteScrim cancels all pending timers for the scrim and deletes the
// record. Deleting an unknown ID is a no-op success.
func (s *ScrimLifecycle) DeleteScrim(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.ScrimRepository().GetByIDForUpdate(ctx, id)
	if err != nil {
		return mapLockErr(err)
	}
	if existing == nil {
		return uow.Commit()
	}

	if err := uow.TimerRepository().DeleteAllForScrim(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel timers for scrim %d: %w", id, err)
	}
	if _, err := uow.ScrimRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scrim %d: %w", id, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"scrim_id": id,
		"guild_id": existing.GuildID,
	}).Info("Scrim deleted")

	return nil
}

// validateChannelAssignment runs the external channel check plus the
// uniqueness invariant against other scrims.
func (s *ScrimLifecycle) validateChannelAssignment(ctx context.Context, uow UnitOfWork, guildID, channelID, excludeScrimID int64) error {
	if err := s.validator.ValidateChannel(ctx, guildID, channelID, entities.RequiredChannelCapabilities); err != nil {
		return err
	}
	assigned, err := uow.ScrimRepository().IsChannelAssigned(ctx, channelID, excludeScrimID)
	if err != nil {
		return fmt.Errorf("failed to check channel assignment: %w", err)
	}
	if assigned {
		return services.ErrChannelAlreadyAssigned
	}
	return nil
}

// desiredFromEdit lifts the wire payload into entity form, converting wire
// millis into absolute instants and normalizing a past-due autoclean time.
func (s *ScrimLifecycle) desiredFromEdit(req dto.EditScrimRequest) *entities.Scrim {
	desired := &entities.Scrim{
		Name:                  req.Name,
		RequiredMentions:      req.RequiredMentions,
		StartFrom:             req.StartFrom,
		TotalSlots:            req.TotalSlots,
		Autoslotlist:          req.Autoslotlist,
		Multiregister:         req.Multiregister,
		AutodeleteRejects:     req.AutodeleteRejects,
		TeamnameCompulsion:    req.TeamnameCompulsion,
		NoDuplicateName:       req.NoDuplicateName,
		ShowTimeElapsed:       req.ShowTimeElapsed,
		AutodeleteExtras:      req.AutodeleteExtras,
		OpenMessage:           req.OpenMessage,
		CloseMessage:          req.CloseMessage,
		RegistrationChannelID: req.RegistrationChannelID,
		SlotlistChannelID:     req.SlotlistChannelID,
		RoleID:                req.RoleID,
		PingRoleID:            req.PingRoleID,
		OpenTime:              utils.InstantFromWireMillis(req.OpenTimeMillis),
		AutocleanEnabled:      req.Autoclean,
		OpenDays:              entities.Weekdays(req.OpenDays),
	}
	if req.OpenRoleID > 0 {
		openRole := req.OpenRoleID
		desired.OpenRoleID = &openRole
	}
	if req.AutocleanTimeMillis != nil {
		at := utils.NormalizeAutocleanTime(utils.InstantFromWireMillis(*req.AutocleanTimeMillis), s.now())
		desired.AutocleanTime = &at
	}
	return desired
}

// reconcileAutocleanTimer keeps the zero-or-one autoclean timer invariant:
// disabling autoclean cancels the pending timer, a changed time or a fresh
// enable reschedules it.
func (s *ScrimLifecycle) reconcileAutocleanTimer(ctx context.Context, scheduler interfaces.TimerScheduler, scrim *entities.Scrim, diff *services.ScrimDiff) error {
	if diff.Has(services.FieldAutoclean) && !scrim.AutocleanEnabled {
		return scheduler.Cancel(ctx, entities.TimerEventAutoclean, scrim.ID)
	}
	if !scrim.HasAutoclean() {
		return nil
	}
	if diff.RescheduleAutoclean || diff.Has(services.FieldAutoclean) {
		// Re-enabling without a fresh time can surface a stored instant that
		// is already in the past; it rolls forward the same way a past wire
		// value does, so an already-due timer is never armed.
		at := utils.NormalizeAutocleanTime(*scrim.AutocleanTime, s.now())
		scrim.AutocleanTime = &at
		return scheduler.Reschedule(ctx, entities.TimerEventAutoclean, scrim.ID, at, timerPayload(scrim))
	}
	return nil
}

// ensureGuildInfra runs the best-effort idempotent phase: moderator role,
// registration channel access for it, and the restricted log channel. Each
// step is safe to repeat, so a failure here only logs.
func (s *ScrimLifecycle) ensureGuildInfra(ctx context.Context, scrim *entities.Scrim, settings *entities.GuildSettings) {
	modRoleID, createdRole, err := s.provisioner.EnsureScrimsModRole(ctx, scrim.GuildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", scrim.GuildID).Warn("Failed to ensure scrims moderator role")
		return
	}
	if err := s.provisioner.GrantModRoleChannelAccess(ctx, scrim.RegistrationChannelID, modRoleID); err != nil {
		log.WithError(err).WithField("channel_id", scrim.RegistrationChannelID).Warn("Failed to grant moderator access to registration channel")
	}

	logChannelID, createdChannel, err := s.provisioner.EnsureLogChannel(ctx, scrim.GuildID, modRoleID)
	if err != nil {
		log.WithError(err).WithField("guild_id", scrim.GuildID).Warn("Failed to ensure scrims log channel")
	}

	if !createdRole && !createdChannel {
		return
	}

	// Record the created infrastructure in a follow-up transaction; losing
	// this write only means the next create re-discovers the role/channel.
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Warn("Failed to begin guild settings transaction")
		return
	}
	defer uow.Rollback()

	settings.SetScrimsModRole(&modRoleID)
	if logChannelID > 0 {
		settings.SetLogChannel(&logChannelID)
	}
	if err := uow.GuildSettingsRepository().UpdateGuildSettings(ctx, settings); err != nil {
		log.WithError(err).WithField("guild_id", scrim.GuildID).Warn("Failed to record scrims infrastructure")
		return
	}
	if err := uow.Commit(); err != nil {
		log.WithError(err).Warn("Failed to commit guild settings transaction")
	}
}

// timerPayload carries enough context for a handler to act without re-fetching
// unrelated state.
func timerPayload(scrim *entities.Scrim) map[string]any {
	return map[string]any{
		"guild_id": scrim.GuildID,
		"scrim_id": scrim.ID,
	}
}

// mapLockErr turns a row-lock wait that outlived the request context into the
// retryable conflict outcome.
func mapLockErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return services.ErrConcurrencyConflict
	}
	return err
}
