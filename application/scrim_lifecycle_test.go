package application

import (
	"context"
	"testing"
	"time"

	"scrimbot/application/dto"
	"scrimbot/domain/entities"
	"scrimbot/domain/services"
	"scrimbot/domain/testhelpers"
	"scrimbot/domain/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID        = int64(100)
	testHostID         = int64(200)
	testRegChannelID   = int64(300)
	testSlotChannelID  = int64(301)
	testSuccessRoleID  = int64(400)
	testScrimID        = int64(42)
	testOpenTimeMillis = int64(16 * 60 * 60 * 1000) // 4pm on the wire clock
)

func int64Ptr(v int64) *int64 { return &v }

func newLifecycleFixture(uows ...*StubUnitOfWork) (*ScrimLifecycle, *testhelpers.MockResourceValidator, *testhelpers.MockGuildProvisioner, *StubWaker) {
	validator := &testhelpers.MockResourceValidator{}
	provisioner := &testhelpers.MockGuildProvisioner{}
	waker := &StubWaker{}
	factory := &StubUnitOfWorkFactory{Queue: uows}
	return NewScrimLifecycle(factory, validator, provisioner, waker), validator, provisioner, waker
}

func completeSettings() *entities.GuildSettings {
	return &entities.GuildSettings{
		GuildID:          testGuildID,
		PrivateChannelID: int64Ptr(999),
	}
}

func createRequest() dto.CreateScrimRequest {
	return dto.CreateScrimRequest{
		GuildID:               testGuildID,
		HostID:                testHostID,
		Name:                  "Weekly Scrims",
		RegistrationChannelID: testRegChannelID,
		SlotlistChannelID:     testSlotChannelID,
		RoleID:                testSuccessRoleID,
		RequiredMentions:      4,
		TotalSlots:            25,
		OpenTimeMillis:        testOpenTimeMillis,
	}
}

func TestCreateScrim_Success(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, provisioner, waker := newLifecycleFixture(uow)

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	validator.On("GuildCapabilities", ctx, testGuildID).Return(entities.RequiredGuildCapabilities, nil)
	validator.On("ValidateChannel", ctx, testGuildID, testRegChannelID, entities.RequiredChannelCapabilities).Return(nil)
	validator.On("ValidateChannel", ctx, testGuildID, testSlotChannelID, entities.RequiredChannelCapabilities).Return(nil)
	validator.On("ValidateRole", ctx, testGuildID, testSuccessRoleID, entities.ForbiddenRoleCapabilities).Return(nil)

	uow.Settings.On("GetOrCreateGuildSettings", ctx, testGuildID).Return(completeSettings(), nil)
	uow.Scrims.On("IsChannelAssigned", ctx, testRegChannelID, int64(0)).Return(false, nil)
	uow.Scrims.On("IsChannelAssigned", ctx, testSlotChannelID, int64(0)).Return(false, nil)
	uow.Scrims.On("Create", ctx, mock.AnythingOfType("*entities.Scrim")).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Scrim).ID = testScrimID
	}).Return(nil)
	uow.Timers.On("Upsert", ctx, mock.MatchedBy(func(timer *entities.Timer) bool {
		return timer.Event == entities.TimerEventScrimOpen &&
			timer.ScrimID == testScrimID &&
			timer.FireAt.Equal(utils.InstantFromWireMillis(testOpenTimeMillis))
	})).Return(nil)

	provisioner.On("EnsureScrimsModRole", ctx, testGuildID).Return(int64(500), false, nil)
	provisioner.On("GrantModRoleChannelAccess", ctx, testRegChannelID, int64(500)).Return(nil)
	provisioner.On("EnsureLogChannel", ctx, testGuildID, int64(500)).Return(int64(600), false, nil)

	id, err := lifecycle.CreateScrim(ctx, createRequest())
	require.NoError(t, err)
	assert.Equal(t, testScrimID, id)
	assert.Equal(t, 1, uow.Commits)
	assert.Equal(t, 1, waker.Wakes)

	uow.Scrims.AssertExpectations(t)
	uow.Timers.AssertExpectations(t)
	provisioner.AssertExpectations(t)
}

func TestCreateScrim_SetupRequired(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, waker := newLifecycleFixture(uow)

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Settings.On("GetOrCreateGuildSettings", ctx, testGuildID).
		Return(&entities.GuildSettings{GuildID: testGuildID}, nil)

	_, err := lifecycle.CreateScrim(ctx, createRequest())
	assert.ErrorIs(t, err, services.ErrSetupRequired)
	assert.Equal(t, 0, uow.Commits)
	assert.Equal(t, 0, waker.Wakes)
	uow.Scrims.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateScrim_ChannelAlreadyAssigned(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	validator.On("GuildCapabilities", ctx, testGuildID).Return(entities.RequiredGuildCapabilities, nil)
	validator.On("ValidateChannel", ctx, testGuildID, testRegChannelID, entities.RequiredChannelCapabilities).Return(nil)
	uow.Settings.On("GetOrCreateGuildSettings", ctx, testGuildID).Return(completeSettings(), nil)
	uow.Scrims.On("IsChannelAssigned", ctx, testRegChannelID, int64(0)).Return(true, nil)

	_, err := lifecycle.CreateScrim(ctx, createRequest())
	assert.ErrorIs(t, err, services.ErrChannelAlreadyAssigned)
	assert.Equal(t, 0, uow.Commits)
	uow.Scrims.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	uow.Timers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCreateScrim_ForbiddenRole(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	roleErr := &services.ForbiddenRoleError{RoleID: testSuccessRoleID, Forbidden: entities.CapabilityManageGuild}
	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	validator.On("GuildCapabilities", ctx, testGuildID).Return(entities.RequiredGuildCapabilities, nil)
	validator.On("ValidateChannel", ctx, testGuildID, mock.AnythingOfType("int64"), entities.RequiredChannelCapabilities).Return(nil)
	validator.On("ValidateRole", ctx, testGuildID, testSuccessRoleID, entities.ForbiddenRoleCapabilities).Return(roleErr)
	uow.Settings.On("GetOrCreateGuildSettings", ctx, testGuildID).Return(completeSettings(), nil)
	uow.Scrims.On("IsChannelAssigned", ctx, mock.AnythingOfType("int64"), int64(0)).Return(false, nil)

	_, err := lifecycle.CreateScrim(ctx, createRequest())

	var forbidden *services.ForbiddenRoleError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, testSuccessRoleID, forbidden.RoleID)
	assert.Equal(t, 0, uow.Commits)
	uow.Scrims.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// existingScrim mirrors editRequest so an unmodified round-trip diffs empty.
func existingScrim() *entities.Scrim {
	return &entities.Scrim{
		ID:                    testScrimID,
		GuildID:               testGuildID,
		HostID:                testHostID,
		Name:                  "Weekly Scrims",
		RegistrationChannelID: testRegChannelID,
		SlotlistChannelID:     testSlotChannelID,
		RoleID:                testSuccessRoleID,
		RequiredMentions:      4,
		TotalSlots:            25,
		OpenTime:              utils.InstantFromWireMillis(testOpenTimeMillis),
		OpenDays:              entities.AllWeekdays,
	}
}

func editRequest() dto.EditScrimRequest {
	return dto.EditScrimRequest{
		ID:                    testScrimID,
		GuildID:               testGuildID,
		Name:                  "Weekly Scrims",
		RegistrationChannelID: testRegChannelID,
		SlotlistChannelID:     testSlotChannelID,
		RoleID:                testSuccessRoleID,
		RequiredMentions:      4,
		TotalSlots:            25,
		OpenTimeMillis:        testOpenTimeMillis,
		OpenDays:              uint8(entities.AllWeekdays),
	}
}

func TestEditScrim_NoChanges(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(existingScrim(), nil)

	err := lifecycle.EditScrim(ctx, editRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, uow.Commits)

	// No change means no revalidation, no write and no reschedule
	validator.AssertNotCalled(t, "ValidateChannel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	validator.AssertNotCalled(t, "ValidateRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	uow.Scrims.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.Timers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEditScrim_RenameOnly(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	req := editRequest()
	req.Name = "Friday Scrims"

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(existingScrim(), nil)
	uow.Scrims.On("Update", ctx, mock.MatchedBy(func(s *entities.Scrim) bool {
		return s.Name == "Friday Scrims" && s.RegistrationChannelID == testRegChannelID
	})).Return(nil)

	err := lifecycle.EditScrim(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, uow.Commits)

	// Unchanged references stay unvalidated and the timer stays put
	validator.AssertNotCalled(t, "ValidateChannel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	uow.Timers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEditScrim_OpenTimeChangeReschedules(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, waker := newLifecycleFixture(uow)

	req := editRequest()
	req.OpenTimeMillis = testOpenTimeMillis + 30*60*1000

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(existingScrim(), nil)
	uow.Scrims.On("Update", ctx, mock.AnythingOfType("*entities.Scrim")).Return(nil)
	uow.Timers.On("Upsert", ctx, mock.MatchedBy(func(timer *entities.Timer) bool {
		return timer.Event == entities.TimerEventScrimOpen &&
			timer.ScrimID == testScrimID &&
			timer.FireAt.Equal(utils.InstantFromWireMillis(req.OpenTimeMillis))
	})).Return(nil)

	err := lifecycle.EditScrim(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, uow.Commits)
	assert.Equal(t, 1, waker.Wakes)
	uow.Timers.AssertExpectations(t)
	// The upsert replaces the pending record in place; nothing is deleted
	uow.Timers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditScrim_ChangedChannelRevalidated(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	newChannel := int64(777)
	req := editRequest()
	req.RegistrationChannelID = newChannel

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	validator.On("ValidateChannel", ctx, testGuildID, newChannel, entities.RequiredChannelCapabilities).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(existingScrim(), nil)
	uow.Scrims.On("IsChannelAssigned", ctx, newChannel, testScrimID).Return(false, nil)
	uow.Scrims.On("Update", ctx, mock.AnythingOfType("*entities.Scrim")).Return(nil)

	err := lifecycle.EditScrim(ctx, req)
	require.NoError(t, err)
	validator.AssertExpectations(t)
	// Only the changed channel is rechecked
	validator.AssertNotCalled(t, "ValidateChannel", ctx, testGuildID, testSlotChannelID, entities.RequiredChannelCapabilities)
}

func TestEditScrim_DisableAutocleanCancelsTimer(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	autocleanAt := utils.InstantFromWireMillis(testOpenTimeMillis).Add(8 * time.Hour)
	existing := existingScrim()
	existing.AutocleanEnabled = true
	existing.AutocleanTime = &autocleanAt

	req := editRequest()
	req.Autoclean = false

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(existing, nil)
	uow.Scrims.On("Update", ctx, mock.MatchedBy(func(s *entities.Scrim) bool {
		return !s.AutocleanEnabled
	})).Return(nil)
	uow.Timers.On("Delete", ctx, entities.TimerEventAutoclean, testScrimID).Return(true, nil)

	err := lifecycle.EditScrim(ctx, req)
	require.NoError(t, err)
	uow.Timers.AssertExpectations(t)
	uow.Timers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEditScrim_ReenableAutocleanRollsPastTimeForward(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	// Autoclean was turned off and its stored instant has since gone stale;
	// the edit turns it back on without supplying a fresh time.
	now := time.Now()
	stale := now.Add(-2 * time.Hour)
	existing := existingScrim()
	existing.AutocleanTime = &stale

	req := editRequest()
	req.Autoclean = true

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Scrims.On("Update", ctx, mock.MatchedBy(func(s *entities.Scrim) bool {
		return s.AutocleanEnabled && s.AutocleanTime.Equal(stale.Add(24*time.Hour))
	})).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(existing, nil)
	uow.Timers.On("Upsert", ctx, mock.MatchedBy(func(timer *entities.Timer) bool {
		return timer.Event == entities.TimerEventAutoclean &&
			timer.ScrimID == testScrimID &&
			timer.FireAt.Equal(stale.Add(24*time.Hour)) &&
			timer.FireAt.After(now)
	})).Return(nil)

	err := lifecycle.EditScrim(ctx, req)
	require.NoError(t, err)
	uow.Scrims.AssertExpectations(t)
	uow.Timers.AssertExpectations(t)
}

func TestEditScrim_LockWaitDeadlineIsConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).
		Return(nil, context.DeadlineExceeded)

	err := lifecycle.EditScrim(ctx, editRequest())
	assert.ErrorIs(t, err, services.ErrConcurrencyConflict)
	assert.True(t, services.IsDenial(err), "a lock-wait timeout must map to a retryable denial")
	assert.Equal(t, 0, uow.Commits)
}

func TestEditScrim_NotFound(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, validator, _, _ := newLifecycleFixture(uow)

	validator.On("ValidateGuild", ctx, testGuildID).Return(nil)
	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(nil, nil)

	err := lifecycle.EditScrim(ctx, editRequest())
	assert.ErrorIs(t, err, services.ErrScrimNotFound)
	assert.Equal(t, 0, uow.Commits)
}

func TestDeleteScrim_Success(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, _, _, _ := newLifecycleFixture(uow)

	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(existingScrim(), nil)
	uow.Timers.On("DeleteAllForScrim", ctx, testScrimID).Return(nil)
	uow.Scrims.On("Delete", ctx, testScrimID).Return(true, nil)

	err := lifecycle.DeleteScrim(ctx, testScrimID)
	require.NoError(t, err)
	assert.Equal(t, 1, uow.Commits)
	uow.Timers.AssertExpectations(t)
}

func TestDeleteScrim_UnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	uow := NewStubUnitOfWork()
	lifecycle, _, _, _ := newLifecycleFixture(uow)

	uow.Scrims.On("GetByIDForUpdate", ctx, testScrimID).Return(nil, nil)

	err := lifecycle.DeleteScrim(ctx, testScrimID)
	require.NoError(t, err)
	assert.Equal(t, 1, uow.Commits)
	uow.Timers.AssertNotCalled(t, "DeleteAllForScrim", mock.Anything, mock.Anything)
	uow.Scrims.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
