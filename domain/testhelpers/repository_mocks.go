package testhelpers

import (
	"context"
	"time"

	"scrimbot/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockScrimRepository is a mock implementation of ScrimRepository
type MockScrimRepository struct {
	mock.Mock
}

func (m *MockScrimRepository) Create(ctx context.Context, scrim *entities.Scrim) error {
	args := m.Called(ctx, scrim)
	return args.Error(0)
}

func (m *MockScrimRepository) GetByID(ctx context.Context, id int64) (*entities.Scrim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Scrim), args.Error(1)
}

func (m *MockScrimRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Scrim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Scrim), args.Error(1)
}

func (m *MockScrimRepository) Update(ctx context.Context, scrim *entities.Scrim) error {
	args := m.Called(ctx, scrim)
	return args.Error(0)
}

func (m *MockScrimRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockScrimRepository) IsChannelAssigned(ctx context.Context, channelID, excludeScrimID int64) (bool, error) {
	args := m.Called(ctx, channelID, excludeScrimID)
	return args.Bool(0), args.Error(1)
}

// MockTimerRepository is a mock implementation of TimerRepository
type MockTimerRepository struct {
	mock.Mock
}

func (m *MockTimerRepository) Upsert(ctx context.Context, timer *entities.Timer) error {
	args := m.Called(ctx, timer)
	return args.Error(0)
}

func (m *MockTimerRepository) Delete(ctx context.Context, event entities.TimerEvent, scrimID int64) (bool, error) {
	args := m.Called(ctx, event, scrimID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTimerRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTimerRepository) DeleteAllForScrim(ctx context.Context, scrimID int64) error {
	args := m.Called(ctx, scrimID)
	return args.Error(0)
}

func (m *MockTimerRepository) GetByKey(ctx context.Context, event entities.TimerEvent, scrimID int64) (*entities.Timer, error) {
	args := m.Called(ctx, event, scrimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Timer), args.Error(1)
}

func (m *MockTimerRepository) GetDue(ctx context.Context, before time.Time) ([]*entities.Timer, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Timer), args.Error(1)
}

func (m *MockTimerRepository) NextFireTime(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockResourceValidator is a mock implementation of ResourceValidator
type MockResourceValidator struct {
	mock.Mock
}

func (m *MockResourceValidator) ValidateGuild(ctx context.Context, guildID int64) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

func (m *MockResourceValidator) GuildCapabilities(ctx context.Context, guildID int64) (entities.Capability, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(entities.Capability), args.Error(1)
}

func (m *MockResourceValidator) ValidateChannel(ctx context.Context, guildID, channelID int64, required entities.Capability) error {
	args := m.Called(ctx, guildID, channelID, required)
	return args.Error(0)
}

func (m *MockResourceValidator) ValidateRole(ctx context.Context, guildID, roleID int64, forbidden entities.Capability) error {
	args := m.Called(ctx, guildID, roleID, forbidden)
	return args.Error(0)
}

// MockGuildProvisioner is a mock implementation of GuildProvisioner
type MockGuildProvisioner struct {
	mock.Mock
}

func (m *MockGuildProvisioner) EnsureScrimsModRole(ctx context.Context, guildID int64) (int64, bool, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockGuildProvisioner) EnsureLogChannel(ctx context.Context, guildID, modRoleID int64) (int64, bool, error) {
	args := m.Called(ctx, guildID, modRoleID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockGuildProvisioner) GrantModRoleChannelAccess(ctx context.Context, channelID, modRoleID int64) error {
	args := m.Called(ctx, channelID, modRoleID)
	return args.Error(0)
}

// MockTimerScheduler is a mock implementation of TimerScheduler
type MockTimerScheduler struct {
	mock.Mock
}

func (m *MockTimerScheduler) Schedule(ctx context.Context, event entities.TimerEvent, scrimID int64, fireAt time.Time, payload map[string]any) error {
	args := m.Called(ctx, event, scrimID, fireAt, payload)
	return args.Error(0)
}

func (m *MockTimerScheduler) Reschedule(ctx context.Context, event entities.TimerEvent, scrimID int64, fireAt time.Time, payload map[string]any) error {
	args := m.Called(ctx, event, scrimID, fireAt, payload)
	return args.Error(0)
}

func (m *MockTimerScheduler) Cancel(ctx context.Context, event entities.TimerEvent, scrimID int64) error {
	args := m.Called(ctx, event, scrimID)
	return args.Error(0)
}
