package interfaces

import (
	"context"
	"time"

	"scrimbot/domain/entities"
)

// ScrimRepository defines the interface for scrim configuration data access
type ScrimRepository interface {
	// Create persists a new scrim and fills in its generated ID
	Create(ctx context.Context, scrim *entities.Scrim) error

	// GetByID retrieves a scrim by its ID, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.Scrim, error)

	// GetByIDForUpdate retrieves a scrim by ID with a row lock, nil if not
	// found. The lock serializes competing edits/deletes/fires for one scrim.
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Scrim, error)

	// Update writes every mutable field of the scrim in a single statement
	Update(ctx context.Context, scrim *entities.Scrim) error

	// Delete removes a scrim; returns false when no row existed
	Delete(ctx context.Context, id int64) (bool, error)

	// IsChannelAssigned reports whether any scrim other than excludeScrimID
	// already uses the channel as registration or slotlist channel
	IsChannelAssigned(ctx context.Context, channelID, excludeScrimID int64) (bool, error)
}

// TimerRepository defines the interface for persisted timer data access
type TimerRepository interface {
	// Upsert inserts the timer or replaces the pending record with the same
	// (event, scrim_id) key
	Upsert(ctx context.Context, timer *entities.Timer) error

	// Delete removes the pending timer for the key; returns false when no
	// timer was pending
	Delete(ctx context.Context, event entities.TimerEvent, scrimID int64) (bool, error)

	// DeleteByID removes a specific timer record
	DeleteByID(ctx context.Context, id int64) error

	// DeleteAllForScrim removes every pending timer owned by a scrim
	DeleteAllForScrim(ctx context.Context, scrimID int64) error

	// GetByKey retrieves the pending timer for the key, nil if none
	GetByKey(ctx context.Context, event entities.TimerEvent, scrimID int64) (*entities.Timer, error)

	// GetDue returns all timers with fire_at at or before the given instant,
	// earliest first
	GetDue(ctx context.Context, before time.Time) ([]*entities.Timer, error)

	// NextFireTime returns the earliest pending fire_at, nil when no timers
	// are pending
	NextFireTime(ctx context.Context) (*time.Time, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves guild settings or creates default
	// ones if not found
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)

	// UpdateGuildSettings updates guild settings
	UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error
}
