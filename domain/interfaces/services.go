package interfaces

import (
	"context"
	"time"

	"scrimbot/domain/entities"
)

// ResourceValidator checks referenced external resources against required or
// forbidden capability sets. Implementations are pure read/check; expected
// failures (missing resource, missing permission) come back as the typed
// outcomes in domain/services, never as panics.
type ResourceValidator interface {
	// ValidateGuild checks the guild exists and the bot is a member of it
	ValidateGuild(ctx context.Context, guildID int64) error

	// GuildCapabilities returns the bot's effective guild-scope capabilities
	GuildCapabilities(ctx context.Context, guildID int64) (entities.Capability, error)

	// ValidateChannel checks the channel is visible to the bot and that the
	// bot holds every required capability in it
	ValidateChannel(ctx context.Context, guildID, channelID int64, required entities.Capability) error

	// ValidateRole checks the role exists and carries none of the forbidden
	// capability bits
	ValidateRole(ctx context.Context, guildID, roleID int64, forbidden entities.Capability) error
}

// GuildProvisioner creates the supporting guild infrastructure for scrims.
// Every method is idempotent so the best-effort setup phase is safe to retry.
type GuildProvisioner interface {
	// EnsureScrimsModRole finds or creates the scrims moderator role
	EnsureScrimsModRole(ctx context.Context, guildID int64) (roleID int64, created bool, err error)

	// EnsureLogChannel finds or creates the restricted scrims log channel,
	// seeding and pinning the explanatory note on first creation
	EnsureLogChannel(ctx context.Context, guildID, modRoleID int64) (channelID int64, created bool, err error)

	// GrantModRoleChannelAccess lets the moderator role speak in the
	// registration channel
	GrantModRoleChannelAccess(ctx context.Context, channelID, modRoleID int64) error
}

// TimerScheduler is the deferred-event contract: idempotent create/replace/
// cancel of fire-at-time events keyed by (event kind, scrim id).
type TimerScheduler interface {
	// Schedule arms a timer; an existing timer for the same key is replaced
	Schedule(ctx context.Context, event entities.TimerEvent, scrimID int64, fireAt time.Time, payload map[string]any) error

	// Reschedule atomically cancels and re-arms; behaves as Schedule when no
	// prior timer exists
	Reschedule(ctx context.Context, event entities.TimerEvent, scrimID int64, fireAt time.Time, payload map[string]any) error

	// Cancel removes the pending timer for the key; cancelling a missing
	// timer is a no-op
	Cancel(ctx context.Context, event entities.TimerEvent, scrimID int64) error
}
