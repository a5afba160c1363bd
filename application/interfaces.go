package application

import (
	"context"

	"scrimbot/application/dto"
	"scrimbot/domain/entities"
)

// ScrimLifecycleService is what the control-channel gateway dispatches to.
// The gateway owns encode/decode; all lifecycle semantics live behind this.
type ScrimLifecycleService interface {
	// CreateScrim validates and persists a new scrim, returning its ID
	CreateScrim(ctx context.Context, req dto.CreateScrimRequest) (int64, error)

	// EditScrim applies an all-or-nothing edit to an existing scrim
	EditScrim(ctx context.Context, req dto.EditScrimRequest) error

	// DeleteScrim removes a scrim and its pending timers; idempotent
	DeleteScrim(ctx context.Context, id int64) error
}

// ScrimAnnouncer posts registration-open notices to Discord.
// This abstraction keeps the application layer off the Discord API.
type ScrimAnnouncer interface {
	// AnnounceScrimOpen notifies the registration channel that the window is open
	AnnounceScrimOpen(ctx context.Context, scrim *entities.Scrim) error
}

// RegistrationCleaner purges stale registration data from Discord.
type RegistrationCleaner interface {
	// CleanRegistration clears stale messages from the registration channel
	CleanRegistration(ctx context.Context, scrim *entities.Scrim) error
}
