package services

import (
	"errors"
	"fmt"

	"scrimbot/domain/entities"
)

// Expected denial conditions. The gateway maps these to denial replies; they
// never abort the process and they never leave partial state behind.
var (
	// ErrGuildNotFound means the guild is gone or the bot was removed from it.
	ErrGuildNotFound = errors.New("the bot has been removed from the server")

	// ErrSetupRequired means the one-time guild setup has not been run.
	ErrSetupRequired = errors.New("guild setup has not been completed yet, run the setup command once and try again")

	// ErrScrimNotFound means the scrim was deleted or never existed.
	ErrScrimNotFound = errors.New("either this scrim was deleted or the bot was removed from the server")

	// ErrChannelNotVisible means the bot cannot see the referenced channel.
	ErrChannelNotVisible = errors.New("the bot cannot see the selected channel, make sure it has appropriate permissions")

	// ErrChannelAlreadyAssigned means another scrim already owns the channel.
	ErrChannelAlreadyAssigned = errors.New("the channel you selected is already assigned to another scrim")

	// ErrRoleNotFound means the referenced role does not exist in the guild.
	ErrRoleNotFound = errors.New("the selected role no longer exists in the server")

	// ErrConcurrencyConflict means a competing edit or delete for the same
	// scrim held the row past the request deadline; the caller may retry.
	ErrConcurrencyConflict = errors.New("another change to this scrim is in progress, try again")
)

// GuildCapabilityError reports guild-scope permissions the bot lacks.
type GuildCapabilityError struct {
	Missing entities.Capability
}

func (e *GuildCapabilityError) Error() string {
	return fmt.Sprintf("the bot needs %s permission in the server", e.Missing)
}

// ChannelCapabilityError reports channel permissions the bot lacks.
// All-or-nothing: any missing bit denies the whole resource.
type ChannelCapabilityError struct {
	ChannelID int64
	Missing   entities.Capability
}

func (e *ChannelCapabilityError) Error() string {
	return fmt.Sprintf("the bot is missing %s permission in channel %d", e.Missing, e.ChannelID)
}

// ForbiddenRoleError reports moderation bits carried by the success role.
type ForbiddenRoleError struct {
	RoleID    int64
	Forbidden entities.Capability
}

func (e *ForbiddenRoleError) Error() string {
	return fmt.Sprintf("success role carries moderation permissions (%s), remove them first", e.Forbidden)
}

// IsDenial reports whether err is an expected validation/conflict outcome as
// opposed to an infrastructure fault.
func IsDenial(err error) bool {
	switch {
	case errors.Is(err, ErrGuildNotFound),
		errors.Is(err, ErrSetupRequired),
		errors.Is(err, ErrScrimNotFound),
		errors.Is(err, ErrChannelNotVisible),
		errors.Is(err, ErrChannelAlreadyAssigned),
		errors.Is(err, ErrRoleNotFound),
		errors.Is(err, ErrConcurrencyConflict):
		return true
	}
	var guildCap *GuildCapabilityError
	var chanCap *ChannelCapabilityError
	var roleErr *ForbiddenRoleError
	return errors.As(err, &guildCap) || errors.As(err, &chanCap) || errors.As(err, &roleErr)
}
