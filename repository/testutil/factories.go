package testutil

import (
	"time"

	"scrimbot/domain/entities"
)

// CreateTestScrim creates a scrim with sensible defaults, channels and roles
// derived from the given IDs so concurrent fixtures never collide
func CreateTestScrim(guildID, hostID int64) *entities.Scrim {
	return &entities.Scrim{
		GuildID:               guildID,
		HostID:                hostID,
		Name:                  "Test Scrims",
		RegistrationChannelID: guildID*10 + 1,
		SlotlistChannelID:     guildID*10 + 2,
		RoleID:                guildID*10 + 3,
		RequiredMentions:      4,
		TotalSlots:            25,
		OpenTime:              time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond),
		OpenDays:              entities.AllWeekdays,
	}
}

// CreateTestTimer creates a pending timer for the given scrim
func CreateTestTimer(event entities.TimerEvent, scrimID int64, fireAt time.Time) *entities.Timer {
	return &entities.Timer{
		Event:   event,
		ScrimID: scrimID,
		FireAt:  fireAt.UTC().Truncate(time.Millisecond),
		Payload: map[string]any{"scrim_id": scrimID},
	}
}

// CreateTestGuildSettings creates guild settings with setup completed
func CreateTestGuildSettings(guildID int64) *entities.GuildSettings {
	privateChannel := guildID*10 + 9
	return &entities.GuildSettings{
		GuildID:          guildID,
		PrivateChannelID: &privateChannel,
	}
}
