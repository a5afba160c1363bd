package infrastructure

import (
	"context"
	"fmt"
	"strconv"

	"scrimbot/application"
	"scrimbot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const defaultOpenMessage = "Registration is now open!"

// DiscordNotifier posts scrim notices to Discord on behalf of the timer
// handlers. Implements application.ScrimAnnouncer and
// application.RegistrationCleaner.
type DiscordNotifier struct {
	session *discordgo.Session
}

// NewDiscordNotifier creates a notifier backed by the given session
func NewDiscordNotifier(session *discordgo.Session) *DiscordNotifier {
	return &DiscordNotifier{session: session}
}

var _ application.ScrimAnnouncer = (*DiscordNotifier)(nil)
var _ application.RegistrationCleaner = (*DiscordNotifier)(nil)

// AnnounceScrimOpen notifies the registration channel that the window is open
func (n *DiscordNotifier) AnnounceScrimOpen(ctx context.Context, scrim *entities.Scrim) error {
	channelID := strconv.FormatInt(scrim.RegistrationChannelID, 10)

	description := scrim.OpenMessage
	if description == "" {
		description = defaultOpenMessage
	}

	message := &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       scrim.Name,
			Description: description,
			Color:       modRoleColor,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Total Slots", Value: strconv.Itoa(scrim.TotalSlots), Inline: true},
				{Name: "Required Mentions", Value: strconv.Itoa(scrim.RequiredMentions), Inline: true},
			},
		},
	}
	if scrim.HasPingRole() {
		message.Content = fmt.Sprintf("<@&%d>", *scrim.PingRoleID)
		message.AllowedMentions = &discordgo.MessageAllowedMentions{
			Roles: []string{strconv.FormatInt(*scrim.PingRoleID, 10)},
		}
	}

	if _, err := n.session.ChannelMessageSendComplex(channelID, message); err != nil {
		return fmt.Errorf("failed to announce scrim %d: %w", scrim.ID, err)
	}

	log.WithFields(log.Fields{
		"scrim_id":   scrim.ID,
		"guild_id":   scrim.GuildID,
		"channel_id": scrim.RegistrationChannelID,
	}).Info("Announced scrim registration open")
	return nil
}

// CleanRegistration clears stale messages from the registration channel.
// Pinned messages survive; everything else from the previous window goes.
func (n *DiscordNotifier) CleanRegistration(ctx context.Context, scrim *entities.Scrim) error {
	channelID := strconv.FormatInt(scrim.RegistrationChannelID, 10)

	messages, err := n.session.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		return fmt.Errorf("failed to list messages in channel %d: %w", scrim.RegistrationChannelID, err)
	}

	var stale []string
	for _, message := range messages {
		if message.Pinned {
			continue
		}
		stale = append(stale, message.ID)
	}
	if len(stale) == 0 {
		return nil
	}

	if err := n.session.ChannelMessagesBulkDelete(channelID, stale); err != nil {
		return fmt.Errorf("failed to clean channel %d: %w", scrim.RegistrationChannelID, err)
	}

	log.WithFields(log.Fields{
		"scrim_id":   scrim.ID,
		"channel_id": scrim.RegistrationChannelID,
		"deleted":    len(stale),
	}).Info("Cleaned registration channel")
	return nil
}
