package infrastructure

import (
	"context"
	"fmt"
	"strconv"

	"scrimbot/config"
	"scrimbot/domain/interfaces"
	"scrimbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	modRoleColor    = 0x00FFB3
	provisionReason = "Created for scrims management."
)

// DiscordGuildProvisioner creates the scrims moderator role and log channel.
// Find-by-name before create keeps every operation idempotent, so the
// best-effort setup phase can rerun after partial failures.
type DiscordGuildProvisioner struct {
	session        *discordgo.Session
	modRoleName    string
	logChannelName string
}

// NewDiscordGuildProvisioner creates a provisioner backed by the given session
func NewDiscordGuildProvisioner(session *discordgo.Session, cfg *config.Config) interfaces.GuildProvisioner {
	return &DiscordGuildProvisioner{
		session:        session,
		modRoleName:    cfg.ModRoleName,
		logChannelName: cfg.LogChannelName,
	}
}

// EnsureScrimsModRole finds or creates the scrims moderator role
func (p *DiscordGuildProvisioner) EnsureScrimsModRole(ctx context.Context, guildID int64) (int64, bool, error) {
	guild, err := p.guild(guildID)
	if err != nil {
		return 0, false, err
	}

	for _, role := range guild.Roles {
		if role.Name == p.modRoleName {
			roleID, err := strconv.ParseInt(role.ID, 10, 64)
			if err != nil {
				return 0, false, fmt.Errorf("failed to parse role ID %s: %w", role.ID, err)
			}
			return roleID, false, nil
		}
	}

	color := modRoleColor
	role, err := p.session.GuildRoleCreate(guild.ID, &discordgo.RoleParams{
		Name:  p.modRoleName,
		Color: &color,
	}, discordgo.WithAuditLogReason(provisionReason))
	if err != nil {
		return 0, false, fmt.Errorf("failed to create moderator role: %w", err)
	}

	roleID, err := strconv.ParseInt(role.ID, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse role ID %s: %w", role.ID, err)
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"role_id":  roleID,
	}).Info("Created scrims moderator role")
	return roleID, true, nil
}

// EnsureLogChannel finds or creates the restricted scrims log channel, seeding
// and pinning the explanatory note on first creation
func (p *DiscordGuildProvisioner) EnsureLogChannel(ctx context.Context, guildID, modRoleID int64) (int64, bool, error) {
	guild, err := p.guild(guildID)
	if err != nil {
		return 0, false, err
	}

	channels, err := p.session.GuildChannels(guild.ID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to list guild channels: %w", err)
	}
	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildText && channel.Name == p.logChannelName {
			channelID, err := strconv.ParseInt(channel.ID, 10, 64)
			if err != nil {
				return 0, false, fmt.Errorf("failed to parse channel ID %s: %w", channel.ID, err)
			}
			return channelID, false, nil
		}
	}

	modRoleSnowflake := strconv.FormatInt(modRoleID, 10)

	// Hidden from @everyone, visible to the bot and the moderator role
	channel, err := p.session.GuildChannelCreateComplex(guild.ID, discordgo.GuildChannelCreateData{
		Name: p.logChannelName,
		Type: discordgo.ChannelTypeGuildText,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:   guild.ID, // @everyone role shares the guild ID
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    p.session.State.User.ID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel,
			},
			{
				ID:    modRoleSnowflake,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel,
			},
		},
	}, discordgo.WithAuditLogReason(provisionReason))
	if err != nil {
		return 0, false, fmt.Errorf("failed to create log channel: %w", err)
	}

	channelID, err := strconv.ParseInt(channel.ID, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse channel ID %s: %w", channel.ID, err)
	}

	if err := p.seedLogChannel(channel.ID, modRoleSnowflake); err != nil {
		// The channel itself is in place; a rerun will not recreate it
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
			"error":      err,
		}).Warn("Failed to seed log channel note")
	}

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"channel_id": channelID,
	}).Info("Created scrims log channel")
	return channelID, true, nil
}

// GrantModRoleChannelAccess lets the moderator role speak in the registration channel
func (p *DiscordGuildProvisioner) GrantModRoleChannelAccess(ctx context.Context, channelID, modRoleID int64) error {
	allow := int64(discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory)

	err := p.session.ChannelPermissionSet(
		strconv.FormatInt(channelID, 10),
		strconv.FormatInt(modRoleID, 10),
		discordgo.PermissionOverwriteTypeRole,
		allow,
		0,
	)
	if err != nil {
		return fmt.Errorf("failed to grant moderator access to channel %d: %w", channelID, err)
	}
	return nil
}

// seedLogChannel posts and pins the explanatory note in a fresh log channel.
func (p *DiscordGuildProvisioner) seedLogChannel(channelID, modRoleSnowflake string) error {
	note, err := p.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf(
			"If events related to scrims i.e opening registrations or adding roles, "+
				"etc are triggered, then they will be logged in this channel. "+
				"Also I have created <@&%[1]s>, you can give that role to your "+
				"scrims-moderators. User with <@&%[1]s> can also send messages in "+
				"registration channels and they won't be considered as scrims-registration.\n\n"+
				"`Note`: **Do not rename this channel.**",
			modRoleSnowflake,
		),
		Color: modRoleColor,
	})
	if err != nil {
		return fmt.Errorf("failed to send log channel note: %w", err)
	}
	if err := p.session.ChannelMessagePin(channelID, note.ID); err != nil {
		return fmt.Errorf("failed to pin log channel note: %w", err)
	}
	return nil
}

func (p *DiscordGuildProvisioner) guild(guildID int64) (*discordgo.Guild, error) {
	snowflake := strconv.FormatInt(guildID, 10)
	guild, err := p.session.State.Guild(snowflake)
	if err != nil || guild == nil {
		guild, err = p.session.Guild(snowflake)
	}
	if err != nil || guild == nil {
		return nil, services.ErrGuildNotFound
	}
	return guild, nil
}
