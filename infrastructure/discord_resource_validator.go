package infrastructure

import (
	"context"
	"strconv"

	"scrimbot/domain/entities"
	"scrimbot/domain/interfaces"
	"scrimbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// capabilityBits maps domain capabilities onto Discord permission integers.
var capabilityBits = []struct {
	capability entities.Capability
	permission int64
}{
	{entities.CapabilitySendMessages, discordgo.PermissionSendMessages},
	{entities.CapabilityManageMessages, discordgo.PermissionManageMessages},
	{entities.CapabilityManageChannels, discordgo.PermissionManageChannels},
	{entities.CapabilityManageRoles, discordgo.PermissionManageRoles},
	{entities.CapabilityManageGuild, discordgo.PermissionManageServer},
	{entities.CapabilityAddReactions, discordgo.PermissionAddReactions},
	{entities.CapabilityEmbedLinks, discordgo.PermissionEmbedLinks},
	{entities.CapabilityAdministrator, discordgo.PermissionAdministrator},
}

// allCapabilities is what an administrator effectively holds.
const allCapabilities = entities.CapabilitySendMessages |
	entities.CapabilityManageMessages |
	entities.CapabilityManageChannels |
	entities.CapabilityManageRoles |
	entities.CapabilityManageGuild |
	entities.CapabilityAddReactions |
	entities.CapabilityEmbedLinks |
	entities.CapabilityAdministrator

// capabilitiesFromPermissions translates a Discord permission integer into
// domain capabilities. Administrator implies every capability, matching how
// Discord resolves it.
func capabilitiesFromPermissions(permissions int64) entities.Capability {
	if permissions&discordgo.PermissionAdministrator != 0 {
		return allCapabilities
	}
	var caps entities.Capability
	for _, m := range capabilityBits {
		if permissions&m.permission != 0 {
			caps |= m.capability
		}
	}
	return caps
}

// DiscordResourceValidator checks guilds, channels and roles against the
// Discord API, preferring the session state cache and falling back to REST.
type DiscordResourceValidator struct {
	session *discordgo.Session
}

// NewDiscordResourceValidator creates a validator backed by the given session
func NewDiscordResourceValidator(session *discordgo.Session) interfaces.ResourceValidator {
	return &DiscordResourceValidator{session: session}
}

// ValidateGuild checks the guild exists and the bot is a member of it
func (v *DiscordResourceValidator) ValidateGuild(ctx context.Context, guildID int64) error {
	if _, err := v.guild(guildID); err != nil {
		return err
	}
	return nil
}

// GuildCapabilities returns the bot's effective guild-scope capabilities
func (v *DiscordResourceValidator) GuildCapabilities(ctx context.Context, guildID int64) (entities.Capability, error) {
	guild, err := v.guild(guildID)
	if err != nil {
		return 0, err
	}

	member, err := v.botMember(guild)
	if err != nil {
		return 0, err
	}

	// Aggregate @everyone plus each of the bot's roles; the guild ID doubles
	// as the @everyone role ID
	permissions := rolePermissions(guild, guild.ID)
	for _, roleID := range member.Roles {
		permissions |= rolePermissions(guild, roleID)
	}
	if guild.OwnerID == member.User.ID {
		permissions |= discordgo.PermissionAdministrator
	}

	return capabilitiesFromPermissions(permissions), nil
}

// ValidateChannel checks the channel is visible to the bot and that the bot
// holds every required capability in it
func (v *DiscordResourceValidator) ValidateChannel(ctx context.Context, guildID, channelID int64, required entities.Capability) error {
	guild, err := v.guild(guildID)
	if err != nil {
		return err
	}

	channelSnowflake := strconv.FormatInt(channelID, 10)
	channel, err := v.session.State.Channel(channelSnowflake)
	if err != nil {
		channel, err = v.session.Channel(channelSnowflake)
	}
	if err != nil || channel == nil || channel.GuildID != guild.ID {
		return services.ErrChannelNotVisible
	}

	permissions, err := v.session.UserChannelPermissions(v.session.State.User.ID, channelSnowflake)
	if err != nil {
		log.WithFields(log.Fields{
			"channel_id": channelID,
			"error":      err,
		}).Warn("Failed to resolve channel permissions")
		return services.ErrChannelNotVisible
	}
	if permissions&discordgo.PermissionViewChannel == 0 {
		return services.ErrChannelNotVisible
	}

	caps := capabilitiesFromPermissions(permissions)
	if missing := caps.Missing(required); missing != 0 {
		return &services.ChannelCapabilityError{ChannelID: channelID, Missing: missing}
	}
	return nil
}

// ValidateRole checks the role exists and carries none of the forbidden bits
func (v *DiscordResourceValidator) ValidateRole(ctx context.Context, guildID, roleID int64, forbidden entities.Capability) error {
	guild, err := v.guild(guildID)
	if err != nil {
		return err
	}

	roleSnowflake := strconv.FormatInt(roleID, 10)
	for _, role := range guild.Roles {
		if role.ID != roleSnowflake {
			continue
		}
		caps := capabilitiesFromPermissions(role.Permissions)
		if held := caps.Intersect(forbidden); held != 0 {
			return &services.ForbiddenRoleError{RoleID: roleID, Forbidden: held}
		}
		return nil
	}
	return services.ErrRoleNotFound
}

// guild resolves a guild from state with a REST fallback.
func (v *DiscordResourceValidator) guild(guildID int64) (*discordgo.Guild, error) {
	snowflake := strconv.FormatInt(guildID, 10)
	guild, err := v.session.State.Guild(snowflake)
	if err != nil || guild == nil {
		guild, err = v.session.Guild(snowflake)
	}
	if err != nil || guild == nil {
		return nil, services.ErrGuildNotFound
	}
	return guild, nil
}

// botMember resolves the bot's own membership in the guild.
func (v *DiscordResourceValidator) botMember(guild *discordgo.Guild) (*discordgo.Member, error) {
	botID := v.session.State.User.ID
	member, err := v.session.State.Member(guild.ID, botID)
	if err != nil || member == nil {
		member, err = v.session.GuildMember(guild.ID, botID)
	}
	if err != nil || member == nil {
		return nil, services.ErrGuildNotFound
	}
	return member, nil
}

func rolePermissions(guild *discordgo.Guild, roleID string) int64 {
	for _, role := range guild.Roles {
		if role.ID == roleID {
			return role.Permissions
		}
	}
	return 0
}
