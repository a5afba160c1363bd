package entities

// GuildSettings represents per-guild scrim support configuration
type GuildSettings struct {
	GuildID          int64  `db:"guild_id"`
	PrivateChannelID *int64 `db:"private_channel_id"` // Nullable - set once guild setup completed
	ScrimsModRoleID  *int64 `db:"scrims_mod_role_id"` // Nullable - moderator role created on first scrim
	LogChannelID     *int64 `db:"log_channel_id"`     // Nullable - restricted scrims log channel
}

// SetupComplete checks if the one-time guild setup has been run.
func (gs *GuildSettings) SetupComplete() bool {
	return gs.PrivateChannelID != nil && *gs.PrivateChannelID > 0
}

// HasScrimsModRole checks if a moderator role is recorded.
func (gs *GuildSettings) HasScrimsModRole() bool {
	return gs.ScrimsModRoleID != nil && *gs.ScrimsModRoleID > 0
}

// HasLogChannel checks if a log channel is recorded.
func (gs *GuildSettings) HasLogChannel() bool {
	return gs.LogChannelID != nil && *gs.LogChannelID > 0
}

// SetScrimsModRole records the moderator role ID.
func (gs *GuildSettings) SetScrimsModRole(roleID *int64) {
	gs.ScrimsModRoleID = roleID
}

// SetLogChannel records the log channel ID.
func (gs *GuildSettings) SetLogChannel(channelID *int64) {
	gs.LogChannelID = channelID
}
