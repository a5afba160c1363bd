package dto

// Control-channel request payloads. Discord snowflakes travel as JSON strings
// (the dashboard emits them that way to avoid precision loss); time fields are
// milliseconds in the wire encoding documented in domain/utils.

// CreateScrimRequest carries a create_new_scrim request.
type CreateScrimRequest struct {
	GuildID               int64  `json:"guild_id,string"`
	HostID                int64  `json:"host_id,string"`
	Name                  string `json:"name"`
	RegistrationChannelID int64  `json:"registration_channel_id,string"`
	SlotlistChannelID     int64  `json:"slotlist_channel_id,string"`
	RoleID                int64  `json:"role_id,string"`
	RequiredMentions      int    `json:"required_mentions"`
	TotalSlots            int    `json:"total_slots"`
	OpenTimeMillis        int64  `json:"open_time"`
}

// EditScrimRequest carries an edit_scrim request. Optional references are
// pointers so "absent" and "zero" stay distinguishable.
type EditScrimRequest struct {
	ID                    int64  `json:"id"`
	GuildID               int64  `json:"guild_id,string"`
	Name                  string `json:"name"`
	RequiredMentions      int    `json:"required_mentions"`
	StartFrom             int    `json:"start_from"`
	TotalSlots            int    `json:"total_slots"`
	Autoslotlist          bool   `json:"autoslotlist"`
	Multiregister         bool   `json:"multiregister"`
	AutodeleteRejects     bool   `json:"autodelete_rejects"`
	TeamnameCompulsion    bool   `json:"teamname_compulsion"`
	NoDuplicateName       bool   `json:"no_duplicate_name"`
	ShowTimeElapsed       bool   `json:"show_time_elapsed"`
	AutodeleteExtras      bool   `json:"autodelete_extras"`
	OpenMessage           string `json:"open_message"`
	CloseMessage          string `json:"close_message"`
	RegistrationChannelID int64  `json:"registration_channel_id,string"`
	SlotlistChannelID     int64  `json:"slotlist_channel_id,string"`
	RoleID                int64  `json:"role_id,string"`
	PingRoleID            *int64 `json:"ping_role_id,string,omitempty"`
	OpenRoleID            int64  `json:"open_role_id,string"`
	OpenTimeMillis        int64  `json:"open_time"`
	AutocleanTimeMillis   *int64 `json:"autoclean_time,omitempty"`
	Autoclean             bool   `json:"autoclean"`
	OpenDays              uint8  `json:"open_days"`
}

// DeleteScrimRequest carries a delete_scrim request.
type DeleteScrimRequest struct {
	ID int64 `json:"id"`
}
