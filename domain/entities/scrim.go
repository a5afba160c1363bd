package entities

import "time"

// Weekdays is a bitmask of weekdays a scrim is allowed to open on.
// Bit n corresponds to time.Weekday(n), Sunday = 0.
type Weekdays uint8

// AllWeekdays has every day set; the zero value means no restriction either,
// but persisted configs always store an explicit mask.
const AllWeekdays Weekdays = 0x7F

// Contains reports whether the given weekday is in the set.
func (w Weekdays) Contains(day time.Weekday) bool {
	if w == 0 {
		return true
	}
	return w&(1<<uint(day)) != 0
}

// Add returns the set with the given weekday included.
func (w Weekdays) Add(day time.Weekday) Weekdays {
	return w | (1 << uint(day))
}

// Scrim represents one tenant-scoped scrim registration configuration.
// Each scrim owns exactly one registration channel and one slotlist channel.
type Scrim struct {
	ID      int64 `db:"id"`
	GuildID int64 `db:"guild_id"`
	HostID  int64 `db:"host_id"`
	Name    string `db:"name"`

	RegistrationChannelID int64  `db:"registration_channel_id"`
	SlotlistChannelID     int64  `db:"slotlist_channel_id"`
	RoleID                int64  `db:"role_id"`
	PingRoleID            *int64 `db:"ping_role_id"` // Nullable - role mentioned when registration opens
	OpenRoleID            *int64 `db:"open_role_id"` // Nullable - role the open gate applies to

	RequiredMentions int `db:"required_mentions"`
	TotalSlots       int `db:"total_slots"`
	StartFrom        int `db:"start_from"`

	Autoslotlist       bool `db:"autoslotlist"`
	Multiregister      bool `db:"multiregister"`
	AutodeleteRejects  bool `db:"autodelete_rejects"`
	TeamnameCompulsion bool `db:"teamname_compulsion"`
	NoDuplicateName    bool `db:"no_duplicate_name"`
	ShowTimeElapsed    bool `db:"show_time_elapsed"`
	AutodeleteExtras   bool `db:"autodelete_extras"`

	OpenMessage  string `db:"open_message"`
	CloseMessage string `db:"close_message"`

	OpenTime         time.Time  `db:"open_time"`
	AutocleanTime    *time.Time `db:"autoclean_time"` // Nullable - absent when autoclean never configured
	AutocleanEnabled bool       `db:"autoclean"`
	OpenDays         Weekdays   `db:"open_days"`

	CreatedAt time.Time `db:"created_at"`
}

// HasPingRole checks if a ping role is configured.
func (s *Scrim) HasPingRole() bool {
	return s.PingRoleID != nil && *s.PingRoleID > 0
}

// HasAutoclean reports whether an autoclean timer should exist for this scrim.
func (s *Scrim) HasAutoclean() bool {
	return s.AutocleanEnabled && s.AutocleanTime != nil
}

// NextOpenTime returns the first instant at or after the stored open time
// wall clock, on a day allowed by OpenDays, strictly after the given reference.
// Used by the open handler to roll the recurring window forward.
func (s *Scrim) NextOpenTime(after time.Time) time.Time {
	next := s.OpenTime
	for !next.After(after) || !s.OpenDays.Contains(next.Weekday()) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
