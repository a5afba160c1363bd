package services

import (
	"scrimbot/domain/entities"
)

// ScrimField names one editable field of a scrim configuration.
type ScrimField string

const (
	FieldName                ScrimField = "name"
	FieldRequiredMentions    ScrimField = "required_mentions"
	FieldStartFrom           ScrimField = "start_from"
	FieldTotalSlots          ScrimField = "total_slots"
	FieldAutoslotlist        ScrimField = "autoslotlist"
	FieldMultiregister       ScrimField = "multiregister"
	FieldAutodeleteRejects   ScrimField = "autodelete_rejects"
	FieldTeamnameCompulsion  ScrimField = "teamname_compulsion"
	FieldNoDuplicateName     ScrimField = "no_duplicate_name"
	FieldShowTimeElapsed     ScrimField = "show_time_elapsed"
	FieldAutodeleteExtras    ScrimField = "autodelete_extras"
	FieldOpenMessage         ScrimField = "open_message"
	FieldCloseMessage        ScrimField = "close_message"
	FieldRegistrationChannel ScrimField = "registration_channel_id"
	FieldSlotlistChannel     ScrimField = "slotlist_channel_id"
	FieldRole                ScrimField = "role_id"
	FieldPingRole            ScrimField = "ping_role_id"
	FieldOpenRole            ScrimField = "open_role_id"
	FieldOpenTime            ScrimField = "open_time"
	FieldAutocleanTime       ScrimField = "autoclean_time"
	FieldAutoclean           ScrimField = "autoclean"
	FieldOpenDays            ScrimField = "open_days"
)

// ScrimDiff is the minimal set of changed fields between a persisted scrim and
// an incoming edit, plus the follow-up work the changes imply. Re-sending an
// unchanged reference id raises no revalidation flag, so idempotent edits cost
// no external checks.
type ScrimDiff struct {
	Changed map[ScrimField]bool

	NeedsRegistrationChannelCheck bool
	NeedsSlotlistChannelCheck     bool
	NeedsRoleCheck                bool

	RescheduleOpen      bool
	RescheduleAutoclean bool
}

// Has reports whether the field changed.
func (d *ScrimDiff) Has(f ScrimField) bool {
	return d.Changed[f]
}

// Empty reports whether the edit is a no-op.
func (d *ScrimDiff) Empty() bool {
	return len(d.Changed) == 0
}

// DiffScrim compares the persisted scrim against the desired state built from
// an edit request. Time fields must already be converted to absolute instants.
// pingRoleProvided distinguishes an absent optional ping role from a cleared
// one; when absent the persisted value is left alone.
func DiffScrim(existing, desired *entities.Scrim, pingRoleProvided bool) ScrimDiff {
	diff := ScrimDiff{Changed: make(map[ScrimField]bool)}
	mark := func(f ScrimField, changed bool) {
		if changed {
			diff.Changed[f] = true
		}
	}

	mark(FieldName, existing.Name != desired.Name)
	mark(FieldRequiredMentions, existing.RequiredMentions != desired.RequiredMentions)
	mark(FieldStartFrom, existing.StartFrom != desired.StartFrom)
	mark(FieldTotalSlots, existing.TotalSlots != desired.TotalSlots)
	mark(FieldAutoslotlist, existing.Autoslotlist != desired.Autoslotlist)
	mark(FieldMultiregister, existing.Multiregister != desired.Multiregister)
	mark(FieldAutodeleteRejects, existing.AutodeleteRejects != desired.AutodeleteRejects)
	mark(FieldTeamnameCompulsion, existing.TeamnameCompulsion != desired.TeamnameCompulsion)
	mark(FieldNoDuplicateName, existing.NoDuplicateName != desired.NoDuplicateName)
	mark(FieldShowTimeElapsed, existing.ShowTimeElapsed != desired.ShowTimeElapsed)
	mark(FieldAutodeleteExtras, existing.AutodeleteExtras != desired.AutodeleteExtras)
	mark(FieldOpenMessage, existing.OpenMessage != desired.OpenMessage)
	mark(FieldCloseMessage, existing.CloseMessage != desired.CloseMessage)
	mark(FieldOpenDays, existing.OpenDays != desired.OpenDays)
	mark(FieldAutoclean, existing.AutocleanEnabled != desired.AutocleanEnabled)

	if existing.RegistrationChannelID != desired.RegistrationChannelID {
		diff.Changed[FieldRegistrationChannel] = true
		diff.NeedsRegistrationChannelCheck = true
	}
	if existing.SlotlistChannelID != desired.SlotlistChannelID {
		diff.Changed[FieldSlotlistChannel] = true
		diff.NeedsSlotlistChannelCheck = true
	}
	if existing.RoleID != desired.RoleID {
		diff.Changed[FieldRole] = true
		diff.NeedsRoleCheck = true
	}

	if pingRoleProvided && !int64PtrEqual(existing.PingRoleID, desired.PingRoleID) {
		diff.Changed[FieldPingRole] = true
	}
	mark(FieldOpenRole, !int64PtrEqual(existing.OpenRoleID, desired.OpenRoleID))

	// Instants compare with Equal so differing wall-clock representations of
	// the same moment never trigger a reschedule.
	if !existing.OpenTime.Equal(desired.OpenTime) {
		diff.Changed[FieldOpenTime] = true
		diff.RescheduleOpen = true
	}
	if desired.AutocleanTime != nil &&
		(existing.AutocleanTime == nil || !existing.AutocleanTime.Equal(*desired.AutocleanTime)) {
		diff.Changed[FieldAutocleanTime] = true
		diff.RescheduleAutoclean = true
	}

	return diff
}

// Apply copies the changed fields from desired onto dst, leaving everything
// else as persisted. All changed fields land in one record so the repository
// writes them in a single update.
func (d *ScrimDiff) Apply(dst, desired *entities.Scrim) {
	if d.Has(FieldName) {
		dst.Name = desired.Name
	}
	if d.Has(FieldRequiredMentions) {
		dst.RequiredMentions = desired.RequiredMentions
	}
	if d.Has(FieldStartFrom) {
		dst.StartFrom = desired.StartFrom
	}
	if d.Has(FieldTotalSlots) {
		dst.TotalSlots = desired.TotalSlots
	}
	if d.Has(FieldAutoslotlist) {
		dst.Autoslotlist = desired.Autoslotlist
	}
	if d.Has(FieldMultiregister) {
		dst.Multiregister = desired.Multiregister
	}
	if d.Has(FieldAutodeleteRejects) {
		dst.AutodeleteRejects = desired.AutodeleteRejects
	}
	if d.Has(FieldTeamnameCompulsion) {
		dst.TeamnameCompulsion = desired.TeamnameCompulsion
	}
	if d.Has(FieldNoDuplicateName) {
		dst.NoDuplicateName = desired.NoDuplicateName
	}
	if d.Has(FieldShowTimeElapsed) {
		dst.ShowTimeElapsed = desired.ShowTimeElapsed
	}
	if d.Has(FieldAutodeleteExtras) {
		dst.AutodeleteExtras = desired.AutodeleteExtras
	}
	if d.Has(FieldOpenMessage) {
		dst.OpenMessage = desired.OpenMessage
	}
	if d.Has(FieldCloseMessage) {
		dst.CloseMessage = desired.CloseMessage
	}
	if d.Has(FieldRegistrationChannel) {
		dst.RegistrationChannelID = desired.RegistrationChannelID
	}
	if d.Has(FieldSlotlistChannel) {
		dst.SlotlistChannelID = desired.SlotlistChannelID
	}
	if d.Has(FieldRole) {
		dst.RoleID = desired.RoleID
	}
	if d.Has(FieldPingRole) {
		dst.PingRoleID = desired.PingRoleID
	}
	if d.Has(FieldOpenRole) {
		dst.OpenRoleID = desired.OpenRoleID
	}
	if d.Has(FieldOpenTime) {
		dst.OpenTime = desired.OpenTime
	}
	if d.Has(FieldAutocleanTime) {
		dst.AutocleanTime = desired.AutocleanTime
	}
	if d.Has(FieldAutoclean) {
		dst.AutocleanEnabled = desired.AutocleanEnabled
	}
	if d.Has(FieldOpenDays) {
		dst.OpenDays = desired.OpenDays
	}
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
