package utils

import "time"

// IST is the fixed regional timezone all scrim scheduling decisions are made
// in. A fixed zone avoids a tzdata dependency; IST has no DST.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// wireOffset is the fixed offset the dashboard bakes into wire times: wire
// values are milliseconds added to midnight 1970-01-01 IST plus 5h30m. Since
// IST is UTC+5:30, the resulting instant equals the Unix epoch plus the
// millisecond value exactly. The IST form is kept because open-day recurrence
// and autoclean roll-forward are calendar decisions made in IST.
const wireOffset = 5*time.Hour + 30*time.Minute

var istEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, IST)

// InstantFromWireMillis converts a control-channel millisecond time field to
// the absolute instant used for storage and scheduling.
func InstantFromWireMillis(ms int64) time.Time {
	return istEpoch.Add(wireOffset + time.Duration(ms)*time.Millisecond)
}

// NormalizeAutocleanTime rolls a past-due autoclean instant forward by one
// 24h period so a freshly saved config never schedules an already-due timer.
func NormalizeAutocleanTime(t, now time.Time) time.Time {
	if now.After(t) {
		return t.Add(24 * time.Hour)
	}
	return t
}
