package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstantFromWireMillis(t *testing.T) {
	t.Run("one hour on the wire clock", func(t *testing.T) {
		instant := InstantFromWireMillis(3600000)

		expected := time.Date(1970, 1, 1, 0, 0, 0, 0, IST).
			Add(5*time.Hour + 30*time.Minute).
			Add(time.Hour)
		assert.True(t, instant.Equal(expected))
	})

	t.Run("equals unix epoch plus millis", func(t *testing.T) {
		// IST is UTC+5:30, so the baked-in 5h30m offset cancels out and the
		// wire value is plain milliseconds since the Unix epoch
		assert.True(t, InstantFromWireMillis(0).Equal(time.Unix(0, 0)))
		assert.True(t, InstantFromWireMillis(3600000).Equal(time.Unix(3600, 0)))
	})

	t.Run("preserves millisecond precision", func(t *testing.T) {
		instant := InstantFromWireMillis(1234)
		assert.Equal(t, int64(1234), instant.UnixMilli())
	})
}

func TestNormalizeAutocleanTime(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	t.Run("future time is unchanged", func(t *testing.T) {
		future := now.Add(3 * time.Hour)
		assert.True(t, NormalizeAutocleanTime(future, now).Equal(future))
	})

	t.Run("past time rolls forward one day", func(t *testing.T) {
		past := now.Add(-3 * time.Hour)
		assert.True(t, NormalizeAutocleanTime(past, now).Equal(past.Add(24*time.Hour)))
	})

	t.Run("exactly now is not rolled", func(t *testing.T) {
		assert.True(t, NormalizeAutocleanTime(now, now).Equal(now))
	})
}
