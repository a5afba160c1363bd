package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdays(t *testing.T) {
	t.Run("zero mask allows every day", func(t *testing.T) {
		var w Weekdays
		for day := time.Sunday; day <= time.Saturday; day++ {
			assert.True(t, w.Contains(day))
		}
	})

	t.Run("all weekdays mask allows every day", func(t *testing.T) {
		for day := time.Sunday; day <= time.Saturday; day++ {
			assert.True(t, AllWeekdays.Contains(day))
		}
	})

	t.Run("restricted mask", func(t *testing.T) {
		w := Weekdays(0).Add(time.Saturday).Add(time.Sunday)
		assert.True(t, w.Contains(time.Saturday))
		assert.True(t, w.Contains(time.Sunday))
		assert.False(t, w.Contains(time.Wednesday))
	})
}

func TestScrim_NextOpenTime(t *testing.T) {
	// 2026-09-01 is a Tuesday
	openTime := time.Date(2026, time.September, 1, 16, 0, 0, 0, time.UTC)

	t.Run("rolls forward one day when unrestricted", func(t *testing.T) {
		scrim := &Scrim{OpenTime: openTime, OpenDays: AllWeekdays}
		next := scrim.NextOpenTime(openTime)
		assert.True(t, next.Equal(openTime.Add(24*time.Hour)))
	})

	t.Run("skips disallowed weekdays", func(t *testing.T) {
		weekend := Weekdays(0).Add(time.Saturday).Add(time.Sunday)
		scrim := &Scrim{OpenTime: openTime, OpenDays: weekend}
		next := scrim.NextOpenTime(openTime)
		assert.Equal(t, time.Saturday, next.Weekday())
		assert.True(t, next.Equal(openTime.Add(4*24*time.Hour)))
	})

	t.Run("catches up after downtime", func(t *testing.T) {
		scrim := &Scrim{OpenTime: openTime, OpenDays: AllWeekdays}
		// Three days of downtime; the next window is the first future one
		next := scrim.NextOpenTime(openTime.Add(3*24*time.Hour + time.Minute))
		assert.True(t, next.Equal(openTime.Add(4*24*time.Hour)))
	})
}

func TestScrim_HasAutoclean(t *testing.T) {
	at := time.Now()

	scrim := &Scrim{}
	assert.False(t, scrim.HasAutoclean())

	scrim.AutocleanEnabled = true
	assert.False(t, scrim.HasAutoclean(), "enabled without a time is not armed")

	scrim.AutocleanTime = &at
	assert.True(t, scrim.HasAutoclean())

	scrim.AutocleanEnabled = false
	assert.False(t, scrim.HasAutoclean())
}
