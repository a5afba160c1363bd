package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"scrimbot/domain/entities"
	"scrimbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTimerScheduler_ScheduleUpserts(t *testing.T) {
	ctx := context.Background()
	fireAt := time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC)
	payload := map[string]any{"guild_id": int64(100), "scrim_id": int64(1)}

	repo := &testhelpers.MockTimerRepository{}
	repo.On("Upsert", ctx, mock.MatchedBy(func(timer *entities.Timer) bool {
		return timer.Event == entities.TimerEventScrimOpen &&
			timer.ScrimID == int64(1) &&
			timer.FireAt.Equal(fireAt)
	})).Return(nil)

	scheduler := NewTimerScheduler(repo)
	require.NoError(t, scheduler.Schedule(ctx, entities.TimerEventScrimOpen, 1, fireAt, payload))
	repo.AssertExpectations(t)
}

func TestTimerScheduler_RescheduleIsKeyedReplace(t *testing.T) {
	ctx := context.Background()
	fireAt := time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC)

	repo := &testhelpers.MockTimerRepository{}
	repo.On("Upsert", ctx, mock.AnythingOfType("*entities.Timer")).Return(nil)

	scheduler := NewTimerScheduler(repo)
	require.NoError(t, scheduler.Reschedule(ctx, entities.TimerEventScrimOpen, 1, fireAt, nil))

	// The keyed upsert is the whole replacement; no separate delete happens
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestTimerScheduler_CancelMissingIsNoOp(t *testing.T) {
	ctx := context.Background()

	repo := &testhelpers.MockTimerRepository{}
	repo.On("Delete", ctx, entities.TimerEventAutoclean, int64(1)).Return(false, nil)

	scheduler := NewTimerScheduler(repo)
	assert.NoError(t, scheduler.Cancel(ctx, entities.TimerEventAutoclean, 1))
}

func TestTimerScheduler_WrapsRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	repoErr := errors.New("connection reset")

	repo := &testhelpers.MockTimerRepository{}
	repo.On("Upsert", ctx, mock.AnythingOfType("*entities.Timer")).Return(repoErr)

	scheduler := NewTimerScheduler(repo)
	err := scheduler.Schedule(ctx, entities.TimerEventScrimOpen, 1, time.Now(), nil)
	assert.ErrorIs(t, err, repoErr)
}
