package application

import (
	"context"
	"testing"
	"time"

	"scrimbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleAutoclean_CleansAndAdvancesOneDay(t *testing.T) {
	ctx := context.Background()
	fireAt := time.Now().UTC().Add(-time.Minute)

	scrim := existingScrim()
	scrim.AutocleanEnabled = true
	scrim.AutocleanTime = &fireAt
	timer := dueTimer(9, entities.TimerEventAutoclean, fireAt)

	uow := NewStubUnitOfWork()
	uow.Scrims.On("Update", ctx, mock.MatchedBy(func(s *entities.Scrim) bool {
		return s.AutocleanTime != nil && s.AutocleanTime.Equal(fireAt.Add(24*time.Hour))
	})).Return(nil)
	uow.Timers.On("Upsert", ctx, mock.MatchedBy(func(next *entities.Timer) bool {
		return next.Event == entities.TimerEventAutoclean &&
			next.FireAt.Equal(fireAt.Add(24*time.Hour))
	})).Return(nil)

	cleaner := &StubCleaner{}
	handler := NewAutocleanHandler(cleaner)

	require.NoError(t, handler.HandleAutoclean(ctx, uow, scrim, timer))
	assert.Equal(t, []int64{testScrimID}, cleaner.Cleaned)
	uow.Scrims.AssertExpectations(t)
	uow.Timers.AssertExpectations(t)
}

func TestHandleAutoclean_DisabledIsNoOp(t *testing.T) {
	ctx := context.Background()
	fireAt := time.Now().UTC().Add(-time.Minute)

	scrim := existingScrim()
	timer := dueTimer(9, entities.TimerEventAutoclean, fireAt)

	uow := NewStubUnitOfWork()
	cleaner := &StubCleaner{}
	handler := NewAutocleanHandler(cleaner)

	require.NoError(t, handler.HandleAutoclean(ctx, uow, scrim, timer))
	assert.Empty(t, cleaner.Cleaned)
	uow.Scrims.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandleAutoclean_DuplicateDeliveryIsNoOp(t *testing.T) {
	ctx := context.Background()
	fireAt := time.Now().UTC().Add(-time.Hour)
	advanced := fireAt.Add(24 * time.Hour)

	scrim := existingScrim()
	scrim.AutocleanEnabled = true
	scrim.AutocleanTime = &advanced
	timer := dueTimer(9, entities.TimerEventAutoclean, fireAt)

	uow := NewStubUnitOfWork()
	cleaner := &StubCleaner{}
	handler := NewAutocleanHandler(cleaner)

	require.NoError(t, handler.HandleAutoclean(ctx, uow, scrim, timer))
	assert.Empty(t, cleaner.Cleaned)
	uow.Timers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
