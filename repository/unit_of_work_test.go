package repository

import (
	"context"
	"testing"

	"scrimbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersists(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	scrim := testutil.CreateTestScrim(100, 200)
	require.NoError(t, uow.ScrimRepository().Create(ctx, scrim))
	require.NoError(t, uow.Commit())

	// Visible outside the transaction after commit
	got, err := NewScrimRepository(testDB.DB.Pool).GetByID(ctx, scrim.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	scrim := testutil.CreateTestScrim(100, 200)
	require.NoError(t, uow.ScrimRepository().Create(ctx, scrim))
	require.NoError(t, uow.Rollback())

	got, err := NewScrimRepository(testDB.DB.Pool).GetByID(ctx, scrim.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnitOfWork_RollbackAfterCommitIsNoOp(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.Commit())

	// The deferred-rollback idiom must be safe after a successful commit
	assert.NoError(t, uow.Rollback())
}

func TestUnitOfWork_DoubleBeginFails(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}

func TestUnitOfWork_RepositoriesRequireBegin(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)

	uow := factory.Create()
	assert.Panics(t, func() { uow.ScrimRepository() })
	assert.Panics(t, func() { uow.TimerRepository() })
	assert.Panics(t, func() { uow.GuildSettingsRepository() })
}
