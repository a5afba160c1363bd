package repository

import (
	"context"
	"fmt"

	"scrimbot/application"
	"scrimbot/database"
	"scrimbot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db  *database.DB
	tx  pgx.Tx
	ctx context.Context

	scrimRepo         interfaces.ScrimRepository
	timerRepo         interfaces.TimerRepository
	guildSettingsRepo interfaces.GuildSettingsRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// Create creates a new UnitOfWork instance
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.scrimRepo = NewScrimRepository(tx)
	u.timerRepo = NewTimerRepository(tx)
	u.guildSettingsRepo = NewGuildSettingsRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// ScrimRepository returns the scrim repository for this unit of work
func (u *unitOfWork) ScrimRepository() interfaces.ScrimRepository {
	if u.scrimRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.scrimRepo
}

// TimerRepository returns the timer repository for this unit of work
func (u *unitOfWork) TimerRepository() interfaces.TimerRepository {
	if u.timerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.timerRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	if u.guildSettingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSettingsRepo
}
