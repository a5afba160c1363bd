package application

import (
	"context"

	"scrimbot/domain/entities"
	"scrimbot/domain/interfaces"
	"scrimbot/domain/testhelpers"
)

// StubUnitOfWork hands out mock repositories and records transaction calls.
type StubUnitOfWork struct {
	Scrims   *testhelpers.MockScrimRepository
	Timers   *testhelpers.MockTimerRepository
	Settings *testhelpers.MockGuildSettingsRepository

	Begins    int
	Commits   int
	Rollbacks int

	BeginErr  error
	CommitErr error
}

// NewStubUnitOfWork creates a stub with fresh mock repositories
func NewStubUnitOfWork() *StubUnitOfWork {
	return &StubUnitOfWork{
		Scrims:   &testhelpers.MockScrimRepository{},
		Timers:   &testhelpers.MockTimerRepository{},
		Settings: &testhelpers.MockGuildSettingsRepository{},
	}
}

func (u *StubUnitOfWork) Begin(ctx context.Context) error {
	u.Begins++
	return u.BeginErr
}

func (u *StubUnitOfWork) Commit() error {
	if u.CommitErr != nil {
		return u.CommitErr
	}
	u.Commits++
	return nil
}

func (u *StubUnitOfWork) Rollback() error {
	u.Rollbacks++
	return nil
}

func (u *StubUnitOfWork) ScrimRepository() interfaces.ScrimRepository { return u.Scrims }

func (u *StubUnitOfWork) TimerRepository() interfaces.TimerRepository { return u.Timers }

func (u *StubUnitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	return u.Settings
}

// StubUnitOfWorkFactory returns queued units of work in order, repeating the
// last one once the queue is exhausted.
type StubUnitOfWorkFactory struct {
	Queue   []*StubUnitOfWork
	Created int
}

func (f *StubUnitOfWorkFactory) Create() UnitOfWork {
	idx := f.Created
	if idx >= len(f.Queue) {
		idx = len(f.Queue) - 1
	}
	f.Created++
	return f.Queue[idx]
}

// StubWaker counts wakeups
type StubWaker struct {
	Wakes int
}

func (s *StubWaker) Wake() {
	s.Wakes++
}

// StubAnnouncer implements ScrimAnnouncer for testing
type StubAnnouncer struct {
	Announced []int64
	Err       error
}

func (s *StubAnnouncer) AnnounceScrimOpen(ctx context.Context, scrim *entities.Scrim) error {
	if s.Err != nil {
		return s.Err
	}
	s.Announced = append(s.Announced, scrim.ID)
	return nil
}

// StubCleaner implements RegistrationCleaner for testing
type StubCleaner struct {
	Cleaned []int64
	Err     error
}

func (s *StubCleaner) CleanRegistration(ctx context.Context, scrim *entities.Scrim) error {
	if s.Err != nil {
		return s.Err
	}
	s.Cleaned = append(s.Cleaned, scrim.ID)
	return nil
}
