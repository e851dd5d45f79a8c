package repository

import (
	"context"
	"errors"
	"fmt"

	"betting/database"
	"betting/events"
	"betting/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	userRepo         service.UserRepository
	transactionRepo  service.TransactionRepository
	betRepo          service.BetRepository
	betLegRepo       service.BetLegRepository
	fixtureRepo      service.FixtureRepository
	teamRepo         service.TeamRepository
	competitionRepo  service.CompetitionRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
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

	u.userRepo = newUserRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.betRepo = newBetRepositoryWithTx(tx)
	u.betLegRepo = newBetLegRepositoryWithTx(tx)
	u.fixtureRepo = newFixtureRepositoryWithTx(tx)
	u.teamRepo = newTeamRepositoryWithTx(tx)
	u.competitionRepo = newCompetitionRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Flush(u.ctx)

	return nil
}

// Rollback rolls back the transaction. It is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) mustBegin() {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	u.mustBegin()
	return u.userRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	u.mustBegin()
	return u.transactionRepo
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() service.BetRepository {
	u.mustBegin()
	return u.betRepo
}

// BetLegRepository returns the bet leg repository for this unit of work
func (u *unitOfWork) BetLegRepository() service.BetLegRepository {
	u.mustBegin()
	return u.betLegRepo
}

// FixtureRepository returns the fixture repository for this unit of work
func (u *unitOfWork) FixtureRepository() service.FixtureRepository {
	u.mustBegin()
	return u.fixtureRepo
}

// TeamRepository returns the team repository for this unit of work
func (u *unitOfWork) TeamRepository() service.TeamRepository {
	u.mustBegin()
	return u.teamRepo
}

// CompetitionRepository returns the competition repository for this unit of work
func (u *unitOfWork) CompetitionRepository() service.CompetitionRepository {
	u.mustBegin()
	return u.competitionRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
