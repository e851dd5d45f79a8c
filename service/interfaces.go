package service

import (
	"context"

	"betting/events"
	"betting/footballdata"
	"betting/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByIDForUpdate retrieves a user and locks the row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by email, returning nil when absent
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error)

	// AddBalance credits a user's balance and returns the new balance
	AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error)

	// DeductBalance debits a user's balance, failing with ErrInsufficientFunds
	// instead of going negative, and returns the new balance
	DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// TransactionRepository defines the append-only balance audit log
type TransactionRepository interface {
	// Record appends a transaction, filling ID and CreatedAt
	Record(ctx context.Context, tx *models.Transaction) error

	// ListByUser returns a user's most recent transactions first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// CreatePending returns the user's PENDING bet, creating one with odds 1 if none exists
	CreatePending(ctx context.Context, userID int64) (*models.Bet, error)

	// GetByID retrieves a bet, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetByIDForUpdate retrieves a bet and locks the row
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error)

	// GetPendingByUser returns the user's PENDING bet or nil
	GetPendingByUser(ctx context.Context, userID int64) (*models.Bet, error)

	// ListIDsByStatus returns the ids of every bet in status, oldest first
	ListIDsByStatus(ctx context.Context, status models.BetStatus) ([]int64, error)

	// ListByUser returns a user's bets, newest first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)

	// UpdateOdds stores a recomputed composite odds value
	UpdateOdds(ctx context.Context, id int64, odds decimal.Decimal) error

	// Place moves a PENDING bet to PLACED with its stake, odds and win amount
	Place(ctx context.Context, bet *models.Bet) error

	// MarkFinished moves a PLACED bet to FINISHED; false means it was not PLACED
	MarkFinished(ctx context.Context, id int64, won bool) (bool, error)

	// Delete removes a bet
	Delete(ctx context.Context, id int64) error
}

// BetLegRepository defines the interface for bet leg data access
type BetLegRepository interface {
	// Create inserts a leg, filling ID and CreatedAt
	Create(ctx context.Context, leg *models.BetLeg) error

	// GetByID retrieves a leg, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.BetLeg, error)

	// GetByBetAndFixture returns the bet's leg on fixtureID or nil
	GetByBetAndFixture(ctx context.Context, betID, fixtureID int64) (*models.BetLeg, error)

	// ListByBet returns the legs of a bet in insertion order
	ListByBet(ctx context.Context, betID int64) ([]*models.BetLeg, error)

	// ListDetailsByBet returns the legs of a bet joined with their fixtures' status and winner
	ListDetailsByBet(ctx context.Context, betID int64) ([]*models.BetLegDetail, error)

	// Delete removes a leg
	Delete(ctx context.Context, id int64) error

	// DeleteByBet removes every leg of a bet
	DeleteByBet(ctx context.Context, betID int64) error

	// CountByBet returns the number of legs attached to a bet
	CountByBet(ctx context.Context, betID int64) (int, error)
}

// FixtureRepository is the single place fixtures are looked up and written
type FixtureRepository interface {
	// FindByID retrieves a fixture with its team names, returning nil when absent
	FindByID(ctx context.Context, id int64) (*models.Fixture, error)

	// Upsert inserts the fixture or overwrites every synced column, odds included
	Upsert(ctx context.Context, fixture *models.Fixture) error

	// ListByCompetition returns a competition's fixtures ordered by kickoff
	ListByCompetition(ctx context.Context, competitionID int64) ([]*models.Fixture, error)
}

// TeamRepository is the single place teams are looked up and written
type TeamRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Team, error)
	Upsert(ctx context.Context, team *models.Team) error
	AddToCompetition(ctx context.Context, competitionID, teamID int64) error
}

// CompetitionRepository stores areas and competitions
type CompetitionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Competition, error)
	List(ctx context.Context) ([]*models.Competition, error)
	Upsert(ctx context.Context, competition *models.Competition) error
	UpsertArea(ctx context.Context, area *models.Area) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork scopes repositories to one database transaction. Events
// published through EventBus are delivered only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	TransactionRepository() TransactionRepository
	BetRepository() BetRepository
	BetLegRepository() BetLegRepository
	FixtureRepository() FixtureRepository
	TeamRepository() TeamRepository
	CompetitionRepository() CompetitionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// FixtureProvider is the read-only fixture data source
type FixtureProvider interface {
	Competitions(ctx context.Context) ([]footballdata.Competition, error)
	Matches(ctx context.Context, competitionCode string) ([]footballdata.Match, error)
	Standings(ctx context.Context, competitionCode string) ([]footballdata.Standing, error)
	TopScorers(ctx context.Context, competitionCode string) ([]footballdata.Scorer, error)
	HeadToHead(ctx context.Context, matchID int64, limit int) (*footballdata.HeadToHead, error)
	Team(ctx context.Context, teamID int64) (*footballdata.Team, error)
}

// BetService owns the lifecycle of bets and their legs
type BetService interface {
	// AddLeg attaches a fixture selection to the user's PENDING bet, creating the bet if needed
	AddLeg(ctx context.Context, userID, fixtureID int64, outcome models.Outcome, odds decimal.Decimal) (*models.BetLeg, error)

	// RemoveLeg detaches a leg from the caller's PENDING bet, deleting the bet when it empties
	RemoveLeg(ctx context.Context, legID, userID int64) error

	// DeleteLeg is the cancellation-flow name for RemoveLeg
	DeleteLeg(ctx context.Context, legID, userID int64) error

	// DeleteBet removes the caller's PENDING bet and all of its legs
	DeleteBet(ctx context.Context, betID, userID int64) error

	// PlaceStake stakes the user's PENDING bet. A nil bet with a nil error means there was nothing to stake.
	PlaceStake(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Bet, error)

	// PendingBet returns the user's PENDING bet with its legs, or nil
	PendingBet(ctx context.Context, userID int64) (*models.BetWithLegs, error)

	// ListBets returns the user's bets with their legs, newest first
	ListBets(ctx context.Context, userID int64, limit int) ([]*models.BetWithLegs, error)
}

// BalanceService owns deposits and withdrawals
type BalanceService interface {
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error)
	Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error)
	Balance(ctx context.Context, userID int64) (*models.User, error)
	History(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)
}

// SettlementService finalizes bets whose legs are all decided
type SettlementService interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}

// SyncService refreshes local fixture data from the provider
type SyncService interface {
	SyncCompetitions(ctx context.Context) (int, error)
	SyncFixtures(ctx context.Context) (*SyncResult, error)
	Run(ctx context.Context) error
}

// FixtureInfoService serves read-only fixture, competition and team views
type FixtureInfoService interface {
	MatchDetails(ctx context.Context, fixtureID int64) (*MatchDetails, error)
	CompetitionDetails(ctx context.Context, competitionID int64) (*CompetitionDetails, error)
	TeamDetails(ctx context.Context, teamID int64) (*footballdata.Team, error)
}
