package service

import (
	"context"

	"betting/events"
	"betting/footballdata"
	"betting/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error) {
	args := m.Called(ctx, email, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) CreatePending(ctx context.Context, userID int64) (*models.Bet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetPendingByUser(ctx context.Context, userID int64) (*models.Bet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) ListIDsByStatus(ctx context.Context, status models.BetStatus) ([]int64, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockBetRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) UpdateOdds(ctx context.Context, id int64, odds decimal.Decimal) error {
	args := m.Called(ctx, id, odds)
	return args.Error(0)
}

func (m *MockBetRepository) Place(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) MarkFinished(ctx context.Context, id int64, won bool) (bool, error) {
	args := m.Called(ctx, id, won)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBetLegRepository is a mock implementation of BetLegRepository
type MockBetLegRepository struct {
	mock.Mock
}

func (m *MockBetLegRepository) Create(ctx context.Context, leg *models.BetLeg) error {
	args := m.Called(ctx, leg)
	return args.Error(0)
}

func (m *MockBetLegRepository) GetByID(ctx context.Context, id int64) (*models.BetLeg, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetLeg), args.Error(1)
}

func (m *MockBetLegRepository) GetByBetAndFixture(ctx context.Context, betID, fixtureID int64) (*models.BetLeg, error) {
	args := m.Called(ctx, betID, fixtureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetLeg), args.Error(1)
}

func (m *MockBetLegRepository) ListByBet(ctx context.Context, betID int64) ([]*models.BetLeg, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetLeg), args.Error(1)
}

func (m *MockBetLegRepository) ListDetailsByBet(ctx context.Context, betID int64) ([]*models.BetLegDetail, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetLegDetail), args.Error(1)
}

func (m *MockBetLegRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBetLegRepository) DeleteByBet(ctx context.Context, betID int64) error {
	args := m.Called(ctx, betID)
	return args.Error(0)
}

func (m *MockBetLegRepository) CountByBet(ctx context.Context, betID int64) (int, error) {
	args := m.Called(ctx, betID)
	return args.Int(0), args.Error(1)
}

// MockFixtureRepository is a mock implementation of FixtureRepository
type MockFixtureRepository struct {
	mock.Mock
}

func (m *MockFixtureRepository) FindByID(ctx context.Context, id int64) (*models.Fixture, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Fixture), args.Error(1)
}

func (m *MockFixtureRepository) Upsert(ctx context.Context, fixture *models.Fixture) error {
	args := m.Called(ctx, fixture)
	return args.Error(0)
}

func (m *MockFixtureRepository) ListByCompetition(ctx context.Context, competitionID int64) ([]*models.Fixture, error) {
	args := m.Called(ctx, competitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Fixture), args.Error(1)
}

// MockTeamRepository is a mock implementation of TeamRepository
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) FindByID(ctx context.Context, id int64) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) AddToCompetition(ctx context.Context, competitionID, teamID int64) error {
	args := m.Called(ctx, competitionID, teamID)
	return args.Error(0)
}

// MockCompetitionRepository is a mock implementation of CompetitionRepository
type MockCompetitionRepository struct {
	mock.Mock
}

func (m *MockCompetitionRepository) FindByID(ctx context.Context, id int64) (*models.Competition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Competition), args.Error(1)
}

func (m *MockCompetitionRepository) List(ctx context.Context) ([]*models.Competition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Competition), args.Error(1)
}

func (m *MockCompetitionRepository) Upsert(ctx context.Context, competition *models.Competition) error {
	args := m.Called(ctx, competition)
	return args.Error(0)
}

func (m *MockCompetitionRepository) UpsertArea(ctx context.Context, area *models.Area) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Events = append(m.Events, event)
}

// OfType returns the recorded events of one type
func (m *MockEventPublisher) OfType(eventType events.EventType) []events.Event {
	var matched []events.Event
	for _, e := range m.Events {
		if e.Type() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plain fields so tests set expectations on them directly.
type MockUnitOfWork struct {
	mock.Mock

	userRepo        UserRepository
	transactionRepo TransactionRepository
	betRepo         BetRepository
	betLegRepo      BetLegRepository
	fixtureRepo     FixtureRepository
	teamRepo        TeamRepository
	competitionRepo CompetitionRepository
	eventBus        EventPublisher
}

// MockRepositories is the set of repositories a MockUnitOfWork hands out
type MockRepositories struct {
	Users        UserRepository
	Transactions TransactionRepository
	Bets         BetRepository
	BetLegs      BetLegRepository
	Fixtures     FixtureRepository
	Teams        TeamRepository
	Competitions CompetitionRepository
	Events       EventPublisher
}

// SetRepositories wires the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(repos MockRepositories) {
	m.userRepo = repos.Users
	m.transactionRepo = repos.Transactions
	m.betRepo = repos.Bets
	m.betLegRepo = repos.BetLegs
	m.fixtureRepo = repos.Fixtures
	m.teamRepo = repos.Teams
	m.competitionRepo = repos.Competitions
	m.eventBus = repos.Events
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository               { return m.userRepo }
func (m *MockUnitOfWork) TransactionRepository() TransactionRepository { return m.transactionRepo }
func (m *MockUnitOfWork) BetRepository() BetRepository                 { return m.betRepo }
func (m *MockUnitOfWork) BetLegRepository() BetLegRepository           { return m.betLegRepo }
func (m *MockUnitOfWork) FixtureRepository() FixtureRepository         { return m.fixtureRepo }
func (m *MockUnitOfWork) TeamRepository() TeamRepository               { return m.teamRepo }
func (m *MockUnitOfWork) CompetitionRepository() CompetitionRepository { return m.competitionRepo }
func (m *MockUnitOfWork) EventBus() EventPublisher                     { return m.eventBus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockFixtureProvider is a mock implementation of FixtureProvider
type MockFixtureProvider struct {
	mock.Mock
}

func (m *MockFixtureProvider) Competitions(ctx context.Context) ([]footballdata.Competition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]footballdata.Competition), args.Error(1)
}

func (m *MockFixtureProvider) Matches(ctx context.Context, competitionCode string) ([]footballdata.Match, error) {
	args := m.Called(ctx, competitionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]footballdata.Match), args.Error(1)
}

func (m *MockFixtureProvider) Standings(ctx context.Context, competitionCode string) ([]footballdata.Standing, error) {
	args := m.Called(ctx, competitionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]footballdata.Standing), args.Error(1)
}

func (m *MockFixtureProvider) TopScorers(ctx context.Context, competitionCode string) ([]footballdata.Scorer, error) {
	args := m.Called(ctx, competitionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]footballdata.Scorer), args.Error(1)
}

func (m *MockFixtureProvider) HeadToHead(ctx context.Context, matchID int64, limit int) (*footballdata.HeadToHead, error) {
	args := m.Called(ctx, matchID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*footballdata.HeadToHead), args.Error(1)
}

func (m *MockFixtureProvider) Team(ctx context.Context, teamID int64) (*footballdata.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*footballdata.Team), args.Error(1)
}
