package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// mockEnv bundles a mock unit of work with one mock per repository
type mockEnv struct {
	factory      *MockUnitOfWorkFactory
	uow          *MockUnitOfWork
	users        *MockUserRepository
	transactions *MockTransactionRepository
	bets         *MockBetRepository
	betLegs      *MockBetLegRepository
	fixtures     *MockFixtureRepository
	teams        *MockTeamRepository
	competitions *MockCompetitionRepository
	events       *MockEventPublisher
}

// newMockEnv wires the mocks and expects Create, Begin and the deferred Rollback.
// Tests that reach a commit add the Commit expectation themselves.
func newMockEnv(ctx context.Context) *mockEnv {
	env := &mockEnv{
		factory:      new(MockUnitOfWorkFactory),
		uow:          new(MockUnitOfWork),
		users:        new(MockUserRepository),
		transactions: new(MockTransactionRepository),
		bets:         new(MockBetRepository),
		betLegs:      new(MockBetLegRepository),
		fixtures:     new(MockFixtureRepository),
		teams:        new(MockTeamRepository),
		competitions: new(MockCompetitionRepository),
		events:       new(MockEventPublisher),
	}
	env.uow.SetRepositories(MockRepositories{
		Users:        env.users,
		Transactions: env.transactions,
		Bets:         env.bets,
		BetLegs:      env.betLegs,
		Fixtures:     env.fixtures,
		Teams:        env.teams,
		Competitions: env.competitions,
		Events:       env.events,
	})

	env.factory.On("Create").Return(env.uow)
	env.uow.On("Begin", ctx).Return(nil)
	env.uow.On("Rollback").Return(nil)
	return env
}

func (e *mockEnv) expectCommit() {
	e.uow.On("Commit").Return(nil)
}

func (e *mockEnv) assertExpectations(t *testing.T) {
	t.Helper()
	e.factory.AssertExpectations(t)
	e.uow.AssertExpectations(t)
	e.users.AssertExpectations(t)
	e.transactions.AssertExpectations(t)
	e.bets.AssertExpectations(t)
	e.betLegs.AssertExpectations(t)
	e.fixtures.AssertExpectations(t)
	e.teams.AssertExpectations(t)
	e.competitions.AssertExpectations(t)
}

// dec parses a decimal literal
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value rather than representation
func decEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(want)
	})
}
