package api

import (
	"context"

	"betting/footballdata"
	"betting/models"
	"betting/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockBetService struct {
	mock.Mock
}

func (m *mockBetService) AddLeg(ctx context.Context, userID, fixtureID int64, outcome models.Outcome, odds decimal.Decimal) (*models.BetLeg, error) {
	args := m.Called(ctx, userID, fixtureID, outcome, odds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetLeg), args.Error(1)
}

func (m *mockBetService) RemoveLeg(ctx context.Context, legID, userID int64) error {
	args := m.Called(ctx, legID, userID)
	return args.Error(0)
}

func (m *mockBetService) DeleteLeg(ctx context.Context, legID, userID int64) error {
	args := m.Called(ctx, legID, userID)
	return args.Error(0)
}

func (m *mockBetService) DeleteBet(ctx context.Context, betID, userID int64) error {
	args := m.Called(ctx, betID, userID)
	return args.Error(0)
}

func (m *mockBetService) PlaceStake(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Bet, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockBetService) PendingBet(ctx context.Context, userID int64) (*models.BetWithLegs, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetWithLegs), args.Error(1)
}

func (m *mockBetService) ListBets(ctx context.Context, userID int64, limit int) ([]*models.BetWithLegs, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetWithLegs), args.Error(1)
}

type mockBalanceService struct {
	mock.Mock
}

func (m *mockBalanceService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockBalanceService) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockBalanceService) Balance(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockBalanceService) History(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type mockFixtureInfoService struct {
	mock.Mock
}

func (m *mockFixtureInfoService) MatchDetails(ctx context.Context, fixtureID int64) (*service.MatchDetails, error) {
	args := m.Called(ctx, fixtureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MatchDetails), args.Error(1)
}

func (m *mockFixtureInfoService) CompetitionDetails(ctx context.Context, competitionID int64) (*service.CompetitionDetails, error) {
	args := m.Called(ctx, competitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompetitionDetails), args.Error(1)
}

func (m *mockFixtureInfoService) TeamDetails(ctx context.Context, teamID int64) (*footballdata.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*footballdata.Team), args.Error(1)
}

func decEq(s string) any {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}
