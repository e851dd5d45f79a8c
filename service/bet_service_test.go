package service

import (
	"context"
	"testing"

	"betting/events"
	"betting/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testFixture(id int64) *models.Fixture {
	return &models.Fixture{
		ID:           id,
		Status:       models.FixtureStatusTimed,
		HomeTeamName: "Arsenal FC",
		AwayTeamName: "Chelsea FC",
		Odds: models.Odds{
			Home: dec("2.50"),
			Draw: dec("3.10"),
			Away: dec("2.90"),
		},
	}
}

func TestBetService_AddLeg_CreatesPendingBet(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	env.fixtures.On("FindByID", ctx, int64(10)).Return(testFixture(10), nil)
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("100")}, nil)
	env.bets.On("CreatePending", ctx, int64(1)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending, Odds: dec("1")}, nil)
	env.betLegs.On("GetByBetAndFixture", ctx, int64(5), int64(10)).Return(nil, nil)
	env.betLegs.On("Create", ctx, mock.MatchedBy(func(leg *models.BetLeg) bool {
		return leg.BetID == 5 &&
			leg.FixtureID == 10 &&
			leg.HomeTeam == "Arsenal FC" &&
			leg.AwayTeam == "Chelsea FC" &&
			leg.Selected == models.OutcomeHome &&
			leg.Odds.Equal(dec("2.5"))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.BetLeg).ID = 70
	})
	env.bets.On("UpdateOdds", ctx, int64(5), decEq("2.5")).Return(nil)

	// Zero odds take the fixture's quoted odds for the outcome
	leg, err := service.AddLeg(ctx, 1, 10, models.OutcomeHome, decimal.Zero)

	require.NoError(t, err)
	assert.Equal(t, int64(70), leg.ID)
	env.assertExpectations(t)
}

func TestBetService_AddLeg_MultipliesCompositeOdds(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	env.fixtures.On("FindByID", ctx, int64(11)).Return(testFixture(11), nil)
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	env.bets.On("CreatePending", ctx, int64(1)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending, Odds: dec("2.50")}, nil)
	env.betLegs.On("GetByBetAndFixture", ctx, int64(5), int64(11)).Return(nil, nil)
	env.betLegs.On("Create", ctx, mock.AnythingOfType("*models.BetLeg")).Return(nil)
	env.bets.On("UpdateOdds", ctx, int64(5), decEq("4.5")).Return(nil)

	_, err := service.AddLeg(ctx, 1, 11, models.OutcomeDraw, dec("1.80"))

	require.NoError(t, err)
	env.assertExpectations(t)
}

func TestBetService_AddLeg_ExistingFixtureIsNoOp(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	existing := &models.BetLeg{ID: 70, BetID: 5, FixtureID: 10, Selected: models.OutcomeHome, Odds: dec("2.50")}

	env.fixtures.On("FindByID", ctx, int64(10)).Return(testFixture(10), nil)
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	env.bets.On("CreatePending", ctx, int64(1)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending, Odds: dec("2.50")}, nil)
	env.betLegs.On("GetByBetAndFixture", ctx, int64(5), int64(10)).Return(existing, nil)

	leg, err := service.AddLeg(ctx, 1, 10, models.OutcomeAway, decimal.Zero)

	require.NoError(t, err)
	assert.Same(t, existing, leg)
	env.betLegs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.bets.AssertNotCalled(t, "UpdateOdds", mock.Anything, mock.Anything, mock.Anything)
	env.assertExpectations(t)
}

func TestBetService_AddLeg_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown outcome", func(t *testing.T) {
		factory := new(MockUnitOfWorkFactory)
		service := NewBetService(factory)

		_, err := service.AddLeg(ctx, 1, 10, models.Outcome("LATE_GOAL"), decimal.Zero)

		assert.ErrorIs(t, err, ErrInvalidOutcome)
		factory.AssertNotCalled(t, "Create")
	})

	t.Run("odds below one", func(t *testing.T) {
		factory := new(MockUnitOfWorkFactory)
		service := NewBetService(factory)

		_, err := service.AddLeg(ctx, 1, 10, models.OutcomeHome, dec("0.95"))

		assert.ErrorIs(t, err, ErrInvalidAmount)
		factory.AssertNotCalled(t, "Create")
	})

	t.Run("missing fixture", func(t *testing.T) {
		env := newMockEnv(ctx)
		service := NewBetService(env.factory)

		env.fixtures.On("FindByID", ctx, int64(404)).Return(nil, nil)

		_, err := service.AddLeg(ctx, 1, 404, models.OutcomeHome, decimal.Zero)

		assert.ErrorIs(t, err, ErrNotFound)
		env.assertExpectations(t)
	})
}

func TestBetService_RemoveLeg_RecomputesOdds(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	env.betLegs.On("GetByID", ctx, int64(70)).Return(&models.BetLeg{ID: 70, BetID: 5, Odds: dec("2.50")}, nil)
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	env.bets.On("GetByIDForUpdate", ctx, int64(5)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending, Odds: dec("4.5")}, nil)
	env.betLegs.On("Delete", ctx, int64(70)).Return(nil)
	env.betLegs.On("CountByBet", ctx, int64(5)).Return(1, nil)
	env.betLegs.On("ListByBet", ctx, int64(5)).Return([]*models.BetLeg{{ID: 71, BetID: 5, Odds: dec("1.80")}}, nil)
	env.bets.On("UpdateOdds", ctx, int64(5), decEq("1.8")).Return(nil)

	err := service.RemoveLeg(ctx, 70, 1)

	require.NoError(t, err)
	env.assertExpectations(t)
}

func TestBetService_RemoveLeg_LastLegDeletesBet(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	env.betLegs.On("GetByID", ctx, int64(70)).Return(&models.BetLeg{ID: 70, BetID: 5, Odds: dec("2.50")}, nil)
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	env.bets.On("GetByIDForUpdate", ctx, int64(5)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending, Odds: dec("2.5")}, nil)
	env.betLegs.On("Delete", ctx, int64(70)).Return(nil)
	env.betLegs.On("CountByBet", ctx, int64(5)).Return(0, nil)
	env.bets.On("Delete", ctx, int64(5)).Return(nil)

	err := service.DeleteLeg(ctx, 70, 1)

	require.NoError(t, err)
	env.bets.AssertNotCalled(t, "UpdateOdds", mock.Anything, mock.Anything, mock.Anything)
	env.assertExpectations(t)
}

func TestBetService_RemoveLeg_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		bet     *models.Bet
		wantErr error
	}{
		{
			name:    "another user's bet",
			bet:     &models.Bet{ID: 5, UserID: 2, Status: models.BetStatusPending},
			wantErr: ErrForbidden,
		},
		{
			name:    "bet already placed",
			bet:     &models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPlaced},
			wantErr: ErrBetNotPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newMockEnv(ctx)
			service := NewBetService(env.factory)

			env.betLegs.On("GetByID", ctx, int64(70)).Return(&models.BetLeg{ID: 70, BetID: 5, Odds: dec("2.50")}, nil)
			env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
			env.bets.On("GetByIDForUpdate", ctx, int64(5)).Return(tt.bet, nil)

			err := service.RemoveLeg(ctx, 70, 1)

			assert.ErrorIs(t, err, tt.wantErr)
			env.betLegs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			env.assertExpectations(t)
		})
	}

	t.Run("unknown leg", func(t *testing.T) {
		env := newMockEnv(ctx)
		service := NewBetService(env.factory)

		env.betLegs.On("GetByID", ctx, int64(404)).Return(nil, nil)

		err := service.RemoveLeg(ctx, 404, 1)

		assert.ErrorIs(t, err, ErrNotFound)
		env.assertExpectations(t)
	})
}

func TestBetService_DeleteBet(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	env.bets.On("GetByIDForUpdate", ctx, int64(5)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending}, nil)
	env.betLegs.On("DeleteByBet", ctx, int64(5)).Return(nil)
	env.bets.On("Delete", ctx, int64(5)).Return(nil)

	err := service.DeleteBet(ctx, 5, 1)

	require.NoError(t, err)
	env.assertExpectations(t)
}

func TestBetService_PlaceStake_Success(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	user := &models.User{ID: 1, Balance: dec("100.00")}
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(user, nil)
	env.bets.On("GetPendingByUser", ctx, int64(1)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending, Odds: dec("4.5")}, nil)
	env.betLegs.On("ListDetailsByBet", ctx, int64(5)).Return([]*models.BetLegDetail{
		{BetLeg: models.BetLeg{ID: 70, BetID: 5, Odds: dec("2.50")}, FixtureStatus: models.FixtureStatusTimed},
		{BetLeg: models.BetLeg{ID: 71, BetID: 5, Odds: dec("1.80")}, FixtureStatus: models.FixtureStatusInPlay},
	}, nil)
	env.users.On("DeductBalance", ctx, int64(1), decEq("20")).Return(dec("80.00"), nil)
	env.transactions.On("Record", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.UserID == 1 && tx.Kind == models.TransactionKindStake && tx.Amount.Equal(dec("20"))
	})).Return(nil)
	env.bets.On("Place", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.ID == 5 &&
			b.Status == models.BetStatusPlaced &&
			b.Odds.Equal(dec("4.5")) &&
			b.MoneyPlaced.Decimal.Equal(dec("20")) &&
			b.WinAmount.Decimal.Equal(dec("90"))
	})).Return(nil)

	bet, err := service.PlaceStake(ctx, 1, dec("20"))

	require.NoError(t, err)
	require.NotNil(t, bet)
	assert.Equal(t, "90.00", bet.WinAmount.Decimal.StringFixed(2))
	assert.Equal(t, "80.00", user.Balance.StringFixed(2))

	placed := env.events.OfType(events.EventTypeBetPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, 2, placed[0].(events.BetPlacedEvent).Legs)
	assert.Len(t, env.events.OfType(events.EventTypeBalanceChange), 1)
	env.assertExpectations(t)
}

func TestBetService_PlaceStake_DropsFinishedLegs(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()

	service := NewBetService(env.factory)

	winner := models.OutcomeHome
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("100")}, nil)
	env.bets.On("GetPendingByUser", ctx, int64(1)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending, Odds: dec("4.5")}, nil)
	env.betLegs.On("ListDetailsByBet", ctx, int64(5)).Return([]*models.BetLegDetail{
		{BetLeg: models.BetLeg{ID: 70, BetID: 5, Odds: dec("2.50")}, FixtureStatus: models.FixtureStatusFinished, FixtureWinner: &winner},
		{BetLeg: models.BetLeg{ID: 71, BetID: 5, Odds: dec("1.80")}, FixtureStatus: models.FixtureStatusScheduled},
	}, nil)
	env.betLegs.On("Delete", ctx, int64(70)).Return(nil)
	env.users.On("DeductBalance", ctx, int64(1), decEq("20")).Return(dec("80"), nil)
	env.transactions.On("Record", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil)
	env.bets.On("Place", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Odds.Equal(dec("1.8")) && b.WinAmount.Decimal.Equal(dec("36"))
	})).Return(nil)

	bet, err := service.PlaceStake(ctx, 1, dec("20"))

	require.NoError(t, err)
	require.NotNil(t, bet)

	placed := env.events.OfType(events.EventTypeBetPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, 1, placed[0].(events.BetPlacedEvent).DroppedLegs)
	env.assertExpectations(t)
}

func TestBetService_PlaceStake_AllLegsFinished(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)

	service := NewBetService(env.factory)

	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("100")}, nil)
	env.bets.On("GetPendingByUser", ctx, int64(1)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending}, nil)
	env.betLegs.On("ListDetailsByBet", ctx, int64(5)).Return([]*models.BetLegDetail{
		{BetLeg: models.BetLeg{ID: 70, BetID: 5, Odds: dec("2.50")}, FixtureStatus: models.FixtureStatusFinished},
	}, nil)
	env.betLegs.On("Delete", ctx, int64(70)).Return(nil)

	bet, err := service.PlaceStake(ctx, 1, dec("20"))

	assert.ErrorIs(t, err, ErrNoOpenLegs)
	assert.Nil(t, bet)
	env.users.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	env.uow.AssertNotCalled(t, "Commit")
	env.assertExpectations(t)
}

func TestBetService_PlaceStake_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)

	service := NewBetService(env.factory)

	user := &models.User{ID: 1, Balance: dec("50")}
	env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(user, nil)
	env.bets.On("GetPendingByUser", ctx, int64(1)).Return(&models.Bet{ID: 5, UserID: 1, Status: models.BetStatusPending}, nil)
	env.betLegs.On("ListDetailsByBet", ctx, int64(5)).Return([]*models.BetLegDetail{
		{BetLeg: models.BetLeg{ID: 70, BetID: 5, Odds: dec("2.50")}, FixtureStatus: models.FixtureStatusTimed},
	}, nil)

	bet, err := service.PlaceStake(ctx, 1, dec("75"))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, bet)
	assert.Equal(t, "50", user.Balance.String())
	env.users.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	env.bets.AssertNotCalled(t, "Place", mock.Anything, mock.Anything)
	env.assertExpectations(t)
}

func TestBetService_PlaceStake_NothingToStake(t *testing.T) {
	ctx := context.Background()

	t.Run("no pending bet", func(t *testing.T) {
		env := newMockEnv(ctx)
		service := NewBetService(env.factory)

		env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("100")}, nil)
		env.bets.On("GetPendingByUser", ctx, int64(1)).Return(nil, nil)

		bet, err := service.PlaceStake(ctx, 1, dec("20"))

		assert.NoError(t, err)
		assert.Nil(t, bet)
		env.assertExpectations(t)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		factory := new(MockUnitOfWorkFactory)
		service := NewBetService(factory)

		_, err := service.PlaceStake(ctx, 1, decimal.Zero)

		assert.ErrorIs(t, err, ErrInvalidAmount)
		factory.AssertNotCalled(t, "Create")
	})
}
