package service

import (
	"context"
	"fmt"

	"betting/events"
	"betting/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type betService struct {
	uowFactory UnitOfWorkFactory
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory) BetService {
	return &betService{
		uowFactory: uowFactory,
	}
}

// AddLeg attaches a fixture selection to the user's PENDING bet
func (s *betService) AddLeg(ctx context.Context, userID, fixtureID int64, outcome models.Outcome, odds decimal.Decimal) (*models.BetLeg, error) {
	if _, ok := (models.Odds{}).For(outcome); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
	if odds.IsNegative() || (!odds.IsZero() && odds.LessThan(decimal.NewFromInt(1))) {
		return nil, fmt.Errorf("%w: odds must be at least 1", ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	fixture, err := uow.FixtureRepository().FindByID(ctx, fixtureID)
	if err != nil {
		return nil, storageError("get fixture", err)
	}
	if fixture == nil {
		return nil, fmt.Errorf("fixture %d: %w", fixtureID, ErrNotFound)
	}

	if odds.IsZero() {
		odds, _ = fixture.Odds.For(outcome)
		if odds.LessThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: fixture %d has no odds yet", ErrInvalidAmount, fixtureID)
		}
	}

	// Lock the user row so concurrent bet-ledger calls for one user serialize
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	bet, err := uow.BetRepository().CreatePending(ctx, userID)
	if err != nil {
		return nil, storageError("create pending bet", err)
	}

	existing, err := uow.BetLegRepository().GetByBetAndFixture(ctx, bet.ID, fixtureID)
	if err != nil {
		return nil, storageError("get bet leg", err)
	}
	if existing != nil {
		if err := uow.Commit(); err != nil {
			return nil, storageError("commit transaction", err)
		}
		return existing, nil
	}

	leg := &models.BetLeg{
		BetID:     bet.ID,
		FixtureID: fixtureID,
		HomeTeam:  fixture.HomeTeamName,
		AwayTeam:  fixture.AwayTeamName,
		Selected:  outcome,
		Odds:      odds,
	}
	if err := uow.BetLegRepository().Create(ctx, leg); err != nil {
		return nil, storageError("create bet leg", err)
	}

	newOdds := bet.Odds.Mul(odds)
	if err := uow.BetRepository().UpdateOdds(ctx, bet.ID, newOdds); err != nil {
		return nil, storageError("update bet odds", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"betID":     bet.ID,
		"fixtureID": fixtureID,
		"selected":  outcome,
		"legOdds":   odds.String(),
		"betOdds":   newOdds.String(),
	}).Info("Bet leg added")

	return leg, nil
}

// RemoveLeg detaches a leg from the caller's PENDING bet
func (s *betService) RemoveLeg(ctx context.Context, legID, userID int64) error {
	return s.removeLeg(ctx, legID, userID)
}

// DeleteLeg removes a leg during bet cancellation
func (s *betService) DeleteLeg(ctx context.Context, legID, userID int64) error {
	return s.removeLeg(ctx, legID, userID)
}

func (s *betService) removeLeg(ctx context.Context, legID, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return storageError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	leg, err := uow.BetLegRepository().GetByID(ctx, legID)
	if err != nil {
		return storageError("get bet leg", err)
	}
	if leg == nil {
		return fmt.Errorf("bet leg %d: %w", legID, ErrNotFound)
	}

	bet, err := s.lockOwnedPendingBet(ctx, uow, leg.BetID, userID)
	if err != nil {
		return err
	}

	if err := uow.BetLegRepository().Delete(ctx, legID); err != nil {
		return storageError("delete bet leg", err)
	}

	remaining, err := uow.BetLegRepository().CountByBet(ctx, bet.ID)
	if err != nil {
		return storageError("count bet legs", err)
	}

	if remaining == 0 {
		if err := uow.BetRepository().Delete(ctx, bet.ID); err != nil {
			return storageError("delete empty bet", err)
		}
	} else {
		// Composite odds stay the product of the remaining legs
		legs, err := uow.BetLegRepository().ListByBet(ctx, bet.ID)
		if err != nil {
			return storageError("list bet legs", err)
		}
		if err := uow.BetRepository().UpdateOdds(ctx, bet.ID, models.CompositeOdds(legs)); err != nil {
			return storageError("update bet odds", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"betID":         bet.ID,
		"legID":         legID,
		"remainingLegs": remaining,
	}).Info("Bet leg removed")

	return nil
}

// DeleteBet removes the caller's PENDING bet and its legs
func (s *betService) DeleteBet(ctx context.Context, betID, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return storageError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := s.lockOwnedPendingBet(ctx, uow, betID, userID); err != nil {
		return err
	}

	if err := uow.BetLegRepository().DeleteByBet(ctx, betID); err != nil {
		return storageError("delete bet legs", err)
	}
	if err := uow.BetRepository().Delete(ctx, betID); err != nil {
		return storageError("delete bet", err)
	}

	if err := uow.Commit(); err != nil {
		return storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"betID":  betID,
	}).Info("Bet deleted")

	return nil
}

// lockOwnedPendingBet locks the caller's user row and then the bet, enforcing
// ownership and PENDING status. Every bet-ledger write takes the user lock first.
func (s *betService) lockOwnedPendingBet(ctx context.Context, uow UnitOfWork, betID, userID int64) (*models.Bet, error) {
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, storageError("get bet", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("bet %d: %w", betID, ErrNotFound)
	}
	if bet.UserID != userID {
		return nil, fmt.Errorf("bet %d belongs to another user: %w", betID, ErrForbidden)
	}
	if !bet.IsPending() {
		return nil, fmt.Errorf("bet %d is %s: %w", betID, bet.Status, ErrBetNotPending)
	}
	return bet, nil
}

// PlaceStake stakes amount on the user's PENDING bet
func (s *betService) PlaceStake(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Bet, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: stake must be positive", ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	bet, err := uow.BetRepository().GetPendingByUser(ctx, userID)
	if err != nil {
		return nil, storageError("get pending bet", err)
	}
	if bet == nil {
		return nil, nil
	}

	legs, err := uow.BetLegRepository().ListDetailsByBet(ctx, bet.ID)
	if err != nil {
		return nil, storageError("list bet legs", err)
	}
	if len(legs) == 0 {
		return nil, nil
	}

	if !user.CanAfford(amount) {
		return nil, fmt.Errorf("%w: balance %s, stake %s", ErrInsufficientFunds, user.Balance.StringFixed(2), amount.StringFixed(2))
	}

	// Selections on fixtures that already finished cannot be wagered on
	open := make([]*models.BetLegDetail, 0, len(legs))
	for _, leg := range legs {
		if leg.IsDecided() {
			if err := uow.BetLegRepository().Delete(ctx, leg.ID); err != nil {
				return nil, storageError("drop finished bet leg", err)
			}
			continue
		}
		open = append(open, leg)
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("bet %d: %w", bet.ID, ErrNoOpenLegs)
	}
	dropped := len(legs) - len(open)

	odds := models.CompositeOdds(open)

	if err := debit(ctx, uow, user, models.TransactionKindStake, amount); err != nil {
		return nil, wrapStorage("debit stake", err)
	}

	bet.Odds = odds
	bet.MoneyPlaced = decimal.NewNullDecimal(amount)
	bet.WinAmount = decimal.NewNullDecimal(amount.Mul(odds).Round(2))
	bet.Status = models.BetStatusPlaced
	if err := uow.BetRepository().Place(ctx, bet); err != nil {
		return nil, wrapStorage("place bet", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		UserID:      userID,
		BetID:       bet.ID,
		Legs:        len(open),
		DroppedLegs: dropped,
		Odds:        odds,
		Amount:      amount,
		WinAmount:   bet.WinAmount.Decimal,
	})

	if err := uow.Commit(); err != nil {
		return nil, storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"userID":      userID,
		"betID":       bet.ID,
		"legs":        len(open),
		"droppedLegs": dropped,
		"odds":        odds.String(),
		"stake":       amount.StringFixed(2),
		"winAmount":   bet.WinAmount.Decimal.StringFixed(2),
	}).Info("Bet placed")

	return bet, nil
}

// PendingBet returns the user's PENDING bet with its legs, or nil
func (s *betService) PendingBet(ctx context.Context, userID int64) (*models.BetWithLegs, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetPendingByUser(ctx, userID)
	if err != nil {
		return nil, storageError("get pending bet", err)
	}
	if bet == nil {
		return nil, nil
	}

	legs, err := uow.BetLegRepository().ListByBet(ctx, bet.ID)
	if err != nil {
		return nil, storageError("list bet legs", err)
	}
	return &models.BetWithLegs{Bet: *bet, Legs: legs}, nil
}

// ListBets returns the user's bets with their legs, newest first
func (s *betService) ListBets(ctx context.Context, userID int64, limit int) ([]*models.BetWithLegs, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storageError("list bets", err)
	}

	result := make([]*models.BetWithLegs, 0, len(bets))
	for _, bet := range bets {
		legs, err := uow.BetLegRepository().ListByBet(ctx, bet.ID)
		if err != nil {
			return nil, storageError("list bet legs", err)
		}
		result = append(result, &models.BetWithLegs{Bet: *bet, Legs: legs})
	}
	return result, nil
}
