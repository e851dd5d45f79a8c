package service

import (
	"context"
	"fmt"

	"betting/events"
	"betting/models"

	log "github.com/sirupsen/logrus"
)

// SweepResult counts what one settlement sweep did
type SweepResult struct {
	Scanned int
	Settled int
	Won     int
	Lost    int
	Skipped int
	Failed  int
}

type settlementService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
	}
}

// Sweep settles every PLACED bet whose fixtures have all finished
func (s *settlementService) Sweep(ctx context.Context) (*SweepResult, error) {
	betIDs, err := s.placedBetIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(betIDs)}
	for _, betID := range betIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		settled, won, err := s.settleBet(ctx, betID)
		switch {
		case err != nil:
			result.Failed++
			log.WithFields(log.Fields{
				"betID": betID,
				"error": err,
			}).Error("Failed to settle bet")
		case !settled:
			result.Skipped++
		case won:
			result.Settled++
			result.Won++
		default:
			result.Settled++
			result.Lost++
		}
	}

	if result.Settled > 0 || result.Failed > 0 {
		log.WithFields(log.Fields{
			"scanned": result.Scanned,
			"settled": result.Settled,
			"won":     result.Won,
			"lost":    result.Lost,
			"failed":  result.Failed,
		}).Info("Settlement sweep completed")
	}

	return result, nil
}

func (s *settlementService) placedBetIDs(ctx context.Context) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	ids, err := uow.BetRepository().ListIDsByStatus(ctx, models.BetStatusPlaced)
	if err != nil {
		return nil, storageError("list placed bets", err)
	}
	return ids, nil
}

// settleBet finishes one bet in its own transaction. settled is false when
// the bet is not ready or was settled by someone else.
func (s *settlementService) settleBet(ctx context.Context, betID int64) (settled, won bool, err error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, false, storageError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return false, false, storageError("get bet", err)
	}
	if bet == nil || bet.Status != models.BetStatusPlaced {
		return false, false, nil
	}

	legs, err := uow.BetLegRepository().ListDetailsByBet(ctx, betID)
	if err != nil {
		return false, false, storageError("list bet legs", err)
	}
	if len(legs) == 0 {
		log.WithField("betID", betID).Warn("Placed bet has no legs, leaving it unsettled")
		return false, false, nil
	}
	for _, leg := range legs {
		if !leg.IsDecided() {
			return false, false, nil
		}
	}

	won = true
	for _, leg := range legs {
		if !leg.IsWon() {
			won = false
			break
		}
	}

	finished, err := uow.BetRepository().MarkFinished(ctx, betID, won)
	if err != nil {
		return false, false, storageError("mark bet finished", err)
	}
	if !finished {
		return false, false, nil
	}

	winAmount := bet.WinAmount.Decimal
	if won && winAmount.IsPositive() {
		user, err := uow.UserRepository().GetByIDForUpdate(ctx, bet.UserID)
		if err != nil {
			return false, false, storageError("get user", err)
		}
		if user == nil {
			return false, false, fmt.Errorf("bet %d owner %d: %w", betID, bet.UserID, ErrNotFound)
		}
		if err := credit(ctx, uow, user, models.TransactionKindPayout, winAmount); err != nil {
			return false, false, wrapStorage("credit payout", err)
		}
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		UserID:    bet.UserID,
		BetID:     betID,
		Won:       won,
		Odds:      bet.Odds,
		Amount:    bet.MoneyPlaced.Decimal,
		WinAmount: winAmount,
	})

	if err := uow.Commit(); err != nil {
		return false, false, storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"betID":     betID,
		"userID":    bet.UserID,
		"won":       won,
		"winAmount": winAmount.StringFixed(2),
	}).Info("Bet settled")

	return true, won, nil
}
