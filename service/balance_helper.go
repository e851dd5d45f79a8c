package service

import (
	"context"
	"fmt"

	"betting/events"
	"betting/models"

	"github.com/shopspring/decimal"
)

// balanceChange describes one applied balance mutation
type balanceChange struct {
	UserID     int64
	Kind       models.TransactionKind
	Amount     decimal.Decimal
	OldBalance decimal.Decimal
	NewBalance decimal.Decimal
}

// RecordBalanceChange appends the audit transaction for an applied balance
// mutation and queues the matching event. Every balance mutator calls it
// inside the same unit of work as the mutation itself.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, change balanceChange) (*models.Transaction, error) {
	tx := &models.Transaction{
		UserID: change.UserID,
		Amount: change.Amount,
		Kind:   change.Kind,
	}
	if err := uow.TransactionRepository().Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record %s transaction: %w", change.Kind, err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     change.UserID,
		OldBalance: change.OldBalance,
		NewBalance: change.NewBalance,
		Kind:       change.Kind,
		Amount:     change.Amount,
	})

	return tx, nil
}

// credit adds amount to the user's balance and records it as kind
func credit(ctx context.Context, uow UnitOfWork, user *models.User, kind models.TransactionKind, amount decimal.Decimal) error {
	newBalance, err := uow.UserRepository().AddBalance(ctx, user.ID, amount)
	if err != nil {
		return fmt.Errorf("failed to credit user %d: %w", user.ID, err)
	}

	if _, err := RecordBalanceChange(ctx, uow, balanceChange{
		UserID:     user.ID,
		Kind:       kind,
		Amount:     amount,
		OldBalance: user.Balance,
		NewBalance: newBalance,
	}); err != nil {
		return err
	}

	user.Balance = newBalance
	return nil
}

// debit removes amount from the user's balance and records it as kind
func debit(ctx context.Context, uow UnitOfWork, user *models.User, kind models.TransactionKind, amount decimal.Decimal) error {
	newBalance, err := uow.UserRepository().DeductBalance(ctx, user.ID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit user %d: %w", user.ID, err)
	}

	if _, err := RecordBalanceChange(ctx, uow, balanceChange{
		UserID:     user.ID,
		Kind:       kind,
		Amount:     amount,
		OldBalance: user.Balance,
		NewBalance: newBalance,
	}); err != nil {
		return err
	}

	user.Balance = newBalance
	return nil
}
