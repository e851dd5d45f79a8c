package service

import (
	"context"
	"fmt"

	"betting/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type balanceService struct {
	uowFactory UnitOfWorkFactory
	minDeposit decimal.Decimal
}

// NewBalanceService creates a new balance service
func NewBalanceService(uowFactory UnitOfWorkFactory, minDeposit decimal.Decimal) BalanceService {
	return &balanceService{
		uowFactory: uowFactory,
		minDeposit: minDeposit,
	}
}

// Deposit credits amount to the user's wallet
func (s *balanceService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	if amount.LessThan(s.minDeposit) {
		return nil, fmt.Errorf("%w: minimum deposit is %s", ErrInvalidAmount, s.minDeposit.StringFixed(2))
	}
	return s.apply(ctx, userID, models.TransactionKindDeposit, amount)
}

// Withdraw debits amount from the user's wallet
func (s *balanceService) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal must be positive", ErrInvalidAmount)
	}
	return s.apply(ctx, userID, models.TransactionKindWithdraw, amount)
}

func (s *balanceService) apply(ctx context.Context, userID int64, kind models.TransactionKind, amount decimal.Decimal) (*models.User, error) {
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

	if kind.IsCredit() {
		err = credit(ctx, uow, user, kind, amount)
	} else {
		if !user.CanAfford(amount) {
			return nil, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, user.Balance.StringFixed(2), amount.StringFixed(2))
		}
		err = debit(ctx, uow, user, kind, amount)
	}
	if err != nil {
		return nil, wrapStorage(fmt.Sprintf("apply %s", kind), err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"kind":    kind,
		"amount":  amount.StringFixed(2),
		"balance": user.Balance.StringFixed(2),
	}).Info("Balance updated")

	return user, nil
}

// Balance returns the user with their current balance
func (s *balanceService) Balance(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return user, nil
}

// History returns the user's most recent balance transactions
func (s *balanceService) History(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	transactions, err := uow.TransactionRepository().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storageError("list transactions", err)
	}
	return transactions, nil
}
