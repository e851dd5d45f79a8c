package service

import (
	"context"
	"errors"
	"testing"

	"betting/events"
	"betting/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBalanceService_Deposit(t *testing.T) {
	ctx := context.Background()

	t.Run("below minimum is rejected", func(t *testing.T) {
		factory := new(MockUnitOfWorkFactory)
		service := NewBalanceService(factory, dec("10"))

		user, err := service.Deposit(ctx, 1, dec("5"))

		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Nil(t, user)
		factory.AssertNotCalled(t, "Create")
	})

	t.Run("minimum is accepted and recorded once", func(t *testing.T) {
		env := newMockEnv(ctx)
		env.expectCommit()
		service := NewBalanceService(env.factory, dec("10"))

		env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("0")}, nil)
		env.users.On("AddBalance", ctx, int64(1), decEq("10")).Return(dec("10"), nil)
		env.transactions.On("Record", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
			return tx.UserID == 1 && tx.Kind == models.TransactionKindDeposit && tx.Amount.Equal(dec("10"))
		})).Return(nil).Once()

		user, err := service.Deposit(ctx, 1, dec("10"))

		require.NoError(t, err)
		assert.Equal(t, "10.00", user.Balance.StringFixed(2))

		changes := env.events.OfType(events.EventTypeBalanceChange)
		require.Len(t, changes, 1)
		change := changes[0].(events.BalanceChangeEvent)
		assert.True(t, change.OldBalance.IsZero())
		assert.True(t, change.NewBalance.Equal(dec("10")))
		env.transactions.AssertNumberOfCalls(t, "Record", 1)
		env.assertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newMockEnv(ctx)
		service := NewBalanceService(env.factory, dec("10"))

		env.users.On("GetByIDForUpdate", ctx, int64(404)).Return(nil, nil)

		_, err := service.Deposit(ctx, 404, dec("50"))

		assert.ErrorIs(t, err, ErrNotFound)
		env.assertExpectations(t)
	})

	t.Run("failed record write rolls back", func(t *testing.T) {
		env := newMockEnv(ctx)
		service := NewBalanceService(env.factory, dec("10"))

		env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("0")}, nil)
		env.users.On("AddBalance", ctx, int64(1), decEq("20")).Return(dec("20"), nil)
		env.transactions.On("Record", ctx, mock.AnythingOfType("*models.Transaction")).Return(errors.New("disk full"))

		_, err := service.Deposit(ctx, 1, dec("20"))

		assert.ErrorIs(t, err, ErrStorageConflict)
		env.uow.AssertNotCalled(t, "Commit")
		env.assertExpectations(t)
	})
}

func TestBalanceService_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("more than balance is rejected", func(t *testing.T) {
		env := newMockEnv(ctx)
		service := NewBalanceService(env.factory, dec("10"))

		env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("30")}, nil)

		_, err := service.Withdraw(ctx, 1, dec("30.01"))

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		env.users.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
		env.transactions.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		factory := new(MockUnitOfWorkFactory)
		service := NewBalanceService(factory, dec("10"))

		_, err := service.Withdraw(ctx, 1, dec("-5"))

		assert.ErrorIs(t, err, ErrInvalidAmount)
		factory.AssertNotCalled(t, "Create")
	})

	t.Run("full balance can be withdrawn", func(t *testing.T) {
		env := newMockEnv(ctx)
		env.expectCommit()
		service := NewBalanceService(env.factory, dec("10"))

		env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("30")}, nil)
		env.users.On("DeductBalance", ctx, int64(1), decEq("30")).Return(dec("0"), nil)
		env.transactions.On("Record", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
			return tx.Kind == models.TransactionKindWithdraw && tx.Amount.Equal(dec("30"))
		})).Return(nil)

		user, err := service.Withdraw(ctx, 1, dec("30"))

		require.NoError(t, err)
		assert.True(t, user.Balance.IsZero())
		env.assertExpectations(t)
	})

	t.Run("concurrent debit surfaces insufficient funds", func(t *testing.T) {
		env := newMockEnv(ctx)
		service := NewBalanceService(env.factory, dec("10"))

		env.users.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: dec("30")}, nil)
		env.users.On("DeductBalance", ctx, int64(1), decEq("25")).Return(dec("0"), ErrInsufficientFunds)

		_, err := service.Withdraw(ctx, 1, dec("25"))

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NotErrorIs(t, err, ErrStorageConflict)
		env.assertExpectations(t)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "10", want: "10"},
		{raw: " 12.50 ", want: "12.5"},
		{raw: "0.1", want: "0.1"},
		{raw: "1.230", want: "1.23"},
		{raw: "", wantErr: true},
		{raw: "ten", wantErr: true},
		{raw: "1.005", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
