package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind represents the type of balance change
type TransactionKind string

const (
	TransactionKindDeposit  TransactionKind = "deposit"
	TransactionKindWithdraw TransactionKind = "withdraw"
	TransactionKindStake    TransactionKind = "stake"
	TransactionKindPayout   TransactionKind = "payout"
)

// IsCredit reports whether the kind increases the balance
func (k TransactionKind) IsCredit() bool {
	return k == TransactionKindDeposit || k == TransactionKindPayout
}

// Transaction is an append-only audit record of a balance mutation.
// Amount is always positive; Kind gives the direction.
type Transaction struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	Kind      TransactionKind `db:"kind"`
	CreatedAt time.Time       `db:"created_at"`
}
