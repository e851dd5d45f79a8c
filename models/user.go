package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder with a single wallet balance
type User struct {
	ID        int64           `db:"id"`
	Email     string          `db:"email"`
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// CanAfford reports whether the balance covers amount
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}
