package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus is the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending  BetStatus = "PENDING"
	BetStatusPlaced   BetStatus = "PLACED"
	BetStatusFinished BetStatus = "FINISHED"
)

// Bet aggregates one or more legs into a single combination wager.
// MoneyPlaced and WinAmount stay null while the bet is PENDING; UserWon
// stays null until the bet is FINISHED.
type Bet struct {
	ID          int64               `db:"id"`
	UserID      int64               `db:"user_id"`
	Status      BetStatus           `db:"status"`
	Odds        decimal.Decimal     `db:"odds"`
	MoneyPlaced decimal.NullDecimal `db:"money_placed"`
	WinAmount   decimal.NullDecimal `db:"win_amount"`
	UserWon     *bool               `db:"user_won"`
	CreatedAt   time.Time           `db:"created_at"`
}

// IsPending reports whether legs can still be added or removed
func (b *Bet) IsPending() bool {
	return b.Status == BetStatusPending
}

// BetLeg is one fixture selection inside a bet. Team names and odds are
// frozen when the leg is added.
type BetLeg struct {
	ID        int64           `db:"id"`
	BetID     int64           `db:"bet_id"`
	FixtureID int64           `db:"fixture_id"`
	HomeTeam  string          `db:"home_team"`
	AwayTeam  string          `db:"away_team"`
	Selected  Outcome         `db:"selected"`
	Odds      decimal.Decimal `db:"odds"`
	CreatedAt time.Time       `db:"created_at"`
}

// BetLegDetail is a leg joined with the current state of its fixture
type BetLegDetail struct {
	BetLeg
	FixtureStatus FixtureStatus `db:"fixture_status"`
	FixtureWinner *Outcome      `db:"fixture_winner"`
}

// IsDecided reports whether the leg's fixture reached its final result
func (d *BetLegDetail) IsDecided() bool {
	return d.FixtureStatus == FixtureStatusFinished
}

// IsWon reports whether the selection matches the fixture winner
func (d *BetLegDetail) IsWon() bool {
	return d.FixtureWinner != nil && *d.FixtureWinner == d.Selected
}

// BetWithLegs is the read model behind a user's bet listing
type BetWithLegs struct {
	Bet
	Legs []*BetLeg
}

// CompositeOdds returns the product of the legs' odds
func CompositeOdds[T interface{ LegOdds() decimal.Decimal }](legs []T) decimal.Decimal {
	odds := decimal.NewFromInt(1)
	for _, leg := range legs {
		odds = odds.Mul(leg.LegOdds())
	}
	return odds
}

// LegOdds returns the odds locked in for the leg
func (l *BetLeg) LegOdds() decimal.Decimal {
	return l.Odds
}
