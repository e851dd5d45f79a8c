package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"betting/database"
	"betting/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Fixed provider ids used by the seed helpers
const (
	CompetitionID int64 = 2021
	HomeTeamID    int64 = 57
	AwayTeamID    int64 = 61
)

// CreateTestFixture returns a fixture between the seeded teams with fixed odds
func CreateTestFixture(id int64, status models.FixtureStatus) *models.Fixture {
	home, away := HomeTeamID, AwayTeamID
	return &models.Fixture{
		ID:            id,
		CompetitionID: CompetitionID,
		UTCDate:       time.Date(2024, 8, 17, 14, 0, 0, 0, time.UTC),
		Status:        status,
		Stage:         "REGULAR_SEASON",
		Duration:      "REGULAR",
		HomeTeamID:    &home,
		AwayTeamID:    &away,
		Odds: models.Odds{
			Home: decimal.RequireFromString("2.50"),
			Draw: decimal.RequireFromString("3.10"),
			Away: decimal.RequireFromString("2.90"),
		},
	}
}

// CreateTestLeg returns an unsaved leg selecting outcome on fixtureID
func CreateTestLeg(betID, fixtureID int64, outcome models.Outcome, odds string) *models.BetLeg {
	return &models.BetLeg{
		BetID:     betID,
		FixtureID: fixtureID,
		HomeTeam:  "Arsenal FC",
		AwayTeam:  "Chelsea FC",
		Selected:  outcome,
		Odds:      decimal.RequireFromString(odds),
	}
}

// SeedCompetition inserts the area, competition and both teams the fixture factories reference
func SeedCompetition(t *testing.T, db *database.DB) {
	t.Helper()

	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		ctx := context.Background()
		statements := []struct {
			sql  string
			args []any
		}{
			{`INSERT INTO areas (id, name, code) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, []any{int64(2072), "England", "ENG"}},
			{`INSERT INTO competitions (id, area_id, name, code, type) VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
				[]any{CompetitionID, int64(2072), "Premier League", "PL", "LEAGUE"}},
			{`INSERT INTO teams (id, name, short_name, tla) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
				[]any{HomeTeamID, "Arsenal FC", "Arsenal", "ARS"}},
			{`INSERT INTO teams (id, name, short_name, tla) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
				[]any{AwayTeamID, "Chelsea FC", "Chelsea", "CHE"}},
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt.sql, stmt.args...); err != nil {
				return fmt.Errorf("seed failed on %q: %w", stmt.sql, err)
			}
		}
		return nil
	})
	require.NoError(t, err)
}

// SeedUser inserts a user with balance and returns its id
func SeedUser(t *testing.T, db *database.DB, email string, balance string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (email, balance) VALUES ($1, $2) RETURNING id`,
		email, decimal.RequireFromString(balance),
	).Scan(&id)
	require.NoError(t, err)
	return id
}
