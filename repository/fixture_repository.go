package repository

import (
	"context"
	"errors"
	"fmt"

	"betting/database"
	"betting/models"

	"github.com/jackc/pgx/v5"
)

const fixtureSelect = `
	SELECT f.id, f.competition_id, f.utc_date, f.status, f.stage, f.group_name, f.winner, f.duration,
	       f.full_time_home, f.full_time_away, f.half_time_home, f.half_time_away,
	       f.home_team_id, f.away_team_id, f.home_odds, f.draw_odds, f.away_odds, f.updated_at,
	       COALESCE(home.name, 'TBD'), COALESCE(away.name, 'TBD')
	FROM fixtures f
	LEFT JOIN teams home ON home.id = f.home_team_id
	LEFT JOIN teams away ON away.id = f.away_team_id
`

// FixtureRepository implements the FixtureRepository interface
type FixtureRepository struct {
	q queryable
}

// NewFixtureRepository creates a new fixture repository
func NewFixtureRepository(db *database.DB) *FixtureRepository {
	return &FixtureRepository{q: db.Pool}
}

func newFixtureRepositoryWithTx(tx queryable) *FixtureRepository {
	return &FixtureRepository{q: tx}
}

func scanFixture(row pgx.Row) (*models.Fixture, error) {
	var f models.Fixture
	err := row.Scan(
		&f.ID,
		&f.CompetitionID,
		&f.UTCDate,
		&f.Status,
		&f.Stage,
		&f.Group,
		&f.Winner,
		&f.Duration,
		&f.FullTimeHome,
		&f.FullTimeAway,
		&f.HalfTimeHome,
		&f.HalfTimeAway,
		&f.HomeTeamID,
		&f.AwayTeamID,
		&f.Odds.Home,
		&f.Odds.Draw,
		&f.Odds.Away,
		&f.UpdatedAt,
		&f.HomeTeamName,
		&f.AwayTeamName,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FindByID retrieves a fixture with its team names
func (r *FixtureRepository) FindByID(ctx context.Context, id int64) (*models.Fixture, error) {
	fixture, err := scanFixture(r.q.QueryRow(ctx, fixtureSelect+` WHERE f.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture %d: %w", id, err)
	}
	return fixture, nil
}

// Upsert inserts a fixture or overwrites its synced columns. Whether the
// odds change is decided by the caller, which passes the odds to keep.
func (r *FixtureRepository) Upsert(ctx context.Context, f *models.Fixture) error {
	query := `
		INSERT INTO fixtures (
			id, competition_id, utc_date, status, stage, group_name, winner, duration,
			full_time_home, full_time_away, half_time_home, half_time_away,
			home_team_id, away_team_id, home_odds, draw_odds, away_odds
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			competition_id = EXCLUDED.competition_id,
			utc_date = EXCLUDED.utc_date,
			status = EXCLUDED.status,
			stage = EXCLUDED.stage,
			group_name = EXCLUDED.group_name,
			winner = EXCLUDED.winner,
			duration = EXCLUDED.duration,
			full_time_home = EXCLUDED.full_time_home,
			full_time_away = EXCLUDED.full_time_away,
			half_time_home = EXCLUDED.half_time_home,
			half_time_away = EXCLUDED.half_time_away,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_odds = EXCLUDED.home_odds,
			draw_odds = EXCLUDED.draw_odds,
			away_odds = EXCLUDED.away_odds,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		f.ID,
		f.CompetitionID,
		f.UTCDate,
		f.Status,
		f.Stage,
		f.Group,
		f.Winner,
		f.Duration,
		f.FullTimeHome,
		f.FullTimeAway,
		f.HalfTimeHome,
		f.HalfTimeAway,
		f.HomeTeamID,
		f.AwayTeamID,
		f.Odds.Home,
		f.Odds.Draw,
		f.Odds.Away,
	).Scan(&f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert fixture %d: %w", f.ID, err)
	}
	return nil
}

// ListByCompetition returns a competition's fixtures ordered by kickoff
func (r *FixtureRepository) ListByCompetition(ctx context.Context, competitionID int64) ([]*models.Fixture, error) {
	rows, err := r.q.Query(ctx, fixtureSelect+` WHERE f.competition_id = $1 ORDER BY f.utc_date, f.id`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures for competition %d: %w", competitionID, err)
	}
	defer rows.Close()

	var fixtures []*models.Fixture
	for rows.Next() {
		fixture, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		fixtures = append(fixtures, fixture)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fixtures: %w", err)
	}
	return fixtures, nil
}
