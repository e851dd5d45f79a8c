package repository

import (
	"context"
	"errors"
	"fmt"

	"betting/database"
	"betting/models"

	"github.com/jackc/pgx/v5"
)

// TeamRepository implements the TeamRepository interface
type TeamRepository struct {
	q queryable
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.DB) *TeamRepository {
	return &TeamRepository{q: db.Pool}
}

func newTeamRepositoryWithTx(tx queryable) *TeamRepository {
	return &TeamRepository{q: tx}
}

// FindByID retrieves a team
func (r *TeamRepository) FindByID(ctx context.Context, id int64) (*models.Team, error) {
	var team models.Team
	err := r.q.QueryRow(ctx, `SELECT id, name, short_name, tla, crest FROM teams WHERE id = $1`, id).Scan(
		&team.ID,
		&team.Name,
		&team.ShortName,
		&team.TLA,
		&team.Crest,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return &team, nil
}

// Upsert inserts a team or refreshes its names and crest
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, short_name, tla, crest)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name,
			tla = EXCLUDED.tla,
			crest = EXCLUDED.crest
	`
	if _, err := r.q.Exec(ctx, query, team.ID, team.Name, team.ShortName, team.TLA, team.Crest); err != nil {
		return fmt.Errorf("failed to upsert team %d: %w", team.ID, err)
	}
	return nil
}

// AddToCompetition records that a team plays in a competition
func (r *TeamRepository) AddToCompetition(ctx context.Context, competitionID, teamID int64) error {
	query := `
		INSERT INTO competition_teams (competition_id, team_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, competitionID, teamID); err != nil {
		return fmt.Errorf("failed to link team %d to competition %d: %w", teamID, competitionID, err)
	}
	return nil
}
