package repository

import (
	"context"
	"errors"
	"fmt"

	"betting/database"
	"betting/models"

	"github.com/jackc/pgx/v5"
)

const competitionColumns = `id, area_id, name, code, type, emblem`

// CompetitionRepository implements the CompetitionRepository interface
type CompetitionRepository struct {
	q queryable
}

// NewCompetitionRepository creates a new competition repository
func NewCompetitionRepository(db *database.DB) *CompetitionRepository {
	return &CompetitionRepository{q: db.Pool}
}

func newCompetitionRepositoryWithTx(tx queryable) *CompetitionRepository {
	return &CompetitionRepository{q: tx}
}

func scanCompetition(row pgx.Row) (*models.Competition, error) {
	var c models.Competition
	if err := row.Scan(&c.ID, &c.AreaID, &c.Name, &c.Code, &c.Type, &c.Emblem); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a competition
func (r *CompetitionRepository) FindByID(ctx context.Context, id int64) (*models.Competition, error) {
	competition, err := scanCompetition(r.q.QueryRow(ctx, `SELECT `+competitionColumns+` FROM competitions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition %d: %w", id, err)
	}
	return competition, nil
}

// List returns every stored competition ordered by id
func (r *CompetitionRepository) List(ctx context.Context) ([]*models.Competition, error) {
	rows, err := r.q.Query(ctx, `SELECT `+competitionColumns+` FROM competitions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	var competitions []*models.Competition
	for rows.Next() {
		competition, err := scanCompetition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		competitions = append(competitions, competition)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate competitions: %w", err)
	}
	return competitions, nil
}

// Upsert inserts a competition or refreshes it
func (r *CompetitionRepository) Upsert(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (id, area_id, name, code, type, emblem)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			area_id = EXCLUDED.area_id,
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			type = EXCLUDED.type,
			emblem = EXCLUDED.emblem
	`
	if _, err := r.q.Exec(ctx, query, c.ID, c.AreaID, c.Name, c.Code, c.Type, c.Emblem); err != nil {
		return fmt.Errorf("failed to upsert competition %d: %w", c.ID, err)
	}
	return nil
}

// UpsertArea inserts an area or refreshes it
func (r *CompetitionRepository) UpsertArea(ctx context.Context, a *models.Area) error {
	query := `
		INSERT INTO areas (id, name, code, flag)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			flag = EXCLUDED.flag
	`
	if _, err := r.q.Exec(ctx, query, a.ID, a.Name, a.Code, a.Flag); err != nil {
		return fmt.Errorf("failed to upsert area %d: %w", a.ID, err)
	}
	return nil
}
