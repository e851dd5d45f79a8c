package repository

import (
	"context"
	"errors"
	"fmt"

	"betting/database"
	"betting/models"
	"betting/service"

	"github.com/jackc/pgx/v5"
)

const betLegColumns = `l.id, l.bet_id, l.fixture_id, l.home_team, l.away_team, l.selected, l.odds, l.created_at`

// BetLegRepository implements the BetLegRepository interface
type BetLegRepository struct {
	q queryable
}

// NewBetLegRepository creates a new bet leg repository
func NewBetLegRepository(db *database.DB) *BetLegRepository {
	return &BetLegRepository{q: db.Pool}
}

func newBetLegRepositoryWithTx(tx queryable) *BetLegRepository {
	return &BetLegRepository{q: tx}
}

func betLegScanTargets(leg *models.BetLeg) []any {
	return []any{
		&leg.ID,
		&leg.BetID,
		&leg.FixtureID,
		&leg.HomeTeam,
		&leg.AwayTeam,
		&leg.Selected,
		&leg.Odds,
		&leg.CreatedAt,
	}
}

func (r *BetLegRepository) getOne(ctx context.Context, query string, args ...any) (*models.BetLeg, error) {
	var leg models.BetLeg
	err := r.q.QueryRow(ctx, query, args...).Scan(betLegScanTargets(&leg)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &leg, nil
}

// Create inserts a leg
func (r *BetLegRepository) Create(ctx context.Context, leg *models.BetLeg) error {
	query := `
		INSERT INTO bet_legs (bet_id, fixture_id, home_team, away_team, selected, odds)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		leg.BetID,
		leg.FixtureID,
		leg.HomeTeam,
		leg.AwayTeam,
		leg.Selected,
		leg.Odds,
	).Scan(&leg.ID, &leg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create leg on fixture %d for bet %d: %w", leg.FixtureID, leg.BetID, err)
	}
	return nil
}

// GetByID retrieves a leg by ID
func (r *BetLegRepository) GetByID(ctx context.Context, id int64) (*models.BetLeg, error) {
	leg, err := r.getOne(ctx, `SELECT `+betLegColumns+` FROM bet_legs l WHERE l.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet leg %d: %w", id, err)
	}
	return leg, nil
}

// GetByBetAndFixture returns the bet's leg on a fixture
func (r *BetLegRepository) GetByBetAndFixture(ctx context.Context, betID, fixtureID int64) (*models.BetLeg, error) {
	leg, err := r.getOne(ctx, `SELECT `+betLegColumns+` FROM bet_legs l WHERE l.bet_id = $1 AND l.fixture_id = $2`, betID, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leg on fixture %d for bet %d: %w", fixtureID, betID, err)
	}
	return leg, nil
}

// ListByBet returns a bet's legs in insertion order
func (r *BetLegRepository) ListByBet(ctx context.Context, betID int64) ([]*models.BetLeg, error) {
	rows, err := r.q.Query(ctx, `SELECT `+betLegColumns+` FROM bet_legs l WHERE l.bet_id = $1 ORDER BY l.id`, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to list legs for bet %d: %w", betID, err)
	}
	defer rows.Close()

	var legs []*models.BetLeg
	for rows.Next() {
		var leg models.BetLeg
		if err := rows.Scan(betLegScanTargets(&leg)...); err != nil {
			return nil, fmt.Errorf("failed to scan bet leg: %w", err)
		}
		legs = append(legs, &leg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bet legs: %w", err)
	}
	return legs, nil
}

// ListDetailsByBet returns a bet's legs joined with their fixtures' current status and winner
func (r *BetLegRepository) ListDetailsByBet(ctx context.Context, betID int64) ([]*models.BetLegDetail, error) {
	query := `
		SELECT ` + betLegColumns + `, f.status, f.winner
		FROM bet_legs l
		JOIN fixtures f ON f.id = l.fixture_id
		WHERE l.bet_id = $1
		ORDER BY l.id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leg details for bet %d: %w", betID, err)
	}
	defer rows.Close()

	var details []*models.BetLegDetail
	for rows.Next() {
		var detail models.BetLegDetail
		targets := append(betLegScanTargets(&detail.BetLeg), &detail.FixtureStatus, &detail.FixtureWinner)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan bet leg detail: %w", err)
		}
		details = append(details, &detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bet leg details: %w", err)
	}
	return details, nil
}

// Delete removes a leg
func (r *BetLegRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM bet_legs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bet leg %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet leg %d: %w", id, service.ErrNotFound)
	}
	return nil
}

// DeleteByBet removes every leg of a bet
func (r *BetLegRepository) DeleteByBet(ctx context.Context, betID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM bet_legs WHERE bet_id = $1`, betID); err != nil {
		return fmt.Errorf("failed to delete legs for bet %d: %w", betID, err)
	}
	return nil
}

// CountByBet returns the number of legs attached to a bet
func (r *BetLegRepository) CountByBet(ctx context.Context, betID int64) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bet_legs WHERE bet_id = $1`, betID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count legs for bet %d: %w", betID, err)
	}
	return count, nil
}
