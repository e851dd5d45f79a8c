package repository

import (
	"context"
	"errors"
	"fmt"

	"betting/database"
	"betting/models"
	"betting/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const betColumns = `id, user_id, status, odds, money_placed, win_amount, user_won, created_at`

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UserID,
		&bet.Status,
		&bet.Odds,
		&bet.MoneyPlaced,
		&bet.WinAmount,
		&bet.UserWon,
		&bet.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *BetRepository) getOne(ctx context.Context, query string, args ...any) (*models.Bet, error) {
	bet, err := scanBet(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return bet, err
}

// CreatePending inserts a PENDING bet unless the user already has one. The
// partial unique index bets_one_pending_per_user makes the insert a no-op
// for a concurrent duplicate, after which the existing bet is returned.
func (r *BetRepository) CreatePending(ctx context.Context, userID int64) (*models.Bet, error) {
	insert := `
		INSERT INTO bets (user_id, status, odds)
		VALUES ($1, 'PENDING', 1)
		ON CONFLICT (user_id) WHERE status = 'PENDING' DO NOTHING
		RETURNING ` + betColumns

	bet, err := r.getOne(ctx, insert, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending bet for user %d: %w", userID, err)
	}
	if bet != nil {
		return bet, nil
	}

	bet, err = r.GetPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, fmt.Errorf("pending bet for user %d vanished after conflict", userID)
	}
	return bet, nil
}

// GetByID retrieves a bet by ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	bet, err := r.getOne(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

// GetByIDForUpdate retrieves a bet and locks the row
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	bet, err := r.getOne(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock bet %d: %w", id, err)
	}
	return bet, nil
}

// GetPendingByUser returns the user's PENDING bet
func (r *BetRepository) GetPendingByUser(ctx context.Context, userID int64) (*models.Bet, error) {
	bet, err := r.getOne(ctx, `SELECT `+betColumns+` FROM bets WHERE user_id = $1 AND status = 'PENDING'`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bet for user %d: %w", userID, err)
	}
	return bet, nil
}

// ListIDsByStatus returns the ids of bets in status, oldest first
func (r *BetRepository) ListIDsByStatus(ctx context.Context, status models.BetStatus) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM bets WHERE status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s bets: %w", status, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect %s bet ids: %w", status, err)
	}
	return ids, nil
}

// ListByUser returns a user's bets, newest first
func (r *BetRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}

// UpdateOdds stores a recomputed composite odds value
func (r *BetRepository) UpdateOdds(ctx context.Context, id int64, odds decimal.Decimal) error {
	result, err := r.q.Exec(ctx, `UPDATE bets SET odds = $1 WHERE id = $2`, odds, id)
	if err != nil {
		return fmt.Errorf("failed to update odds for bet %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d: %w", id, service.ErrNotFound)
	}
	return nil
}

// Place moves a PENDING bet to PLACED
func (r *BetRepository) Place(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets
		SET status = 'PLACED', odds = $1, money_placed = $2, win_amount = $3
		WHERE id = $4 AND status = 'PENDING'
	`

	result, err := r.q.Exec(ctx, query, bet.Odds, bet.MoneyPlaced, bet.WinAmount, bet.ID)
	if err != nil {
		return fmt.Errorf("failed to place bet %d: %w", bet.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d: %w", bet.ID, service.ErrBetNotPending)
	}
	bet.Status = models.BetStatusPlaced
	return nil
}

// MarkFinished moves a PLACED bet to FINISHED. The status guard keeps the
// transition one-way even if two sweeps race.
func (r *BetRepository) MarkFinished(ctx context.Context, id int64, won bool) (bool, error) {
	result, err := r.q.Exec(ctx, `UPDATE bets SET status = 'FINISHED', user_won = $1 WHERE id = $2 AND status = 'PLACED'`, won, id)
	if err != nil {
		return false, fmt.Errorf("failed to finish bet %d: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}

// Delete removes a bet
func (r *BetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d: %w", id, service.ErrNotFound)
	}
	return nil
}
