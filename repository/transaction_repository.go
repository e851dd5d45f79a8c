package repository

import (
	"context"
	"fmt"

	"betting/database"
	"betting/models"
)

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends an audit row
func (r *TransactionRepository) Record(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, amount, kind)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, tx.UserID, tx.Amount, tx.Kind).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s transaction for user %d: %w", tx.Kind, tx.UserID, err)
	}
	return nil
}

// ListByUser returns a user's most recent transactions first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, amount, kind, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Kind, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
