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

const userColumns = `id, email, balance, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByIDForUpdate retrieves a user and holds a row lock so concurrent
// balance and bet operations for the same user serialize
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Create creates a new user with the initial balance
func (r *UserRepository) Create(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error) {
	query := `
		INSERT INTO users (email, balance)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, email, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return user, nil
}

// AddBalance credits a user's balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, amount, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("user %d: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to add balance for user %d: %w", id, err)
	}
	return balance, nil
}

// DeductBalance debits a user's balance atomically; the WHERE guard keeps
// the balance non-negative even if the caller skipped its own check
func (r *UserRepository) DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, amount, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("user %d: %w", id, service.ErrInsufficientFunds)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to deduct balance for user %d: %w", id, err)
	}
	return balance, nil
}
