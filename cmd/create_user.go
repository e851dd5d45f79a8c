package cmd

import (
	"context"
	"fmt"
	"strings"

	"betting/database"
	"betting/repository"
	"betting/service"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// CreateUser opens an account for email with an optional starting balance.
// An existing account is reported and left unchanged.
func CreateUser(ctx context.Context, databaseURL, email, balance string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}

	initial := decimal.Zero
	if balance != "" {
		var err error
		if initial, err = service.ParseAmount(balance); err != nil {
			return err
		}
		if initial.IsNegative() {
			return fmt.Errorf("%w: starting balance cannot be negative", service.ErrInvalidAmount)
		}
	}

	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		log.WithFields(log.Fields{
			"userID": existing.ID,
			"email":  existing.Email,
		}).Info("User already exists")
		return nil
	}

	user, err := users.Create(ctx, email, initial)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	log.WithFields(log.Fields{
		"userID":  user.ID,
		"email":   user.Email,
		"balance": user.Balance.StringFixed(2),
	}).Info("User created")
	return nil
}
