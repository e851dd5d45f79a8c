package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"betting/models"
	"betting/service"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// betLegForm is the form behind PlaceBetLeg
type betLegForm struct {
	FixtureID string `validate:"required,number"`
	Selected  string `validate:"required,oneof=HOME_TEAM DRAW AWAY_TEAM HOME AWAY 1 X 2"`
	Odds      string `validate:"omitempty,numeric"`
}

// amountForm is the form behind PlaceStake, Deposit and Withdraw
type amountForm struct {
	Amount string `validate:"required"`
}

// idForm carries a single path or form id
type idForm struct {
	ID string `validate:"required,number"`
}

type betLegRequest struct {
	FixtureID int64
	Selected  models.Outcome
	Odds      decimal.Decimal
}

func parseBetLeg(form url.Values) (*betLegRequest, error) {
	f := betLegForm{
		FixtureID: strings.TrimSpace(form.Get("fixture_id")),
		Selected:  strings.ToUpper(strings.TrimSpace(form.Get("selected"))),
		Odds:      strings.TrimSpace(form.Get("odds")),
	}
	if err := validate.Struct(f); err != nil {
		return nil, validationError(err)
	}

	fixtureID, err := strconv.ParseInt(f.FixtureID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: fixture_id", service.ErrNotFound)
	}
	selected, err := models.ParseOutcome(f.Selected)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidOutcome, err)
	}

	req := &betLegRequest{FixtureID: fixtureID, Selected: selected}
	if f.Odds != "" {
		req.Odds, err = decimal.NewFromString(f.Odds)
		if err != nil {
			return nil, fmt.Errorf("%w: odds %q", service.ErrInvalidAmount, f.Odds)
		}
	}
	return req, nil
}

func parseAmount(form url.Values) (decimal.Decimal, error) {
	f := amountForm{Amount: strings.TrimSpace(form.Get("amount"))}
	if err := validate.Struct(f); err != nil {
		return decimal.Zero, validationError(err)
	}
	return service.ParseAmount(f.Amount)
}

func parseID(raw string) (int64, error) {
	f := idForm{ID: strings.TrimSpace(raw)}
	if err := validate.Struct(f); err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", service.ErrNotFound, raw)
	}
	id, err := strconv.ParseInt(f.ID, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", service.ErrNotFound, raw)
	}
	return id, nil
}

// validationError maps a failed field to the matching domain error kind
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", service.ErrInvalidAmount, err)
	}

	field := fieldErrs[0]
	switch field.Field() {
	case "Selected":
		return fmt.Errorf("%w: selection must be home, draw or away", service.ErrInvalidOutcome)
	case "FixtureID", "ID":
		return fmt.Errorf("%w: %s is %s", service.ErrNotFound, strings.ToLower(field.Field()), field.Tag())
	default:
		return fmt.Errorf("%w: %s is %s", service.ErrInvalidAmount, strings.ToLower(field.Field()), field.Tag())
	}
}
