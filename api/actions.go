package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"betting/service"

	log "github.com/sirupsen/logrus"
)

// Result is the outcome of a user action. Message is safe to show to the user.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	err error
}

// Err returns the underlying error of a failed action, if any
func (r Result) Err() error {
	return r.err
}

// Actions are the user-facing bet and wallet operations
type Actions struct {
	bets     service.BetService
	balances service.BalanceService
}

// NewActions creates the action set over the bet and balance services
func NewActions(bets service.BetService, balances service.BalanceService) *Actions {
	return &Actions{
		bets:     bets,
		balances: balances,
	}
}

// PlaceBetLeg adds a selection (fixture_id, selected, optional odds) to the user's open bet
func (a *Actions) PlaceBetLeg(ctx context.Context, userID int64, form url.Values) Result {
	req, err := parseBetLeg(form)
	if err != nil {
		return failure("place bet leg", userID, err)
	}

	leg, err := a.bets.AddLeg(ctx, userID, req.FixtureID, req.Selected, req.Odds)
	if err != nil {
		return failure("place bet leg", userID, err)
	}

	return Result{
		OK:      true,
		Message: fmt.Sprintf("Added %s vs %s at %s", leg.HomeTeam, leg.AwayTeam, leg.Odds.StringFixed(2)),
		Data:    newLegView(leg),
	}
}

// RemoveBetLeg removes the selection leg_id from the user's open bet
func (a *Actions) RemoveBetLeg(ctx context.Context, userID int64, form url.Values) Result {
	legID, err := parseID(form.Get("leg_id"))
	if err != nil {
		return failure("remove bet leg", userID, err)
	}

	if err := a.bets.RemoveLeg(ctx, legID, userID); err != nil {
		return failure("remove bet leg", userID, err)
	}
	return Result{OK: true, Message: "Selection removed"}
}

// DeleteBet discards the user's open bet bet_id
func (a *Actions) DeleteBet(ctx context.Context, userID int64, form url.Values) Result {
	betID, err := parseID(form.Get("bet_id"))
	if err != nil {
		return failure("delete bet", userID, err)
	}

	if err := a.bets.DeleteBet(ctx, betID, userID); err != nil {
		return failure("delete bet", userID, err)
	}
	return Result{OK: true, Message: "Bet deleted"}
}

// PlaceStake stakes amount on the user's open bet
func (a *Actions) PlaceStake(ctx context.Context, userID int64, form url.Values) Result {
	amount, err := parseAmount(form)
	if err != nil {
		return failure("place stake", userID, err)
	}

	bet, err := a.bets.PlaceStake(ctx, userID, amount)
	if err != nil {
		return failure("place stake", userID, err)
	}
	if bet == nil {
		return Result{OK: false, Message: "You have no open bet to stake"}
	}

	return Result{
		OK: true,
		Message: fmt.Sprintf("Bet placed: %s at %s, potential win %s",
			amount.StringFixed(2), bet.Odds.StringFixed(2), bet.WinAmount.Decimal.StringFixed(2)),
		Data: newBetView(bet, nil),
	}
}

// Deposit credits amount to the user's wallet
func (a *Actions) Deposit(ctx context.Context, userID int64, form url.Values) Result {
	amount, err := parseAmount(form)
	if err != nil {
		return failure("deposit", userID, err)
	}

	user, err := a.balances.Deposit(ctx, userID, amount)
	if err != nil {
		return failure("deposit", userID, err)
	}
	return Result{
		OK:      true,
		Message: fmt.Sprintf("Deposited %s, balance %s", amount.StringFixed(2), user.Balance.StringFixed(2)),
		Data:    walletView{Balance: user.Balance.StringFixed(2)},
	}
}

// Withdraw debits amount from the user's wallet
func (a *Actions) Withdraw(ctx context.Context, userID int64, form url.Values) Result {
	amount, err := parseAmount(form)
	if err != nil {
		return failure("withdraw", userID, err)
	}

	user, err := a.balances.Withdraw(ctx, userID, amount)
	if err != nil {
		return failure("withdraw", userID, err)
	}
	return Result{
		OK:      true,
		Message: fmt.Sprintf("Withdrew %s, balance %s", amount.StringFixed(2), user.Balance.StringFixed(2)),
		Data:    walletView{Balance: user.Balance.StringFixed(2)},
	}
}

// failure converts err into a user-safe result. Storage and upstream detail is logged only.
func failure(action string, userID int64, err error) Result {
	fields := log.Fields{
		"action": action,
		"userID": userID,
		"error":  err,
	}
	if service.IsUserFacing(err) {
		log.WithFields(fields).Debug("Action rejected")
	} else {
		log.WithFields(fields).Error("Action failed")
	}
	return Result{OK: false, Message: messageFor(err), err: err}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidOutcome):
		return "Pick home, draw or away"
	case errors.Is(err, service.ErrBetNotPending):
		return "This bet has already been placed and can no longer be changed"
	case errors.Is(err, service.ErrNoOpenLegs):
		return "Every fixture on this bet has already finished"
	case errors.Is(err, service.ErrNotFound):
		return "That fixture, bet or selection does not exist"
	case errors.Is(err, service.ErrForbidden):
		return "That bet belongs to someone else"
	case errors.Is(err, service.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, service.ErrInvalidAmount):
		return invalidAmountMessage(err)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return "Fixture data is temporarily unavailable, please try again later"
	default:
		return "Something went wrong, please try again"
	}
}

func invalidAmountMessage(err error) string {
	detail := strings.TrimPrefix(err.Error(), service.ErrInvalidAmount.Error()+": ")
	if detail == err.Error() {
		return "Invalid amount"
	}
	return "Invalid amount: " + detail
}
