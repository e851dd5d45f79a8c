package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"betting/metrics"
	"betting/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// UserIDHeader carries the authenticated user id, set by the fronting gateway
const UserIDHeader = "X-User-ID"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type userIDKey struct{}

// Deps are the services behind the HTTP surface
type Deps struct {
	Bets     service.BetService
	Balances service.BalanceService
	Fixtures service.FixtureInfoService
	Gatherer prometheus.Gatherer
	Health   metrics.HealthFunc
}

type server struct {
	actions  *Actions
	bets     service.BetService
	balances service.BalanceService
	fixtures service.FixtureInfoService
}

// NewRouter builds the HTTP handler for the betting API
func NewRouter(deps Deps) http.Handler {
	s := &server{
		actions:  NewActions(deps.Bets, deps.Balances),
		bets:     deps.Bets,
		balances: deps.Balances,
		fixtures: deps.Fixtures,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	if deps.Health != nil {
		r.Get("/healthz", metrics.HealthHandler(deps.Health))
	}
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Get("/fixtures/{id}", s.getFixture)
	r.Get("/competitions/{id}", s.getCompetition)
	r.Get("/teams/{id}", s.getTeam)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/bets", s.listBets)
		r.Get("/bets/pending", s.pendingBet)
		r.Post("/bets/legs", s.action(s.actions.PlaceBetLeg, nil))
		r.Delete("/bets/legs/{legID}", s.action(s.actions.RemoveBetLeg, pathParam("legID", "leg_id")))
		r.Delete("/bets/{betID}", s.action(s.actions.DeleteBet, pathParam("betID", "bet_id")))
		r.Post("/bets/stake", s.action(s.actions.PlaceStake, nil))

		r.Get("/wallet", s.wallet)
		r.Post("/wallet/deposit", s.action(s.actions.Deposit, nil))
		r.Post("/wallet/withdraw", s.action(s.actions.Withdraw, nil))
	})

	return r
}

type actionFunc func(ctx context.Context, userID int64, form url.Values) Result

// pathParam copies a URL parameter into the action form
func pathParam(param, field string) func(r *http.Request, form url.Values) {
	return func(r *http.Request, form url.Values) {
		form.Set(field, chi.URLParam(r, param))
	}
}

func (s *server) action(fn actionFunc, fill func(r *http.Request, form url.Values)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respondJSON(w, http.StatusBadRequest, Result{OK: false, Message: "Malformed form body"})
			return
		}
		form := url.Values{}
		for key, values := range r.Form {
			form[key] = values
		}
		if fill != nil {
			fill(r, form)
		}

		result := fn(r.Context(), userFromContext(r.Context()), form)
		respondJSON(w, statusFor(result), result)
	}
}

func (s *server) listBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.bets.ListBets(r.Context(), userFromContext(r.Context()), listLimit(r))
	if err != nil {
		respondError(w, "list bets", err)
		return
	}

	views := make([]betView, 0, len(bets))
	for _, bet := range bets {
		views = append(views, newBetView(&bet.Bet, bet.Legs))
	}
	respondJSON(w, http.StatusOK, map[string]any{"bets": views})
}

func (s *server) pendingBet(w http.ResponseWriter, r *http.Request) {
	bet, err := s.bets.PendingBet(r.Context(), userFromContext(r.Context()))
	if err != nil {
		respondError(w, "pending bet", err)
		return
	}
	if bet == nil {
		respondError(w, "pending bet", service.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, newBetView(&bet.Bet, bet.Legs))
}

func (s *server) wallet(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	user, err := s.balances.Balance(r.Context(), userID)
	if err != nil {
		respondError(w, "wallet", err)
		return
	}
	history, err := s.balances.History(r.Context(), userID, listLimit(r))
	if err != nil {
		respondError(w, "wallet", err)
		return
	}
	respondJSON(w, http.StatusOK, newWalletView(user, history))
}

func (s *server) getFixture(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "fixture", err)
		return
	}
	details, err := s.fixtures.MatchDetails(r.Context(), id)
	if err != nil {
		respondError(w, "fixture", err)
		return
	}
	respondJSON(w, http.StatusOK, newMatchView(details))
}

func (s *server) getCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "competition", err)
		return
	}
	details, err := s.fixtures.CompetitionDetails(r.Context(), id)
	if err != nil {
		respondError(w, "competition", err)
		return
	}
	respondJSON(w, http.StatusOK, newCompetitionView(details))
}

func (s *server) getTeam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "team", err)
		return
	}
	team, err := s.fixtures.TeamDetails(r.Context(), id)
	if err != nil {
		respondError(w, "team", err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// requireUser rejects requests without a positive numeric user id header
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(UserIDHeader)), 10, 64)
		if err != nil || userID <= 0 {
			respondJSON(w, http.StatusUnauthorized, Result{OK: false, Message: "Missing or invalid " + UserIDHeader + " header"})
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) int64 {
	userID, _ := ctx.Value(userIDKey{}).(int64)
	return userID
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"requestID": chimiddleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

func listLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

// statusFor maps an action result to its HTTP status
func statusFor(result Result) int {
	if result.OK {
		return http.StatusOK
	}
	if result.err == nil {
		return http.StatusUnprocessableEntity
	}
	return statusForError(result.err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrBetNotPending):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrNoOpenLegs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidOutcome):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrStorageConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, action string, err error) {
	result := failure(action, 0, err)
	respondJSON(w, statusForError(err), result)
}
