package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FixtureStatus is the provider-defined lifecycle state of a match
type FixtureStatus string

const (
	FixtureStatusScheduled FixtureStatus = "SCHEDULED"
	FixtureStatusTimed     FixtureStatus = "TIMED"
	FixtureStatusInPlay    FixtureStatus = "IN_PLAY"
	FixtureStatusPaused    FixtureStatus = "PAUSED"
	FixtureStatusFinished  FixtureStatus = "FINISHED"
	FixtureStatusPostponed FixtureStatus = "POSTPONED"
	FixtureStatusSuspended FixtureStatus = "SUSPENDED"
	FixtureStatusCancelled FixtureStatus = "CANCELLED"
	FixtureStatusAwarded   FixtureStatus = "AWARDED"
)

// Outcome is a three-way match result, spelled the way the provider reports winners
type Outcome string

const (
	OutcomeHome Outcome = "HOME_TEAM"
	OutcomeDraw Outcome = "DRAW"
	OutcomeAway Outcome = "AWAY_TEAM"
)

// ParseOutcome accepts the provider spelling as well as the short HOME/DRAW/AWAY form
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HOME_TEAM", "HOME", "1":
		return OutcomeHome, nil
	case "DRAW", "X":
		return OutcomeDraw, nil
	case "AWAY_TEAM", "AWAY", "2":
		return OutcomeAway, nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// Odds is a home/draw/away decimal odds triple
type Odds struct {
	Home decimal.Decimal
	Draw decimal.Decimal
	Away decimal.Decimal
}

// For returns the odds quoted for outcome
func (o Odds) For(outcome Outcome) (decimal.Decimal, bool) {
	switch outcome {
	case OutcomeHome:
		return o.Home, true
	case OutcomeDraw:
		return o.Draw, true
	case OutcomeAway:
		return o.Away, true
	}
	return decimal.Zero, false
}

// IsZero reports whether no odds were assigned
func (o Odds) IsZero() bool {
	return o.Home.IsZero() && o.Draw.IsZero() && o.Away.IsZero()
}

// Fixture is a single match as last synced from the provider
type Fixture struct {
	ID            int64         `db:"id"`
	CompetitionID int64         `db:"competition_id"`
	UTCDate       time.Time     `db:"utc_date"`
	Status        FixtureStatus `db:"status"`
	Stage         string        `db:"stage"`
	Group         *string       `db:"group_name"`
	Winner        *Outcome      `db:"winner"`
	Duration      string        `db:"duration"`
	FullTimeHome  *int          `db:"full_time_home"`
	FullTimeAway  *int          `db:"full_time_away"`
	HalfTimeHome  *int          `db:"half_time_home"`
	HalfTimeAway  *int          `db:"half_time_away"`
	HomeTeamID    *int64        `db:"home_team_id"`
	AwayTeamID    *int64        `db:"away_team_id"`
	Odds          Odds          `db:"-"`
	UpdatedAt     time.Time     `db:"updated_at"`

	// Joined from teams on read
	HomeTeamName string `db:"-"`
	AwayTeamName string `db:"-"`
}

// IsFinished reports whether the fixture has a final result
func (f *Fixture) IsFinished() bool {
	return f.Status == FixtureStatusFinished
}

// Competition is a league or cup tracked by the provider
type Competition struct {
	ID     int64   `db:"id"`
	AreaID *int64  `db:"area_id"`
	Name   string  `db:"name"`
	Code   string  `db:"code"`
	Type   string  `db:"type"`
	Emblem *string `db:"emblem"`
}

// Area is the country or region a competition belongs to
type Area struct {
	ID   int64   `db:"id"`
	Name string  `db:"name"`
	Code *string `db:"code"`
	Flag *string `db:"flag"`
}

// Team is a club or national side
type Team struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	ShortName string  `db:"short_name"`
	TLA       string  `db:"tla"`
	Crest     *string `db:"crest"`
}
