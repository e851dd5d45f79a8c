package api

import (
	"time"

	"betting/models"
	"betting/service"
)

type legView struct {
	ID        int64     `json:"id"`
	BetID     int64     `json:"bet_id"`
	FixtureID int64     `json:"fixture_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Selected  string    `json:"selected"`
	Odds      string    `json:"odds"`
	CreatedAt time.Time `json:"created_at"`
}

func newLegView(leg *models.BetLeg) legView {
	return legView{
		ID:        leg.ID,
		BetID:     leg.BetID,
		FixtureID: leg.FixtureID,
		HomeTeam:  leg.HomeTeam,
		AwayTeam:  leg.AwayTeam,
		Selected:  string(leg.Selected),
		Odds:      leg.Odds.StringFixed(2),
		CreatedAt: leg.CreatedAt,
	}
}

type betView struct {
	ID          int64     `json:"id"`
	Status      string    `json:"status"`
	Odds        string    `json:"odds"`
	MoneyPlaced *string   `json:"money_placed,omitempty"`
	WinAmount   *string   `json:"win_amount,omitempty"`
	UserWon     *bool     `json:"user_won,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Legs        []legView `json:"legs,omitempty"`
}

func newBetView(bet *models.Bet, legs []*models.BetLeg) betView {
	view := betView{
		ID:        bet.ID,
		Status:    string(bet.Status),
		Odds:      bet.Odds.StringFixed(2),
		UserWon:   bet.UserWon,
		CreatedAt: bet.CreatedAt,
	}
	if bet.MoneyPlaced.Valid {
		s := bet.MoneyPlaced.Decimal.StringFixed(2)
		view.MoneyPlaced = &s
	}
	if bet.WinAmount.Valid {
		s := bet.WinAmount.Decimal.StringFixed(2)
		view.WinAmount = &s
	}
	for _, leg := range legs {
		view.Legs = append(view.Legs, newLegView(leg))
	}
	return view
}

type transactionView struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type walletView struct {
	Balance      string            `json:"balance"`
	Transactions []transactionView `json:"transactions,omitempty"`
}

func newWalletView(user *models.User, history []*models.Transaction) walletView {
	view := walletView{Balance: user.Balance.StringFixed(2)}
	for _, tx := range history {
		view.Transactions = append(view.Transactions, transactionView{
			ID:        tx.ID,
			Kind:      string(tx.Kind),
			Amount:    tx.Amount.StringFixed(2),
			CreatedAt: tx.CreatedAt,
		})
	}
	return view
}

type oddsView struct {
	Home string `json:"home"`
	Draw string `json:"draw"`
	Away string `json:"away"`
}

type fixtureView struct {
	ID            int64     `json:"id"`
	CompetitionID int64     `json:"competition_id"`
	UTCDate       time.Time `json:"utc_date"`
	Status        string    `json:"status"`
	Stage         string    `json:"stage"`
	Group         *string   `json:"group,omitempty"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	HomeTeamID    *int64    `json:"home_team_id,omitempty"`
	AwayTeamID    *int64    `json:"away_team_id,omitempty"`
	FullTimeHome  *int      `json:"full_time_home,omitempty"`
	FullTimeAway  *int      `json:"full_time_away,omitempty"`
	Winner        *string   `json:"winner,omitempty"`
	Odds          oddsView  `json:"odds"`
}

func newFixtureView(f *models.Fixture) fixtureView {
	view := fixtureView{
		ID:            f.ID,
		CompetitionID: f.CompetitionID,
		UTCDate:       f.UTCDate,
		Status:        string(f.Status),
		Stage:         f.Stage,
		Group:         f.Group,
		HomeTeam:      f.HomeTeamName,
		AwayTeam:      f.AwayTeamName,
		HomeTeamID:    f.HomeTeamID,
		AwayTeamID:    f.AwayTeamID,
		FullTimeHome:  f.FullTimeHome,
		FullTimeAway:  f.FullTimeAway,
		Odds: oddsView{
			Home: f.Odds.Home.StringFixed(2),
			Draw: f.Odds.Draw.StringFixed(2),
			Away: f.Odds.Away.StringFixed(2),
		},
	}
	if f.Winner != nil {
		w := string(*f.Winner)
		view.Winner = &w
	}
	return view
}

type matchView struct {
	Fixture    fixtureView `json:"fixture"`
	HeadToHead any         `json:"head_to_head,omitempty"`
}

func newMatchView(details *service.MatchDetails) matchView {
	view := matchView{Fixture: newFixtureView(details.Fixture)}
	if details.HeadToHead != nil {
		view.HeadToHead = details.HeadToHead
	}
	return view
}

type competitionView struct {
	ID        int64         `json:"id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Emblem    *string       `json:"emblem,omitempty"`
	Fixtures  []fixtureView `json:"fixtures"`
	Standings any           `json:"standings,omitempty"`
	Scorers   any           `json:"scorers,omitempty"`
}

func newCompetitionView(details *service.CompetitionDetails) competitionView {
	view := competitionView{
		ID:        details.Competition.ID,
		Code:      details.Competition.Code,
		Name:      details.Competition.Name,
		Type:      details.Competition.Type,
		Emblem:    details.Competition.Emblem,
		Fixtures:  []fixtureView{},
		Standings: details.Standings,
		Scorers:   details.Scorers,
	}
	for _, f := range details.Fixtures {
		view.Fixtures = append(view.Fixtures, newFixtureView(f))
	}
	return view
}
