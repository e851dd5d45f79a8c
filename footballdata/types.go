package footballdata

import "time"

// Area is a country or region
type Area struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Code *string `json:"code"`
	Flag *string `json:"flag"`
}

// Competition is a league or cup
type Competition struct {
	ID     int64   `json:"id"`
	Area   Area    `json:"area"`
	Name   string  `json:"name"`
	Code   string  `json:"code"`
	Type   string  `json:"type"`
	Emblem *string `json:"emblem"`
}

// TeamRef is the team summary embedded in matches and tables.
// ID is null for undecided knockout slots.
type TeamRef struct {
	ID        *int64  `json:"id"`
	Name      *string `json:"name"`
	ShortName *string `json:"shortName"`
	TLA       *string `json:"tla"`
	Crest     *string `json:"crest"`
}

// Goals is a home/away score pair
type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Score is the result block of a match
type Score struct {
	Winner   *string `json:"winner"`
	Duration string  `json:"duration"`
	FullTime Goals   `json:"fullTime"`
	HalfTime Goals   `json:"halfTime"`
}

// Match is a fixture as reported by the provider
type Match struct {
	ID          int64       `json:"id"`
	Competition Competition `json:"competition"`
	UTCDate     time.Time   `json:"utcDate"`
	Status      string      `json:"status"`
	Stage       string      `json:"stage"`
	Group       *string     `json:"group"`
	HomeTeam    TeamRef     `json:"homeTeam"`
	AwayTeam    TeamRef     `json:"awayTeam"`
	Score       Score       `json:"score"`
}

// TableRow is one position in a standings table
type TableRow struct {
	Position       int     `json:"position"`
	Team           TeamRef `json:"team"`
	PlayedGames    int     `json:"playedGames"`
	Form           *string `json:"form"`
	Won            int     `json:"won"`
	Draw           int     `json:"draw"`
	Lost           int     `json:"lost"`
	Points         int     `json:"points"`
	GoalsFor       int     `json:"goalsFor"`
	GoalsAgainst   int     `json:"goalsAgainst"`
	GoalDifference int     `json:"goalDifference"`
}

// Standing is one table (total, home, away, or a group) of a competition
type Standing struct {
	Stage string     `json:"stage"`
	Type  string     `json:"type"`
	Group *string    `json:"group"`
	Table []TableRow `json:"table"`
}

// Person is a player or coach
type Person struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Position    *string `json:"position"`
	DateOfBirth *string `json:"dateOfBirth"`
	Nationality *string `json:"nationality"`
}

// Scorer is a top-scorers entry
type Scorer struct {
	Player    Person  `json:"player"`
	Team      TeamRef `json:"team"`
	Goals     int     `json:"goals"`
	Assists   *int    `json:"assists"`
	Penalties *int    `json:"penalties"`
}

// HeadToHeadTeam aggregates one side's record in previous meetings
type HeadToHeadTeam struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Draws  int    `json:"draws"`
	Losses int    `json:"losses"`
}

// HeadToHead summarizes previous meetings of a match's teams
type HeadToHead struct {
	Aggregates struct {
		NumberOfMatches int            `json:"numberOfMatches"`
		TotalGoals      int            `json:"totalGoals"`
		HomeTeam        HeadToHeadTeam `json:"homeTeam"`
		AwayTeam        HeadToHeadTeam `json:"awayTeam"`
	} `json:"aggregates"`
	Matches []Match `json:"matches"`
}

// Team is the full team resource
type Team struct {
	ID        int64    `json:"id"`
	Area      Area     `json:"area"`
	Name      string   `json:"name"`
	ShortName string   `json:"shortName"`
	TLA       string   `json:"tla"`
	Crest     *string  `json:"crest"`
	Address   *string  `json:"address"`
	Website   *string  `json:"website"`
	Founded   *int     `json:"founded"`
	Venue     *string  `json:"venue"`
	Coach     *Person  `json:"coach"`
	Squad     []Person `json:"squad"`
}

type competitionsResponse struct {
	Count        int           `json:"count"`
	Competitions []Competition `json:"competitions"`
}

type matchesResponse struct {
	Matches []Match `json:"matches"`
}

type standingsResponse struct {
	Standings []Standing `json:"standings"`
}

type scorersResponse struct {
	Scorers []Scorer `json:"scorers"`
}
