package service

import (
	"context"
	"testing"
	"time"

	"betting/events"
	"betting/footballdata"
	"betting/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func testMatch(id int64, status string, winner *string) footballdata.Match {
	return footballdata.Match{
		ID:       id,
		UTCDate:  time.Date(2024, 8, 17, 14, 0, 0, 0, time.UTC),
		Status:   status,
		Stage:    "REGULAR_SEASON",
		HomeTeam: footballdata.TeamRef{ID: ptr(int64(57)), Name: ptr("Arsenal FC"), ShortName: ptr("Arsenal"), TLA: ptr("ARS")},
		AwayTeam: footballdata.TeamRef{ID: ptr(int64(61)), Name: ptr("Chelsea FC"), ShortName: ptr("Chelsea"), TLA: ptr("CHE")},
		Score: footballdata.Score{
			Winner:   winner,
			Duration: "REGULAR",
		},
	}
}

// newTestSyncService builds a sync service whose odds are always 5 / 3.33 / 2
// and which records requested delays instead of sleeping
func newTestSyncService(env *mockEnv, provider FixtureProvider, cfg SyncConfig) (*syncService, *[]time.Duration) {
	src := &sequenceSource{}
	for range 30 {
		src.values = append(src.values, 0.2, 0.3, 0.5)
	}
	svc := NewSyncService(env.factory, provider, NewOddsGenerator(src), cfg).(*syncService)

	var delays []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return svc, &delays
}

func expectTeams(env *mockEnv, ctx context.Context, competitionID int64) {
	env.teams.On("Upsert", ctx, mock.MatchedBy(func(team *models.Team) bool {
		return team.ID == 57 || team.ID == 61
	})).Return(nil)
	env.teams.On("AddToCompetition", ctx, competitionID, mock.AnythingOfType("int64")).Return(nil)
}

func TestSyncService_SyncCompetitions(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()
	provider := new(MockFixtureProvider)

	svc, _ := newTestSyncService(env, provider, SyncConfig{})

	england := footballdata.Area{ID: 2072, Name: "England", Code: ptr("ENG")}
	provider.On("Competitions", ctx).Return([]footballdata.Competition{
		{ID: 2021, Area: england, Name: "Premier League", Code: "PL", Type: "LEAGUE"},
		{ID: 2016, Area: england, Name: "Championship", Code: "ELC", Type: "LEAGUE"},
	}, nil)
	env.competitions.On("UpsertArea", ctx, mock.MatchedBy(func(a *models.Area) bool {
		return a.ID == 2072 && a.Name == "England"
	})).Return(nil).Once()
	env.competitions.On("Upsert", ctx, mock.MatchedBy(func(c *models.Competition) bool {
		return c.AreaID != nil && *c.AreaID == 2072
	})).Return(nil).Twice()

	count, err := svc.SyncCompetitions(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	provider.AssertExpectations(t)
	env.assertExpectations(t)
}

func TestSyncService_SyncFixtures_NewFixtureGetsOdds(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()
	provider := new(MockFixtureProvider)

	svc, _ := newTestSyncService(env, provider, SyncConfig{CompetitionCodes: []string{"PL"}})

	env.competitions.On("List", ctx).Return([]*models.Competition{
		{ID: 2021, Code: "PL"},
		{ID: 2001, Code: "CL"},
	}, nil)
	provider.On("Matches", ctx, "PL").Return([]footballdata.Match{testMatch(1001, "TIMED", nil)}, nil)
	expectTeams(env, ctx, 2021)
	env.fixtures.On("FindByID", ctx, int64(1001)).Return(nil, nil)
	env.fixtures.On("Upsert", ctx, mock.MatchedBy(func(f *models.Fixture) bool {
		return f.ID == 1001 &&
			f.CompetitionID == 2021 &&
			f.Status == models.FixtureStatusTimed &&
			f.Winner == nil &&
			*f.HomeTeamID == 57 &&
			f.Odds.Home.String() == "5" &&
			f.Odds.Draw.String() == "3.33" &&
			f.Odds.Away.String() == "2"
	})).Return(nil)

	result, err := svc.SyncFixtures(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Competitions)
	assert.Equal(t, 1, result.Created)
	assert.NotEmpty(t, result.RunID)
	provider.AssertNotCalled(t, "Matches", mock.Anything, "CL")

	synced := env.events.OfType(events.EventTypeFixturesSynced)
	require.Len(t, synced, 1)
	assert.Equal(t, "PL", synced[0].(events.FixturesSyncedEvent).CompetitionCode)
	env.assertExpectations(t)
}

func TestSyncService_SyncFixtures_ExistingFixtureKeepsOdds(t *testing.T) {
	ctx := context.Background()

	existing := &models.Fixture{
		ID:     1001,
		Status: models.FixtureStatusInPlay,
		Odds:   models.Odds{Home: dec("1.75"), Draw: dec("3.60"), Away: dec("4.20")},
	}

	tests := []struct {
		name      string
		cfg       SyncConfig
		wantHome  string
		wantDraws string
	}{
		{name: "odds kept", cfg: SyncConfig{}, wantHome: "1.75", wantDraws: "3.6"},
		{name: "odds regenerated", cfg: SyncConfig{RegenerateOdds: true}, wantHome: "5", wantDraws: "3.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newMockEnv(ctx)
			env.expectCommit()
			provider := new(MockFixtureProvider)

			svc, _ := newTestSyncService(env, provider, tt.cfg)

			env.competitions.On("List", ctx).Return([]*models.Competition{{ID: 2021, Code: "PL"}}, nil)
			provider.On("Matches", ctx, "PL").Return([]footballdata.Match{testMatch(1001, "FINISHED", ptr("AWAY_TEAM"))}, nil)
			expectTeams(env, ctx, 2021)
			env.fixtures.On("FindByID", ctx, int64(1001)).Return(existing, nil)
			env.fixtures.On("Upsert", ctx, mock.MatchedBy(func(f *models.Fixture) bool {
				return f.Status == models.FixtureStatusFinished &&
					f.Winner != nil && *f.Winner == models.OutcomeAway &&
					f.Odds.Home.String() == tt.wantHome &&
					f.Odds.Draw.String() == tt.wantDraws
			})).Return(nil)

			result, err := svc.SyncFixtures(ctx)

			require.NoError(t, err)
			assert.Equal(t, 1, result.Updated)
			assert.Zero(t, result.Created)
			env.assertExpectations(t)
		})
	}
}

func TestSyncService_SyncFixtures_UndecidedTeamsAreSkipped(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()
	provider := new(MockFixtureProvider)

	svc, _ := newTestSyncService(env, provider, SyncConfig{})

	knockout := testMatch(2002, "SCHEDULED", nil)
	knockout.HomeTeam = footballdata.TeamRef{}
	knockout.AwayTeam = footballdata.TeamRef{}

	env.competitions.On("List", ctx).Return([]*models.Competition{{ID: 2001, Code: "CL"}}, nil)
	provider.On("Matches", ctx, "CL").Return([]footballdata.Match{knockout}, nil)
	env.fixtures.On("FindByID", ctx, int64(2002)).Return(nil, nil)
	env.fixtures.On("Upsert", ctx, mock.MatchedBy(func(f *models.Fixture) bool {
		return f.HomeTeamID == nil && f.AwayTeamID == nil
	})).Return(nil)

	_, err := svc.SyncFixtures(ctx)

	require.NoError(t, err)
	env.teams.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	env.assertExpectations(t)
}

func TestSyncService_SyncFixtures_DelaysBetweenCompetitions(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	env.expectCommit()
	provider := new(MockFixtureProvider)

	svc, delays := newTestSyncService(env, provider, SyncConfig{Delay: 10 * time.Second})

	env.competitions.On("List", ctx).Return([]*models.Competition{
		{ID: 2021, Code: "PL"},
		{ID: 2001, Code: "CL"},
		{ID: 2002, Code: "BL1"},
	}, nil)
	provider.On("Matches", ctx, mock.AnythingOfType("string")).Return([]footballdata.Match{}, nil)

	result, err := svc.SyncFixtures(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Competitions)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, *delays)
	env.assertExpectations(t)
}

func TestSyncService_Run_UpstreamFailure(t *testing.T) {
	ctx := context.Background()
	factory := new(MockUnitOfWorkFactory)
	provider := new(MockFixtureProvider)

	svc := NewSyncService(factory, provider, NewOddsGenerator(nil), SyncConfig{})

	provider.On("Competitions", ctx).Return(nil, &footballdata.StatusError{Endpoint: "competitions", StatusCode: 429})

	err := svc.Run(ctx)

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, footballdata.ErrUnavailable)
	factory.AssertNotCalled(t, "Create")
	provider.AssertExpectations(t)
}

func TestSyncService_SyncFixtures_MatchesFailureAborts(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	provider := new(MockFixtureProvider)

	svc, _ := newTestSyncService(env, provider, SyncConfig{})

	env.competitions.On("List", ctx).Return([]*models.Competition{{ID: 2021, Code: "PL"}, {ID: 2001, Code: "CL"}}, nil)
	provider.On("Matches", ctx, "PL").Return(nil, footballdata.ErrUnavailable)

	_, err := svc.SyncFixtures(ctx)

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	provider.AssertNotCalled(t, "Matches", mock.Anything, "CL")
	env.assertExpectations(t)
}
