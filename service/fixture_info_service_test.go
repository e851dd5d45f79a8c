package service

import (
	"context"
	"testing"

	"betting/footballdata"
	"betting/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureInfoService_MatchDetails(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	provider := new(MockFixtureProvider)

	service := NewFixtureInfoService(env.factory, provider)

	h2h := &footballdata.HeadToHead{}
	h2h.Aggregates.NumberOfMatches = 4

	env.fixtures.On("FindByID", ctx, int64(1001)).Return(testFixture(1001), nil)
	provider.On("HeadToHead", ctx, int64(1001), headToHeadLimit).Return(h2h, nil)

	details, err := service.MatchDetails(ctx, 1001)

	require.NoError(t, err)
	assert.Equal(t, "Arsenal FC", details.Fixture.HomeTeamName)
	assert.Equal(t, 4, details.HeadToHead.Aggregates.NumberOfMatches)
	env.assertExpectations(t)
	provider.AssertExpectations(t)
}

func TestFixtureInfoService_MatchDetails_UnknownFixture(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	provider := new(MockFixtureProvider)

	service := NewFixtureInfoService(env.factory, provider)

	env.fixtures.On("FindByID", ctx, int64(404)).Return(nil, nil)

	_, err := service.MatchDetails(ctx, 404)

	assert.ErrorIs(t, err, ErrNotFound)
	provider.AssertNotCalled(t, "HeadToHead")
	env.assertExpectations(t)
}

func TestFixtureInfoService_CompetitionDetails(t *testing.T) {
	ctx := context.Background()
	env := newMockEnv(ctx)
	provider := new(MockFixtureProvider)

	service := NewFixtureInfoService(env.factory, provider)

	env.competitions.On("FindByID", ctx, int64(2021)).Return(&models.Competition{ID: 2021, Code: "PL", Name: "Premier League"}, nil)
	env.fixtures.On("ListByCompetition", ctx, int64(2021)).Return([]*models.Fixture{testFixture(1001)}, nil)
	provider.On("Standings", ctx, "PL").Return([]footballdata.Standing{{Type: "TOTAL"}}, nil)
	provider.On("TopScorers", ctx, "PL").Return([]footballdata.Scorer{{Goals: 12}}, nil)

	details, err := service.CompetitionDetails(ctx, 2021)

	require.NoError(t, err)
	assert.Len(t, details.Fixtures, 1)
	assert.Equal(t, "TOTAL", details.Standings[0].Type)
	assert.Equal(t, 12, details.Scorers[0].Goals)
	env.assertExpectations(t)
	provider.AssertExpectations(t)
}

func TestFixtureInfoService_TeamDetails_UpstreamFailure(t *testing.T) {
	ctx := context.Background()
	provider := new(MockFixtureProvider)

	service := NewFixtureInfoService(new(MockUnitOfWorkFactory), provider)

	provider.On("Team", ctx, int64(57)).Return(nil, &footballdata.StatusError{Endpoint: "teams/57", StatusCode: 503})

	_, err := service.TeamDetails(ctx, 57)

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	provider.AssertExpectations(t)
}
