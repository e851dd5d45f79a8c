package service

import (
	"context"
	"fmt"

	"betting/footballdata"
	"betting/models"
)

// headToHeadLimit is how many previous meetings a match page shows
const headToHeadLimit = 10

// MatchDetails is a stored fixture with the teams' previous meetings
type MatchDetails struct {
	Fixture    *models.Fixture
	HeadToHead *footballdata.HeadToHead
}

// CompetitionDetails is a stored competition with its fixtures, tables and scorers
type CompetitionDetails struct {
	Competition *models.Competition
	Fixtures    []*models.Fixture
	Standings   []footballdata.Standing
	Scorers     []footballdata.Scorer
}

type fixtureInfoService struct {
	uowFactory UnitOfWorkFactory
	provider   FixtureProvider
}

// NewFixtureInfoService creates a new read-only fixture info service
func NewFixtureInfoService(uowFactory UnitOfWorkFactory, provider FixtureProvider) FixtureInfoService {
	return &fixtureInfoService{
		uowFactory: uowFactory,
		provider:   provider,
	}
}

func (s *fixtureInfoService) MatchDetails(ctx context.Context, fixtureID int64) (*MatchDetails, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	fixture, err := uow.FixtureRepository().FindByID(ctx, fixtureID)
	if err != nil {
		return nil, storageError("get fixture", err)
	}
	if fixture == nil {
		return nil, fmt.Errorf("fixture %d: %w", fixtureID, ErrNotFound)
	}

	h2h, err := s.provider.HeadToHead(ctx, fixtureID, headToHeadLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	return &MatchDetails{Fixture: fixture, HeadToHead: h2h}, nil
}

func (s *fixtureInfoService) CompetitionDetails(ctx context.Context, competitionID int64) (*CompetitionDetails, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	competition, err := uow.CompetitionRepository().FindByID(ctx, competitionID)
	if err != nil {
		return nil, storageError("get competition", err)
	}
	if competition == nil {
		return nil, fmt.Errorf("competition %d: %w", competitionID, ErrNotFound)
	}

	fixtures, err := uow.FixtureRepository().ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, storageError("list fixtures", err)
	}

	standings, err := s.provider.Standings(ctx, competition.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	scorers, err := s.provider.TopScorers(ctx, competition.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	return &CompetitionDetails{
		Competition: competition,
		Fixtures:    fixtures,
		Standings:   standings,
		Scorers:     scorers,
	}, nil
}

func (s *fixtureInfoService) TeamDetails(ctx context.Context, teamID int64) (*footballdata.Team, error) {
	team, err := s.provider.Team(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return team, nil
}
