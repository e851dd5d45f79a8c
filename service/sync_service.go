package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"betting/events"
	"betting/footballdata"
	"betting/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SyncConfig controls a fixture sync cycle
type SyncConfig struct {
	// Delay is the pause between competitions, to respect the provider's rate limit
	Delay time.Duration

	// CompetitionCodes restricts fixture sync to these codes; empty means all
	CompetitionCodes []string

	// RegenerateOdds draws fresh odds for fixtures that already have them
	RegenerateOdds bool
}

// SyncResult counts what one fixture sync did
type SyncResult struct {
	RunID        string
	Competitions int
	Created      int
	Updated      int
}

type syncService struct {
	uowFactory UnitOfWorkFactory
	provider   FixtureProvider
	odds       *OddsGenerator
	cfg        SyncConfig

	// sleep waits for d or until ctx is done
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSyncService creates a new fixture sync service
func NewSyncService(uowFactory UnitOfWorkFactory, provider FixtureProvider, odds *OddsGenerator, cfg SyncConfig) SyncService {
	return &syncService{
		uowFactory: uowFactory,
		provider:   provider,
		odds:       odds,
		cfg:        cfg,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run syncs competitions and then their fixtures
func (s *syncService) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := log.WithField("runID", runID)
	started := time.Now()

	competitions, err := s.SyncCompetitions(ctx)
	if err != nil {
		logger.WithError(err).Error("Competition sync failed")
		return err
	}

	result, err := s.syncFixtures(ctx, runID)
	if err != nil {
		logger.WithError(err).Error("Fixture sync failed")
		return err
	}

	logger.WithFields(log.Fields{
		"competitions":        competitions,
		"fixtureCompetitions": result.Competitions,
		"created":             result.Created,
		"updated":             result.Updated,
		"duration":            time.Since(started).String(),
	}).Info("Fixture sync completed")

	return nil
}

// SyncCompetitions fetches the provider's competitions and upserts them with their areas
func (s *syncService) SyncCompetitions(ctx context.Context) (int, error) {
	competitions, err := s.provider.Competitions(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, storageError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	seenAreas := make(map[int64]bool)
	for _, c := range competitions {
		area := toArea(c.Area)
		if area != nil && !seenAreas[area.ID] {
			if err := uow.CompetitionRepository().UpsertArea(ctx, area); err != nil {
				return 0, storageError("upsert area", err)
			}
			seenAreas[area.ID] = true
		}
		if err := uow.CompetitionRepository().Upsert(ctx, toCompetition(c)); err != nil {
			return 0, storageError("upsert competition", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, storageError("commit transaction", err)
	}

	log.WithField("competitions", len(competitions)).Debug("Competitions synced")
	return len(competitions), nil
}

// SyncFixtures refreshes the fixtures of every tracked competition
func (s *syncService) SyncFixtures(ctx context.Context) (*SyncResult, error) {
	return s.syncFixtures(ctx, uuid.NewString())
}

func (s *syncService) syncFixtures(ctx context.Context, runID string) (*SyncResult, error) {
	competitions, err := s.trackedCompetitions(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{RunID: runID}
	for i, competition := range competitions {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.Delay); err != nil {
				return result, err
			}
		}

		matches, err := s.provider.Matches(ctx, competition.Code)
		if err != nil {
			return result, fmt.Errorf("%w: competition %s: %w", ErrUpstreamUnavailable, competition.Code, err)
		}

		created, updated, err := s.storeMatches(ctx, runID, competition, matches)
		if err != nil {
			return result, err
		}

		result.Competitions++
		result.Created += created
		result.Updated += updated

		log.WithFields(log.Fields{
			"runID":       runID,
			"competition": competition.Code,
			"created":     created,
			"updated":     updated,
		}).Debug("Competition fixtures synced")
	}

	return result, nil
}

// trackedCompetitions returns stored competitions, filtered by the configured codes
func (s *syncService) trackedCompetitions(ctx context.Context) ([]*models.Competition, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	all, err := uow.CompetitionRepository().List(ctx)
	if err != nil {
		return nil, storageError("list competitions", err)
	}

	tracked := make([]*models.Competition, 0, len(all))
	for _, c := range all {
		if c.Code == "" {
			continue
		}
		if len(s.cfg.CompetitionCodes) > 0 && !slices.Contains(s.cfg.CompetitionCodes, c.Code) {
			continue
		}
		tracked = append(tracked, c)
	}
	return tracked, nil
}

// storeMatches upserts one competition's teams and fixtures in a single transaction
func (s *syncService) storeMatches(ctx context.Context, runID string, competition *models.Competition, matches []footballdata.Match) (created, updated int, err error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, storageError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	seenTeams := make(map[int64]bool)
	for _, match := range matches {
		for _, ref := range []footballdata.TeamRef{match.HomeTeam, match.AwayTeam} {
			team := toTeam(ref)
			if team == nil || seenTeams[team.ID] {
				continue
			}
			if err := uow.TeamRepository().Upsert(ctx, team); err != nil {
				return 0, 0, storageError("upsert team", err)
			}
			if err := uow.TeamRepository().AddToCompetition(ctx, competition.ID, team.ID); err != nil {
				return 0, 0, storageError("link team to competition", err)
			}
			seenTeams[team.ID] = true
		}

		fixture := toFixture(competition.ID, match)

		existing, err := uow.FixtureRepository().FindByID(ctx, fixture.ID)
		if err != nil {
			return 0, 0, storageError("get fixture", err)
		}
		if existing == nil || existing.Odds.IsZero() || s.cfg.RegenerateOdds {
			fixture.Odds = s.odds.Generate()
		} else {
			fixture.Odds = existing.Odds
		}

		if err := uow.FixtureRepository().Upsert(ctx, fixture); err != nil {
			return 0, 0, storageError("upsert fixture", err)
		}
		if existing == nil {
			created++
		} else {
			updated++
		}
	}

	uow.EventBus().Publish(events.FixturesSyncedEvent{
		RunID:           runID,
		CompetitionCode: competition.Code,
		Created:         created,
		Updated:         updated,
	})

	if err := uow.Commit(); err != nil {
		return 0, 0, storageError("commit transaction", err)
	}
	return created, updated, nil
}

func toArea(a footballdata.Area) *models.Area {
	if a.ID == 0 {
		return nil
	}
	return &models.Area{
		ID:   a.ID,
		Name: a.Name,
		Code: a.Code,
		Flag: a.Flag,
	}
}

func toCompetition(c footballdata.Competition) *models.Competition {
	competition := &models.Competition{
		ID:     c.ID,
		Name:   c.Name,
		Code:   c.Code,
		Type:   c.Type,
		Emblem: c.Emblem,
	}
	if c.Area.ID != 0 {
		areaID := c.Area.ID
		competition.AreaID = &areaID
	}
	return competition
}

// toTeam returns nil for undecided knockout slots
func toTeam(ref footballdata.TeamRef) *models.Team {
	if ref.ID == nil {
		return nil
	}
	team := &models.Team{
		ID:    *ref.ID,
		Crest: ref.Crest,
	}
	if ref.Name != nil {
		team.Name = *ref.Name
	}
	if ref.ShortName != nil {
		team.ShortName = *ref.ShortName
	}
	if ref.TLA != nil {
		team.TLA = *ref.TLA
	}
	return team
}

func toFixture(competitionID int64, m footballdata.Match) *models.Fixture {
	fixture := &models.Fixture{
		ID:            m.ID,
		CompetitionID: competitionID,
		UTCDate:       m.UTCDate,
		Status:        models.FixtureStatus(m.Status),
		Stage:         m.Stage,
		Group:         m.Group,
		Duration:      m.Score.Duration,
		FullTimeHome:  m.Score.FullTime.Home,
		FullTimeAway:  m.Score.FullTime.Away,
		HalfTimeHome:  m.Score.HalfTime.Home,
		HalfTimeAway:  m.Score.HalfTime.Away,
		HomeTeamID:    m.HomeTeam.ID,
		AwayTeamID:    m.AwayTeam.ID,
	}
	if fixture.Duration == "" {
		fixture.Duration = "REGULAR"
	}
	if m.Score.Winner != nil {
		if winner, err := models.ParseOutcome(*m.Score.Winner); err == nil {
			fixture.Winner = &winner
		}
	}
	return fixture
}
