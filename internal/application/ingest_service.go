package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
	"github.com/jderrod/Dota2AnalysisTool/internal/opendota"
	"github.com/jderrod/Dota2AnalysisTool/internal/repository"
)

// RefreshQuery bounds one ingestion pass over the pro match listing.
type RefreshQuery struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	MinLeagueTier int       `json:"min_league_tier"`
	MaxMatches    int       `json:"max_matches"`
	Resume        bool      `json:"resume"`
}

type RefreshReport struct {
	Pages       int   `json:"pages"`
	Fetched     int   `json:"fetched"`
	Upserted    int   `json:"upserted"`
	Skipped     int   `json:"skipped"`
	Failed      int   `json:"failed"`
	LastMatchID int64 `json:"last_match_id"`
}

type IngestServiceImpl struct {
	matches  repository.Match
	catalog  repository.Catalog
	settings repository.Settings
	fetcher  Fetcher
	logger   Logger

	// one ingestion pass at a time; the scheduler and the refresh
	// endpoint share this service
	mu sync.Mutex
}

func NewIngestServiceImpl(matches repository.Match, catalog repository.Catalog, settings repository.Settings, fetcher Fetcher, logger Logger) *IngestServiceImpl {
	return &IngestServiceImpl{
		matches:  matches,
		catalog:  catalog,
		settings: settings,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// RefreshMatches pages through the pro match listing newest-first,
// normalizes every match inside the query bounds and upserts it.
// Malformed payloads are skipped; fetch and store failures abort the
// pass with the offending context attached.
func (s *IngestServiceImpl) RefreshMatches(ctx context.Context, q RefreshQuery) (*RefreshReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &RefreshReport{}

	var cursor int64
	if q.Resume {
		cp, err := s.settings.GetCheckpoint()
		if err != nil {
			return report, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		cursor = cp
	}

	s.logger.Info("starting match refresh (from=%s to=%s cursor=%d)",
		formatBound(q.From), formatBound(q.To), cursor)

	for page := 0; page < maxListingPages; page++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		listing, err := s.fetchListing(ctx, cursor)
		if err != nil {
			return report, fmt.Errorf("failed to fetch listing page (cursor %d): %w", cursor, err)
		}
		if len(listing) == 0 {
			break
		}
		report.Pages++

		done, err := s.ingestPage(ctx, q, listing, report)
		if err != nil {
			return report, err
		}

		cursor = listing[len(listing)-1].MatchID
		report.LastMatchID = cursor
		if err := s.settings.SetCheckpoint(cursor); err != nil {
			return report, fmt.Errorf("failed to persist checkpoint: %w", err)
		}

		if done {
			break
		}
		if len(listing) < listingPageSize {
			break
		}
	}

	if err := s.settings.SetLastRefresh(time.Now()); err != nil {
		return report, fmt.Errorf("failed to record refresh time: %w", err)
	}

	s.logger.Info("match refresh finished: %d pages, %d listed, %d upserted, %d skipped, %d failed",
		report.Pages, report.Fetched, report.Upserted, report.Skipped, report.Failed)
	return report, nil
}

// ingestPage processes one listing page. It reports done=true once the
// listing has moved past the lower date bound or the match cap is hit.
func (s *IngestServiceImpl) ingestPage(ctx context.Context, q RefreshQuery, listing []opendota.ProMatch, report *RefreshReport) (bool, error) {
	for _, pm := range listing {
		if err := ctx.Err(); err != nil {
			return true, err
		}

		start := time.Unix(pm.StartTime, 0).UTC()
		if !q.From.IsZero() && start.Before(q.From) {
			// listing is newest-first, everything after this is older
			return true, nil
		}
		if !q.To.IsZero() && start.After(q.To) {
			continue
		}
		if q.MinLeagueTier > 0 && pm.LeagueTier < q.MinLeagueTier {
			continue
		}
		report.Fetched++

		if err := s.ingestMatch(ctx, pm, report); err != nil {
			return true, err
		}

		if q.MaxMatches > 0 && report.Upserted >= q.MaxMatches {
			return true, nil
		}
	}
	return false, nil
}

func (s *IngestServiceImpl) ingestMatch(ctx context.Context, pm opendota.ProMatch, report *RefreshReport) error {
	var details *opendota.MatchDetails
	err := s.withRetry(ctx, fmt.Sprintf("match %d details", pm.MatchID), func() error {
		var err error
		details, err = s.fetcher.GetMatchDetails(ctx, pm.MatchID)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// a single unavailable match must not sink the whole pass
		s.logger.Error("failed to fetch details for match %d: %s", pm.MatchID, err)
		report.Failed++
		return nil
	}

	match, err := opendota.NormalizeMatch(details)
	if err != nil {
		var malformed *opendota.MalformedMatchError
		if errors.As(err, &malformed) {
			s.logger.Warn("skipping malformed match %d: %s", pm.MatchID, err)
			report.Skipped++
			return nil
		}
		return fmt.Errorf("failed to normalize match %d: %w", pm.MatchID, err)
	}

	if err := s.ensureReferences(pm, match); err != nil {
		return err
	}
	if err := s.matches.UpsertMatch(match); err != nil {
		return fmt.Errorf("failed to store match %d: %w", match.MatchID, err)
	}
	report.Upserted++
	return nil
}

// ensureReferences creates league and team rows on first reference,
// using the names the listing carries.
func (s *IngestServiceImpl) ensureReferences(pm opendota.ProMatch, match *models.Match) error {
	if match.LeagueID > 0 {
		league := models.League{LeagueID: match.LeagueID, Name: pm.LeagueName, Tier: pm.LeagueTier}
		if err := s.catalog.EnsureLeague(league); err != nil {
			return fmt.Errorf("failed to ensure league %d: %w", match.LeagueID, err)
		}
	}
	if match.RadiantTeamID > 0 {
		if err := s.catalog.EnsureTeam(models.Team{TeamID: match.RadiantTeamID, Name: pm.RadiantName}); err != nil {
			return fmt.Errorf("failed to ensure radiant team %d: %w", match.RadiantTeamID, err)
		}
	}
	if match.DireTeamID > 0 {
		if err := s.catalog.EnsureTeam(models.Team{TeamID: match.DireTeamID, Name: pm.DireName}); err != nil {
			return fmt.Errorf("failed to ensure dire team %d: %w", match.DireTeamID, err)
		}
	}
	return nil
}

// SyncCatalogs refreshes the hero, team and league reference tables.
func (s *IngestServiceImpl) SyncCatalogs(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var heroes []opendota.RawHero
	err := s.withRetry(ctx, "heroes", func() error {
		var err error
		heroes, err = s.fetcher.GetHeroes(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch heroes: %w", err)
	}
	if err := s.catalog.UpsertHeroes(opendota.NormalizeHeroes(heroes)); err != nil {
		return fmt.Errorf("failed to store heroes: %w", err)
	}

	var teams []opendota.RawTeam
	err = s.withRetry(ctx, "teams", func() error {
		var err error
		teams, err = s.fetcher.GetProTeams(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch teams: %w", err)
	}
	if err := s.catalog.UpsertTeams(opendota.NormalizeTeams(teams)); err != nil {
		return fmt.Errorf("failed to store teams: %w", err)
	}

	var leagues []opendota.RawLeague
	err = s.withRetry(ctx, "leagues", func() error {
		var err error
		leagues, err = s.fetcher.GetLeagues(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch leagues: %w", err)
	}
	if err := s.catalog.UpsertLeagues(opendota.NormalizeLeagues(leagues)); err != nil {
		return fmt.Errorf("failed to store leagues: %w", err)
	}

	s.logger.Info("catalog sync finished: %d heroes, %d teams, %d leagues",
		len(heroes), len(teams), len(leagues))
	return nil
}

func (s *IngestServiceImpl) Status() (*RefreshStatus, error) {
	last, err := s.settings.GetLastRefresh()
	if err != nil {
		return nil, err
	}
	checkpoint, err := s.settings.GetCheckpoint()
	if err != nil {
		return nil, err
	}
	count, err := s.matches.CountMatches()
	if err != nil {
		return nil, err
	}
	return &RefreshStatus{
		LastRefreshAt: last,
		Checkpoint:    checkpoint,
		StoredMatches: count,
	}, nil
}

func (s *IngestServiceImpl) fetchListing(ctx context.Context, cursor int64) ([]opendota.ProMatch, error) {
	var listing []opendota.ProMatch
	err := s.withRetry(ctx, "pro match listing", func() error {
		var err error
		listing, err = s.fetcher.GetProMatches(ctx, listingPageSize, cursor)
		return err
	})
	return listing, err
}

// withRetry runs fn, retrying transient upstream failures with doubling
// backoff. Non-transient errors and context cancellation fail fast.
func (s *IngestServiceImpl) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := retryBackoffBase
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !opendota.IsTransient(err) || attempt >= maxFetchAttempts {
			return err
		}
		s.logger.Warn("transient failure fetching %s (attempt %d/%d), retrying in %s: %s",
			op, attempt, maxFetchAttempts, backoff, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
