package application

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
	"github.com/jderrod/Dota2AnalysisTool/internal/opendota"
)

type nopLogger struct{}

func (nopLogger) Error(format string, v ...interface{}) {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Debug(format string, v ...interface{}) {}

// fakeFetcher serves canned listing pages and match details, with
// optional transient failures injected before the first success.
type fakeFetcher struct {
	pages   [][]opendota.ProMatch
	details map[int64]*opendota.MatchDetails

	listingFailures int
	detailFailures  map[int64]int

	listingCursors []int64
	heroes         []opendota.RawHero
	teams          []opendota.RawTeam
	leagues        []opendota.RawLeague
}

func (f *fakeFetcher) GetProMatches(ctx context.Context, limit int, lessThanMatchID int64) ([]opendota.ProMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.listingCursors = append(f.listingCursors, lessThanMatchID)
	if f.listingFailures > 0 {
		f.listingFailures--
		return nil, &opendota.TransientError{Err: fmt.Errorf("listing unavailable")}
	}
	if lessThanMatchID == 0 {
		if len(f.pages) == 0 {
			return nil, nil
		}
		return f.pages[0], nil
	}
	for i, page := range f.pages {
		if len(page) > 0 && page[len(page)-1].MatchID == lessThanMatchID {
			if i+1 < len(f.pages) {
				return f.pages[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (f *fakeFetcher) GetMatchDetails(ctx context.Context, matchID int64) (*opendota.MatchDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.detailFailures[matchID] > 0 {
		f.detailFailures[matchID]--
		return nil, &opendota.TransientError{Err: fmt.Errorf("details unavailable")}
	}
	d, ok := f.details[matchID]
	if !ok {
		return nil, &opendota.APIError{StatusCode: 404, Endpoint: fmt.Sprintf("matches/%d", matchID)}
	}
	return d, nil
}

func (f *fakeFetcher) GetHeroes(ctx context.Context) ([]opendota.RawHero, error) {
	return f.heroes, nil
}

func (f *fakeFetcher) GetProTeams(ctx context.Context) ([]opendota.RawTeam, error) {
	return f.teams, nil
}

func (f *fakeFetcher) GetLeagues(ctx context.Context) ([]opendota.RawLeague, error) {
	return f.leagues, nil
}

// memMatchStore is an in-memory stand-in for the postgres match
// repository, keyed by match id like the real table.
type memMatchStore struct {
	mu      sync.Mutex
	matches map[int64]models.Match
	upserts int
	failErr error
}

func newMemMatchStore() *memMatchStore {
	return &memMatchStore{matches: make(map[int64]models.Match)}
}

func (s *memMatchStore) UpsertMatch(m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.upserts++
	s.matches[m.MatchID] = *m
	return nil
}

func (s *memMatchStore) GetMatches(filter models.MatchFilter) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Match
	for _, m := range s.matches {
		if !filter.From.IsZero() && m.StartTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && m.StartTime.After(filter.To) {
			continue
		}
		if filter.TeamID != 0 && m.RadiantTeamID != filter.TeamID && m.DireTeamID != filter.TeamID {
			continue
		}
		if filter.LeagueID != 0 && m.LeagueID != filter.LeagueID {
			continue
		}
		if filter.Patch != "" && m.Patch != filter.Patch {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].MatchID > out[j].MatchID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memMatchStore) GetMatchByID(matchID int64) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (s *memMatchStore) CountMatches() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches), nil
}

type memCatalog struct {
	mu      sync.Mutex
	teams   map[int64]models.Team
	heroes  map[int]models.Hero
	leagues map[int64]models.League
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		teams:   make(map[int64]models.Team),
		heroes:  make(map[int]models.Hero),
		leagues: make(map[int64]models.League),
	}
}

func (c *memCatalog) EnsureTeam(team models.Team) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.teams[team.TeamID]; !ok {
		c.teams[team.TeamID] = team
	}
	return nil
}

func (c *memCatalog) EnsureLeague(league models.League) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.leagues[league.LeagueID]; !ok {
		c.leagues[league.LeagueID] = league
	}
	return nil
}

func (c *memCatalog) UpsertTeams(teams []models.Team) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range teams {
		c.teams[t.TeamID] = t
	}
	return nil
}

func (c *memCatalog) UpsertHeroes(heroes []models.Hero) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range heroes {
		c.heroes[h.HeroID] = h
	}
	return nil
}

func (c *memCatalog) UpsertLeagues(leagues []models.League) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range leagues {
		c.leagues[l.LeagueID] = l
	}
	return nil
}

func (c *memCatalog) GetAllTeams() ([]models.Team, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Team, 0, len(c.teams))
	for _, t := range c.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (c *memCatalog) GetAllHeroes() ([]models.Hero, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Hero, 0, len(c.heroes))
	for _, h := range c.heroes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HeroID < out[j].HeroID })
	return out, nil
}

func (c *memCatalog) GetAllLeagues() ([]models.League, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.League, 0, len(c.leagues))
	for _, l := range c.leagues {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeagueID < out[j].LeagueID })
	return out, nil
}

type memSettings struct {
	mu          sync.Mutex
	checkpoint  int64
	lastRefresh time.Time
}

func (s *memSettings) SetCheckpoint(lastMatchID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint = lastMatchID
	return nil
}

func (s *memSettings) GetCheckpoint() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoint, nil
}

func (s *memSettings) SetLastRefresh(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = t
	return nil
}

func (s *memSettings) GetLastRefresh() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh, nil
}
