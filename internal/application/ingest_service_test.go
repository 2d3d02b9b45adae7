package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jderrod/Dota2AnalysisTool/internal/opendota"
)

var baseTime = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func listedMatch(id int64, start time.Time) opendota.ProMatch {
	return opendota.ProMatch{
		MatchID:       id,
		StartTime:     start.Unix(),
		Duration:      2100,
		RadiantTeamID: 100,
		RadiantName:   "Radiant Org",
		DireTeamID:    200,
		DireName:      "Dire Org",
		LeagueID:      10,
		LeagueName:    "Test League",
		LeagueTier:    2,
		RadiantWin:    true,
	}
}

func matchDetails(id int64, start time.Time, radiantWin bool) *opendota.MatchDetails {
	startUnix := start.Unix()
	duration := 2100
	patch := 54
	return &opendota.MatchDetails{
		MatchID:       id,
		StartTime:     &startUnix,
		Duration:      &duration,
		Patch:         &patch,
		LeagueID:      10,
		RadiantTeamID: 100,
		DireTeamID:    200,
		RadiantScore:  25,
		DireScore:     19,
		RadiantWin:    &radiantWin,
		PicksBans: []opendota.PickBan{
			{IsPick: true, HeroID: 1, Team: 0, Order: 0},
			{IsPick: true, HeroID: 2, Team: 1, Order: 1},
		},
	}
}

func newIngestFixture(fetcher *fakeFetcher) (*IngestServiceImpl, *memMatchStore, *memCatalog, *memSettings) {
	store := newMemMatchStore()
	catalog := newMemCatalog()
	settings := &memSettings{}
	svc := NewIngestServiceImpl(store, catalog, settings, fetcher, nopLogger{})
	return svc, store, catalog, settings
}

func weekQuery() RefreshQuery {
	return RefreshQuery{From: baseTime.AddDate(0, 0, -7)}
}

func TestRefreshMatches_IngestsListing(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{
			listedMatch(103, baseTime),
			listedMatch(102, baseTime.Add(-time.Hour)),
			listedMatch(101, baseTime.Add(-2*time.Hour)),
		}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime.Add(-2*time.Hour), true),
			102: matchDetails(102, baseTime.Add(-time.Hour), false),
			103: matchDetails(103, baseTime, true),
		},
	}
	svc, store, catalog, settings := newIngestFixture(fetcher)

	report, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 3, report.Upserted)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	count, _ := store.CountMatches()
	assert.Equal(t, 3, count)

	stored, err := store.GetMatchByID(102)
	require.NoError(t, err)
	assert.False(t, stored.RadiantWin)
	assert.Equal(t, "54", stored.Patch)
	assert.Len(t, stored.Draft, 2)

	// teams and league created on first reference
	teams, _ := catalog.GetAllTeams()
	require.Len(t, teams, 2)
	assert.Equal(t, "Radiant Org", teams[0].Name)
	leagues, _ := catalog.GetAllLeagues()
	require.Len(t, leagues, 1)
	assert.Equal(t, "Test League", leagues[0].Name)

	cp, _ := settings.GetCheckpoint()
	assert.Equal(t, int64(101), cp)
	last, _ := settings.GetLastRefresh()
	assert.False(t, last.IsZero())
}

func TestRefreshMatches_RetriesTransientListing(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{listedMatch(101, baseTime)}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime, true),
		},
		listingFailures: 1,
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	report, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Upserted)
	assert.Equal(t, 1, store.upserts, "retry must not duplicate upserts")
	assert.GreaterOrEqual(t, len(fetcher.listingCursors), 2)
}

func TestRefreshMatches_RetriesTransientDetails(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{listedMatch(101, baseTime)}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime, true),
		},
		detailFailures: map[int64]int{101: 1},
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	report, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)

	count, _ := store.CountMatches()
	assert.Equal(t, 1, count)
}

func TestRefreshMatches_SkipsMalformedRecord(t *testing.T) {
	broken := matchDetails(102, baseTime, true)
	broken.Duration = nil

	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{
			listedMatch(103, baseTime),
			listedMatch(102, baseTime.Add(-time.Hour)),
			listedMatch(101, baseTime.Add(-2*time.Hour)),
		}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime.Add(-2*time.Hour), true),
			102: broken,
			103: matchDetails(103, baseTime, true),
		},
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	report, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 1, report.Skipped)

	_, err = store.GetMatchByID(102)
	assert.Error(t, err)
	_, err = store.GetMatchByID(101)
	assert.NoError(t, err, "batch must continue past a malformed record")
}

func TestRefreshMatches_ReingestIsIdempotentAndLastWriteWins(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{listedMatch(101, baseTime)}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime, true),
		},
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	_, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)

	first, err := store.GetMatchByID(101)
	require.NoError(t, err)
	assert.True(t, first.RadiantWin)

	// same match re-listed with a corrected winner
	fetcher.details[101] = matchDetails(101, baseTime, false)
	_, err = svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)

	count, _ := store.CountMatches()
	assert.Equal(t, 1, count, "re-ingesting the same id must not duplicate")

	second, err := store.GetMatchByID(101)
	require.NoError(t, err)
	assert.False(t, second.RadiantWin, "second payload wins")
}

func TestRefreshMatches_StoreErrorAborts(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{listedMatch(101, baseTime)}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime, true),
		},
	}
	svc, store, _, _ := newIngestFixture(fetcher)
	store.failErr = errors.New("disk full")

	_, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "101")
	assert.Contains(t, err.Error(), "disk full")
}

func TestRefreshMatches_UnavailableDetailsAreCounted(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{
			listedMatch(102, baseTime),
			listedMatch(101, baseTime.Add(-time.Hour)),
		}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime.Add(-time.Hour), true),
			// 102 has no details: the API 404s
		},
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	report, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Upserted)

	count, _ := store.CountMatches()
	assert.Equal(t, 1, count)
}

func TestRefreshMatches_StopsAtLowerDateBound(t *testing.T) {
	old := baseTime.AddDate(0, 0, -30)
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{
			listedMatch(202, baseTime),
			listedMatch(201, baseTime.Add(-time.Hour)),
			listedMatch(102, old),
			listedMatch(101, old.Add(-time.Hour)),
		}},
		// no details for the old matches: the listing is newest-first,
		// so the pass must stop before ever requesting them
		details: map[int64]*opendota.MatchDetails{
			201: matchDetails(201, baseTime.Add(-time.Hour), true),
			202: matchDetails(202, baseTime, true),
		},
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	report, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 0, report.Failed)
	count, _ := store.CountMatches()
	assert.Equal(t, 2, count)
	_, err = store.GetMatchByID(102)
	assert.Error(t, err)
}

func TestRefreshMatches_FiltersLeagueTier(t *testing.T) {
	lowTier := listedMatch(102, baseTime)
	lowTier.LeagueTier = 0

	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{
			lowTier,
			listedMatch(101, baseTime.Add(-time.Hour)),
		}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime.Add(-time.Hour), true),
			102: matchDetails(102, baseTime, true),
		},
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	q := weekQuery()
	q.MinLeagueTier = 1
	report, err := svc.RefreshMatches(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Upserted)
	_, err = store.GetMatchByID(102)
	assert.Error(t, err)
}

func TestRefreshMatches_MaxMatchesCap(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{
			listedMatch(103, baseTime),
			listedMatch(102, baseTime.Add(-time.Hour)),
			listedMatch(101, baseTime.Add(-2*time.Hour)),
		}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime.Add(-2*time.Hour), true),
			102: matchDetails(102, baseTime.Add(-time.Hour), true),
			103: matchDetails(103, baseTime, true),
		},
	}
	svc, _, _, _ := newIngestFixture(fetcher)

	q := weekQuery()
	q.MaxMatches = 2
	report, err := svc.RefreshMatches(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Upserted)
}

func TestRefreshMatches_CancelledContext(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{listedMatch(101, baseTime)}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime, true),
		},
	}
	svc, store, _, _ := newIngestFixture(fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RefreshMatches(ctx, weekQuery())
	require.ErrorIs(t, err, context.Canceled)

	count, _ := store.CountMatches()
	assert.Equal(t, 0, count)
}

func TestRefreshMatches_ResumeUsesCheckpoint(t *testing.T) {
	fetcher := &fakeFetcher{
		pages:   [][]opendota.ProMatch{},
		details: map[int64]*opendota.MatchDetails{},
	}
	svc, _, _, settings := newIngestFixture(fetcher)
	require.NoError(t, settings.SetCheckpoint(500))

	q := weekQuery()
	q.Resume = true
	_, err := svc.RefreshMatches(context.Background(), q)
	require.NoError(t, err)

	require.NotEmpty(t, fetcher.listingCursors)
	assert.Equal(t, int64(500), fetcher.listingCursors[0])
}

func TestSyncCatalogs(t *testing.T) {
	fetcher := &fakeFetcher{
		heroes: []opendota.RawHero{
			{ID: 1, Name: "npc_dota_hero_antimage", LocalizedName: "Anti-Mage"},
		},
		teams: []opendota.RawTeam{
			{TeamID: 100, Name: "Radiant Org", Tag: "RO", Rating: 1500},
		},
		leagues: []opendota.RawLeague{
			{LeagueID: 10, Name: "Test League", Tier: "premium"},
		},
	}
	svc, _, catalog, _ := newIngestFixture(fetcher)

	require.NoError(t, svc.SyncCatalogs(context.Background()))

	heroes, _ := catalog.GetAllHeroes()
	require.Len(t, heroes, 1)
	assert.Equal(t, "Anti-Mage", heroes[0].LocalizedName)

	teams, _ := catalog.GetAllTeams()
	require.Len(t, teams, 1)
	assert.Equal(t, 1500.0, teams[0].Rating)

	leagues, _ := catalog.GetAllLeagues()
	require.Len(t, leagues, 1)
	assert.Equal(t, 3, leagues[0].Tier)
}

func TestStatus(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: [][]opendota.ProMatch{{listedMatch(101, baseTime)}},
		details: map[int64]*opendota.MatchDetails{
			101: matchDetails(101, baseTime, true),
		},
	}
	svc, _, _, _ := newIngestFixture(fetcher)

	_, err := svc.RefreshMatches(context.Background(), weekQuery())
	require.NoError(t, err)

	status, err := svc.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, status.StoredMatches)
	assert.Equal(t, int64(101), status.Checkpoint)
	assert.False(t, status.LastRefreshAt.IsZero())
}

func TestWithRetry_GivesUpOnNonTransient(t *testing.T) {
	svc, _, _, _ := newIngestFixture(&fakeFetcher{})

	calls := 0
	err := svc.withRetry(context.Background(), "op", func() error {
		calls++
		return &opendota.APIError{StatusCode: 400, Endpoint: "proMatches"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
