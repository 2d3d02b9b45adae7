package opendota

import (
	"sort"
	"strconv"
	"time"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
)

// NormalizeMatch maps one raw match details payload onto the canonical
// match shape. It is deterministic and performs no I/O; a payload
// missing a required field yields a MalformedMatchError.
func NormalizeMatch(raw *MatchDetails) (*models.Match, error) {
	if raw.MatchID <= 0 {
		return nil, &MalformedMatchError{Field: "match_id", Reason: "is missing or not positive"}
	}
	if raw.StartTime == nil || *raw.StartTime <= 0 {
		return nil, &MalformedMatchError{MatchID: raw.MatchID, Field: "start_time", Reason: "is missing or not positive"}
	}
	if raw.Duration == nil || *raw.Duration < 0 {
		return nil, &MalformedMatchError{MatchID: raw.MatchID, Field: "duration", Reason: "is missing or negative"}
	}
	if raw.RadiantWin == nil {
		return nil, &MalformedMatchError{MatchID: raw.MatchID, Field: "radiant_win", Reason: "is missing"}
	}

	m := &models.Match{
		MatchID:       raw.MatchID,
		StartTime:     time.Unix(*raw.StartTime, 0).UTC(),
		Duration:      *raw.Duration,
		LeagueID:      raw.LeagueID,
		SeriesID:      raw.SeriesID,
		SeriesType:    raw.SeriesType,
		RadiantTeamID: raw.RadiantTeamID,
		DireTeamID:    raw.DireTeamID,
		RadiantScore:  raw.RadiantScore,
		DireScore:     raw.DireScore,
		RadiantWin:    *raw.RadiantWin,
	}
	if raw.Patch != nil && *raw.Patch > 0 {
		m.Patch = strconv.Itoa(*raw.Patch)
	}
	if m.LeagueID == 0 && raw.League != nil {
		m.LeagueID = raw.League.LeagueID
	}
	m.Draft = normalizeDraft(raw)
	return m, nil
}

func normalizeDraft(raw *MatchDetails) []models.DraftPick {
	if len(raw.PicksBans) == 0 {
		return nil
	}
	draft := make([]models.DraftPick, 0, len(raw.PicksBans))
	for _, pb := range raw.PicksBans {
		if pb.HeroID <= 0 {
			continue
		}
		draft = append(draft, models.DraftPick{
			MatchID: raw.MatchID,
			HeroID:  pb.HeroID,
			Team:    pb.Team,
			IsPick:  pb.IsPick,
			Order:   pb.Order,
		})
	}
	sort.SliceStable(draft, func(i, j int) bool { return draft[i].Order < draft[j].Order })
	return draft
}

// NormalizeHeroes drops entries without a usable ID and keeps the rest
// in API order.
func NormalizeHeroes(raw []RawHero) []models.Hero {
	heroes := make([]models.Hero, 0, len(raw))
	for _, h := range raw {
		if h.ID <= 0 {
			continue
		}
		heroes = append(heroes, models.Hero{
			HeroID:        h.ID,
			Name:          h.Name,
			LocalizedName: h.LocalizedName,
			PrimaryAttr:   h.PrimaryAttr,
			AttackType:    h.AttackType,
		})
	}
	return heroes
}

func NormalizeTeams(raw []RawTeam) []models.Team {
	teams := make([]models.Team, 0, len(raw))
	for _, t := range raw {
		if t.TeamID <= 0 {
			continue
		}
		teams = append(teams, models.Team{
			TeamID: t.TeamID,
			Name:   t.Name,
			Tag:    t.Tag,
			Rating: t.Rating,
		})
	}
	return teams
}

func NormalizeLeagues(raw []RawLeague) []models.League {
	leagues := make([]models.League, 0, len(raw))
	for _, l := range raw {
		if l.LeagueID <= 0 {
			continue
		}
		leagues = append(leagues, models.League{
			LeagueID: l.LeagueID,
			Name:     l.Name,
			Tier:     LeagueTier(l.Tier),
		})
	}
	return leagues
}

// LeagueTier maps OpenDota's tier labels onto the numeric tiers the
// original listing endpoint reports.
func LeagueTier(tier string) int {
	switch tier {
	case "premium":
		return 3
	case "professional":
		return 2
	case "amateur", "excluded":
		return 1
	default:
		return 0
	}
}
