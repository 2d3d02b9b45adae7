package models

import "time"

const (
	TeamRadiant = 0
	TeamDire    = 1
)

type Match struct {
	MatchID       int64       `json:"match_id" db:"match_id"`
	StartTime     time.Time   `json:"start_time" db:"start_time"`
	Duration      int         `json:"duration" db:"duration"`
	Patch         string      `json:"patch" db:"patch"`
	LeagueID      int64       `json:"league_id" db:"league_id"`
	SeriesID      int64       `json:"series_id" db:"series_id"`
	SeriesType    int         `json:"series_type" db:"series_type"`
	RadiantTeamID int64       `json:"radiant_team_id" db:"radiant_team_id"`
	DireTeamID    int64       `json:"dire_team_id" db:"dire_team_id"`
	RadiantScore  int         `json:"radiant_score" db:"radiant_score"`
	DireScore     int         `json:"dire_score" db:"dire_score"`
	RadiantWin    bool        `json:"radiant_win" db:"radiant_win"`
	Draft         []DraftPick `json:"draft"`
}

// WinnerTeamID returns the winning side's team ID, 0 if that side
// played without a registered team.
func (m *Match) WinnerTeamID() int64 {
	if m.RadiantWin {
		return m.RadiantTeamID
	}
	return m.DireTeamID
}

type DraftPick struct {
	MatchID int64 `json:"match_id" db:"match_id"`
	HeroID  int   `json:"hero_id" db:"hero_id"`
	Team    int   `json:"team" db:"team"` // 0 radiant, 1 dire
	IsPick  bool  `json:"is_pick" db:"is_pick"`
	Order   int   `json:"order" db:"pick_order"`
}

// MatchFilter narrows a match query. Zero values mean "no constraint",
// except Limit which falls back to the store default.
type MatchFilter struct {
	From     time.Time
	To       time.Time
	TeamID   int64
	LeagueID int64
	Patch    string
	Limit    int
}
