package opendota

// Raw payload shapes as the OpenDota API returns them. Fields that the
// normalizer treats as required are pointers so that an absent key can
// be told apart from a zero value.

type ProMatch struct {
	MatchID       int64  `json:"match_id"`
	StartTime     int64  `json:"start_time"`
	Duration      int    `json:"duration"`
	RadiantTeamID int64  `json:"radiant_team_id"`
	RadiantName   string `json:"radiant_name"`
	DireTeamID    int64  `json:"dire_team_id"`
	DireName      string `json:"dire_name"`
	LeagueID      int64  `json:"leagueid"`
	LeagueName    string `json:"league_name"`
	LeagueTier    int    `json:"league_tier"`
	SeriesID      int64  `json:"series_id"`
	SeriesType    int    `json:"series_type"`
	RadiantScore  int    `json:"radiant_score"`
	DireScore     int    `json:"dire_score"`
	RadiantWin    bool   `json:"radiant_win"`
}

type MatchDetails struct {
	MatchID       int64      `json:"match_id"`
	StartTime     *int64     `json:"start_time"`
	Duration      *int       `json:"duration"`
	Patch         *int       `json:"patch"`
	LeagueID      int64      `json:"leagueid"`
	League        *RawLeague `json:"league"`
	SeriesID      int64      `json:"series_id"`
	SeriesType    int        `json:"series_type"`
	RadiantTeamID int64      `json:"radiant_team_id"`
	DireTeamID    int64      `json:"dire_team_id"`
	RadiantScore  int        `json:"radiant_score"`
	DireScore     int        `json:"dire_score"`
	RadiantWin    *bool      `json:"radiant_win"`
	PicksBans     []PickBan  `json:"picks_bans"`
}

type PickBan struct {
	IsPick bool `json:"is_pick"`
	HeroID int  `json:"hero_id"`
	Team   int  `json:"team"`
	Order  int  `json:"order"`
}

type RawLeague struct {
	LeagueID int64  `json:"leagueid"`
	Name     string `json:"name"`
	Tier     string `json:"tier"`
}

type RawTeam struct {
	TeamID int64   `json:"team_id"`
	Name   string  `json:"name"`
	Tag    string  `json:"tag"`
	Rating float64 `json:"rating"`
}

type RawHero struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name"`
	PrimaryAttr   string `json:"primary_attr"`
	AttackType    string `json:"attack_type"`
}
