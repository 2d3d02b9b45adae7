package models

type Team struct {
	TeamID int64  `json:"team_id" db:"team_id"`
	Name   string `json:"name" db:"name"`
	Tag    string `json:"tag" db:"tag"`
	Rating float64 `json:"rating" db:"rating"`
}

type Hero struct {
	HeroID        int    `json:"hero_id" db:"hero_id"`
	Name          string `json:"name" db:"name"`
	LocalizedName string `json:"localized_name" db:"localized_name"`
	PrimaryAttr   string `json:"primary_attr" db:"primary_attr"`
	AttackType    string `json:"attack_type" db:"attack_type"`
}

type League struct {
	LeagueID int64  `json:"league_id" db:"league_id"`
	Name     string `json:"name" db:"name"`
	Tier     int    `json:"tier" db:"tier"`
}
