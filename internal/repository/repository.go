package repository

import (
	"database/sql"
	"time"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
)

type Match interface {
	UpsertMatch(m *models.Match) error
	GetMatches(filter models.MatchFilter) ([]models.Match, error)
	GetMatchByID(matchID int64) (*models.Match, error)
	CountMatches() (int, error)
}

type Catalog interface {
	EnsureTeam(team models.Team) error
	EnsureLeague(league models.League) error
	UpsertTeams(teams []models.Team) error
	UpsertHeroes(heroes []models.Hero) error
	UpsertLeagues(leagues []models.League) error
	GetAllTeams() ([]models.Team, error)
	GetAllHeroes() ([]models.Hero, error)
	GetAllLeagues() ([]models.League, error)
}

type Settings interface {
	SetCheckpoint(lastMatchID int64) error
	GetCheckpoint() (int64, error)
	SetLastRefresh(t time.Time) error
	GetLastRefresh() (time.Time, error)
}

type Repository struct {
	Match
	Catalog
	Settings
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Match:    NewMatchPostgres(db),
		Catalog:  NewCatalogPostgres(db),
		Settings: NewSettingsPostgres(db),
		db:       db,
	}
}
