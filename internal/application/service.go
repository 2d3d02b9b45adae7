package application

import (
	"context"
	"time"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
	"github.com/jderrod/Dota2AnalysisTool/internal/opendota"
	"github.com/jderrod/Dota2AnalysisTool/internal/repository"
)

// Fetcher is the upstream match-data API surface the ingestion loop
// depends on.
type Fetcher interface {
	GetProMatches(ctx context.Context, limit int, lessThanMatchID int64) ([]opendota.ProMatch, error)
	GetMatchDetails(ctx context.Context, matchID int64) (*opendota.MatchDetails, error)
	GetHeroes(ctx context.Context) ([]opendota.RawHero, error)
	GetProTeams(ctx context.Context) ([]opendota.RawTeam, error)
	GetLeagues(ctx context.Context) ([]opendota.RawLeague, error)
}

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

type IngestService interface {
	RefreshMatches(ctx context.Context, q RefreshQuery) (*RefreshReport, error)
	SyncCatalogs(ctx context.Context) error
	Status() (*RefreshStatus, error)
}

type MatchService interface {
	GetMatches(filter models.MatchFilter) ([]models.Match, error)
	GetMatch(matchID int64) (*models.Match, error)
	GetTeams() ([]models.Team, error)
	GetHeroes() ([]models.Hero, error)
	GetLeagues() ([]models.League, error)
}

type StatsService interface {
	GetTeamStats(filter models.MatchFilter) ([]*TeamStats, error)
	GetHeroStats(filter models.MatchFilter) ([]*HeroStats, error)
	GetExcelReport(filter models.MatchFilter) ([]byte, error)
}

type RefreshStatus struct {
	LastRefreshAt time.Time `json:"last_refresh_at"`
	Checkpoint    int64     `json:"checkpoint"`
	StoredMatches int       `json:"stored_matches"`
}

type Service struct {
	Ingest IngestService
	Match  MatchService
	Stats  StatsService
}

func NewService(repos *repository.Repository, fetcher Fetcher, logger Logger) *Service {
	return &Service{
		Ingest: NewIngestServiceImpl(repos.Match, repos.Catalog, repos.Settings, fetcher, logger),
		Match:  NewMatchServiceImpl(repos.Match, repos.Catalog),
		Stats:  NewStatsServiceImpl(repos.Match, repos.Catalog),
	}
}
