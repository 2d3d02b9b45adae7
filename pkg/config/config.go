package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jderrod/Dota2AnalysisTool/internal/repository"
)

type Config struct {
	Repo repository.Config `envPrefix:"REPO_"`

	OpenDotaBaseURL string `env:"OPENDOTA_BASE_URL" envDefault:""`
	OpenDotaAPIKey  string `env:"OPENDOTA_API_KEY" envDefault:""`

	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOGGER_LEVEL" envDefault:"debug"`

	// Scheduled refresh: every RefreshInterval, ingest matches played
	// in the last RefreshDays days.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"24h"`
	RefreshDays     int           `env:"REFRESH_DAYS" envDefault:"7"`
	MinLeagueTier   int           `env:"MIN_LEAGUE_TIER" envDefault:"1"`
}

func ReadEnvConfig(cfg *Config) error {
	return env.Parse(cfg)
}
