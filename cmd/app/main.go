package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/roylee0704/gron"

	"github.com/jderrod/Dota2AnalysisTool/internal/application"
	delivery "github.com/jderrod/Dota2AnalysisTool/internal/delivery/http"
	"github.com/jderrod/Dota2AnalysisTool/internal/opendota"
	"github.com/jderrod/Dota2AnalysisTool/internal/repository"
	"github.com/jderrod/Dota2AnalysisTool/pkg/config"
	"github.com/jderrod/Dota2AnalysisTool/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel})

	db, err := repository.NewPostgresDB(&cfg.Repo)
	if err != nil {
		log.Error("failed to init db: %s", err.Error())
		return
	}
	defer db.Close()

	log.Info("Running migrations...")
	if err := repository.RunMigrations(db); err != nil {
		log.Error("failed to run migrations: %s", err.Error())
		return
	}
	log.Info("Migrations applied successfully")

	repos := repository.NewRepository(db)
	fetcher := opendota.NewClient(cfg.OpenDotaBaseURL, cfg.OpenDotaAPIKey)
	services := application.NewService(repos, fetcher, log)

	server := delivery.NewServer(cfg.Port, services, log)

	go func() {
		if err := server.Run(); err != nil {
			log.Error("http server error: %s", err.Error())
		}
	}()

	cron := gron.New()
	cron.AddFunc(gron.Every(cfg.RefreshInterval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RefreshInterval)
		defer cancel()

		query := application.RefreshQuery{
			From:          time.Now().AddDate(0, 0, -cfg.RefreshDays),
			MinLeagueTier: cfg.MinLeagueTier,
		}
		if _, err := services.Ingest.RefreshMatches(ctx, query); err != nil {
			log.Error("scheduled refresh failed: %s", err.Error())
		}
	})
	cron.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	cron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error("http server shutdown error: %s", err.Error())
	}
	log.Info("Server stopped")
}
