package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/jderrod/Dota2AnalysisTool/internal/application"
	"github.com/jderrod/Dota2AnalysisTool/internal/opendota"
	"github.com/jderrod/Dota2AnalysisTool/internal/repository"
	"github.com/jderrod/Dota2AnalysisTool/pkg/config"
	"github.com/jderrod/Dota2AnalysisTool/pkg/logger"
)

// One-shot backfill tool: ingests pro matches for a date range and
// optionally refreshes the hero/team/league catalogs first.
func main() {
	var (
		fromStr  = flag.String("from", "", "start date (YYYY-MM-DD), default: -days from now")
		toStr    = flag.String("to", "", "end date (YYYY-MM-DD), default: now")
		days     = flag.Int("days", 7, "days to look back when -from is not set")
		minTier  = flag.Int("min-tier", 1, "minimum league tier to ingest")
		maxCount = flag.Int("max", 0, "stop after this many matches (0 = no cap)")
		resume   = flag.Bool("resume", false, "resume from the stored checkpoint cursor")
		catalogs = flag.Bool("catalogs", false, "sync hero/team/league catalogs before ingesting")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel})

	query := application.RefreshQuery{
		MinLeagueTier: *minTier,
		MaxMatches:    *maxCount,
		Resume:        *resume,
	}
	if *fromStr != "" {
		t, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -from date: %v\n", err)
			os.Exit(2)
		}
		query.From = t
	} else {
		query.From = time.Now().AddDate(0, 0, -*days)
	}
	if *toStr != "" {
		t, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to date: %v\n", err)
			os.Exit(2)
		}
		query.To = t.Add(24*time.Hour - time.Second)
	}

	db, err := repository.NewPostgresDB(&cfg.Repo)
	if err != nil {
		log.Error("failed to init db: %s", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.RunMigrations(db); err != nil {
		log.Error("failed to run migrations: %s", err.Error())
		os.Exit(1)
	}

	repos := repository.NewRepository(db)
	fetcher := opendota.NewClient(cfg.OpenDotaBaseURL, cfg.OpenDotaAPIKey)
	services := application.NewService(repos, fetcher, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if *catalogs {
		if err := services.Ingest.SyncCatalogs(ctx); err != nil {
			log.Error("catalog sync failed: %s", err.Error())
			os.Exit(1)
		}
	}

	report, err := services.Ingest.RefreshMatches(ctx, query)
	if report != nil {
		fmt.Printf("pages=%d listed=%d upserted=%d skipped=%d failed=%d last_match_id=%d\n",
			report.Pages, report.Fetched, report.Upserted, report.Skipped, report.Failed, report.LastMatchID)
	}
	if err != nil {
		log.Error("ingestion failed: %s", err.Error())
		os.Exit(1)
	}
}
