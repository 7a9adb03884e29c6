// Package main provides the entry point for the backtest CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/backtest"
	"github.com/yourusername/footy-better/internal/config"
	"github.com/yourusername/footy-better/internal/database"
	"github.com/yourusername/footy-better/internal/datasource"
	"github.com/yourusername/footy-better/internal/logger"
	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/predictor"
	"github.com/yourusername/footy-better/internal/repository"
	"github.com/yourusername/footy-better/internal/risk"
)

func main() {
	var (
		configPath   = flag.String("config", "config/config.yaml", "Path to config file")
		competitions = flag.String("competitions", "", "Comma-separated competition codes (overrides config)")
		daysBack     = flag.Int("days-back", 0, "Replay window in days (overrides config)")
		forceRefresh = flag.Bool("force-refresh", false, "Bypass the fixture feed cache")
		output       = flag.String("output", "", "Output path for the result JSON (overrides config)")
		roiCSV       = flag.String("roi-csv", "", "Optional output path for the ROI curve CSV")
		noPersist    = flag.Bool("no-persist", false, "Skip writing picks and the run record to the database")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := loadConfig(*configPath)
	appLog := logger.New(cfg.App.LogLevel, cfg.App.Environment)

	competitionIDs := cfg.Backtest.CompetitionIDs
	if *competitions != "" {
		competitionIDs = strings.Split(*competitions, ",")
	}
	replayDays := cfg.Backtest.DaysBack
	if *daysBack > 0 {
		replayDays = *daysBack
	}
	outputPath := cfg.Backtest.OutputPath
	if *output != "" {
		outputPath = *output
	}
	refresh := cfg.Backtest.ForceRefresh || *forceRefresh

	feed := datasource.NewFixtureFeed(&cfg.Feed, appLog)
	defer feed.Close()

	orch := buildOrchestrator(cfg, feed, appLog)

	if !*noPersist {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			appLog.WithError(err).Fatal("Failed to initialize schema")
		}

		repos, err := repository.NewRepositories(db)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to create repositories")
		}
		orch.SetRecorder(repos)
	}

	appLog.WithFields(logrus.Fields{
		"competitions":  competitionIDs,
		"days_back":     replayDays,
		"force_refresh": refresh,
	}).Info("Starting backtest")

	result, err := orch.RunBacktest(ctx, competitionIDs, replayDays, refresh)
	if err != nil {
		appLog.WithError(err).Fatal("Backtest failed")
	}

	fmt.Println(backtest.Summary(result))

	if outputPath != "" {
		if err := backtest.WriteJSON(result, outputPath); err != nil {
			appLog.WithError(err).Fatal("Failed to write result JSON")
		}
		appLog.WithField("path", outputPath).Info("Result artifact written")
	}
	if *roiCSV != "" {
		if err := backtest.WriteROICurveCSV(result, *roiCSV); err != nil {
			appLog.WithError(err).Fatal("Failed to write ROI curve CSV")
		}
		appLog.WithField("path", *roiCSV).Info("ROI curve written")
	}

	audit := logger.NewAuditLogger(appLog)
	audit.LogTrainingRun(result.RunID.String(), string(backtest.StatusCompleted), result.BetCount, result.ROI(), result.Classifier.Trained)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AWS.Enabled {
		if cfg.AWS.Region == "" || cfg.AWS.SecretName == "" {
			log.Fatalf("aws.region and aws.secret_name must be set when the secrets overlay is enabled")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := config.LoadSecretsFromAWS(ctx, cfg, cfg.AWS.Region, cfg.AWS.SecretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildOrchestrator(cfg *config.Config, source backtest.MatchSource, appLog *logrus.Logger) *backtest.Orchestrator {
	predCfg := predictor.DefaultConfig()
	predCfg.MinMatches = cfg.Engine.MinMatches

	genCfg := markets.DefaultConfig()
	genCfg.BaseThreshold = cfg.Engine.MinProbability
	genCfg.KellyFraction = cfg.Engine.KellyFraction

	riskCfg := risk.Config{
		DailyCap:         cfg.Engine.DailyStakeCap,
		CompetitionCap:   cfg.Engine.CompetitionStakeCap,
		MaxStakeFraction: cfg.Engine.MaxStakeFraction,
		MinStakeFraction: cfg.Engine.MinStakeFraction,
		KellyFraction:    cfg.Engine.KellyFraction,
	}

	btCfg := backtest.DefaultConfig()
	btCfg.ModelPath = cfg.Backtest.ModelPath
	if cfg.Backtest.MinTrainSamples > 0 {
		btCfg.Classifier.MinSamples = cfg.Backtest.MinTrainSamples
	}
	if cfg.Backtest.Seed != 0 {
		btCfg.Classifier.Seed = cfg.Backtest.Seed
	}

	pred := predictor.New(predCfg, appLog)
	generator := markets.NewGenerator(genCfg, nil, nil, appLog)
	riskManager := risk.NewManager(riskCfg, appLog)

	orch, err := backtest.NewOrchestrator(btCfg, source, pred, generator, riskManager, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create orchestrator")
	}
	return orch
}
