// Package main provides the entry point for the prediction engine daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/footy-better/internal/adjust"
	"github.com/yourusername/footy-better/internal/backtest"
	"github.com/yourusername/footy-better/internal/classifier"
	"github.com/yourusername/footy-better/internal/config"
	"github.com/yourusername/footy-better/internal/database"
	"github.com/yourusername/footy-better/internal/datasource"
	"github.com/yourusername/footy-better/internal/health"
	"github.com/yourusername/footy-better/internal/logger"
	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/metrics"
	"github.com/yourusername/footy-better/internal/models"
	"github.com/yourusername/footy-better/internal/predictor"
	"github.com/yourusername/footy-better/internal/repository"
	"github.com/yourusername/footy-better/internal/risk"
	"github.com/yourusername/footy-better/internal/scheduler"
	"github.com/yourusername/footy-better/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Run the footy-better prediction engine",
	Long:  `Runs the prediction engine daemon: scheduled fixture ingestion, pick generation, settlement, and periodic retraining.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.New(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runEngine()
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one ingestion and settlement cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSyncOnce(context.Background())
	},
}

var picksCmd = &cobra.Command{
	Use:   "picks",
	Short: "Generate and persist picks for upcoming fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPicksOnce(context.Background())
	},
}

func main() {
	rootCmd.AddCommand(syncCmd, picksCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the config file, overlays AWS secrets when enabled, and
// validates the result. The daemon requires an explicit config file; only the
// ad-hoc CLIs fall back to built-in defaults.
func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if cfg.AWS.Enabled {
		if cfg.AWS.Region == "" || cfg.AWS.SecretName == "" {
			return fmt.Errorf("aws.region and aws.secret_name must be set when the secrets overlay is enabled")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := config.LoadSecretsFromAWS(ctx, cfg, cfg.AWS.Region, cfg.AWS.SecretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

// connect opens the database, ensures the schema, and builds the repositories.
func connect(ctx context.Context) (*database.DB, *repository.Repositories, error) {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, repos, nil
}

func runEngine() {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Footy Better engine starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, repos, err := connect(ctx)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to set up database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	// Market adjustments derived from the settled pick ledger
	adjustments := adjust.NewCached(repos.Adjustment, cfg.AdjustmentTTL(), appLog)

	// Fixture feed and optional live odds stream
	feed := datasource.NewFixtureFeed(&cfg.Feed, appLog)
	defer feed.Close()

	var (
		stream   *datasource.OddsStream
		oddsFeed datasource.OddsSnapshotter
	)
	if cfg.Stream.Enabled {
		stream = datasource.NewOddsStream(&cfg.Stream, appLog)
		stream.AddHandler(func(matchID uuid.UUID, odds *models.MatchOdds) {
			storeCtx, cancelStore := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelStore()
			if err := repos.Match.UpsertOdds(storeCtx, matchID, odds); err != nil {
				appLog.WithError(err).WithField("match_id", matchID).Debug("Failed to persist streamed odds")
			}
		})
		oddsFeed = stream
	}

	// Prediction pipeline
	pred, generator, riskManager := buildPipeline(cfg, adjustments, appLog)

	pickSvc := service.NewPickService(service.PickConfig{
		Competitions: cfg.Engine.CompetitionIDs,
		UpcomingDays: cfg.Engine.UpcomingDays,
		MinMatches:   cfg.Engine.MinMatches,
		CacheTTL:     cfg.PredictionCacheTTL(),
	}, feed, oddsFeed, repos, pred, generator, riskManager, appLog)

	ingestionSvc := service.NewIngestionService(cfg.Engine.CompetitionIDs, feed, repos.Match, repos.Pick, appLog)

	// Scheduler
	sched := scheduler.NewScheduler(ingestionSvc, pickSvc, appLog)
	if cfg.Scheduler.Enabled {
		if cfg.Scheduler.IngestCron != "" {
			if err := sched.ScheduleIngestion(cfg.Scheduler.IngestCron); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule ingestion")
			}
		}
		if cfg.Scheduler.PicksCron != "" {
			if err := sched.SchedulePicks(cfg.Scheduler.PicksCron); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule pick generation")
			}
		}
		if cfg.Scheduler.RetrainCron != "" {
			job := retrainJob(cfg, feed, repos, adjustments, generator, appLog)
			if err := sched.ScheduleRetrain(cfg.Scheduler.RetrainCron, job); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule retraining")
			}
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
	} else {
		appLog.Info("Scheduler disabled; engine will only serve status endpoints")
	}

	// Run the odds stream alongside the scheduler
	if stream != nil {
		go func() {
			if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				appLog.WithError(err).Error("Odds stream terminated")
			}
		}()
	}

	// Health and status server
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
		DB:          db,
		Scheduler:   sched,
		Cache:       pickSvc,
	}
	if cfg.Health.Port > 0 {
		healthCfg.Port = strconv.Itoa(cfg.Health.Port)
	}
	if stream != nil {
		healthCfg.Stream = stream
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Prometheus endpoint on its own listener so scrapes never contend with
	// health probes
	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, &cfg.Metrics, appLog)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Settle anything outstanding before the first scheduled run
	go func() {
		runCtx, cancelRun := context.WithTimeout(ctx, 30*time.Minute)
		defer cancelRun()
		if err := ingestionSvc.RunCycle(runCtx); err != nil {
			appLog.WithError(err).Warn("Startup ingestion cycle failed")
		}
	}()

	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"competitions":      cfg.Engine.CompetitionIDs,
		"scheduler_enabled": cfg.Scheduler.Enabled,
		"stream_enabled":    cfg.Stream.Enabled,
		"metrics_enabled":   cfg.Metrics.Enabled,
	}).Info("Engine is running")

	// Wait for shutdown signal
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	// Graceful shutdown
	appLog.Info("Initiating graceful shutdown...")

	healthServer.SetReady(false)

	// Cancel context to stop all goroutines
	cancel()

	if sched.IsRunning() {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error during scheduler shutdown")
		}
	}

	// Give components time to cleanup
	time.Sleep(2 * time.Second)

	appLog.Info("Footy Better engine shut down successfully")
}

// runSyncOnce executes a single ingestion and settlement cycle and prints the
// resulting counters.
func runSyncOnce(ctx context.Context) error {
	db, repos, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	feed := datasource.NewFixtureFeed(&cfg.Feed, appLog)
	defer feed.Close()

	svc := service.NewIngestionService(cfg.Engine.CompetitionIDs, feed, repos.Match, repos.Pick, appLog)
	if err := svc.RunCycle(ctx); err != nil {
		return err
	}

	fmt.Println(svc.GetMetrics().String())
	return nil
}

// runPicksOnce generates and persists picks for the configured upcoming
// window, then exits.
func runPicksOnce(ctx context.Context) error {
	db, repos, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	adjustments := adjust.NewCached(repos.Adjustment, cfg.AdjustmentTTL(), appLog)

	feed := datasource.NewFixtureFeed(&cfg.Feed, appLog)
	defer feed.Close()

	pred, generator, riskManager := buildPipeline(cfg, adjustments, appLog)

	pickSvc := service.NewPickService(service.PickConfig{
		Competitions: cfg.Engine.CompetitionIDs,
		UpcomingDays: cfg.Engine.UpcomingDays,
		MinMatches:   cfg.Engine.MinMatches,
		CacheTTL:     cfg.PredictionCacheTTL(),
	}, feed, nil, repos, pred, generator, riskManager, appLog)

	summary, err := pickSvc.GenerateUpcomingPicks(ctx)
	if err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{
		"fixtures":    summary.Fixtures,
		"predictions": summary.Predictions,
		"candidates":  summary.Candidates,
		"approved":    summary.Approved,
		"errors":      summary.Errors,
	}).Info("Pick run complete")
	return nil
}

// buildPipeline assembles the prediction components from the engine
// configuration. A previously trained classifier is loaded from disk when one
// exists; otherwise picks are gated on model probabilities alone.
func buildPipeline(cfg *config.Config, adjustments markets.AdjustmentProvider, appLog *logrus.Logger) (*predictor.Predictor, *markets.Generator, *risk.Manager) {
	predCfg, genCfg, riskCfg := pipelineConfigs(cfg)

	var clf markets.Classifier
	ens, err := classifier.Load(cfg.Backtest.ModelPath)
	switch {
	case err == nil:
		clf = ens
		appLog.WithField("model_path", cfg.Backtest.ModelPath).Info("Pick classifier loaded")
	case errors.Is(err, models.ErrNotFound):
		appLog.WithField("model_path", cfg.Backtest.ModelPath).Info("No trained classifier found")
	default:
		appLog.WithError(err).Warn("Failed to load pick classifier")
	}

	pred := predictor.New(predCfg, appLog)
	generator := markets.NewGenerator(genCfg, adjustments, clf, appLog)
	riskManager := risk.NewManager(riskCfg, appLog)
	return pred, generator, riskManager
}

func pipelineConfigs(cfg *config.Config) (predictor.Config, markets.Config, risk.Config) {
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
	return predCfg, genCfg, riskCfg
}

// retrainJob returns the scheduled retraining closure. Each run replays the
// configured window with a fresh pipeline, records the training run, refreshes
// market adjustments, and swaps the retrained classifier into the live
// generator.
func retrainJob(
	cfg *config.Config,
	feed *datasource.FixtureFeed,
	repos *repository.Repositories,
	adjustments *adjust.Cached,
	generator *markets.Generator,
	appLog *logrus.Logger,
) func(context.Context) error {
	return func(ctx context.Context) error {
		predCfg, genCfg, riskCfg := pipelineConfigs(cfg)

		btCfg := backtest.DefaultConfig()
		btCfg.ModelPath = cfg.Backtest.ModelPath
		if cfg.Backtest.MinTrainSamples > 0 {
			btCfg.Classifier.MinSamples = cfg.Backtest.MinTrainSamples
		}
		if cfg.Backtest.Seed != 0 {
			btCfg.Classifier.Seed = cfg.Backtest.Seed
		}

		// The replay pipeline is isolated from the live one so exposure
		// accounting and classifier refinement stay untouched during training.
		orch, err := backtest.NewOrchestrator(
			btCfg,
			feed,
			predictor.New(predCfg, appLog),
			markets.NewGenerator(genCfg, nil, nil, appLog),
			risk.NewManager(riskCfg, appLog),
			appLog,
		)
		if err != nil {
			return err
		}
		orch.SetRecorder(repos)

		start := time.Now()
		result, err := orch.RunBacktest(ctx, cfg.Backtest.CompetitionIDs, cfg.Backtest.DaysBack, false)
		if err != nil {
			metrics.RecordBacktestRun(string(backtest.StatusError), time.Since(start).Seconds())
			return err
		}
		metrics.RecordBacktestRun(string(backtest.StatusCompleted), time.Since(start).Seconds())
		metrics.RecordBacktestOutcome(result.ROI(), result.Accuracy(), result.BetCount)

		audit := logger.NewAuditLogger(appLog)
		audit.LogTrainingRun(result.RunID.String(), string(backtest.StatusCompleted), result.BetCount, result.ROI(), result.Classifier.Trained)

		if result.Classifier.Trained {
			if ens, err := classifier.Load(cfg.Backtest.ModelPath); err == nil {
				generator.SetClassifier(ens)
				appLog.Info("Live generator updated with retrained classifier")
			} else {
				appLog.WithError(err).Warn("Failed to reload retrained classifier")
			}
		}

		if err := adjustments.Refresh(ctx); err != nil {
			appLog.WithError(err).Warn("Failed to refresh market adjustments after retraining")
		}
		return nil
	}
}

// startMetricsServer exposes the prometheus registry on a dedicated listener.
func startMetricsServer(ctx context.Context, cfg *config.MetricsConfig, appLog *logrus.Logger) {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	port := cfg.Port
	if port == 0 {
		port = 9090
	}

	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithFields(logrus.Fields{
			"port": port,
			"path": path,
		}).Info("Metrics server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Metrics server shutdown error")
		}
	}()
}
