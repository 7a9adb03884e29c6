// Package main provides a read-only CLI that prints model predictions and
// suggested picks for upcoming fixtures without touching the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/classifier"
	"github.com/yourusername/footy-better/internal/config"
	"github.com/yourusername/footy-better/internal/datasource"
	"github.com/yourusername/footy-better/internal/logger"
	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/models"
	"github.com/yourusername/footy-better/internal/predictor"
	"github.com/yourusername/footy-better/internal/stats"
)

func main() {
	var (
		configPath   = flag.String("config", "config/config.yaml", "Path to config file")
		competition  = flag.String("competition", "", "Competition code (default: all configured)")
		days         = flag.Int("days", 0, "Upcoming window in days (overrides config)")
		historyDays  = flag.Int("history-days", 540, "Days of history used for team form")
		homeFilter   = flag.String("home", "", "Only fixtures whose home team contains this substring")
		awayFilter   = flag.String("away", "", "Only fixtures whose away team contains this substring")
		forceRefresh = flag.Bool("force-refresh", false, "Bypass the fixture feed cache")
	)
	flag.Parse()

	cfg := loadConfig(*configPath)
	appLog := logger.New(cfg.App.LogLevel, cfg.App.Environment)

	competitions := cfg.Engine.CompetitionIDs
	if *competition != "" {
		competitions = []string{*competition}
	}
	if len(competitions) == 0 {
		log.Fatalf("No competitions configured; set engine.competition_ids or pass -competition")
	}

	upcomingDays := cfg.Engine.UpcomingDays
	if *days > 0 {
		upcomingDays = *days
	}

	predCfg := predictor.DefaultConfig()
	predCfg.MinMatches = cfg.Engine.MinMatches

	genCfg := markets.DefaultConfig()
	genCfg.BaseThreshold = cfg.Engine.MinProbability
	genCfg.KellyFraction = cfg.Engine.KellyFraction

	var clf markets.Classifier
	if ens, err := classifier.Load(cfg.Backtest.ModelPath); err == nil {
		clf = ens
	} else if !errors.Is(err, models.ErrNotFound) {
		appLog.WithError(err).Warn("Failed to load pick classifier")
	}

	pred := predictor.New(predCfg, appLog)
	generator := markets.NewGenerator(genCfg, nil, clf, appLog)

	feed := datasource.NewFixtureFeed(&cfg.Feed, appLog)
	defer feed.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	var allHistory []*models.Match
	historyByComp := make(map[string][]*models.Match, len(competitions))
	upcomingByComp := make(map[string][]*models.Match, len(competitions))
	for _, comp := range competitions {
		window, err := feed.Matches(ctx, comp, now.AddDate(0, 0, -*historyDays), now, *forceRefresh)
		if err != nil {
			appLog.WithError(err).WithField("competition_id", comp).Fatal("Failed to fetch fixture history")
		}
		played := make([]*models.Match, 0, len(window))
		for _, m := range window {
			if m.IsPlayed() {
				played = append(played, m)
			}
		}
		historyByComp[comp] = played
		allHistory = append(allHistory, played...)

		upcoming, err := feed.Matches(ctx, comp, now, now.AddDate(0, 0, upcomingDays), *forceRefresh)
		if err != nil {
			appLog.WithError(err).WithField("competition_id", comp).Fatal("Failed to fetch upcoming fixtures")
		}
		upcomingByComp[comp] = upcoming
	}

	global := stats.ComputeLeagueAverages("", allHistory)

	shown := 0
	for _, comp := range competitions {
		history := historyByComp[comp]
		league := stats.ComputeLeagueAverages(comp, history)
		teamStats := make(map[string]*models.TeamStatistics)

		for _, match := range upcomingByComp[comp] {
			if match.IsPlayed() {
				continue
			}
			if !matchesFilter(match, *homeFilter, *awayFilter) {
				continue
			}

			home := cachedStats(teamStats, history, match.HomeTeam)
			away := cachedStats(teamStats, history, match.AwayTeam)

			prediction, err := pred.Predict(match, home, away, league, global)
			if err != nil {
				if errors.Is(err, models.ErrInsufficientData) {
					fmt.Printf("%s vs %s\n  insufficient history for a prediction (%d/%d matches)\n\n",
						match.HomeTeam, match.AwayTeam, home.MatchesPlayed, away.MatchesPlayed)
					shown++
				} else {
					appLog.WithError(err).WithFields(logrus.Fields{
						"home_team": match.HomeTeam,
						"away_team": match.AwayTeam,
					}).Warn("Prediction failed")
				}
				continue
			}

			picks := generator.GeneratePicks(match, home, away, league, prediction)
			printFixture(match, prediction, picks)
			shown++
		}
	}

	if shown == 0 {
		fmt.Println("No upcoming fixtures matched.")
	}
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

func matchesFilter(match *models.Match, home, away string) bool {
	if home != "" && !strings.Contains(strings.ToLower(match.HomeTeam), strings.ToLower(home)) {
		return false
	}
	if away != "" && !strings.Contains(strings.ToLower(match.AwayTeam), strings.ToLower(away)) {
		return false
	}
	return true
}

func cachedStats(cache map[string]*models.TeamStatistics, history []*models.Match, team string) *models.TeamStatistics {
	if ts, ok := cache[team]; ok {
		return ts
	}
	ts := stats.ComputeTeamStatistics(team, history)
	cache[team] = ts
	return ts
}

func printFixture(match *models.Match, pred *models.Prediction, picks []*models.SuggestedPick) {
	fmt.Printf("%s vs %s\n", match.HomeTeam, match.AwayTeam)
	fmt.Printf("  %s | %s\n", match.KickoffTime.Format("2006-01-02 15:04 MST"), match.CompetitionID)
	fmt.Printf("  1X2     home %.1f%%  draw %.1f%%  away %.1f%%\n", pred.HomeWin*100, pred.Draw*100, pred.AwayWin*100)
	fmt.Printf("  goals   xG %.2f-%.2f  over2.5 %.1f%%  btts %.1f%%\n",
		pred.ExpectedHomeGoals, pred.ExpectedAwayGoals, pred.Over25*100, pred.BTTS*100)
	fmt.Printf("  model   confidence %.2f  samples %d/%d\n", pred.Confidence, pred.HomeSampleSize, pred.AwaySampleSize)

	if len(picks) == 0 {
		fmt.Println("  no markets cleared the threshold")
	}
	for _, p := range picks {
		marker := " "
		if p.Recommended {
			marker = "*"
		}
		// Synthetic prices exist for ranking only; their EV is not quotable.
		ev := "ev=    --"
		if p.OddsSource == models.OddsSourceMarket {
			ev = fmt.Sprintf("ev=%+.3f", p.ExpectedValue)
		}
		fmt.Printf("  %s %-24s p=%.3f %s odds=%.2f stake=%.2f%% tier=%s\n",
			marker, p.Label, p.Probability, ev, p.Odds, p.StakeFraction*100, p.Tier)
	}
	fmt.Println()
}
