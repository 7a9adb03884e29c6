package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yourusername/footy-better/internal/models"
)

const summaryMarketRows = 8

// Summary formats a finished run for terminal output.
func Summary(result *models.TrainingResult) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Run: %s\n", result.RunID))
	builder.WriteString(fmt.Sprintf("Competitions: %s\n", strings.Join(result.CompetitionIDs, ", ")))
	builder.WriteString(fmt.Sprintf("Window: %s to %s\n",
		result.StartDay.Format("2006-01-02"), result.EndDay.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Matches Processed: %d\n", result.MatchesProcessed))
	builder.WriteString(fmt.Sprintf("Bets Placed: %d (W %d / L %d / V %d)\n",
		result.BetCount, result.Wins, result.Losses, result.Voids))
	builder.WriteString(fmt.Sprintf("Accuracy: %.2f%%\n", result.Accuracy()*100))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", result.ROI()*100))
	builder.WriteString(fmt.Sprintf("Profit: %+.2f units\n", result.ProfitUnits()))

	if result.Classifier.Trained {
		builder.WriteString(fmt.Sprintf("Classifier: trained on %d samples (%.2f%% train accuracy)\n",
			result.Classifier.Samples, result.Classifier.TrainAccuracy*100))
	} else {
		reason := result.Classifier.SkipReason
		if reason == "" {
			reason = "not trained"
		}
		builder.WriteString(fmt.Sprintf("Classifier: %s\n", reason))
	}

	if rows := topMarkets(result.MarketEfficiency, summaryMarketRows); len(rows) > 0 {
		builder.WriteString("\nMarket Efficiency\n")
		builder.WriteString("-----------------\n")
		for _, eff := range rows {
			builder.WriteString(fmt.Sprintf("%-28s bets %3d  hit %5.1f%%  roi %+6.1f%%\n",
				eff.MarketKey, eff.Bets, eff.HitRate()*100, eff.ROI()*100))
		}
	}
	return builder.String()
}

// WriteJSON writes the full TrainingResult artifact, indented for humans.
func WriteJSON(result *models.TrainingResult, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal training result: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// WriteROICurveCSV exports the day-indexed ROI evolution for spreadsheets.
func WriteROICurveCSV(result *models.TrainingResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	var builder strings.Builder
	builder.WriteString("day,matches,bets,staked,returned,cumulative_roi\n")
	for _, point := range result.ROICurve {
		builder.WriteString(fmt.Sprintf("%s,%d,%d,%.4f,%.4f,%.6f\n",
			point.Day.Format("2006-01-02"), point.Matches, point.Bets,
			point.Staked, point.Returned, point.CumulativeROI))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}

func topMarkets(efficiency map[string]*models.MarketEfficiency, limit int) []*models.MarketEfficiency {
	rows := make([]*models.MarketEfficiency, 0, len(efficiency))
	for _, eff := range efficiency {
		if eff != nil && eff.Bets > 0 {
			rows = append(rows, eff)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Bets != rows[j].Bets {
			return rows[i].Bets > rows[j].Bets
		}
		return rows[i].MarketKey < rows[j].MarketKey
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
