package seed

import (
	"context"
	"fmt"

	"github.com/armandov/sellerpulse/pkg/logger"
)

const podiumSize = 3

// verifyResults checks the forecast and race responses for internal
// consistency.
func verifyResults(ctx context.Context, config *Config, summary ForecastSummary, raceRows []RaceRow) error {
	logger.Get().Info(ctx, "verifying results")

	if len(summary.Sellers) == 0 {
		return fmt.Errorf("forecast lists no sellers")
	}
	if summary.TotalPipeline <= 0 {
		return fmt.Errorf("forecast reports no pipeline value")
	}

	// Sellers should be ordered by raw pipeline, largest first.
	for i := 1; i < len(summary.Sellers); i++ {
		if summary.Sellers[i].Pipeline > summary.Sellers[i-1].Pipeline {
			return fmt.Errorf("forecast sellers not sorted: row %d above row %d", i, i-1)
		}
	}

	// Adjusted value can never exceed the raw pipeline for a 0-100 score.
	for _, s := range summary.Sellers {
		if s.Score >= 0 && s.Score <= 100 && s.Adjusted > s.Pipeline {
			return fmt.Errorf("seller %s adjusted %.2f exceeds pipeline %.2f", s.SellerID, s.Adjusted, s.Pipeline)
		}
	}

	if err := verifyRace(raceRows); err != nil {
		return err
	}

	displayTopSellers(ctx, summary, raceRows, config.Verbose)
	logger.Get().Info(ctx, "result verification completed")
	return nil
}

// verifyRace checks competition-ranking invariants on the race rows.
func verifyRace(rows []RaceRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("race lists no sellers")
	}

	for i := 1; i < len(rows); i++ {
		if rows[i].Value > rows[i-1].Value {
			return fmt.Errorf("race not sorted: row %d has higher value than row %d", i, i-1)
		}
		if rows[i].Rank < rows[i-1].Rank {
			return fmt.Errorf("race ranks not monotone: row %d ranked above row %d", i, i-1)
		}
		if rows[i].Value == rows[i-1].Value && rows[i].Rank != rows[i-1].Rank {
			return fmt.Errorf("tied values ranked differently at rows %d and %d", i-1, i)
		}
	}

	for i, row := range rows {
		if row.Medal != "" && row.Rank > podiumSize {
			return fmt.Errorf("row %d has a medal at rank %d", i, row.Rank)
		}
	}
	return nil
}

// displayTopSellers logs the podium from both views.
func displayTopSellers(ctx context.Context, summary ForecastSummary, raceRows []RaceRow, verbose bool) {
	top := podiumSize
	if len(summary.Sellers) < top {
		top = len(summary.Sellers)
	}
	for i := 0; i < top; i++ {
		s := summary.Sellers[i]
		logger.Get().Info(ctx, "forecast top seller",
			logger.Int("position", i+1),
			logger.String("name", s.Name),
			logger.Float64("pipeline", s.Pipeline),
			logger.Float64("adjusted", s.Adjusted),
			logger.Float64("reliability", s.Score))
	}

	raceTop := podiumSize
	if len(raceRows) < raceTop {
		raceTop = len(raceRows)
	}
	for i := 0; i < raceTop; i++ {
		row := raceRows[i]
		logger.Get().Info(ctx, "race podium",
			logger.Int("rank", row.Rank),
			logger.String("name", row.Item.Name),
			logger.Float64("value", row.Value),
			logger.String("medal", row.Medal))
	}

	if verbose {
		logger.Get().Info(ctx, "forecast totals",
			logger.Float64("totalPipeline", summary.TotalPipeline),
			logger.Float64("adjustedForecast", summary.AdjustedForecast),
			logger.Int("activeCount", summary.ActiveCount))
	}
}
