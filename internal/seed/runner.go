package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/armandov/sellerpulse/pkg/logger"
)

// processingDelay gives the ingestion workers time to drain the queue
// before the read endpoints are checked.
const processingDelay = 2 * time.Second

// Run executes the complete seed-and-verify cycle.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting sellerpulse seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sellers", config.Sellers),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate records
	deals, meetings := generateRecords(ctx, config, stats)

	// Step 3: Submit records concurrently
	if err := submitRecords(ctx, config, deals, meetings, stats); err != nil {
		return fmt.Errorf("record submission failed: %w", err)
	}

	// Step 4: Wait for processing
	logger.Get().Info(ctx, "waiting for records to be processed")
	time.Sleep(processingDelay)

	// Step 5: Fetch the forecast and the race
	client := newHTTPClient(config.Timeout)

	var summary ForecastSummary
	if err := client.getJSON(ctx, config.BaseURL+"/forecast", &summary); err != nil {
		return fmt.Errorf("forecast retrieval failed: %w", err)
	}

	var raceRows []RaceRow
	if err := client.getJSON(ctx, config.BaseURL+"/race?metric=won", &raceRows); err != nil {
		return fmt.Errorf("race retrieval failed: %w", err)
	}

	// Step 6: Verify results
	if err := verifyResults(ctx, config, summary, raceRows); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Any 200 is healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, recordsPerSecond float64

	if stats.RecordsSubmitted > 0 {
		successRate = float64(stats.RecordsSuccessful) / float64(stats.RecordsSubmitted) * 100
	}
	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.RecordsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("recordsSubmitted", stats.RecordsSubmitted),
		logger.Int("recordsSuccessful", stats.RecordsSuccessful),
		logger.Int("recordsDuplicate", stats.RecordsDuplicate),
		logger.Int("recordsFailed", stats.RecordsFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("recordsPerSecond", recordsPerSecond))
}
