// Package seedgen generates a deterministic synthetic population of
// students, competitions and scored match events, loads it through the
// service's public API and verifies the aggregation views against it.
package seedgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/agonhq/agon/pkg/logger"
)

// Polling configuration for waiting on asynchronous ingestion.
const (
	processingPollInterval = 200 * time.Millisecond
	processingWaitBudget   = 30 * time.Second
)

// Run executes a complete seed-and-verify cycle.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("students", cfg.NumStudents),
		logger.Int("competitions", cfg.NumCompetitions),
		logger.Int64("seed", cfg.Seed),
		logger.Int("workers", cfg.Workers),
	)

	client := newHTTPClient(cfg.Timeout)

	if err := checkServiceHealth(ctx, client, cfg); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	population := Generate(cfg)
	stats.EventsGenerated = len(population.Events)
	logger.Get().Info(ctx, "population generated",
		logger.Int("students", len(population.Students)),
		logger.Int("competitions", len(population.Competitions)),
		logger.Int("events", len(population.Events)),
	)

	if err := submitCompetitions(ctx, client, cfg, population.Competitions); err != nil {
		return fmt.Errorf("competition load failed: %w", err)
	}
	if err := submitEvents(ctx, client, cfg, population.Events, stats); err != nil {
		return fmt.Errorf("event submission failed: %w", err)
	}

	// Count expected matches per competition and per student.
	perCompetition := make(map[int64]int)
	perStudent := make(map[int64]int)
	for _, e := range population.Events {
		perCompetition[e.Recommendation.CompetitionID]++
		perStudent[e.Student.ID]++
	}

	if err := waitForProcessing(ctx, client, cfg, population.Competitions[0].ID, perCompetition[population.Competitions[0].ID]); err != nil {
		return err
	}

	for _, comp := range population.Competitions {
		if err := verifyCompetitionView(ctx, client, cfg, comp, perCompetition[comp.ID]); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		stats.ViewsVerified++
	}
	sample := population.Students[0]
	if err := verifyStudentView(ctx, client, cfg, sample.ID, perStudent[sample.ID]); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	stats.ViewsVerified++

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is reachable.
func checkServiceHealth(ctx context.Context, client *HTTPClient, cfg *Config) error {
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// waitForProcessing polls one competition view until the asynchronous
// ingestion catches up with the submitted events.
func waitForProcessing(ctx context.Context, client *HTTPClient, cfg *Config, competitionID int64, expected int) error {
	deadline := time.Now().Add(processingWaitBudget)
	for {
		out, err := fetchCompetitionView(ctx, client, cfg, competitionID, 1, 1)
		if err == nil && out.Pagination.Total >= expected {
			return nil
		}
		if time.Now().After(deadline) {
			total := -1
			if err == nil {
				total = out.Pagination.Total
			}
			return fmt.Errorf("ingestion did not catch up: competition %d has %d of %d matches", competitionID, total, expected)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for ingestion: %w", ctx.Err())
		case <-time.After(processingPollInterval):
		}
	}
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsSuccessful", stats.EventsSuccessful),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("viewsVerified", stats.ViewsVerified),
		logger.String("duration", stats.Duration.String()),
	)
}
