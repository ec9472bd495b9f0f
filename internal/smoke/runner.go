package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/roster/pkg/logger"
)

// PercentageMultiplier converts ratios to percentages in reports.
const PercentageMultiplier = 100

// Run executes every check against cfg.BaseURL and stops at the first
// violated property.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	defer func() {
		stats.Requests = client.requests.Load()
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	log := logger.Get().Named("smoke")
	log.Info(ctx, "starting roster smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("members", cfg.NumMembers),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	step := func(name string, fn func() error) error {
		if err := fn(); err != nil {
			log.Error(ctx, "check failed", logger.String("check", name), logger.Error(err))
			return fmt.Errorf("%s: %w", name, err)
		}
		stats.ChecksPassed++
		if cfg.Verbose {
			log.Info(ctx, "check passed", logger.String("check", name))
		}
		return nil
	}

	if err := step("health", func() error { return checkHealth(ctx, client) }); err != nil {
		return stats, err
	}

	var created []member
	err := step("distinct ids", func() error {
		var err error
		created, err = createConcurrently(ctx, cfg, client, generateMembers(cfg.NumMembers), stats)
		return err
	})
	if !cfg.KeepData {
		defer cleanup(ctx, client, created, stats)
	}
	if err != nil {
		return stats, err
	}
	if len(created) == 0 {
		return stats, fmt.Errorf("%w: no members created, raise -members", ErrPropertyViolated)
	}

	probe := created[0]
	absent := highestID(created) + absentIDOffset

	checks := []struct {
		name string
		fn   func() error
	}{
		{"round trip", func() error { return checkRoundTrip(ctx, client, probe) }},
		{"patch keeps fields", func() error { return checkPatchKeepsFields(ctx, client, probe) }},
		{"not found", func() error { return checkNotFound(ctx, client, absent) }},
		{"empty create rejected", func() error { return checkEmptyRejected(ctx, client) }},
		{"upsert", func() error { return checkUpsert(ctx, client, absent, probe.memberInput) }},
		{"idempotent delete", func() error { return checkDeleteIdempotent(ctx, client, absent) }},
	}
	for _, c := range checks {
		if err := step(c.name, c.fn); err != nil {
			return stats, err
		}
	}

	log.Info(ctx, "smoke test completed successfully", logger.Int("checks", stats.ChecksPassed))
	return stats, nil
}

// cleanup deletes members created by the run.
func cleanup(ctx context.Context, c *HTTPClient, created []member, stats *Stats) {
	for _, m := range created {
		if err := c.expect(ctx, http.MethodDelete, memberPath(m.ID), nil, http.StatusNoContent, nil); err != nil {
			logger.Get().Warn(ctx, "cleanup failed", logger.Int("id", m.ID), logger.Error(err))
			continue
		}
		stats.MembersDeleted++
	}
}

func highestID(members []member) int {
	high := 0
	for _, m := range members {
		high = max(high, m.ID)
	}
	return high
}

// DisplayStats logs the final run statistics.
func DisplayStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64

	if attempted := stats.MembersCreated + stats.CreateFailures; attempted > 0 {
		successRate = float64(stats.MembersCreated) / float64(attempted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("requests", int(stats.Requests)),
		logger.Int("membersCreated", stats.MembersCreated),
		logger.Int("createFailures", stats.CreateFailures),
		logger.Int("membersDeleted", stats.MembersDeleted),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("createSuccessRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
