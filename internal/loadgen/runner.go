package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o644
	percentMultiplier   = 100
)

// Run checks the server, posts cfg.Count synthetic submissions with
// cfg.Workers concurrent requests and verifies that every accepted
// submission reached the feedback log.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg.applyDefaults()
	log := cfg.Logger
	stats := &Stats{StartTime: time.Now(), Sentiments: map[string]int{}}

	log.Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.health(ctx); err != nil {
		return stats, err
	}
	before, err := client.overview(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	subs, err := Generate(ctx, cfg.Count)
	if err != nil {
		return stats, err
	}
	stats.Generated = len(subs)

	if err := submitAll(ctx, cfg, client, subs, stats); err != nil {
		return stats, err
	}

	after, err := client.overview(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrVerification, err)
	}
	stats.LogTotal = after.Total
	if added := after.Total - before.Total; added != stats.Accepted {
		return stats, fmt.Errorf("%w: log grew by %d, %d submissions accepted", ErrVerification, added, stats.Accepted)
	}

	if cfg.OutputFile != "" {
		if err := saveSubmissions(cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, log, stats)
	return stats, nil
}

// submitAll posts subs concurrently. Individual failures are counted, not
// returned. Only cancellation stops the run early.
func submitAll(ctx context.Context, cfg Config, client *httpClient, subs []model.Submission, stats *Stats) error {
	var (
		submitted, accepted, rejected, failed int64
		escalated, tickets                    int64
		mu                                    sync.Mutex
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, sub := range subs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			outcome, resp, err := client.submit(gCtx, sub)
			atomic.AddInt64(&submitted, 1)
			switch outcome {
			case outcomeAccepted:
				atomic.AddInt64(&accepted, 1)
				if resp.Escalated {
					atomic.AddInt64(&escalated, 1)
				}
				if resp.Event.TicketID != "" {
					atomic.AddInt64(&tickets, 1)
				}
				mu.Lock()
				stats.Sentiments[resp.Event.Sentiment]++
				mu.Unlock()
			case outcomeRejected:
				atomic.AddInt64(&rejected, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
			if err != nil {
				cfg.Logger.Warn(gCtx, "submission failed", logger.Int("index", i), logger.Error(err))
			} else if cfg.Verbose {
				cfg.Logger.Info(gCtx, "submission accepted",
					logger.Int("index", i),
					logger.String("sentiment", resp.Event.Sentiment),
					logger.String("ticket", resp.Event.TicketID))
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Submitted = int(submitted)
	stats.Accepted = int(accepted)
	stats.Rejected = int(rejected)
	stats.Failed = int(failed)
	stats.Escalated = int(escalated)
	stats.Tickets = int(tickets)
	return err
}

// saveSubmissions writes the generated submissions as a JSON array.
func saveSubmissions(filename string, subs []model.Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}
	return os.WriteFile(filename, append(data, '\n'), filePermission)
}

func logFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percentMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("escalated", stats.Escalated),
		logger.Int("tickets", stats.Tickets),
		logger.Int("logTotal", stats.LogTotal),
		logger.Any("sentiments", stats.Sentiments),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
