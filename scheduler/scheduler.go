// Package scheduler runs configured sweep rules on cron schedules.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bucketsweep/bucketsweep/config"
	"github.com/bucketsweep/bucketsweep/deleter"
	"github.com/bucketsweep/bucketsweep/models"
	"github.com/bucketsweep/bucketsweep/provider"
	"github.com/bucketsweep/bucketsweep/scanner"
)

// Scheduler wires sweep rules to a cron runner. Each scheduled rule
// scans and deletes without interactive confirmation; dry-run rules
// only report.
type Scheduler struct {
	provider  provider.StorageProvider
	batchSize int
	cron      *cron.Cron
	log       *slog.Logger
}

// New creates a Scheduler deleting through the given provider.
func New(p provider.StorageProvider, batchSize int) *Scheduler {
	return &Scheduler{
		provider:  p,
		batchSize: batchSize,
		cron:      cron.New(),
		log:       slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger the scheduler emits events to.
func (s *Scheduler) SetLogger(log *slog.Logger) {
	s.log = log
}

// Add registers a rule. Rules without a schedule are rejected by cron's
// expression parser.
func (s *Scheduler) Add(ctx context.Context, rule config.Rule) error {
	_, err := s.cron.AddFunc(rule.Schedule, func() {
		s.runRule(ctx, rule)
	})
	return err
}

// Start begins executing schedules and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.log.Info("scheduler_started")
	<-ctx.Done()
	s.Stop()
}

// Stop halts the cron runner, waiting for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler_stopped")
}

// runRule executes one scheduled sweep end to end.
func (s *Scheduler) runRule(ctx context.Context, rule config.Rule) {
	log := s.log.With(slog.String("rule", rule.Name))
	log.Info("scheduled_sweep_started")

	cutoff := time.Now().UTC().AddDate(0, 0, -rule.MaxAgeDays)

	sc := scanner.New(s.provider)
	sc.SetLogger(log)
	it, err := sc.Scan(ctx, models.DeletionFilter{
		BucketPattern: rule.BucketPattern,
		FilePattern:   rule.FilePattern,
		Before:        cutoff,
		Provider:      s.provider.Name(),
	})
	if err != nil {
		log.Error("scheduled_sweep_failed", slog.String("error", err.Error()))
		return
	}

	files, err := it.Collect()
	if err != nil {
		log.Error("scheduled_sweep_failed", slog.String("error", err.Error()))
		return
	}

	d := deleter.New(s.provider,
		deleter.WithBatchSize(s.batchSize),
		deleter.WithDryRun(rule.DryRun),
		deleter.WithLogger(log),
	)

	success, failed := 0, 0
	results := d.Delete(ctx, files, true)
	for {
		r, ok := results.Next()
		if !ok {
			break
		}
		if r.Success {
			success++
		} else {
			failed++
		}
	}

	log.Info("scheduled_sweep_completed",
		slog.Int("success", success),
		slog.Int("failed", failed),
		slog.Bool("dry_run", rule.DryRun))
}
