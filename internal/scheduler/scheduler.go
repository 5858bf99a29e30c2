// Package scheduler wires up the cron job that periodically runs the fetch
// pipeline for every user with active alerts.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobdash/alerts-service/internal/runner"
	"jobdash/alerts-service/internal/store"
)

// Scheduler wraps robfig/cron and manages the periodic run sweep.
type Scheduler struct {
	cron   *cron.Cron
	store  *store.Postgres
	runner *runner.Runner
	spec   string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(st *store.Postgres, rn *runner.Runner, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:  st,
		runner: rn,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so fresh installs see matches without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSweep runs the pipeline once per user with active alerts.
func (s *Scheduler) runSweep(ctx context.Context) {
	log.Println("[scheduler] Run sweep started")

	userIDs, err := s.store.ActiveUserIDs(ctx)
	if err != nil {
		log.Printf("[scheduler] ActiveUserIDs error: %v", err)
		return
	}
	if len(userIDs) == 0 {
		log.Println("[scheduler] No users with active alerts — nothing to run")
		return
	}

	log.Printf("[scheduler] Running pipeline for %d user(s)", len(userIDs))
	for _, userID := range userIDs {
		alerts, err := s.store.ActiveAlerts(ctx, userID)
		if err != nil {
			log.Printf("[scheduler] ActiveAlerts error for user %s: %v", userID, err)
			continue
		}
		summary, err := s.runner.Run(ctx, userID, alerts)
		if err != nil {
			log.Printf("[scheduler] Run error for user %s: %v", userID, err)
			continue
		}
		log.Printf("[scheduler] User %s — fetched=%d new=%d saved=%d",
			userID, summary.JobsFetched, summary.NewListings, summary.MatchesSaved)
	}

	log.Println("[scheduler] Run sweep complete")
}
