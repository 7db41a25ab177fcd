package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/lofarb/fund-monitor/internal/monitor"
)

// Scheduler fires the monitoring orchestrator on a fixed interval.
// One instance is constructed at process startup, started once, and
// stopped once at shutdown.
type Scheduler struct {
	cron *cron.Cron
	orch *monitor.Orchestrator
	ctx  context.Context
}

// New creates a scheduler bound to the given orchestrator.
func New(ctx context.Context, orch *monitor.Orchestrator) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		orch: orch,
		ctx:  ctx,
	}
}

// Register adds the monitoring job with the given cron spec, e.g.
// "@every 7m".
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runMonitor); err != nil {
		return fmt.Errorf("register monitor job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("scheduler stopped")
}

func (s *Scheduler) runMonitor() {
	if err := s.orch.RunOnce(s.ctx); err != nil {
		log.Printf("monitor run: %v", err)
	}
}
