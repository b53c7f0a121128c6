package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

// Sweeper periodically removes old finished sessions on a cron schedule.
type Sweeper struct {
	registry *Registry
	maxAge   time.Duration
	cron     *cron.Cron
	logger   infralogger.Logger
}

// NewSweeper schedules sweeps with a standard five-field cron expression.
func NewSweeper(registry *Registry, schedule string, maxAge time.Duration, logger infralogger.Logger) (*Sweeper, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	s := &Sweeper{registry: registry, maxAge: maxAge, cron: c, logger: logger}
	if _, err := c.AddFunc(schedule, s.Run); err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run performs one sweep.
func (s *Sweeper) Run() {
	removed := s.registry.Sweep(s.maxAge)
	if removed > 0 {
		s.logger.Info("Swept finished sessions",
			infralogger.Int("removed", removed),
			infralogger.Int("remaining", s.registry.Len()),
		)
	}
}

// Start begins the schedule.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("Session sweeper started", infralogger.Duration("max_age", s.maxAge))
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Session sweeper stopped")
}
