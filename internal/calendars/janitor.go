package calendars

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes categories and days whose calendar is gone.
// Days of live calendars are never touched, so day ids stay valid.
type Janitor struct {
	svc     *Service
	log     *slog.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewJanitor schedules SweepOrphans on schedule, a standard 5-field cron
// expression or a descriptor such as "@daily".
func NewJanitor(svc *Service, schedule string, log *slog.Logger) (*Janitor, error) {
	j := &Janitor{
		svc:     svc,
		log:     log,
		cron:    cron.New(),
		timeout: time.Minute,
	}
	if _, err := j.cron.AddFunc(schedule, j.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	return j, nil
}

// RunOnce sweeps orphans now.
func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.svc.SweepOrphans(ctx)
	if err != nil {
		j.log.Error("failed to sweep orphans", "error", err)
		return
	}
	if n > 0 {
		j.log.Info("swept orphans", "count", n)
	}
}

func (j *Janitor) Start() { j.cron.Start() }

// Stop waits for a running sweep to finish or ctx to expire.
func (j *Janitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}
