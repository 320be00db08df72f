package server

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	errs "github.com/chatkurd/chatkurd/internal/errors"
)

// Upstream status values reported by the health endpoint.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusUnknown  = "unknown"
)

// Pinger verifies a credential against the upstream API.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe periodically verifies the configured API credentials so the health
// endpoint can report upstream state without spending a generation call.
// Status is "ok" when at least one credential works, "degraded" when none
// do, and "unknown" until the first check completes.
type Probe struct {
	scheduler gocron.Scheduler
	clients   []Pinger
	interval  time.Duration
	log       *slog.Logger
	status    atomic.Value
}

func NewProbe(clients []Pinger, interval time.Duration, log *slog.Logger) (*Probe, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errs.NewConfigError("failed to create probe scheduler", err)
	}

	p := &Probe{
		scheduler: s,
		clients:   clients,
		interval:  interval,
		log:       log.With("component", "upstream_probe"),
	}
	p.status.Store(StatusUnknown)

	return p, nil
}

// Start runs the first check immediately, then repeats on the configured
// interval until Stop is called.
func (p *Probe) Start(ctx context.Context) error {
	_, err := p.scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(p.check, ctx),
		gocron.WithName("upstream_probe"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return errs.NewConfigError("failed to schedule upstream probe", err)
	}

	p.scheduler.Start()
	p.log.InfoContext(ctx, "upstream probe started", "interval", p.interval)

	return nil
}

// Stop shuts the scheduler down, waiting for a running check to finish.
func (p *Probe) Stop() error {
	if err := p.scheduler.Shutdown(); err != nil {
		return errs.NewConfigError("failed to shut down probe scheduler", err)
	}
	return nil
}

// Status returns the most recent probe result.
func (p *Probe) Status() string {
	return p.status.Load().(string)
}

func (p *Probe) check(ctx context.Context) {
	healthy := 0
	for i, c := range p.clients {
		if err := c.Ping(ctx); err != nil {
			p.log.WarnContext(ctx, "credential check failed", "client", i, "error", err)
			continue
		}
		healthy++
	}

	status := StatusOK
	if healthy == 0 {
		status = StatusDegraded
	}

	previous := p.status.Swap(status)
	if previous != status {
		p.log.InfoContext(ctx, "upstream status changed", "from", previous, "to", status,
			"healthy", healthy, "total", len(p.clients))
	}
}
