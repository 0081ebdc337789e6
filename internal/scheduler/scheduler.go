package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"postdigest/internal/monitor"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	refreshTimeout        = 15 * time.Minute
)

// Refresher is the action run on every tick.
type Refresher interface {
	Refresh(ctx context.Context) monitor.RefreshResult
}

type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	spec      string
	refresher Refresher
	log       *slog.Logger
}

func New(ctx context.Context, spec string, refresher Refresher, log *slog.Logger) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("schedule spec is empty")
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse schedule spec: %w", err)
	}

	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		spec:      spec,
		refresher: refresher,
		log:       log,
	}, nil
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return err
	}

	s.cron.Start()

	s.log.InfoContext(s.ctx, "Scheduler is started",
		"spec", s.spec)

	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(s.ctx, refreshTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	result := s.refresher.Refresh(ctx)
	if result.SourceErr != nil {
		s.log.ErrorContext(ctx, "Failed to refresh posts",
			"error", result.SourceErr)
		return
	}

	s.log.InfoContext(ctx, "Posts are refreshed",
		"visible", result.Visible,
		"excluded", result.Excluded,
		"expired", result.Expired)
}
