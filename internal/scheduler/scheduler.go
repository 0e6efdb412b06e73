package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultDailyReportSpec fires every day at 21:00.
const DefaultDailyReportSpec = "0 21 * * *"

var ErrNoReportFunction = errors.New("report function not set")

// Scheduler runs the operator's daily report on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
	log        *zap.Logger
}

func New(spec string, loc *time.Location, log *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultDailyReportSpec
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		return ErrNoReportFunction
	}
	if _, err := s.cron.AddFunc(s.spec, s.runReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

func (s *Scheduler) runReport() {
	s.log.Info("daily report triggered")
	if err := s.reportFunc(s.ctx); err != nil {
		s.log.Error("daily report failed", zap.Error(err))
	}
}

// Stop waits for a running report and cancels its context.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
