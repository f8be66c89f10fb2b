package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/output"
	"recruitbot/pkg/logger"
)

const DefaultScanInterval = 60 * time.Second

// EventDispatcher hands a due event to the reminder tiers.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *entities.Event) error
}

// ScanReport summarizes one tick.
type ScanReport struct {
	Dispatched int
	Missed     int
	Failed     int
}

// Scanner looks for events entering their reminder window once per
// interval and dispatches each of them at most once.
type Scanner struct {
	repo       output.EventRepository
	dispatcher EventDispatcher
	interval   time.Duration
	now        func() time.Time
	log        *logrus.Entry

	mu   sync.Mutex
	cron *cron.Cron
}

type ScannerOption func(*Scanner)

func WithScanInterval(d time.Duration) ScannerOption {
	return func(s *Scanner) { s.interval = d }
}

func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) { s.now = now }
}

func WithScannerLogger(log *logrus.Entry) ScannerOption {
	return func(s *Scanner) { s.log = log }
}

func NewScanner(repo output.EventRepository, dispatcher EventDispatcher, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		repo:       repo,
		dispatcher: dispatcher,
		interval:   DefaultScanInterval,
		now:        time.Now,
		log:        logger.For("Scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start waits for ready to close, then schedules a tick every interval.
// It returns early with ctx's error if ctx ends first.
func (s *Scanner) Start(ctx context.Context, ready <-chan struct{}) error {
	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	cronLog := cron.PrintfLogger(s.log)
	c := cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		report := s.Tick(ctx)
		if report != (ScanReport{}) {
			s.log.WithFields(logrus.Fields{
				"dispatched": report.Dispatched,
				"missed":     report.Missed,
				"failed":     report.Failed,
			}).Info("scan finished")
		}
	}))

	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return errors.New("reminder: scanner already started")
	}
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.log.WithField("interval", s.interval).Info("scanner started")
	return nil
}

// Stop halts the schedule and waits for a running tick to complete.
func (s *Scanner) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("scanner stopped")
}

// Tick runs one scan. Failures are confined to the event that caused them.
func (s *Scanner) Tick(ctx context.Context) ScanReport {
	var report ScanReport
	events, err := s.repo.ListDueEvents(ctx)
	if err != nil {
		s.log.WithError(err).Error("list due events failed")
		report.Failed++
		return report
	}

	now := s.now()
	for i := range events {
		if ctx.Err() != nil {
			return report
		}
		outcome, err := s.scanEvent(ctx, &events[i], now)
		switch {
		case err != nil:
			report.Failed++
			s.log.WithError(err).WithField("event_id", events[i].ID).Error("scan event failed")
		case outcome == outcomeDispatched:
			report.Dispatched++
		case outcome == outcomeMissed:
			report.Missed++
		}
	}
	return report
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeDispatched
	outcomeMissed
)

func (s *Scanner) scanEvent(ctx context.Context, ev *entities.Event, now time.Time) (out outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	minutes, err := s.repo.GetGuildNotifyMinutes(ctx, ev.GuildID)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("get notify minutes: %w", err)
	}
	remaining := ev.StartAt.Sub(now)
	threshold := time.Duration(minutes) * time.Minute

	if remaining <= 0 {
		if err := s.repo.MarkNotified(ctx, ev.ID); err != nil {
			return outcomeSkipped, err
		}
		s.log.WithField("event_id", ev.ID).Info("start time passed before reminder, marked notified")
		return outcomeMissed, nil
	}
	if remaining > threshold {
		return outcomeSkipped, nil
	}

	full, err := s.repo.Get(ctx, ev.ID)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("load event: %w", err)
	}
	if err := s.dispatcher.Dispatch(ctx, full); err != nil {
		if !errors.Is(err, domain.ErrEscalationActive) {
			return outcomeSkipped, fmt.Errorf("dispatch: %w", err)
		}
		s.log.WithField("event_id", ev.ID).Warn("escalation already running, marking notified")
	}
	if err := s.repo.MarkNotified(ctx, ev.ID); err != nil {
		return outcomeSkipped, err
	}
	return outcomeDispatched, nil
}
