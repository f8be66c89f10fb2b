package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/output"
	"recruitbot/pkg/logger"
)

const (
	DefaultManyRounds        = 3
	DefaultManyRoundInterval = 60 * time.Second
)

var ErrDispatcherClosed = errors.New("reminder: dispatcher is shut down")

// Escalator starts a brutal escalation for an event.
type Escalator interface {
	StartBrutalEscalation(ctx context.Context, event *entities.Event) error
}

// Dispatcher sends the reminder matching an event's tier. Every tier runs in
// the background; Dispatch only reports errors that happen before the work
// is handed off.
type Dispatcher struct {
	messenger     output.Messenger
	tr            output.T
	escalator     Escalator
	locale        string
	rounds        int
	roundInterval time.Duration
	log           *logrus.Entry

	mu     sync.Mutex
	tasks  map[uuid.UUID]context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithManyRounds(n int, interval time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.rounds = n
		d.roundInterval = interval
	}
}

func WithDispatcherLocale(locale string) DispatcherOption {
	return func(d *Dispatcher) { d.locale = locale }
}

func WithDispatcherLogger(log *logrus.Entry) DispatcherOption {
	return func(d *Dispatcher) { d.log = log }
}

func NewDispatcher(messenger output.Messenger, tr output.T, escalator Escalator, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		messenger:     messenger,
		tr:            tr,
		escalator:     escalator,
		locale:        DefaultLocale,
		rounds:        DefaultManyRounds,
		roundInterval: DefaultManyRoundInterval,
		log:           logger.For("Dispatcher"),
		tasks:         make(map[uuid.UUID]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, event *entities.Event) error {
	log := d.log.WithFields(logrus.Fields{"event_id": event.ID, "tier": event.Tier})
	ev := *event
	ev.Participants = append([]string(nil), event.Participants...)

	switch ev.Tier {
	case entities.TierBrutal:
		return d.escalator.StartBrutalEscalation(ctx, &ev)
	case entities.TierMany:
		log.Info("dispatching repeated reminder")
		return d.spawn(ctx, func(taskCtx context.Context) { d.runMany(taskCtx, &ev) })
	case entities.TierNormal:
	default:
		log.Warn("unknown tier, falling back to normal")
	}

	if len(ev.Participants) == 0 {
		log.Debug("no participants, nothing to send")
		return nil
	}
	log.Info("dispatching reminder")
	return d.spawn(ctx, func(taskCtx context.Context) {
		// A started fan-out is allowed to finish even during shutdown.
		d.directFanOut(context.WithoutCancel(taskCtx), &ev, "reminder.normal.dm", eventData(&ev))
	})
}

func (d *Dispatcher) spawn(ctx context.Context, fn func(context.Context)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	id := uuid.New()
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.tasks[id] = cancel
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.finish(id)
		fn(taskCtx)
	}()
	return nil
}

func (d *Dispatcher) finish(id uuid.UUID) {
	d.mu.Lock()
	cancel := d.tasks[id]
	delete(d.tasks, id)
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (d *Dispatcher) runMany(ctx context.Context, ev *entities.Event) {
	log := d.log.WithField("event_id", ev.ID)
	for round := 1; round <= d.rounds; round++ {
		if round > 1 {
			t := time.NewTimer(d.roundInterval)
			select {
			case <-ctx.Done():
				t.Stop()
				log.WithField("round", round).Debug("repeated reminder cancelled")
				return
			case <-t.C:
			}
		}

		data := eventData(ev)
		data["Mentions"] = mentions(ev.Participants)
		data["Round"] = round
		data["Rounds"] = d.rounds
		roundCtx := context.WithoutCancel(ctx)
		err := d.messenger.SendChannelMessage(roundCtx, ev.ChannelID, d.tr.T(d.locale, "reminder.many.channel", data))
		logDelivery(log, err, "")
		d.directFanOut(roundCtx, ev, "reminder.many.dm", data)
	}
}

func (d *Dispatcher) directFanOut(ctx context.Context, ev *entities.Event, key string, data map[string]any) {
	log := d.log.WithField("event_id", ev.ID)
	content := d.tr.T(d.locale, key, data)
	for _, u := range ev.Participants {
		logDelivery(log, d.messenger.SendDirectMessage(ctx, u, content, nil), u)
	}
}

// InFlight returns the number of background tasks still running.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// Shutdown cancels every in-flight task and waits for them to return.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	for _, cancel := range d.tasks {
		cancel()
	}
	d.mu.Unlock()
	return waitGroup(ctx, &d.wg)
}
