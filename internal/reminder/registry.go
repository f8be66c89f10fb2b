package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"recruitbot/internal/challenge"
	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/input"
	"recruitbot/internal/ports/output"
	"recruitbot/pkg/logger"
)

const (
	DefaultSpamInterval = 2 * time.Second
	noticeTimeout       = 10 * time.Second
	imageName           = "challenge.png"
	maxCodeAttempts     = 32
)

var ErrRegistryClosed = errors.New("reminder: escalation registry is shut down")

type stopReason int

const (
	stopCancelled stopReason = iota
	stopResolved
)

type session struct {
	event     entities.Event
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	mu        sync.Mutex
	remaining map[string]struct{}
	codes     map[string]string
	images    map[string][]byte
	reason    stopReason
}

// remainingUsers returns the unresolved participants in roster order.
func (s *session) remainingUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.remaining))
	for _, u := range s.event.Participants {
		if _, ok := s.remaining[u]; ok {
			out = append(out, u)
		}
	}
	return out
}

// SessionInfo describes an active escalation.
type SessionInfo struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	ChannelID string    `json:"channel_id"`
	Remaining int       `json:"remaining"`
	StartedAt time.Time `json:"started_at"`
}

// Registry owns every running brutal escalation, keyed by event ID.
// The table lock only guards lookup, insert and delete. Each session has its
// own lock for remaining and codes, and the two are never held together.
type Registry struct {
	messenger output.Messenger
	tr        output.T
	locale    string
	interval  time.Duration
	codeLen   int
	generate  func(int) (string, error)
	render    func(string) ([]byte, error)
	log       *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
	wg       sync.WaitGroup
}

type RegistryOption func(*Registry)

func WithSpamInterval(d time.Duration) RegistryOption {
	return func(r *Registry) { r.interval = d }
}

func WithCodeLength(n int) RegistryOption {
	return func(r *Registry) { r.codeLen = n }
}

func WithCodeGenerator(fn func(int) (string, error)) RegistryOption {
	return func(r *Registry) { r.generate = fn }
}

func WithRenderer(fn func(string) ([]byte, error)) RegistryOption {
	return func(r *Registry) { r.render = fn }
}

func WithRegistryLocale(locale string) RegistryOption {
	return func(r *Registry) { r.locale = locale }
}

func WithRegistryLogger(log *logrus.Entry) RegistryOption {
	return func(r *Registry) { r.log = log }
}

func NewRegistry(messenger output.Messenger, tr output.T, opts ...RegistryOption) *Registry {
	r := &Registry{
		messenger: messenger,
		tr:        tr,
		locale:    DefaultLocale,
		interval:  DefaultSpamInterval,
		codeLen:   challenge.DefaultLength,
		generate:  challenge.Generate,
		render:    challenge.Render,
		log:       logger.For("Escalation"),
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartBrutalEscalation issues a code to every participant of event and
// starts the spam loop. It returns domain.ErrEscalationActive when the event
// already has a session and does nothing when the roster is empty.
func (r *Registry) StartBrutalEscalation(ctx context.Context, event *entities.Event) error {
	log := r.log.WithField("event_id", event.ID)
	if len(event.Participants) == 0 {
		log.Debug("no participants, escalation skipped")
		return nil
	}

	s, err := r.newSession(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRegistryClosed
	}
	if _, ok := r.sessions[event.ID]; ok {
		r.mu.Unlock()
		return domain.ErrEscalationActive
	}
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	r.sessions[event.ID] = s
	r.wg.Add(1)
	r.mu.Unlock()

	log.WithField("participants", len(s.remaining)).Info("brutal escalation started")
	go r.run(taskCtx, s)
	return nil
}

func (r *Registry) newSession(event *entities.Event) (*session, error) {
	s := &session{
		event:     *event,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		remaining: make(map[string]struct{}),
		codes:     make(map[string]string),
		images:    make(map[string][]byte),
	}
	s.event.Participants = nil
	used := make(map[string]struct{})
	for _, u := range event.Participants {
		if _, dup := s.remaining[u]; dup {
			continue
		}
		code, err := r.uniqueCode(used)
		if err != nil {
			return nil, err
		}
		used[code] = struct{}{}
		s.remaining[u] = struct{}{}
		s.codes[u] = code
		s.event.Participants = append(s.event.Participants, u)

		img, err := r.render(code)
		if err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{"event_id": event.ID, "user_id": u}).
				Warn("challenge image render failed, code will be sent as text")
			continue
		}
		s.images[u] = img
	}
	return s, nil
}

func (r *Registry) uniqueCode(used map[string]struct{}) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		c, err := r.generate(r.codeLen)
		if err != nil {
			return "", err
		}
		if _, taken := used[c]; !taken {
			return c, nil
		}
	}
	return "", errors.New("reminder: could not generate a unique challenge code")
}

func (r *Registry) run(ctx context.Context, s *session) {
	defer r.wg.Done()
	defer close(s.done)

	r.initialFanOut(ctx, s)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			r.spamRound(ctx, s)
		}
	}

	s.mu.Lock()
	reason := s.reason
	s.mu.Unlock()

	key := "escalation.stopped.channel"
	if reason == stopResolved {
		key = "escalation.resolved.channel"
	}
	noticeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), noticeTimeout)
	defer cancel()
	err := r.messenger.SendChannelMessage(noticeCtx, s.event.ChannelID, r.tr.T(r.locale, key, eventData(&s.event)))
	logDelivery(r.log.WithField("event_id", s.event.ID), err, "")
	r.log.WithField("event_id", s.event.ID).WithField("resolved", reason == stopResolved).Info("brutal escalation ended")
}

func (r *Registry) initialFanOut(ctx context.Context, s *session) {
	log := r.log.WithField("event_id", s.event.ID)
	users := s.remainingUsers()

	data := eventData(&s.event)
	data["Mentions"] = mentions(users)
	err := r.messenger.SendChannelMessage(ctx, s.event.ChannelID, r.tr.T(r.locale, "escalation.start.channel", data))
	logDelivery(log, err, "")

	for _, u := range users {
		if ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		code, img := s.codes[u], s.images[u]
		s.mu.Unlock()

		data := eventData(&s.event)
		if img == nil {
			data["Code"] = code
			err = r.messenger.SendDirectMessage(ctx, u, r.tr.T(r.locale, "escalation.start.dm_fallback", data), nil)
		} else {
			err = r.messenger.SendDirectMessage(ctx, u, r.tr.T(r.locale, "escalation.start.dm", data), &output.Attachment{
				Name:        imageName,
				ContentType: "image/png",
				Data:        img,
			})
		}
		logDelivery(log, err, u)
	}
}

func (r *Registry) spamRound(ctx context.Context, s *session) {
	users := s.remainingUsers()
	if len(users) == 0 || ctx.Err() != nil {
		return
	}
	log := r.log.WithField("event_id", s.event.ID)

	data := eventData(&s.event)
	data["Mentions"] = mentions(users)
	err := r.messenger.SendChannelMessage(ctx, s.event.ChannelID, r.tr.T(r.locale, "escalation.spam.channel", data))
	logDelivery(log, err, "")

	dm := r.tr.T(r.locale, "escalation.spam.dm", eventData(&s.event))
	for _, u := range users {
		if ctx.Err() != nil {
			return
		}
		logDelivery(log, r.messenger.SendDirectMessage(ctx, u, dm, nil), u)
	}
}

func (r *Registry) lookup(eventID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[eventID]
}

// Resolve checks code against the one issued to userID for eventID. When the
// last participant resolves, the session is removed and Resolve waits for the
// spam task to finish its resolution notice.
func (r *Registry) Resolve(ctx context.Context, eventID, userID, code string) (*input.ResolveResult, error) {
	s := r.lookup(eventID)
	if s == nil {
		return nil, domain.ErrChallengeNotFound
	}

	s.mu.Lock()
	if _, ok := s.remaining[userID]; !ok {
		s.mu.Unlock()
		return nil, domain.ErrChallengeNotFound
	}
	if challenge.Normalize(code) != s.codes[userID] {
		s.mu.Unlock()
		return nil, domain.ErrChallengeMismatch
	}
	delete(s.remaining, userID)
	left := len(s.remaining)
	if left == 0 {
		s.reason = stopResolved
	}
	s.mu.Unlock()

	r.log.WithFields(logrus.Fields{"event_id": eventID, "user_id": userID, "remaining": left}).Info("challenge resolved")

	if left == 0 {
		r.mu.Lock()
		if r.sessions[eventID] == s {
			delete(r.sessions, eventID)
		}
		r.mu.Unlock()
		s.cancel()
		select {
		case <-s.done:
		case <-ctx.Done():
		}
	}
	return &input.ResolveResult{EventID: eventID, Remaining: left, Completed: left == 0}, nil
}

// ResolveByUser resolves code among the sessions in which userID is still
// remaining. Codes are only unique within a session, so the lookup never
// considers sessions the user is not part of.
func (r *Registry) ResolveByUser(ctx context.Context, userID, code string) (*input.ResolveResult, error) {
	r.mu.Lock()
	candidates := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		candidates = append(candidates, s)
	}
	r.mu.Unlock()
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].event.ID < candidates[j].event.ID })

	want := challenge.Normalize(code)
	pending := ""
	for _, s := range candidates {
		s.mu.Lock()
		_, waiting := s.remaining[userID]
		match := waiting && s.codes[userID] == want
		s.mu.Unlock()
		if match {
			return r.Resolve(ctx, s.event.ID, userID, code)
		}
		if waiting && pending == "" {
			pending = s.event.ID
		}
	}
	if pending == "" {
		return nil, domain.ErrChallengeNotFound
	}
	return nil, domain.ErrChallengeMismatch
}

// Cancel stops the escalation for eventID, if any. The spam task posts a
// single stopped notice on its way out.
func (r *Registry) Cancel(eventID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[eventID]
	delete(r.sessions, eventID)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.cancel()
	r.log.WithField("event_id", eventID).Info("brutal escalation cancelled")
	return true
}

// Active returns a snapshot of the running escalations ordered by event ID.
func (r *Registry) Active() []SessionInfo {
	r.mu.Lock()
	sessions := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		out = append(out, SessionInfo{
			EventID:   s.event.ID,
			Title:     s.event.Title,
			ChannelID: s.event.ChannelID,
			Remaining: len(s.remaining),
			StartedAt: s.startedAt,
		})
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}

// Shutdown cancels every session and waits for their tasks to exit.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
	return waitGroup(ctx, &r.wg)
}

func (r *Registry) codesFor(eventID string) map[string]string {
	s := r.lookup(eventID)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.codes))
	for u, c := range s.codes {
		out[u] = c
	}
	return out
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
