package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recruitbot/internal/domain"
	"recruitbot/pkg/logger"
)

func newTestRegistry(m *recordingMessenger, opts ...RegistryOption) *Registry {
	base := []RegistryOption{
		WithSpamInterval(10 * time.Millisecond),
		WithRenderer(fakePNG),
		WithRegistryLogger(logger.Discard()),
	}
	return NewRegistry(m, stubT{}, append(base, opts...)...)
}

func shutdown(t *testing.T, r *Registry) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestEscalationResolvesParticipantsInTurn(t *testing.T) {
	ctx := context.Background()
	m := newRecordingMessenger()
	r := newTestRegistry(m)
	defer shutdown(t, r)

	if err := r.StartBrutalEscalation(ctx, brutalEvent("e1", "u1", "u2")); err != nil {
		t.Fatalf("StartBrutalEscalation: %v", err)
	}
	codes := r.codesFor("e1")
	if len(codes) != 2 || codes["u1"] == codes["u2"] {
		t.Fatalf("codes = %v, want two distinct codes", codes)
	}
	for u, c := range codes {
		if len(c) != 8 {
			t.Errorf("code for %s = %q, want 8 characters", u, c)
		}
	}

	waitFor(t, time.Second, func() bool { return countPrefix(m.directMessages(), "escalation.start.dm") == 2 })
	for _, dm := range m.directMessages() {
		if strings.HasPrefix(dm.content, "escalation.start.dm") && dm.attachment == nil {
			t.Errorf("initial DM to %s has no image", dm.target)
		}
	}
	if got := m.channelMessages()[0].content; got != "escalation.start.channel|<@u1> <@u2>" {
		t.Errorf("initial broadcast = %q", got)
	}

	res, err := r.Resolve(ctx, "e1", "u1", "  "+strings.ToLower(codes["u1"])+" ")
	if err != nil {
		t.Fatalf("Resolve u1: %v", err)
	}
	if res.Remaining != 1 || res.Completed {
		t.Fatalf("Resolve u1 = %+v, want 1 remaining", res)
	}

	mark := len(m.channelMessages())
	waitFor(t, time.Second, func() bool {
		msgs := m.channelMessages()
		return len(msgs) > mark+1
	})
	for _, msg := range m.channelMessages()[mark+1:] {
		if msg.content != "escalation.spam.channel|<@u2>" {
			t.Errorf("spam after u1 resolved = %q, want only u2 mentioned", msg.content)
		}
	}

	if _, err := r.Resolve(ctx, "e1", "u1", codes["u1"]); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("second resolve of u1 = %v, want ErrChallengeNotFound", err)
	}
	if _, err := r.Resolve(ctx, "e1", "u2", codes["u1"]); !errors.Is(err, domain.ErrChallengeMismatch) {
		t.Errorf("u2 with u1's code = %v, want ErrChallengeMismatch", err)
	}

	res, err = r.Resolve(ctx, "e1", "u2", codes["u2"])
	if err != nil {
		t.Fatalf("Resolve u2: %v", err)
	}
	if !res.Completed || res.Remaining != 0 {
		t.Fatalf("Resolve u2 = %+v, want completed", res)
	}
	if len(r.Active()) != 0 {
		t.Errorf("session still active after full resolution")
	}

	msgs := m.channelMessages()
	if last := msgs[len(msgs)-1].content; last != "escalation.resolved.channel" {
		t.Errorf("last channel message = %q, want resolution notice", last)
	}
	if n := countPrefix(msgs, "escalation.stopped.channel"); n != 0 {
		t.Errorf("stopped notices = %d, want 0", n)
	}

	before := len(m.channelMessages()) + len(m.directMessages())
	time.Sleep(50 * time.Millisecond)
	if after := len(m.channelMessages()) + len(m.directMessages()); after != before {
		t.Errorf("messages kept flowing after resolution: %d -> %d", before, after)
	}
}

func TestStartTwiceReportsActive(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(newRecordingMessenger())
	defer shutdown(t, r)

	if err := r.StartBrutalEscalation(ctx, brutalEvent("e1", "u1")); err != nil {
		t.Fatal(err)
	}
	if err := r.StartBrutalEscalation(ctx, brutalEvent("e1", "u1")); !errors.Is(err, domain.ErrEscalationActive) {
		t.Fatalf("second start = %v, want ErrEscalationActive", err)
	}
	if n := len(r.Active()); n != 1 {
		t.Errorf("active sessions = %d, want 1", n)
	}
}

func TestStartWithoutParticipantsIsNoop(t *testing.T) {
	m := newRecordingMessenger()
	r := newTestRegistry(m)
	defer shutdown(t, r)

	if err := r.StartBrutalEscalation(context.Background(), brutalEvent("e1")); err != nil {
		t.Fatal(err)
	}
	if len(r.Active()) != 0 || len(m.channelMessages()) != 0 {
		t.Errorf("empty roster created a session or sent messages")
	}
}

func TestCancelEmitsSingleStoppedNotice(t *testing.T) {
	m := newRecordingMessenger()
	r := newTestRegistry(m)

	if err := r.StartBrutalEscalation(context.Background(), brutalEvent("e1", "u1")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, time.Second, func() bool { return countPrefix(m.channelMessages(), "escalation.spam.channel") > 0 })

	if !r.Cancel("e1") {
		t.Fatal("Cancel returned false for an active session")
	}
	if r.Cancel("e1") {
		t.Error("second Cancel returned true")
	}
	shutdown(t, r)

	msgs := m.channelMessages()
	if n := countPrefix(msgs, "escalation.stopped.channel"); n != 1 {
		t.Errorf("stopped notices = %d, want 1", n)
	}
	if n := countPrefix(msgs, "escalation.resolved.channel"); n != 0 {
		t.Errorf("resolved notices = %d, want 0", n)
	}
}

func TestRefusedDirectMessagesDoNotStopLoop(t *testing.T) {
	m := newRecordingMessenger("u1")
	r := newTestRegistry(m)
	defer shutdown(t, r)

	if err := r.StartBrutalEscalation(context.Background(), brutalEvent("e1", "u1", "u2")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, time.Second, func() bool { return countPrefix(m.channelMessages(), "escalation.spam.channel") >= 3 })

	toU2 := 0
	for _, dm := range m.directMessages() {
		if dm.target == "u2" {
			toU2++
		}
	}
	if toU2 < 3 {
		t.Errorf("u2 received %d DMs, want DMs to continue despite u1 refusing", toU2)
	}
}

func TestRenderFailureFallsBackToText(t *testing.T) {
	m := newRecordingMessenger()
	r := newTestRegistry(m,
		WithRenderer(func(string) ([]byte, error) { return nil, errors.New("font missing") }),
		WithCodeGenerator(cycleCodes("ABCD1234")),
	)
	defer shutdown(t, r)

	if err := r.StartBrutalEscalation(context.Background(), brutalEvent("e1", "u1")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, time.Second, func() bool { return len(m.directMessages()) > 0 })

	dm := m.directMessages()[0]
	if dm.content != "escalation.start.dm_fallback|ABCD1234" || dm.attachment != nil {
		t.Errorf("fallback DM = %q (attachment %v)", dm.content, dm.attachment != nil)
	}
	if _, err := r.Resolve(context.Background(), "e1", "u1", "abcd1234"); err != nil {
		t.Errorf("text code rejected: %v", err)
	}
}

func TestResolveByUserOnlySearchesOwnSessions(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(newRecordingMessenger(), WithCodeGenerator(cycleCodes("AAAA", "BBBB")))
	defer shutdown(t, r)

	// Both sessions hand out the same pair of codes.
	if err := r.StartBrutalEscalation(ctx, brutalEvent("e1", "u1", "u2")); err != nil {
		t.Fatal(err)
	}
	if err := r.StartBrutalEscalation(ctx, brutalEvent("e2", "u1", "u3")); err != nil {
		t.Fatal(err)
	}

	if _, err := r.ResolveByUser(ctx, "u3", "AAAA"); !errors.Is(err, domain.ErrChallengeMismatch) {
		t.Errorf("u3 with another user's code = %v, want ErrChallengeMismatch", err)
	}
	if _, err := r.ResolveByUser(ctx, "u9", "AAAA"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("unknown user = %v, want ErrChallengeNotFound", err)
	}

	res, err := r.ResolveByUser(ctx, "u2", "bbbb")
	if err != nil || res.EventID != "e1" {
		t.Fatalf("u2 resolve = %+v, %v", res, err)
	}
	res, err = r.ResolveByUser(ctx, "u1", "AAAA")
	if err != nil || res.EventID != "e1" || !res.Completed {
		t.Fatalf("u1 first resolve = %+v, %v, want e1 completed", res, err)
	}
	res, err = r.ResolveByUser(ctx, "u1", "AAAA")
	if err != nil || res.EventID != "e2" || res.Remaining != 1 {
		t.Fatalf("u1 second resolve = %+v, %v, want e2 with one remaining", res, err)
	}

	active := r.Active()
	if len(active) != 1 || active[0].EventID != "e2" || active[0].Remaining != 1 {
		t.Errorf("Active() = %+v", active)
	}
}

func TestShutdownStopsEverySession(t *testing.T) {
	ctx := context.Background()
	m := newRecordingMessenger()
	r := newTestRegistry(m)

	for _, id := range []string{"e1", "e2"} {
		if err := r.StartBrutalEscalation(ctx, brutalEvent(id, "u1")); err != nil {
			t.Fatal(err)
		}
	}
	shutdown(t, r)

	if len(r.Active()) != 0 {
		t.Error("sessions survived shutdown")
	}
	if n := countPrefix(m.channelMessages(), "escalation.stopped.channel"); n != 2 {
		t.Errorf("stopped notices = %d, want 2", n)
	}
	if err := r.StartBrutalEscalation(ctx, brutalEvent("e3", "u1")); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("start after shutdown = %v, want ErrRegistryClosed", err)
	}
}
