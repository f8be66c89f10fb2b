package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/infrastructure/memory"
	"recruitbot/internal/ports/input"
	"recruitbot/pkg/logger"
)

type fakeEscalations struct {
	cancelled []string
	result    *input.ResolveResult
	err       error
}

func (f *fakeEscalations) Cancel(eventID string) bool {
	f.cancelled = append(f.cancelled, eventID)
	return true
}

func (f *fakeEscalations) ResolveByUser(context.Context, string, string) (*input.ResolveResult, error) {
	return f.result, f.err
}

var fixedStart = time.Date(2026, 10, 25, 13, 0, 0, 0, time.UTC)

func parseOnlyKnown(s string, _ time.Time) (time.Time, bool) {
	if s == "10/25 13:00" {
		return fixedStart, true
	}
	return time.Time{}, false
}

func newTestService() (*EventService, *memory.EventRepository, *fakeEscalations) {
	repo := memory.NewEventRepository()
	esc := &fakeEscalations{}
	svc := NewEventService(repo, esc, parseOnlyKnown)
	svc.log = logger.Discard()
	return svc, repo, esc
}

func ticketRequest(id string) input.TicketRequest {
	return input.TicketRequest{
		MessageID:   id,
		ChannelID:   "c1",
		GuildID:     "g1",
		OwnerID:     "owner",
		Title:       " Moving boxes ",
		DateString:  "10/25 13:00",
		Location:    "Station",
		RequiredNum: 2,
	}
}

func TestRecordTicketIssued(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*input.TicketRequest)
		wantErr     error
		wantTier    entities.Tier
		wantEnabled bool
	}{
		{"defaults to normal", func(*input.TicketRequest) {}, nil, entities.TierNormal, true},
		{"brutal tier", func(r *input.TicketRequest) { r.Tier = "Brutal" }, nil, entities.TierBrutal, true},
		{"unknown tier", func(r *input.TicketRequest) { r.Tier = "loud" }, domain.ErrInvalidTier, "", false},
		{"zero headcount", func(r *input.TicketRequest) { r.RequiredNum = 0 }, domain.ErrInvalidHeadcount, "", false},
		{"unparseable date", func(r *input.TicketRequest) { r.DateString = "someday" }, nil, entities.TierNormal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			req := ticketRequest("m1")
			tt.mutate(&req)

			ticket, err := svc.RecordTicketIssued(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if _, err := repo.Get(context.Background(), "m1"); !errors.Is(err, domain.ErrEventNotFound) {
					t.Error("rejected ticket was stored")
				}
				return
			}
			if ticket.Event.Tier != tt.wantTier || ticket.RemindersEnabled != tt.wantEnabled {
				t.Errorf("tier=%q enabled=%v", ticket.Event.Tier, ticket.RemindersEnabled)
			}
			stored, err := repo.Get(context.Background(), "m1")
			if err != nil {
				t.Fatal(err)
			}
			if stored.Title != "Moving boxes" || stored.HasStart() != tt.wantEnabled {
				t.Errorf("stored = %+v", stored)
			}
			if tt.wantEnabled && !stored.StartAt.Equal(fixedStart) {
				t.Errorf("start = %v, want %v", stored.StartAt, fixedStart)
			}
		})
	}
}

func TestJoinAndLeave(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	if _, err := svc.RecordTicketIssued(ctx, ticketRequest("m1")); err != nil {
		t.Fatal(err)
	}

	res, err := svc.JoinEvent(ctx, "m1", "u1")
	if err != nil || !res.Added || res.Event.Status != domain.StatusRecruiting {
		t.Fatalf("join u1 = %+v, %v", res, err)
	}
	res, err = svc.JoinEvent(ctx, "m1", "u1")
	if err != nil || res.Added {
		t.Fatalf("repeat join = %+v, %v, want Added=false", res, err)
	}
	res, err = svc.JoinEvent(ctx, "m1", "u2")
	if err != nil || res.Event.Status != domain.StatusConfirmed {
		t.Fatalf("join u2 = %+v, %v, want confirmed", res, err)
	}
	if _, err := svc.JoinEvent(ctx, "m1", "u3"); !errors.Is(err, domain.ErrEventFull) {
		t.Fatalf("join when full = %v, want ErrEventFull", err)
	}
	if res, err := svc.JoinEvent(ctx, "m1", "u2"); err != nil || res.Added {
		t.Fatalf("member re-join on full roster = %+v, %v", res, err)
	}

	ev, err := svc.LeaveEvent(ctx, "m1", "u2")
	if err != nil || ev.Status != domain.StatusRecruiting || len(ev.Participants) != 1 {
		t.Fatalf("leave = %+v, %v", ev, err)
	}
	if _, err := svc.LeaveEvent(ctx, "m1", "u2"); err != nil {
		t.Fatalf("second leave = %v", err)
	}
	if _, err := svc.JoinEvent(ctx, "missing", "u1"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("join missing = %v", err)
	}
}

func TestDeleteEventAuthorization(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		caller  input.Caller
		wantErr error
	}{
		{"owner", input.Caller{UserID: "owner"}, nil},
		{"admin", input.Caller{UserID: "mod", IsAdmin: true}, nil},
		{"stranger", input.Caller{UserID: "someone"}, domain.ErrNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, esc := newTestService()
			if _, err := svc.RecordTicketIssued(ctx, ticketRequest("m1")); err != nil {
				t.Fatal(err)
			}
			err := svc.DeleteEvent(ctx, "m1", tt.caller)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			_, getErr := repo.Get(ctx, "m1")
			if tt.wantErr == nil {
				if !errors.Is(getErr, domain.ErrEventNotFound) || len(esc.cancelled) != 1 {
					t.Errorf("event kept or escalation not cancelled (get=%v cancelled=%v)", getErr, esc.cancelled)
				}
			} else if getErr != nil || len(esc.cancelled) != 0 {
				t.Errorf("unauthorized delete changed state")
			}
		})
	}
}

func TestSetGuildNotifyMinutes(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	admin := input.Caller{UserID: "a", IsAdmin: true}

	if err := svc.SetGuildNotifyMinutes(ctx, "g1", 30, input.Caller{UserID: "u"}); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("non-admin = %v", err)
	}
	if err := svc.SetGuildNotifyMinutes(ctx, "g1", 0, admin); !errors.Is(err, domain.ErrInvalidNotifyMinutes) {
		t.Errorf("zero minutes = %v", err)
	}
	if err := svc.SetGuildNotifyMinutes(ctx, "g1", 30, admin); err != nil {
		t.Fatal(err)
	}
	if m, _ := repo.GetGuildNotifyMinutes(ctx, "g1"); m != 30 {
		t.Errorf("minutes = %d, want 30", m)
	}
}

func TestResolveEscalationDelegates(t *testing.T) {
	svc, _, esc := newTestService()
	esc.err = domain.ErrChallengeMismatch
	if _, err := svc.ResolveEscalation(context.Background(), "u1", "nope"); !errors.Is(err, domain.ErrChallengeMismatch) {
		t.Errorf("err = %v", err)
	}
	esc.err, esc.result = nil, &input.ResolveResult{EventID: "m1", Completed: true}
	if res, err := svc.ResolveEscalation(context.Background(), "u1", "ok"); err != nil || !res.Completed {
		t.Errorf("res = %+v, %v", res, err)
	}
}
