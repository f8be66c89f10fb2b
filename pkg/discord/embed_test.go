package discord

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
)

type keyT struct{}

func (keyT) T(_, key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	return fmt.Sprintf("%s%v", key, data)
}

func TestBuildTicketEmbed(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		wantColor    int
		wantStatus   string
		wantMembers  string
	}{
		{"empty", nil, colorRecruiting, "ticket.embed.status_recruiting", "ticket.embed.none"},
		{"partial", []string{"u1"}, colorRecruiting, "ticket.embed.status_recruiting", "<@u1>"},
		{"full", []string{"u1", "u2"}, colorConfirmed, "ticket.embed.status_confirmed", "<@u1>\n<@u2>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &entities.Event{ID: "m1", Title: "Cleanup", RequiredNum: 2, Tier: entities.TierMany, Participants: tt.participants}
			embed := BuildTicketEmbed(keyT{}, "ja", e, true)

			if embed.Title != "📋 Cleanup" || embed.Color != tt.wantColor {
				t.Errorf("title=%q color=%x", embed.Title, embed.Color)
			}
			if got := embed.Fields[3].Value; !strings.HasPrefix(got, tt.wantStatus) {
				t.Errorf("status = %q, want prefix %q", got, tt.wantStatus)
			}
			if got := embed.Fields[5].Value; got != tt.wantMembers {
				t.Errorf("members = %q, want %q", got, tt.wantMembers)
			}
			if got := embed.Fields[4].Value; got != "tier.many" {
				t.Errorf("tier = %q", got)
			}
			if !strings.Contains(embed.Footer.Text, "m1") {
				t.Errorf("footer = %q", embed.Footer.Text)
			}
			if embed.Fields[0].Value != "-" {
				t.Errorf("empty date rendered as %q", embed.Fields[0].Value)
			}
		})
	}
}

func TestBuildTicketEmbedWithoutReminders(t *testing.T) {
	e := &entities.Event{Title: "x", RequiredNum: 1}
	embed := BuildTicketEmbed(keyT{}, "ja", e, false)
	if got := embed.Fields[4].Value; got != "tier.normal\nticket.embed.reminders_disabled" {
		t.Errorf("tier field = %q", got)
	}
	if embed.Footer.Text != "ticket.embed.footer_pending" {
		t.Errorf("footer = %q", embed.Footer.Text)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(keyT{}, "ja", fmt.Errorf("join: %w", domain.ErrEventFull)); got != "❌ errors.event_full" {
		t.Errorf("domain error = %q", got)
	}
	if got := ErrorMessage(keyT{}, "ja", errors.New("db down")); got != "❌ errors.generic" {
		t.Errorf("plain error = %q", got)
	}
}
