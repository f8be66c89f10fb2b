package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/output"
)

const (
	colorRecruiting = 0xE67E22
	colorConfirmed  = 0x2ECC71

	CustomIDJoin   = "ticket:join"
	CustomIDLeave  = "ticket:leave"
	CustomIDDelete = "ticket:delete"
)

// BuildTicketEmbed renders the ticket message for e. An empty e.ID renders
// the placeholder footer used before the message has an ID.
func BuildTicketEmbed(tr output.T, locale string, e *entities.Event, remindersEnabled bool) *discordgo.MessageEmbed {
	count := len(e.Participants)
	confirmed := domain.StatusFor(count, e.RequiredNum) == domain.StatusConfirmed

	color := colorRecruiting
	status := tr.T(locale, "ticket.embed.status_recruiting", map[string]any{"Missing": e.Missing()})
	if confirmed {
		color = colorConfirmed
		status = tr.T(locale, "ticket.embed.status_confirmed", nil)
	}

	members := tr.T(locale, "ticket.embed.none", nil)
	if count > 0 {
		mentions := make([]string, count)
		for i, u := range e.Participants {
			mentions[i] = "<@" + u + ">"
		}
		members = strings.Join(mentions, "\n")
	}

	tier := e.Tier
	if tier == "" {
		tier = entities.TierNormal
	}
	tierValue := tr.T(locale, "tier."+string(tier), nil)
	if !remindersEnabled {
		tierValue += "\n" + tr.T(locale, "ticket.embed.reminders_disabled", nil)
	}

	footer := tr.T(locale, "ticket.embed.footer_pending", nil)
	if e.ID != "" {
		footer = tr.T(locale, "ticket.embed.footer", map[string]any{"ID": e.ID})
	}

	return &discordgo.MessageEmbed{
		Title: "📋 " + e.Title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: tr.T(locale, "ticket.embed.date", nil), Value: orDash(e.DateString), Inline: true},
			{Name: tr.T(locale, "ticket.embed.location", nil), Value: orDash(e.Location), Inline: true},
			{Name: tr.T(locale, "ticket.embed.tickets", nil), Value: tr.T(locale, "ticket.embed.tickets_value", map[string]any{
				"Required": e.RequiredNum,
				"Current":  count,
			})},
			{Name: tr.T(locale, "ticket.embed.status", nil), Value: status},
			{Name: tr.T(locale, "ticket.embed.tier", nil), Value: tierValue},
			{Name: tr.T(locale, "ticket.embed.participants", nil), Value: members},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footer},
	}
}

// TicketComponents returns the persistent button row of a ticket.
func TicketComponents(tr output.T, locale string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    tr.T(locale, "ui.button.join", nil),
				Style:    discordgo.PrimaryButton,
				CustomID: CustomIDJoin,
				Emoji:    &discordgo.ComponentEmoji{Name: "🎫"},
			},
			discordgo.Button{Label: tr.T(locale, "ui.button.leave", nil), Style: discordgo.SecondaryButton, CustomID: CustomIDLeave},
			discordgo.Button{Label: tr.T(locale, "ui.button.delete", nil), Style: discordgo.DangerButton, CustomID: CustomIDDelete},
		}},
	}
}

// Embed field values must not be empty.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
