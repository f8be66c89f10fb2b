package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/input"
	pkgdiscord "recruitbot/pkg/discord"
)

const (
	fieldTask     = "task"
	fieldDate     = "date"
	fieldLocation = "location"
	fieldRequired = "required"
)

type recruitForm struct {
	Title       string
	DateString  string
	Location    string
	RequiredNum int
	Tier        entities.Tier
}

// parseRecruitForm reads the ticket modal. The headcount must be a positive
// integer and the tier one of the known tiers.
func parseRecruitForm(data discordgo.ModalSubmitInteractionData) (recruitForm, error) {
	f := recruitForm{
		Title:      modalValue(data, fieldTask),
		DateString: modalValue(data, fieldDate),
		Location:   modalValue(data, fieldLocation),
		Tier:       entities.Tier(strings.TrimPrefix(data.CustomID, recruitModalPrefix)),
	}
	if f.Tier == "" {
		f.Tier = entities.TierNormal
	}
	if !f.Tier.Valid() {
		return f, domain.ErrInvalidTier
	}
	n, err := strconv.Atoi(modalValue(data, fieldRequired))
	if err != nil || n < 1 {
		return f, domain.ErrInvalidHeadcount
	}
	f.RequiredNum = n
	return f, nil
}

func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		var row []discordgo.MessageComponent
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = r.Components
		case discordgo.ActionsRow:
			row = r.Components
		}
		for _, inner := range row {
			switch in := inner.(type) {
			case *discordgo.TextInput:
				if in.CustomID == customID {
					return strings.TrimSpace(in.Value)
				}
			case discordgo.TextInput:
				if in.CustomID == customID {
					return strings.TrimSpace(in.Value)
				}
			}
		}
	}
	return ""
}

// HandleRecruitModalSubmit posts the ticket first so that its message ID can
// serve as the event's identity, then records it.
func (h *Handler) HandleRecruitModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	form, err := parseRecruitForm(data)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	// The ticket is public, so it uses the bot locale rather than the user's.
	locale := h.locale

	draft := &entities.Event{
		Title:       form.Title,
		DateString:  form.DateString,
		Location:    form.Location,
		RequiredNum: form.RequiredNum,
		Tier:        form.Tier,
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pkgdiscord.BuildTicketEmbed(h.translator, locale, draft, true)},
			Components: pkgdiscord.TicketComponents(h.translator, locale),
		},
	})
	if err != nil {
		h.log.WithError(err).Error("post ticket failed")
		return
	}
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		h.log.WithError(err).Error("fetch posted ticket failed")
		return
	}

	ctx, cancel := h.requestContext()
	defer cancel()
	ticket, err := h.events.RecordTicketIssued(ctx, input.TicketRequest{
		MessageID:   msg.ID,
		ChannelID:   i.ChannelID,
		GuildID:     i.GuildID,
		OwnerID:     interactionUserID(i),
		Title:       form.Title,
		DateString:  form.DateString,
		Location:    form.Location,
		RequiredNum: form.RequiredNum,
		Tier:        string(form.Tier),
	})
	if err != nil {
		_ = s.InteractionResponseDelete(i.Interaction)
		followupEphemeral(s, i.Interaction, h.errorText(i, err))
		return
	}

	h.refreshTicket(s, ticket.Event)
	if !ticket.RemindersEnabled {
		followupEphemeral(s, i.Interaction, h.translate(i, "reply.ticket.reminders_disabled", nil))
	}
}
