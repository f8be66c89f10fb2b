package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/input"
	pkgdiscord "recruitbot/pkg/discord"
)

func (h *Handler) HandleJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := h.requestContext()
	defer cancel()

	res, err := h.events.JoinEvent(ctx, i.Message.ID, interactionUserID(i))
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	if !res.Added {
		respondEphemeral(s, i.Interaction, h.translate(i, "reply.join.already", nil))
		return
	}
	h.refreshTicket(s, res.Event)
	respondEphemeral(s, i.Interaction, h.translate(i, "reply.join.ok", nil))
}

func (h *Handler) HandleLeave(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := h.requestContext()
	defer cancel()

	event, err := h.events.LeaveEvent(ctx, i.Message.ID, interactionUserID(i))
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	h.refreshTicket(s, event)
	respondEphemeral(s, i.Interaction, h.translate(i, "reply.leave.ok", nil))
}

// HandleDelete removes the ticket. A ticket whose record is already gone is
// simply taken down.
func (h *Handler) HandleDelete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := h.requestContext()
	defer cancel()

	caller := input.Caller{UserID: interactionUserID(i), IsAdmin: isAdmin(i)}
	err := h.events.DeleteEvent(ctx, i.Message.ID, caller)
	if err != nil && !errors.Is(err, domain.ErrEventNotFound) {
		h.respondError(s, i, err)
		return
	}
	if err := s.ChannelMessageDelete(i.ChannelID, i.Message.ID); err != nil {
		h.log.WithError(err).WithField("event_id", i.Message.ID).Warn("delete ticket message failed")
	}
	respondEphemeral(s, i.Interaction, h.translate(i, "reply.delete.ok", nil))
}

// refreshTicket redraws the ticket message from the stored event.
func (h *Handler) refreshTicket(s *discordgo.Session, event *entities.Event) {
	embeds := []*discordgo.MessageEmbed{pkgdiscord.BuildTicketEmbed(h.translator, h.locale, event, event.HasStart())}
	components := pkgdiscord.TicketComponents(h.translator, h.locale)
	if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         event.ID,
		Channel:    event.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		h.log.WithError(err).WithField("event_id", event.ID).Warn("refresh ticket failed")
	}
}
