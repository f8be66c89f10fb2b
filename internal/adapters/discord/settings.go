package discord

import (
	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/ports/input"
)

// HandleSettingsCommand handles /settings notification minutes:<n>.
func (h *Handler) HandleSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	minutes, ok := notificationMinutes(i.ApplicationCommandData())
	if !ok {
		return
	}
	ctx, cancel := h.requestContext()
	defer cancel()

	caller := input.Caller{UserID: interactionUserID(i), IsAdmin: isAdmin(i)}
	if err := h.events.SetGuildNotifyMinutes(ctx, i.GuildID, minutes, caller); err != nil {
		h.respondError(s, i, err)
		return
	}
	h.log.WithField("guild_id", i.GuildID).WithField("minutes", minutes).Info("notify minutes updated")
	respondEphemeral(s, i.Interaction, h.translate(i, "reply.settings.ok", map[string]any{"Minutes": minutes}))
}

func notificationMinutes(data discordgo.ApplicationCommandInteractionData) (int, bool) {
	for _, sub := range data.Options {
		if sub.Name != "notification" {
			continue
		}
		for _, opt := range sub.Options {
			if opt.Name == "minutes" {
				return int(opt.IntValue()), true
			}
		}
	}
	return 0, false
}
