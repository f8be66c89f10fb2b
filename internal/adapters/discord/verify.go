package discord

import (
	"github.com/bwmarrin/discordgo"
)

// HandleVerifyCommand submits a challenge code. The reply is deferred since
// completing the last code waits for the escalation to wind down.
func (h *Handler) HandleVerifyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var code string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "code" {
			code = opt.StringValue()
		}
	}
	if err := deferEphemeral(s, i.Interaction); err != nil {
		h.log.WithError(err).Warn("defer verify reply failed")
		return
	}

	ctx, cancel := h.requestContext()
	defer cancel()
	res, err := h.events.ResolveEscalation(ctx, interactionUserID(i), code)
	if err != nil {
		editResponse(s, i.Interaction, h.errorText(i, err))
		return
	}
	key := "reply.verify.ok"
	if res.Completed {
		key = "reply.verify.completed"
	}
	editResponse(s, i.Interaction, h.translate(i, key, nil))
}
