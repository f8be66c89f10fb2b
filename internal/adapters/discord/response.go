package discord

import (
	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/domain"
	pkgdiscord "recruitbot/pkg/discord"
)

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.User != nil {
		return i.User.ID
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	return ""
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func deferEphemeral(s *discordgo.Session, i *discordgo.Interaction) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func editResponse(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_, _ = s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content})
}

func followupEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_, _ = s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// errorText localizes err, logging it first when it is not a domain error.
func (h *Handler) errorText(i *discordgo.InteractionCreate, err error) string {
	if domain.Code(err) == "" {
		h.log.WithError(err).WithField("user_id", interactionUserID(i)).Error("interaction failed")
	}
	return pkgdiscord.ErrorMessage(h.translator, h.localeFor(i), err)
}

func (h *Handler) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	respondEphemeral(s, i.Interaction, h.errorText(i, err))
}
