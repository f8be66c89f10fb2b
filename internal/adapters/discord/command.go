package discord

import (
	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/domain/entities"
)

const (
	commandRecruit  = "recruit"
	commandSettings = "settings"
	commandVerify   = "verify"

	recruitModalPrefix = "recruit_modal:"
)

// Commands returns the slash commands the bot registers.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	t := func(key string) string { return h.translator.T(h.locale, key, nil) }
	adminOnly := int64(discordgo.PermissionAdministrator)
	minMinutes := 1.0

	tierChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 3)
	for _, tier := range []entities.Tier{entities.TierNormal, entities.TierMany, entities.TierBrutal} {
		tierChoices = append(tierChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  t("tier." + string(tier)),
			Value: string(tier),
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        commandRecruit,
			Description: t("ui.command.recruit"),
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "tier",
				Description: t("ui.command.recruit.tier"),
				Choices:     tierChoices,
			}},
		},
		{
			Name:                     commandSettings,
			Description:              t("ui.command.settings"),
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "notification",
				Description: t("ui.command.settings.notification"),
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "minutes",
					Description: t("ui.command.settings.minutes"),
					Required:    true,
					MinValue:    &minMinutes,
				}},
			}},
		},
		{
			Name:        commandVerify,
			Description: t("ui.command.verify"),
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "code",
				Description: t("ui.command.verify.code"),
				Required:    true,
			}},
		},
	}
}

// HandleRecruitCommand opens the ticket modal. The chosen tier travels in the
// modal's custom ID.
func (h *Handler) HandleRecruitCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	tier := string(entities.TierNormal)
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "tier" {
			tier = opt.StringValue()
		}
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: recruitModalPrefix + tier,
			Title:    h.translate(i, "ui.modal.title", nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: fieldTask, Label: h.translate(i, "ui.modal.task", nil), Style: discordgo.TextInputShort, Required: true},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: fieldDate, Label: h.translate(i, "ui.modal.date", nil), Style: discordgo.TextInputShort, Required: true, Placeholder: h.translate(i, "ui.modal.date_placeholder", nil)},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: fieldLocation, Label: h.translate(i, "ui.modal.location", nil), Style: discordgo.TextInputShort, Required: true, Placeholder: h.translate(i, "ui.modal.location_placeholder", nil)},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: fieldRequired, Label: h.translate(i, "ui.modal.required", nil), Style: discordgo.TextInputShort, Required: true, MinLength: 1, MaxLength: 2, Placeholder: h.translate(i, "ui.modal.required_placeholder", nil)},
				}},
			},
		},
	})
	if err != nil {
		h.log.WithError(err).Warn("open recruit modal failed")
	}
}
