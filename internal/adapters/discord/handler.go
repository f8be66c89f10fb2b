package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"recruitbot/internal/ports/input"
	"recruitbot/internal/ports/output"
	pkgdiscord "recruitbot/pkg/discord"
	"recruitbot/pkg/logger"
)

const interactionTimeout = 10 * time.Second

// Handler handles Discord interactions using the event use case.
type Handler struct {
	events     input.EventUseCase
	translator output.T
	locale     string
	log        *logrus.Entry
}

func NewHandler(events input.EventUseCase, translator output.T, locale string) *Handler {
	return &Handler{
		events:     events,
		translator: translator,
		locale:     locale,
		log:        logger.For("Interactions"),
	}
}

// Route dispatches an interaction to its handler.
func (h *Handler) Route(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case commandRecruit:
			h.HandleRecruitCommand(s, i)
		case commandSettings:
			h.HandleSettingsCommand(s, i)
		case commandVerify:
			h.HandleVerifyCommand(s, i)
		}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		if strings.HasPrefix(data.CustomID, recruitModalPrefix) {
			h.HandleRecruitModalSubmit(s, i, data)
		}
	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case pkgdiscord.CustomIDJoin:
			h.HandleJoin(s, i)
		case pkgdiscord.CustomIDLeave:
			h.HandleLeave(s, i)
		case pkgdiscord.CustomIDDelete:
			h.HandleDelete(s, i)
		}
	}
}

func (h *Handler) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), interactionTimeout)
}

// localeFor prefers the locale of the user's Discord client.
func (h *Handler) localeFor(i *discordgo.InteractionCreate) string {
	if i.Locale != "" {
		return string(i.Locale)
	}
	return h.locale
}

func (h *Handler) translate(i *discordgo.InteractionCreate, key string, data map[string]any) string {
	return h.translator.T(h.localeFor(i), key, data)
}
