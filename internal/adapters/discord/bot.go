package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"recruitbot/pkg/logger"
)

// Bot owns the Discord gateway session.
type Bot struct {
	session *discordgo.Session
	guildID string
	handler *Handler
	log     *logrus.Entry

	ready     chan struct{}
	readyOnce sync.Once
}

// NewBot creates the session. Commands are registered in guildID, or
// globally when guildID is empty.
func NewBot(token, guildID string) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	b := &Bot{
		session: s,
		guildID: guildID,
		log:     logger.For("Discord"),
		ready:   make(chan struct{}),
	}
	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	return b, nil
}

func (b *Bot) Session() *discordgo.Session { return b.session }

// Bind attaches the interaction handler. It must be called before Open.
func (b *Bot) Bind(h *Handler) { b.handler = h }

// Ready is closed once the first gateway Ready event has been handled.
func (b *Bot) Ready() <-chan struct{} { return b.ready }

func (b *Bot) IsReady() bool {
	select {
	case <-b.ready:
		return true
	default:
		return false
	}
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.readyOnce.Do(func() {
		if b.handler != nil {
			cmds, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.guildID, b.handler.Commands())
			if err != nil {
				b.log.WithError(err).Error("command registration failed")
			} else {
				b.log.WithField("commands", len(cmds)).Info("commands registered")
			}
		}
		b.log.WithField("user", r.User.Username).Info("🤖 bot online")
		close(b.ready)
	})
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.handler == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			b.log.WithField("panic", p).Error("interaction handler panicked")
		}
	}()
	b.handler.Route(s, i)
}
