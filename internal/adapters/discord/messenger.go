package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/domain"
	"recruitbot/internal/ports/output"
)

var _ output.Messenger = (*Messenger)(nil)

// Messenger delivers reminder traffic through the bot session.
type Messenger struct {
	session *discordgo.Session
}

func NewMessenger(session *discordgo.Session) *Messenger {
	return &Messenger{session: session}
}

func (m *Messenger) SendChannelMessage(ctx context.Context, channelID, content string, attachments ...output.Attachment) error {
	msg := newMessage(content)
	for _, a := range attachments {
		msg.Files = append(msg.Files, toFile(a))
	}
	_, err := m.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return classifySendError(err)
}

func (m *Messenger) SendDirectMessage(ctx context.Context, userID, content string, attachment *output.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel: %w", classifySendError(err))
	}
	msg := newMessage(content)
	if attachment != nil {
		msg.Files = []*discordgo.File{toFile(*attachment)}
	}
	_, err = m.session.ChannelMessageSendComplex(ch.ID, msg, discordgo.WithContext(ctx))
	return classifySendError(err)
}

func newMessage(content string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}
}

func toFile(a output.Attachment) *discordgo.File {
	return &discordgo.File{
		Name:        a.Name,
		ContentType: a.ContentType,
		Reader:      bytes.NewReader(a.Data),
	}
}

// classifySendError maps Discord's "cannot send messages to this user" to
// domain.ErrDeliveryRefused and passes other errors through.
func classifySendError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return fmt.Errorf("%w: %s", domain.ErrDeliveryRefused, restErr.Message.Message)
	}
	return err
}
