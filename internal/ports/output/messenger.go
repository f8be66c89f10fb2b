package output

import "context"

// Attachment is a file sent along with a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Messenger is the messaging transport used by the reminder engine.
// SendDirectMessage returns an error wrapping domain.ErrDeliveryRefused when
// the recipient does not accept direct messages.
type Messenger interface {
	SendChannelMessage(ctx context.Context, channelID, content string, attachments ...Attachment) error
	SendDirectMessage(ctx context.Context, userID, content string, attachment *Attachment) error
}
