package discord

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"

	"recruitbot/internal/domain"
	"recruitbot/internal/ports/output"
)

func restError(code int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response: &http.Response{Status: "403 Forbidden", StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "refused"},
	}
}

func TestClassifySendError(t *testing.T) {
	if classifySendError(nil) != nil {
		t.Fatal("nil error classified as failure")
	}
	err := classifySendError(restError(discordgo.ErrCodeCannotSendMessagesToThisUser))
	if !errors.Is(err, domain.ErrDeliveryRefused) {
		t.Errorf("50007 = %v, want ErrDeliveryRefused", err)
	}
	err = classifySendError(restError(discordgo.ErrCodeMissingPermissions))
	if errors.Is(err, domain.ErrDeliveryRefused) {
		t.Errorf("missing permissions classified as refused DM")
	}
	plain := errors.New("connection reset")
	if got := classifySendError(plain); got != plain {
		t.Errorf("plain error changed: %v", got)
	}
}

func TestToFile(t *testing.T) {
	f := toFile(output.Attachment{Name: "c.png", ContentType: "image/png", Data: []byte{1, 2, 3}})
	buf := make([]byte, 8)
	n, _ := f.Reader.Read(buf)
	if f.Name != "c.png" || f.ContentType != "image/png" || n != 3 {
		t.Errorf("file = %+v, read %d bytes", f, n)
	}
}

func TestNewMessageOnlyPingsUsers(t *testing.T) {
	msg := newMessage("<@u1> @everyone")
	if len(msg.AllowedMentions.Parse) != 1 || msg.AllowedMentions.Parse[0] != discordgo.AllowedMentionTypeUsers {
		t.Errorf("allowed mentions = %+v", msg.AllowedMentions)
	}
}
