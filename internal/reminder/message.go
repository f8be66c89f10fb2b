// Package reminder is the time-driven side of the bot: the scanner that
// finds tickets about to start, the dispatcher that reminds their
// participants, and the registry of running brutal escalations.
package reminder

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
)

// DefaultLocale is used when no locale option is given.
const DefaultLocale = "ja"

func mentions(users []string) string {
	parts := make([]string, len(users))
	for i, u := range users {
		parts[i] = "<@" + u + ">"
	}
	return strings.Join(parts, " ")
}

func eventData(e *entities.Event) map[string]any {
	return map[string]any{
		"Title":    e.Title,
		"Date":     e.DateString,
		"Location": e.Location,
	}
}

// logDelivery records a failed per-recipient send. Refused DMs are expected
// and only show up at debug level.
func logDelivery(log *logrus.Entry, err error, userID string) {
	if err == nil {
		return
	}
	entry := log.WithError(err)
	if userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	switch {
	case errors.Is(err, domain.ErrDeliveryRefused):
		entry.Debug("recipient does not accept direct messages")
	case errors.Is(err, context.Canceled):
		entry.Debug("delivery cancelled")
	default:
		entry.Warn("delivery failed")
	}
}
