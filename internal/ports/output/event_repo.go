package output

import (
	"context"

	"recruitbot/internal/domain/entities"
)

type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	Get(ctx context.Context, id string) (*entities.Event, error)
	AddParticipant(ctx context.Context, id, userID string) (bool, error)
	RemoveParticipant(ctx context.Context, id, userID string) error
	DeleteEvent(ctx context.Context, id string) error
	ListDueEvents(ctx context.Context) ([]entities.Event, error)
	MarkNotified(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
	GetGuildNotifyMinutes(ctx context.Context, guildID string) (int, error)
	SetGuildNotifyMinutes(ctx context.Context, guildID string, minutes int) error
}
