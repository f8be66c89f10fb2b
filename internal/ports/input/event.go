package input

import (
	"context"

	"recruitbot/internal/domain/entities"
)

// TicketRequest carries the values submitted when a ticket is issued.
type TicketRequest struct {
	MessageID   string
	ChannelID   string
	GuildID     string
	OwnerID     string
	Title       string
	DateString  string
	Location    string
	RequiredNum int
	Tier        string
}

// Ticket is the outcome of RecordTicketIssued.
type Ticket struct {
	Event            *entities.Event
	RemindersEnabled bool
}

// JoinResult reports whether a join changed the roster.
type JoinResult struct {
	Event *entities.Event
	Added bool
}

// Caller identifies the user invoking a privileged operation.
type Caller struct {
	UserID  string
	IsAdmin bool
}

// ResolveResult is the outcome of a successful challenge submission.
type ResolveResult struct {
	EventID   string
	Remaining int
	Completed bool
}

type EventUseCase interface {
	RecordTicketIssued(ctx context.Context, req TicketRequest) (*Ticket, error)
	GetEvent(ctx context.Context, id string) (*entities.Event, error)
	JoinEvent(ctx context.Context, id, userID string) (*JoinResult, error)
	LeaveEvent(ctx context.Context, id, userID string) (*entities.Event, error)
	DeleteEvent(ctx context.Context, id string, caller Caller) error
	SetGuildNotifyMinutes(ctx context.Context, guildID string, minutes int, caller Caller) error
	ResolveEscalation(ctx context.Context, userID, code string) (*ResolveResult, error)
}
