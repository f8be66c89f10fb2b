package entities

import (
	"slices"
	"time"
)

// Tier is the reminder escalation level chosen when a ticket is issued.
type Tier string

const (
	TierNormal Tier = "normal"
	TierMany   Tier = "many"
	TierBrutal Tier = "brutal"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierNormal, TierMany, TierBrutal:
		return true
	}
	return false
}

// Event is a recruitment ticket. ID is the Discord message ID of the ticket.
type Event struct {
	ID               string
	ChannelID        string
	GuildID          string
	OwnerID          string
	Title            string
	DateString       string
	Location         string
	RequiredNum      int
	Status           string
	StartAt          time.Time // zero = reminders disabled
	NotificationSent bool
	Tier             Tier
	Participants     []string
	CreatedAt        time.Time
}

func (e *Event) HasStart() bool {
	return !e.StartAt.IsZero()
}

func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// Missing returns how many more participants are needed.
func (e *Event) Missing() int {
	return max(e.RequiredNum-len(e.Participants), 0)
}
