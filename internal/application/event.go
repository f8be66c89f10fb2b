package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/input"
	"recruitbot/internal/ports/output"
	"recruitbot/pkg/logger"
)

// Escalations is the part of the escalation registry the service drives.
type Escalations interface {
	Cancel(eventID string) bool
	ResolveByUser(ctx context.Context, userID, code string) (*input.ResolveResult, error)
}

// DateNormalizer turns the free-form date typed into the ticket modal into
// an absolute instant. ok is false when the text cannot be understood.
type DateNormalizer func(s string, now time.Time) (time.Time, bool)

var _ input.EventUseCase = (*EventService)(nil)

type EventService struct {
	eventRepo   output.EventRepository
	escalations Escalations
	normalize   DateNormalizer
	now         func() time.Time
	log         *logrus.Entry
}

func NewEventService(
	eventRepo output.EventRepository,
	escalations Escalations,
	normalize DateNormalizer,
) *EventService {
	return &EventService{
		eventRepo:   eventRepo,
		escalations: escalations,
		normalize:   normalize,
		now:         time.Now,
		log:         logger.For("Events"),
	}
}

// RecordTicketIssued persists a freshly posted ticket. A date that cannot be
// parsed does not reject the ticket; it only disables reminders.
func (s *EventService) RecordTicketIssued(ctx context.Context, req input.TicketRequest) (*input.Ticket, error) {
	if req.RequiredNum < 1 {
		return nil, domain.ErrInvalidHeadcount
	}
	tier := entities.Tier(strings.ToLower(strings.TrimSpace(req.Tier)))
	if tier == "" {
		tier = entities.TierNormal
	}
	if !tier.Valid() {
		return nil, domain.ErrInvalidTier
	}

	event := &entities.Event{
		ID:          req.MessageID,
		ChannelID:   req.ChannelID,
		GuildID:     req.GuildID,
		OwnerID:     req.OwnerID,
		Title:       strings.TrimSpace(req.Title),
		DateString:  strings.TrimSpace(req.DateString),
		Location:    strings.TrimSpace(req.Location),
		RequiredNum: req.RequiredNum,
		Status:      domain.StatusRecruiting,
		Tier:        tier,
	}
	enabled := false
	if s.normalize != nil {
		if start, ok := s.normalize(event.DateString, s.now()); ok {
			event.StartAt = start
			enabled = true
		}
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"event_id":  event.ID,
		"tier":      event.Tier,
		"reminders": enabled,
	}).Info("ticket issued")
	return &input.Ticket{Event: event, RemindersEnabled: enabled}, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*entities.Event, error) {
	return s.eventRepo.Get(ctx, id)
}

// DeleteEvent removes a ticket. Only its owner or an administrator may do so;
// a running escalation for the ticket is stopped.
func (s *EventService) DeleteEvent(ctx context.Context, id string, caller input.Caller) error {
	event, err := s.eventRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if caller.UserID != event.OwnerID && !caller.IsAdmin {
		return domain.ErrNotAuthorized
	}
	if err := s.eventRepo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	if s.escalations != nil && s.escalations.Cancel(id) {
		s.log.WithField("event_id", id).Info("escalation stopped with deleted ticket")
	}
	return nil
}

func (s *EventService) SetGuildNotifyMinutes(ctx context.Context, guildID string, minutes int, caller input.Caller) error {
	if !caller.IsAdmin {
		return domain.ErrNotAuthorized
	}
	if minutes < 1 {
		return domain.ErrInvalidNotifyMinutes
	}
	if err := s.eventRepo.SetGuildNotifyMinutes(ctx, guildID, minutes); err != nil {
		return fmt.Errorf("save notify minutes: %w", err)
	}
	return nil
}

func (s *EventService) ResolveEscalation(ctx context.Context, userID, code string) (*input.ResolveResult, error) {
	if s.escalations == nil {
		return nil, domain.ErrChallengeNotFound
	}
	return s.escalations.ResolveByUser(ctx, userID, code)
}
