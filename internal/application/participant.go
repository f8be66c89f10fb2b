package application

import (
	"context"
	"fmt"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/input"
)

// JoinEvent adds userID to the roster. A full roster only accepts users who
// are already on it.
func (s *EventService) JoinEvent(ctx context.Context, id, userID string) (*input.JoinResult, error) {
	event, err := s.eventRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.HasParticipant(userID) {
		return &input.JoinResult{Event: event, Added: false}, nil
	}
	if len(event.Participants) >= event.RequiredNum {
		return nil, domain.ErrEventFull
	}

	added, err := s.eventRepo.AddParticipant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	event, err = s.refreshStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	return &input.JoinResult{Event: event, Added: added}, nil
}

// LeaveEvent removes userID from the roster. Leaving twice is not an error.
// An escalation already running for the ticket is unaffected.
func (s *EventService) LeaveEvent(ctx context.Context, id, userID string) (*entities.Event, error) {
	if _, err := s.eventRepo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.eventRepo.RemoveParticipant(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.refreshStatus(ctx, id)
}

func (s *EventService) refreshStatus(ctx context.Context, id string) (*entities.Event, error) {
	event, err := s.eventRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	status := domain.StatusFor(len(event.Participants), event.RequiredNum)
	if status == event.Status {
		return event, nil
	}
	if err := s.eventRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	s.log.WithField("event_id", id).WithField("status", status).Debug("ticket status changed")
	event.Status = status
	return event, nil
}
