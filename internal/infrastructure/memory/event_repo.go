// Package memory is an in-process EventRepository. It backs
// STORAGE_DRIVER=memory and the engine's tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	mu       sync.RWMutex
	events   map[string]*entities.Event
	rosters  map[string][]string
	settings map[string]int
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		events:   make(map[string]*entities.Event),
		rosters:  make(map[string][]string),
		settings: make(map[string]int),
	}
}

func (r *EventRepository) Create(_ context.Context, event *entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; ok {
		return domain.ErrEventExists
	}
	stored := *event
	stored.Participants = nil
	if stored.Status == "" {
		stored.Status = domain.StatusRecruiting
	}
	if stored.Tier == "" {
		stored.Tier = entities.TierNormal
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	event.Status, event.Tier, event.CreatedAt = stored.Status, stored.Tier, stored.CreatedAt
	r.events[event.ID] = &stored
	r.rosters[event.ID] = nil
	return nil
}

func (r *EventRepository) Get(_ context.Context, id string) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	out := *e
	out.Participants = slices.Clone(r.rosters[id])
	return &out, nil
}

func (r *EventRepository) AddParticipant(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return false, domain.ErrEventNotFound
	}
	if slices.Contains(r.rosters[id], userID) {
		return false, nil
	}
	r.rosters[id] = append(r.rosters[id], userID)
	return true, nil
}

func (r *EventRepository) RemoveParticipant(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rosters[id] = slices.DeleteFunc(r.rosters[id], func(u string) bool { return u == userID })
	return nil
}

func (r *EventRepository) DeleteEvent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, id)
	delete(r.rosters, id)
	return nil
}

func (r *EventRepository) ListDueEvents(_ context.Context) ([]entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.Event
	for _, e := range r.events {
		if e.HasStart() && !e.NotificationSent {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *EventRepository) MarkNotified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		e.NotificationSent = true
	}
	return nil
}

func (r *EventRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Status = status
	return nil
}

func (r *EventRepository) GetGuildNotifyMinutes(_ context.Context, guildID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.settings[guildID]; ok {
		return m, nil
	}
	return entities.DefaultNotifyMinutes, nil
}

func (r *EventRepository) SetGuildNotifyMinutes(_ context.Context, guildID string, minutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[guildID] = minutes
	return nil
}
