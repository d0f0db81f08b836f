package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/clinique-espoir-be/internal/kv"
	"github.com/isdelr/clinique-espoir-be/internal/models"
)

// SlotEvents is the key-value slot holding the audit trail.
const SlotEvents = "clinique_events"

// maxEvents caps the audit trail; older entries are dropped first.
const maxEvents = 500

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, appointmentID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService keeps the audit trail in the local key-value area.
type EventService struct {
	kv  kv.KV
	now func() time.Time
	mu  sync.Mutex
}

// NewEventService creates a new EventService.
func NewEventService(area kv.KV) *EventService {
	return &EventService{kv: area, now: time.Now}
}

// CreateEvent appends a new event to the trail.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, appointmentID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load(ctx)
	if err != nil {
		return err
	}
	events = append(events, models.Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Level:         level,
		Message:       message,
		AppointmentID: appointmentID,
		CreatedAt:     s.now().UTC(),
	})
	if len(events) > maxEvents {
		events = events[len(events)-maxEvents:]
	}

	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	return s.kv.Put(ctx, SlotEvents, raw)
}

// GetRecentEvents returns up to limit events, newest first.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		return []models.Event{}, nil
	}
	events, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Event, 0, min(limit, len(events)))
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

func (s *EventService) load(ctx context.Context) ([]models.Event, error) {
	raw, ok, err := s.kv.Get(ctx, SlotEvents)
	if err != nil || !ok {
		return nil, err
	}
	var events []models.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("events slot is corrupt: %w", err)
	}
	return events, nil
}
