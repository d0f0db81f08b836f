package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/store"
	"github.com/rs/zerolog/log"
)

// AppointmentServiceProvider defines the interface for the appointment lifecycle.
type AppointmentServiceProvider interface {
	Submit(ctx context.Context, draft models.AppointmentDraft) (models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
	ListForUser(ctx context.Context, userID string) ([]models.Appointment, error)
	SetStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, error)
}

// Observer receives lifecycle outcomes, typically to feed metrics.
type Observer interface {
	ObserveSubmit(outcome string)
	ObserveTransition(to models.AppointmentStatus, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveSubmit(string)                               {}
func (nopObserver) ObserveTransition(models.AppointmentStatus, string) {}

// AppointmentService owns the pending -> confirmed|cancelled state machine.
// The record store overwrites any status it is given, so the transition
// table is enforced here and only here.
type AppointmentService struct {
	store    store.Store
	events   EventServiceProvider
	observer Observer
}

// NewAppointmentService creates a new AppointmentService. observer may be nil.
func NewAppointmentService(st store.Store, events EventServiceProvider, observer Observer) *AppointmentService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &AppointmentService{store: st, events: events, observer: observer}
}

// Submit validates a booking and stores it as pending. The date only has to
// be a calendar date; past dates are accepted.
func (s *AppointmentService) Submit(ctx context.Context, draft models.AppointmentDraft) (models.Appointment, error) {
	draft.PatientName = strings.TrimSpace(draft.PatientName)
	draft.PatientEmail = strings.TrimSpace(draft.PatientEmail)
	draft.PatientPhone = strings.TrimSpace(draft.PatientPhone)
	draft.DoctorID = strings.TrimSpace(draft.DoctorID)
	draft.Date = strings.TrimSpace(draft.Date)
	draft.Reason = strings.TrimSpace(draft.Reason)

	if err := validateDraft(draft); err != nil {
		s.observer.ObserveSubmit("invalid")
		return models.Appointment{}, err
	}

	a, err := s.store.CreateAppointment(ctx, draft)
	if err != nil {
		s.observer.ObserveSubmit("error")
		return models.Appointment{}, fmt.Errorf("failed to create appointment: %w", err)
	}
	s.observer.ObserveSubmit("created")

	s.record(ctx, "appointment.create", "info", fmt.Sprintf("Appointment requested by %s for %s.", a.PatientName, a.Date), a.ID)
	return a, nil
}

func validateDraft(d models.AppointmentDraft) error {
	var fields []string
	for _, f := range []struct{ name, value string }{
		{"patientName", d.PatientName},
		{"patientPhone", d.PatientPhone},
		{"patientEmail", d.PatientEmail},
		{"date", d.Date},
		{"reason", d.Reason},
	} {
		if f.value == "" {
			fields = append(fields, f.name)
		}
	}
	if d.Date != "" {
		if _, err := time.Parse(models.DateLayout, d.Date); err != nil {
			fields = append(fields, "date")
		}
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

// ListAll returns every appointment, newest first.
func (s *AppointmentService) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.store.ListAppointments(ctx)
}

// ListForUser returns the appointments booked from the given account.
func (s *AppointmentService) ListForUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	all, err := s.store.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Appointment, 0)
	for _, a := range all {
		if userID != "" && a.UserID == userID {
			mine = append(mine, a)
		}
	}
	return mine, nil
}

// SetStatus confirms or cancels a pending appointment. Appointments that
// already left pending are final and are reported with *models.TransitionError.
func (s *AppointmentService) SetStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, error) {
	if status != models.StatusConfirmed && status != models.StatusCancelled {
		s.observer.ObserveTransition(status, "invalid")
		return models.Appointment{}, &models.ValidationError{Fields: []string{"status"}}
	}

	current, err := s.store.FindAppointment(ctx, id)
	if err != nil {
		s.observer.ObserveTransition(status, "error")
		return models.Appointment{}, fmt.Errorf("failed to load appointment %s: %w", id, err)
	}
	if current.Status != models.StatusPending {
		s.observer.ObserveTransition(status, "rejected")
		return current, &models.TransitionError{ID: id, From: current.Status, To: status}
	}

	updated, err := s.store.PatchAppointmentStatus(ctx, id, status)
	if err != nil {
		s.observer.ObserveTransition(status, "error")
		var transition *models.TransitionError
		if errors.As(err, &transition) {
			return current, err
		}
		return models.Appointment{}, fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	s.observer.ObserveTransition(status, "applied")

	s.record(ctx, "appointment.status", "info", fmt.Sprintf("Appointment for %s moved to %s.", updated.PatientName, status), id)
	return updated, nil
}

func (s *AppointmentService) record(ctx context.Context, eventType, level, message, appointmentID string) {
	if err := s.events.CreateEvent(ctx, eventType, level, message, &appointmentID); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
