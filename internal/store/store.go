// Package store is the record store: durable storage for users and
// appointments behind one interface with two interchangeable backends.
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/isdelr/clinique-espoir-be/internal/kv"
	"github.com/isdelr/clinique-espoir-be/internal/models"
)

// Slot names of the local key-value layout.
const (
	SlotUsers        = "clinique_users"
	SlotAppointments = "clinique_appointments"
	SlotSession      = "clinique_session"
)

// Store is implemented by the local and the remote backend. Call sites never
// know which one is active.
type Store interface {
	// CreateUser stores a new patient account. Duplicate emails fail with *models.ConflictError.
	CreateUser(ctx context.Context, reg models.Registration) (models.User, error)
	// Authenticate returns the user matching the credentials or models.ErrAuth.
	Authenticate(ctx context.Context, email, password string) (models.User, error)

	// CreateAppointment assigns id, status and createdAt to the draft and stores it.
	CreateAppointment(ctx context.Context, draft models.AppointmentDraft) (models.Appointment, error)
	// ListAppointments returns every appointment, newest first.
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	// FindAppointment returns models.ErrNotFound when no appointment has the id.
	FindAppointment(ctx context.Context, id string) (models.Appointment, error)
	// PatchAppointmentStatus overwrites the status and returns the updated record.
	PatchAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, error)
}

// SortNewestFirst orders appointments by descending createdAt. Equal
// timestamps keep their relative order.
func SortNewestFirst(items []models.Appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// SameEmail is the email equality used for uniqueness and login:
// surrounding spaces are ignored and case does not matter.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Open selects the backend once, at start-up: a non-empty apiURL selects
// the remote service, otherwise the collections live in area.
func Open(apiURL string, timeout time.Duration, area kv.KV) Store {
	if apiURL != "" {
		return NewRemote(apiURL, timeout)
	}
	return NewLocal(area)
}
