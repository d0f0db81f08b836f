package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/clinique-espoir-be/internal/auth"
	"github.com/isdelr/clinique-espoir-be/internal/kv"
	"github.com/isdelr/clinique-espoir-be/internal/models"
)

// Local keeps both collections in a key-value area, one JSON array per slot.
// Every operation reads the whole slot, changes it in memory and writes it back.
type Local struct {
	kv  kv.KV
	now func() time.Time
	// mu serialises read-modify-write cycles issued by this process.
	mu sync.Mutex
}

// NewLocal creates a local-mode store over the given key-value area.
func NewLocal(area kv.KV) *Local {
	return &Local{kv: area, now: time.Now}
}

// WithClock replaces the clock used to stamp createdAt.
func (s *Local) WithClock(now func() time.Time) *Local {
	s.now = now
	return s
}

func (s *Local) CreateUser(ctx context.Context, reg models.Registration) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.UserRecord
	if err := s.load(ctx, SlotUsers, &users); err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if SameEmail(u.Email, reg.Email) {
			return models.User{}, &models.ConflictError{Field: "email", Value: reg.Email}
		}
	}

	record := models.UserRecord{
		User: models.User{
			ID:    uuid.New().String(),
			Name:  reg.Name,
			Email: strings.TrimSpace(reg.Email),
			Phone: reg.Phone,
			Role:  models.RolePatient,
		},
		PasswordHash: auth.HashPassword(reg.Password),
	}
	if err := s.save(ctx, SlotUsers, append(users, record)); err != nil {
		return models.User{}, err
	}
	return record.User, nil
}

func (s *Local) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	record, err := s.findUser(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.User{}, models.ErrAuth
		}
		return models.User{}, err
	}
	if !auth.CheckPassword(record.PasswordHash, password) {
		return models.User{}, models.ErrAuth
	}
	return record.User, nil
}

// FindUserByEmail returns models.ErrNotFound when no user matches.
func (s *Local) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	record, err := s.findUser(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	return record.User, nil
}

func (s *Local) findUser(ctx context.Context, email string) (models.UserRecord, error) {
	var users []models.UserRecord
	if err := s.load(ctx, SlotUsers, &users); err != nil {
		return models.UserRecord{}, err
	}
	for _, u := range users {
		if SameEmail(u.Email, email) {
			return u, nil
		}
	}
	return models.UserRecord{}, models.ErrNotFound
}

func (s *Local) CreateAppointment(ctx context.Context, draft models.AppointmentDraft) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.Appointment
	if err := s.load(ctx, SlotAppointments, &items); err != nil {
		return models.Appointment{}, err
	}

	a := models.Appointment{
		ID:           uuid.New().String(),
		PatientName:  draft.PatientName,
		PatientEmail: draft.PatientEmail,
		PatientPhone: draft.PatientPhone,
		DoctorID:     draft.DoctorID,
		Date:         draft.Date,
		Reason:       draft.Reason,
		Status:       models.StatusPending,
		CreatedAt:    s.now().UTC(),
		UserID:       draft.UserID,
	}
	if err := s.save(ctx, SlotAppointments, append(items, a)); err != nil {
		return models.Appointment{}, err
	}
	return a, nil
}

func (s *Local) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	var items []models.Appointment
	if err := s.load(ctx, SlotAppointments, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Appointment{}
	}
	SortNewestFirst(items)
	return items, nil
}

func (s *Local) FindAppointment(ctx context.Context, id string) (models.Appointment, error) {
	var items []models.Appointment
	if err := s.load(ctx, SlotAppointments, &items); err != nil {
		return models.Appointment{}, err
	}
	for _, a := range items {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Appointment{}, models.ErrNotFound
}

func (s *Local) PatchAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.Appointment
	if err := s.load(ctx, SlotAppointments, &items); err != nil {
		return models.Appointment{}, err
	}
	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Appointment{}, models.ErrNotFound
	}
	items[idx].Status = status
	if err := s.save(ctx, SlotAppointments, items); err != nil {
		return models.Appointment{}, err
	}
	return items[idx], nil
}

// load decodes a slot into dst. A missing slot leaves dst untouched.
func (s *Local) load(ctx context.Context, slot string, dst any) error {
	raw, ok, err := s.kv.Get(ctx, slot)
	if err != nil {
		return err
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("store: slot %s is corrupt: %w", slot, err)
	}
	return nil
}

func (s *Local) save(ctx context.Context, slot string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: failed to encode slot %s: %w", slot, err)
	}
	return s.kv.Put(ctx, slot, raw)
}
