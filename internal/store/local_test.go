package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/clinique-espoir-be/internal/kv"
	"github.com/isdelr/clinique-espoir-be/internal/models"
)

func sampleDraft(name string) models.AppointmentDraft {
	return models.AppointmentDraft{
		PatientName:  name,
		PatientEmail: "patient@example.tg",
		PatientPhone: "+228 90 00 00 00",
		DoctorID:     "dr-mensah",
		Date:         "2026-11-02",
		Reason:       "Consultation",
	}
}

// tickingClock returns a clock that advances by step on every call.
func tickingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}

func TestLocalCreateUserConflict(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(kv.NewMemory())

	first, err := s.CreateUser(ctx, models.Registration{Name: "Ama", Email: "ama@example.tg", Phone: "1", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, models.RolePatient, first.Role)

	_, err = s.CreateUser(ctx, models.Registration{Name: "Other", Email: "AMA@example.tg ", Phone: "2", Password: "x"})
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	// the first account is untouched
	got, err := s.Authenticate(ctx, "ama@example.tg", "pw")
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestLocalUsersSlotLayout(t *testing.T) {
	ctx := context.Background()
	area := kv.NewMemory()
	s := NewLocal(area)

	_, err := s.CreateUser(ctx, models.Registration{Name: "Ama", Email: "ama@example.tg", Phone: "1", Password: "pw"})
	require.NoError(t, err)

	raw, ok, err := area.Get(ctx, SlotUsers)
	require.NoError(t, err)
	require.True(t, ok)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "ama@example.tg", records[0]["email"])
	assert.NotEqual(t, "pw", records[0]["password"], "password must be stored hashed")
	assert.Len(t, records[0]["password"], 64)
}

func TestLocalAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(kv.NewMemory())
	_, err := s.CreateUser(ctx, models.Registration{Name: "Ama", Email: "ama@example.tg", Phone: "1", Password: "pw"})
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "ama@example.tg", "wrong")
	assert.ErrorIs(t, err, models.ErrAuth)

	_, err = s.Authenticate(ctx, "nobody@example.tg", "pw")
	assert.ErrorIs(t, err, models.ErrAuth)

	u, err := s.FindUserByEmail(ctx, " Ama@Example.tg")
	require.NoError(t, err)
	assert.Equal(t, "Ama", u.Name)

	_, err = s.FindUserByEmail(ctx, "nobody@example.tg")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(kv.NewMemory())
	start := time.Now()

	draft := sampleDraft("Kofi Mensah")
	draft.UserID = "user-1"
	created, err := s.CreateAppointment(ctx, draft)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.False(t, created.CreatedAt.Before(start.Truncate(time.Second)))

	items, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]

	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, draft, models.AppointmentDraft{
		PatientName:  got.PatientName,
		PatientEmail: got.PatientEmail,
		PatientPhone: got.PatientPhone,
		DoctorID:     got.DoctorID,
		Date:         got.Date,
		Reason:       got.Reason,
		UserID:       got.UserID,
	})
}

func TestLocalListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	s := NewLocal(kv.NewMemory()).WithClock(tickingClock(base, time.Minute))

	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := s.CreateAppointment(ctx, sampleDraft(name))
		require.NoError(t, err)
	}

	items, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "d", items[0].PatientName)
	assert.Equal(t, "a", items[3].PatientName)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt))
	}
}

func TestLocalListEmpty(t *testing.T) {
	items, err := NewLocal(kv.NewMemory()).ListAppointments(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLocalPatchStatus(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(kv.NewMemory())
	a, err := s.CreateAppointment(ctx, sampleDraft("Ama"))
	require.NoError(t, err)

	updated, err := s.PatchAppointmentStatus(ctx, a.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.True(t, a.CreatedAt.Equal(updated.CreatedAt))

	reread, err := s.FindAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, reread.Status)

	_, err = s.PatchAppointmentStatus(ctx, "missing", models.StatusConfirmed)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLocalFindIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(kv.NewMemory())
	a, err := s.CreateAppointment(ctx, sampleDraft("Ama"))
	require.NoError(t, err)

	_, err = s.FindAppointment(ctx, a.ID)
	require.NoError(t, err)

	_, err = s.FindAppointment(ctx, strings.ToUpper(a.ID))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLocalCorruptSlot(t *testing.T) {
	ctx := context.Background()
	area := kv.NewMemory()
	require.NoError(t, area.Put(ctx, SlotAppointments, []byte("{not json")))

	_, err := NewLocal(area).ListAppointments(ctx)
	assert.Error(t, err)
}
