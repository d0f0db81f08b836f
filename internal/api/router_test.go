package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/clinique-espoir-be/internal/api/handlers"
	"github.com/isdelr/clinique-espoir-be/internal/auth"
	"github.com/isdelr/clinique-espoir-be/internal/kv"
	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/moderation"
	"github.com/isdelr/clinique-espoir-be/internal/monitoring"
	"github.com/isdelr/clinique-espoir-be/internal/services"
	"github.com/isdelr/clinique-espoir-be/internal/session"
	"github.com/isdelr/clinique-espoir-be/internal/store"
)

const adminPassword = "espoir-admin"

type echoAssistant struct{}

func (echoAssistant) Reply(_ context.Context, prompt string) string {
	return "Vous avez dit : " + prompt
}

type testEnv struct {
	srv   *httptest.Server
	area  kv.KV
	board *moderation.Board
}

func tickingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := current
		current = current.Add(step)
		return t
	}
}

// newEnv builds the full router over st, or over a fresh local store when
// st is nil.
func newEnv(t *testing.T, st store.Store, limiter *RateLimiter) *testEnv {
	t.Helper()
	ctx := context.Background()
	area := kv.NewMemory()
	if st == nil {
		st = store.NewLocal(area).WithClock(tickingClock(time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC), time.Minute))
	}

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	events := services.NewEventService(area)
	accounts := services.NewAccountService(st, events)
	appointments := services.NewAppointmentService(st, events, metrics)
	board := moderation.NewBoard(appointments)
	require.NoError(t, board.Refresh(ctx))

	gate, err := auth.NewAdminGate(adminPassword)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		Accounts:     accounts,
		Appointments: appointments,
		Catalog:      services.NewCatalogService(),
		Events:       events,
		Session:      session.New(ctx, accounts, session.NewKVSlot(area)),
		Board:        board,
		Assistant:    echoAssistant{},
		AdminGate:    gate,
		Tokens:       auth.NewTokens("test-secret"),
		Gatherer:     reg,
		Limiter:      limiter,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, area: area, board: board}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func draft(name string) models.AppointmentDraft {
	return models.AppointmentDraft{
		PatientName:  name,
		PatientEmail: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.tg",
		PatientPhone: "+228 90 00 00 00",
		DoctorID:     "dr-adjoavi",
		Date:         "2026-11-03",
		Reason:       "Vaccination",
	}
}

func TestWireAccounts(t *testing.T) {
	e := newEnv(t, nil, nil)
	reg := models.Registration{Name: "Akossiwa", Email: "akossiwa@example.tg", Phone: "90", Password: "pw"}

	status, raw := e.do(t, http.MethodPost, "/auth/register", reg, "")
	require.Equal(t, http.StatusCreated, status)
	user := decode[models.User](t, raw)
	assert.Equal(t, models.RolePatient, user.Role)
	assert.NotContains(t, string(raw), "password")

	status, raw = e.do(t, http.MethodPost, "/auth/register", reg, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cet email est déjà utilisé.", decode[store.ErrorBody](t, raw).Message)

	status, raw = e.do(t, http.MethodPost, "/auth/register", models.Registration{Email: "x@example.tg"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"name", "phone", "password"}, decode[store.ErrorBody](t, raw).Fields)

	status, _ = e.do(t, http.MethodPost, "/auth/login", models.Credentials{Email: "akossiwa@example.tg", Password: "pw"}, "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPost, "/auth/login", models.Credentials{Email: "akossiwa@example.tg", Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestWireAppointments(t *testing.T) {
	e := newEnv(t, nil, nil)

	status, raw := e.do(t, http.MethodPost, "/appointments", draft("Ama Mensah"), "")
	require.Equal(t, http.StatusCreated, status)
	first := decode[models.Appointment](t, raw)
	assert.Equal(t, models.StatusPending, first.Status)

	status, _ = e.do(t, http.MethodPost, "/appointments", draft("Kodjo Lawson"), "")
	require.Equal(t, http.StatusCreated, status)

	bad := draft("Sans Date")
	bad.Date = ""
	status, raw = e.do(t, http.MethodPost, "/appointments", bad, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"date"}, decode[store.ErrorBody](t, raw).Fields)

	status, raw = e.do(t, http.MethodGet, "/appointments", nil, "")
	require.Equal(t, http.StatusOK, status)
	list := decode[[]models.Appointment](t, raw)
	require.Len(t, list, 2)
	assert.Equal(t, "Kodjo Lawson", list[0].PatientName)

	status, raw = e.do(t, http.MethodPatch, "/appointments/"+first.ID, models.StatusUpdate{Status: models.StatusConfirmed}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.StatusConfirmed, decode[models.Appointment](t, raw).Status)

	status, raw = e.do(t, http.MethodPatch, "/appointments/"+first.ID, models.StatusUpdate{Status: models.StatusCancelled}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.StatusConfirmed, decode[store.ErrorBody](t, raw).Current)

	status, _ = e.do(t, http.MethodPatch, "/appointments/"+first.ID, models.StatusUpdate{Status: models.StatusPending}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = e.do(t, http.MethodPatch, "/appointments/unknown", models.StatusUpdate{Status: models.StatusCancelled}, "")
	assert.Equal(t, http.StatusNotFound, status)
}

// A remote-mode store pointed at this router behaves like the local one.
func TestRemoteStoreAgainstRouter(t *testing.T) {
	ctx := context.Background()
	backend := newEnv(t, nil, nil)
	remote := store.NewRemoteWithClient(backend.srv.URL, backend.srv.Client())

	user, err := remote.CreateUser(ctx, models.Registration{Name: "Sena", Email: "sena@example.tg", Phone: "93", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	_, err = remote.CreateUser(ctx, models.Registration{Name: "Sena 2", Email: "SENA@example.tg", Phone: "94", Password: "x"})
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = remote.Authenticate(ctx, "sena@example.tg", "bad")
	assert.ErrorIs(t, err, models.ErrAuth)

	a, err := remote.CreateAppointment(ctx, draft("Sena Afi"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, a.Status)

	found, err := remote.FindAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	_, err = remote.FindAppointment(ctx, strings.ToUpper(a.ID))
	assert.ErrorIs(t, err, models.ErrNotFound)

	// a second instance in remote mode drives the lifecycle over the wire
	front := newEnv(t, remote, nil)
	token := adminToken(t, front)

	status, raw := front.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+a.ID, models.StatusUpdate{Status: models.StatusCancelled}, token)
	require.Equal(t, http.StatusOK, status, string(raw))
	dash := decode[handlers.DashboardResponse](t, raw)
	require.Len(t, dash.Items, 1)
	assert.Equal(t, models.StatusCancelled, dash.Items[0].Status)

	_, err = remote.PatchAppointmentStatus(ctx, a.ID, models.StatusConfirmed)
	var transition *models.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.StatusCancelled, transition.From)
}

func adminToken(t *testing.T, e *testEnv) string {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/v1/admin/login", handlers.AdminLoginRequest{Password: adminPassword}, "")
	require.Equal(t, http.StatusOK, status)
	resp := decode[handlers.AdminLoginResponse](t, raw)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAdminDashboard(t *testing.T) {
	e := newEnv(t, nil, nil)

	status, _ := e.do(t, http.MethodGet, "/api/v1/admin/appointments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/admin/login", handlers.AdminLoginRequest{Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	token := adminToken(t, e)

	var ids []string
	for _, name := range []string{"Joe Doe", "Zoé Amegah", "Kofi Annan"} {
		status, raw := e.do(t, http.MethodPost, "/api/v1/bookings", draft(name), "")
		require.Equal(t, http.StatusCreated, status)
		ids = append(ids, decode[models.Appointment](t, raw).ID)
	}

	status, raw := e.do(t, http.MethodPost, "/api/v1/admin/appointments/refresh", nil, token)
	require.Equal(t, http.StatusOK, status)
	dash := decode[handlers.DashboardResponse](t, raw)
	assert.Len(t, dash.Items, 3)
	assert.Equal(t, moderation.PhaseSynced, dash.Phase)
	assert.Equal(t, "Dr. Marie Adjoavi", dash.Items[0].DoctorName)

	status, raw = e.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+ids[0]+"?status=pending", models.StatusUpdate{Status: models.StatusConfirmed}, token)
	require.Equal(t, http.StatusOK, status)
	dash = decode[handlers.DashboardResponse](t, raw)
	assert.Len(t, dash.Items, 2)
	assert.Equal(t, moderation.Counters{Total: 3, Pending: 2, Today: dash.Counters.Today}, dash.Counters)

	status, raw = e.do(t, http.MethodGet, "/api/v1/admin/appointments?status=pending&q=AMEG", nil, token)
	require.Equal(t, http.StatusOK, status)
	dash = decode[handlers.DashboardResponse](t, raw)
	require.Len(t, dash.Items, 1)
	assert.Equal(t, "Zoé Amegah", dash.Items[0].PatientName)

	status, raw = e.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+ids[0], models.StatusUpdate{Status: models.StatusCancelled}, token)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.StatusConfirmed, decode[store.ErrorBody](t, raw).Current)
	assert.Equal(t, moderation.PhaseSynced, e.board.Snapshot().Phase)

	status, _ = e.do(t, http.MethodGet, "/api/v1/admin/appointments?status=archived", nil, token)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, raw = e.do(t, http.MethodGet, "/api/v1/admin/events?limit=2", nil, token)
	require.Equal(t, http.StatusOK, status)
	trail := decode[[]models.Event](t, raw)
	require.Len(t, trail, 2)
	assert.Equal(t, "appointment.status", trail[0].Type)
}

func TestSessionAndBookingPrefill(t *testing.T) {
	e := newEnv(t, nil, nil)

	status, raw := e.do(t, http.MethodGet, "/api/v1/session", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, decode[handlers.SessionResponse](t, raw).User)

	status, _ = e.do(t, http.MethodGet, "/api/v1/session/appointments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	reg := models.Registration{Name: "Délali", Email: "delali@example.tg", Phone: "+228 91 00 00 00", Password: "pw"}
	status, raw = e.do(t, http.MethodPost, "/api/v1/session/register", reg, "")
	require.Equal(t, http.StatusCreated, status)
	user := decode[handlers.SessionResponse](t, raw).User
	require.NotNil(t, user)

	booking := models.AppointmentDraft{DoctorID: "dr-missing", Date: "2026-12-01", Reason: "Contrôle"}
	status, raw = e.do(t, http.MethodPost, "/api/v1/bookings", booking, "")
	require.Equal(t, http.StatusCreated, status)
	created := decode[handlers.BookingResponse](t, raw)
	assert.Equal(t, "Délali", created.PatientName)
	assert.Equal(t, "delali@example.tg", created.PatientEmail)
	assert.Equal(t, user.ID, created.UserID)
	assert.Equal(t, services.UnknownDoctor, created.DoctorName)

	status, raw = e.do(t, http.MethodGet, "/api/v1/session/appointments", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Appointment](t, raw), 1)

	status, _ = e.do(t, http.MethodPost, "/api/v1/session/logout", nil, "")
	assert.Equal(t, http.StatusNoContent, status)

	// anonymous bookings need the contact fields
	status, raw = e.do(t, http.MethodPost, "/api/v1/bookings", booking, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"patientName", "patientPhone", "patientEmail"}, decode[store.ErrorBody](t, raw).Fields)

	status, raw = e.do(t, http.MethodPost, "/api/v1/session/login", models.Credentials{Email: "delali@example.tg", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, user.ID, decode[handlers.SessionResponse](t, raw).User.ID)
}

func TestCatalogAndChat(t *testing.T) {
	e := newEnv(t, nil, nil)

	status, raw := e.do(t, http.MethodGet, "/api/v1/doctors", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Doctor](t, raw), 3)

	status, raw = e.do(t, http.MethodGet, "/api/v1/clinic", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "+228 22 21 00 00", decode[models.ClinicInfo](t, raw).Phone)

	status, raw = e.do(t, http.MethodPost, "/api/v1/chat", handlers.ChatRequest{Message: " Bonjour "}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Vous avez dit : Bonjour", decode[handlers.ChatResponse](t, raw).Reply)

	status, _ = e.do(t, http.MethodPost, "/api/v1/chat", handlers.ChatRequest{Message: "  "}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, nil, NewRateLimiter(0.001, 1))

	status, _ := e.do(t, http.MethodPost, "/api/v1/chat", handlers.ChatRequest{Message: "un"}, "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/chat", handlers.ChatRequest{Message: "deux"}, "")
	assert.Equal(t, http.StatusTooManyRequests, status)

	// unthrottled routes are unaffected
	status, _ = e.do(t, http.MethodGet, "/api/v1/services", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t, nil, nil)
	status, _ := e.do(t, http.MethodPost, "/appointments", draft("Metric Test"), "")
	require.Equal(t, http.StatusCreated, status)

	status, raw := e.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(raw))

	status, raw = e.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `clinique_appointments_submissions_total{outcome="created"} 1`)
}

func TestJunkStatusesShareOneSeries(t *testing.T) {
	e := newEnv(t, nil, nil)
	status, raw := e.do(t, http.MethodPost, "/appointments", draft("Label Test"), "")
	require.Equal(t, http.StatusCreated, status)
	id := decode[models.Appointment](t, raw).ID

	for _, junk := range []models.AppointmentStatus{"junk-1", "junk-2"} {
		status, _ = e.do(t, http.MethodPatch, "/appointments/"+id, models.StatusUpdate{Status: junk}, "")
		require.Equal(t, http.StatusUnprocessableEntity, status)
	}

	_, raw = e.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Contains(t, string(raw), `clinique_appointments_transitions_total{outcome="invalid",to="invalid"} 2`)
	assert.NotContains(t, string(raw), "junk-")
}
