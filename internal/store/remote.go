package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/clinique-espoir-be/internal/models"
)

// ErrorBody is the JSON error document of the wire contract.
type ErrorBody struct {
	Message string                   `json:"message"`
	Fields  []string                 `json:"fields,omitempty"`
	Current models.AppointmentStatus `json:"current,omitempty"`
}

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Remote translates every store operation into one JSON request to a clinic API.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates a remote-mode store. timeout bounds every request.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return NewRemoteWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewRemoteWithClient lets callers supply their own HTTP client.
func NewRemoteWithClient(baseURL string, client *http.Client) *Remote {
	return &Remote{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// statusError is a non-2xx answer that the caller maps to a domain error.
type statusError struct {
	code int
	body ErrorBody
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote store answered %d: %s", e.code, e.body.Message)
}

func (r *Remote) CreateUser(ctx context.Context, reg models.Registration) (models.User, error) {
	var user models.User
	err := r.do(ctx, "register", http.MethodPost, "/auth/register", reg, &user)
	if se, ok := asStatus(err); ok {
		switch se.code {
		case http.StatusBadRequest:
			return models.User{}, &models.ConflictError{Field: "email", Value: reg.Email}
		case http.StatusUnprocessableEntity:
			return models.User{}, &models.ValidationError{Fields: se.body.Fields}
		}
	}
	return user, err
}

func (r *Remote) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := r.do(ctx, "login", http.MethodPost, "/auth/login", models.Credentials{Email: email, Password: password}, &user)
	if se, ok := asStatus(err); ok && se.code == http.StatusUnauthorized {
		return models.User{}, models.ErrAuth
	}
	return user, err
}

func (r *Remote) CreateAppointment(ctx context.Context, draft models.AppointmentDraft) (models.Appointment, error) {
	var a models.Appointment
	err := r.do(ctx, "create appointment", http.MethodPost, "/appointments", draft, &a)
	if se, ok := asStatus(err); ok && se.code == http.StatusUnprocessableEntity {
		return models.Appointment{}, &models.ValidationError{Fields: se.body.Fields}
	}
	return a, err
}

// ListAppointments never fails: when the service cannot answer, the dashboard
// gets an empty collection instead of an error.
func (r *Remote) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	items, err := r.list(ctx)
	if err != nil {
		log.Warn().Err(err).Str("base_url", r.baseURL).Msg("Listing appointments failed, returning empty collection")
		return []models.Appointment{}, nil
	}
	return items, nil
}

func (r *Remote) list(ctx context.Context) ([]models.Appointment, error) {
	var items []models.Appointment
	if err := r.do(ctx, "list appointments", http.MethodGet, "/appointments", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Appointment{}
	}
	SortNewestFirst(items)
	return items, nil
}

// FindAppointment scans the full listing. Unlike ListAppointments, errors are returned.
func (r *Remote) FindAppointment(ctx context.Context, id string) (models.Appointment, error) {
	items, err := r.list(ctx)
	if err != nil {
		return models.Appointment{}, err
	}
	for _, a := range items {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Appointment{}, models.ErrNotFound
}

func (r *Remote) PatchAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, error) {
	var a models.Appointment
	err := r.do(ctx, "update status", http.MethodPatch, "/appointments/"+url.PathEscape(id), models.StatusUpdate{Status: status}, &a)
	if se, ok := asStatus(err); ok {
		switch se.code {
		case http.StatusNotFound:
			return models.Appointment{}, models.ErrNotFound
		case http.StatusConflict:
			return models.Appointment{}, &models.TransitionError{ID: id, From: se.body.Current, To: status}
		case http.StatusUnprocessableEntity:
			return models.Appointment{}, &models.ValidationError{Fields: se.body.Fields}
		}
	}
	if err == nil && a.ID == "" {
		// Some deployments answer the patch with an empty document.
		return r.FindAppointment(ctx, id)
	}
	return a, err
}

// do sends one request. Transport failures and 5xx answers become
// *models.StoreUnavailableError; other non-2xx answers become *statusError.
func (r *Remote) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("store: failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("store: failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &models.StoreUnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &models.StoreUnavailableError{Op: op, Err: err}
	}

	if resp.StatusCode >= 500 {
		return &models.StoreUnavailableError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &statusError{code: resp.StatusCode}
		_ = json.Unmarshal(raw, &se.body)
		return se
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("store: failed to decode %s response: %w", op, err)
	}
	return nil
}

func asStatus(err error) (*statusError, bool) {
	var se *statusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
