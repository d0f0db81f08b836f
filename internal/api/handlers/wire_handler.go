package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/services"
)

// WireHandler serves the record-store contract that remote-mode instances
// talk to: registration, login and the appointment collection.
type WireHandler struct {
	accounts     services.AccountServiceProvider
	appointments services.AppointmentServiceProvider
}

// NewWireHandler creates a new WireHandler.
func NewWireHandler(accounts services.AccountServiceProvider, appointments services.AppointmentServiceProvider) *WireHandler {
	return &WireHandler{accounts: accounts, appointments: appointments}
}

// Register handles POST /auth/register.
func (h *WireHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}
	user, err := h.accounts.Register(r.Context(), reg)
	if err != nil {
		writeError(w, err, "Erreur serveur lors de l'inscription")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *WireHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	user, err := h.accounts.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, err, "Erreur serveur lors de la connexion")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateAppointment handles POST /appointments.
func (h *WireHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var draft models.AppointmentDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	a, err := h.appointments.Submit(r.Context(), draft)
	if err != nil {
		writeError(w, err, "Erreur lors de la création du rendez-vous")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// ListAppointments handles GET /appointments.
func (h *WireHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	items, err := h.appointments.ListAll(r.Context())
	if err != nil {
		writeError(w, err, "Erreur lors de la récupération des rendez-vous")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// UpdateStatus handles PATCH /appointments/{id}.
func (h *WireHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var update models.StatusUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	a, err := h.appointments.SetStatus(r.Context(), chi.URLParam(r, "id"), update.Status)
	if err != nil {
		writeError(w, err, "Erreur lors de la mise à jour")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
