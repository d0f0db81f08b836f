package handlers

import (
	"net/http"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/services"
	"github.com/isdelr/clinique-espoir-be/internal/session"
)

// SessionHandler exposes the patient session of this site.
type SessionHandler struct {
	holder       *session.Holder
	appointments services.AppointmentServiceProvider
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(holder *session.Holder, appointments services.AppointmentServiceProvider) *SessionHandler {
	return &SessionHandler{holder: holder, appointments: appointments}
}

// SessionResponse carries the logged-in user, or null.
type SessionResponse struct {
	User *models.User `json:"user"`
}

// Get returns the current session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	var resp SessionResponse
	if user, ok := h.holder.Current(); ok {
		resp.User = &user
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register creates an account and logs it in.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}
	user, err := h.holder.Register(r.Context(), reg)
	if err != nil {
		writeError(w, err, "Erreur serveur lors de l'inscription")
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{User: &user})
}

// Login authenticates and logs the user in.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	user, err := h.holder.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, err, "Erreur serveur lors de la connexion")
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: &user})
}

// Logout clears the session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.holder.Logout(r.Context()); err != nil {
		writeError(w, err, "Erreur lors de la déconnexion")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Appointments lists the bookings made from the logged-in account.
func (h *SessionHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	user, ok := h.holder.Current()
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Veuillez vous connecter.")
		return
	}
	items, err := h.appointments.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "Erreur lors de la récupération des rendez-vous")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
