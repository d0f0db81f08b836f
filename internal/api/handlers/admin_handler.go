package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/clinique-espoir-be/internal/auth"
	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/moderation"
	"github.com/isdelr/clinique-espoir-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AdminHandler serves the moderation dashboard.
type AdminHandler struct {
	gate    *auth.AdminGate
	tokens  *auth.Tokens
	board   *moderation.Board
	catalog services.CatalogServiceProvider
	secure  bool
}

// NewAdminHandler creates a new AdminHandler. secure marks the token cookie
// as HTTPS-only.
func NewAdminHandler(gate *auth.AdminGate, tokens *auth.Tokens, board *moderation.Board, catalog services.CatalogServiceProvider, secure bool) *AdminHandler {
	return &AdminHandler{gate: gate, tokens: tokens, board: board, catalog: catalog, secure: secure}
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminAppointment is a dashboard row.
type AdminAppointment struct {
	models.Appointment
	DoctorName string `json:"doctorName"`
}

// DashboardResponse is the derived dashboard plus the board state.
type DashboardResponse struct {
	Items       []AdminAppointment  `json:"items"`
	Counters    moderation.Counters `json:"counters"`
	Phase       moderation.Phase    `json:"phase"`
	RefreshedAt time.Time           `json:"refreshedAt"`
}

// Login checks the dashboard password and issues a token, both in the body
// and as a cookie.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.gate.Check(req.Password) {
		log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected admin password")
		writeMessage(w, http.StatusUnauthorized, "Mot de passe incorrect.")
		return
	}

	token, expiresAt, err := h.tokens.GenerateJWT()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate JWT")
		writeMessage(w, http.StatusInternalServerError, "Erreur lors de la connexion")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, AdminLoginResponse{Token: token, ExpiresAt: expiresAt})
}

// Logout drops the token cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /admin/appointments?status=&q=.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.dashboard(q))
}

// Refresh re-reads the store before answering like List.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	if err := h.board.Refresh(r.Context()); err != nil {
		writeError(w, err, "Erreur lors de la récupération des rendez-vous")
		return
	}
	writeJSON(w, http.StatusOK, h.dashboard(q))
}

// UpdateStatus confirms or cancels an appointment and answers with the
// reconciled dashboard.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	var update models.StatusUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	if err := h.board.SetStatus(r.Context(), chi.URLParam(r, "id"), update.Status); err != nil {
		writeError(w, err, "Erreur lors de la mise à jour")
		return
	}
	writeJSON(w, http.StatusOK, h.dashboard(q))
}

func (h *AdminHandler) query(w http.ResponseWriter, r *http.Request) (moderation.Query, bool) {
	filter, err := moderation.ParseFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, &models.ValidationError{Fields: []string{"status"}}, "")
		return moderation.Query{}, false
	}
	return moderation.Query{Filter: filter, Search: r.URL.Query().Get("q")}, true
}

func (h *AdminHandler) dashboard(q moderation.Query) DashboardResponse {
	view := h.board.View(q)
	snap := h.board.Snapshot()

	items := make([]AdminAppointment, 0, len(view.Items))
	for _, a := range view.Items {
		items = append(items, AdminAppointment{Appointment: a, DoctorName: h.catalog.DoctorName(a.DoctorID)})
	}
	return DashboardResponse{Items: items, Counters: view.Counters, Phase: snap.Phase, RefreshedAt: snap.RefreshedAt}
}
