package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/store"
	"github.com/rs/zerolog/log"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

// Messages shown to patients and to the admin.
const (
	msgBadRequest  = "Requête invalide."
	msgValidation  = "Veuillez remplir tous les champs obligatoires."
	msgConflict    = "Cet email est déjà utilisé."
	msgAuth        = "Email ou mot de passe incorrect."
	msgNotFound    = "Rendez-vous introuvable."
	msgTransition  = "Ce rendez-vous a déjà été traité."
	msgUnavailable = "Le service est momentanément indisponible. Veuillez réessayer plus tard."
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, store.ErrorBody{Message: message})
}

// writeError maps domain errors to the statuses of the wire contract.
// fallback is the message for anything unexpected.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var (
		validation  *models.ValidationError
		conflict    *models.ConflictError
		transition  *models.TransitionError
		unavailable *models.StoreUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, store.ErrorBody{Message: msgValidation, Fields: validation.Fields})
	case errors.As(err, &conflict):
		writeMessage(w, http.StatusBadRequest, msgConflict)
	case errors.Is(err, models.ErrAuth):
		writeMessage(w, http.StatusUnauthorized, msgAuth)
	case errors.Is(err, models.ErrNotFound):
		writeMessage(w, http.StatusNotFound, msgNotFound)
	case errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, store.ErrorBody{Message: msgTransition, Current: transition.From})
	case errors.As(err, &unavailable):
		log.Error().Err(err).Msg("Record store unavailable")
		writeMessage(w, http.StatusServiceUnavailable, msgUnavailable)
	default:
		log.Error().Err(err).Msg(fallback)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads the request body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return false
	}
	return true
}
