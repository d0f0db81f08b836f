package handlers

import (
	"net/http"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/services"
	"github.com/isdelr/clinique-espoir-be/internal/session"
)

// BookingHandler takes appointment requests from the booking page.
type BookingHandler struct {
	appointments services.AppointmentServiceProvider
	catalog      services.CatalogServiceProvider
	holder       *session.Holder
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(appointments services.AppointmentServiceProvider, catalog services.CatalogServiceProvider, holder *session.Holder) *BookingHandler {
	return &BookingHandler{appointments: appointments, catalog: catalog, holder: holder}
}

// BookingResponse is a stored appointment with its doctor's display name.
type BookingResponse struct {
	models.Appointment
	DoctorName string `json:"doctorName"`
}

// Create submits a booking. Blank contact fields are filled from the
// logged-in patient, and the booking is linked to that account.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.AppointmentDraft
	if !decodeJSON(w, r, &draft) {
		return
	}

	draft.UserID = ""
	if user, ok := h.holder.Current(); ok {
		if draft.PatientName == "" {
			draft.PatientName = user.Name
		}
		if draft.PatientEmail == "" {
			draft.PatientEmail = user.Email
		}
		if draft.PatientPhone == "" {
			draft.PatientPhone = user.Phone
		}
		draft.UserID = user.ID
	}

	a, err := h.appointments.Submit(r.Context(), draft)
	if err != nil {
		writeError(w, err, "Erreur lors de la création du rendez-vous")
		return
	}
	writeJSON(w, http.StatusCreated, BookingResponse{Appointment: a, DoctorName: h.catalog.DoctorName(a.DoctorID)})
}
