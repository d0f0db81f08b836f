package models

import "time"

// Event represents an entry in the audit trail of the booking system.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`  // e.g., "appointment.create", "appointment.status"
	Level         string    `json:"level"` // e.g., "info", "warn", "error"
	Message       string    `json:"message"`
	AppointmentID *string   `json:"appointmentId,omitempty"` // Nullable for account events
	CreatedAt     time.Time `json:"createdAt"`
}
