package models

import "time"

// AppointmentStatus is the moderation state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// DateLayout is the calendar date format used by appointment dates.
const DateLayout = "2006-01-02"

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Appointment represents a booking request submitted through the site.
type Appointment struct {
	ID           string            `json:"id"`
	PatientName  string            `json:"patientName"`
	PatientEmail string            `json:"patientEmail"`
	PatientPhone string            `json:"patientPhone"`
	DoctorID     string            `json:"doctorId"`
	Date         string            `json:"date"`
	Reason       string            `json:"reason"`
	Status       AppointmentStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UserID       string            `json:"userId,omitempty"`
}

// AppointmentDraft is an appointment before the store assigns its identity fields.
type AppointmentDraft struct {
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail"`
	PatientPhone string `json:"patientPhone"`
	DoctorID     string `json:"doctorId"`
	Date         string `json:"date"`
	Reason       string `json:"reason"`
	UserID       string `json:"userId,omitempty"`
}

// StatusUpdate is the body of a status patch.
type StatusUpdate struct {
	Status AppointmentStatus `json:"status"`
}
