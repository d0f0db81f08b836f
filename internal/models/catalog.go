package models

// Doctor is a practitioner listed on the doctors page and selectable when booking.
type Doctor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Specialty    string   `json:"specialty"`
	Image        string   `json:"image"`
	Availability []string `json:"availability"`
	Bio          string   `json:"bio"`
}

// Service is a medical service offered by the clinic.
type Service struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"` // Name of the icon rendered by the front end
}

// ClinicInfo holds the contact details shown in the page footer and contact page.
type ClinicInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}
