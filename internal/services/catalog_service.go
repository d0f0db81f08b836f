package services

import "github.com/isdelr/clinique-espoir-be/internal/models"

// UnknownDoctor is displayed when an appointment references no known doctor.
const UnknownDoctor = "Non spécifié"

// CatalogServiceProvider defines the interface for the clinic's static catalog.
type CatalogServiceProvider interface {
	Clinic() models.ClinicInfo
	Doctors() []models.Doctor
	Services() []models.Service
	DoctorName(id string) string
}

// CatalogService serves the clinic, doctor and service listings.
type CatalogService struct {
	clinic   models.ClinicInfo
	doctors  []models.Doctor
	services []models.Service
}

// NewCatalogService creates a new CatalogService with the clinic's listings.
func NewCatalogService() *CatalogService {
	return &CatalogService{
		clinic: models.ClinicInfo{
			Name:    "Clinique Espoir Lomé",
			Address: "145 Blvd du 13 Janvier, Lomé, Togo",
			Phone:   "+228 22 21 00 00",
			Email:   "contact@clinique-espoir-lome.tg",
		},
		doctors: []models.Doctor{
			{
				ID:           "dr-kouassi",
				Name:         "Dr. Jean Kouassi",
				Specialty:    "Cardiologie",
				Image:        "https://picsum.photos/id/1012/300/300",
				Availability: []string{"Lundi", "Mercredi", "Vendredi"},
				Bio:          "Spécialiste des maladies cardiovasculaires avec plus de 15 ans d'expérience au CHU Sylvanus Olympio.",
			},
			{
				ID:           "dr-adjoavi",
				Name:         "Dr. Marie Adjoavi",
				Specialty:    "Pédiatrie",
				Image:        "https://picsum.photos/id/338/300/300",
				Availability: []string{"Mardi", "Jeudi", "Samedi"},
				Bio:          "Passionnée par la santé infantile, le Dr. Adjoavi assure le suivi complet de vos enfants.",
			},
			{
				ID:           "dr-mensah",
				Name:         "Dr. Paul Mensah",
				Specialty:    "Médecine Générale",
				Image:        "https://picsum.photos/id/1025/300/300",
				Availability: []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi"},
				Bio:          "Médecin chef de la clinique, expert en diagnostic rapide et médecine préventive.",
			},
		},
		services: []models.Service{
			{ID: "serv-gen", Title: "Médecine Générale", Description: "Consultations primaires, bilans de santé et suivi chronique.", Icon: "Stethoscope"},
			{ID: "serv-ped", Title: "Pédiatrie", Description: "Soins complets pour nourrissons, enfants et adolescents.", Icon: "Baby"},
			{ID: "serv-mat", Title: "Maternité", Description: "Suivi de grossesse, accouchement et soins post-nataux.", Icon: "Heart"},
			{ID: "serv-urg", Title: "Urgences 24/7", Description: "Service d'urgence ouvert tous les jours, toute l'année.", Icon: "Ambulance"},
			{ID: "serv-lab", Title: "Laboratoire", Description: "Analyses biomédicales complètes sur place.", Icon: "FlaskConical"},
			{ID: "serv-rad", Title: "Radiologie", Description: "Échographie, Radio numérique et Scanner.", Icon: "ScanLine"},
		},
	}
}

func (s *CatalogService) Clinic() models.ClinicInfo { return s.clinic }

// Doctors returns a copy of the doctor listing.
func (s *CatalogService) Doctors() []models.Doctor {
	out := make([]models.Doctor, len(s.doctors))
	copy(out, s.doctors)
	return out
}

// Services returns a copy of the service listing.
func (s *CatalogService) Services() []models.Service {
	out := make([]models.Service, len(s.services))
	copy(out, s.services)
	return out
}

// DoctorName resolves a doctor id, falling back to UnknownDoctor for
// dangling or empty references.
func (s *CatalogService) DoctorName(id string) string {
	for _, d := range s.doctors {
		if d.ID == id {
			return d.Name
		}
	}
	return UnknownDoctor
}
