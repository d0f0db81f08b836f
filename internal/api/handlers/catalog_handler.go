package handlers

import (
	"net/http"

	"github.com/isdelr/clinique-espoir-be/internal/services"
)

// CatalogHandler serves the clinic's static listings.
type CatalogHandler struct {
	catalog services.CatalogServiceProvider
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog services.CatalogServiceProvider) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Clinic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Clinic())
}

func (h *CatalogHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Doctors())
}

func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Services())
}
