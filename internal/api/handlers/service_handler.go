package handlers

import (
	"context"
	"net/http"

	"github.com/oseikb/bookline/internal/domain/entities"
)

// ServiceCatalog defines the service catalog operations the handler needs
type ServiceCatalog interface {
	ListServices(ctx context.Context) ([]*entities.Service, error)
}

// ServiceHandler handles service catalog requests
type ServiceHandler struct {
	catalog ServiceCatalog
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(catalog ServiceCatalog) *ServiceHandler {
	return &ServiceHandler{
		catalog: catalog,
	}
}

// List handles GET /api/services
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if services == nil {
		services = []*entities.Service{}
	}
	respondWithJSON(w, http.StatusOK, services)
}
