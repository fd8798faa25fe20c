package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
)

// ProviderCatalog defines the provider listing operations the handler needs
type ProviderCatalog interface {
	ListProviders(ctx context.Context) ([]*entities.Provider, error)
}

// SlotService computes a provider's available slots
type SlotService interface {
	ListSlots(ctx context.Context, providerID int64, from, to string) (*services.SlotList, error)
}

// ProviderHandler handles provider listing and slot queries
type ProviderHandler struct {
	catalog ProviderCatalog
	slots   SlotService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(catalog ProviderCatalog, slots SlotService) *ProviderHandler {
	return &ProviderHandler{
		catalog: catalog,
		slots:   slots,
	}
}

// List handles GET /api/providers
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.catalog.ListProviders(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if providers == nil {
		providers = []*entities.Provider{}
	}
	respondWithJSON(w, http.StatusOK, providers)
}

// GetSlots handles GET /api/providers/{id}/slots
func (h *ProviderHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid provider ID")
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	slotList, err := h.slots.ListSlots(r.Context(), providerID, from, to)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if slotList.Slots == nil {
		slotList.Slots = []string{}
	}
	respondWithJSON(w, http.StatusOK, slotList)
}
