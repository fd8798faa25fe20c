package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/oseikb/bookline/internal/api/middleware"
	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/infrastructure/observability"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

// BookingOperations defines the booking lifecycle operations the handler
// needs
type BookingOperations interface {
	Book(ctx context.Context, req services.BookRequest) (*entities.Booking, error)
	Cancel(ctx context.Context, requesterID int64, requesterIsAdmin bool, bookingID int64) error
	AdminDelete(ctx context.Context, bookingID int64) error
	ListMine(ctx context.Context, userID int64) ([]*entities.Booking, error)
	ListAll(ctx context.Context) ([]*entities.Booking, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	service BookingOperations
	metrics *observability.Metrics
}

// NewBookingHandler creates a new booking handler. metrics may be nil.
func NewBookingHandler(service BookingOperations, metrics *observability.Metrics) *BookingHandler {
	return &BookingHandler{
		service: service,
		metrics: metrics,
	}
}

type createBookingRequest struct {
	ProviderID int64  `json:"provider_id"`
	ServiceID  int64  `json:"service_id"`
	StartAt    string `json:"start_at"`
	Note       string `json:"note"`
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.Book(r.Context(), services.BookRequest{
		UserID:     user.ID,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StartAt:    req.StartAt,
		Note:       req.Note,
	})
	if err != nil {
		observability.RecordError(trace.SpanFromContext(r.Context()), err)
		if h.metrics != nil && apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			h.metrics.SlotConflicts.Add(r.Context(), 1,
				metric.WithAttributes(attribute.Int64("provider_id", req.ProviderID)))
		}
		respondWithAppError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.BookingCount.Add(r.Context(), 1,
			metric.WithAttributes(attribute.Int64("provider_id", booking.ProviderID)))
	}

	respondWithJSON(w, http.StatusCreated, booking)
}

// ListMine handles GET /api/my/bookings
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	bookings, err := h.service.ListMine(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if bookings == nil {
		bookings = []*entities.Booking{}
	}
	respondWithJSON(w, http.StatusOK, bookings)
}

// Cancel handles POST /api/bookings/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	bookingID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	if err := h.service.Cancel(r.Context(), user.ID, user.IsAdmin(), bookingID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// AdminList handles GET /api/admin/bookings
func (h *BookingHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListAll(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if bookings == nil {
		bookings = []*entities.Booking{}
	}
	respondWithJSON(w, http.StatusOK, bookings)
}

// AdminDelete handles DELETE /api/admin/bookings/{id}
func (h *BookingHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	if err := h.service.AdminDelete(r.Context(), bookingID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
