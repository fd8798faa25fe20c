package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/providers"
	"github.com/oseikb/bookline/internal/domain/repositories"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

const (
	// BookingHorizonDays is the rolling window within which new bookings
	// may be placed.
	BookingHorizonDays = 30

	// MaxSlotRangeDays caps a single slot query.
	MaxSlotRangeDays = 60

	dateLayout = "2006-01-02"
)

// SlotList is the result of a slot query, valid only relative to the
// schedule/ledger snapshot it was computed from.
type SlotList struct {
	ProviderID int64    `json:"providerId"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Slots      []string `json:"slots"`
}

// BookRequest carries a booking attempt.
type BookRequest struct {
	UserID     int64
	ProviderID int64
	ServiceID  int64
	StartAt    string
	Note       string
}

// BookingService composes the slot generator and the booking ledger. The
// availability recheck before insert is advisory (it produces the precise
// "slot not available" answer); the ledger's atomic uniqueness constraint is
// what actually arbitrates concurrent attempts.
type BookingService struct {
	bookings  repositories.BookingRepository
	providers repositories.ProviderRepository
	services  repositories.ServiceRepository
	slots     *SlotGenerator
	clock     providers.Clock
	eventBus  providers.EventBus
}

// NewBookingService creates a new booking service. eventBus may be nil when
// no bus is configured; lifecycle events are then skipped.
func NewBookingService(
	bookings repositories.BookingRepository,
	providerRepo repositories.ProviderRepository,
	serviceRepo repositories.ServiceRepository,
	slots *SlotGenerator,
	clock providers.Clock,
	eventBus providers.EventBus,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		providers: providerRepo,
		services:  serviceRepo,
		slots:     slots,
		clock:     clock,
		eventBus:  eventBus,
	}
}

// ListSlots computes the provider's available slots. from/to are optional
// "2006-01-02" dates; the default range is today through +30 days. A `to`
// date is inclusive (the whole day is scanned). Ranges with to <= from or
// spanning more than 60 days are rejected.
func (s *BookingService) ListSlots(ctx context.Context, providerID int64, fromStr, toStr string) (*SlotList, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	from := midnight(now)
	if fromStr != "" {
		from, err = parseDate(fromStr, now.Location())
		if err != nil {
			return nil, apperrors.NewValidationError("invalid from date")
		}
	}

	to := from.AddDate(0, 0, BookingHorizonDays)
	if toStr != "" {
		toDate, err := parseDate(toStr, now.Location())
		if err != nil {
			return nil, apperrors.NewValidationError("invalid to date")
		}
		// Inclusive end date: scan through the end of that day.
		to = toDate.Add(24*time.Hour - time.Minute)
	}

	if !to.After(from) {
		return nil, apperrors.NewValidationError("to must be after from")
	}
	if int(to.Sub(from).Hours()/24) > MaxSlotRangeDays {
		return nil, apperrors.NewValidationError("date range too large (max 60 days)")
	}

	booked, err := s.activeStartTimes(ctx, providerID, from, to)
	if err != nil {
		return nil, err
	}

	return &SlotList{
		ProviderID: providerID,
		From:       from.Format(dateLayout),
		To:         to.Format(dateLayout),
		Slots:      s.slots.Generate(provider.WorkingHours, from, to, booked, now),
	}, nil
}

// Book validates and commits a booking attempt. The requested start time
// must be a currently-available slot inside the booking horizon. A conflict
// from the ledger insert means the slot was taken by a concurrent request
// after the availability recheck; it is reported distinctly from a stale
// "slot not available" view so clients know to refetch.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*entities.Booking, error) {
	if req.ProviderID <= 0 || req.ServiceID <= 0 || req.StartAt == "" {
		return nil, apperrors.NewValidationError("provider_id, service_id and start_at are required")
	}

	provider, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.services.GetByID(ctx, req.ServiceID); err != nil {
		return nil, err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid start_at")
	}

	now := s.clock.Now()
	from := midnight(now)
	to := from.AddDate(0, 0, BookingHorizonDays)

	if startAt.Before(from) || !startAt.Before(to) {
		return nil, apperrors.NewValidationError("start time must be within next 30 days")
	}

	// Fresh availability recheck against the live ledger.
	booked, err := s.activeStartTimes(ctx, req.ProviderID, from, to)
	if err != nil {
		return nil, err
	}
	available := s.slots.Generate(provider.WorkingHours, from, to, booked, now)

	canonical := CanonicalSlot(startAt, from.Location())
	if !containsSlot(available, canonical) {
		return nil, apperrors.NewValidationError("slot not available")
	}

	booking := &entities.Booking{
		UserID:     req.UserID,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StartAt:    startAt.In(from.Location()).Truncate(time.Minute),
		CreatedAt:  now,
		Note:       req.Note,
	}

	if err := s.bookings.TryInsert(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.BookingEventTypeCreated, booking)
	return booking, nil
}

// Cancel records a cancellation on behalf of the booking's owner or an
// admin. Repeated cancels and cancels of deleted bookings are rejected.
func (s *BookingService) Cancel(ctx context.Context, requesterID int64, requesterIsAdmin bool, bookingID int64) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.UserID != requesterID && !requesterIsAdmin {
		return apperrors.NewForbiddenError("not allowed to cancel this booking")
	}

	if err := s.bookings.Cancel(ctx, bookingID, s.clock.Now()); err != nil {
		return err
	}

	s.publish(ctx, entities.BookingEventTypeCancelled, booking)
	return nil
}

// AdminDelete soft-deletes a booking. Role enforcement happens at the API
// layer; the deleted slot becomes bookable again.
func (s *BookingService) AdminDelete(ctx context.Context, bookingID int64) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.bookings.SoftDelete(ctx, bookingID, s.clock.Now()); err != nil {
		return err
	}

	s.publish(ctx, entities.BookingEventTypeDeleted, booking)
	return nil
}

// ListMine returns the user's bookings, startAt ascending.
func (s *BookingService) ListMine(ctx context.Context, userID int64) ([]*entities.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListAll returns every booking, startAt ascending (admin listing).
func (s *BookingService) ListAll(ctx context.Context) ([]*entities.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *BookingService) activeStartTimes(ctx context.Context, providerID int64, from, to time.Time) ([]time.Time, error) {
	active, err := s.bookings.ListActive(ctx, providerID, from, to)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(active))
	for _, b := range active {
		times = append(times, b.StartAt)
	}
	return times, nil
}

// publish emits a lifecycle event; bus failures are logged, never surfaced
// to the caller.
func (s *BookingService) publish(ctx context.Context, eventType entities.BookingEventType, booking *entities.Booking) {
	if s.eventBus == nil {
		return
	}

	event := entities.NewBookingEvent(eventType, booking)
	if err := s.eventBus.Publish(ctx, providers.EventChannelBookingUpdates, event); err != nil {
		log.Warn().Err(err).
			Str("event_type", string(eventType)).
			Int64("booking_id", booking.ID).
			Msg("failed to publish booking event")
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, loc)
}

func containsSlot(slots []string, want string) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}
