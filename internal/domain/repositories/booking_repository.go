package repositories

import (
	"context"
	"time"

	"github.com/oseikb/bookline/internal/domain/entities"
)

// BookingRepository is the booking ledger: the authoritative,
// constraint-enforcing store of bookings. Implementations must enforce the
// (provider, startAt) uniqueness of active bookings in the storage layer
// itself, not with a check-then-act in application code, because concurrent
// booking attempts for the same slot are an expected race.
type BookingRepository interface {
	// TryInsert persists a new booking as a single atomic operation. It
	// returns a conflict error when another active booking already holds
	// the same (provider, startAt) pair, and fills in the generated ID on
	// success.
	TryInsert(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id int64) (*entities.Booking, error)

	// ListActive returns the provider's bookings with startAt in
	// [from, to) that still occupy their slot (neither cancelled nor
	// deleted), ordered by startAt ascending.
	ListActive(ctx context.Context, providerID int64, from, to time.Time) ([]*entities.Booking, error)

	// Cancel sets cancelledAt exactly once. It returns a not-found error
	// for unknown IDs and a conflict error when the booking is already
	// cancelled or deleted.
	Cancel(ctx context.Context, id int64, at time.Time) error

	// SoftDelete sets deletedAt exactly once (admin-only operation). It
	// returns a not-found error for unknown IDs and a conflict error when
	// the booking is already deleted.
	SoftDelete(ctx context.Context, id int64, at time.Time) error

	// ListByUser returns all of a user's bookings, startAt ascending.
	ListByUser(ctx context.Context, userID int64) ([]*entities.Booking, error)

	// ListAll returns every booking, startAt ascending.
	ListAll(ctx context.Context) ([]*entities.Booking, error)
}
