package entities

import (
	"time"

	apperrors "github.com/oseikb/bookline/pkg/errors"
)

// BookingStatus is the booking's lifecycle state, derived from the two
// single-write timestamps. Deleted wins over cancelled so that an
// admin-deleted booking can never re-enter the cancel flow.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusDeleted   BookingStatus = "deleted"
)

// Booking is one row of the booking ledger. StartAt is the slot instant. At
// most one active booking may exist per (provider, startAt); the storage
// layer enforces this with a partial unique index. Bookings are never
// physically removed.
type Booking struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"userId" db:"user_id"`
	ProviderID  int64      `json:"providerId" db:"provider_id"`
	ServiceID   int64      `json:"serviceId" db:"service_id"`
	StartAt     time.Time  `json:"startAt" db:"start_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty" db:"cancelled_at"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
	Note        string     `json:"note,omitempty" db:"note"`
}

// Status derives the lifecycle state.
func (b *Booking) Status() BookingStatus {
	switch {
	case b.DeletedAt != nil:
		return BookingStatusDeleted
	case b.CancelledAt != nil:
		return BookingStatusCancelled
	default:
		return BookingStatusActive
	}
}

// IsCancelled reports whether a cancellation has been recorded.
func (b *Booking) IsCancelled() bool {
	return b.CancelledAt != nil
}

// IsDeleted reports whether an admin soft-delete has been recorded.
func (b *Booking) IsDeleted() bool {
	return b.DeletedAt != nil
}

// Cancel records the cancellation timestamp once. A second cancel and a
// cancel after deletion are rejected so the caller sees the real state.
func (b *Booking) Cancel(at time.Time) error {
	switch b.Status() {
	case BookingStatusDeleted:
		return apperrors.NewConflictError("booking deleted")
	case BookingStatusCancelled:
		return apperrors.NewConflictError("booking already cancelled")
	}
	b.CancelledAt = &at
	return nil
}

// SoftDelete records the deletion timestamp once.
func (b *Booking) SoftDelete(at time.Time) error {
	if b.IsDeleted() {
		return apperrors.NewConflictError("booking already deleted")
	}
	b.DeletedAt = &at
	return nil
}
