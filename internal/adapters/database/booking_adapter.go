package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/repositories"
	"github.com/oseikb/bookline/internal/infrastructure/clients/postgres"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

// slotUniqueIndex is the partial unique index on bookings
// (provider_id, start_at) WHERE cancelled_at IS NULL AND deleted_at IS NULL.
// It is what arbitrates concurrent booking attempts for the same slot.
const slotUniqueIndex = "uniq_provider_start_active"

var bookingColumns = []interface{}{
	"id", "user_id", "provider_id", "service_id", "start_at",
	"created_at", "cancelled_at", "deleted_at", "note",
}

// BookingAdapter implements the BookingRepository interface against the
// bookings table.
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// TryInsert inserts the booking in a single statement and lets the partial
// unique index decide slot ownership. Losing the race surfaces as a conflict.
func (a *BookingAdapter) TryInsert(ctx context.Context, booking *entities.Booking) error {
	query, args, err := a.db.Insert("bookings").
		Rows(goqu.Record{
			"user_id":     booking.UserID,
			"provider_id": booking.ProviderID,
			"service_id":  booking.ServiceID,
			"start_at":    booking.StartAt,
			"created_at":  booking.CreatedAt,
			"note":        booking.Note,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&booking.ID)
	if err != nil {
		if isSlotConflict(err) {
			return apperrors.NewConflictError("slot already booked")
		}
		return apperrors.NewInternalError("failed to create booking", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id int64) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}

	return booking, nil
}

// ListActive returns slot-occupying bookings for the provider in [from, to).
// The predicate matches the partial unique index exactly, so what this query
// sees as occupied is precisely what the index refuses to duplicate.
func (a *BookingAdapter) ListActive(ctx context.Context, providerID int64, from, to time.Time) ([]*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(
			goqu.Ex{"provider_id": providerID},
			goqu.C("start_at").Gte(from),
			goqu.C("start_at").Lt(to),
			goqu.C("cancelled_at").IsNull(),
			goqu.C("deleted_at").IsNull(),
		).
		Order(goqu.I("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryBookings(ctx, query, args)
}

// Cancel records the cancellation with a single conditional update. Zero rows
// affected means the booking either does not exist or is no longer
// cancellable; a re-read distinguishes the two.
func (a *BookingAdapter) Cancel(ctx context.Context, id int64, at time.Time) error {
	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{"cancelled_at": at}).
		Where(
			goqu.Ex{"id": id},
			goqu.C("cancelled_at").IsNull(),
			goqu.C("deleted_at").IsNull(),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build cancel query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to cancel booking", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	booking, err := a.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.IsDeleted() {
		return apperrors.NewConflictError("booking deleted")
	}
	return apperrors.NewConflictError("booking already cancelled")
}

// SoftDelete records the deletion with a single conditional update. The slot
// becomes bookable again; the row stays for audit.
func (a *BookingAdapter) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{"deleted_at": at}).
		Where(
			goqu.Ex{"id": id},
			goqu.C("deleted_at").IsNull(),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete booking", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := a.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.NewConflictError("booking already deleted")
}

// ListByUser returns all of a user's bookings, startAt ascending.
func (a *BookingAdapter) ListByUser(ctx context.Context, userID int64) ([]*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryBookings(ctx, query, args)
}

// ListAll returns every booking, startAt ascending.
func (a *BookingAdapter) ListAll(ctx context.Context) ([]*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Order(goqu.I("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryBookings(ctx, query, args)
}

func (a *BookingAdapter) queryBookings(ctx context.Context, query string, args []interface{}) ([]*entities.Booking, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	var bookings []*entities.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate bookings", err)
	}

	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var cancelledAt, deletedAt sql.NullTime
	var note sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ProviderID,
		&booking.ServiceID,
		&booking.StartAt,
		&booking.CreatedAt,
		&cancelledAt,
		&deletedAt,
		&note,
	)
	if err != nil {
		return nil, err
	}

	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	if deletedAt.Valid {
		booking.DeletedAt = &deletedAt.Time
	}
	booking.Note = note.String

	return booking, nil
}

func isSlotConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == slotUniqueIndex
}
