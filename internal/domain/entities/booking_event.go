package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of booking lifecycle event
type BookingEventType string

const (
	BookingEventTypeCreated   BookingEventType = "booking.created"
	BookingEventTypeCancelled BookingEventType = "booking.cancelled"
	BookingEventTypeDeleted   BookingEventType = "booking.deleted"
)

// BookingEvent is published on the event bus whenever a booking changes
// state, so slot caches for the affected provider can be invalidated.
type BookingEvent struct {
	ID         string           `json:"id"`
	EventType  BookingEventType `json:"event_type"`
	BookingID  int64            `json:"booking_id"`
	ProviderID int64            `json:"provider_id"`
	StartAt    time.Time        `json:"start_at"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewBookingEvent creates a new booking event
func NewBookingEvent(eventType BookingEventType, booking *Booking) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		StartAt:    booking.StartAt,
		Timestamp:  time.Now(),
	}
}
