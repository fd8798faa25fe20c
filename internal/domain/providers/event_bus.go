package providers

import (
	"context"

	"github.com/oseikb/bookline/internal/domain/entities"
)

// EventChannelBookingUpdates carries booking lifecycle events.
const EventChannelBookingUpdates = "booking:updates"

// EventBus defines the interface for publishing and subscribing to booking
// events across instances.
type EventBus interface {
	// Publish publishes an event to all subscribers of the channel
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error

	// Subscribe returns a channel of events; it is closed when ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)

	// Close shuts the bus down and releases all subscriptions
	Close() error
}
