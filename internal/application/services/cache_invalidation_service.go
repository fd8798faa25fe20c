package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/providers"
)

// CacheInvalidationService listens for booking lifecycle events and drops
// the cached slot responses of the affected provider, so availability seen
// by clients converges immediately instead of waiting for TTL expiry.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to booking updates and begins invalidating in the
// background.
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelBookingUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to booking updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.BookingEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidateProviderSlots(ctx, event.ProviderID); err != nil {
		log.Warn().Err(err).
			Str("event_id", event.ID).
			Int64("provider_id", event.ProviderID).
			Msg("failed to invalidate slot cache")
		return
	}

	log.Debug().
		Str("event_type", string(event.EventType)).
		Int64("provider_id", event.ProviderID).
		Msg("invalidated slot cache")
}

// InvalidateProviderSlots drops every cached slot response for a provider.
// Every created, cancelled or deleted booking changes that provider's
// availability, so the whole per-provider slot namespace goes.
func (s *CacheInvalidationService) InvalidateProviderSlots(ctx context.Context, providerID int64) error {
	pattern := fmt.Sprintf("http:cache:*providers/%d/slots*", providerID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
	}
	return nil
}
