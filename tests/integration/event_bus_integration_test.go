//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oseikb/bookline/internal/adapters/cache"
	"github.com/oseikb/bookline/internal/adapters/events"
	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/providers"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	channel := providers.EventChannelBookingUpdates
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := eventBus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := eventBus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := entities.NewBookingEvent(entities.BookingEventTypeCreated, &entities.Booking{
		ID:         42,
		ProviderID: 7,
		StartAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})

	err = eventBus.Publish(context.Background(), channel, event)
	require.NoError(t, err)

	received1 := waitForBookingEvent(t, sub1)
	received2 := waitForBookingEvent(t, sub2)

	assert.Equal(t, event.ID, received1.ID)
	assert.Equal(t, event.ID, received2.ID)
	assert.Equal(t, int64(7), received1.ProviderID)
}

func TestBookingEventInvalidatesSlotCache(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	cacheProvider := cache.NewRedisAdapter(redisClient)
	ctx := context.Background()

	slotKey := "http:cache:GET:/api/providers/7/slots?from=2026-03-02&to=2026-03-08"
	otherKey := "http:cache:GET:/api/providers/8/slots"
	require.NoError(t, cacheProvider.Set(ctx, slotKey, []byte(`["slot"]`), 60))
	require.NoError(t, cacheProvider.Set(ctx, otherKey, []byte(`["slot"]`), 60))

	invalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
	require.NoError(t, invalidation.Start())
	defer invalidation.Stop()
	time.Sleep(50 * time.Millisecond)

	event := entities.NewBookingEvent(entities.BookingEventTypeCreated, &entities.Booking{
		ID:         1,
		ProviderID: 7,
		StartAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, eventBus.Publish(ctx, providers.EventChannelBookingUpdates, event))

	require.Eventually(t, func() bool {
		exists, err := cacheProvider.Exists(ctx, slotKey)
		return err == nil && !exists
	}, 3*time.Second, 50*time.Millisecond, "slot cache entry should be dropped")

	// Other providers keep their cached slots.
	exists, err := cacheProvider.Exists(ctx, otherKey)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cacheProvider.Delete(ctx, otherKey))
}

func waitForBookingEvent(t *testing.T, ch <-chan *entities.BookingEvent) *entities.BookingEvent {
	t.Helper()
	select {
	case event := <-ch:
		require.NotNil(t, event)
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for booking event")
		return nil
	}
}
