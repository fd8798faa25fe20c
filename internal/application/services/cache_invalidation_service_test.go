package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/providers"
)

// fakeCache records pattern deletes; matchGlob mirrors Redis SCAN MATCH
// closely enough for these tests.
type fakeCache struct {
	mu      sync.RWMutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.data {
		if matchGlob(pattern, key) {
			delete(c.data, key)
			c.deleted = append(c.deleted, key)
		}
	}
	return nil
}

// matchGlob matches a pattern whose only metacharacter is *, as Redis MATCH
// uses it (a star crosses any characters, slashes included).
func matchGlob(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) deletedKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.deleted...)
}

type fakeEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.BookingEvent
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{subscribers: make(map[string][]chan *entities.BookingEvent)}
}

func (b *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.BookingEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *fakeEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, channels := range b.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	b.subscribers = make(map[string][]chan *entities.BookingEvent)
	return nil
}

func (b *fakeEventBus) subscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[channel])
}

func TestCacheInvalidationService_Start(t *testing.T) {
	cache := newFakeCache()
	bus := newFakeEventBus()
	svc := services.NewCacheInvalidationService(cache, bus)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	assert.Equal(t, 1, bus.subscriberCount(providers.EventChannelBookingUpdates))
}

func TestCacheInvalidationService_DropsSlotCacheOnBookingEvent(t *testing.T) {
	cache := newFakeCache()
	bus := newFakeEventBus()
	svc := services.NewCacheInvalidationService(cache, bus)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "http:cache:GET:/api/providers/1/slots?from=2026-03-02", []byte("a"), 300))
	require.NoError(t, cache.Set(ctx, "http:cache:GET:/api/providers/1/slots", []byte("b"), 300))
	require.NoError(t, cache.Set(ctx, "http:cache:GET:/api/providers/2/slots", []byte("c"), 300))

	event := entities.NewBookingEvent(entities.BookingEventTypeCreated, &entities.Booking{
		ID:         1,
		ProviderID: 1,
		StartAt:    monday.Add(9 * time.Hour),
	})
	require.NoError(t, bus.Publish(ctx, providers.EventChannelBookingUpdates, event))

	require.Eventually(t, func() bool {
		return len(cache.deletedKeys()) == 2
	}, time.Second, 10*time.Millisecond)

	// Other providers' entries survive.
	exists, err := cache.Exists(ctx, "http:cache:GET:/api/providers/2/slots")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheInvalidationService_InvalidateProviderSlots(t *testing.T) {
	cache := newFakeCache()
	svc := services.NewCacheInvalidationService(cache, newFakeEventBus())

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "http:cache:GET:/api/providers/7/slots?to=2026-04-01", []byte("x"), 300))

	require.NoError(t, svc.InvalidateProviderSlots(ctx, 7))
	assert.Len(t, cache.deletedKeys(), 1)
}
