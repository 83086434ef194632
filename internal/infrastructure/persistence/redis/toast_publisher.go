package redis

import (
	"context"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/pkg/circuitbreaker"
)

// ToastPublisher publishes every toast on ChannelToasts.
type ToastPublisher struct {
	cache   *Cache
	channel string
	breaker *circuitbreaker.CircuitBreaker
}

// NewToastPublisher creates a publisher on the default channel. breaker may
// be nil.
func NewToastPublisher(cache *Cache, breaker *circuitbreaker.CircuitBreaker) *ToastPublisher {
	return &ToastPublisher{cache: cache, channel: ChannelToasts, breaker: breaker}
}

// PublishToast sends the toast JSON.
func (p *ToastPublisher) PublishToast(ctx context.Context, t classroom.Toast) error {
	return p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.cache.Publish(ctx, p.channel, t)
	})
}
