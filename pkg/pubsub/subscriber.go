package pubsub

import (
	"context"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type SubscribeHandler func(context.Context, *Pack, time.Time)

// Subscriber consumes the topics of a Router. Subscribe returns once the
// consumer is ready, messages are then handled in background.
type Subscriber interface {
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}

// Router maps a topic to the handler of its messages.
type Router map[string]SubscribeHandler

// Topics returns the routed topics in a stable order.
func (r Router) Topics() []string {
	topics := maps.Keys(r)
	slices.Sort(topics)
	return topics
}

// Handle passes a message to the handler of its topic. It reports false for
// an unrouted topic.
func (r Router) Handle(ctx context.Context, topic string, pack *Pack, t time.Time) bool {
	handler, ok := r[topic]
	if !ok || handler == nil {
		return false
	}

	handler(ctx, pack, t)
	return true
}
