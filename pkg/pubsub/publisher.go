package pubsub

import "context"

// Pack is a keyed message. Messages with the same key are delivered in order.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}
