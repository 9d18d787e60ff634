package xcontext

import "context"

type (
	userIDKey    struct{}
	callNonceKey struct{}
)

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// RequestUserID returns the authenticated caller address, or an empty string.
func RequestUserID(ctx context.Context) string {
	id := ctx.Value(userIDKey{})
	if id == nil {
		return ""
	}

	return id.(string)
}

// WithCallNonce marks the call as coming from an external signer. The harness
// consumes this nonce in the same transaction as the operation.
func WithCallNonce(ctx context.Context, nonce uint64) context.Context {
	return context.WithValue(ctx, callNonceKey{}, nonce)
}

func CallNonce(ctx context.Context) (uint64, bool) {
	nonce := ctx.Value(callNonceKey{})
	if nonce == nil {
		return 0, false
	}

	return nonce.(uint64), true
}
