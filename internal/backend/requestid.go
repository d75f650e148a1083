package backend

import "context"

type requestIDKey struct{}

// WithRequestID attaches the id sent as X-Request-ID on backend calls made
// with ctx. Calls without one get a fresh id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id attached by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
