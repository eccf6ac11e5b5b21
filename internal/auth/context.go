package auth

import "context"

type contextKey struct{}

// Caller identifies the authenticated user of a request.
type Caller struct {
	UserID    int64
	Username  string
	SessionID int64
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(contextKey{}).(Caller)
	return c, ok
}

// UserID returns the caller's user id, or 0 for an anonymous request.
func UserID(ctx context.Context) int64 {
	c, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return c.UserID
}

func Username(ctx context.Context) string {
	c, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return c.Username
}
