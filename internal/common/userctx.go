package common

import "context"

// UserContext holds the authenticated user for a request, populated by the
// bearer-token middleware from JWT claims. When absent, the request operates
// in ephemeral mode: quote cache only, no persisted-store reads or writes.
type UserContext struct {
	UserID      string
	Email       string
	DisplayName string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUserID returns the UserID from context, or "" when no user is
// authenticated. Services treat the empty ID as "do not touch the store".
func ResolveUserID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.UserID
	}
	return ""
}
