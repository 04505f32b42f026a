package identity

import "context"

type ctxKey string

const (
	userIDKey ctxKey = "identity_user_id"
	tokenKey  ctxKey = "identity_token"
)

// ContextWithUser attaches the authenticated user's id to the context.
func ContextWithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// ContextWithToken attaches the bearer token the request authenticated
// with, so handlers such as logout can act on it.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext extracts the request's bearer token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
