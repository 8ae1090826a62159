// Package identity carries the signed-in user through request contexts.
package identity

import "context"

type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the id of the signed-in user, if there is one.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// ContextProvider answers "who is signed in" by looking at the request context,
// which the auth middleware populates.
type ContextProvider struct{}

func (ContextProvider) CurrentUserID(ctx context.Context) (string, bool) {
	return UserID(ctx)
}
