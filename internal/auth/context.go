package auth

import (
	"context"
	"strings"
)

type ctxKey string

const userNameKey ctxKey = "auth_user_name"

// ContextWithUser stores the authenticated identity in the context.
func ContextWithUser(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userNameKey, strings.TrimSpace(name))
}

// UserFromContext extracts the authenticated identity from context.
func UserFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userNameKey).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
