// Package auth resolves the caller's identity through the hosted auth
// provider and guards the auth-entry pages.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned by every operation invoked without a resolved user.
var ErrUnauthenticated = errors.New("unauthenticated")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type userKey struct{}

// WithUser attaches the resolved identity to a request context.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the identity attached by the Guard, if any.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok && u.ID != ""
}
