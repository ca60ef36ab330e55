package auth

import (
	"context"
	"fmt"
)

// Session is what the provider hands back after sign-in, sign-up or refresh.
// AccessToken is empty when sign-up still awaits email confirmation.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         User
}

// Provider is the hosted auth service. The app never sees passwords at rest
// and never validates tokens itself.
type Provider interface {
	User(ctx context.Context, accessToken string) (User, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ProviderError is a non-2xx answer from the provider. Message is safe to
// show to the user.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider: %d %s", e.Status, e.Message)
}
