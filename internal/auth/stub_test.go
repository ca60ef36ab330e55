package auth

import (
	"context"
	"errors"
)

type stubProvider struct {
	userFn    func(ctx context.Context, accessToken string) (User, error)
	refreshFn func(ctx context.Context, refreshToken string) (Session, error)
	signInFn  func(ctx context.Context, email, password string) (Session, error)
	signUpFn  func(ctx context.Context, email, password string) (Session, error)
	signOutFn func(ctx context.Context, accessToken string) error
}

var errNotImplemented = errors.New("not implemented")

func (s stubProvider) User(ctx context.Context, accessToken string) (User, error) {
	if s.userFn == nil {
		return User{}, errNotImplemented
	}
	return s.userFn(ctx, accessToken)
}

func (s stubProvider) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if s.refreshFn == nil {
		return Session{}, errNotImplemented
	}
	return s.refreshFn(ctx, refreshToken)
}

func (s stubProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	if s.signInFn == nil {
		return Session{}, errNotImplemented
	}
	return s.signInFn(ctx, email, password)
}

func (s stubProvider) SignUp(ctx context.Context, email, password string) (Session, error) {
	if s.signUpFn == nil {
		return Session{}, errNotImplemented
	}
	return s.signUpFn(ctx, email, password)
}

func (s stubProvider) SignOut(ctx context.Context, accessToken string) error {
	if s.signOutFn == nil {
		return errNotImplemented
	}
	return s.signOutFn(ctx, accessToken)
}
