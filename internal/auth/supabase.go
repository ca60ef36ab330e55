package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"example.com/notes-ai/internal/tracing"
)

// Supabase talks to the GoTrue REST API of a Supabase project.
type Supabase struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewSupabase(baseURL, anonKey string, timeout time.Duration) *Supabase {
	return &Supabase{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`

	// sign-up without auto-confirm returns the bare user
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r tokenResponse) session() Session {
	s := Session{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken, ExpiresIn: r.ExpiresIn}
	if r.User != nil {
		s.User = *r.User
	} else {
		s.User = User{ID: r.ID, Email: r.Email}
	}
	return s
}

type errorResponse struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
}

func (s *Supabase) User(ctx context.Context, accessToken string) (u User, err error) {
	ctx, span := tracing.StartSpan(ctx, "auth.User")
	defer func() { tracing.End(span, err) }()

	err = s.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &u)
	if err != nil {
		return User{}, err
	}
	if u.ID == "" {
		return User{}, ErrUnauthenticated
	}
	return u, nil
}

func (s *Supabase) Refresh(ctx context.Context, refreshToken string) (sess Session, err error) {
	ctx, span := tracing.StartSpan(ctx, "auth.Refresh")
	defer func() { tracing.End(span, err) }()

	return s.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (sess Session, err error) {
	ctx, span := tracing.StartSpan(ctx, "auth.SignIn")
	defer func() { tracing.End(span, err) }()

	return s.token(ctx, "password", map[string]string{"email": email, "password": password})
}

func (s *Supabase) SignUp(ctx context.Context, email, password string) (sess Session, err error) {
	ctx, span := tracing.StartSpan(ctx, "auth.SignUp")
	defer func() { tracing.End(span, err) }()

	var resp tokenResponse
	err = s.do(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return Session{}, err
	}
	return resp.session(), nil
}

func (s *Supabase) SignOut(ctx context.Context, accessToken string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "auth.SignOut")
	defer func() { tracing.End(span, err) }()

	return s.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (s *Supabase) token(ctx context.Context, grant string, body map[string]string) (Session, error) {
	var resp tokenResponse
	path := "/auth/v1/token?grant_type=" + url.QueryEscape(grant)
	if err := s.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return Session{}, err
	}
	sess := resp.session()
	if sess.AccessToken == "" || sess.User.ID == "" {
		return Session{}, fmt.Errorf("auth provider: empty session for grant %s", grant)
	}
	return sess, nil
}

func (s *Supabase) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.anonKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("auth provider: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("auth provider: decode: %w", err)
	}
	return nil
}

func errorMessage(raw []byte, status string) string {
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil {
		for _, m := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	return status
}
