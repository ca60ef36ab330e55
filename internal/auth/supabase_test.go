package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSupabase_SignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice@example.com", body["email"])

		_, _ = w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","expires_in":3600,"user":{"id":"u-alice","email":"alice@example.com"}}`))
	}))
	defer srv.Close()

	sess, err := NewSupabase(srv.URL, "anon", time.Second).SignIn(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, Session{AccessToken: "a1", RefreshToken: "r1", ExpiresIn: 3600, User: alice}, sess)
}

func TestSupabase_User(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/user", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u-alice","email":"alice@example.com"}`))
	}))
	defer srv.Close()
	s := NewSupabase(srv.URL, "anon", time.Second)

	u, err := s.User(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, alice, u)

	_, err = s.User(context.Background(), "bad")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, 401, pe.Status)
	require.Equal(t, "invalid JWT", pe.Message)
}

func TestSupabase_SignUpWithoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/signup", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"u-alice","email":"alice@example.com","confirmation_sent_at":"2024-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	sess, err := NewSupabase(srv.URL, "anon", time.Second).SignUp(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	require.Empty(t, sess.AccessToken)
	require.Equal(t, alice, sess.User)
}

func TestSupabase_ErrorMessageFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	err := NewSupabase(srv.URL, "anon", time.Second).SignOut(context.Background(), "a1")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, "502 Bad Gateway", pe.Message)
}
