package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookie  = "sb-access-token"
	RefreshCookie = "sb-refresh-token"
)

// Cookies writes the session cookies. Every write restarts MaxAge, so an
// active session slides forward.
type Cookies struct {
	MaxAge time.Duration
	Secure bool
}

func (c Cookies) Set(w http.ResponseWriter, accessToken, refreshToken string) {
	maxAge := int(c.MaxAge / time.Second)
	c.write(w, AccessCookie, accessToken, maxAge)
	if refreshToken != "" {
		c.write(w, RefreshCookie, refreshToken, maxAge)
	}
}

func (c Cookies) Clear(w http.ResponseWriter) {
	c.write(w, AccessCookie, "", -1)
	c.write(w, RefreshCookie, "", -1)
}

func (c Cookies) write(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokens reads the session from cookies, falling back to a bearer header
// for API clients. fromCookie reports where they came from.
func tokens(r *http.Request) (access, refresh string, fromCookie bool) {
	if c, err := r.Cookie(AccessCookie); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(RefreshCookie); err == nil {
		refresh = c.Value
	}
	if access != "" || refresh != "" {
		return access, refresh, true
	}

	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):], "", false
	}
	return "", "", false
}
