package auth

import (
	"net/http"

	"go.uber.org/zap"
)

// Guard resolves the session on every request, keeps it alive and sends
// signed-in users away from the login and sign-up pages.
type Guard struct {
	provider Provider
	cookies  Cookies
	baseURL  string
	log      *zap.SugaredLogger
}

func NewGuard(p Provider, cookies Cookies, baseURL string, log *zap.SugaredLogger) *Guard {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Guard{provider: p, cookies: cookies, baseURL: baseURL, log: log}
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := g.resolve(w, r)

		if ok && isAuthEntry(r.URL.Path) {
			http.Redirect(w, r, g.baseURL+"/", http.StatusTemporaryRedirect)
			return
		}
		if ok {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// resolve never fails: any provider error leaves the request anonymous.
func (g *Guard) resolve(w http.ResponseWriter, r *http.Request) (User, bool) {
	access, refresh, fromCookie := tokens(r)
	if access == "" && refresh == "" {
		return User{}, false
	}

	ctx := r.Context()
	if access != "" {
		u, err := g.provider.User(ctx, access)
		if err == nil {
			if fromCookie {
				g.cookies.Set(w, access, refresh)
			}
			return u, true
		}
		g.log.Debugw("access token rejected", "path", r.URL.Path, "ERROR", err)
	}
	if refresh == "" {
		return User{}, false
	}

	sess, err := g.provider.Refresh(ctx, refresh)
	if err != nil {
		g.log.Debugw("session refresh failed", "path", r.URL.Path, "ERROR", err)
		return User{}, false
	}
	g.cookies.Set(w, sess.AccessToken, sess.RefreshToken)
	return sess.User, sess.User.ID != ""
}

func isAuthEntry(path string) bool {
	return path == "/login" || path == "/sign-up"
}
