package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"example.com/notes-ai/internal/httpx"
)

// Handlers serves the login, sign-up and logout actions. JSON callers get
// the {errorMessage} envelope; HTML form posts are redirected instead.
type Handlers struct {
	provider Provider
	cookies  Cookies
	log      *zap.SugaredLogger
}

func NewHandlers(p Provider, cookies Cookies, log *zap.SugaredLogger) *Handlers {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handlers{provider: p, cookies: cookies, log: log}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/sign-up", h.signUp)
	r.Post("/logout", h.logout)
	return r
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		h.reply(w, r, "/login", http.StatusBadRequest, err.Error())
		return
	}
	sess, err := h.provider.SignIn(r.Context(), c.Email, c.Password)
	if err != nil {
		h.fail(w, r, "/login", "login", err)
		return
	}
	h.cookies.Set(w, sess.AccessToken, sess.RefreshToken)
	h.reply(w, r, "/?toastType=login", http.StatusOK, "")
}

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		h.reply(w, r, "/sign-up", http.StatusBadRequest, err.Error())
		return
	}
	sess, err := h.provider.SignUp(r.Context(), c.Email, c.Password)
	if err != nil {
		h.fail(w, r, "/sign-up", "sign-up", err)
		return
	}
	if sess.AccessToken != "" {
		h.cookies.Set(w, sess.AccessToken, sess.RefreshToken)
	}
	h.reply(w, r, "/?toastType=signUp", http.StatusOK, "")
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	access, _, _ := tokens(r)
	h.cookies.Clear(w)

	if access != "" {
		if err := h.provider.SignOut(r.Context(), access); err != nil {
			h.fail(w, r, "/", "logout", err)
			return
		}
	}
	h.reply(w, r, "/login", http.StatusOK, "")
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, back, op string, err error) {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Status < 500 {
		h.reply(w, r, back, pe.Status, pe.Message)
		return
	}
	h.log.Errorw("auth action failed", "op", op, "ERROR", err)
	h.reply(w, r, back, http.StatusBadGateway, "An unknown error occurred")
}

// reply answers a form post with a 303 to next (or back to the form with
// the error), and anything else with the JSON envelope.
func (h *Handlers) reply(w http.ResponseWriter, r *http.Request, next string, status int, msg string) {
	if isForm(r) {
		if msg != "" {
			next = strings.SplitN(next, "?", 2)[0] + "?error=" + url.QueryEscape(msg)
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	if msg != "" {
		httpx.WriteError(w, status, msg)
		return
	}
	httpx.OK(w, nil)
}

func readCredentials(r *http.Request) (Credentials, error) {
	var c Credentials
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c.Email = r.PostForm.Get("email")
		c.Password = r.PostForm.Get("password")
	} else if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, errors.New("invalid json")
	}
	return c, c.Validate()
}

func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
