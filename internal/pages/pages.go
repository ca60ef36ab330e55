// Package pages renders the minimal server-side HTML the session guard
// protects: the note editor at "/" and the two auth entry pages.
package pages

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/notes-ai/internal/auth"
	"example.com/notes-ai/internal/notes"
	"example.com/notes-ai/internal/stringsx"
)

//go:embed templates/*.html
var templatesFS embed.FS

const titleLen = 40

type Handlers struct {
	store    notes.Store
	debounce time.Duration
	log      *zap.SugaredLogger

	home *template.Template
	auth *template.Template
}

func NewHandlers(store notes.Store, debounce time.Duration, log *zap.SugaredLogger) *Handlers {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handlers{
		store:    store,
		debounce: debounce,
		log:      log,
		home:     template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/home.html")),
		auth:     template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/auth.html")),
	}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.index)
	r.Post("/new", h.newNote)
	r.Post("/notes/{id}/delete", h.deleteNote)
	r.Get("/login", h.authPage("Log in", "/auth/login"))
	r.Get("/sign-up", h.authPage("Sign up", "/auth/sign-up"))
	return r
}

type listItem struct {
	ID        uuid.UUID
	Title     string
	UpdatedAt time.Time
}

type homeView struct {
	Title          string
	User           auth.User
	Note           notes.Note
	Notes          []listItem
	DebounceMillis int64
}

type authView struct {
	Title  string
	User   auth.User
	Action string
	Error  string
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	n, redirect, err := notes.Current(r.Context(), h.store, user.ID, r.URL.Query().Get("noteId"))
	if err != nil {
		h.fail(w, "resolve current note", err)
		return
	}
	if redirect {
		http.Redirect(w, r, "/?noteId="+n.ID.String(), http.StatusSeeOther)
		return
	}

	all, err := h.store.List(r.Context(), user.ID, notes.OrderUpdated)
	if err != nil {
		h.fail(w, "list notes", err)
		return
	}
	items := make([]listItem, 0, len(all))
	for _, it := range all {
		items = append(items, listItem{ID: it.ID, Title: stringsx.Title(it.Text, titleLen), UpdatedAt: it.UpdatedAt})
	}

	h.render(w, h.home, homeView{
		Title:          stringsx.Title(n.Text, titleLen),
		User:           user,
		Note:           n,
		Notes:          items,
		DebounceMillis: h.debounce.Milliseconds(),
	})
}

// newNote creates an empty note and opens it.
func (h *Handlers) newNote(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	n, err := h.store.Create(r.Context(), uuid.New(), user.ID)
	if err != nil {
		h.fail(w, "create note", err)
		return
	}
	http.Redirect(w, r, "/?noteId="+n.ID.String(), http.StatusSeeOther)
}

// deleteNote removes a note from the sidebar. Deleting the open note goes
// back to "/", which picks the next one; otherwise the open note stays.
func (h *Handlers) deleteNote(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, err := notes.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	err = h.store.Delete(r.Context(), id, user.ID)
	if err != nil && !errors.Is(err, notes.ErrNotFound) {
		h.fail(w, "delete note", err)
		return
	}

	current := r.PostFormValue("current")
	if current == "" || current == id.String() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?noteId="+url.QueryEscape(current), http.StatusSeeOther)
}

func (h *Handlers) authPage(title, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, h.auth, authView{Title: title, Action: action, Error: r.URL.Query().Get("error")})
	}
}

func (h *Handlers) render(w http.ResponseWriter, t *template.Template, v any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", v); err != nil {
		h.log.Errorw("render page", "ERROR", err)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, what string, err error) {
	h.log.Errorw(what, "ERROR", err)
	http.Error(w, "An unknown error occurred", http.StatusInternalServerError)
}
