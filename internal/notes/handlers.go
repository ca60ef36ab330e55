package notes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/notes-ai/internal/auth"
	"example.com/notes-ai/internal/events"
	"example.com/notes-ai/internal/httpx"
	"example.com/notes-ai/internal/metrics"
)

// Store is an abstraction over the notes storage.
// It allows unit-testing handlers without a real database.
type Store interface {
	Create(ctx context.Context, id uuid.UUID, authorID string) (Note, error)
	Get(ctx context.Context, id uuid.UUID, authorID string) (Note, error)
	Update(ctx context.Context, id uuid.UUID, authorID, text string) (Note, error)
	Delete(ctx context.Context, id uuid.UUID, authorID string) error
	List(ctx context.Context, authorID string, order Order) ([]Note, error)
	Latest(ctx context.Context, authorID string) (Note, error)
}

type Handlers struct {
	store   Store
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	events  events.Publisher
}

type Option func(*Handlers)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(h *Handlers) { h.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handlers) { h.metrics = m }
}

func WithPublisher(p events.Publisher) Option {
	return func(h *Handlers) { h.events = p }
}

func NewHandlers(store Store, opts ...Option) *Handlers {
	h := &Handlers{
		store:  store,
		log:    zap.NewNop().Sugar(),
		events: events.Nop{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the note actions. The router is expected to sit behind auth.Guard.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/current", h.current)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
	})

	return r
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.fail(w, "create", auth.ErrUnauthenticated)
		return
	}

	// The body is optional: without an id the server assigns one.
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	id := uuid.New()
	if req.ID != "" {
		parsed, err := ParseID(req.ID)
		if err != nil {
			h.fail(w, "create", err)
			return
		}
		id = parsed
	}

	n, err := h.store.Create(r.Context(), id, user.ID)
	h.metrics.NoteOp("create", err)
	if err != nil {
		h.fail(w, "create", err)
		return
	}
	h.publish(r.Context(), events.TypeNoteCreated, n.ID, user.ID)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"errorMessage": nil, "note": n})
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.fail(w, "get", auth.ErrUnauthenticated)
		return
	}
	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get", err)
		return
	}

	n, err := h.store.Get(r.Context(), id, user.ID)
	h.metrics.NoteOp("get", err)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"errorMessage": nil, "note": n})
}

func (h *Handlers) current(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.fail(w, "get", auth.ErrUnauthenticated)
		return
	}

	n, redirect, err := Current(r.Context(), h.store, user.ID, r.URL.Query().Get("noteId"))
	h.metrics.NoteOp("current", err)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"errorMessage": nil, "note": n, "redirect": redirect})
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.fail(w, "update", auth.ErrUnauthenticated)
		return
	}
	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "update", err)
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Text == nil {
		httpx.WriteError(w, http.StatusBadRequest, "text required")
		return
	}

	n, err := h.store.Update(r.Context(), id, user.ID, *req.Text)
	h.metrics.NoteOp("update", err)
	if err != nil {
		h.fail(w, "update", err)
		return
	}
	h.publish(r.Context(), events.TypeNoteUpdated, n.ID, user.ID)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"errorMessage": nil, "note": n})
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.fail(w, "delete", auth.ErrUnauthenticated)
		return
	}
	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "delete", err)
		return
	}

	err = h.store.Delete(r.Context(), id, user.ID)
	h.metrics.NoteOp("delete", err)
	if err != nil {
		h.fail(w, "delete", err)
		return
	}
	h.publish(r.Context(), events.TypeNoteDeleted, id, user.ID)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"errorMessage": nil})
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.fail(w, "list", auth.ErrUnauthenticated)
		return
	}

	order := OrderUpdated
	if r.URL.Query().Get("order") == "created" {
		order = OrderCreated
	}

	items, err := h.store.List(r.Context(), user.ID, order)
	h.metrics.NoteOp("list", err)
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	httpx.OK(w, map[string]any{"notes": items})
}

var loginRequired = map[string]string{
	"create": "You must be logged in to create a note",
	"update": "You must be logged in to update a note",
	"delete": "You must be logged in to delete a note",
	"get":    "You must be logged in to view a note",
	"list":   "You must be logged in to see your notes",
}

// fail converts err into an {errorMessage} body. Foreign and missing notes
// share one message.
func (h *Handlers) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		httpx.WriteError(w, http.StatusUnauthorized, loginRequired[op])
	case errors.Is(err, ErrInvalidID):
		httpx.WriteError(w, http.StatusBadRequest, "invalid id")
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, ErrAlreadyExists):
		// same answer whichever user holds the id
		httpx.WriteError(w, http.StatusConflict, "Could not create note")
	default:
		h.log.Errorw("note action failed", "op", op, "ERROR", err)
		httpx.WriteError(w, http.StatusInternalServerError, "An unknown error occurred")
	}
}

func (h *Handlers) publish(ctx context.Context, typ string, id uuid.UUID, authorID string) {
	err := h.events.Publish(ctx, events.Event{
		Type:     typ,
		NoteID:   id.String(),
		AuthorID: authorID,
		At:       time.Now().UTC(),
	})
	if err != nil {
		h.log.Warnw("publish note event", "type", typ, "noteId", id, "ERROR", err)
	}
}
