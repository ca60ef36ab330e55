package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"example.com/notes-ai/internal/auth"
	"example.com/notes-ai/internal/events"
	"example.com/notes-ai/internal/metrics"
)

type stubStore struct {
	createFn func(context.Context, uuid.UUID, string) (Note, error)
	getFn    func(context.Context, uuid.UUID, string) (Note, error)
	updateFn func(context.Context, uuid.UUID, string, string) (Note, error)
	deleteFn func(context.Context, uuid.UUID, string) error
	listFn   func(context.Context, string, Order) ([]Note, error)
	latestFn func(context.Context, string) (Note, error)
}

func (s stubStore) Create(ctx context.Context, id uuid.UUID, authorID string) (Note, error) {
	return s.createFn(ctx, id, authorID)
}
func (s stubStore) Get(ctx context.Context, id uuid.UUID, authorID string) (Note, error) {
	return s.getFn(ctx, id, authorID)
}
func (s stubStore) Update(ctx context.Context, id uuid.UUID, authorID, text string) (Note, error) {
	return s.updateFn(ctx, id, authorID, text)
}
func (s stubStore) Delete(ctx context.Context, id uuid.UUID, authorID string) error {
	return s.deleteFn(ctx, id, authorID)
}
func (s stubStore) List(ctx context.Context, authorID string, o Order) ([]Note, error) {
	return s.listFn(ctx, authorID, o)
}
func (s stubStore) Latest(ctx context.Context, authorID string) (Note, error) {
	return s.latestFn(ctx, authorID)
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}
func (p *recordingPublisher) Close() error { return nil }

func asUser(req *http.Request, id string) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), auth.User{ID: id}))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestHandlers_Unauthenticated(t *testing.T) {
	h := NewHandlers(stubStore{}).Routes()
	id := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   string
	}{
		{"create", http.MethodPost, "/", `{}`, "You must be logged in to create a note"},
		{"update", http.MethodPut, "/" + id, `{"text":"x"}`, "You must be logged in to update a note"},
		{"delete", http.MethodDelete, "/" + id, ``, "You must be logged in to delete a note"},
		{"list", http.MethodGet, "/", ``, "You must be logged in to see your notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			require.Equal(t, tt.want, decodeBody(t, rr)["errorMessage"])
		})
	}
}

func TestHandlers_Create(t *testing.T) {
	fixed := time.Unix(1, 0).UTC()
	clientID := uuid.New()

	t.Run("client supplied id is used as-is", func(t *testing.T) {
		pub := &recordingPublisher{}
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		h := NewHandlers(stubStore{
			createFn: func(_ context.Context, id uuid.UUID, authorID string) (Note, error) {
				require.Equal(t, clientID, id)
				require.Equal(t, "u1", authorID)
				return Note{ID: id, AuthorID: authorID, CreatedAt: fixed, UpdatedAt: fixed}, nil
			},
		}, WithPublisher(pub), WithMetrics(m)).Routes()

		req := asUser(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":"`+clientID.String()+`"}`)), "u1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		resp := decodeBody(t, rr)
		require.Nil(t, resp["errorMessage"])
		require.Equal(t, clientID.String(), resp["note"].(map[string]any)["id"])
		require.Len(t, pub.events, 1)
		require.Equal(t, events.TypeNoteCreated, pub.events[0].Type)
		require.Equal(t, float64(1), testutil.ToFloat64(m.NoteOps.WithLabelValues("create", metrics.OutcomeOK)))
	})

	t.Run("server assigns id when body is empty", func(t *testing.T) {
		h := NewHandlers(stubStore{
			createFn: func(_ context.Context, id uuid.UUID, authorID string) (Note, error) {
				require.NotEqual(t, uuid.Nil, id)
				return Note{ID: id, AuthorID: authorID}, nil
			},
		}).Routes()

		req := asUser(httptest.NewRequest(http.MethodPost, "/", nil), "u1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		h := NewHandlers(stubStore{}).Routes()
		req := asUser(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":"nope"}`)), "u1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate id looks the same for every caller", func(t *testing.T) {
		// the id is held by "owner"; the store reports a unique violation to anyone
		h := NewHandlers(stubStore{
			createFn: func(context.Context, uuid.UUID, string) (Note, error) { return Note{}, ErrAlreadyExists },
		}).Routes()

		var bodies []string
		for _, caller := range []string{"owner", "intruder"} {
			req := asUser(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":"`+clientID.String()+`"}`)), caller)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			require.Equal(t, http.StatusConflict, rr.Code)
			bodies = append(bodies, rr.Body.String())
		}
		require.Equal(t, bodies[0], bodies[1])
		require.NotContains(t, bodies[0], "exists")
	})
}

func TestHandlers_Update(t *testing.T) {
	id := uuid.New()
	fixed := time.Unix(3, 0).UTC()

	store := stubStore{
		updateFn: func(_ context.Context, gotID uuid.UUID, authorID, text string) (Note, error) {
			if authorID != "owner" {
				return Note{}, ErrNotFound
			}
			return Note{ID: gotID, AuthorID: authorID, Text: text, UpdatedAt: fixed}, nil
		},
	}
	h := NewHandlers(store).Routes()

	// invalid json
	{
		req := asUser(httptest.NewRequest(http.MethodPut, "/"+id.String(), bytes.NewBufferString("{")), "owner")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	}

	// missing text
	{
		req := asUser(httptest.NewRequest(http.MethodPut, "/"+id.String(), bytes.NewBufferString(`{}`)), "owner")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	}

	// empty text is a valid edit
	{
		req := asUser(httptest.NewRequest(http.MethodPut, "/"+id.String(), bytes.NewBufferString(`{"text":""}`)), "owner")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	// owner
	{
		req := asUser(httptest.NewRequest(http.MethodPut, "/"+id.String(), bytes.NewBufferString(`{"text":"hello"}`)), "owner")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "hello", decodeBody(t, rr)["note"].(map[string]any)["text"])
	}

	// someone else
	{
		req := asUser(httptest.NewRequest(http.MethodPut, "/"+id.String(), bytes.NewBufferString(`{"text":"pwned"}`)), "intruder")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Note not found", decodeBody(t, rr)["errorMessage"])
	}
}

func TestHandlers_Delete_OwnerOnly(t *testing.T) {
	id := uuid.New()
	pub := &recordingPublisher{}
	h := NewHandlers(stubStore{
		deleteFn: func(_ context.Context, gotID uuid.UUID, authorID string) error {
			require.Equal(t, id, gotID)
			if authorID != "owner" {
				return ErrNotFound
			}
			return nil
		},
	}, WithPublisher(pub)).Routes()

	// foreign delete looks exactly like a missing note
	{
		req := asUser(httptest.NewRequest(http.MethodDelete, "/"+id.String(), nil), "intruder")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Note not found", decodeBody(t, rr)["errorMessage"])
		require.Empty(t, pub.events)
	}

	{
		req := asUser(httptest.NewRequest(http.MethodDelete, "/"+id.String(), nil), "owner")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Nil(t, decodeBody(t, rr)["errorMessage"])
		require.Len(t, pub.events, 1)
		require.Equal(t, events.TypeNoteDeleted, pub.events[0].Type)
	}
}

func TestHandlers_Get_InvalidID_NotFound_And_Internal(t *testing.T) {
	// invalid id
	{
		h := NewHandlers(stubStore{}).Routes()
		req := asUser(httptest.NewRequest(http.MethodGet, "/abc", nil), "u1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	}

	// not found
	{
		h := NewHandlers(stubStore{
			getFn: func(context.Context, uuid.UUID, string) (Note, error) { return Note{}, ErrNotFound },
		}).Routes()
		req := asUser(httptest.NewRequest(http.MethodGet, "/"+uuid.NewString(), nil), "u1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	// internal error does not leak the cause
	{
		h := NewHandlers(stubStore{
			getFn: func(context.Context, uuid.UUID, string) (Note, error) { return Note{}, errors.New("pq: secret detail") },
		}).Routes()
		req := asUser(httptest.NewRequest(http.MethodGet, "/"+uuid.NewString(), nil), "u1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.Equal(t, "An unknown error occurred", decodeBody(t, rr)["errorMessage"])
	}
}

func TestHandlers_List(t *testing.T) {
	fixed := time.Unix(4, 0).UTC()
	var gotOrder Order
	h := NewHandlers(stubStore{
		listFn: func(_ context.Context, authorID string, o Order) ([]Note, error) {
			require.Equal(t, "u1", authorID)
			gotOrder = o
			return []Note{{ID: uuid.New(), AuthorID: authorID, Text: "a", UpdatedAt: fixed}}, nil
		},
	}).Routes()

	req := asUser(httptest.NewRequest(http.MethodGet, "/", nil), "u1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, OrderUpdated, gotOrder)
	require.Len(t, decodeBody(t, rr)["notes"], 1)

	req = asUser(httptest.NewRequest(http.MethodGet, "/?order=created", nil), "u1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, OrderCreated, gotOrder)
}

func TestHandlers_Current(t *testing.T) {
	latest := Note{ID: uuid.New(), AuthorID: "u1", Text: "newest"}
	h := NewHandlers(stubStore{
		getFn:    func(context.Context, uuid.UUID, string) (Note, error) { return Note{}, ErrNotFound },
		latestFn: func(context.Context, string) (Note, error) { return latest, nil },
	}).Routes()

	req := asUser(httptest.NewRequest(http.MethodGet, "/current?noteId="+uuid.NewString(), nil), "u1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody(t, rr)
	require.Equal(t, true, resp["redirect"])
	require.Equal(t, latest.ID.String(), resp["note"].(map[string]any)["id"])
}
