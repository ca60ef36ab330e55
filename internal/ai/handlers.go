package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"example.com/notes-ai/internal/auth"
	"example.com/notes-ai/internal/httpx"
	"example.com/notes-ai/internal/inflight"
	"example.com/notes-ai/internal/stringsx"
)

type Asker interface {
	Ask(ctx context.Context, authorID string, questions, answers []string) (string, error)
}

type AskRequest struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

type Handlers struct {
	asker   Asker
	limiter inflight.Limiter
	log     *zap.SugaredLogger
}

func NewHandlers(asker Asker, limiter inflight.Limiter, log *zap.SugaredLogger) *Handlers {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handlers{asker: asker, limiter: limiter, log: log}
}

func (h *Handlers) Ask(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "You must be logged in to ask AI questions")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Questions) == 0 || stringsx.IsEmpty(req.Questions[len(req.Questions)-1]) {
		httpx.WriteError(w, http.StatusBadRequest, "question required")
		return
	}

	release, err := h.limiter.Acquire(r.Context(), user.ID)
	switch {
	case errors.Is(err, inflight.ErrBusy):
		httpx.WriteError(w, http.StatusConflict, "Please wait for the current answer before asking again")
		return
	case err != nil:
		// a broken limiter must not take the assistant down with it
		h.log.Warnw("inflight limiter unavailable", "ERROR", err)
	default:
		defer release()
	}

	// Once submitted, a question runs to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())

	answer, err := h.asker.Ask(ctx, user.ID, req.Questions, req.Answers)
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		httpx.WriteError(w, http.StatusUnauthorized, "You must be logged in to ask AI questions")
	case err != nil:
		h.log.Errorw("ask failed", "authorId", user.ID, "ERROR", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to get AI response. Please try again.")
	default:
		httpx.OK(w, map[string]any{"html": answer})
	}
}
