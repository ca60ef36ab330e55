package editor

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Edit after Close.
var ErrClosed = errors.New("editor session closed")

// Saver persists the text of one note.
type Saver interface {
	UpdateNote(ctx context.Context, id, text string) error
}

type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

type Option func(*Session)

// WithErrorHandler receives save failures. Failed saves are not retried.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Session) {
		if fn != nil {
			s.onError = fn
		}
	}
}

// WithSaveTimeout bounds a single save call.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Session) { s.saveTimeout = d }
}

// Session edits one note: every Edit updates the draft at once and the
// store only sees the text that was current when typing paused.
type Session struct {
	noteID      string
	saver       Saver
	draft       *Draft
	debounce    *Debouncer
	onError     func(error)
	saveTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewSession(noteID, initial string, saver Saver, window time.Duration, opts ...Option) *Session {
	s := &Session{
		noteID:      noteID,
		saver:       saver,
		draft:       NewDraft(initial),
		debounce:    NewDebouncer(window),
		onError:     func(error) {},
		saveTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) NoteID() string { return s.noteID }

func (s *Session) Draft() *Draft { return s.draft }

func (s *Session) State() State {
	if s.debounce.Pending() {
		return Pending
	}
	return Idle
}

// Edit records text in the draft and (re)starts the quiet period.
func (s *Session) Edit(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.draft.Set(text)
	s.debounce.Schedule(func() { s.save(text) })
	return nil
}

// Flush sends the pending write now instead of waiting for the window.
func (s *Session) Flush() bool {
	return s.debounce.Flush()
}

// Close drops a write that has not been sent yet and waits for one that
// has, up to ctx.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.debounce.Cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) save(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.saver.UpdateNote(ctx, s.noteID, text); err != nil {
		s.onError(err)
	}
}
