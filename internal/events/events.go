// Package events publishes note change notifications for downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	TypeNoteCreated = "note.created"
	TypeNoteUpdated = "note.updated"
	TypeNoteDeleted = "note.deleted"
)

type Event struct {
	Type     string    `json:"type"`
	NoteID   string    `json:"noteId"`
	AuthorID string    `json:"authorId"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
