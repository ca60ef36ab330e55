package notes

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("note not found")
	ErrAlreadyExists = errors.New("note already exists")
	ErrInvalidID     = errors.New("invalid note id")
)

type Note struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Order selects the recency column a listing is sorted by, newest first.
type Order int

const (
	// OrderUpdated is used by the sidebar.
	OrderUpdated Order = iota
	// OrderCreated is used when feeding notes to the assistant.
	OrderCreated
)

func (o Order) clause() string {
	if o == OrderCreated {
		return "created_at DESC, id DESC"
	}
	return "updated_at DESC, id DESC"
}

type CreateNoteRequest struct {
	ID string `json:"id"`
}

type UpdateNoteRequest struct {
	Text *string `json:"text"`
}

// ParseID validates a client supplied note id.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
