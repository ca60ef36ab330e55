package notes

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"example.com/notes-ai/internal/auth"
)

// Current resolves the note the home page should open. The requested note
// wins when the user owns it; otherwise the newest note is used, and a fresh
// empty note is created for users who have none. redirect reports that the
// caller asked for something other than what was resolved.
func Current(ctx context.Context, store Store, authorID, requested string) (n Note, redirect bool, err error) {
	if authorID == "" {
		return Note{}, false, auth.ErrUnauthenticated
	}

	if requested != "" {
		if id, perr := ParseID(requested); perr == nil {
			n, err = store.Get(ctx, id, authorID)
			if err == nil {
				return n, false, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return Note{}, false, err
			}
		}
	}

	n, err = store.Latest(ctx, authorID)
	if errors.Is(err, ErrNotFound) {
		n, err = store.Create(ctx, uuid.New(), authorID)
	}
	if err != nil {
		return Note{}, false, err
	}
	return n, true, nil
}
