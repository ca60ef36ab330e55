package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"example.com/notes-ai/internal/auth"
	"example.com/notes-ai/internal/tracing"
)

const uniqueViolation = "23505"

// Repository is the Postgres backed Store. Every statement carries the
// author predicate, so a foreign id behaves exactly like a missing one.
type Repository struct {
	db *sql.DB

	stmtGet    *sql.Stmt
	stmtUpdate *sql.Stmt
	stmtLatest *sql.Stmt
}

func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	get, err := db.PrepareContext(ctx, `
		SELECT id, author_id, text, created_at, updated_at
		FROM notes
		WHERE id = $1 AND author_id = $2
	`)
	if err != nil {
		return nil, err
	}

	upd, err := db.PrepareContext(ctx, `
		UPDATE notes
		SET text = $1, updated_at = now()
		WHERE id = $2 AND author_id = $3
		RETURNING id, author_id, text, created_at, updated_at
	`)
	if err != nil {
		return nil, err
	}

	latest, err := db.PrepareContext(ctx, `
		SELECT id, author_id, text, created_at, updated_at
		FROM notes
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, err
	}

	return &Repository{
		db:         db,
		stmtGet:    get,
		stmtUpdate: upd,
		stmtLatest: latest,
	}, nil
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtGet, r.stmtUpdate, r.stmtLatest} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

// Create uses explicit transaction: INSERT notes + INSERT audit.
func (r *Repository) Create(ctx context.Context, id uuid.UUID, authorID string) (n Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.Create")
	defer func() { tracing.End(span, err) }()

	if authorID == "" {
		return Note{}, auth.ErrUnauthenticated
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return Note{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO notes (id, author_id, text) VALUES ($1, $2, '')
		RETURNING id, author_id, text, created_at, updated_at
	`, id, authorID).Scan(&n.ID, &n.AuthorID, &n.Text, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Note{}, ErrAlreadyExists
		}
		return Note{}, fmt.Errorf("failed to create note: %w", err)
	}

	if err = audit(ctx, tx, n.ID, authorID, "create"); err != nil {
		return Note{}, err
	}

	if err = tx.Commit(); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID, authorID string) (n Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.Get")
	defer func() { tracing.End(span, err) }()

	if authorID == "" {
		return Note{}, auth.ErrUnauthenticated
	}
	err = r.stmtGet.QueryRowContext(ctx, id, authorID).Scan(&n.ID, &n.AuthorID, &n.Text, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, authorID, text string) (n Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.Update")
	defer func() { tracing.End(span, err) }()

	if authorID == "" {
		return Note{}, auth.ErrUnauthenticated
	}
	err = r.stmtUpdate.QueryRowContext(ctx, text, id, authorID).Scan(&n.ID, &n.AuthorID, &n.Text, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

// Delete removes the note and records the audit row in one transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, authorID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.Delete")
	defer func() { tracing.End(span, err) }()

	if authorID == "" {
		return auth.ErrUnauthenticated
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	a, _ := res.RowsAffected()
	if a == 0 {
		return ErrNotFound
	}

	if err = audit(ctx, tx, id, authorID, "delete"); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) List(ctx context.Context, authorID string, order Order) (out []Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.List")
	defer func() { tracing.End(span, err) }()

	if authorID == "" {
		return nil, auth.ErrUnauthenticated
	}

	query, args, err := squirrel.
		Select("id", "author_id", "text", "created_at", "updated_at").
		From("notes").
		Where(squirrel.Eq{"author_id": authorID}).
		OrderBy(order.clause()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

func (r *Repository) Latest(ctx context.Context, authorID string) (n Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.Latest")
	defer func() { tracing.End(span, err) }()

	if authorID == "" {
		return Note{}, auth.ErrUnauthenticated
	}
	err = r.stmtLatest.QueryRowContext(ctx, authorID).Scan(&n.ID, &n.AuthorID, &n.Text, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func audit(ctx context.Context, tx *sql.Tx, id uuid.UUID, authorID, action string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO notes_audit (note_id, author_id, action) VALUES ($1, $2, $3)`, id, authorID, action)
	if err != nil {
		return fmt.Errorf("failed to write audit row: %w", err)
	}
	return nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	out := make([]Note, 0, 32)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.AuthorID, &n.Text, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
