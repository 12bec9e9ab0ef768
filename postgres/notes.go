package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sealnote/sealnote/auth"
)

// NoteStore is the pgx implementation of auth.NoteStore.
type NoteStore struct {
	pool *pgxpool.Pool
}

// NewNoteStore creates a note store backed by the given pool.
func NewNoteStore(pool *pgxpool.Pool) *NoteStore {
	return &NoteStore{pool: pool}
}

func (s *NoteStore) Create(ctx context.Context, note *auth.Note) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notes (id, message, created_at, author, signature, source_ip)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		note.ID, note.Message, note.CreatedAt, note.Author, note.Signature, note.SourceIP)
	return err
}

func (s *NoteStore) All(ctx context.Context) ([]auth.Note, error) {
	return s.query(ctx,
		"SELECT id, message, created_at, author, signature, source_ip FROM notes ORDER BY created_at DESC")
}

func (s *NoteStore) ByAuthor(ctx context.Context, author string) ([]auth.Note, error) {
	return s.query(ctx,
		"SELECT id, message, created_at, author, signature, source_ip FROM notes WHERE lower(author) = lower($1) ORDER BY created_at DESC",
		author)
}

func (s *NoteStore) query(ctx context.Context, sql string, args ...any) ([]auth.Note, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (auth.Note, error) {
		var n auth.Note
		err := row.Scan(&n.ID, &n.Message, &n.CreatedAt, &n.Author, &n.Signature, &n.SourceIP)
		return n, err
	})
}
