package chat

import (
	"context"
	"database/sql"
	"errors"

	"million-ears/pkg/utils"
)

// PostgresRepo persists chat threads and messages via database/sql
// (pgx stdlib).
//
// Assumed tables:
//
//	CREATE TABLE chat_threads (
//	  id         TEXT PRIMARY KEY,
//	  user_id    TEXT NOT NULL,
//	  title      TEXT NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX chat_threads_user_idx ON chat_threads (user_id, updated_at DESC);
//
//	CREATE TABLE chat_messages (
//	  id         TEXT PRIMARY KEY,
//	  thread_id  TEXT NOT NULL REFERENCES chat_threads (id),
//	  role       TEXT NOT NULL,
//	  content    TEXT NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX chat_messages_thread_idx ON chat_messages (thread_id, created_at);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) InsertThread(ctx context.Context, t Thread) error {
	const q = `
INSERT INTO chat_threads (id, user_id, title, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.UserID, t.Title, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PostgresRepo) GetThread(ctx context.Context, id string) (Thread, error) {
	const q = `SELECT id, user_id, title, created_at, updated_at FROM chat_threads WHERE id = $1`
	var t Thread
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.UserID, &t.Title, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Thread{}, ErrNotFound
	}
	return t, err
}

func (r *PostgresRepo) ListThreads(ctx context.Context, userID string, limit int) ([]Thread, error) {
	const q = `
SELECT id, user_id, title, created_at, updated_at
FROM chat_threads
WHERE user_id = $1
ORDER BY updated_at DESC, id
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AppendMessage runs the message insert and the thread activity bump in one
// transaction, so a thread can never show activity for a message that was
// not stored, and vice versa.
func (r *PostgresRepo) AppendMessage(ctx context.Context, m Message) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const touch = `UPDATE chat_threads SET updated_at = $2 WHERE id = $1`
		res, err := tx.ExecContext(ctx, touch, m.ThreadID, m.CreatedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		const insert = `
INSERT INTO chat_messages (id, thread_id, role, content, created_at)
VALUES ($1,$2,$3,$4,$5)
`
		_, err = tx.ExecContext(ctx, insert, m.ID, m.ThreadID, m.Role, m.Content, m.CreatedAt)
		return err
	})
}

func (r *PostgresRepo) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	const q = `
SELECT id, thread_id, role, content, created_at
FROM chat_messages
WHERE thread_id = $1
ORDER BY created_at, id
`
	rows, err := r.db.QueryContext(ctx, q, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
