package memories

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists memories in Postgres via database/sql (pgx stdlib).
//
// Assumed table:
//
//	CREATE TABLE memories (
//	  id               TEXT PRIMARY KEY,
//	  user_id          TEXT NOT NULL,
//	  name             TEXT NOT NULL,
//	  phone_number     TEXT NOT NULL,
//	  call_id          TEXT,
//	  custom_questions TEXT,
//	  transcript       TEXT,
//	  summary          TEXT,
//	  created_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX memories_user_id_idx ON memories (user_id, created_at DESC);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const memoryColumns = `
id, user_id, name, phone_number,
COALESCE(call_id, ''), COALESCE(custom_questions, ''),
COALESCE(transcript, ''), COALESCE(summary, ''), created_at`

func scanMemory(row interface{ Scan(...any) error }) (Memory, error) {
	var m Memory
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.PhoneNumber,
		&m.CallID,
		&m.CustomQuestions,
		&m.Transcript,
		&m.Summary,
		&m.CreatedAt,
	)
	return m, err
}

func (r *PostgresRepo) Insert(ctx context.Context, m Memory) error {
	const q = `
INSERT INTO memories (
  id, user_id, name, phone_number, call_id, custom_questions, transcript, summary, created_at
) VALUES (
  $1,$2,$3,$4,NULLIF($5,''),NULLIF($6,''),NULLIF($7,''),NULLIF($8,''),$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		m.ID,
		m.UserID,
		m.Name,
		m.PhoneNumber,
		m.CallID,
		m.CustomQuestions,
		m.Transcript,
		m.Summary,
		m.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Memory, error) {
	const q = `SELECT ` + memoryColumns + ` FROM memories WHERE id = $1`
	m, err := scanMemory(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Memory{}, ErrNotFound
	}
	return m, err
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Memory, error) {
	const q = `SELECT ` + memoryColumns + ` FROM memories WHERE user_id = $1 ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Patch(ctx context.Context, id, transcript, summary string) error {
	const q = `
UPDATE memories
SET transcript = COALESCE(NULLIF($2, ''), transcript),
    summary = COALESCE(NULLIF($3, ''), summary)
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, transcript, summary)
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
	return nil
}
