package calls

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists call records in Postgres via database/sql (pgx stdlib).
//
// Assumed table:
//
//	CREATE TABLE calls (
//	  id                 TEXT PRIMARY KEY,
//	  phone_number       TEXT NOT NULL,
//	  name               TEXT NOT NULL,
//	  question           TEXT NOT NULL,
//	  status             TEXT NOT NULL,
//	  vapi_call_id       TEXT,
//	  transcript         TEXT,
//	  user_id            TEXT,
//	  family_member_name TEXT,
//	  raw_payload        TEXT,
//	  created_at         TIMESTAMPTZ NOT NULL,
//	  updated_at         TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX calls_vapi_call_id_idx ON calls (vapi_call_id);
//	CREATE INDEX calls_user_id_idx ON calls (user_id);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callColumns = `
id, phone_number, name, question, status,
COALESCE(vapi_call_id, ''), transcript,
COALESCE(user_id, ''), COALESCE(family_member_name, ''), COALESCE(raw_payload, ''),
created_at, updated_at`

func scanCall(row interface{ Scan(...any) error }) (Call, error) {
	var c Call
	err := row.Scan(
		&c.ID,
		&c.PhoneNumber,
		&c.Name,
		&c.Question,
		&c.Status,
		&c.VapiCallID,
		&c.Transcript,
		&c.UserID,
		&c.FamilyMemberName,
		&c.RawPayload,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *PostgresRepo) Insert(ctx context.Context, c Call) error {
	const q = `
INSERT INTO calls (
  id, phone_number, name, question, status, vapi_call_id, transcript,
  user_id, family_member_name, raw_payload, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,NULLIF($6,''),$7,NULLIF($8,''),NULLIF($9,''),NULLIF($10,''),$11,$12
)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.PhoneNumber,
		c.Name,
		c.Question,
		c.Status,
		c.VapiCallID,
		c.Transcript,
		c.UserID,
		c.FamilyMemberName,
		c.RawPayload,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Call, error) {
	const q = `SELECT ` + callColumns + ` FROM calls WHERE id = $1`
	c, err := scanCall(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) GetByVapiCallID(ctx context.Context, vapiCallID string) ([]Call, error) {
	const q = `SELECT ` + callColumns + ` FROM calls WHERE vapi_call_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, vapiCallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) SetVapiCallID(ctx context.Context, id, vapiCallID string) error {
	const q = `UPDATE calls SET vapi_call_id = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, vapiCallID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) UpdateStatusAndTranscript(ctx context.Context, id string, status Status, transcript, rawPayload string) error {
	const q = `
UPDATE calls
SET status = $2,
    transcript = $3,
    raw_payload = COALESCE(NULLIF($4, ''), raw_payload),
    updated_at = now()
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, status, transcript, rawPayload)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) UpdateStatusIfNoTranscript(ctx context.Context, id string, status Status) (bool, error) {
	// Conditional update: the transcript guard is part of the statement, so a
	// concurrently finalized row is never overwritten.
	const q = `
UPDATE calls
SET status = $2, updated_at = now()
WHERE id = $1 AND transcript IS NULL
`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Call, error) {
	const q = `SELECT ` + callColumns + ` FROM calls WHERE user_id = $1 ORDER BY created_at DESC, id`
	return r.list(ctx, q, userID)
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]Call, error) {
	const q = `SELECT ` + callColumns + ` FROM calls ORDER BY created_at DESC, id`
	return r.list(ctx, q)
}

func (r *PostgresRepo) list(ctx context.Context, q string, args ...any) ([]Call, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
