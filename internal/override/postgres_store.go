package override

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PostgresStore is the durable ledger. The bigserial seq column is the id
// authority: PostgreSQL serializes assignment, so ids stay strictly
// increasing across concurrent appends and server restarts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed override ledger.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the review_overrides table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS review_overrides (
			seq BIGSERIAL PRIMARY KEY,
			case_id TEXT,
			booking_id TEXT,
			label TEXT,
			rationale TEXT NOT NULL DEFAULT '',
			meta JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, rec *Record) (*Record, error) {
	meta, err := json.Marshal(normalizedMeta(rec.Meta))
	if err != nil {
		return nil, err
	}

	cp := copyRecord(rec)
	var seq int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO review_overrides (case_id, booking_id, label, rationale, meta)
		VALUES ($1, $2, $3, $4, $5::JSONB)
		RETURNING seq, created_at
	`, rec.CaseID, rec.BookingID, rec.Label, rec.Rationale, string(meta)).Scan(&seq, &cp.CreatedAt)
	if err != nil {
		return nil, err
	}

	cp.ID = FormatID(seq)
	return cp, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, case_id, booking_id, label, rationale, meta::TEXT, created_at
		FROM review_overrides
		ORDER BY seq DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		var seq int64
		var meta string
		if err := rows.Scan(&seq, &rec.CaseID, &rec.BookingID, &rec.Label, &rec.Rationale, &meta, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ID = FormatID(seq)
		if err := json.Unmarshal([]byte(meta), &rec.Meta); err != nil {
			rec.Meta = map[string]any{}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// normalizedMeta guarantees meta serializes as an object, never null.
func normalizedMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
