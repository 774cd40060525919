package scoring

import (
	"context"
	"database/sql"
)

// PostgresStore persists decision records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed decision store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the risk_decisions table if it does not exist.
// cmd/migrate owns the canonical schema; this keeps fresh databases
// usable without a separate migration step.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS risk_decisions (
			id BIGSERIAL PRIMARY KEY,
			booking_id TEXT NOT NULL DEFAULT '',
			verdict TEXT NOT NULL,
			risk_score INT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			fraud DOUBLE PRECISION NOT NULL,
			chargeback DOUBLE PRECISION NOT NULL,
			credit DOUBLE PRECISION NOT NULL,
			network DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_risk_decisions_booking ON risk_decisions(booking_id);
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, rec *Record) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO risk_decisions (booking_id, verdict, risk_score, confidence, fraud, chargeback, credit, network)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, rec.BookingID, string(rec.Verdict), rec.RiskScore, rec.Confidence,
		rec.Subscores.Fraud, rec.Subscores.Chargeback, rec.Subscores.Credit, rec.Subscores.Network,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (s *PostgresStore) List(ctx context.Context, bookingID string, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, booking_id, verdict, risk_score, confidence, fraud, chargeback, credit, network, created_at
		FROM risk_decisions
		WHERE ($1 = '' OR booking_id = $1)
		ORDER BY id DESC
		LIMIT $2
	`, bookingID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		r := &Record{}
		var verdict string
		if err := rows.Scan(&r.ID, &r.BookingID, &verdict, &r.RiskScore, &r.Confidence,
			&r.Subscores.Fraud, &r.Subscores.Chargeback, &r.Subscores.Credit, &r.Subscores.Network,
			&r.CreatedAt); err != nil {
			return nil, err
		}
		r.Verdict = Verdict(verdict)
		records = append(records, r)
	}
	return records, rows.Err()
}
