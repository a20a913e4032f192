package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/heirclark17/talor/config"
)

// Store persists user accounts and generated research reports in Postgres.
type Store struct {
	DB *sql.DB
}

// Report kinds persisted for generated documents.
const (
	ReportKindStrategy  = "strategy"
	ReportKindNews      = "news"
	ReportKindQuestions = "questions"
)

// ReportRecord is a stored research report. Payload holds the assembled
// result (or generated document) as JSON.
type ReportRecord struct {
	ID        string
	UserID    string
	Kind      string
	Company   string
	JobTitle  string
	Payload   []byte
	CreatedAt time.Time
}

// New opens a connection using the configured storage settings.
func New(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return NewWithDSN(ctx, dsn)
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// User operations
func (s *Store) CreateUser(ctx context.Context, email, hash string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES ($1,$2)`, email, hash)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, hash string, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	return
}

// Report operations

// SaveReport inserts a report and returns it with the generated id.
func (s *Store) SaveReport(ctx context.Context, rec ReportRecord) (ReportRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO research_reports (id, user_id, kind, company, job_title, payload)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING created_at
`, rec.ID, rec.UserID, rec.Kind, rec.Company, rec.JobTitle, rec.Payload).Scan(&rec.CreatedAt)
	if err != nil {
		return ReportRecord{}, err
	}
	return rec, nil
}

// ListReports returns a user's reports, newest first. kind filters when
// non-empty. Soft-deleted reports are excluded.
func (s *Store) ListReports(ctx context.Context, userID, kind string, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, kind, company, job_title, payload, created_at
FROM research_reports
WHERE user_id=$1 AND ($2 = '' OR kind=$2) AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $3
`, userID, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReportRecord
	for rows.Next() {
		var r ReportRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Kind, &r.Company, &r.JobTitle, &r.Payload, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetReport fetches a single report owned by the user.
func (s *Store) GetReport(ctx context.Context, id, userID string) (ReportRecord, bool, error) {
	var r ReportRecord
	err := s.DB.QueryRowContext(ctx, `
SELECT id, user_id, kind, company, job_title, payload, created_at
FROM research_reports
WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL
`, id, userID).Scan(&r.ID, &r.UserID, &r.Kind, &r.Company, &r.JobTitle, &r.Payload, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return ReportRecord{}, false, nil
	}
	if err != nil {
		return ReportRecord{}, false, err
	}
	return r, true, nil
}

// SoftDeleteReport marks a report deleted without dropping the row.
func (s *Store) SoftDeleteReport(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
UPDATE research_reports SET deleted_at = NOW()
WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL
`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
