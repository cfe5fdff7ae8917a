package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gamelens/internal/analysis"
)

// ReviewRecord is one archived analysis load: session metadata plus the
// aggregate discrepancy counts at load time. The archive is a history
// for operators; the in-memory session stays the source of truth while
// a review is open.
type ReviewRecord struct {
	ID                 string
	SessionID          string
	Platform           string
	Channel            string
	Date               string
	FrameTotal         int
	WithDiscrepancies  int
	MLVsPostprocessing int
	PostprocessingVsDB int
	MissingInDB        int
	ExtraInDB          int
	LoadedAt           time.Time
}

// NewReviewRecord summarizes a loaded session for archiving.
func NewReviewRecord(id string, s *analysis.Session) *ReviewRecord {
	stats := analysis.Summarize(s.Results)
	return &ReviewRecord{
		ID:                 id,
		SessionID:          s.SessionID,
		Platform:           s.Platform,
		Channel:            s.Channel,
		Date:               s.Date,
		FrameTotal:         stats.Total,
		WithDiscrepancies:  stats.WithDiscrepancies,
		MLVsPostprocessing: stats.MLVsPostprocessing,
		PostprocessingVsDB: stats.PostprocessingVsDB,
		MissingInDB:        stats.MissingInDB,
		ExtraInDB:          stats.ExtraInDB,
		LoadedAt:           time.Now().UTC(),
	}
}

type ReviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, session_id, platform, channel, date, frame_total,
	with_discrepancies, ml_vs_postprocessing, postprocessing_vs_db,
	missing_in_db, extra_in_db, loaded_at`

func (r *ReviewRepository) Insert(rec *ReviewRecord) error {
	query := r.rebind(`INSERT INTO review_loads (` + reviewColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.conn.Exec(query,
		rec.ID, rec.SessionID, rec.Platform, rec.Channel, rec.Date,
		rec.FrameTotal, rec.WithDiscrepancies, rec.MLVsPostprocessing,
		rec.PostprocessingVsDB, rec.MissingInDB, rec.ExtraInDB, rec.LoadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review record: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetByID(id string) (*ReviewRecord, error) {
	query := r.rebind(`SELECT ` + reviewColumns + ` FROM review_loads WHERE id = ?`)

	rec, err := scanReview(r.db.conn.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("review record not found")
		}
		return nil, fmt.Errorf("failed to get review record: %w", err)
	}
	return rec, nil
}

func (r *ReviewRepository) ListRecent(limit int) ([]ReviewRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.rebind(`SELECT ` + reviewColumns + ` FROM review_loads
		ORDER BY loaded_at DESC LIMIT ?`)

	rows, err := r.db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", err)
	}
	defer rows.Close()

	var records []ReviewRecord
	for rows.Next() {
		rec, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *ReviewRepository) Delete(id string) error {
	query := r.rebind(`DELETE FROM review_loads WHERE id = ?`)
	if _, err := r.db.conn.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete review record: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*ReviewRecord, error) {
	var rec ReviewRecord
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.Platform, &rec.Channel,
		&rec.Date, &rec.FrameTotal, &rec.WithDiscrepancies,
		&rec.MLVsPostprocessing, &rec.PostprocessingVsDB,
		&rec.MissingInDB, &rec.ExtraInDB, &rec.LoadedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// rebind rewrites ? placeholders to $n for the postgres driver.
func (r *ReviewRepository) rebind(query string) string {
	if r.db.dbType != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
