// Package audit records per-call usage of the two voice APIs so testers
// can reconcile what they sent against their cloud billing.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service writes usage records to Postgres. A nil receiver or nil pool is
// valid and turns every method into a no-op, so the tester runs fine
// without a database.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	if db == nil {
		return nil
	}
	return &Service{db: db}
}

// CallRecord describes one recognize or synthesize call.
type CallRecord struct {
	SessionID string
	Operation string // "transcribe" or "synthesize"
	Provider  string
	// PayloadBytes is audio bytes in for transcription, text bytes in for
	// synthesis.
	PayloadBytes int
	ResultBytes  int
	LatencyMs    int64
	Success      bool
	ErrorText    string
}

func (s *Service) LogCall(ctx context.Context, rec CallRecord) error {
	if s == nil || s.db == nil {
		return nil
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO voice_usage_logs (session_id, operation, provider, payload_bytes, result_bytes, latency_ms, success, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.SessionID, rec.Operation, rec.Provider, rec.PayloadBytes, rec.ResultBytes,
		rec.LatencyMs, rec.Success, rec.ErrorText,
	)
	if err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

// UsageSummary aggregates calls per operation.
type UsageSummary struct {
	Operation    string  `json:"operation"`
	Provider     string  `json:"provider"`
	TotalCalls   int     `json:"total_calls"`
	FailedCalls  int     `json:"failed_calls"`
	TotalBytes   int64   `json:"total_payload_bytes"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

func (s *Service) Summary(ctx context.Context, since *time.Time) ([]UsageSummary, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `SELECT operation, provider, COUNT(*),
			         COUNT(*) FILTER (WHERE NOT success),
			         COALESCE(SUM(payload_bytes), 0),
			         COALESCE(AVG(latency_ms), 0)
			  FROM voice_usage_logs`
	args := []interface{}{}
	if since != nil {
		query += " WHERE created_at >= $1"
		args = append(args, *since)
	}
	query += " GROUP BY operation, provider ORDER BY operation"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []UsageSummary
	for rows.Next() {
		var us UsageSummary
		if err := rows.Scan(&us.Operation, &us.Provider, &us.TotalCalls, &us.FailedCalls, &us.TotalBytes, &us.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, us)
	}
	return summaries, nil
}
