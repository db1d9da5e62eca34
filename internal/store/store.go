// Package store persists completed analyses in Postgres. The history is an
// audit trail: every dispatched request lands here with its full attempt
// record, whether the caller keeps the result or not.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("missing database dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Analysis is one completed (or failed) pipeline run.
type Analysis struct {
	ID          string
	Input       string
	Mode        string
	Provider    string
	Model       string
	Sections    map[string]string
	Confidences map[string]float64
	Attempts    json.RawMessage
	TokensUsed  int
	LatencyMS   int
	CreatedAt   time.Time
}

func (s *Store) RecordAnalysis(ctx context.Context, a Analysis) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	sectionsJSON, _ := json.Marshal(a.Sections)
	confidencesJSON, _ := json.Marshal(a.Confidences)
	attempts := a.Attempts
	if len(attempts) == 0 {
		attempts = json.RawMessage(`[]`)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO analyses (id, input, mode, provider, model, sections, confidences, attempts, tokens_used, latency_ms)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.Input, a.Mode, a.Provider, a.Model, sectionsJSON, confidencesJSON, []byte(attempts), a.TokensUsed, a.LatencyMS)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

func (s *Store) GetAnalysis(ctx context.Context, id string) (Analysis, error) {
	var a Analysis
	var sectionsJSON, confidencesJSON, attemptsJSON []byte
	row := s.db.QueryRowContext(ctx, `SELECT id, input, mode, provider, model, sections, confidences, attempts, tokens_used, latency_ms, created_at
		FROM analyses WHERE id = $1`, id)
	if err := row.Scan(&a.ID, &a.Input, &a.Mode, &a.Provider, &a.Model, &sectionsJSON, &confidencesJSON, &attemptsJSON, &a.TokensUsed, &a.LatencyMS, &a.CreatedAt); err != nil {
		return a, err
	}
	_ = json.Unmarshal(sectionsJSON, &a.Sections)
	_ = json.Unmarshal(confidencesJSON, &a.Confidences)
	a.Attempts = attemptsJSON
	return a, nil
}

func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, input, mode, provider, model, sections, confidences, attempts, tokens_used, latency_ms, created_at
		FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var sectionsJSON, confidencesJSON, attemptsJSON []byte
		if err := rows.Scan(&a.ID, &a.Input, &a.Mode, &a.Provider, &a.Model, &sectionsJSON, &confidencesJSON, &attemptsJSON, &a.TokensUsed, &a.LatencyMS, &a.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(sectionsJSON, &a.Sections)
		_ = json.Unmarshal(confidencesJSON, &a.Confidences)
		a.Attempts = attemptsJSON
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AnalysisCount(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT count(*) FROM analyses`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) HealthSummary(ctx context.Context) (map[string]string, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, err
	}
	return map[string]string{"database": "ok"}, nil
}
