package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"financial_analyst/pkg/core/pipeline"
)

// Run is one persisted pipeline result.
type Run struct {
	ID        uuid.UUID        `json:"id"`
	Company   string           `json:"company"`
	Result    *pipeline.Result `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

// ErrRunNotFound is returned by LoadRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

// SaveRun persists a pipeline result and returns its id.
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result) (uuid.UUID, error) {
	id := uuid.New()

	payload, err := json.Marshal(res)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, company, result_json) VALUES ($1, $2, $3)`,
		id, res.CompanyName, payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// LoadRun retrieves one run by id.
func (s *Store) LoadRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var (
		run     = Run{ID: id}
		payload []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT company, result_json, created_at FROM analysis_runs WHERE id = $1`, id).
		Scan(&run.Company, &payload, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("load run: %w", err)
	}

	if err := json.Unmarshal(payload, &run.Result); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs for a company, newest first.
func (s *Store) ListRuns(ctx context.Context, company string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, company, result_json, created_at
		 FROM analysis_runs WHERE company = $1
		 ORDER BY created_at DESC LIMIT $2`, company, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			payload []byte
		)
		if err := rows.Scan(&run.ID, &run.Company, &payload, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal(payload, &run.Result); err != nil {
			return nil, fmt.Errorf("unmarshal run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
