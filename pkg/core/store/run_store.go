package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finmodel/pkg/models"
)

// RunStore persists derivation batches. Hybrid layout: DB (primary) with a
// file-system fallback when no pool is configured.
type RunStore struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunStore creates a run store. With a nil pool it falls back to a
// file-based store in dir (default .cache/runs).
func NewRunStore(pool *pgxpool.Pool, dir string) *RunStore {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "runs")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] check run store dir: %v\n", err)
		}
	}
	return &RunStore{pool: pool, fileDir: dir}
}

// RunRecord is one persisted derivation batch: the raw inputs, the derived
// SSOT, and any consistency issues found at derivation time.
type RunRecord struct {
	ID         string                        `json:"id"`
	PeriodType string                        `json:"period_type"`
	Inputs     []models.PeriodInput          `json:"inputs"`
	Results    []models.CalculatedPeriodData `json:"results"`
	Issues     []models.ConsistencyIssue     `json:"issues,omitempty"`
	CreatedAt  time.Time                     `json:"created_at"`
}

// Save stores a run, upserting on id.
func (s *RunStore) Save(ctx context.Context, rec *RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	if s.pool != nil {
		inputsJSON, err := json.Marshal(rec.Inputs)
		if err != nil {
			return fmt.Errorf("marshal run inputs: %w", err)
		}
		resultsJSON, err := json.Marshal(rec.Results)
		if err != nil {
			return fmt.Errorf("marshal run results: %w", err)
		}
		issuesJSON, err := json.Marshal(rec.Issues)
		if err != nil {
			return fmt.Errorf("marshal run issues: %w", err)
		}

		query := `
			INSERT INTO forecast_runs (id, period_type, inputs, results, issues, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id)
			DO UPDATE SET
				period_type = EXCLUDED.period_type,
				inputs = EXCLUDED.inputs,
				results = EXCLUDED.results,
				issues = EXCLUDED.issues
		`
		if _, err := s.pool.Exec(ctx, query,
			rec.ID, rec.PeriodType, inputsJSON, resultsJSON, issuesJSON, rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		return nil
	}

	if s.fileDir != "" {
		raw, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal run record: %w", err)
		}
		if err := os.WriteFile(s.runPath(rec.ID), raw, 0644); err != nil {
			return fmt.Errorf("failed to save run file: %w", err)
		}
	}

	return nil
}

// Get retrieves a run by id. Returns (nil, nil) on a miss.
func (s *RunStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	if s.pool != nil {
		query := `
			SELECT period_type, inputs, results, issues, created_at
			FROM forecast_runs
			WHERE id = $1
			LIMIT 1
		`
		var (
			rec         = RunRecord{ID: id}
			inputsJSON  []byte
			resultsJSON []byte
			issuesJSON  []byte
		)
		err := s.pool.QueryRow(ctx, query, id).Scan(
			&rec.PeriodType, &inputsJSON, &resultsJSON, &issuesJSON, &rec.CreatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // miss
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load run: %w", err)
		}
		if err := json.Unmarshal(inputsJSON, &rec.Inputs); err != nil {
			return nil, fmt.Errorf("unmarshal run inputs: %w", err)
		}
		if err := json.Unmarshal(resultsJSON, &rec.Results); err != nil {
			return nil, fmt.Errorf("unmarshal run results: %w", err)
		}
		if len(issuesJSON) > 0 {
			if err := json.Unmarshal(issuesJSON, &rec.Issues); err != nil {
				return nil, fmt.Errorf("unmarshal run issues: %w", err)
			}
		}
		return &rec, nil
	}

	if s.fileDir != "" {
		raw, err := os.ReadFile(s.runPath(id))
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // miss
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load run file: %w", err)
		}
		var rec RunRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal run file: %w", err)
		}
		return &rec, nil
	}

	return nil, nil
}

func (s *RunStore) runPath(id string) string {
	return filepath.Join(s.fileDir, id+".json")
}
