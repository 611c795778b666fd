package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"forest-ca/internal/report"
	"forest-ca/internal/sims/forestfire"
)

// RunSummary is one stored run without its series.
type RunSummary struct {
	ID          int64
	Config      forestfire.Config
	Peak        int
	PeakStep    int
	TotalBurned int
	CreatedAt   time.Time
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun stores the run header and its burning series in one transaction
// and returns the new run id.
func (r *RunRepo) SaveRun(ctx context.Context, rep report.Report) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("save run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	c := rep.Config
	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO runs (width, height, steps, seed, initial_tree_probability, grow_probability,
		                   lightning_probability, peak_burning, peak_step, total_burned)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		c.Width, c.Height, c.Steps, c.Seed, c.InitialTreeProbability, c.GrowProbability,
		c.LightningProbability, rep.Peak, rep.PeakStep, rep.TotalBurned,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	rows := metricRows(id, rep.Burning)
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"run_metrics"},
		[]string{"run_id", "step", "burning"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return 0, fmt.Errorf("copy run metrics: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("save run commit: %w", err)
	}
	r.db.log.Info("run saved", zap.Int64("run_id", id), zap.Int("steps", len(rows)-1))
	return id, nil
}

// LoadSeries returns the burning counts of a stored run ordered by step.
func (r *RunRepo) LoadSeries(ctx context.Context, runID int64) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT burning FROM run_metrics WHERE run_id = $1 ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run metrics: %w", err)
	}
	series, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("scan run metrics: %w", err)
	}
	out := make([]int, len(series))
	for i, v := range series {
		out[i] = int(v)
	}
	return out, nil
}

// GetRun returns the stored header of one run. A missing id yields
// pgx.ErrNoRows.
func (r *RunRepo) GetRun(ctx context.Context, id int64) (RunSummary, error) {
	var s RunSummary
	c := &s.Config
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, width, height, steps, seed, initial_tree_probability, grow_probability,
		        lightning_probability, peak_burning, peak_step, total_burned, created_at
		 FROM runs WHERE id = $1`, id,
	).Scan(&s.ID, &c.Width, &c.Height, &c.Steps, &c.Seed, &c.InitialTreeProbability,
		&c.GrowProbability, &c.LightningProbability, &s.Peak, &s.PeakStep, &s.TotalBurned, &s.CreatedAt)
	if err != nil {
		return RunSummary{}, fmt.Errorf("get run %d: %w", id, err)
	}
	return s, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepo) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, width, height, steps, seed, initial_tree_probability, grow_probability,
		        lightning_probability, peak_burning, peak_step, total_burned, created_at
		 FROM runs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		c := &s.Config
		if err := rows.Scan(&s.ID, &c.Width, &c.Height, &c.Steps, &c.Seed, &c.InitialTreeProbability,
			&c.GrowProbability, &c.LightningProbability, &s.Peak, &s.PeakStep, &s.TotalBurned, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func metricRows(runID int64, burning []int) [][]any {
	rows := make([][]any, len(burning))
	for step, n := range burning {
		rows[step] = []any{runID, int32(step), int32(n)}
	}
	return rows
}
