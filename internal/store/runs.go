package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the terminal state of an archived run.
type RunStatus string

const (
	// RunComplete: the root node exhausted all rewrites.
	RunComplete RunStatus = "complete"
	// RunContradiction: a constraint node failed terminally.
	RunContradiction RunStatus = "contradiction"
)

// Run is one archived generation run. Checksum is the FNV-1a digest of
// the final grid; Seed plus ModelHash are enough to reproduce it.
type Run struct {
	ID         string
	ModelName  string
	ModelHash  string
	Seed       uint64
	Status     RunStatus
	Steps      int
	Operations int
	Checksum   uint64
	CreatedAt  time.Time
}

// ErrRunNotFound is returned by ReadRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// NewRunID mints a fresh archive ID.
func NewRunID() string { return uuid.NewString() }

// WriteRun inserts a run record. Duplicate IDs are rejected.
//
// Seed and Checksum are stored as their int64 bit patterns; SQLite has
// no unsigned 64-bit type. Read paths undo the cast.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return fmt.Errorf("write run: empty id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, model_name, model_hash, seed, status, steps, operations, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.ModelName,
		r.ModelHash,
		int64(r.Seed),
		string(r.Status),
		r.Steps,
		r.Operations,
		int64(r.Checksum),
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", r.ID, err)
	}
	return nil
}

// ReadRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, model_name, model_hash, seed, status, steps, operations, checksum, created_at
		FROM runs
		WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns up to limit runs for a model, newest first. An
// empty modelName lists runs for every model.
func (s *Store) ListRuns(ctx context.Context, modelName string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, model_name, model_hash, seed, status, steps, operations, checksum, created_at
		FROM runs
	`
	args := []any{}
	if modelName != "" {
		query += " WHERE model_name = ?"
		args = append(args, modelName)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var seed, checksum int64
	var status, created string
	if err := sc.Scan(
		&r.ID, &r.ModelName, &r.ModelHash,
		&seed, &status, &r.Steps, &r.Operations, &checksum, &created,
	); err != nil {
		return Run{}, err
	}
	r.Seed = uint64(seed)
	r.Checksum = uint64(checksum)
	r.Status = RunStatus(status)
	if t, err := time.Parse("2006-01-02 15:04:05", created); err == nil {
		r.CreatedAt = t
	}
	return r, nil
}
