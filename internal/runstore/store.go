package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vidplan/internal/config"
)

// DefaultFileName is the database file created inside the data directory.
const DefaultFileName = "runs.db"

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the run database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("open run store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure run store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenFromConfig opens the run database inside the configured data directory.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("open run store: config is required")
	}
	return Open(cfg.RunStorePath())
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a new running run and returns it with a fresh identifier.
func (s *Store) BeginRun(ctx context.Context, in RunInput) (*Run, error) {
	planID := strings.TrimSpace(in.PlanID)
	if planID == "" {
		return nil, errors.New("begin run: plan id is required")
	}
	id := uuid.NewString()
	started := s.now()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, plan_id, plan_path, output_path, status, scene_count, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		planID,
		nullableString(in.PlanPath),
		nullableString(in.OutputPath),
		StatusRunning,
		in.SceneCount,
		formatTime(started),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.GetRun(ctx, id)
}

// RecordAsset upserts the latest outcome for an asset in a run.
func (s *Store) RecordAsset(ctx context.Context, rec AssetRecord) error {
	if strings.TrimSpace(rec.RunID) == "" || strings.TrimSpace(rec.AssetID) == "" {
		return errors.New("record asset: run id and asset id are required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO run_assets (run_id, scene_index, asset_id, status, url, error_message, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id, scene_index, asset_id) DO UPDATE SET
             status = excluded.status,
             url = excluded.url,
             error_message = excluded.error_message,
             updated_at = excluded.updated_at`,
		rec.RunID,
		rec.SceneIndex,
		rec.AssetID,
		rec.Status,
		nullableString(rec.URL),
		nullableString(rec.ErrorMessage),
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("record asset %s: %w", rec.AssetID, err)
	}
	return nil
}

// FinishRun stamps the final status and recomputes asset counters from the
// recorded outcomes.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, errMsg string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finish run: status %q is not terminal", status)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET
             status = ?,
             error_message = ?,
             finished_at = ?,
             assets_total = (SELECT COUNT(1) FROM run_assets WHERE run_id = runs.id),
             assets_ready = (SELECT COUNT(1) FROM run_assets WHERE run_id = runs.id AND status = 'ready'),
             assets_failed = (SELECT COUNT(1) FROM run_assets WHERE run_id = runs.id AND status = 'error')
         WHERE id = ?`,
		status,
		nullableString(errMsg),
		formatTime(s.now()),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: run %s not found", runID)
	}
	return nil
}

const runColumns = `id, plan_id, plan_path, output_path, status, scene_count,
    assets_total, assets_ready, assets_failed, error_message, started_at, finished_at`

// GetRun fetches a run by its full identifier or a unique prefix. It returns
// nil when no run matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at DESC LIMIT 2`,
		id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("get run: %w", err)
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("get run: prefix %q is ambiguous", id)
	}
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ListAssets returns the recorded asset outcomes for a run in scene order.
func (s *Store) ListAssets(ctx context.Context, runID string) ([]AssetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, scene_index, asset_id, status, url, error_message, updated_at
         FROM run_assets WHERE run_id = ? ORDER BY scene_index, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var records []AssetRecord
	for rows.Next() {
		var (
			rec       AssetRecord
			url       sql.NullString
			errMsg    sql.NullString
			updatedAt string
		)
		if err := rows.Scan(&rec.RunID, &rec.SceneIndex, &rec.AssetID, &rec.Status, &url, &errMsg, &updatedAt); err != nil {
			return nil, fmt.Errorf("list assets: %w", err)
		}
		rec.URL = url.String
		rec.ErrorMessage = errMsg.String
		rec.UpdatedAt = parseTime(updatedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		planPath   sql.NullString
		outputPath sql.NullString
		status     string
		errMsg     sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.PlanID, &planPath, &outputPath, &status, &run.SceneCount,
		&run.AssetsTotal, &run.AssetsReady, &run.AssetsFailed, &errMsg, &startedAt, &finishedAt,
	); err != nil {
		return nil, err
	}
	run.PlanPath = planPath.String
	run.OutputPath = outputPath.String
	run.Status = Status(status)
	run.ErrorMessage = errMsg.String
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
