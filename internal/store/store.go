// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmeritt/sketchtrace/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			lesson TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			steps_completed INTEGER NOT NULL,
			steps_total INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			avg_accuracy REAL NOT NULL,
			best_accuracy REAL NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS step_results (
			session_id TEXT NOT NULL,
			step_index INTEGER NOT NULL,
			step_name TEXT NOT NULL,
			shape_kind TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			best_accuracy REAL NOT NULL,
			completed INTEGER NOT NULL,
			time_spent_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, step_index)
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			session_id TEXT NOT NULL,
			step_index INTEGER NOT NULL,
			attempt INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			path_accuracy REAL NOT NULL,
			temporal_accuracy REAL NOT NULL,
			velocity_consistency REAL NOT NULL,
			pressure_stability REAL NOT NULL,
			correct INTEGER NOT NULL,
			PRIMARY KEY (session_id, step_index, attempt)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_step_results_shape_kind ON step_results(shape_kind);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session with its per-step results and
// per-stroke attempts.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, steps []model.StepResult, attempts []model.AttemptRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("session id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, lesson, started_at, ended_at, steps_completed, steps_total, attempts, avg_accuracy, best_accuracy, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Lesson,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.StepsCompleted,
		rec.StepsTotal,
		rec.Attempts,
		rec.AvgAccuracy,
		rec.BestAccuracy,
		rec.DurationMs,
	)
	if err != nil {
		return err
	}

	if len(steps) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO step_results (session_id, step_index, step_name, shape_kind, attempts, best_accuracy, completed, time_spent_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, sr := range steps {
			if _, err := stmt.ExecContext(ctx, rec.ID, sr.StepIndex, sr.StepName, sr.ShapeKind, sr.Attempts, sr.BestAccuracy, boolToInt(sr.Completed), sr.TimeSpentMs); err != nil {
				return err
			}
		}
	}

	if len(attempts) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO attempts (session_id, step_index, attempt, accuracy, path_accuracy, temporal_accuracy, velocity_consistency, pressure_stability, correct)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ar := range attempts {
			if _, err := stmt.ExecContext(ctx, rec.ID, ar.StepIndex, ar.Attempt, ar.Accuracy, ar.PathAccuracy, ar.TemporalAccuracy, ar.VelocityConsistency, ar.PressureStability, boolToInt(ar.Correct)); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

// GetWeakShapes aggregates attempt outcomes per shape kind over the most
// recent sessions.
func (s *Store) GetWeakShapes(ctx context.Context, window int, lessonSlug string) ([]model.ShapeAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR lesson = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT sr.shape_kind, COUNT(*) AS attempts, SUM(a.correct) AS correct,
		AVG(a.accuracy) AS avg_accuracy, MAX(a.accuracy) AS best_accuracy
	FROM attempts a
	JOIN recent_sessions r ON r.id = a.session_id
	JOIN step_results sr ON sr.session_id = a.session_id AND sr.step_index = a.step_index
	GROUP BY sr.shape_kind`

	rows, err := s.db.QueryContext(ctx, query, lessonSlug, lessonSlug, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ShapeAggregate
	for rows.Next() {
		var agg model.ShapeAggregate
		if err := rows.Scan(&agg.ShapeKind, &agg.Attempts, &agg.Correct, &agg.AvgAccuracy, &agg.BestAccuracy); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lesson != "" {
		clauses = append(clauses, "lesson = ?")
		args = append(args, cfg.Lesson)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, lesson, ended_at, steps_completed, steps_total, attempts, avg_accuracy, best_accuracy, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &agg.Lesson, &endedAt, &agg.StepsCompleted, &agg.StepsTotal, &agg.Attempts, &agg.AvgAccuracy, &agg.BestAccuracy, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListShapeAggregatesForSessions aggregates attempt outcomes per shape kind
// across the given sessions.
func (s *Store) ListShapeAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.ShapeAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT sr.shape_kind, COUNT(*) AS attempts, SUM(a.correct) AS correct,
		AVG(a.accuracy) AS avg_accuracy, MAX(a.accuracy) AS best_accuracy
		FROM attempts a
		JOIN step_results sr ON sr.session_id = a.session_id AND sr.step_index = a.step_index
		WHERE a.session_id IN (%s)
		GROUP BY sr.shape_kind`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ShapeAggregate
	for rows.Next() {
		var agg model.ShapeAggregate
		if err := rows.Scan(&agg.ShapeKind, &agg.Attempts, &agg.Correct, &agg.AvgAccuracy, &agg.BestAccuracy); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListShapeStatsForSessions returns per-session aggregates for selected shape
// kinds.
func (s *Store) ListShapeStatsForSessions(ctx context.Context, sessionIDs []string, kinds []string) (map[string]map[string]model.ShapeAggregate, error) {
	if len(sessionIDs) == 0 || len(kinds) == 0 {
		return map[string]map[string]model.ShapeAggregate{}, nil
	}
	idPlaceholders := make([]string, len(sessionIDs))
	args := make([]any, 0, len(sessionIDs)+len(kinds))
	for i, id := range sessionIDs {
		idPlaceholders[i] = "?"
		args = append(args, id)
	}
	kindPlaceholders := make([]string, len(kinds))
	for i, kind := range kinds {
		kindPlaceholders[i] = "?"
		args = append(args, kind)
	}

	query := fmt.Sprintf(`SELECT a.session_id, sr.shape_kind, COUNT(*) AS attempts, SUM(a.correct) AS correct,
		AVG(a.accuracy) AS avg_accuracy, MAX(a.accuracy) AS best_accuracy
		FROM attempts a
		JOIN step_results sr ON sr.session_id = a.session_id AND sr.step_index = a.step_index
		WHERE a.session_id IN (%s) AND sr.shape_kind IN (%s)
		GROUP BY a.session_id, sr.shape_kind`, strings.Join(idPlaceholders, ","), strings.Join(kindPlaceholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]map[string]model.ShapeAggregate{}
	for rows.Next() {
		var sessionID string
		var agg model.ShapeAggregate
		if err := rows.Scan(&sessionID, &agg.ShapeKind, &agg.Attempts, &agg.Correct, &agg.AvgAccuracy, &agg.BestAccuracy); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.ShapeAggregate{}
		}
		result[sessionID][agg.ShapeKind] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
