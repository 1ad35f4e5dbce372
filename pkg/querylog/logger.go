// Package querylog journals answered queries to SQLite.
//
// The journal is write-only from the cache's point of view: nothing is read
// back into the cache or its counters on startup.
package querylog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pario-ai/answercache/pkg/config"
	"github.com/pario-ai/answercache/pkg/models"
)

// Logger writes and queries journal entries in a dedicated SQLite database.
type Logger struct {
	db   *sql.DB
	cfg  config.QueryLogConfig
	done chan struct{}
	wg   sync.WaitGroup
}

// New opens the journal database and creates the schema.
func New(cfg config.QueryLogConfig) (*Logger, error) {
	db, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open query log db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate query log db: %w", err)
	}

	l := &Logger{
		db:   db,
		cfg:  cfg,
		done: make(chan struct{}),
	}

	if cfg.RetentionDays > 0 {
		l.wg.Add(1)
		go l.retentionLoop()
	}

	return l, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS query_log (
		request_id  TEXT PRIMARY KEY,
		cache_key   TEXT NOT NULL,
		query       TEXT,
		cached      INTEGER NOT NULL,
		latency_ms  INTEGER NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_query_log_key ON query_log(cache_key)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_query_log_created ON query_log(created_at)`)
	return err
}

// Log inserts an entry. The raw query is dropped unless IncludeQueries is set.
func (l *Logger) Log(ctx context.Context, entry models.QueryLogEntry) error {
	if l == nil || l.db == nil {
		return nil
	}

	var query sql.NullString
	if l.cfg.IncludeQueries {
		query = sql.NullString{String: entry.Query, Valid: true}
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO query_log
		(request_id, cache_key, query, cached, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.RequestID, entry.CacheKey, query, entry.Cached, entry.LatencyMs, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("log query: %w", err)
	}
	return nil
}

// Query returns journal entries matching opts, newest first.
func (l *Logger) Query(ctx context.Context, opts models.QueryLogOpts) ([]models.QueryLogEntry, error) {
	q := `SELECT request_id, cache_key, query, cached, latency_ms, created_at
		FROM query_log WHERE 1=1`
	var args []any

	if opts.RequestID != "" {
		q += " AND request_id = ?"
		args = append(args, opts.RequestID)
	}
	if opts.CacheKey != "" {
		q += " AND cache_key = ?"
		args = append(args, opts.CacheKey)
	}
	if !opts.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, opts.Since.UTC())
	}
	if opts.Cached != nil {
		q += " AND cached = ?"
		args = append(args, *opts.Cached)
	}

	q += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query log search: %w", err)
	}
	defer rows.Close()

	var entries []models.QueryLogEntry
	for rows.Next() {
		var e models.QueryLogEntry
		var query sql.NullString
		if err := rows.Scan(&e.RequestID, &e.CacheKey, &query, &e.Cached, &e.LatencyMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query log row: %w", err)
		}
		e.Query = query.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns hit and miss counts grouped by day, newest first.
func (l *Logger) Stats(ctx context.Context) ([]models.QueryLogStat, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT date(created_at) AS day,
			COALESCE(SUM(cached), 0),
			COALESCE(SUM(1 - cached), 0)
		 FROM query_log GROUP BY day ORDER BY day DESC`)
	if err != nil {
		return nil, fmt.Errorf("query log stats: %w", err)
	}
	defer rows.Close()

	var stats []models.QueryLogStat
	for rows.Next() {
		var s models.QueryLogStat
		var day sql.NullString
		if err := rows.Scan(&day, &s.Hits, &s.Misses); err != nil {
			return nil, fmt.Errorf("scan query log stat: %w", err)
		}
		s.Day = day.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Cleanup deletes entries older than the configured retention period.
// A non-positive retention keeps everything.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	if l.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -l.cfg.RetentionDays)
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM query_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("query log cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry.
func (l *Logger) Clear(ctx context.Context) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM query_log`)
	if err != nil {
		return 0, fmt.Errorf("query log clear: %w", err)
	}
	return res.RowsAffected()
}

// Close stops the retention goroutine and closes the database.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.db.Close()
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			_, _ = l.Cleanup(context.Background())
		}
	}
}
