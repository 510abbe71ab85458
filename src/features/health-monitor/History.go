/**
 * History - local sqlite record of completed health checks
 */

package healthmonitor

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS health_checks (
	id TEXT PRIMARY KEY,
	checked_at TIMESTAMP NOT NULL,
	load1 REAL NOT NULL,
	mem_used_mib INTEGER NOT NULL,
	mem_total_mib INTEGER NOT NULL,
	issue_count INTEGER NOT NULL,
	verdict TEXT NOT NULL,
	advisory INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_health_checks_checked_at ON health_checks(checked_at);
`

// History persists one row per completed health check.
type History struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// OpenHistory opens (creating if needed) the check-history database.
func OpenHistory(path string, logger *zap.SugaredLogger) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap history schema: %w", err)
	}

	return &History{db: db, logger: logger}, nil
}

// Record inserts one completed check.
func (h *History) Record(ctx context.Context, snap *MetricsSnapshot, issueCount int, verdict string, advisory bool) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO health_checks (id, checked_at, load1, mem_used_mib, mem_total_mib, issue_count, verdict, advisory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), snap.CollectedAt, snap.Load1, snap.MemUsedMiB,
		snap.MemTotalMiB, issueCount, verdict, advisory,
	)
	if err != nil {
		return fmt.Errorf("insert health check: %w", err)
	}
	return nil
}

// Recent returns the most recent checks, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]CheckRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, checked_at, load1, mem_used_mib, mem_total_mib, issue_count, verdict, advisory
		FROM health_checks ORDER BY checked_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list health checks: %w", err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var r CheckRecord
		if err := rows.Scan(&r.ID, &r.CheckedAt, &r.Load1, &r.MemUsedMiB,
			&r.MemTotalMiB, &r.IssueCount, &r.Verdict, &r.Advisory); err != nil {
			return nil, fmt.Errorf("scan health check row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteBefore removes checks older than the given time.
func (h *History) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := h.db.ExecContext(ctx, `DELETE FROM health_checks WHERE checked_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("delete old health checks: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
