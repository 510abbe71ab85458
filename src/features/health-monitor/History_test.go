package healthmonitor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tveit-dev/guardian/src/utility"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"), utility.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryRecordAndRecent(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	older := snapshotWith(0.5, 2048, 8192, nil)
	older.CollectedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, h.Record(ctx, older, 0, "All systems green.", false))

	newer := snapshotWith(2.0, 7900, 8192, nil)
	newer.CollectedAt = time.Now().UTC()
	require.NoError(t, h.Record(ctx, newer, 2, "Issues detected: high CPU load; high memory usage", true))

	records, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, 2, records[0].IssueCount)
	assert.True(t, records[0].Advisory)
	assert.Equal(t, 2.0, records[0].Load1)
	assert.Equal(t, "All systems green.", records[1].Verdict)
	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestHistoryRecentLimit(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		snap := snapshotWith(0.1, 100, 1000, nil)
		snap.CollectedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		require.NoError(t, h.Record(ctx, snap, 0, "All systems green.", false))
	}

	records, err := h.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestHistoryDeleteBefore(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	old := snapshotWith(0.1, 100, 1000, nil)
	old.CollectedAt = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, h.Record(ctx, old, 0, "All systems green.", false))

	recent := snapshotWith(0.1, 100, 1000, nil)
	recent.CollectedAt = time.Now().UTC()
	require.NoError(t, h.Record(ctx, recent, 0, "All systems green.", false))

	deleted, err := h.DeleteBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	records, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
