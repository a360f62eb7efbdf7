package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_RecordCycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	id, err := db.RecordCycleStart(ctx, "cycle-1", start)
	require.NoError(t, err)
	assert.Positive(t, id)

	counts := CycleCounts{Owners: 2, Targets: 5, Alerts: 1, FetchErrors: 2, Recovered: 1}
	require.NoError(t, db.RecordCycleCompletion(ctx, id, start.Add(3*time.Second), StatusCompleted, counts, nil))

	records, err := db.RecentCycles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "cycle-1", r.CycleID)
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, 5, r.Targets)
	assert.Equal(t, 2, r.FetchErrors)
	assert.Equal(t, 3*time.Second, r.Duration())
	assert.False(t, r.ErrorMessage.Valid)
}

func TestDB_FailedCycleKeepsError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.RecordCycleStart(ctx, "cycle-err", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.RecordCycleCompletion(ctx, id, time.Now(), StatusFailed, CycleCounts{}, errors.New("registry unreadable")))

	last, err := db.LastCompletedCycle(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	records, err := db.RecentCycles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "registry unreadable", records[0].ErrorMessage.String)
}

func TestDB_RecentCyclesOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		rowID, err := db.RecordCycleStart(ctx, id, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, db.RecordCycleCompletion(ctx, rowID, base.Add(time.Duration(i)*time.Minute+time.Second), StatusCompleted, CycleCounts{}, nil))
	}

	records, err := db.RecentCycles(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].CycleID)
	assert.Equal(t, "b", records[1].CycleID)

	last, err := db.LastCompletedCycle(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "c", last.CycleID)
}

func TestDB_MarkInterrupted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.RecordCycleStart(ctx, "dangling", time.Now())
	require.NoError(t, err)

	n, err := db.MarkInterrupted(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records, err := db.RecentCycles(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, records[0].Status)
}

func TestDB_CompletionOfUnknownRow(t *testing.T) {
	db := newTestDB(t)
	assert.Error(t, db.RecordCycleCompletion(context.Background(), 999, time.Now(), StatusCompleted, CycleCounts{}, nil))
}
