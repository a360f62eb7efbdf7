package monitor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleTracker_Basic(t *testing.T) {
	ct := NewCycleTracker()
	assert.Empty(t, ct.GetCurrentCycleID())

	start := time.Now()
	id := ct.StartCycle(start)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, ct.GetCurrentCycleID())

	ct.EndCycle(start.Add(time.Second))
	assert.Empty(t, ct.GetCurrentCycleID())
	assert.Equal(t, 1, ct.CompletedCycles())

	lastID, finished := ct.GetLastCycle()
	assert.Equal(t, id, lastID)
	assert.Equal(t, start.Add(time.Second), finished)

	next := ct.StartCycle(time.Now())
	assert.NotEqual(t, id, next)
}

func TestCycleTracker_EndWithoutStart(t *testing.T) {
	ct := NewCycleTracker()
	ct.EndCycle(time.Now())
	assert.Zero(t, ct.CompletedCycles())
}
