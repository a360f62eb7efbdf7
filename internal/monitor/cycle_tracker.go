package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CycleTracker hands out cycle IDs and remembers the last finished cycle.
type CycleTracker struct {
	currentCycleID  string
	currentStarted  time.Time
	lastCycleID     string
	lastFinished    time.Time
	completedCycles int
	mutex           sync.RWMutex
}

// NewCycleTracker creates a new CycleTracker
func NewCycleTracker() *CycleTracker {
	return &CycleTracker{}
}

// StartCycle begins a new cycle and returns its ID.
func (ct *CycleTracker) StartCycle(now time.Time) string {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.currentCycleID = uuid.NewString()
	ct.currentStarted = now
	return ct.currentCycleID
}

// EndCycle marks the current cycle finished.
func (ct *CycleTracker) EndCycle(now time.Time) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	if ct.currentCycleID == "" {
		return
	}
	ct.lastCycleID = ct.currentCycleID
	ct.lastFinished = now
	ct.currentCycleID = ""
	ct.completedCycles++
}

// GetCurrentCycleID returns the running cycle's ID, empty when idle.
func (ct *CycleTracker) GetCurrentCycleID() string {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return ct.currentCycleID
}

// GetLastCycle returns the ID and finish time of the last finished cycle.
func (ct *CycleTracker) GetLastCycle() (string, time.Time) {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return ct.lastCycleID, ct.lastFinished
}

// CompletedCycles returns how many cycles have finished since start.
func (ct *CycleTracker) CompletedCycles() int {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return ct.completedCycles
}
