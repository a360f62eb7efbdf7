package notifystate

import (
	"sync"
	"testing"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetAndGet(t *testing.T) {
	s := NewStore(zerolog.Nop())

	assert.False(t, s.WasNotified("1", "http://x"))

	s.SetNotified("1", "http://x", true)
	assert.True(t, s.WasNotified("1", "http://x"))
	assert.True(t, s.WasNotified("1", "HTTP://X"), "keys compare case-insensitively")
	assert.False(t, s.WasNotified("2", "http://x"), "owners are independent")

	s.SetNotified("1", "http://x", false)
	assert.False(t, s.WasNotified("1", "http://x"))
	assert.Equal(t, 1, s.Len(), "clean verdict keeps the entry")
}

func TestStore_Transition(t *testing.T) {
	s := NewStore(zerolog.Nop())

	steps := []struct {
		alarmed bool
		notify  bool
	}{
		{alarmed: true, notify: true},
		{alarmed: true, notify: false},
		{alarmed: true, notify: false},
		{alarmed: false, notify: false},
		{alarmed: false, notify: false},
		{alarmed: true, notify: true},
	}

	for i, step := range steps {
		notify, _ := s.Transition("1", "/tmp/a", step.alarmed)
		assert.Equal(t, step.notify, notify, "step %d", i)
	}
}

func TestStore_CleanOnUnknownPairCreatesNothing(t *testing.T) {
	s := NewStore(zerolog.Nop())

	notify, previous := s.Transition("1", "http://x", false)
	assert.False(t, notify)
	assert.False(t, previous)
	assert.Equal(t, 0, s.Len())
}

func TestStore_TransitionReportsPreviousFlag(t *testing.T) {
	s := NewStore(zerolog.Nop())

	notify, previous := s.Transition("1", "http://x", true)
	assert.True(t, notify)
	assert.False(t, previous)

	notify, previous = s.Transition("1", "HTTP://X", true)
	assert.False(t, notify)
	assert.True(t, previous)

	notify, previous = s.Transition("1", "http://x", false)
	assert.False(t, notify)
	assert.True(t, previous, "recovery sees the alarmed flag")
	assert.False(t, s.WasNotified("1", "http://x"))

	_, previous = s.Transition("1", "http://x", false)
	assert.False(t, previous)
}

func TestStore_ConcurrentRecoveryCountedOnce(t *testing.T) {
	s := NewStore(zerolog.Nop())
	s.SetNotified("1", "http://x", true)

	var wg sync.WaitGroup
	var mu sync.Mutex
	recovered := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, previous := s.Transition("1", "http://x", false); previous {
				mu.Lock()
				recovered++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, recovered)
	assert.Equal(t, 0, s.AlarmedCount())
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(zerolog.Nop())
	s.SetNotified("1", "http://x", true)

	s.Clear("1", "HTTP://x")
	assert.False(t, s.WasNotified("1", "http://x"))
	assert.Equal(t, 0, s.Len())

	s.Clear("nobody", "nothing")
	notify, _ := s.Transition("1", "http://x", true)
	assert.True(t, notify, "cleared pair alerts again")
}

func TestStore_PruneToRegistry(t *testing.T) {
	s := NewStore(zerolog.Nop())
	s.SetNotified("1", "http://keep", true)
	s.SetNotified("1", "http://gone", true)
	s.SetNotified("2", "/tmp/file", false)

	reg := models.Registry{"1": {Targets: []models.Target{"HTTP://KEEP"}}}

	removed := s.PruneToRegistry(reg)
	assert.Equal(t, 2, removed)
	assert.True(t, s.WasNotified("1", "http://keep"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.AlarmedCount())
}

func TestStore_ConcurrentTransitionsNotifyOnce(t *testing.T) {
	s := NewStore(zerolog.Nop())

	var wg sync.WaitGroup
	var mu sync.Mutex
	notified := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if notify, _ := s.Transition("1", "http://x", true); notify {
				mu.Lock()
				notified++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, notified)
	assert.Equal(t, 1, s.AlarmedCount())
}
