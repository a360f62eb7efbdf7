// Package notifystate remembers, per owner and target, whether an alarm has already been delivered.
package notifystate

import (
	"sync"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// Store is the process-wide (owner, target) -> notified mapping. It lives only in memory:
// after a restart every active alarm is announced once more.
// Targets are keyed case-insensitively, matching registry uniqueness.
type Store struct {
	logger  zerolog.Logger
	entries map[models.Owner]map[string]bool
	mutex   sync.RWMutex
}

// NewStore creates an empty Store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		logger:  logger.With().Str("component", "NotificationState").Logger(),
		entries: make(map[models.Owner]map[string]bool),
	}
}

// WasNotified reports whether an alarm is currently flagged for the pair. Unknown pairs are false.
func (s *Store) WasNotified(owner models.Owner, target models.Target) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.entries[owner][target.Key()]
}

// SetNotified records the flag for the pair, creating the entry if needed.
func (s *Store) SetNotified(owner models.Owner, target models.Target, notified bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.setUnsafe(owner, target.Key(), notified)
}

// Transition applies a classification outcome. notify reports whether an alert must
// be sent: an alarm on a clear pair flips it to notified. A clean outcome clears the
// flag silently. previous is the flag before the call, read under the same lock.
func (s *Store) Transition(owner models.Owner, target models.Target, alarmed bool) (notify, previous bool) {
	key := target.Key()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	previous = s.entries[owner][key]
	if !alarmed {
		if previous {
			s.setUnsafe(owner, key, false)
		}
		return false, previous
	}
	if previous {
		return false, true
	}
	s.setUnsafe(owner, key, true)
	return true, false
}

// Clear removes the pair entirely. Clearing an absent pair is a no-op.
func (s *Store) Clear(owner models.Owner, target models.Target) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	targets, ok := s.entries[owner]
	if !ok {
		return
	}
	delete(targets, target.Key())
	if len(targets) == 0 {
		delete(s.entries, owner)
	}
}

// Prune drops every entry for which keep returns false and returns how many were removed.
// key is the lower-cased target.
func (s *Store) Prune(keep func(owner models.Owner, key string) bool) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for owner, targets := range s.entries {
		for key := range targets {
			if !keep(owner, key) {
				delete(targets, key)
				removed++
			}
		}
		if len(targets) == 0 {
			delete(s.entries, owner)
		}
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("Pruned notification state of unregistered targets")
	}
	return removed
}

// PruneToRegistry keeps only entries whose pair is still registered in reg.
func (s *Store) PruneToRegistry(reg models.Registry) int {
	active := make(map[models.Owner]map[string]struct{}, len(reg))
	for owner, entry := range reg {
		if entry == nil {
			continue
		}
		keys := make(map[string]struct{}, len(entry.Targets))
		for _, t := range entry.Targets {
			keys[t.Key()] = struct{}{}
		}
		active[owner] = keys
	}

	return s.Prune(func(owner models.Owner, key string) bool {
		_, ok := active[owner][key]
		return ok
	})
}

// Len returns the number of tracked pairs, flagged or not.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	n := 0
	for _, targets := range s.entries {
		n += len(targets)
	}
	return n
}

// AlarmedCount returns how many pairs are currently flagged.
func (s *Store) AlarmedCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	n := 0
	for _, targets := range s.entries {
		for _, flagged := range targets {
			if flagged {
				n++
			}
		}
	}
	return n
}

func (s *Store) setUnsafe(owner models.Owner, key string, notified bool) {
	targets, ok := s.entries[owner]
	if !ok {
		targets = make(map[string]bool)
		s.entries[owner] = targets
	}
	targets[key] = notified
}
