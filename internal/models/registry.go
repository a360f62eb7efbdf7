package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// OwnerEntry holds the ordered targets registered by one owner.
type OwnerEntry struct {
	Targets []Target `json:"targets"`
}

// UnmarshalJSON accepts the current layout and the legacy ones:
// a "urls" field instead of "targets", and a mapping of flags instead of a list.
// Legacy mappings are converted to a list in document order.
func (e *OwnerEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("owner entry must be an object: %w", err)
	}

	field, ok := raw["targets"]
	if !ok {
		field, ok = raw["urls"]
	}
	if !ok || isJSONNull(field) {
		e.Targets = []Target{}
		return nil
	}

	targets, err := decodeTargetList(field)
	if err != nil {
		return err
	}
	e.Targets = targets
	return nil
}

// IndexOf returns the position of target (case-insensitive) or -1.
func (e *OwnerEntry) IndexOf(target Target) int {
	for i, t := range e.Targets {
		if t.Matches(target) {
			return i
		}
	}
	return -1
}

// Contains reports whether target is registered (case-insensitive).
func (e *OwnerEntry) Contains(target Target) bool {
	return e.IndexOf(target) >= 0
}

// Registry maps owners to their monitored targets.
type Registry map[Owner]*OwnerEntry

// Pair is one (owner, target) combination to be checked in a cycle.
type Pair struct {
	Owner  Owner
	Target Target
}

// EnsureOwner returns the owner's entry, creating an empty one if needed.
func (r Registry) EnsureOwner(owner Owner) *OwnerEntry {
	entry, ok := r[owner]
	if !ok || entry == nil {
		entry = &OwnerEntry{Targets: []Target{}}
		r[owner] = entry
	}
	if entry.Targets == nil {
		entry.Targets = []Target{}
	}
	return entry
}

// Owners returns owner identifiers sorted lexically.
func (r Registry) Owners() []Owner {
	owners := make([]Owner, 0, len(r))
	for owner := range r {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners
}

// Pairs flattens the registry into (owner, target) pairs.
// Owners are sorted; targets keep their registration order.
func (r Registry) Pairs() []Pair {
	pairs := make([]Pair, 0, r.TargetCount())
	for _, owner := range r.Owners() {
		entry := r[owner]
		if entry == nil {
			continue
		}
		for _, target := range entry.Targets {
			pairs = append(pairs, Pair{Owner: owner, Target: target})
		}
	}
	return pairs
}

// TargetCount returns the total number of registered targets across owners.
func (r Registry) TargetCount() int {
	count := 0
	for _, entry := range r {
		if entry != nil {
			count += len(entry.Targets)
		}
	}
	return count
}

// Clone returns a deep copy safe to mutate independently.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for owner, entry := range r {
		if entry == nil {
			out[owner] = &OwnerEntry{Targets: []Target{}}
			continue
		}
		targets := make([]Target, len(entry.Targets))
		copy(targets, entry.Targets)
		out[owner] = &OwnerEntry{Targets: targets}
	}
	return out
}

func decodeTargetList(data json.RawMessage) ([]Target, error) {
	var list []Target
	if err := json.Unmarshal(data, &list); err == nil {
		if list == nil {
			list = []Target{}
		}
		return list, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read targets: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("targets must be a list or a mapping, got %v", tok)
	}

	targets := []Target{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read legacy target key: %w", err)
		}
		key, _ := keyTok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("failed to read legacy flag for %q: %w", key, err)
		}
		targets = append(targets, Target(key))
	}
	return targets, nil
}

func isJSONNull(data json.RawMessage) bool {
	return string(bytes.TrimSpace(data)) == "null"
}
