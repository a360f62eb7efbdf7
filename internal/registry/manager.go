package registry

import (
	"context"
	"fmt"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// StateClearer forgets notification state of a removed target.
type StateClearer interface {
	Clear(owner models.Owner, target models.Target)
}

// Manager implements the owner-facing registry operations on top of a Store.
type Manager struct {
	store  Store
	state  StateClearer
	logger zerolog.Logger
}

// NewManager creates a Manager. state may be nil when no in-process state exists
// (e.g. a CLI invocation); the daemon then prunes removed targets on its next cycle.
func NewManager(store Store, state StateClearer, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		state:  state,
		logger: logger.With().Str("component", "RegistryManager").Logger(),
	}
}

// EnsureOwner registers owner with an empty target list if it is unknown.
func (m *Manager) EnsureOwner(ctx context.Context, owner models.Owner) error {
	return m.store.Update(ctx, func(reg models.Registry) error {
		reg.EnsureOwner(owner)
		return nil
	})
}

// AddTarget appends target to the owner's list. Duplicates are detected case-insensitively.
func (m *Manager) AddTarget(ctx context.Context, owner models.Owner, raw string) (models.Target, error) {
	target := models.NormalizeTarget(raw)
	if target == "" {
		return "", models.ErrEmptyTarget
	}

	err := m.store.Update(ctx, func(reg models.Registry) error {
		entry := reg.EnsureOwner(owner)
		if entry.Contains(target) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateTarget, target)
		}
		entry.Targets = append(entry.Targets, target)
		return nil
	})
	if err != nil {
		return "", err
	}

	m.logger.Info().Str("owner", owner.String()).Str("target", target.String()).Msg("Target registered")
	return target, nil
}

// RemoveTarget deletes every case variant of target from the owner's list and
// forgets its notification state.
func (m *Manager) RemoveTarget(ctx context.Context, owner models.Owner, raw string) error {
	target := models.NormalizeTarget(raw)
	if target == "" {
		return models.ErrEmptyTarget
	}

	err := m.store.Update(ctx, func(reg models.Registry) error {
		entry, ok := reg[owner]
		if !ok || entry == nil || len(entry.Targets) == 0 {
			return models.ErrNoTargets
		}
		kept := entry.Targets[:0]
		for _, t := range entry.Targets {
			if !t.Matches(target) {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(entry.Targets) {
			return fmt.Errorf("%w: %s", models.ErrTargetNotFound, target)
		}
		entry.Targets = kept
		return nil
	})
	if err != nil {
		return err
	}

	if m.state != nil {
		m.state.Clear(owner, target)
	}
	m.logger.Info().Str("owner", owner.String()).Str("target", target.String()).Msg("Target removed")
	return nil
}

// ListTargets returns the owner's targets in registration order. Unknown owners get an empty list.
func (m *Manager) ListTargets(ctx context.Context, owner models.Owner) ([]models.Target, error) {
	reg, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := reg[owner]
	if !ok || entry == nil {
		return []models.Target{}, nil
	}
	return entry.Targets, nil
}
