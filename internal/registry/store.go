// Package registry persists which targets every owner monitors and exposes the
// add/remove/list operations used by the command line front end.
package registry

import (
	"context"

	"github.com/aleister1102/certwatch/internal/models"
)

// Store persists the owner -> targets registry. Implementations serialize
// Load, Save and Update against each other.
type Store interface {
	// Load returns a snapshot the caller may mutate freely.
	Load(ctx context.Context) (models.Registry, error)
	// Save replaces the whole registry.
	Save(ctx context.Context, reg models.Registry) error
	// Update loads, applies fn and saves atomically. Nothing is written when fn fails.
	Update(ctx context.Context, fn func(reg models.Registry) error) error
}
