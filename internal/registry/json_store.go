package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

const lockRetryDelay = 50 * time.Millisecond

// JSONFileStore keeps the registry in a JSON document on disk:
//
//	{"<owner>": {"targets": ["https://...", "/var/www/index.html"]}}
//
// A sidecar lock file guards the document across processes, so the daemon and
// a concurrently running CLI never interleave reads and writes.
type JSONFileStore struct {
	path   string
	lock   *flock.Flock
	logger zerolog.Logger
	mutex  sync.Mutex
}

// NewJSONFileStore creates a store at path, creating its parent directory.
func NewJSONFileStore(path string, logger zerolog.Logger) (*JSONFileStore, error) {
	if path == "" {
		return nil, models.NewValidationError("json_path", path, "registry path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory %s: %w", dir, err)
		}
	}

	return &JSONFileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.With().Str("component", "JSONRegistryStore").Str("path", path).Logger(),
	}, nil
}

// Path returns the registry file location.
func (s *JSONFileStore) Path() string {
	return s.path
}

// Load reads the registry. A missing or empty file is an empty registry.
func (s *JSONFileStore) Load(ctx context.Context) (models.Registry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.readUnsafe()
}

// Save replaces the registry document.
func (s *JSONFileStore) Save(ctx context.Context, reg models.Registry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	return s.writeUnsafe(reg)
}

// Update applies fn to the current registry and writes the result back.
func (s *JSONFileStore) Update(ctx context.Context, fn func(reg models.Registry) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	reg, err := s.readUnsafe()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return s.writeUnsafe(reg)
}

func (s *JSONFileStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock registry %s: %w", s.path, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock registry %s", s.path)
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to release registry lock")
		}
	}, nil
}

func (s *JSONFileStore) readUnsafe() (models.Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Registry{}, nil
		}
		return nil, fmt.Errorf("failed to read registry %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return models.Registry{}, nil
	}

	reg := models.Registry{}
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", s.path, err)
	}
	for owner := range reg {
		reg.EnsureOwner(owner)
	}

	s.logger.Debug().Int("owners", len(reg)).Int("targets", reg.TargetCount()).Msg("Registry loaded")
	return reg, nil
}

// writeUnsafe writes through a temp file and rename so readers never see a partial document.
func (s *JSONFileStore) writeUnsafe(reg models.Registry) error {
	if reg == nil {
		reg = models.Registry{}
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for registry: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close registry temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace registry %s: %w", s.path, err)
	}

	s.logger.Debug().Int("owners", len(reg)).Msg("Registry saved")
	return nil
}
