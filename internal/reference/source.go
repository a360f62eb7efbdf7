// Package reference loads the "certificate" document that targets are compared against.
package reference

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// Source provides the reference document for one scan cycle.
// A nil document with a nil error means none is configured.
type Source interface {
	Load(ctx context.Context) (*string, error)
}

// FileSource reads the reference document from disk on every call, so edits
// take effect on the next cycle without a restart.
type FileSource struct {
	path   string
	logger zerolog.Logger
}

// NewFileSource creates a FileSource. An empty path disables the certificate check.
func NewFileSource(path string, logger zerolog.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: logger.With().Str("component", "ReferenceSource").Logger(),
	}
}

// Load returns the file content. An empty file yields a non-nil empty string.
func (s *FileSource) Load(ctx context.Context) (*string, error) {
	if s.path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrReferenceUnavailable, s.path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", models.ErrReferenceUnavailable, s.path)
	}

	content := string(data)
	s.logger.Debug().Str("path", s.path).Int("size", len(content)).Msg("Reference document loaded")
	return &content, nil
}

// StaticSource serves a fixed document.
type StaticSource struct {
	Content *string
}

// Load returns the fixed document.
func (s StaticSource) Load(context.Context) (*string, error) {
	return s.Content, nil
}
