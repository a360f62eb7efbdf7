// Package fetcher turns a registered target into text, either over HTTP or from the local filesystem.
package fetcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/aleister1102/certwatch/internal/httpclient"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// ContentFetcher is what the scan cycle needs from a fetcher.
type ContentFetcher interface {
	Fetch(ctx context.Context, target models.Target) (string, error)
}

// textGetter is satisfied by *httpclient.HTTPClient.
type textGetter interface {
	GetText(ctx context.Context, url string) (string, error)
}

// Fetcher handles fetching target content. Remote targets go through the
// shared HTTP client, whose timeout bounds every request.
type Fetcher struct {
	http   textGetter
	logger zerolog.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(client *httpclient.HTTPClient, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		http:   client,
		logger: logger.With().Str("component", "Fetcher").Logger(),
	}
}

// Fetch returns the target's content. Every failure is a *models.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, target models.Target) (string, error) {
	if target.IsRemote() {
		return f.fetchRemote(ctx, target)
	}
	return f.readLocal(ctx, target)
}

func (f *Fetcher) fetchRemote(ctx context.Context, target models.Target) (string, error) {
	text, err := f.http.GetText(ctx, target.String())
	if err != nil {
		f.logger.Debug().Err(err).Str("target", target.String()).Msg("Remote fetch failed")
		return "", models.NewFetchError(models.FetchErrorNetworkFailure, target, "", err)
	}
	return text, nil
}

func (f *Fetcher) readLocal(ctx context.Context, target models.Target) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", models.NewFetchError(models.FetchErrorReadFailure, target, "", err)
	}

	path := target.String()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", models.NewFetchError(models.FetchErrorNotFound, target, "", err)
		}
		f.logger.Debug().Err(err).Str("path", path).Msg("Local read failed")
		return "", models.NewFetchError(models.FetchErrorReadFailure, target, "", err)
	}

	if !utf8.Valid(data) {
		return "", models.NewFetchError(models.FetchErrorReadFailure, target, "file is not valid UTF-8 text", nil)
	}

	return string(data), nil
}
