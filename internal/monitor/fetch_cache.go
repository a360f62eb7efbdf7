package monitor

import (
	"context"
	"sync"

	"github.com/aleister1102/certwatch/internal/fetcher"
	"github.com/aleister1102/certwatch/internal/models"

	"golang.org/x/sync/singleflight"
)

type fetchResult struct {
	content string
	err     error
}

// cycleFetcher fetches each distinct target once per cycle. Owners share a fetch
// only when their targets name the same resource (see Target.FetchKey).
type cycleFetcher struct {
	fetcher fetcher.ContentFetcher
	group   singleflight.Group
	results map[string]fetchResult
	mutex   sync.Mutex
}

func newCycleFetcher(f fetcher.ContentFetcher) *cycleFetcher {
	return &cycleFetcher{
		fetcher: f,
		results: make(map[string]fetchResult),
	}
}

// Fetch returns the cached result for target or fetches it. shared is true when
// the result came from another owner's fetch.
func (c *cycleFetcher) Fetch(ctx context.Context, target models.Target) (content string, shared bool, err error) {
	key := target.FetchKey()

	c.mutex.Lock()
	res, ok := c.results[key]
	c.mutex.Unlock()
	if ok {
		return res.content, true, rebindFetchError(res.err, target)
	}

	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		c.mutex.Lock()
		if r, ok := c.results[key]; ok {
			c.mutex.Unlock()
			return r, nil
		}
		c.mutex.Unlock()

		content, err := c.fetcher.Fetch(ctx, target)
		r := fetchResult{content: content, err: err}
		c.mutex.Lock()
		c.results[key] = r
		c.mutex.Unlock()
		return r, nil
	})
	res = v.(fetchResult)
	return res.content, shared, rebindFetchError(res.err, target)
}

// rebindFetchError reports a shared failure under the caller's own spelling of the target.
func rebindFetchError(err error, target models.Target) error {
	fe, ok := models.AsFetchError(err)
	if !ok || fe.Target == target {
		return err
	}
	copied := *fe
	copied.Target = target
	return &copied
}
