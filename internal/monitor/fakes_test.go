package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/aleister1102/certwatch/internal/models"
)

type fakeRegistry struct {
	mutex sync.Mutex
	reg   models.Registry
	err   error
}

func newFakeRegistry(pairs ...models.Pair) *fakeRegistry {
	r := &fakeRegistry{reg: models.Registry{}}
	for _, p := range pairs {
		r.add(p.Owner, p.Target)
	}
	return r
}

func (r *fakeRegistry) Load(context.Context) (models.Registry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.reg.Clone(), nil
}

func (r *fakeRegistry) add(owner models.Owner, target models.Target) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	entry := r.reg.EnsureOwner(owner)
	entry.Targets = append(entry.Targets, target)
}

func (r *fakeRegistry) remove(owner models.Owner, target models.Target) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	entry := r.reg[owner]
	if idx := entry.IndexOf(target); idx >= 0 {
		entry.Targets = append(entry.Targets[:idx], entry.Targets[idx+1:]...)
	}
}

// fakeFetcher serves content keyed by the lower-cased target.
type fakeFetcher struct {
	mutex    sync.Mutex
	contents map[string]string
	errs     map[string]error
	calls    map[string]int

	started chan struct{}
	release chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		contents: make(map[string]string),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (f *fakeFetcher) set(target models.Target, content string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.errs, target.Key())
	f.contents[target.Key()] = content
}

func (f *fakeFetcher) fail(target models.Target, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.errs[target.Key()] = err
}

func (f *fakeFetcher) callCount(target models.Target) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls[target.Key()]
}

func (f *fakeFetcher) Fetch(ctx context.Context, target models.Target) (string, error) {
	f.mutex.Lock()
	f.calls[target.Key()]++
	started, release := f.started, f.release
	f.mutex.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", models.NewFetchError(models.FetchErrorNetworkFailure, target, "", ctx.Err())
		}
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err, ok := f.errs[target.Key()]; ok {
		return "", err
	}
	content, ok := f.contents[target.Key()]
	if !ok {
		return "", models.NewFetchError(models.FetchErrorNotFound, target, "", errors.New("no such fixture"))
	}
	return content, nil
}

type sentMessage struct {
	owner   models.Owner
	message string
}

type recordingSender struct {
	mutex    sync.Mutex
	messages []sentMessage
	err      error
}

func (s *recordingSender) Name() string { return "recording" }

func (s *recordingSender) Send(_ context.Context, owner models.Owner, message string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.messages = append(s.messages, sentMessage{owner: owner, message: message})
	return s.err
}

func (s *recordingSender) sent() []sentMessage {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]sentMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *recordingSender) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.messages = nil
}

type errorSource struct{}

func (errorSource) Load(context.Context) (*string, error) {
	return nil, models.ErrReferenceUnavailable
}
