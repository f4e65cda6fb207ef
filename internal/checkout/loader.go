package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

const DefaultScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// Fetcher retrieves a script. Only success matters; the body is discarded.
type Fetcher interface {
	Fetch(ctx context.Context, url string) error
}

// ScriptLoader fetches each URL at most once per process. Concurrent
// callers for the same URL share one fetch; a failed fetch is not
// remembered, so the next call tries again.
type ScriptLoader struct {
	fetcher Fetcher
	group   singleflight.Group

	mu     sync.RWMutex
	loaded map[string]struct{}
}

func NewScriptLoader(f Fetcher) *ScriptLoader {
	return &ScriptLoader{fetcher: f, loaded: make(map[string]struct{})}
}

// Load returns once url is loaded or ctx is done. The shared fetch runs
// detached from any one caller, so a cancelled caller does not fail the
// others waiting on it.
func (l *ScriptLoader) Load(ctx context.Context, url string) error {
	if l.Loaded(url) {
		return nil
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(url, func() (any, error) {
		if l.Loaded(url) {
			return nil, nil
		}
		if err := l.fetcher.Fetch(fetchCtx, url); err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.loaded[url] = struct{}{}
		l.mu.Unlock()
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *ScriptLoader) Loaded(url string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.loaded[url]
	return ok
}

// HTTPFetcher checks that a script URL is reachable.
type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, url string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return nil
}
