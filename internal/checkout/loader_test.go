package checkout

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("second load does not fetch again", func(t *testing.T) {
		f := &fakeFetcher{}
		l := NewScriptLoader(f)

		require.NoError(t, l.Load(ctx, DefaultScriptURL))
		require.NoError(t, l.Load(ctx, DefaultScriptURL))
		assert.Equal(t, 1, f.count())
		assert.True(t, l.Loaded(DefaultScriptURL))
	})

	t.Run("different urls fetch separately", func(t *testing.T) {
		f := &fakeFetcher{}
		l := NewScriptLoader(f)

		require.NoError(t, l.Load(ctx, "https://a.example/x.js"))
		require.NoError(t, l.Load(ctx, "https://b.example/x.js"))
		assert.Equal(t, 2, f.count())
	})

	t.Run("failure is retried on next call", func(t *testing.T) {
		f := &fakeFetcher{err: errNetwork}
		l := NewScriptLoader(f)

		require.ErrorIs(t, l.Load(ctx, DefaultScriptURL), errNetwork)
		assert.False(t, l.Loaded(DefaultScriptURL))

		f.mu.Lock()
		f.err = nil
		f.mu.Unlock()
		require.NoError(t, l.Load(ctx, DefaultScriptURL))
		assert.Equal(t, 2, f.count())
	})

	t.Run("concurrent loads share one fetch", func(t *testing.T) {
		f := &fakeFetcher{gate: make(chan struct{})}
		l := NewScriptLoader(f)

		const callers = 8
		var (
			wg      sync.WaitGroup
			started sync.WaitGroup
		)
		errs := make([]error, callers)
		started.Add(callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				started.Done()
				errs[i] = l.Load(ctx, DefaultScriptURL)
			}(i)
		}
		started.Wait()
		close(f.gate)
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, 1, f.count())
		assert.True(t, l.Loaded(DefaultScriptURL))
		require.NoError(t, l.Load(ctx, DefaultScriptURL))
	})

	t.Run("cancelled caller does not fail the others", func(t *testing.T) {
		f := &ctxFetcher{gate: make(chan struct{}), entered: make(chan struct{})}
		l := NewScriptLoader(f)

		first, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() { firstErr <- l.Load(first, DefaultScriptURL) }()
		<-f.entered

		secondErr := make(chan error, 1)
		go func() { secondErr <- l.Load(ctx, DefaultScriptURL) }()

		cancel()
		require.ErrorIs(t, <-firstErr, context.Canceled)

		close(f.gate)
		require.NoError(t, <-secondErr)
		assert.True(t, l.Loaded(DefaultScriptURL))
	})
}

// ctxFetcher blocks until gate closes and fails if its ctx is cancelled
// first.
type ctxFetcher struct {
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (f *ctxFetcher) Fetch(ctx context.Context, _ string) error {
	f.once.Do(func() { close(f.entered) })
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestHTTPFetcher(t *testing.T) {
	respond := func(status int) *http.Client {
		return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader("/* script */")),
				Header:     make(http.Header),
				Request:    r,
			}, nil
		})}
	}

	assert.NoError(t, HTTPFetcher{Client: respond(http.StatusOK)}.Fetch(context.Background(), DefaultScriptURL))
	assert.Error(t, HTTPFetcher{Client: respond(http.StatusNotFound)}.Fetch(context.Background(), DefaultScriptURL))
}
