package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/jcmexdev/course-marketplace/internal/apiclient"
)

type fakeAPI struct {
	mu sync.Mutex

	capture    *apiclient.CaptureResponse
	captureErr error
	verify     *apiclient.Envelope
	verifyErr  error
	receipt    *apiclient.Envelope
	receiptErr error

	captureCalls int
	verifyReqs   []apiclient.VerifyRequest
	receiptReqs  []apiclient.ReceiptRequest
	verifyCtxErr error
}

func (f *fakeAPI) CapturePayment(_ context.Context, _ string, _ []string) (*apiclient.CaptureResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captureCalls++
	return f.capture, f.captureErr
}

func (f *fakeAPI) VerifyPayment(ctx context.Context, _ string, req apiclient.VerifyRequest) (*apiclient.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyReqs = append(f.verifyReqs, req)
	f.verifyCtxErr = ctx.Err()
	return f.verify, f.verifyErr
}

func (f *fakeAPI) SendPaymentSuccessEmail(_ context.Context, _ string, req apiclient.ReceiptRequest) (*apiclient.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptReqs = append(f.receiptReqs, req)
	return f.receipt, f.receiptErr
}

func (f *fakeAPI) calls() (capture, verify, receipt int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captureCalls, len(f.verifyReqs), len(f.receiptReqs)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{}
}

func (f *fakeFetcher) Fetch(context.Context, string) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeWidget struct {
	outcome Outcome
	err     error
	opened  []WidgetOptions
	// onOpen runs before the outcome is returned.
	onOpen func()
}

func (w *fakeWidget) Open(_ context.Context, opts WidgetOptions) (Outcome, error) {
	w.opened = append(w.opened, opts)
	if w.onOpen != nil {
		w.onOpen()
	}
	return w.outcome, w.err
}

// recorder implements Notifier, Cart, Navigator and LoadingFlag.
type recorder struct {
	mu        sync.Mutex
	progress  []string
	infos     []string
	successes []string
	errs      []string
	resets    int
	paths     []string
	loading   []bool
}

func (r *recorder) record(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

func (r *recorder) Progress(msg string) { r.record(func() { r.progress = append(r.progress, msg) }) }

func (r *recorder) Info(msg string) { r.record(func() { r.infos = append(r.infos, msg) }) }

func (r *recorder) Success(msg string) { r.record(func() { r.successes = append(r.successes, msg) }) }

func (r *recorder) Error(msg string) { r.record(func() { r.errs = append(r.errs, msg) }) }

func (r *recorder) Reset() { r.record(func() { r.resets++ }) }

func (r *recorder) Navigate(p string) { r.record(func() { r.paths = append(r.paths, p) }) }

func (r *recorder) SetLoading(b bool) { r.record(func() { r.loading = append(r.loading, b) }) }

func (r *recorder) lastLoading() (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.loading) == 0 {
		return false, false
	}
	return r.loading[len(r.loading)-1], true
}

var errNetwork = errors.New("dial tcp 10.1.2.3:443: connection refused")
