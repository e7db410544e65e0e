package chat

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/fpang/gemini-video-analyzer/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeClock is a manual clock whose Sleep advances time instead of blocking.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// fakeFiles is an in-memory upload service. Status replays statuses in order
// and repeats the last one once the list is used up.
type fakeFiles struct {
	mu sync.Mutex

	handle    *UploadHandle
	uploadErr error
	statuses  []*FileStatus
	statusErr error
	deleteErr error

	onStatus func(call int)

	uploadedMIME  string
	uploadedBytes string
	statusCalls   int
	deleted       []string
	deleteCtxErrs []error
}

func (f *fakeFiles) Upload(_ context.Context, r io.Reader, mimeType string) (*UploadHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := io.ReadAll(r)
	f.uploadedBytes = string(data)
	f.uploadedMIME = mimeType
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.handle, nil
}

func (f *fakeFiles) Status(_ context.Context, _ string) (*FileStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	hook := f.onStatus
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if len(f.statuses) == 0 {
		return &FileStatus{State: StatePending}, nil
	}
	idx := min(call-1, len(f.statuses)-1)
	return f.statuses[idx], nil
}

func (f *fakeFiles) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, name)
	f.deleteCtxErrs = append(f.deleteCtxErrs, ctx.Err())
	return f.deleteErr
}

type genCall struct {
	model string
	parts []*genai.Part
}

// fakeGenerator answers each call from steps in order; the last step repeats.
type fakeGenerator struct {
	mu    sync.Mutex
	steps []func(ctx context.Context) (any, error)
	calls []genCall
}

func (g *fakeGenerator) Generate(ctx context.Context, model string, parts []*genai.Part) (any, error) {
	g.mu.Lock()
	g.calls = append(g.calls, genCall{model: model, parts: parts})
	idx := min(len(g.calls)-1, len(g.steps)-1)
	step := g.steps[idx]
	g.mu.Unlock()
	return step(ctx)
}

func (g *fakeGenerator) Models() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	models := make([]string, len(g.calls))
	for i, c := range g.calls {
		models[i] = c.model
	}
	return models
}

func respond(text string) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		return map[string]any{"text": text}, nil
	}
}

func fail(err error) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		return nil, err
	}
}

func internalErr() error {
	return &StatusError{Status: Status{Number: 500, Text: "INTERNAL", Message: "Internal error encountered."}}
}

func stringOpener(content string) Opener {
	return func(context.Context, string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}
}

func newTestClient(files FileStore, gen Generator, clock *fakeClock, opts ...Option) *VideoClient {
	base := []Option{
		WithSleeper(clock.Sleep),
		WithClock(clock.Now),
		WithOpener(stringOpener("video-bytes")),
	}
	return NewVideoClient(files, gen, append(base, opts...)...)
}
