// Package chat analyzes videos with the Gemini API.
//
// VideoClient is the entry point. Remote videos are referenced by URL and go
// through a retry and model-fallback loop; local videos are uploaded through
// the Files API, polled until active, analyzed once, and always deleted.
package chat

import (
	"context"
	"io"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/fpang/gemini-video-analyzer/internal/assets"
)

// Defaults applied by NewVideoClient.
const (
	DefaultActivationTimeout = 60 * time.Second
	DefaultPollInterval      = time.Second
)

// ActivationState is the processing lifecycle of an uploaded file.
type ActivationState int

const (
	StatePending ActivationState = iota
	StateActive
	StateFailed
)

func (s ActivationState) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateFailed:
		return "FAILED"
	default:
		return "PENDING"
	}
}

// UploadHandle identifies an uploaded file. URI is empty until activation.
type UploadHandle struct {
	Name     string
	MIMEType string
	URI      string
}

// FileStatus is one status report for an uploaded file.
type FileStatus struct {
	Name     string
	State    ActivationState
	URI      string
	MIMEType string
	// ErrorMessage is the upstream reason for a failed upload, if any.
	ErrorMessage string
}

// FileStore is the upload service.
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, mimeType string) (*UploadHandle, error)
	Status(ctx context.Context, name string) (*FileStatus, error)
	Delete(ctx context.Context, name string) error
}

// Generator is the generation service. The result shape is not fixed; it is
// normalized by ExtractText.
type Generator interface {
	Generate(ctx context.Context, model string, parts []*genai.Part) (any, error)
}

// Sleeper waits for d or until ctx is done, returning ctx.Err() in the latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Opener opens the bytes of a local video source.
type Opener func(ctx context.Context, path string) (io.ReadCloser, error)

// RetryPolicy controls the remote analysis retry loop.
type RetryPolicy struct {
	// MaxAttemptsPerModel is the number of calls made against each model. Values below 1 mean 1.
	MaxAttemptsPerModel int
	// InitialDelay is the wait before the second attempt on a model.
	InitialDelay time.Duration
	// BackoffMultiplier scales the delay after each retry.
	BackoffMultiplier float64
	// FallbackModels are tried in order after the primary model.
	FallbackModels []string
	// MaxElapsed caps the whole remote analysis. Zero means no ceiling.
	MaxElapsed time.Duration
}

// DefaultRetryPolicy returns two attempts per model starting at 1.5s with
// doubling backoff, falling back to gemini-2.0-flash-exp.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttemptsPerModel: 2,
		InitialDelay:        1500 * time.Millisecond,
		BackoffMultiplier:   2,
		FallbackModels:      []string{ModelGemini20FlashExp},
	}
}

// VideoClient analyzes local and remote videos. It holds only immutable
// configuration and is safe for concurrent use.
type VideoClient struct {
	files FileStore
	gen   Generator

	defaultModel      string
	defaultPrompt     string
	retry             RetryPolicy
	activationTimeout time.Duration
	pollInterval      time.Duration

	sleep Sleeper
	now   func() time.Time
	open  Opener
}

// Option configures a VideoClient.
type Option func(*VideoClient)

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) Option {
	return func(c *VideoClient) {
		c.defaultModel = pickOverride(model, c.defaultModel)
	}
}

// WithDefaultPrompt sets the prompt used when a request does not carry one.
func WithDefaultPrompt(prompt string) Option {
	return func(c *VideoClient) {
		c.defaultPrompt = pickOverride(prompt, c.defaultPrompt)
	}
}

// WithRetryPolicy replaces the remote retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *VideoClient) {
		p.FallbackModels = append([]string(nil), p.FallbackModels...)
		c.retry = p
	}
}

// WithActivationTimeout sets how long an upload may take to become active.
func WithActivationTimeout(d time.Duration) Option {
	return func(c *VideoClient) { c.activationTimeout = d }
}

// WithPollInterval sets the wait between activation status checks.
// Non-positive values fall back to DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *VideoClient) {
		if d <= 0 {
			d = DefaultPollInterval
		}
		c.pollInterval = d
	}
}

// WithSleeper replaces the wait primitive used for backoff and polling.
func WithSleeper(s Sleeper) Option {
	return func(c *VideoClient) { c.sleep = s }
}

// WithClock replaces the time source used for activation deadlines.
func WithClock(now func() time.Time) Option {
	return func(c *VideoClient) { c.now = now }
}

// WithOpener replaces how local video paths are opened for upload.
func WithOpener(o Opener) Option {
	return func(c *VideoClient) { c.open = o }
}

// NewVideoClient creates a VideoClient over the given upload and generation services.
func NewVideoClient(files FileStore, gen Generator, opts ...Option) *VideoClient {
	c := &VideoClient{
		files:             files,
		gen:               gen,
		defaultModel:      DefaultModelName,
		defaultPrompt:     assets.DefaultSummaryPrompt(),
		retry:             DefaultRetryPolicy(),
		activationTimeout: DefaultActivationTimeout,
		pollInterval:      DefaultPollInterval,
		sleep:             SleepContext,
		now:               time.Now,
		open:              openFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultModel returns the model used when a request does not name one.
func (c *VideoClient) DefaultModel() string {
	return c.defaultModel
}

// SleepContext waits for d or until ctx is done. Non-positive durations
// return immediately.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func openFile(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}
