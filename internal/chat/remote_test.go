package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int, fallbacks ...string) RetryPolicy {
	return RetryPolicy{
		MaxAttemptsPerModel: attempts,
		InitialDelay:        1500 * time.Millisecond,
		BackoffMultiplier:   2,
		FallbackModels:      fallbacks,
	}
}

func TestAnalyzeRemoteVideo_RetriesSameModel(t *testing.T) {
	clock := newFakeClock()
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(internalErr()), respond("summary")}}
	c := newTestClient(&fakeFiles{}, gen, clock, WithDefaultModel("model-a"), WithRetryPolicy(fastPolicy(2, "model-b")))

	text, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://cdn.example.com/clip.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "summary", text)
	assert.Equal(t, []string{"model-a", "model-a"}, gen.Models())
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, clock.Sleeps())
}

func TestAnalyzeRemoteVideo_FallsBackToNextModel(t *testing.T) {
	clock := newFakeClock()
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){
		fail(internalErr()), fail(internalErr()), respond("from b"),
	}}
	c := newTestClient(&fakeFiles{}, gen, clock, WithDefaultModel("model-a"), WithRetryPolicy(fastPolicy(2, "model-b")))

	text, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://cdn.example.com/clip.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "from b", text)
	assert.Equal(t, []string{"model-a", "model-a", "model-b"}, gen.Models())
	// Only the retry within model-a sleeps; switching models does not.
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, clock.Sleeps())
}

func TestAnalyzeRemoteVideo_YouTubeInternalErrorShortCircuits(t *testing.T) {
	for _, rawURL := range []string{
		"https://www.youtube.com/watch?v=abc",
		"https://youtube.com/watch?v=abc",
		"https://m.youtube.com/watch?v=abc",
		"https://youtu.be/abc",
		"https://WWW.YOUTUBE.COM/watch?v=abc",
	} {
		t.Run(rawURL, func(t *testing.T) {
			clock := newFakeClock()
			gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(internalErr())}}
			c := newTestClient(&fakeFiles{}, gen, clock, WithRetryPolicy(fastPolicy(5, "model-b", "model-c")))

			_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: rawURL})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPlatformUnsupported)
			assert.Contains(t, err.Error(), "Vertex AI")
			assert.Len(t, gen.Models(), 1)
			assert.Empty(t, clock.Sleeps())
		})
	}
}

func TestAnalyzeRemoteVideo_YouTubeNonRetryableFallsThrough(t *testing.T) {
	denied := &StatusError{Status: Status{Text: "PERMISSION_DENIED", Code: 403, Message: "denied"}}
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(denied)}}
	c := newTestClient(&fakeFiles{}, gen, newFakeClock(), WithDefaultModel("model-a"), WithRetryPolicy(fastPolicy(3, "model-b")))

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://youtu.be/abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllModelsExhausted)
	assert.True(t, IsPermissionError(err))
	assert.Equal(t, []string{"model-a", "model-b"}, gen.Models())
}

func TestAnalyzeRemoteVideo_NonRetryableSkipsToNextModel(t *testing.T) {
	clock := newFakeClock()
	notFound := &StatusError{Status: Status{Number: 404, Text: "NOT_FOUND", Message: "model not found"}}
	last := &StatusError{Status: Status{Number: 400, Message: "bad request"}}
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(notFound), fail(last)}}
	c := newTestClient(&fakeFiles{}, gen, clock, WithDefaultModel("model-a"), WithRetryPolicy(fastPolicy(3, "model-b")))

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://cdn.example.com/clip.webm"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllModelsExhausted)
	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "troubleshooting")
	assert.Equal(t, []string{"model-a", "model-b"}, gen.Models())
	assert.Empty(t, clock.Sleeps())
}

func TestAnalyzeRemoteVideo_BackoffGrows(t *testing.T) {
	clock := newFakeClock()
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(internalErr())}}
	policy := RetryPolicy{MaxAttemptsPerModel: 3, InitialDelay: 100 * time.Millisecond, BackoffMultiplier: 2}
	c := newTestClient(&fakeFiles{}, gen, clock, WithDefaultModel("model-a"), WithRetryPolicy(policy))

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://cdn.example.com/clip.mp4"})
	assert.ErrorIs(t, err, ErrAllModelsExhausted)
	assert.Len(t, gen.Models(), 3)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, clock.Sleeps())
}

func TestAnalyzeRemoteVideo_NegativeDelayFloorsAtZero(t *testing.T) {
	clock := newFakeClock()
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(internalErr()), respond("ok")}}
	policy := RetryPolicy{MaxAttemptsPerModel: 2, InitialDelay: -time.Second, BackoffMultiplier: 2}
	c := newTestClient(&fakeFiles{}, gen, clock, WithRetryPolicy(policy))

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://cdn.example.com/clip.mp4"})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{0}, clock.Sleeps())
}

func TestAnalyzeRemoteVideo_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/clip.mp4", "://missing-scheme"} {
		t.Run(raw, func(t *testing.T) {
			gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("never")}}
			c := newTestClient(&fakeFiles{}, gen, newFakeClock())

			_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: raw})
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, gen.Models())
		})
	}
}

func TestAnalyzeRemoteVideo_RequestParts(t *testing.T) {
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("ok")}}
	c := newTestClient(&fakeFiles{}, gen, newFakeClock(), WithDefaultPrompt("default prompt"))

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{
		VideoURL: "https://cdn.example.com/videos/Clip.MOV?sig=1",
		Model:    "  custom-model ",
	})
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	call := gen.calls[0]
	assert.Equal(t, "custom-model", call.model)
	require.Len(t, call.parts, 2)
	assert.Equal(t, "video/quicktime", call.parts[0].FileData.MIMEType)
	assert.Equal(t, "https://cdn.example.com/videos/Clip.MOV?sig=1", call.parts[0].FileData.FileURI)
	assert.Equal(t, "default prompt", call.parts[1].Text)
}

func TestAnalyzeRemoteVideo_DefaultsForUnknownExtension(t *testing.T) {
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("ok")}}
	c := newTestClient(&fakeFiles{}, gen, newFakeClock())

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{
		VideoURL: "https://www.youtube.com/watch?v=abc",
		Prompt:   " describe the video ",
	})
	require.NoError(t, err)

	call := gen.calls[0]
	assert.Equal(t, DefaultModelName, call.model)
	assert.Equal(t, "application/octet-stream", call.parts[0].FileData.MIMEType)
	assert.Equal(t, "describe the video", call.parts[1].Text)
}

func TestAnalyzeRemoteVideo_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){
		func(context.Context) (any, error) {
			cancel()
			return nil, internalErr()
		},
	}}
	c := newTestClient(&fakeFiles{}, gen, newFakeClock(), WithRetryPolicy(fastPolicy(3, "model-b")))

	_, err := c.AnalyzeRemoteVideo(ctx, RemoteRequest{VideoURL: "https://cdn.example.com/clip.mp4"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAllModelsExhausted)
	assert.Len(t, gen.Models(), 1)
}

func TestAnalyzeRemoteVideo_MaxElapsedCeiling(t *testing.T) {
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){
		func(ctx context.Context) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}}
	policy := fastPolicy(3, "model-b")
	policy.MaxElapsed = 20 * time.Millisecond
	c := newTestClient(&fakeFiles{}, gen, newFakeClock(), WithRetryPolicy(policy))

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://cdn.example.com/clip.mp4"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllModelsExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "time ceiling")
	assert.Len(t, gen.Models(), 1)
}

func TestAnalyzeRemoteVideo_ZeroAttemptsMeansOne(t *testing.T) {
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(internalErr())}}
	c := newTestClient(&fakeFiles{}, gen, newFakeClock(), WithDefaultModel("model-a"), WithRetryPolicy(RetryPolicy{}))

	_, err := c.AnalyzeRemoteVideo(context.Background(), RemoteRequest{VideoURL: "https://cdn.example.com/clip.mp4"})
	assert.True(t, errors.Is(err, ErrAllModelsExhausted))
	assert.Equal(t, []string{"model-a"}, gen.Models())
}
