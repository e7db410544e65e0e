package chat

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadedFiles(statuses ...*FileStatus) *fakeFiles {
	return &fakeFiles{
		handle:   &UploadHandle{Name: "files/upload-1", MIMEType: "video/mp4"},
		statuses: statuses,
	}
}

func TestAnalyzeLocalVideo_Success(t *testing.T) {
	clock := newFakeClock()
	files := uploadedFiles(&FileStatus{State: StatePending}, activeStatus("files/upload-1"))
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("local summary")}}
	c := newTestClient(files, gen, clock, WithDefaultPrompt("default prompt"))

	text, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "/videos/trip.MOV", Model: "model-x"})
	require.NoError(t, err)
	assert.Equal(t, "local summary", text)

	assert.Equal(t, "video-bytes", files.uploadedBytes)
	assert.Equal(t, "video/quicktime", files.uploadedMIME)
	assert.Equal(t, 2, files.statusCalls)
	assert.Equal(t, []string{"files/upload-1"}, files.deleted)

	require.Len(t, gen.calls, 1)
	call := gen.calls[0]
	assert.Equal(t, "model-x", call.model)
	assert.Equal(t, "https://files.example/files/upload-1", call.parts[0].FileData.FileURI)
	assert.Equal(t, "video/mp4", call.parts[0].FileData.MIMEType)
	assert.Equal(t, "default prompt", call.parts[1].Text)
}

func TestAnalyzeLocalVideo_MIMEOverrideAndDefault(t *testing.T) {
	files := uploadedFiles(activeStatus("files/upload-1"))
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("ok")}}
	c := newTestClient(files, gen, newFakeClock())

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "/videos/clip.bin", MIMEType: "video/mp4"})
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", files.uploadedMIME)

	_, err = c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "/videos/clip.bin"})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", files.uploadedMIME)
}

func TestAnalyzeLocalVideo_ProcessingFailedStillDeletes(t *testing.T) {
	files := uploadedFiles(&FileStatus{State: StatePending}, &FileStatus{State: StateFailed, ErrorMessage: "x"})
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("never")}}
	c := newTestClient(files, gen, newFakeClock())

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "clip.mp4"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessingFailed)
	assert.Contains(t, err.Error(), "x")
	assert.Equal(t, []string{"files/upload-1"}, files.deleted)
	assert.Empty(t, gen.calls)
}

func TestAnalyzeLocalVideo_GenerationFailureStillDeletes(t *testing.T) {
	boom := errors.New("model overloaded")
	files := uploadedFiles(activeStatus("files/upload-1"))
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){fail(boom)}}
	c := newTestClient(files, gen, newFakeClock())

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "clip.mp4"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"files/upload-1"}, files.deleted)
	// The local path never retries.
	assert.Len(t, gen.calls, 1)
}

func TestAnalyzeLocalVideo_DeleteFailureIsSuppressed(t *testing.T) {
	files := uploadedFiles(activeStatus("files/upload-1"))
	files.deleteErr = errors.New("delete failed")
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("still fine")}}
	c := newTestClient(files, gen, newFakeClock())

	text, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "clip.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "still fine", text)
	assert.Len(t, files.deleted, 1)
}

func TestAnalyzeLocalVideo_TimeoutStillDeletes(t *testing.T) {
	files := uploadedFiles()
	c := newTestClient(files, &fakeGenerator{}, newFakeClock(),
		WithActivationTimeout(2*time.Second),
		WithPollInterval(time.Second),
	)

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "clip.mp4"})
	assert.ErrorIs(t, err, ErrActivationTimeout)
	assert.Equal(t, []string{"files/upload-1"}, files.deleted)
}

func TestAnalyzeLocalVideo_PrefersActivatedName(t *testing.T) {
	files := uploadedFiles(activeStatus("files/activated"))
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("ok")}}
	c := newTestClient(files, gen, newFakeClock())

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "clip.mp4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"files/activated"}, files.deleted)
}

func TestAnalyzeLocalVideo_MissingUploadNameSkipsCleanup(t *testing.T) {
	files := &fakeFiles{handle: &UploadHandle{MIMEType: "video/mp4"}}
	c := newTestClient(files, &fakeGenerator{}, newFakeClock())

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "clip.mp4"})
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Contains(t, err.Error(), "missing file name")
	assert.Empty(t, files.deleted)
	assert.Zero(t, files.statusCalls)
}

func TestAnalyzeLocalVideo_UploadError(t *testing.T) {
	boom := errors.New("413 payload too large")
	files := &fakeFiles{uploadErr: boom}
	c := newTestClient(files, &fakeGenerator{}, newFakeClock())

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "clip.mp4"})
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, files.deleted)
}

func TestAnalyzeLocalVideo_CanceledWhilePollingStillDeletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	files := uploadedFiles()
	files.onStatus = func(int) { cancel() }
	c := newTestClient(files, &fakeGenerator{}, newFakeClock())

	_, err := c.AnalyzeLocalVideo(ctx, LocalRequest{FilePath: "clip.mp4"})
	assert.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"files/upload-1"}, files.deleted)
	assert.NoError(t, files.deleteCtxErrs[0], "cleanup must not inherit the request cancellation")
}

func TestAnalyzeLocalVideo_InvalidPath(t *testing.T) {
	files := uploadedFiles()
	c := newTestClient(files, &fakeGenerator{}, newFakeClock())

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := func(context.Context, string) (io.ReadCloser, error) { return nil, os.ErrNotExist }
	c = newTestClient(files, &fakeGenerator{}, newFakeClock(), WithOpener(missing))
	_, err = c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: "gone.mp4"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, files.uploadedMIME)
}

func TestAnalyzeLocalVideo_DefaultOpenerReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.webm")
	require.NoError(t, os.WriteFile(path, []byte("webm-bytes"), 0o600))

	clock := newFakeClock()
	files := uploadedFiles(activeStatus("files/upload-1"))
	gen := &fakeGenerator{steps: []func(context.Context) (any, error){respond("ok")}}
	c := NewVideoClient(files, gen, WithSleeper(clock.Sleep), WithClock(clock.Now))

	_, err := c.AnalyzeLocalVideo(context.Background(), LocalRequest{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, "webm-bytes", files.uploadedBytes)
	assert.Equal(t, "video/webm", files.uploadedMIME)
}
