package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0.0s"},
		{4200 * time.Millisecond, "4.2s"},
		{time.Minute, "1:00"},
		{90*time.Second + 400*time.Millisecond, "1:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDurationShort(tt.in), tt.in.String())
	}
}

func TestPromptForVideoPath(t *testing.T) {
	var out bytes.Buffer
	got, err := PromptForVideoPath(strings.NewReader("  '/tmp/my clip.mp4'  \n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/my clip.mp4", got)
	assert.Equal(t, "Video file path: ", out.String())

	got, err = PromptForVideoPath(strings.NewReader("/tmp/no-newline.mov"), &out)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/no-newline.mov", got)

	_, err = PromptForVideoPath(strings.NewReader("\n"), &out)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestResolveVideoPath(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(video, []byte("data"), 0o600))

	got, err := ResolveVideoPath(video)
	require.NoError(t, err)
	assert.Equal(t, video, got)

	_, err = ResolveVideoPath(filepath.Join(dir, "missing.mp4"))
	assert.ErrorContains(t, err, "not found")

	_, err = ResolveVideoPath(dir)
	assert.ErrorContains(t, err, "directory")

	got, err = ResolveVideoPath("s3://bucket/videos/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/videos/clip.mp4", got)

	_, err = ResolveVideoPath("s3://bucket-only")
	assert.Error(t, err)
}

func TestVideoPatterns(t *testing.T) {
	assert.Equal(t, []string{"*.avi", "*.m4v", "*.mkv", "*.mov", "*.mp4", "*.webm"}, videoPatterns())
}
