package filehandler

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-video-analyzer/internal/s3util"
)

// tempFile removes its backing file when closed.
type tempFile struct {
	*os.File
	cleanup func()
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	t.cleanup()
	return err
}

// NewSourceOpener returns an opener for video sources. Paths starting with
// s3:// are downloaded through client into a temporary file that is removed
// on Close; anything else is opened from the local filesystem. client may be
// nil when S3 sources are not supported.
func NewSourceOpener(client s3util.GetObjectAPI) func(ctx context.Context, path string) (io.ReadCloser, error) {
	return func(ctx context.Context, path string) (io.ReadCloser, error) {
		if s3util.IsS3URI(path) {
			return openS3(ctx, client, path)
		}
		return OpenLocal(path)
	}
}

// OpenLocal opens a regular file for reading.
func OpenLocal(path string) (io.ReadCloser, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a video file", path)
	}
	log.Debug().Str("path", path).Int64("size_bytes", info.Size()).Msg("Opening local video")
	return os.Open(path)
}

func openS3(ctx context.Context, client s3util.GetObjectAPI, uri string) (io.ReadCloser, error) {
	if client == nil {
		return nil, fmt.Errorf("S3 sources are not configured: %s", uri)
	}
	bucket, key, ok := s3util.ParseS3URI(uri)
	if !ok {
		return nil, fmt.Errorf("malformed S3 URI %q: want s3://bucket/key", uri)
	}

	path, cleanup, err := s3util.DownloadToTempFile(ctx, client, bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("open downloaded video: %w", err)
	}
	return &tempFile{File: f, cleanup: cleanup}, nil
}
