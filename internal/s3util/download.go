// Package s3util provides S3 helpers for reading video sources stored in buckets.
package s3util

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// URIScheme prefixes object references such as s3://bucket/path/clip.mp4.
const URIScheme = "s3://"

// GetObjectAPI is the subset of *s3.Client used for downloads.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// IsS3URI reports whether path is an s3:// object reference.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, URIScheme)
}

// ParseS3URI splits s3://bucket/key into its bucket and key. ok is false for
// anything else, including a missing bucket or key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	if !IsS3URI(uri) {
		return "", "", false
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(uri, URIScheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// DownloadToFile downloads an S3 object to a specific local path.
func DownloadToFile(ctx context.Context, client GetObjectAPI, bucket, key, localPath string) error {
	log.Debug().Str("bucket", bucket).Str("key", key).Str("localPath", localPath).Msg("Downloading from S3")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return fmt.Errorf("S3 GetObject: %w", err)
	}
	defer result.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, result.Body); err != nil {
		f.Close()
		return fmt.Errorf("download: %w", err)
	}
	return f.Close()
}

// DownloadToTempFile downloads an S3 object to a new temporary file and returns
// the file path plus a cleanup function that removes it. The temp file keeps
// the key's extension so media types can still be guessed from it.
func DownloadToTempFile(ctx context.Context, client GetObjectAPI, bucket, key string) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", "s3dl-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmpFile.Name()
	tmpFile.Close()

	if err := DownloadToFile(ctx, client, bucket, key, path); err != nil {
		os.Remove(path)
		return "", nil, err
	}

	cleanup := func() { os.Remove(path) }
	return path, cleanup, nil
}
