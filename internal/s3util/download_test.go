package s3util

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	gotKeys []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	ref := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.gotKeys = append(f.gotKeys, ref)
	body, ok := f.objects[ref]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://media/videos/clip.mp4", "media", "videos/clip.mp4", true},
		{"s3://media/clip.mp4", "media", "clip.mp4", true},
		{"s3://media/", "", "", false},
		{"s3://media", "", "", false},
		{"s3:///clip.mp4", "", "", false},
		{"/tmp/clip.mp4", "", "", false},
		{"https://media.s3.amazonaws.com/clip.mp4", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, ok := ParseS3URI(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestDownloadToTempFile(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"media/videos/clip.mov": "movie-bytes"}}

	path, cleanup, err := DownloadToTempFile(context.Background(), client, "media", "videos/clip.mov")
	require.NoError(t, err)
	assert.Equal(t, ".mov", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "movie-bytes", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDownloadToTempFile_MissingObject(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}}

	_, cleanup, err := DownloadToTempFile(context.Background(), client, "media", "missing.mp4")
	require.Error(t, err)
	assert.Nil(t, cleanup)
	assert.Contains(t, err.Error(), "NoSuchKey")
	assert.Equal(t, []string{"media/missing.mp4"}, client.gotKeys)
}
