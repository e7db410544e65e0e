package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-video-analyzer/internal/auth"
	"github.com/fpang/gemini-video-analyzer/internal/filehandler"
	"github.com/fpang/gemini-video-analyzer/internal/s3util"
)

// ResolveVideoPath checks that a local video path exists and is a regular
// file, and returns it as an absolute path. s3:// URIs pass through after a
// bucket/key check. Unknown extensions only log a warning; the MIME type then
// falls back to the default.
func ResolveVideoPath(p string) (string, error) {
	if s3util.IsS3URI(p) {
		if _, _, ok := s3util.ParseS3URI(p); !ok {
			return "", fmt.Errorf("invalid S3 URI %q: expected s3://bucket/key", p)
		}
		return p, nil
	}

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("video file not found: %s", p)
		}
		return "", fmt.Errorf("access video file %s: %w", p, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a video file: %s", p)
	}
	if !filehandler.IsVideo(p) {
		log.Warn().Str("path", p).Msg("Unrecognized video extension")
	}

	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p, nil
}

// HandleValidationError reports an auth.ValidationError and exits.
func HandleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Msg("No API key configured. Set GOOGLE_API_KEY (or GEMINI_API_KEY) or store it in ~/.gemini-video-analyzer/credentials.gpg")
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	os.Exit(1)
}
