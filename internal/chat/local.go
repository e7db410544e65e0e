package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/fpang/gemini-video-analyzer/internal/filehandler"
)

// deleteTimeout bounds the best-effort upload cleanup, which runs even when
// the request context has been canceled.
const deleteTimeout = 30 * time.Second

// LocalRequest asks for analysis of a video read through the client's Opener.
type LocalRequest struct {
	FilePath string
	Prompt   string
	Model    string
	// MIMEType overrides the type guessed from the FilePath extension.
	MIMEType string
}

// AnalyzeLocalVideo uploads the video, waits for it to become active, and
// runs a single generation call. The upload is deleted exactly once on every
// path after it succeeds; deletion failures are logged, never returned.
func (c *VideoClient) AnalyzeLocalVideo(ctx context.Context, req LocalRequest) (string, error) {
	path := strings.TrimSpace(req.FilePath)
	if path == "" {
		return "", newAnalysisError(ErrInvalidInput, "filePath is required", nil)
	}

	model := pickOverride(req.Model, c.defaultModel)
	prompt := pickOverride(req.Prompt, c.defaultPrompt)
	mimeType := strings.TrimSpace(req.MIMEType)
	if mimeType == "" {
		mimeType = filehandler.VideoMIMETypeOrDefault(path)
	}

	logger := zerolog.Ctx(ctx).With().Str("path", path).Str("model", model).Logger()
	start := time.Now()

	uploaded, err := c.upload(ctx, path, mimeType)
	if err != nil {
		recordAnalysis("analyzeLocalVideo", "upload_failed", 0, time.Since(start))
		return "", err
	}
	logger.Debug().
		Str("file", uploaded.Name).
		Str("mimeType", mimeType).
		Dur("uploadDuration", time.Since(start)).
		Msg("Video uploaded, waiting for processing...")

	var active *FileStatus
	defer func() {
		name := uploaded.Name
		if active != nil && active.Name != "" {
			name = active.Name
		}
		c.deleteUpload(ctx, name)
	}()

	active, err = c.WaitForActive(ctx, uploaded.Name)
	if err != nil {
		recordAnalysis("analyzeLocalVideo", "activation_failed", 0, time.Since(start))
		return "", err
	}
	if active.URI == "" || active.MIMEType == "" {
		return "", newAnalysisError(ErrUploadFailed, "upload failed: missing file URI or MIME type after activation", nil)
	}

	parts := []*genai.Part{
		{FileData: &genai.FileData{MIMEType: active.MIMEType, FileURI: active.URI}},
		{Text: prompt},
	}
	result, err := c.gen.Generate(ctx, model, parts)
	if err != nil {
		recordAnalysis("analyzeLocalVideo", "generation_failed", 1, time.Since(start))
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("generate content with %s: %w", model, err)
	}

	text := ExtractText(result)
	logger.Info().
		Int("responseLength", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Local video analysis complete")
	recordAnalysis("analyzeLocalVideo", "success", 1, time.Since(start))
	return text, nil
}

// upload opens path and streams it to the upload service. The source is
// closed before activation polling starts.
func (c *VideoClient) upload(ctx context.Context, path, mimeType string) (*UploadHandle, error) {
	src, err := c.open(ctx, path)
	if err != nil {
		return nil, newAnalysisError(ErrInvalidInput, fmt.Sprintf("cannot open video %s", path), err)
	}
	defer src.Close()

	handle, err := c.files.Upload(ctx, src, mimeType)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newAnalysisError(ErrUploadFailed, "upload failed", err)
	}
	if handle == nil || handle.Name == "" {
		return nil, newAnalysisError(ErrUploadFailed, "upload failed: missing file name to poll status", nil)
	}
	return handle, nil
}

// deleteUpload removes an uploaded file. It survives cancellation of ctx so a
// canceled request still releases its upload.
func (c *VideoClient) deleteUpload(ctx context.Context, name string) {
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
	defer cancel()

	if err := c.files.Delete(delCtx, name); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file", name).Msg("Failed to delete uploaded Gemini file")
		return
	}
	zerolog.Ctx(ctx).Debug().Str("file", name).Msg("Uploaded Gemini file deleted")
}
