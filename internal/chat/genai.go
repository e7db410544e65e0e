package chat

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/fpang/gemini-video-analyzer/internal/metrics"
)

// NewGeminiClient creates a Gemini Developer API client for apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGenaiVideoClient wires a VideoClient to the Files and Models services of client.
func NewGenaiVideoClient(client *genai.Client, opts ...Option) *VideoClient {
	return NewVideoClient(&GenaiFiles{Files: client.Files}, &GenaiGenerator{Models: client.Models}, opts...)
}

// GenaiFiles adapts the genai Files service to FileStore.
type GenaiFiles struct {
	Files *genai.Files
}

// Upload streams r to the Files API.
func (g *GenaiFiles) Upload(ctx context.Context, r io.Reader, mimeType string) (*UploadHandle, error) {
	start := time.Now()
	file, err := g.Files.Upload(ctx, r, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("files upload: %w", err)
	}

	evt := metrics.New(metrics.Namespace).
		Dimension("Operation", "filesApiUpload").
		Duration("GeminiFilesApiUploadMs", time.Since(start)).
		Count("GeminiApiCalls")
	if file.SizeBytes != nil {
		evt.Metric("GeminiFilesApiUploadBytes", float64(*file.SizeBytes), metrics.UnitBytes)
	}
	evt.Flush()

	return &UploadHandle{Name: file.Name, MIMEType: file.MIMEType, URI: file.URI}, nil
}

// Status reports the processing state of the named file.
func (g *GenaiFiles) Status(ctx context.Context, name string) (*FileStatus, error) {
	file, err := g.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("files get: %w", err)
	}
	return fileStatusFromGenai(file), nil
}

// Delete removes the named file.
func (g *GenaiFiles) Delete(ctx context.Context, name string) error {
	if _, err := g.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("files delete: %w", err)
	}
	return nil
}

func fileStatusFromGenai(file *genai.File) *FileStatus {
	if file == nil {
		return nil
	}
	status := &FileStatus{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
	}
	switch file.State {
	case genai.FileStateActive:
		status.State = StateActive
	case genai.FileStateFailed:
		status.State = StateFailed
	default:
		status.State = StatePending
	}
	if file.Error != nil {
		status.ErrorMessage = file.Error.Message
	}
	return status
}

// GenaiGenerator adapts the genai Models service to Generator.
type GenaiGenerator struct {
	Models *genai.Models
	// Config is passed to every call; nil uses the API defaults.
	Config *genai.GenerateContentConfig
}

// Generate sends parts as a single user turn and returns the
// *genai.GenerateContentResponse.
func (g *GenaiGenerator) Generate(ctx context.Context, model string, parts []*genai.Part) (any, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	start := time.Now()
	resp, err := g.Models.GenerateContent(ctx, model, contents, g.Config)
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.New(metrics.Namespace).
		Dimension("Operation", "generateContent").
		Dimension("Model", model).
		Dimension("Result", result).
		Duration("GeminiApiLatencyMs", elapsed).
		Count("GeminiApiCalls").
		Flush()

	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("model", model).Dur("elapsed", elapsed).Msg("generateContent failed")
		return nil, err
	}
	return resp, nil
}
