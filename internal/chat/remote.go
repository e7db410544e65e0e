package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/fpang/gemini-video-analyzer/internal/filehandler"
	"github.com/fpang/gemini-video-analyzer/internal/metrics"
)

// RemoteRequest asks for analysis of a video reachable by URL.
type RemoteRequest struct {
	VideoURL string
	Prompt   string
	Model    string
}

// hostsRequiringVertex are video hosts whose internal errors from the Gemini
// Developer API do not go away with retries.
var hostsRequiringVertex = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

const (
	platformUnsupportedMessage = "the Gemini Developer API cannot reliably analyze remote YouTube videos; " +
		"use Vertex AI, or download the video and analyze it with analyzeLocalVideo"
	allModelsExhaustedMessage = "Gemini remote video analysis failed after retrying different models; " +
		"see https://ai.google.dev/gemini-api/docs/troubleshooting for current workarounds"
)

// AnalyzeRemoteVideo analyzes the video at req.VideoURL. Retryable server
// errors are retried per model with exponential backoff before moving on to
// the next fallback model.
func (c *VideoClient) AnalyzeRemoteVideo(ctx context.Context, req RemoteRequest) (string, error) {
	u, err := parseVideoURL(req.VideoURL)
	if err != nil {
		return "", newAnalysisError(ErrInvalidInput,
			fmt.Sprintf("invalid videoUrl provided to analyzeRemoteVideo: %s", req.VideoURL), err)
	}

	model := pickOverride(req.Model, c.defaultModel)
	prompt := pickOverride(req.Prompt, c.defaultPrompt)
	mimeType := filehandler.VideoMIMETypeOrDefault(u.Path)
	requiresVertex := hostsRequiringVertex[strings.ToLower(u.Hostname())]

	parts := []*genai.Part{
		{FileData: &genai.FileData{MIMEType: mimeType, FileURI: u.String()}},
		{Text: prompt},
	}
	models := CandidateModels(model, c.retry.FallbackModels)
	maxAttempts := max(c.retry.MaxAttemptsPerModel, 1)

	attemptCtx := ctx
	if c.retry.MaxElapsed > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.retry.MaxElapsed)
		defer cancel()
	}

	logger := zerolog.Ctx(ctx).With().Str("videoUrl", u.String()).Logger()
	logger.Debug().
		Strs("models", models).
		Int("maxAttemptsPerModel", maxAttempts).
		Str("mimeType", mimeType).
		Msg("Starting remote video analysis")

	start := time.Now()
	calls := 0
	var lastErr error

	for _, candidate := range models {
		delay := c.retry.InitialDelay

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			calls++
			logger.Debug().Str("model", candidate).Int("attempt", attempt).Msg("Calling Gemini generateContent")

			result, err := c.gen.Generate(attemptCtx, candidate, parts)
			if err == nil {
				text := ExtractText(result)
				logger.Info().
					Str("model", candidate).
					Int("calls", calls).
					Int("responseLength", len(text)).
					Dur("elapsed", time.Since(start)).
					Msg("Remote video analysis complete")
				recordAnalysis("analyzeRemoteVideo", "success", calls, time.Since(start))
				return text, nil
			}
			lastErr = err

			if stop := c.stopErr(ctx, attemptCtx, lastErr); stop != nil {
				recordAnalysis("analyzeRemoteVideo", "canceled", calls, time.Since(start))
				return "", stop
			}

			retryable := IsRetryableServerError(err)
			if requiresVertex && retryable {
				logger.Warn().Err(err).Str("model", candidate).Msg("Video host not supported by the Gemini Developer API")
				recordAnalysis("analyzeRemoteVideo", "platform_unsupported", calls, time.Since(start))
				return "", newAnalysisError(ErrPlatformUnsupported, platformUnsupportedMessage, err)
			}

			if attempt == maxAttempts || !retryable {
				logger.Warn().
					Err(err).
					Str("model", candidate).
					Int("attempt", attempt).
					Bool("retryable", retryable).
					Msg("Giving up on model")
				break
			}

			logger.Warn().
				Err(err).
				Str("model", candidate).
				Int("attempt", attempt).
				Dur("delay", max(delay, 0)).
				Msg("Retryable Gemini error, backing off")
			if err := c.sleep(attemptCtx, max(delay, 0)); err != nil {
				if stop := c.stopErr(ctx, attemptCtx, lastErr); stop != nil {
					recordAnalysis("analyzeRemoteVideo", "canceled", calls, time.Since(start))
					return "", stop
				}
				return "", err
			}
			delay = time.Duration(float64(delay) * c.retry.BackoffMultiplier)
		}
	}

	recordAnalysis("analyzeRemoteVideo", "exhausted", calls, time.Since(start))
	return "", newAnalysisError(ErrAllModelsExhausted, allModelsExhaustedMessage, lastErr)
}

// stopErr returns the error that ends the retry loop early: the caller's
// context error, or an exhaustion error once the MaxElapsed ceiling passes.
func (c *VideoClient) stopErr(parent, attemptCtx context.Context, lastErr error) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return newAnalysisError(ErrAllModelsExhausted,
			fmt.Sprintf("%s (time ceiling of %s exceeded)", allModelsExhaustedMessage, c.retry.MaxElapsed), lastErr)
	}
	return nil
}

// parseVideoURL accepts only absolute URLs.
func parseVideoURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return nil, fmt.Errorf("not an absolute URL: %q", raw)
	}
	return u, nil
}

func recordAnalysis(operation, result string, calls int, elapsed time.Duration) {
	metrics.New(metrics.Namespace).
		Dimension("Operation", operation).
		Dimension("Result", result).
		Duration("AnalysisMs", elapsed).
		Metric("GenerationCalls", float64(calls), metrics.UnitCount).
		Flush()
}
