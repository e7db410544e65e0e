package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fpang/gemini-video-analyzer/internal/metrics"
)

// WaitForActive polls the upload service until the named file is active,
// fails, or the activation timeout passes. Polling is linear: one status call
// per poll interval.
func (c *VideoClient) WaitForActive(ctx context.Context, name string) (*FileStatus, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", name).Logger()

	start := c.now()
	deadline := start.Add(c.activationTimeout)
	polls := 0

	for !c.now().After(deadline) {
		status, err := c.files.Status(ctx, name)
		polls++
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("get status of uploaded file %s: %w", name, err)
		}

		switch {
		case status == nil || status.State == StatePending:
			logger.Debug().Int("poll", polls).Msg("Uploaded file still processing, waiting...")

		case status.State == StateActive:
			if status.URI == "" || status.MIMEType == "" {
				return nil, newAnalysisError(ErrActivationIncomplete,
					fmt.Sprintf("uploaded file %s is ACTIVE but is missing its URI or MIME type", name), nil)
			}
			elapsed := c.now().Sub(start)
			logger.Debug().
				Int("polls", polls).
				Dur("elapsed", elapsed).
				Str("uri", status.URI).
				Msg("Uploaded file is active")
			metrics.New(metrics.Namespace).
				Dimension("Operation", "fileActivation").
				Duration("FileActivationMs", elapsed).
				Metric("FileActivationPolls", float64(polls), metrics.UnitCount).
				Flush()
			return status, nil

		case status.State == StateFailed:
			reason := status.ErrorMessage
			if reason == "" {
				reason = "unknown error"
			}
			return nil, newAnalysisError(ErrProcessingFailed,
				fmt.Sprintf("uploaded file %s failed to process: %s", name, reason), nil)
		}

		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return nil, err
		}
	}

	return nil, newAnalysisError(ErrActivationTimeout,
		fmt.Sprintf("timed out after %s waiting for uploaded file %s to become ACTIVE", c.activationTimeout, name), nil)
}
