package chat

import "errors"

// Failure kinds. Every error returned by the analyzers either matches one of
// these with errors.Is, or is a context error from a canceled request.
var (
	// ErrInvalidInput means the request was rejected before any upstream call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUploadFailed means the upload service returned an unusable handle.
	ErrUploadFailed = errors.New("upload failed")
	// ErrActivationTimeout means an upload did not become active before its deadline.
	ErrActivationTimeout = errors.New("activation timeout")
	// ErrActivationIncomplete means an upload became active without a URI or media type.
	ErrActivationIncomplete = errors.New("activation incomplete")
	// ErrProcessingFailed means the upload service reported a failed upload.
	ErrProcessingFailed = errors.New("processing failed")
	// ErrPlatformUnsupported means the video host cannot be analyzed by this backend.
	ErrPlatformUnsupported = errors.New("platform unsupported")
	// ErrAllModelsExhausted means every candidate model and attempt failed.
	ErrAllModelsExhausted = errors.New("all models exhausted")
)

// AnalysisError is a classified analysis failure.
type AnalysisError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is matches the failure kind, so errors.Is(err, ErrUploadFailed) works while
// Unwrap still exposes the upstream cause.
func (e *AnalysisError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func newAnalysisError(kind error, message string, cause error) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: message, Err: cause}
}
