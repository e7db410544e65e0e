package chat

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

// Status is the structured view of an upstream failure. Zero values mean the
// field was absent.
type Status struct {
	// Text is a symbolic or textual status such as "INTERNAL" or "500".
	Text string
	// Number is a numeric status, usually the HTTP status code.
	Number int
	// Code is a numeric error code; 13 is the transport-level INTERNAL code.
	Code int
	// Message is the human-readable upstream message.
	Message string
}

// StatusReporter is implemented by errors that carry an upstream status.
type StatusReporter interface {
	APIStatus() Status
}

// StatusError is an error carrying an explicit Status. Generators that do not
// return genai.APIError can use it to take part in retry classification.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	if e.Status.Message != "" {
		return e.Status.Message
	}
	if e.Status.Text != "" {
		return e.Status.Text
	}
	return "upstream error"
}

// APIStatus implements StatusReporter.
func (e *StatusError) APIStatus() Status {
	return e.Status
}

// StatusOf extracts the upstream status from err's chain. ok is false when no
// error in the chain carries one.
func StatusOf(err error) (Status, bool) {
	if err == nil {
		return Status{}, false
	}
	var reporter StatusReporter
	if errors.As(err, &reporter) {
		return reporter.APIStatus(), true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return statusFromAPIError(*ptr), true
	}
	var val genai.APIError
	if errors.As(err, &val) {
		return statusFromAPIError(val), true
	}
	return Status{}, false
}

func statusFromAPIError(e genai.APIError) Status {
	return Status{Text: e.Status, Number: e.Code, Code: e.Code, Message: e.Message}
}

// IsRetryableServerError reports whether err is a transient internal failure
// on the upstream side.
func IsRetryableServerError(err error) bool {
	s, ok := StatusOf(err)
	if !ok {
		return false
	}
	if s.Number == 500 {
		return true
	}
	switch strings.ToUpper(strings.TrimSpace(s.Text)) {
	case "500", "INTERNAL", "INTERNAL_ERROR":
		return true
	}
	return s.Code == 500 || s.Code == 13
}

// IsPermissionError reports whether err means the caller lacks access to the
// requested resource.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	// Rejected before any upstream call; the message may quote the URL.
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrPlatformUnsupported) {
		return false
	}
	if s, ok := StatusOf(err); ok {
		if strings.ToUpper(s.Text) == "PERMISSION_DENIED" || s.Code == 403 {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "does not have permission") ||
		strings.Contains(msg, "403")
}
