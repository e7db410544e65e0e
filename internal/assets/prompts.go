// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at compile time.
package assets

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// defaultSummaryPrompt asks for a whole-video summary followed by
// progressively finer section summaries. Used when a request has no prompt.
//
//go:embed prompts/summarize.txt
var defaultSummaryPrompt string

// DefaultSummaryPrompt returns the embedded summarization prompt without the
// trailing newline.
func DefaultSummaryPrompt() string {
	return strings.TrimSpace(defaultSummaryPrompt)
}

//go:embed prompts/permission-guidance.txt
var permissionGuidanceTemplate string

var permissionGuidanceTmpl = template.Must(template.New("permission").Parse(permissionGuidanceTemplate))

// GuidanceData holds the dynamic data injected into guidance templates.
type GuidanceData struct {
	Error string
}

// RenderPermissionGuidance explains a permission failure from the generation
// service, quoting the upstream error message.
func RenderPermissionGuidance(errMessage string) string {
	var buf bytes.Buffer
	// Execution errors are not expected with this template; whatever was
	// rendered is returned.
	_ = permissionGuidanceTmpl.Execute(&buf, GuidanceData{Error: errMessage})
	return strings.TrimSpace(buf.String())
}
