package chat

import "strings"

// Gemini Model IDs
//
// | Model Name                  | API Model ID              | Use Case                        |
// |-----------------------------|---------------------------|---------------------------------|
// | Gemini 2.5 Pro              | gemini-2.5-pro            | Long videos, detailed reasoning |
// | Gemini 2.5 Flash            | gemini-2.5-flash          | Stable, balanced performance    |
// | Gemini 2.5 Flash-Lite       | gemini-2.5-flash-lite     | High-throughput, lowest cost    |
// | Gemini 2.0 Flash (Exp)      | gemini-2.0-flash-exp      | Remote-video fallback           |
const (
	// ModelGemini25Pro is stable, for high-reasoning tasks.
	ModelGemini25Pro = "gemini-2.5-pro"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25FlashLite is for high-throughput, lowest cost.
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"

	// ModelGemini20FlashExp is the default remote-video fallback.
	ModelGemini20FlashExp = "gemini-2.0-flash-exp"
)

// DefaultModelName is the model used when a request does not name one.
// Can be overridden via GEMINI_MODEL.
const DefaultModelName = ModelGemini25Flash

// pickOverride returns the trimmed override, or fallback when the override is blank.
func pickOverride(override, fallback string) string {
	if m := strings.TrimSpace(override); m != "" {
		return m
	}
	return fallback
}

// CandidateModels builds the ordered list of models to try: primary first,
// then fallbacks. Identifiers are trimmed, blanks dropped, and duplicates
// removed keeping the first occurrence.
func CandidateModels(primary string, fallbacks []string) []string {
	seen := make(map[string]struct{}, len(fallbacks)+1)
	models := make([]string, 0, len(fallbacks)+1)
	for _, m := range append([]string{primary}, fallbacks...) {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		models = append(models, m)
	}
	return models
}
