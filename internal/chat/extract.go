package chat

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

// textStrategy reads text from one response shape. It returns "" when the
// shape does not match.
type textStrategy func(result any) string

// textStrategies are tried in order; the first non-empty result wins. New
// response shapes are supported by appending a strategy.
var textStrategies = []textStrategy{
	directText,
	directTextAccessor,
	nested(directText),
	nested(directTextAccessor),
	nested(candidateText),
}

// ExtractText normalizes a generation result into plain text. It accepts
// typed SDK responses, decoded JSON maps, and raw JSON bytes. Unrecognized or
// empty input yields "".
func ExtractText(result any) string {
	result = normalizeResult(result)
	if isNil(result) {
		return ""
	}
	for _, strategy := range textStrategies {
		if text := strategy(result); text != "" {
			return text
		}
	}
	return ""
}

// normalizeResult decodes raw JSON into maps and slices.
func normalizeResult(result any) any {
	var raw []byte
	switch v := result.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		return result
	}
	if !gjson.ValidBytes(raw) {
		return nil
	}
	return gjson.ParseBytes(raw).Value()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// field reads key from a decoded object.
func field(v any, key string) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := m[key]
	return val, ok
}

func directText(result any) string {
	v, _ := field(result, "text")
	s, _ := v.(string)
	return s
}

func directTextAccessor(result any) string {
	if v, ok := field(result, "text"); ok {
		if fn, ok := v.(func() string); ok && fn != nil {
			return callText(fn)
		}
		return ""
	}
	if resp, ok := result.(*genai.GenerateContentResponse); ok {
		// Text() indexes Candidates[0] without a nil check.
		if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
			return ""
		}
	}
	if t, ok := result.(interface{ Text() string }); ok && !isNil(t) {
		return callText(t.Text)
	}
	return ""
}

// callText runs a text accessor, treating a panic as no text.
func callText(fn func() string) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	return fn()
}

// nested applies strategy to the "response" object wrapped inside result.
func nested(strategy textStrategy) textStrategy {
	return func(result any) string {
		inner, ok := field(result, "response")
		if !ok || isNil(inner) {
			return ""
		}
		return strategy(inner)
	}
}

// candidateText joins the non-empty text parts of the first candidate.
func candidateText(result any) string {
	if resp, ok := result.(*genai.GenerateContentResponse); ok {
		return genaiCandidateText(resp)
	}

	rawCandidates, _ := field(result, "candidates")
	candidates, ok := rawCandidates.([]any)
	if !ok || len(candidates) == 0 {
		return ""
	}
	content, _ := field(candidates[0], "content")
	rawParts, _ := field(content, "parts")
	parts, ok := rawParts.([]any)
	if !ok {
		return ""
	}

	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if s, ok := fieldString(part, "text"); ok && s != "" {
			texts = append(texts, s)
		}
	}
	return strings.Join(texts, "\n")
}

func genaiCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	first := resp.Candidates[0]
	if first == nil || first.Content == nil {
		return ""
	}
	texts := make([]string, 0, len(first.Content.Parts))
	for _, part := range first.Content.Parts {
		if part != nil && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func fieldString(v any, key string) (string, bool) {
	val, ok := field(v, key)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}
