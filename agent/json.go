package agent

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
)

var (
	fencePattern         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingObjectComma  = regexp.MustCompile(`,\s*}`)
	trailingArrayComma   = regexp.MustCompile(`,\s*]`)
	outermostJSONPattern = regexp.MustCompile(`(?s)[{\[].*[}\]]`)
)

// detailsLength bounds the raw response quoted in parse errors.
const detailsLength = 1000

// CleanJSON parses a model's JSON answer. When the text is not valid JSON
// as is, it tries the body of a markdown code fence, then the outermost
// object or array with trailing commas removed.
func CleanJSON(response string) (any, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &LLMError{Message: "empty response received"}
	}

	var v any
	if err := json.Unmarshal([]byte(response), &v); err == nil {
		return v, nil
	}

	if m := fencePattern.FindStringSubmatch(response); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &v); err == nil {
			return v, nil
		}
	}

	cleaned := trailingObjectComma.ReplaceAllString(response, "}")
	cleaned = trailingArrayComma.ReplaceAllString(cleaned, "]")
	if m := outermostJSONPattern.FindString(cleaned); m != "" {
		if err := json.Unmarshal([]byte(m), &v); err == nil {
			return v, nil
		}
	}

	return nil, &LLMError{Message: "failed to parse JSON response after all attempts", Details: truncate(response, detailsLength)}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Decode converts parsed JSON into T using its json tags.
func Decode[T any](data any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(data); err != nil {
		return out, &LLMError{Message: "answer does not match the expected shape", Err: err}
	}
	return out, nil
}
