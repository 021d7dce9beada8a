package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyReply is returned when a reply holds nothing to parse
var ErrEmptyReply = errors.New("empty model reply")

var codeFencePattern = regexp.MustCompile("```[a-zA-Z]*")

// StripCodeFences removes markdown code-fence markers (```json, ```) from a reply
func StripCodeFences(s string) string {
	return strings.TrimSpace(codeFencePattern.ReplaceAllString(s, ""))
}

// ParseJSON decodes a model reply into out. Code fences are stripped, a top-level
// array yields its first element, and surrounding prose is tolerated by falling
// back to the outermost {...} span.
func ParseJSON(raw string, out interface{}) error {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return ErrEmptyReply
	}

	data := []byte(cleaned)
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode reply array: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyReply
		}
		data = bytes.TrimSpace(items[0])
	}

	err := json.Unmarshal(data, out)
	if err == nil {
		return nil
	}

	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start >= 0 && end > start {
		if err2 := json.Unmarshal(data[start:end+1], out); err2 == nil {
			return nil
		}
	}
	return fmt.Errorf("decode reply: %w", err)
}

// ParseOrDefault is the parse-or-default combinator: it returns the decoded value,
// or def and the parse error when the reply does not conform.
func ParseOrDefault[T any](raw string, def T) (T, error) {
	var v T
	if err := ParseJSON(raw, &v); err != nil {
		return def, err
	}
	return v, nil
}

// CleanText normalizes a plain-text reply: fences and surrounding quotes are removed,
// only the first non-empty line is kept and inner whitespace is collapsed.
func CleanText(raw string) string {
	s := StripCodeFences(raw)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Trim(line, "\"'`“”‘’ ")
		return strings.Join(strings.Fields(line), " ")
	}
	return ""
}

// StripQuotes removes every quote character from s
func StripQuotes(s string) string {
	return strings.NewReplacer("\"", "", "'", "", "“", "", "”", "", "‘", "", "’", "").Replace(s)
}

// CollapseWhitespace replaces runs of whitespace with one space and trims the ends
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// LimitWords keeps at most n words of s
func LimitWords(s string, n int) string {
	words := strings.Fields(s)
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// Truncate returns the first n runes of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
