package model

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// HistoryEntry is one persisted analysis. ResultText is the serialized Verdict.
type HistoryEntry struct {
	ID         string      `json:"id,omitempty"`
	URL        string      `json:"url"`
	Title      string      `json:"title"`
	ResultText string      `json:"resultText"`
	Timestamp  time.Time   `json:"timestamp"`
	Type       ContentType `json:"type,omitempty"`
}

// Validate checks the fields an import requires
func (e HistoryEntry) Validate() error {
	if strings.TrimSpace(e.URL) == "" {
		return errors.New("history entry: missing url")
	}
	if e.Timestamp.IsZero() {
		return errors.New("history entry: missing timestamp")
	}
	return nil
}

// IsFresh reports whether the entry is younger than maxAge at now
func (e HistoryEntry) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.Timestamp) < maxAge
}

// NormalizeURL builds the cache key for a page: scheme, host without "www." and
// path without trailing slash. Query and fragment are ignored. Unparsable input
// is returned trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.Path, "/")
	return strings.ToLower(u.Scheme) + "://" + host + path
}
