package model

import (
	"fmt"
	"time"
)

// EvidenceItem is a single search hit shown to the language model
type EvidenceItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Snippet   string `json:"snippet"`
	IsTrusted bool   `json:"isTrusted"`
}

// EvidenceSet holds both framings of the same query
type EvidenceSet struct {
	Affirmative []EvidenceItem `json:"affirmativeResults"`
	Skeptical   []EvidenceItem `json:"skepticalResults"`
}

// Framing identifies which of the paired searches produced a result set
type Framing string

const (
	FramingAffirmative Framing = "affirmative"
	FramingSkeptical   Framing = "skeptical"
)

// Len returns the total number of items across both framings
func (s EvidenceSet) Len() int {
	return len(s.Affirmative) + len(s.Skeptical)
}

// IsEmpty reports whether neither framing returned anything
func (s EvidenceSet) IsEmpty() bool {
	return s.Len() == 0
}

// TrustedCounts returns the number of trusted items per framing
func (s EvidenceSet) TrustedCounts() (affirmative, skeptical int) {
	return CountTrusted(s.Affirmative), CountTrusted(s.Skeptical)
}

// Links returns every link in the set, affirmative first, in order
func (s EvidenceSet) Links() []string {
	links := make([]string, 0, s.Len())
	for _, it := range s.Affirmative {
		links = append(links, it.Link)
	}
	for _, it := range s.Skeptical {
		links = append(links, it.Link)
	}
	return links
}

// CountTrusted counts items flagged as trusted
func CountTrusted(items []EvidenceItem) int {
	count := 0
	for _, it := range items {
		if it.IsTrusted {
			count++
		}
	}
	return count
}

// DateRange is a closed interval of calendar days used to bound a search
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateWindow builds the closed interval [center-days, center+days]
func NewDateWindow(center time.Time, days int) DateRange {
	if days < 0 {
		days = -days
	}
	d := time.Duration(days) * 24 * time.Hour
	return DateRange{Start: center.Add(-d), End: center.Add(d)}
}

// SortRestrict formats the range in the search provider's sort syntax
// (e.g. "date:r:20240101:20240115")
func (r DateRange) SortRestrict() string {
	return fmt.Sprintf("date:r:%s:%s", r.Start.Format("20060102"), r.End.Format("20060102"))
}

// String returns the range as "YYYY-MM-DD..YYYY-MM-DD"
func (r DateRange) String() string {
	return r.Start.Format("2006-01-02") + ".." + r.End.Format("2006-01-02")
}
