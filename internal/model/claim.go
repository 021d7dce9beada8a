package model

import (
	"strings"
	"time"
)

// ExtractedClaim is the structured reduction of an article used to drive searches
type ExtractedClaim struct {
	Entity    string     `json:"entidade"`
	Claim     string     `json:"alegacao"`
	EventDate *time.Time `json:"data,omitempty"`
	Window    *DateRange `json:"window,omitempty"` // Derived from EventDate, nil when no date was found
	Fallback  bool       `json:"fallback"`         // Whether the single-field fallback prompts were used
}

// Query returns the first-round search query
func (c ExtractedClaim) Query() string {
	if c.Entity == "" {
		return c.Claim
	}
	return c.Entity + " " + c.Claim
}

// ContentType distinguishes text articles from image uploads
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// Article is the content-extraction output: a title line and body text
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Extractor   string     `json:"extractor,omitempty"` // Adapter that produced it
}

// Content renders the article as one blob with the title on the first line
func (a Article) Content() string {
	if a.Title == "" {
		return a.Text
	}
	return a.Title + "\n" + a.Text
}

// SplitContent splits a blob into its title line and body
func SplitContent(content string) (title, body string) {
	content = strings.TrimLeft(content, " \t\r\n")
	title, body, _ = strings.Cut(content, "\n")
	return strings.TrimSpace(title), strings.TrimSpace(body)
}
