package feed

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/truthcheck/internal/model"
)

// Item is one article announced by a feed
type Item struct {
	Title     string
	URL       string
	Published time.Time
}

// Feed is a parsed RSS, Atom or JSON feed
type Feed struct {
	Title string
	Items []Item
}

// Options filter the items a Reader returns
type Options struct {
	Limit int       // 0 keeps every item
	Since time.Time // zero keeps undated and old items
}

// Reader fetches and parses news feeds
type Reader struct {
	parser *gofeed.Parser
}

// NewReader creates a reader; transport may be nil
func NewReader(transport http.RoundTripper, userAgent string, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout, Transport: transport}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Reader{parser: parser}
}

// Read fetches feedURL and returns its linked items, newest first, with
// duplicate links (by normalized URL) removed
func (r *Reader) Read(ctx context.Context, feedURL string, opts Options) (*Feed, error) {
	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", feedURL, err)
	}

	out := &Feed{Title: strings.TrimSpace(parsed.Title)}
	seen := make(map[string]bool)

	for _, it := range parsed.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}
		key := model.NormalizeURL(link)
		if seen[key] {
			continue
		}

		var published time.Time
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}
		if !opts.Since.IsZero() && (published.IsZero() || published.Before(opts.Since)) {
			continue
		}

		seen[key] = true
		out.Items = append(out.Items, Item{
			Title:     strings.TrimSpace(it.Title),
			URL:       link,
			Published: published,
		})
	}

	sort.SliceStable(out.Items, func(i, j int) bool {
		return out.Items[i].Published.After(out.Items[j].Published)
	})
	if opts.Limit > 0 && len(out.Items) > opts.Limit {
		out.Items = out.Items[:opts.Limit]
	}

	return out, nil
}

// URLs returns the item links in order
func (f *Feed) URLs() []string {
	urls := make([]string, 0, len(f.Items))
	for _, it := range f.Items {
		urls = append(urls, it.URL)
	}
	return urls
}
