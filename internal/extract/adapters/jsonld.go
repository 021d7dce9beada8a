package adapters

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/truthcheck/internal/model"
)

// articleTypes are the schema.org types that carry a headline and body
var articleTypes = map[string]bool{
	"NewsArticle":          true,
	"Article":              true,
	"ReportageNewsArticle": true,
	"AnalysisNewsArticle":  true,
	"BlogPosting":          true,
}

// JSONLDAdapter reads schema.org article metadata most news sites embed
type JSONLDAdapter struct {
	BaseAdapter
}

// NewJSONLDAdapter creates a new JSON-LD adapter
func NewJSONLDAdapter() *JSONLDAdapter {
	return &JSONLDAdapter{}
}

// Name returns the adapter name
func (a *JSONLDAdapter) Name() string {
	return "jsonld"
}

type ldArticle struct {
	Type          interface{} `json:"@type"`
	Headline      string      `json:"headline"`
	ArticleBody   string      `json:"articleBody"`
	DatePublished string      `json:"datePublished"`
	Graph         []ldArticle `json:"@graph"`
}

// Extract succeeds only when a block carries both headline and articleBody
func (a *JSONLDAdapter) Extract(doc *html.Node, url string) (*model.Article, bool) {
	scripts := a.FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "script" &&
			strings.EqualFold(a.GetAttribute(n, "type"), "application/ld+json")
	})

	for _, script := range scripts {
		if script.FirstChild == nil {
			continue
		}
		for _, candidate := range decodeLD(script.FirstChild.Data) {
			if !isArticleType(candidate.Type) || candidate.Headline == "" || candidate.ArticleBody == "" {
				continue
			}
			article := &model.Article{
				URL:   url,
				Title: strings.TrimSpace(candidate.Headline),
				Text:  strings.TrimSpace(candidate.ArticleBody),
			}
			if t, err := time.Parse(time.RFC3339, candidate.DatePublished); err == nil {
				article.PublishedAt = &t
			}
			return article, true
		}
	}
	return nil, false
}

// decodeLD accepts a single object, an array of objects or an @graph container
func decodeLD(raw string) []ldArticle {
	raw = strings.TrimSpace(raw)
	var out []ldArticle

	var list []ldArticle
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		out = list
	} else {
		var single ldArticle
		if err := json.Unmarshal([]byte(raw), &single); err != nil {
			return nil
		}
		out = []ldArticle{single}
	}

	var flat []ldArticle
	for _, item := range out {
		flat = append(flat, item)
		flat = append(flat, item.Graph...)
	}
	return flat
}

// isArticleType accepts "@type" as a string or a list of strings
func isArticleType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return articleTypes[t]
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}
