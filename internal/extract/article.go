package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/truthcheck/internal/extract/adapters"
	"github.com/ppiankov/truthcheck/internal/model"
)

// ArticleExtractor turns fetched HTML into title and body text
type ArticleExtractor struct {
	registry *adapters.Registry
}

// NewArticleExtractor creates an extractor with the built-in adapters
func NewArticleExtractor() *ArticleExtractor {
	return &ArticleExtractor{registry: adapters.NewRegistry()}
}

// Extract parses htmlContent and returns the article found in it
func (e *ArticleExtractor) Extract(htmlContent string, url string) (*model.Article, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	article := e.registry.Extract(doc, url)
	if article.Title == "" && article.Text == "" {
		return nil, &model.ExtractionError{Reason: "page has no readable text"}
	}
	return article, nil
}

// FromText builds an article from a plain-text blob, title on the first line
func FromText(content, url string) *model.Article {
	title, body := model.SplitContent(content)
	return &model.Article{URL: url, Title: title, Text: body, Extractor: "text"}
}
