package adapters

import (
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/truthcheck/internal/model"
)

// minParagraphRunes drops navigation crumbs and captions from the body
const minParagraphRunes = 40

// GenericAdapter is the fallback adapter for unknown layouts
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// Extract always succeeds. The title comes from og:title, the first <h1> or
// <title>; the body from the paragraphs of <article> (or the whole page when
// there is none), and falls back to all visible text.
func (a *GenericAdapter) Extract(doc *html.Node, url string) (*model.Article, bool) {
	article := &model.Article{URL: url, Title: a.title(doc)}

	root := a.FindFirst(doc, isElement("article"))
	if root == nil {
		root = a.FindFirst(doc, isElement("main"))
	}
	if root == nil {
		root = doc
	}

	var paragraphs []string
	for _, p := range a.FindAll(root, isElement("p")) {
		text := a.ExtractText(p)
		if len([]rune(text)) >= minParagraphRunes {
			paragraphs = append(paragraphs, text)
		}
	}
	article.Text = strings.Join(paragraphs, "\n")
	if article.Text == "" {
		if body := a.FindFirst(doc, isElement("body")); body != nil {
			article.Text = a.ExtractText(body)
		}
	}

	if published := a.MetaContent(doc, "article:published_time"); published != "" {
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			article.PublishedAt = &t
		}
	}

	return article, true
}

func (a *GenericAdapter) title(doc *html.Node) string {
	if og := a.MetaContent(doc, "og:title"); og != "" {
		return og
	}
	if h1 := a.FindFirst(doc, isElement("h1")); h1 != nil {
		if text := a.ExtractText(h1); text != "" {
			return text
		}
	}
	if title := a.FindFirst(doc, isElement("title")); title != nil {
		return a.ExtractText(title)
	}
	return ""
}
