package adapters

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/truthcheck/internal/model"
)

// Adapter turns a parsed page into an article
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// Extract returns the article, or false when the page lacks what this adapter needs
	Extract(doc *html.Node, url string) (*model.Article, bool)
}

// Registry tries adapters in order and falls back to the generic one
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a registry with the built-in adapters
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	registry.Register(NewJSONLDAdapter())

	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter ahead of the fallback
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// Extract runs the first adapter that accepts the page
func (r *Registry) Extract(doc *html.Node, url string) *model.Article {
	for _, adapter := range r.adapters {
		if article, ok := adapter.Extract(doc, url); ok {
			article.Extractor = adapter.Name()
			return article
		}
	}

	article, _ := r.generic.Extract(doc, url)
	article.Extractor = r.generic.Name()
	return article
}

// BaseAdapter provides common node helpers for adapters
type BaseAdapter struct{}

// skipped elements never carry article text
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"nav": true, "footer": true, "aside": true, "form": true, "svg": true,
}

// ExtractText returns the visible text under n with whitespace collapsed
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && skipped[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// HasClass checks if a node has a specific CSS class
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindAll finds all nodes matching a predicate
func (b *BaseAdapter) FindAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// MetaContent returns the content of the first <meta> whose property or name is key
func (b *BaseAdapter) MetaContent(doc *html.Node, key string) string {
	node := b.FindFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return false
		}
		return b.GetAttribute(n, "property") == key || b.GetAttribute(n, "name") == key
	})
	if node == nil {
		return ""
	}
	return strings.TrimSpace(b.GetAttribute(node, "content"))
}

func isElement(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}
