package validate

import (
	"testing"

	"github.com/ppiankov/truthcheck/internal/model"
)

func TestDomainClassifier_DefaultLists(t *testing.T) {
	classifier := NewDomainClassifier(nil) // Use defaults

	tests := []struct {
		url      string
		expected Tier
		desc     string
	}{
		{url: "https://www.reuters.com/world/article", expected: TierTrusted, desc: "wire service with www"},
		{url: "https://g1.globo.com/economia/noticia.ghtml", expected: TierTrusted, desc: "regional outlet"},
		{url: "https://piaui.folha.uol.com.br/lupa/x", expected: TierTrusted, desc: "subdomain of trusted outlet"},
		{url: "https://aosfatos.org/noticias/checamos", expected: TierTrusted, desc: "fact-checker"},
		{url: "https://www.who.int/news", expected: TierAcademic, desc: "public health body"},
		{url: "https://pubmed.ncbi.nlm.nih.gov/123", expected: TierAcademic, desc: "subdomain of nih.gov"},
		{url: "https://portal.fiocruz.br/noticia", expected: TierAcademic, desc: "research institute"},
		{url: "https://www.saude.gov.br/x", expected: TierAcademic, desc: "government of Brazil"},
		{url: "https://whitehouse.gov/briefing", expected: TierAcademic, desc: ".gov TLD"},
		{url: "https://mit.edu/research", expected: TierAcademic, desc: ".edu TLD"},
		{url: "https://www.tiktok.com/@user/video/1", expected: TierLowTrust, desc: "short video platform"},
		{url: "https://pt.wikipedia.org/wiki/Brasil", expected: TierLowTrust, desc: "wiki"},
		{url: "https://someone.blogspot.com/2024/post", expected: TierLowTrust, desc: "blog host"},
		{url: "https://randomsite.com/page", expected: TierUnknown, desc: "unknown domain"},
		{url: "https://notreuters.com/page", expected: TierUnknown, desc: "suffix without dot boundary"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}
}

func TestDomainClassifier_IsTrusted(t *testing.T) {
	classifier := NewDomainClassifier(nil)

	if !classifier.IsTrusted("https://apnews.com/a") {
		t.Error("Expected trusted tier to count as trusted")
	}
	if !classifier.IsTrusted("https://nature.com/articles/x") {
		t.Error("Expected academic tier to count as trusted")
	}
	if classifier.IsTrusted("https://x.com/status/1") {
		t.Error("Expected low-trust tier not to count as trusted")
	}
	if !classifier.IsAcademic("https://scielo.br/j/abc") {
		t.Error("Expected scielo to be academic")
	}
	if classifier.IsAcademic("https://bbc.com/news") {
		t.Error("Expected a news outlet not to be academic")
	}
}

func TestDomainClassifier_CustomConfig(t *testing.T) {
	config := &model.DomainConfig{
		Trusted:  []string{"WWW.Example.org", " local.news "},
		LowTrust: []string{"forum.example.org"},
	}

	classifier := NewDomainClassifier(config)

	tests := []struct {
		url      string
		expected Tier
		desc     string
	}{
		{url: "https://example.org/a", expected: TierTrusted, desc: "entries are normalized"},
		{url: "https://city.local.news/a", expected: TierTrusted, desc: "entries are trimmed"},
		{url: "https://forum.example.org/t/1", expected: TierTrusted, desc: "trusted parent wins over low-trust child"},
		{url: "https://reuters.com/a", expected: TierUnknown, desc: "defaults are replaced"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}

	if !classifier.IsLowTrust("https://forum.example.org/t/1") {
		t.Error("Expected low-trust membership to be detected independently of tier")
	}
}

func TestDomainClassifier_InvalidURLs(t *testing.T) {
	classifier := NewDomainClassifier(nil)

	for _, raw := range []string{"", "not-a-url", "://missing-scheme", "mailto:someone@bbc.com"} {
		if tier := classifier.Classify(raw); tier != TierUnknown {
			t.Errorf("Expected unknown for %q, got %v", raw, tier)
		}
	}
}

func TestHost(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://WWW.BBC.com:443/news", "bbc.com"},
		{"http://example.gov:8080/page", "example.gov"},
		{"https://www2.example.com", "www2.example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Host(tt.input); got != tt.expected {
			t.Errorf("Expected %q for %q, got %q", tt.expected, tt.input, got)
		}
	}
}
