package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/validate"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(model.SearchConfig{
		APIKey:   "key",
		EngineID: "cx",
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
	}, model.HTTPConfig{}, Options{Tagger: validate.NewDomainClassifier(nil)})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestClient_Search_PairedFramings(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/customsearch/v1" {
			t.Errorf("Expected path /customsearch/v1, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "key" || q.Get("cx") != "cx" || q.Get("num") != "10" {
			t.Errorf("Unexpected credentials/params: %v", q)
		}

		if strings.Contains(q.Get("q"), "debunk") {
			if q.Get("sort") != "date" {
				t.Errorf("Expected skeptical search never windowed, got sort=%s", q.Get("sort"))
			}
			_, _ = fmt.Fprint(w, `{"items": [{"title": "Checagem", "link": "https://aosfatos.org/x", "snippet": "falso"}]}`)
			return
		}

		if q.Get("q") != "Banco Central juros 12%" {
			t.Errorf("Expected verbatim affirmative query, got %q", q.Get("q"))
		}
		if q.Get("sort") != "date:r:20240301:20240307" {
			t.Errorf("Expected windowed sort, got %s", q.Get("sort"))
		}
		_, _ = fmt.Fprint(w, `{"items": [
			{"title": "A", "link": "https://g1.globo.com/economia/a", "snippet": "sobe"},
			{"title": "B", "link": "https://random-blog.example/b", "snippet": "sobe"}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	window := model.NewDateWindow(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 3)

	set, err := client.Search(context.Background(), "Banco Central juros 12%", &window)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(set.Affirmative) != 2 || len(set.Skeptical) != 1 {
		t.Fatalf("Expected 2/1 items, got %d/%d", len(set.Affirmative), len(set.Skeptical))
	}
	if !set.Affirmative[0].IsTrusted {
		t.Error("Expected g1.globo.com to be trusted")
	}
	if set.Affirmative[1].IsTrusted {
		t.Error("Expected unknown blog to be untrusted")
	}
	if !set.Skeptical[0].IsTrusted {
		t.Error("Expected aosfatos.org to be trusted")
	}
	if calls.Load() != 2 || client.Calls() != 2 {
		t.Errorf("Expected 2 requests, server saw %d, client counted %d", calls.Load(), client.Calls())
	}
}

func TestClient_Search_NoWindowSortsByDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sort"); got != "date" {
			t.Errorf("Expected sort=date, got %s", got)
		}
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	set, err := newTestClient(t, server.URL).Search(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !set.IsEmpty() {
		t.Errorf("Expected empty set, got %+v", set)
	}
	if set.Affirmative == nil || set.Skeptical == nil {
		t.Error("Expected non-nil slices for missing items")
	}
}

func TestClient_Search_QuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("q"), "debunk") {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = fmt.Fprint(w, `{"error": {"code": 429, "message": "Quota exceeded for quota metric 'Queries'", "status": "RESOURCE_EXHAUSTED"}}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"items": []}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Search(context.Background(), "q", nil)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !model.IsQuotaExceeded(err) {
		t.Errorf("Expected quota error to win, got %v", err)
	}

	var searchErr *model.SearchError
	if !errors.As(err, &searchErr) || searchErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected QuotaExceededError to unwrap to a 429 SearchError, got %v", err)
	}
}

func TestClient_Search_PlainError(t *testing.T) {
	tests := []struct {
		status int
		body   string
		desc   string
	}{
		{http.StatusForbidden, `{"error": {"message": "API key not valid"}}`, "forbidden"},
		{http.StatusTooManyRequests, `slow down`, "429 without quota signature"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Search(context.Background(), "q", nil)
			var searchErr *model.SearchError
			if !errors.As(err, &searchErr) {
				t.Fatalf("Expected SearchError, got %v", err)
			}
			if model.IsQuotaExceeded(err) {
				t.Errorf("Expected plain SearchError for %s", tt.desc)
			}
			if !strings.Contains(err.Error(), fmt.Sprint(tt.status)) {
				t.Errorf("Expected status in message, got %v", err)
			}
		})
	}
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(model.SearchConfig{}, model.HTTPConfig{}, Options{Tagger: validate.NewDomainClassifier(nil)})

	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if len(cfgErr.Missing) != 2 {
		t.Errorf("Expected both keys missing, got %v", cfgErr.Missing)
	}
}

func TestSkepticalQuery(t *testing.T) {
	got := SkepticalQuery("vacina causa autismo")
	expected := `vacina causa autismo é falso? farsa fraude checagem OR "vacina causa autismo" fake hoax debunk`
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestIsQuotaBody(t *testing.T) {
	tests := []struct {
		body     string
		expected bool
		desc     string
	}{
		{`{"reason": "rateLimitExceeded"}`, true, "rate limit reason"},
		{`{"reason": "userRateLimitExceeded"}`, true, "user rate limit"},
		{`QUOTA EXCEEDED`, true, "uppercase"},
		{`{"status": "RESOURCE_EXHAUSTED"}`, true, "grpc status"},
		{`try later`, false, "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := isQuotaBody(tt.body); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.body, got)
			}
		})
	}
}
