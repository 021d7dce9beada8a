package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Portal de Notícias</title>
  <item>
    <title>Antiga</title>
    <link>https://portal.com.br/antiga</link>
    <pubDate>Mon, 04 Mar 2024 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Recente</title>
    <link>https://portal.com.br/recente</link>
    <pubDate>Sat, 09 Mar 2024 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Duplicada</title>
    <link>https://www.portal.com.br/recente/?utm_source=rss</link>
    <pubDate>Sat, 09 Mar 2024 09:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Sem link</title>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "truthcheck-test" {
			t.Errorf("Expected user agent truthcheck-test, got %s", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(rssFixture))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRead(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK)
	reader := NewReader(nil, "truthcheck-test", time.Second)

	feed, err := reader.Read(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if feed.Title != "Portal de Notícias" {
		t.Errorf("Expected feed title, got %s", feed.Title)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("Expected 2 items after dedup, got %d", len(feed.Items))
	}
	if feed.Items[0].Title != "Recente" {
		t.Errorf("Expected newest first, got %s", feed.Items[0].Title)
	}
	urls := feed.URLs()
	if urls[1] != "https://portal.com.br/antiga" {
		t.Errorf("Expected antiga second, got %s", urls[1])
	}
}

func TestReadOptions(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK)
	reader := NewReader(nil, "truthcheck-test", time.Second)

	tests := []struct {
		name  string
		opts  Options
		count int
	}{
		{"limit", Options{Limit: 1}, 1},
		{"since", Options{Since: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)}, 1},
		{"since excludes all", Options{Since: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := reader.Read(context.Background(), srv.URL, tt.opts)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if len(feed.Items) != tt.count {
				t.Errorf("Expected %d items for %s, got %d", tt.count, tt.name, len(feed.Items))
			}
		})
	}
}

func TestReadHTTPError(t *testing.T) {
	srv := newFeedServer(t, http.StatusNotFound)
	reader := NewReader(nil, "truthcheck-test", time.Second)

	if _, err := reader.Read(context.Background(), srv.URL, Options{}); err == nil {
		t.Error("Expected error for 404 feed")
	}
}
