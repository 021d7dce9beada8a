package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/truthcheck/internal/metrics"
	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/util"
	"github.com/ppiankov/truthcheck/internal/worker"
)

const (
	defaultBaseURL = "https://customsearch.googleapis.com"
	maxErrorBody   = 4096
)

// quotaSignatures mark a 429 body as a quota failure rather than a plain error
var quotaSignatures = []string{
	"ratelimitexceeded",
	"resource_exhausted",
	"quota exceeded",
	"quotaexceeded",
	"userratelimitexceeded",
}

// TrustTagger decides the isTrusted flag of a hit
type TrustTagger interface {
	IsTrusted(rawURL string) bool
}

// Client queries the Custom Search JSON API with paired framings
type Client struct {
	apiKey     string
	engineID   string
	baseURL    string
	num        int
	httpClient *http.Client
	tagger     TrustTagger
	limiter    *worker.Limiter
	logger     *zap.Logger
	calls      atomic.Int64
}

// Options carries the collaborators of a Client
type Options struct {
	Tagger  TrustTagger
	Limiter *worker.Limiter
	Logger  *zap.Logger
}

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// NewClient creates a search client. Missing credentials are a ConfigurationError.
func NewClient(cfg model.SearchConfig, httpCfg model.HTTPConfig, opts Options) (*Client, error) {
	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, "search.api_key")
	}
	if cfg.EngineID == "" {
		missing = append(missing, "search.engine_id")
	}
	if len(missing) > 0 {
		return nil, &model.ConfigurationError{Missing: missing}
	}
	if opts.Tagger == nil {
		return nil, errors.New("search client needs a trust tagger")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	num := cfg.ResultsPerQuery
	if num <= 0 || num > 10 {
		num = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		num:      num,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: util.NewTransport(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		},
		tagger:  opts.Tagger,
		limiter: opts.Limiter,
		logger:  logger,
	}, nil
}

// SkepticalQuery wraps a query with fact-check framing keywords
func SkepticalQuery(query string) string {
	return fmt.Sprintf(`%s é falso? farsa fraude checagem OR "%s" fake hoax debunk`, query, query)
}

// Search runs the affirmative and skeptical searches concurrently. The window,
// when set, restricts only the affirmative framing. Either failure fails the
// call, and a quota failure wins over a plain one.
func (c *Client) Search(ctx context.Context, query string, window *model.DateRange) (model.EvidenceSet, error) {
	affirmativeSort := "date"
	if window != nil {
		affirmativeSort = window.SortRestrict()
	}

	var set model.EvidenceSet
	var affErr, skpErr error

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set.Affirmative, affErr = c.searchOne(gCtx, model.FramingAffirmative, query, affirmativeSort)
		return affErr
	})
	g.Go(func() error {
		set.Skeptical, skpErr = c.searchOne(gCtx, model.FramingSkeptical, SkepticalQuery(query), "date")
		return skpErr
	})

	if err := g.Wait(); err != nil {
		for _, e := range []error{affErr, skpErr} {
			if model.IsQuotaExceeded(e) {
				return model.EvidenceSet{}, e
			}
		}
		return model.EvidenceSet{}, err
	}

	c.logger.Debug("search complete",
		zap.String("query", query),
		zap.Int("affirmative", len(set.Affirmative)),
		zap.Int("skeptical", len(set.Skeptical)),
	)
	return set, nil
}

// Calls reports how many requests this client has issued
func (c *Client) Calls() int {
	return int(c.calls.Load())
}

func (c *Client) searchOne(ctx context.Context, framing model.Framing, query, sort string) ([]model.EvidenceItem, error) {
	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, &model.SearchError{Framing: framing, Err: err}
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("num", strconv.Itoa(c.num))
	params.Set("q", query)
	params.Set("sort", sort)
	endpoint := c.baseURL + "/customsearch/v1?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.SearchError{Framing: framing, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	c.calls.Add(1)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordSearchCall(string(framing), metrics.OutcomeError)
		return nil, &model.SearchError{Framing: framing, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		searchErr := &model.SearchError{Framing: framing, StatusCode: resp.StatusCode, Body: string(body)}
		if resp.StatusCode == http.StatusTooManyRequests && isQuotaBody(string(body)) {
			metrics.RecordSearchCall(string(framing), metrics.OutcomeQuota)
			return nil, &model.QuotaExceededError{SearchError: searchErr}
		}
		metrics.RecordSearchCall(string(framing), metrics.OutcomeError)
		return nil, searchErr
	}

	var parsed cseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.RecordSearchCall(string(framing), metrics.OutcomeError)
		return nil, &model.SearchError{Framing: framing, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	metrics.RecordSearchCall(string(framing), metrics.OutcomeOK)

	items := make([]model.EvidenceItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, model.EvidenceItem{
			Title:     it.Title,
			Link:      it.Link,
			Snippet:   it.Snippet,
			IsTrusted: c.tagger.IsTrusted(it.Link),
		})
	}
	return items, nil
}

func isQuotaBody(body string) bool {
	lower := strings.ToLower(body)
	for _, sig := range quotaSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
