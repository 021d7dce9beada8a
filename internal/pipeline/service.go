package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/truthcheck/internal/extract"
	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/model"
)

// HistoryStore is the persistence the service consults around each analysis
type HistoryStore interface {
	FindFresh(ctx context.Context, url string, maxAge time.Duration) (*model.HistoryEntry, error)
	Save(ctx context.Context, entry model.HistoryEntry) error
}

// CheckStatus tells whether a check ran the pipeline or reused history
type CheckStatus string

const (
	StatusCachedRecent CheckStatus = "cached_recent"
	StatusAnalyzed     CheckStatus = "analyzed"
)

// CheckRequest asks for one article check. Without Content the page at URL is fetched.
type CheckRequest struct {
	URL     string
	Content string
	Force   bool
}

// CheckOutcome is either a fresh history entry or a new analysis
type CheckOutcome struct {
	Status CheckStatus
	Cached *model.HistoryEntry
	Result *Result
}

// Report returns the report for either outcome
func (o *CheckOutcome) Report() *model.Report {
	if o.Result != nil {
		return o.Result.Report()
	}
	return ReportFromHistory(*o.Cached)
}

// ReportFromHistory rebuilds a minimal report from a stored entry
func ReportFromHistory(entry model.HistoryEntry) *model.Report {
	report := &model.Report{
		ID:         entry.ID,
		URL:        entry.URL,
		Title:      entry.Title,
		Type:       entry.Type,
		AnalyzedAt: entry.Timestamp,
		Cached:     true,
	}
	// A stored result that does not decode keeps the zero verdict
	_ = json.Unmarshal([]byte(entry.ResultText), &report.Verdict)
	return report
}

// Service applies the caller policies around the analyzer: history reuse,
// page fetching and persistence. It runs one analysis at a time.
type Service struct {
	analyzer *Analyzer
	fetcher  *Fetcher
	articles *extract.ArticleExtractor
	history  HistoryStore
	freshFor time.Duration
	logger   *zap.Logger
	force    bool
	progress ProgressFunc
	mu       sync.Mutex
}

// ServiceOptions configures a Service. History and Progress may be nil.
type ServiceOptions struct {
	History  HistoryStore
	FreshFor time.Duration
	Force    bool // Skip history reuse for CheckURL
	Progress ProgressFunc
	Logger   *zap.Logger
}

// NewService creates a service
func NewService(analyzer *Analyzer, fetcher *Fetcher, opts ServiceOptions) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		analyzer: analyzer,
		fetcher:  fetcher,
		articles: extract.NewArticleExtractor(),
		history:  opts.History,
		freshFor: opts.FreshFor,
		logger:   opts.Logger,
		force:    opts.Force,
		progress: opts.Progress,
	}
}

// TryLock claims the service for one analysis; callers that get false must not run
func (s *Service) TryLock() bool {
	return s.mu.TryLock()
}

// Unlock releases a claim taken with TryLock
func (s *Service) Unlock() {
	s.mu.Unlock()
}

// CheckURL implements worker.Checker
func (s *Service) CheckURL(ctx context.Context, url string) (*model.Report, error) {
	outcome, err := s.Check(ctx, CheckRequest{URL: url, Force: s.force}, s.progress)
	if err != nil {
		return nil, err
	}
	return outcome.Report(), nil
}

// Check runs one article check
func (s *Service) Check(ctx context.Context, req CheckRequest, progress ProgressFunc) (*CheckOutcome, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" && strings.TrimSpace(req.Content) == "" {
		return nil, &model.ExtractionError{Reason: "no url or content"}
	}

	if cached := s.findFresh(ctx, url, req.Force); cached != nil {
		return &CheckOutcome{Status: StatusCachedRecent, Cached: cached}, nil
	}

	content := req.Content
	if strings.TrimSpace(content) == "" {
		article, err := s.fetchArticle(ctx, url)
		if err != nil {
			return nil, err
		}
		content = article.Content()
	}

	result, err := s.analyzer.Analyze(ctx, Request{URL: url, Content: content, Type: model.ContentText}, progress)
	if err != nil {
		return nil, err
	}
	s.save(ctx, result)
	return &CheckOutcome{Status: StatusAnalyzed, Result: result}, nil
}

// CheckImage analyzes an uploaded image and saves it to history
func (s *Service) CheckImage(ctx context.Context, img llm.Image, progress ProgressFunc) (*Result, error) {
	result, err := s.analyzer.AnalyzeImage(ctx, img, progress)
	if err != nil {
		return nil, err
	}
	s.save(ctx, result)
	return result, nil
}

func (s *Service) fetchArticle(ctx context.Context, url string) (*model.Article, error) {
	if s.fetcher == nil {
		return nil, &model.AnalysisError{Stage: "fetch", Err: fmt.Errorf("no fetcher configured for %s", url)}
	}
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &model.AnalysisError{Stage: "fetch", Err: err}
	}
	return s.articles.Extract(page.HTML, page.FinalURL)
}

func (s *Service) findFresh(ctx context.Context, url string, force bool) *model.HistoryEntry {
	if s.history == nil || force || url == "" {
		return nil
	}
	entry, err := s.history.FindFresh(ctx, url, s.freshFor)
	if err != nil {
		s.logger.Warn("history lookup failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	return entry
}

func (s *Service) save(ctx context.Context, result *Result) {
	if s.history == nil || result.URL == "" {
		return
	}
	if err := s.history.Save(ctx, result.HistoryEntry()); err != nil {
		s.logger.Warn("history save failed", zap.String("url", result.URL), zap.Error(err))
	}
}
