package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/truthcheck/internal/model"
)

// Checker analyzes one article URL
type Checker interface {
	CheckURL(ctx context.Context, url string) (*model.Report, error)
}

// CheckJob analyzes one URL of a batch
type CheckJob struct {
	Index   int
	URL     string
	Checker Checker
	Limiter *Limiter
}

// Execute runs the check, waiting on the per-host limiter first
func (j *CheckJob) Execute(ctx context.Context) Result {
	start := time.Now()
	result := &CheckResult{Index: j.Index, URL: j.URL}

	if err := j.Limiter.Wait(ctx, j.URL); err != nil {
		result.Error = err
		return result
	}

	report, err := j.Checker.CheckURL(ctx, j.URL)
	result.Report = report
	result.Error = err
	result.Duration = time.Since(start)
	return result
}

// CheckResult is the outcome of one CheckJob
type CheckResult struct {
	Index    int
	URL      string
	Report   *model.Report
	Error    error
	Duration time.Duration
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many URLs concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor; limiter may be nil
func NewBatchProcessor(checker Checker, concurrency int, limiter *Limiter) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessURLs analyzes urls and returns results in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*CheckResult {
	if len(urls) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, url := range urls {
		pool.Submit(&CheckJob{
			Index:   i,
			URL:     url,
			Checker: b.checker,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, 0, len(results))
	for _, result := range results {
		checkResults = append(checkResults, result.(*CheckResult))
	}
	sort.Slice(checkResults, func(i, j int) bool {
		return checkResults[i].Index < checkResults[j].Index
	})

	return checkResults
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// Summarize counts successes and failures
func Summarize(results []*CheckResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// ReadURLsFromFile reads URLs from a file (one per line). Blank lines and
// # comments are skipped, and URLs that normalize to the same key are kept once.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := model.NormalizeURL(line)
		if !seen[key] {
			seen[key] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
