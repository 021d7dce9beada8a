package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthcheck/internal/pipeline"
	"github.com/ppiankov/truthcheck/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check multiple article URLs from a file in parallel",
	Long: `Batch checks many articles concurrently:
- Read URLs from input file (one per line, # comments allowed)
- Check URLs in parallel with configurable worker count
- Reuse recent analyses from history unless --force is given
- Write a JSON and a Markdown report per article

Example:
  truthcheck batch urls.txt
  truthcheck batch urls.txt --concurrency 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./truthcheck-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 20*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&force, "force", false, "ignore recent analyses in history")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	urls, err := worker.ReadURLsFromFile(file)
	if err != nil {
		return fmt.Errorf("read URLs: %w", err)
	}

	return checkMany("Batch Processing", "Input file", file, urls)
}

// checkMany checks urls on the worker pool and writes one report pair per success
func checkMany(title, sourceLabel, source string, urls []string) error {
	a, err := newApp(appOptions{force: force, quiet: true})
	if err != nil {
		return err
	}
	defer a.Close()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  TruthCheck %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  %-13s %s\n", sourceLabel+":", source)
	fmt.Fprintf(os.Stderr, "  URLs:         %d\n", len(urls))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(a.service, workers, nil)

	fmt.Fprintf(os.Stderr, "⚙️  Checking URLs with %d workers...\n", workers)
	fmt.Fprintf(os.Stderr, "\n")
	results := processor.ProcessURLs(ctx, urls)

	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", result.URL, failureMessage(result.Error))
			continue
		}

		slug := reportSlug(result.Index, result.URL)
		if err := a.renderer.RenderJSON(result.Report, filepath.Join(outputDir, slug+".json")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.URL, err)
			continue
		}
		if err := a.renderer.RenderMarkdown(result.Report, filepath.Join(outputDir, slug+".md")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.URL, err)
			continue
		}

		cached := ""
		if result.Report.Cached {
			cached = " [histórico]"
		}
		fmt.Fprintf(os.Stderr, "✓ %s (pontuação: %d/100)%s\n", result.URL, int(result.Report.Verdict.OverallScore), cached)
	}

	succeeded, failed := worker.Summarize(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// reportSlug builds a file name from the URL host and path, prefixed with the
// batch index so distinct URLs never collide
func reportSlug(index int, rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		name = strings.TrimPrefix(u.Host, "www.") + u.Path
	}
	return fmt.Sprintf("%03d-%s", index+1, sanitizeFilename(name))
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = strings.Trim(replacer.Replace(s), "_-.")
	if s == "" {
		s = "report"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}

var _ worker.Checker = (*pipeline.Service)(nil)
