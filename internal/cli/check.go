package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/pipeline"
)

var (
	outJSON  string
	outMD    string
	timeout  time.Duration
	force    bool
	textFile string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [url]",
	Short: "Check a single news article",
	Long: `Check fetches a news article and estimates how likely it is to be true:
- Extract the central entity, claim and event date
- Search affirmative and skeptical coverage
- Keep trusted sources and ask the model for a grounded verdict
- Re-investigate once when the evidence is weak or contradictory
- Recalibrate the score with deterministic rules

A recent analysis of the same URL is reused unless --force is given.

Example:
  truthcheck check https://g1.globo.com/economia/noticia/...
  truthcheck check https://g1.globo.com/... --json report.json --md report.md
  truthcheck check --text-file noticia.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&force, "force", false, "ignore a recent analysis in history")
	checkCmd.Flags().StringVar(&textFile, "text-file", "", "analyze a local text file (title on the first line)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	req := pipeline.CheckRequest{Force: force}
	if len(args) == 1 {
		req.URL = args[0]
	}
	if textFile != "" {
		data, err := os.ReadFile(textFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		req.Content = string(data)
	}
	if req.URL == "" && req.Content == "" {
		return fmt.Errorf("a URL or --text-file is required")
	}

	a, err := newApp(appOptions{force: force})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", describeTarget(req))
		fmt.Fprintf(os.Stderr, "Provider: %s/%s\n", a.cfg.LLM.Provider, a.cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Timeout:  %v\n", timeout)
		fmt.Fprintln(os.Stderr)
	}

	outcome, err := a.service.Check(ctx, req, printProgress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s\n", failureMessage(err))
		return fmt.Errorf("check failed: %w", err)
	}

	report := outcome.Report()
	if outcome.Status == pipeline.StatusCachedRecent {
		fmt.Fprintf(os.Stderr, "✓ Análise recente encontrada (%s). Use --force para reanalisar.\n",
			report.AnalyzedAt.Local().Format("02/01/2006 15:04"))
	}

	return renderOutputs(a.renderer, report, outJSON, outMD)
}

func renderOutputs(renderer *pipeline.Renderer, report *model.Report, jsonPath, mdPath string) error {
	renderer.RenderSummary(os.Stdout, report)

	if jsonPath != "" {
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", jsonPath)
	}
	if mdPath != "" {
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", mdPath)
	}
	return nil
}

func describeTarget(req pipeline.CheckRequest) string {
	if req.URL != "" {
		return req.URL
	}
	return textFile
}
