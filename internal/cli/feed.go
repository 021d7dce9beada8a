package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthcheck/internal/feed"
	"github.com/ppiankov/truthcheck/internal/util"
)

var (
	feedLimit int
	feedSince time.Duration
)

var feedCmd = &cobra.Command{
	Use:   "feed <url>",
	Short: "Check the latest articles of an RSS or Atom feed",
	Long: `Feed reads a news feed and checks its most recent articles like batch.

Example:
  truthcheck feed https://g1.globo.com/rss/g1/ --limit 5
  truthcheck feed https://www.bbc.com/portuguese/index.xml --since 24h`,
	Args: cobra.ExactArgs(1),
	RunE: runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().IntVar(&feedLimit, "limit", 10, "maximum number of articles to check (0 = all)")
	feedCmd.Flags().DurationVar(&feedSince, "since", 0, "only articles published within this duration (0 = any)")
	feedCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	feedCmd.Flags().StringVar(&outputDir, "output-dir", "./truthcheck-reports", "output directory for reports")
	feedCmd.Flags().DurationVar(&batchTimeout, "timeout", 20*time.Minute, "total timeout for feed processing")
	feedCmd.Flags().BoolVar(&force, "force", false, "ignore recent analyses in history")
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := feed.Options{Limit: feedLimit}
	if feedSince > 0 {
		opts.Since = time.Now().Add(-feedSince)
	}

	reader := feed.NewReader(
		util.NewTransport(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		cfg.HTTP.UserAgent,
		cfg.HTTP.Timeout,
	)

	readTimeout := cfg.HTTP.Timeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	parsed, err := reader.Read(ctx, args[0], opts)
	if err != nil {
		return err
	}
	if len(parsed.Items) == 0 {
		return fmt.Errorf("feed %s has no articles to check", args[0])
	}

	source := args[0]
	if parsed.Title != "" {
		source = parsed.Title
	}
	return checkMany("Feed Processing", "Feed", source, parsed.URLs())
}
