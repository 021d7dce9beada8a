package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/truthcheck/internal/cache"
	"github.com/ppiankov/truthcheck/internal/history"
	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/logging"
	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/pipeline"
	"github.com/ppiankov/truthcheck/internal/search"
	"github.com/ppiankov/truthcheck/internal/validate"
	"github.com/ppiankov/truthcheck/internal/worker"
)

// app holds the wired collaborators shared by the commands
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	history  *history.SQLiteStore
	service  *pipeline.Service
	renderer *pipeline.Renderer
}

type appOptions struct {
	force       bool
	quiet       bool // no stderr progress, for batch and serve
	skipHistory bool
}

// newApp validates credentials and wires the pipeline
func newApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	classifier := validate.NewDomainClassifier(&cfg.Domains)
	client, err := search.NewClient(cfg.Search, cfg.HTTP, search.Options{
		Tagger:  classifier,
		Limiter: worker.NewLimiter(cfg.Search.RatePerSecond, cfg.Search.Burst),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	var searcher pipeline.Searcher = client
	if c := cache.New(cfg.Cache, cfg.Search.CacheTTL); c != nil {
		searcher = search.NewCachedClient(client, c, cfg.Search.CacheTTL)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		renderer: pipeline.NewRenderer(verbose),
	}

	var store pipeline.HistoryStore
	if !opts.skipHistory {
		a.history, err = history.Open(cfg.History.Path, cfg.History.MaxEntries)
		if err != nil {
			return nil, err
		}
		store = a.history
	}

	var progress pipeline.ProgressFunc
	if !opts.quiet {
		progress = printProgress
	}

	analyzer := pipeline.NewAnalyzer(cfg, provider, searcher, pipeline.Options{
		Logger:     logger,
		Classifier: classifier,
	})
	// Page fetches are limited per host, independently of the search quota
	fetcher := pipeline.NewFetcher(cfg.HTTP, worker.NewLimiter(2, 2))

	a.service = pipeline.NewService(analyzer, fetcher, pipeline.ServiceOptions{
		History:  store,
		FreshFor: cfg.History.FreshFor,
		Force:    opts.force,
		Progress: progress,
		Logger:   logger,
	})
	return a, nil
}

// Close releases the history database and flushes the logger
func (a *app) Close() {
	if a.history != nil {
		_ = a.history.Close()
	}
	_ = a.logger.Sync()
}

// openHistory opens only the history store, for commands that need no credentials
func openHistory() (*history.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History.Path, cfg.History.MaxEntries)
}

func printProgress(stage pipeline.Stage, message string) {
	if message == "" {
		return
	}
	if stage == pipeline.StageDone {
		fmt.Fprintf(os.Stderr, "✓ %s\n", message)
		return
	}
	fmt.Fprintf(os.Stderr, "⚙️  %s\n", message)
}

// failureMessage is the pt-BR line shown for a failed check
func failureMessage(err error) string {
	return model.UserMessage(err)
}
