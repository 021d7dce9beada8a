package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/truthcheck/internal/extract"
	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/metrics"
	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/score"
	"github.com/ppiankov/truthcheck/internal/validate"
)

// InsufficientEvidenceSummary replaces the model summary when no evidence was found.
// A degraded summary gets it appended instead.
const InsufficientEvidenceSummary = "Evidências insuficientes: nenhuma fonte externa foi encontrada sobre esta alegação. Isso não significa que a notícia seja falsa, apenas que não foi possível verificá-la."

// Stage names one step of an analysis for progress reporting
type Stage string

const (
	StageExtract     Stage = "extract"
	StageSearch      Stage = "search"
	StageFilter      Stage = "filter"
	StageSynthesize  Stage = "synthesize"
	StageEscalate    Stage = "escalate"
	StageRecalibrate Stage = "recalibrate"
	StageSanitize    Stage = "sanitize"
	StageDone        Stage = "done"
)

// ProgressFunc receives stage transitions. It may be nil.
type ProgressFunc func(stage Stage, message string)

// Searcher runs the paired affirmative/skeptical search for one query
type Searcher interface {
	Search(ctx context.Context, query string, window *model.DateRange) (model.EvidenceSet, error)
}

// Request is one article to analyze. Content carries the title on its first line.
type Request struct {
	URL     string
	Content string
	Type    model.ContentType
}

// Result is the outcome of one analysis
type Result struct {
	ID          string
	URL         string
	Title       string
	Type        model.ContentType
	Verdict     model.Verdict
	Claim       model.ExtractedClaim
	Evidence    model.EvidenceSet
	Escalation  model.EscalationTrace
	Signals     []model.Signal
	LLMCalls    int
	SearchCalls int
	Degraded    bool
	AnalyzedAt  time.Time
	Provider    string
}

// Report converts the result into the persisted report
func (r *Result) Report() *model.Report {
	typ := r.Type
	if typ == "" {
		typ = model.ContentText
	}
	return &model.Report{
		ID:         r.ID,
		URL:        r.URL,
		Title:      r.Title,
		Type:       typ,
		AnalyzedAt: r.AnalyzedAt,
		Claim:      r.Claim,
		Evidence:   r.Evidence,
		Verdict:    r.Verdict,
		Escalation: r.Escalation,
		Signals:    r.Signals,
		Usage:      model.Usage{LLMCalls: r.LLMCalls, SearchCalls: r.SearchCalls},
		Provider:   r.Provider,
	}
}

// HistoryEntry converts the result into a history record
func (r *Result) HistoryEntry() model.HistoryEntry {
	typ := r.Type
	if typ == "" {
		typ = model.ContentText
	}
	return model.HistoryEntry{
		ID:         r.ID,
		URL:        r.URL,
		Title:      r.Title,
		ResultText: r.Verdict.JSON(),
		Timestamp:  r.AnalyzedAt,
		Type:       typ,
	}
}

// Options configures an Analyzer
type Options struct {
	Logger     *zap.Logger
	Classifier *validate.DomainClassifier
	Now        func() time.Time
}

// Analyzer runs the fact-check pipeline: extract, search, filter, synthesize,
// escalate at most once, recalibrate and sanitize
type Analyzer struct {
	provider     llm.Provider
	searcher     Searcher
	filter       *validate.TrustFilter
	recalibrator *score.Recalibrator
	cfg          *model.Config
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalyzer creates an analyzer over the given provider and searcher
func NewAnalyzer(cfg *model.Config, provider llm.Provider, searcher Searcher, opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Classifier == nil {
		opts.Classifier = validate.NewDomainClassifier(&cfg.Domains)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Analyzer{
		provider:     provider,
		searcher:     searcher,
		filter:       validate.NewTrustFilter(opts.Classifier),
		recalibrator: score.NewRecalibrator(cfg.Recalibration, cfg.Analysis.Weights, opts.Classifier),
		cfg:          cfg,
		logger:       opts.Logger,
		now:          opts.Now,
	}
}

// countingSearcher counts evidence-client rounds; each round is two provider calls
type countingSearcher struct {
	next   Searcher
	rounds atomic.Int64
}

func (s *countingSearcher) Search(ctx context.Context, query string, window *model.DateRange) (model.EvidenceSet, error) {
	s.rounds.Add(1)
	return s.next.Search(ctx, query, window)
}

// run holds the per-analysis collaborators
type run struct {
	id        string
	logger    *zap.Logger
	progress  ProgressFunc
	provider  *llm.CountingProvider
	searcher  *countingSearcher
	extractor *extract.ClaimExtractor
	synth     *Synthesizer
	escalator *EscalationController
}

func (r *run) report(stage Stage, message string) {
	if r.progress != nil {
		r.progress(stage, message)
	}
}

// Analyze runs the pipeline over one article. Typed errors from the model
// package are returned unchanged; anything else is wrapped in *model.AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := a.logger.With(zap.String("analysis_id", id), zap.String("url", req.URL))

	provider := llm.NewCountingProvider(a.provider, logger)
	r := &run{
		id:        id,
		logger:    logger,
		progress:  progress,
		provider:  provider,
		searcher:  &countingSearcher{next: a.searcher},
		extractor: extract.NewClaimExtractor(provider, a.cfg.Analysis, logger),
		synth:     NewSynthesizer(provider, a.cfg.Analysis, a.now),
		escalator: NewEscalationController(provider, a.cfg.Analysis),
	}

	result, err := a.analyze(ctx, r, req)
	duration := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeError
		if model.IsQuotaExceeded(err) {
			outcome = metrics.OutcomeQuota
		}
		metrics.RecordAnalysis(outcome, duration)
		logger.Warn("analysis failed", zap.Error(err), zap.Duration("duration", duration))
		return nil, err
	}

	metrics.RecordAnalysis(metrics.OutcomeOK, duration)
	logger.Info("analysis complete",
		zap.Int("score", int(result.Verdict.OverallScore)),
		zap.Bool("escalated", result.Escalation.Escalated),
		zap.Int("llm_calls", result.LLMCalls),
		zap.Int("search_calls", result.SearchCalls),
		zap.Duration("duration", duration),
	)
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, r *run, req Request) (*Result, error) {
	title, body := model.SplitContent(req.Content)

	// 1. Extract the claim
	r.report(StageExtract, "Extraindo a alegação principal...")
	claim, err := r.extractor.Extract(ctx, req.Content)
	if err != nil {
		return nil, stageError(StageExtract, err)
	}
	r.logger.Info("claim extracted",
		zap.String("stage", string(StageExtract)),
		zap.String("query", claim.Query()),
		zap.Bool("fallback", claim.Fallback),
	)

	// 2. Paired search
	r.report(StageSearch, "Buscando fontes: "+claim.Query())
	raw, err := r.searcher.Search(ctx, claim.Query(), claim.Window)
	if err != nil {
		return nil, stageError(StageSearch, err)
	}

	// 3. Trust filter
	evidence := a.filter.Apply(raw)
	affTrusted, skeTrusted := evidence.TrustedCounts()
	r.report(StageFilter, "Filtrando fontes confiáveis...")
	r.logger.Info("evidence filtered",
		zap.String("stage", string(StageFilter)),
		zap.Int("affirmative", len(evidence.Affirmative)),
		zap.Int("skeptical", len(evidence.Skeptical)),
		zap.Int("trusted", affTrusted+skeTrusted),
	)

	// 4. Preliminary verdict
	r.report(StageSynthesize, "Gerando veredito...")
	verdict, err := a.synthesize(ctx, r, SynthesisRequest{Title: title, Body: body, Evidence: evidence})
	if err != nil {
		return nil, stageError(StageSynthesize, err)
	}
	r.logger.Info("preliminary verdict",
		zap.String("stage", string(StageSynthesize)),
		zap.Int("score", int(verdict.OverallScore)),
	)

	// 5. At most one escalation
	trace := model.EscalationTrace{PreliminaryScore: int(verdict.OverallScore)}
	kind, reasons := r.escalator.Evaluate(verdict, evidence)
	if kind != "" {
		trace.Kind = string(kind)
		trace.Reasons = reasons
		r.report(StageEscalate, "Reavaliando a análise...")

		verdict, evidence, err = a.escalate(ctx, r, kind, title, body, verdict, evidence, &trace)
		if err != nil {
			return nil, stageError(StageEscalate, err)
		}
	}

	// 6. Recalibrate
	r.report(StageRecalibrate, "Recalibrando a pontuação...")
	verdict, signals := a.recalibrator.Recalibrate(verdict, evidence, req.Content)
	r.logger.Debug("score recalibrated",
		zap.String("stage", string(StageRecalibrate)),
		zap.Int("score", int(verdict.OverallScore)),
		zap.Int("signals", len(signals)),
	)

	// 7. Sanitize citations against what the model was shown
	r.report(StageSanitize, "Validando as fontes citadas...")
	verdict, dropped := validate.Sanitize(verdict, validate.AllowedLinks(evidence))
	if dropped > 0 {
		r.logger.Info("dropped uncited sources", zap.String("stage", string(StageSanitize)), zap.Int("dropped", dropped))
	}

	// A degraded verdict keeps its failure notice ahead of the evidence notice
	if evidence.IsEmpty() {
		if verdict.Degraded {
			verdict.Summary = strings.TrimSpace(verdict.Summary + " " + InsufficientEvidenceSummary)
		} else {
			verdict.Summary = InsufficientEvidenceSummary
		}
	}

	r.report(StageDone, "Análise concluída.")

	resultTitle := title
	if resultTitle == "" {
		resultTitle = claim.Query()
	}

	return &Result{
		ID:          r.id,
		URL:         req.URL,
		Title:       resultTitle,
		Type:        req.Type,
		Verdict:     verdict,
		Claim:       *claim,
		Evidence:    evidence,
		Escalation:  trace,
		Signals:     signals,
		LLMCalls:    r.provider.Calls(),
		SearchCalls: int(r.searcher.rounds.Load()) * 2,
		Degraded:    verdict.Degraded,
		AnalyzedAt:  a.now().UTC(),
		Provider:    a.provider.Name(),
	}, nil
}

// escalate runs the single escalation round. A no-op term keeps the preliminary verdict.
func (a *Analyzer) escalate(ctx context.Context, r *run, kind llm.ReanalysisKind, title, body string,
	prelim model.Verdict, evidence model.EvidenceSet, trace *model.EscalationTrace) (model.Verdict, model.EvidenceSet, error) {
	term, err := r.escalator.Term(ctx, kind, trace.Reasons, title, body, int(prelim.OverallScore))
	if err != nil {
		return prelim, evidence, err
	}
	if term == "" {
		r.logger.Info("escalation skipped",
			zap.String("stage", string(StageEscalate)),
			zap.Strings("reason", trace.Reasons),
		)
		return prelim, evidence, nil
	}

	trace.Escalated = true
	trace.Term = term
	metrics.RecordEscalation(string(kind))
	r.report(StageSearch, "Buscando novas fontes: "+term)

	fresh, err := r.searcher.Search(ctx, term, nil)
	if err != nil {
		return prelim, evidence, err
	}
	merged, added := a.filter.Merge(evidence, fresh)
	trace.NewEvidence = added

	r.logger.Info("escalated",
		zap.String("stage", string(StageEscalate)),
		zap.String("query", term),
		zap.Strings("reason", trace.Reasons),
		zap.Int("affirmative", len(merged.Affirmative)),
		zap.Int("skeptical", len(merged.Skeptical)),
	)

	r.report(StageSynthesize, "Gerando novo veredito...")
	verdict, err := a.synthesize(ctx, r, SynthesisRequest{
		Title:    title,
		Body:     body,
		Evidence: merged,
		Term:     term,
		Kind:     kind,
	})
	if err != nil {
		return prelim, evidence, err
	}
	return verdict, merged, nil
}

// synthesize substitutes the neutral default verdict for an unparsable reply
func (a *Analyzer) synthesize(ctx context.Context, r *run, req SynthesisRequest) (model.Verdict, error) {
	verdict, err := r.synth.Synthesize(ctx, req)
	var synthErr *model.SynthesisError
	if errors.As(err, &synthErr) {
		r.logger.Warn("unparsable verdict, using default",
			zap.String("stage", string(StageSynthesize)),
			zap.Error(err),
			zap.String("reply", llm.Truncate(synthErr.Raw, 300)),
		)
		return model.DefaultVerdict(a.cfg.Analysis.DefaultVerdictScore), nil
	}
	return verdict, err
}

// stageError passes typed errors through and wraps anything else with its stage
func stageError(stage Stage, err error) error {
	var (
		cfgErr      *model.ConfigurationError
		searchErr   *model.SearchError
		quotaErr    *model.QuotaExceededError
		extractErr  *model.ExtractionError
		synthErr    *model.SynthesisError
		analysisErr *model.AnalysisError
	)
	switch {
	case errors.As(err, &quotaErr), errors.As(err, &searchErr), errors.As(err, &cfgErr),
		errors.As(err, &extractErr), errors.As(err, &synthErr), errors.As(err, &analysisErr):
		return err
	default:
		return &model.AnalysisError{Stage: string(stage), Err: err}
	}
}
