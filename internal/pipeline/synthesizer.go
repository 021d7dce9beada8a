package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/model"
)

// Synthesizer asks the model for a verdict grounded on the evidence set
type Synthesizer struct {
	provider llm.Provider
	cfg      model.AnalysisConfig
	now      func() time.Time
}

// NewSynthesizer creates a synthesizer. now may be nil.
func NewSynthesizer(provider llm.Provider, cfg model.AnalysisConfig, now func() time.Time) *Synthesizer {
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{provider: provider, cfg: cfg, now: now}
}

// SynthesisRequest is the article and evidence for one verdict call. Term and
// Kind are set when re-analyzing after escalation.
type SynthesisRequest struct {
	Title    string
	Body     string
	Evidence model.EvidenceSet
	Term     string
	Kind     llm.ReanalysisKind
}

// Synthesize returns the parsed verdict. Provider failures are returned as is;
// an unparsable reply yields *model.SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (model.Verdict, error) {
	prompt := llm.SynthesisPrompt(llm.SynthesisInput{
		Today:      s.now(),
		Title:      req.Title,
		Body:       req.Body,
		BodyBudget: s.cfg.ArticleCharBudget,
		Evidence:   req.Evidence,
		Weights:    s.cfg.Weights,
		Term:       req.Term,
		Kind:       req.Kind,
	})

	resp, err := s.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:   prompt,
		JSONMode: true,
		Purpose:  llm.PurposeSynthesize,
	})
	if err != nil {
		return model.Verdict{}, fmt.Errorf("synthesis call: %w", err)
	}

	var v model.Verdict
	if err := llm.ParseJSON(resp.Text, &v); err != nil {
		return model.Verdict{}, &model.SynthesisError{Raw: resp.Text, Err: err}
	}

	v.Summary = llm.CollapseWhitespace(v.Summary)
	if v.OverallScore > 95 {
		v.OverallScore = 100
	}
	return v, nil
}
