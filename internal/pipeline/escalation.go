package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/model"
)

// Escalation trigger reasons
const (
	ReasonLowScore       = "low_score"
	ReasonThinCoverage   = "thin_coverage"
	ReasonNoTrusted      = "no_trusted"
	ReasonConflict       = "conflict"
	ReasonHighConfidence = "high_confidence"
)

// noTermSentinel is the reply meaning the model found nothing specific to search
const noTermSentinel = "n/a"

// EscalationState is the controller's position. Escalated is terminal.
type EscalationState int

const (
	StatePreliminary EscalationState = iota
	StateEscalated
)

// EscalationController decides whether a preliminary verdict gets one more
// search round and produces the term to search for
type EscalationController struct {
	provider llm.Provider
	cfg      model.AnalysisConfig
	state    EscalationState
}

// NewEscalationController creates a controller for a single analysis
func NewEscalationController(provider llm.Provider, cfg model.AnalysisConfig) *EscalationController {
	return &EscalationController{provider: provider, cfg: cfg}
}

// State reports whether the escalation has already been used
func (c *EscalationController) State() EscalationState {
	return c.state
}

// Evaluate returns the escalation kind and the triggers that fired, or an empty
// kind when the preliminary verdict stands
func (c *EscalationController) Evaluate(v model.Verdict, evidence model.EvidenceSet) (llm.ReanalysisKind, []string) {
	if !c.cfg.EscalationEnabled || c.state == StateEscalated {
		return "", nil
	}

	score := int(v.OverallScore)
	affTrusted, skeTrusted := evidence.TrustedCounts()

	var reasons []string
	if score <= c.cfg.LowConfidenceThreshold {
		reasons = append(reasons, ReasonLowScore)
	}
	if evidence.Len() < c.cfg.MinEvidence {
		reasons = append(reasons, ReasonThinCoverage)
	}
	if affTrusted+skeTrusted == 0 {
		reasons = append(reasons, ReasonNoTrusted)
	}
	if skeTrusted > 0 && skeTrusted >= affTrusted+c.cfg.ConflictMargin {
		reasons = append(reasons, ReasonConflict)
	}
	if len(reasons) > 0 {
		return llm.ReanalysisSuspicion, reasons
	}

	if c.cfg.ConfirmHighConfidence && score >= c.cfg.HighConfidenceThreshold {
		return llm.ReanalysisConfirmation, []string{ReasonHighConfidence}
	}
	return "", nil
}

// Term asks the model for the single term to investigate and moves the
// controller to its terminal state. reasons are the triggers Evaluate returned.
// An empty term means the escalation is a no-op.
func (c *EscalationController) Term(ctx context.Context, kind llm.ReanalysisKind, reasons []string, title, body string, score int) (string, error) {
	if c.state == StateEscalated {
		return "", nil
	}
	c.state = StateEscalated

	req := llm.GenerateRequest{
		Prompt:  llm.SuspicionPrompt(title, body, score, slices.Contains(reasons, ReasonLowScore), c.cfg.MaxSuspicionWords, c.cfg.ArticleCharBudget),
		Purpose: llm.PurposeSuspicion,
	}
	if kind == llm.ReanalysisConfirmation {
		req.Prompt = llm.ConfirmationPrompt(title, body, score, c.cfg.MaxSuspicionWords, c.cfg.ArticleCharBudget)
		req.Purpose = llm.PurposeConfirm
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s call: %w", kind, err)
	}
	return CleanTerm(resp.Text, c.cfg.MaxSuspicionWords), nil
}

// CleanTerm normalizes a term reply. Quotes are stripped, the sentinel "N/A"
// (anywhere, any case) yields "", and the result is limited to maxWords words.
func CleanTerm(raw string, maxWords int) string {
	term := llm.StripQuotes(llm.CleanText(raw))
	if strings.Contains(strings.ToLower(term), noTermSentinel) {
		return ""
	}
	return llm.LimitWords(term, maxWords)
}
