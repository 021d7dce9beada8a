package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/model"
)

// dateLayouts are the event-date formats accepted from the model, most specific first
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2006-01",
}

// ClaimExtractor reduces article text to an {entity, claim, date} triple
type ClaimExtractor struct {
	provider llm.Provider
	cfg      model.AnalysisConfig
	logger   *zap.Logger
}

// NewClaimExtractor creates a claim extractor
func NewClaimExtractor(provider llm.Provider, cfg model.AnalysisConfig, logger *zap.Logger) *ClaimExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimExtractor{provider: provider, cfg: cfg, logger: logger}
}

type claimReply struct {
	Entidade string `json:"entidade"`
	Alegacao string `json:"alegacao"`
	Data     string `json:"data"`
}

// Extract runs the structured prompt and, when it does not yield both fields,
// the two single-field fallback prompts. Provider failures abort immediately.
func (e *ClaimExtractor) Extract(ctx context.Context, content string) (*model.ExtractedClaim, error) {
	resp, err := e.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:   llm.ExtractionPrompt(content, e.cfg.ExtractionCharBudget),
		JSONMode: true,
		Purpose:  llm.PurposeExtract,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	reply, parseErr := llm.ParseOrDefault(resp.Text, claimReply{})
	claim := &model.ExtractedClaim{
		Entity: llm.CollapseWhitespace(reply.Entidade),
		Claim:  llm.CollapseWhitespace(reply.Alegacao),
	}

	if parseErr != nil || claim.Entity == "" || claim.Claim == "" {
		e.logger.Debug("structured extraction incomplete, using fallback prompts",
			zap.Bool("parsed", parseErr == nil),
			zap.String("entity", claim.Entity),
			zap.String("claim", claim.Claim),
		)
		if err := e.fallback(ctx, content, claim); err != nil {
			return nil, err
		}
	}

	if claim.Claim == "" {
		return nil, &model.ExtractionError{Reason: "no searchable claim found"}
	}
	if claim.Entity == "" {
		return nil, &model.ExtractionError{Reason: "no central entity found"}
	}

	if date, ok := ParseEventDate(reply.Data); ok {
		claim.EventDate = &date
		window := model.NewDateWindow(date, e.cfg.DateWindowDays)
		claim.Window = &window
	}

	return claim, nil
}

// fallback fills whichever field is missing with its own plain-text prompt.
// An empty entity falls back to the article's title line.
func (e *ClaimExtractor) fallback(ctx context.Context, content string, claim *model.ExtractedClaim) error {
	claim.Fallback = true

	if claim.Entity == "" {
		resp, err := e.provider.Generate(ctx, llm.GenerateRequest{
			Prompt:  llm.EntityFallbackPrompt(content, e.cfg.FallbackCharBudget),
			Purpose: llm.PurposeEntity,
		})
		if err != nil {
			return fmt.Errorf("entity fallback call: %w", err)
		}
		claim.Entity = llm.CleanText(resp.Text)
		if claim.Entity == "" {
			title, _ := model.SplitContent(content)
			claim.Entity = title
		}
	}

	if claim.Claim == "" {
		resp, err := e.provider.Generate(ctx, llm.GenerateRequest{
			Prompt:  llm.ClaimFallbackPrompt(content, e.cfg.FallbackCharBudget, e.cfg.MaxSuspicionWords),
			Purpose: llm.PurposeClaim,
		})
		if err != nil {
			return fmt.Errorf("claim fallback call: %w", err)
		}
		claim.Claim = llm.LimitWords(llm.CleanText(resp.Text), e.cfg.MaxSuspicionWords)
	}

	return nil
}

// ParseEventDate accepts the date formats models commonly emit. Missing or
// unparseable dates report false.
func ParseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
