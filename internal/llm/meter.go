package llm

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ppiankov/truthcheck/internal/logging"
	"github.com/ppiankov/truthcheck/internal/metrics"
)

// Call purposes
const (
	PurposeExtract     = "extract"
	PurposeEntity      = "extract_entity"
	PurposeClaim       = "extract_claim"
	PurposeSynthesize  = "synthesize"
	PurposeSuspicion   = "suspicion"
	PurposeConfirm     = "confirmation"
	PurposeDescribe    = "describe_image"
	promptLogMaxLength = 500
)

// CountingProvider counts the calls made through it and records them as metrics
type CountingProvider struct {
	Provider
	logger *zap.Logger
	calls  atomic.Int64
}

// NewCountingProvider wraps p; logger may be nil
func NewCountingProvider(p Provider, logger *zap.Logger) *CountingProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountingProvider{Provider: p, logger: logger}
}

// Generate forwards the call, counting it whether or not it succeeds
func (c *CountingProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	c.calls.Add(1)
	metrics.RecordLLMCall(req.Purpose)

	if ce := c.logger.Check(zap.DebugLevel, "llm call"); ce != nil {
		ce.Write(
			zap.String("provider", c.Name()),
			zap.String("purpose", req.Purpose),
			zap.Bool("image", req.Image != nil),
			zap.String("prompt", logging.Truncate(req.Prompt, promptLogMaxLength)),
		)
	}

	return c.Provider.Generate(ctx, req)
}

// Calls reports how many calls have been made
func (c *CountingProvider) Calls() int {
	return int(c.calls.Load())
}
