package model

import "time"

// Report is the persisted, presentation-ready outcome of one analysis
type Report struct {
	ID         string          `json:"id"`
	URL        string          `json:"url"`
	Title      string          `json:"title,omitempty"`
	Type       ContentType     `json:"type"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
	Claim      ExtractedClaim  `json:"claim"`
	Evidence   EvidenceSet     `json:"evidence"`
	Verdict    Verdict         `json:"verdict"`
	Escalation EscalationTrace `json:"escalation"`
	Signals    []Signal        `json:"signals"`            // Recalibration rules that fired, with inputs
	Usage      Usage           `json:"usage"`              // Metered calls spent on this analysis
	Provider   string          `json:"provider,omitempty"` // LLM provider name
	Cached     bool            `json:"cached,omitempty"`   // Served from a fresh history entry
}

// EscalationTrace records whether and why the preliminary verdict was re-examined
type EscalationTrace struct {
	Escalated        bool     `json:"escalated"`
	Kind             string   `json:"kind,omitempty"`    // suspicion or confirmation
	Reasons          []string `json:"reasons,omitempty"` // low_score, thin_coverage, no_trusted, conflict, high_confidence
	Term             string   `json:"term,omitempty"`
	PreliminaryScore int      `json:"preliminary_score"`
	NewEvidence      int      `json:"new_evidence"`
}

// Usage counts metered external calls
type Usage struct {
	LLMCalls    int `json:"llm_calls"`
	SearchCalls int `json:"search_calls"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Transparent scoring data (formulas, inputs)
}

// SignalType classifies the recalibration rule that produced a signal
type SignalType string

const (
	SignalBaseScore        SignalType = "base_score"        // Weighted sub-score combination
	SignalTrustedFloor     SignalType = "trusted_floor"     // Floor from trusted confirmations
	SignalSkepticalPenalty SignalType = "skeptical_penalty" // Trusted contesting sources
	SignalMedicalCap       SignalType = "medical_cap"       // Health claim without academic backing
	SignalNoPeerReview     SignalType = "no_peer_review"    // Text admits absence of peer review
	SignalNoEvidence       SignalType = "no_evidence"       // Both evidence sets empty
	SignalDegraded         SignalType = "degraded_verdict"  // Model reply replaced by default
	SignalClamp            SignalType = "clamp"             // Bounded to [0, 100]
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Confidence maps a final score to a coarse band for summaries
func Confidence(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}
