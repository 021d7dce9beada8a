package model

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports missing credentials or ids. It is raised before any network call.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// SearchError is a non-2xx reply (or transport failure) from the search provider
type SearchError struct {
	Framing    Framing
	StatusCode int
	Body       string
	Err        error
}

func (e *SearchError) Error() string {
	var b strings.Builder
	b.WriteString("search")
	if e.Framing != "" {
		b.WriteString(" (" + string(e.Framing) + ")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Body != "" {
		b.WriteString(": " + truncate(e.Body, 300))
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// QuotaExceededError is a SearchError carrying the provider's rate-limit signature.
// Callers must treat it as terminal.
type QuotaExceededError struct {
	*SearchError
}

func (e *QuotaExceededError) Error() string {
	return "search quota exceeded: " + e.SearchError.Error()
}

// Unwrap exposes the embedded SearchError so errors.As matches both types
func (e *QuotaExceededError) Unwrap() error {
	return e.SearchError
}

// ExtractionError means no usable entity/claim could be produced from the article
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("claim extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "claim extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// SynthesisError means the verdict reply could not be parsed
type SynthesisError struct {
	Raw string
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("verdict synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// AnalysisError wraps any untyped failure with the stage it happened in
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed at %s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// IsQuotaExceeded reports whether err carries a search quota failure
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// UserMessage returns the message shown to a person for err (pt-BR, as the rest of the product)
func UserMessage(err error) string {
	var cfgErr *ConfigurationError
	var extErr *ExtractionError
	switch {
	case err == nil:
		return ""
	case IsQuotaExceeded(err):
		return "Limite de buscas atingido. Tente novamente mais tarde."
	case errors.As(err, &cfgErr):
		return "Configuração incompleta: " + strings.Join(cfgErr.Missing, ", ")
	case errors.As(err, &extErr):
		return "Não foi possível identificar uma alegação verificável no conteúdo."
	default:
		return "Erro na análise: " + err.Error()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
