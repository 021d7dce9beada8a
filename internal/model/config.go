package model

import (
	"fmt"
	"time"
)

// Config is the complete runtime configuration. Every threshold the pipeline
// applies lives here rather than in code.
type Config struct {
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	Analysis      AnalysisConfig      `yaml:"analysis" mapstructure:"analysis"`
	Recalibration RecalibrationConfig `yaml:"recalibration" mapstructure:"recalibration"`
	Domains       DomainConfig        `yaml:"domains" mapstructure:"domains"`
	HTTP          HTTPConfig          `yaml:"http" mapstructure:"http"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	History       HistoryConfig       `yaml:"history" mapstructure:"history"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Concurrency   ConcurrencyConfig   `yaml:"concurrency" mapstructure:"concurrency"`
	User          UserConfig          `yaml:"user" mapstructure:"user"`
	Debug         bool                `yaml:"debug" mapstructure:"debug"`
}

// LLMConfig selects and configures the language-model provider
type LLMConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the Custom Search JSON API client
type SearchConfig struct {
	APIKey          string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	EngineID        string        `yaml:"engine_id,omitempty" mapstructure:"engine_id"`
	BaseURL         string        `yaml:"base_url" mapstructure:"base_url"`
	ResultsPerQuery int           `yaml:"results_per_query" mapstructure:"results_per_query"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RatePerSecond   float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst           int           `yaml:"burst" mapstructure:"burst"`
	CacheTTL        time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// AnalysisConfig holds the orchestration thresholds
type AnalysisConfig struct {
	LowConfidenceThreshold  int     `yaml:"low_confidence_threshold" mapstructure:"low_confidence_threshold"`
	HighConfidenceThreshold int     `yaml:"high_confidence_threshold" mapstructure:"high_confidence_threshold"`
	ConfirmHighConfidence   bool    `yaml:"confirm_high_confidence" mapstructure:"confirm_high_confidence"`
	EscalationEnabled       bool    `yaml:"escalation_enabled" mapstructure:"escalation_enabled"`
	MinEvidence             int     `yaml:"min_evidence" mapstructure:"min_evidence"`
	ConflictMargin          int     `yaml:"conflict_margin" mapstructure:"conflict_margin"`
	DateWindowDays          int     `yaml:"date_window_days" mapstructure:"date_window_days"`
	ArticleCharBudget       int     `yaml:"article_char_budget" mapstructure:"article_char_budget"`
	ExtractionCharBudget    int     `yaml:"extraction_char_budget" mapstructure:"extraction_char_budget"`
	FallbackCharBudget      int     `yaml:"fallback_char_budget" mapstructure:"fallback_char_budget"`
	MaxSuspicionWords       int     `yaml:"max_suspicion_words" mapstructure:"max_suspicion_words"`
	DefaultVerdictScore     int     `yaml:"default_verdict_score" mapstructure:"default_verdict_score"`
	Weights                 Weights `yaml:"weights" mapstructure:"weights"`
}

// Weights combine the three sub-scores into the overall score
type Weights struct {
	Facts   float64 `yaml:"facts" mapstructure:"facts"`
	Sources float64 `yaml:"sources" mapstructure:"sources"`
	Title   float64 `yaml:"title" mapstructure:"title"`
}

// Combine applies the weights to the three sub-scores
func (w Weights) Combine(facts, sources, title float64) float64 {
	return facts*w.Facts + sources*w.Sources + title*w.Title
}

// Percent renders the weights as whole percentages (for prompts)
func (w Weights) Percent() (facts, sources, title int) {
	return int(w.Facts*100 + 0.5), int(w.Sources*100 + 0.5), int(w.Title*100 + 0.5)
}

// RecalibrationConfig holds the score recalibration constants
type RecalibrationConfig struct {
	StrongFloorCount          int `yaml:"strong_floor_count" mapstructure:"strong_floor_count"`
	StrongFloor               int `yaml:"strong_floor" mapstructure:"strong_floor"`
	ModerateFloorCount        int `yaml:"moderate_floor_count" mapstructure:"moderate_floor_count"`
	ModerateFloor             int `yaml:"moderate_floor" mapstructure:"moderate_floor"`
	SkepticalPenaltyPerSource int `yaml:"skeptical_penalty_per_source" mapstructure:"skeptical_penalty_per_source"`
	MaxSkepticalPenalty       int `yaml:"max_skeptical_penalty" mapstructure:"max_skeptical_penalty"`
	MedicalCap                int `yaml:"medical_cap" mapstructure:"medical_cap"`
	NoPeerReviewCap           int `yaml:"no_peer_review_cap" mapstructure:"no_peer_review_cap"`
	NoEvidenceCap             int `yaml:"no_evidence_cap" mapstructure:"no_evidence_cap"`
}

// DomainConfig holds the curated domain lists. Entries match the host or any subdomain.
type DomainConfig struct {
	Academic []string `yaml:"academic" mapstructure:"academic"`
	Trusted  []string `yaml:"trusted" mapstructure:"trusted"`
	LowTrust []string `yaml:"low_trust" mapstructure:"low_trust"`
}

// HTTPConfig configures article fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the search-result cache
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"` // Empty keeps the cache in memory only
}

// HistoryConfig configures the history store
type HistoryConfig struct {
	Path       string        `yaml:"path" mapstructure:"path"`
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
	FreshFor   time.Duration `yaml:"fresh_for" mapstructure:"fresh_for"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// UserConfig holds display preferences
type UserConfig struct {
	Name string `yaml:"name,omitempty" mapstructure:"name"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.5-flash",
			Timeout:   60 * time.Second,
			MaxTokens: 2048,
		},
		Search: SearchConfig{
			BaseURL:         "https://customsearch.googleapis.com",
			ResultsPerQuery: 10,
			Timeout:         20 * time.Second,
			RatePerSecond:   2,
			Burst:           2,
			CacheTTL:        time.Hour,
		},
		Analysis: AnalysisConfig{
			LowConfidenceThreshold:  40,
			HighConfidenceThreshold: 90,
			ConfirmHighConfidence:   false,
			EscalationEnabled:       true,
			MinEvidence:             4,
			ConflictMargin:          1,
			DateWindowDays:          3,
			ArticleCharBudget:       2000,
			ExtractionCharBudget:    1500,
			FallbackCharBudget:      1000,
			MaxSuspicionWords:       7,
			DefaultVerdictScore:     70,
			Weights:                 Weights{Facts: 0.6, Sources: 0.3, Title: 0.1},
		},
		Recalibration: RecalibrationConfig{
			StrongFloorCount:          3,
			StrongFloor:               90,
			ModerateFloorCount:        2,
			ModerateFloor:             85,
			SkepticalPenaltyPerSource: 10,
			MaxSkepticalPenalty:       20,
			MedicalCap:                35,
			NoPeerReviewCap:           30,
			NoEvidenceCap:             25,
		},
		Domains: DomainConfig{
			Academic: append([]string(nil), DefaultAcademicDomains...),
			Trusted:  append([]string(nil), DefaultTrustedDomains...),
			LowTrust: append([]string(nil), DefaultLowTrustDomains...),
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "TruthCheck/0.3 (+https://github.com/ppiankov/truthcheck)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		History: HistoryConfig{
			MaxEntries: 100,
			FreshFor:   24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:3000",
			RequestTimeout: 3 * time.Minute,
			MaxBodyBytes:   10 << 20,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
	}
}

// Validate reports every missing credential at once
func (c *Config) Validate() error {
	var missing []string
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		missing = append(missing, "llm.api_key")
	}
	if c.Search.APIKey == "" {
		missing = append(missing, "search.api_key")
	}
	if c.Search.EngineID == "" {
		missing = append(missing, "search.engine_id")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// Check rejects weight sets that cannot produce a 0-100 score
func (w Weights) Check() error {
	if w.Facts < 0 || w.Sources < 0 || w.Title < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	sum := w.Facts + w.Sources + w.Title
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("weights must sum to 1.0, got %.2f", sum)
	}
	return nil
}

// DefaultAcademicDomains are public-health, science and government sources.
// They count as trusted and as peer-reviewed backing for medical claims.
var DefaultAcademicDomains = []string{
	"who.int",
	"paho.org",
	"nih.gov",
	"cdc.gov",
	"fda.gov",
	"gov.br",
	"gov",
	"edu",
	"ac.uk",
	"europa.eu",
	"scielo.br",
	"scielo.org",
	"fiocruz.br",
	"usp.br",
	"unicamp.br",
	"ufrj.br",
	"nature.com",
	"thelancet.com",
	"science.org",
	"nejm.org",
	"bmj.com",
	"jamanetwork.com",
	"cochranelibrary.com",
	"sciencedirect.com",
	"springer.com",
	"plos.org",
}

// DefaultTrustedDomains are wire services, major outlets and fact-checkers
var DefaultTrustedDomains = []string{
	"bbc.com",
	"nytimes.com",
	"theguardian.com",
	"reuters.com",
	"apnews.com",
	"cnn.com",
	"estadao.com.br",
	"g1.globo.com",
	"globo.com",
	"oglobo.globo.com",
	"folha.uol.com.br",
	"uol.com.br",
	"terra.com.br",
	"r7.com",
	"correiobraziliense.com.br",
	"veja.abril.com.br",
	"band.uol.com.br",
	"cnnbrasil.com.br",
	"agencialupa.com",
	"lupa.uol.com.br",
	"aosfatos.org",
	"boatos.org",
	"e-farsas.com",
	"projetocomprova.com.br",
	"drauziovarella.uol.com.br",
	"variety.com",
	"hollywoodreporter.com",
	"deadline.com",
	"washingtonpost.com",
	"time.com",
	"hbo.com",
	"wbd.com",
	"press.wbd.com",
	"warnerbros.com",
}

// DefaultLowTrustDomains are social, user-generated, wiki and blog platforms
var DefaultLowTrustDomains = []string{
	"tiktok.com",
	"instagram.com",
	"facebook.com",
	"x.com",
	"twitter.com",
	"youtube.com",
	"medium.com",
	"reddit.com",
	"quora.com",
	"telegram.me",
	"t.me",
	"threads.net",
	"bsky.app",
	"gettr.com",
	"truthsocial.com",
	"kwai.com",
	"blogspot.com",
	"wordpress.com",
	"wikipedia.org",
}
