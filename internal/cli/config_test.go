package cli

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthcheck/internal/model"
)

func TestApplyCredentialAliases(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":    "gem",
		"OPENAI_API_KEY":    "oai",
		"ANTHROPIC_API_KEY": "ant",
		"OLLAMA_BASE_URL":   "http://ollama:11434",
	}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantKey  string
		wantBase string
	}{
		{"gemini", "gemini", "", "gem", ""},
		{"openai", "OpenAI", "", "oai", ""},
		{"claude alias", "claude", "", "ant", ""},
		{"explicit key wins", "gemini", "cfg", "cfg", ""},
		{"ollama base url", "ollama", "", "", "http://ollama:11434"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig()
			cfg.LLM.Provider = tt.provider
			cfg.LLM.APIKey = tt.apiKey
			applyCredentialAliases(cfg, getenv)

			if cfg.LLM.APIKey != tt.wantKey {
				t.Errorf("Expected key %q for %s, got %q", tt.wantKey, tt.name, cfg.LLM.APIKey)
			}
			if cfg.LLM.BaseURL != tt.wantBase {
				t.Errorf("Expected base URL %q for %s, got %q", tt.wantBase, tt.name, cfg.LLM.BaseURL)
			}
		})
	}
}

func TestDecodeConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "search-key")
	t.Setenv("GOOGLE_CSE_ID", "engine")
	t.Setenv("TRUTHCHECK_LLM_MODEL", "gemini-2.0-flash")
	t.Setenv("TRUTHCHECK_HISTORY_FRESH_FOR", "2h")
	t.Setenv("TRUTHCHECK_HISTORY_PATH", "/tmp/history.db")

	v := viper.New()
	v.SetEnvPrefix("TRUTHCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindConfigKeys(v)

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	if cfg.Search.APIKey != "search-key" {
		t.Errorf("Expected search key from GOOGLE_API_KEY, got %q", cfg.Search.APIKey)
	}
	if cfg.Search.EngineID != "engine" {
		t.Errorf("Expected engine id from GOOGLE_CSE_ID, got %q", cfg.Search.EngineID)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("Expected model override, got %q", cfg.LLM.Model)
	}
	if cfg.History.FreshFor.Hours() != 2 {
		t.Errorf("Expected fresh_for 2h, got %v", cfg.History.FreshFor)
	}
	if cfg.History.Path != "/tmp/history.db" {
		t.Errorf("Expected history path override, got %q", cfg.History.Path)
	}
	// Untouched defaults survive
	if cfg.Analysis.LowConfidenceThreshold != 40 {
		t.Errorf("Expected default threshold 40, got %d", cfg.Analysis.LowConfidenceThreshold)
	}
}

func TestDecodeConfigFromFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
llm:
  provider: openai
  model: gpt-4o-mini
analysis:
  weights:
    facts: 0.5
    sources: 0.4
    title: 0.1
history:
  path: /tmp/h.db
`))
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", cfg.LLM.Provider)
	}
	if cfg.Analysis.Weights.Sources != 0.4 {
		t.Errorf("Expected sources weight 0.4, got %v", cfg.Analysis.Weights.Sources)
	}

	bad := viper.New()
	bad.SetConfigType("yaml")
	_ = bad.ReadConfig(strings.NewReader("analysis:\n  weights:\n    facts: 0.9\n    sources: 0.9\n    title: 0.1\n"))
	if _, err := decodeConfig(bad); err == nil {
		t.Error("Expected error for weights not summing to 1")
	}
}

func TestDefaultConfigFile(t *testing.T) {
	data, err := defaultConfigFile()
	if err != nil {
		t.Fatalf("defaultConfigFile failed: %v", err)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Expected valid YAML, got error: %v", err)
	}
	if cfg.Analysis.MinEvidence != 4 {
		t.Errorf("Expected min_evidence 4, got %d", cfg.Analysis.MinEvidence)
	}
	if !strings.Contains(string(data), "GOOGLE_CSE_ID") {
		t.Error("Expected credential hints in the footer")
	}
}

func TestMaskCredentials(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-abcdef123456"
	cfg.Search.APIKey = "abc"

	masked := maskCredentials(*cfg)
	if masked.LLM.APIKey != "****3456" {
		t.Errorf("Expected ****3456, got %s", masked.LLM.APIKey)
	}
	if masked.Search.APIKey != "****" {
		t.Errorf("Expected ****, got %s", masked.Search.APIKey)
	}
	if cfg.LLM.APIKey != "sk-abcdef123456" {
		t.Error("Expected original config untouched")
	}
}

func TestReportSlug(t *testing.T) {
	tests := []struct {
		index int
		url   string
		want  string
	}{
		{0, "https://www.g1.globo.com/economia/noticia/juros.ghtml", "001-g1.globo.com_economia_noticia_juros.ghtml"},
		{9, "https://folha.uol.com.br/", "010-folha.uol.com.br"},
		{2, "not a url", "003-not-a-url"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := reportSlug(tt.index, tt.url); got != tt.want {
				t.Errorf("Expected %s for %s, got %s", tt.want, tt.url, got)
			}
		})
	}
}
