package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthcheck/internal/model"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.3.0-dev"

var (
	cfgFile string
	verbose bool
	debug   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truthcheck",
	Short: "TruthCheck - fact-check Brazilian news against external sources",
	Long: `TruthCheck estimates how likely a news article is to be true.

It extracts the central claim of the article, searches for affirmative and
skeptical coverage, keeps trusted sources, asks a language model for a
grounded verdict and recalibrates the score with deterministic rules.

The score is an estimate backed by the sources it lists, not a ruling.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of TruthCheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("truthcheck %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.truthcheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(versionCmd)
}

// envAliases are the well-known variables accepted besides TRUTHCHECK_*
var envAliases = map[string][]string{
	"search.api_key":   {"GOOGLE_API_KEY"},
	"search.engine_id": {"GOOGLE_CSE_ID"},
}

// providerKeyEnv names the credential variable of each provider
var providerKeyEnv = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"google":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"claude":    "ANTHROPIC_API_KEY",
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// .env files never override variables already set
	_ = godotenv.Load()
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".truthcheck", ".env"))
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".truthcheck"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TRUTHCHECK_* (llm.api_key -> TRUTHCHECK_LLM_API_KEY)
	viper.SetEnvPrefix("TRUTHCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindConfigKeys(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindConfigKeys makes every config key visible to Unmarshal, so env-only
// values are picked up, and binds the well-known aliases
func bindConfigKeys(v *viper.Viper) {
	for _, key := range configKeys() {
		envs := append([]string{"TRUTHCHECK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envAliases[key]...)
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// configKeys lists the keys read from the environment
func configKeys() []string {
	return []string{
		"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout", "llm.max_tokens",
		"search.api_key", "search.engine_id", "search.base_url", "search.rate_per_second",
		"analysis.confirm_high_confidence", "analysis.escalation_enabled",
		"http.user_agent", "http.respect_robots", "http.http_proxy", "http.https_proxy", "http.no_proxy",
		"cache.enabled", "cache.dir",
		"history.path", "history.max_entries", "history.fresh_for",
		"server.addr",
		"concurrency.workers",
		"user.name",
		"debug",
	}
}

// loadConfig merges defaults, the config file, the environment and flags
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyCredentialAliases(cfg, os.Getenv)

	if err := cfg.Analysis.Weights.Check(); err != nil {
		return nil, fmt.Errorf("analysis.weights: %w", err)
	}
	if cfg.History.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.History.Path = filepath.Join(home, ".truthcheck", "history.db")
		}
	}
	return cfg, nil
}

// applyCredentialAliases fills the provider key and the Ollama endpoint from
// their conventional variables when the config leaves them empty
func applyCredentialAliases(cfg *model.Config, getenv func(string) string) {
	provider := strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[provider]; ok {
			cfg.LLM.APIKey = getenv(name)
		}
	}
	if provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}
}
