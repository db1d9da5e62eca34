package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider holds the per-backend dispatch settings. A provider is eligible
// for dispatch only when Enabled is true.
type Provider struct {
	Enabled     bool          `yaml:"enabled"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
}

// Mode bounds one analysis preset (quick/guided/expert).
type Mode struct {
	MaxModules int    `yaml:"max_modules"`
	OutputMode string `yaml:"output_mode"`
	Focus      string `yaml:"focus"`
}

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Dev struct {
		Mode           bool `yaml:"mode"`
		MockResponses  bool `yaml:"mock_llm_responses"`
		SimulateDelays bool `yaml:"simulate_delays"`
	} `yaml:"dev"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		URL      string        `yaml:"url"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
	Providers map[string]Provider `yaml:"providers"`
	Aliases   map[string]Alias    `yaml:"aliases"`
	Modes     map[string]Mode     `yaml:"modes"`
	Analysis  struct {
		DefaultModel        string        `yaml:"default_model"`
		FallbackModels      []string      `yaml:"fallback_models"`
		MaxInputLength      int           `yaml:"max_input_length"`
		MaxPrimaryPremises  int           `yaml:"max_primary_premises"`
		MaxSecondaryPremises int          `yaml:"max_secondary_premises"`
		MinRelevance        float64       `yaml:"min_relevance"`
		PremiseThreshold    int           `yaml:"premise_threshold"`
		EnableWisdomOverlay bool          `yaml:"enable_wisdom_overlay"`
		AutoSelectModules   bool          `yaml:"auto_select_modules"`
		Timeout             time.Duration `yaml:"timeout"`
		BackoffBase         time.Duration `yaml:"backoff_base"`
	} `yaml:"analysis"`
	Library struct {
		PremisePath string `yaml:"premise_path"`
		ModulePath  string `yaml:"module_path"`
	} `yaml:"library"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Alias maps a short model name (e.g. "gpt-4", "claude") to a provider and
// its canonical model identifier.
type Alias struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8090"
	cfg.Dev.Mode = true
	cfg.Dev.MockResponses = true
	cfg.Redis.CacheTTL = 15 * time.Minute
	cfg.Providers = map[string]Provider{
		"openai": {
			Model:       "gpt-4",
			MaxTokens:   4000,
			Temperature: 0.3,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
		},
		"deepseek": {
			Model:       "deepseek-chat",
			MaxTokens:   4000,
			Temperature: 0.3,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
			BaseURL:     "https://api.deepseek.com/v1",
		},
		"anthropic": {
			Model:       "claude-3-sonnet-20240229",
			MaxTokens:   4000,
			Temperature: 0.3,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
		},
		"gemini": {
			Model:       "gemini-pro",
			MaxTokens:   4000,
			Temperature: 0.3,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
		},
		"ollama": {
			Model:       "llama3",
			MaxTokens:   4000,
			Temperature: 0.3,
			Timeout:     120 * time.Second,
			MaxRetries:  2,
			BaseURL:     "http://localhost:11434",
		},
		"mock": {
			Enabled:     true,
			Model:       "mock-analyst",
			MaxTokens:   4000,
			Temperature: 0.0,
			Timeout:     5 * time.Second,
			MaxRetries:  1,
		},
	}
	cfg.Aliases = map[string]Alias{
		"gpt":           {Provider: "openai", Model: "gpt-4"},
		"gpt-4":         {Provider: "openai", Model: "gpt-4"},
		"gpt-4-turbo":   {Provider: "openai", Model: "gpt-4-turbo-preview"},
		"gpt-3.5":       {Provider: "openai", Model: "gpt-3.5-turbo"},
		"deepseek":      {Provider: "deepseek", Model: "deepseek-chat"},
		"deepseek-chat": {Provider: "deepseek", Model: "deepseek-chat"},
		"claude":        {Provider: "anthropic", Model: "claude-3-sonnet-20240229"},
		"claude-3":      {Provider: "anthropic", Model: "claude-3-sonnet-20240229"},
		"claude-sonnet": {Provider: "anthropic", Model: "claude-3-sonnet-20240229"},
		"gemini":        {Provider: "gemini", Model: "gemini-pro"},
		"gemini-pro":    {Provider: "gemini", Model: "gemini-pro"},
		"gemini-1.5":    {Provider: "gemini", Model: "gemini-1.5-pro-latest"},
		"llama":         {Provider: "ollama", Model: "llama3"},
		"mock":          {Provider: "mock", Model: "mock-analyst"},
	}
	cfg.Modes = map[string]Mode{
		"quick":  {MaxModules: 3, OutputMode: "brief", Focus: "essential"},
		"guided": {MaxModules: 5, OutputMode: "analytical", Focus: "structured"},
		"expert": {MaxModules: 7, OutputMode: "analytical", Focus: "comprehensive"},
	}
	cfg.Analysis.DefaultModel = "mock"
	cfg.Analysis.MaxInputLength = 10000
	cfg.Analysis.MaxPrimaryPremises = 5
	cfg.Analysis.MaxSecondaryPremises = 3
	cfg.Analysis.MinRelevance = 0.2
	cfg.Analysis.PremiseThreshold = 3
	cfg.Analysis.EnableWisdomOverlay = true
	cfg.Analysis.AutoSelectModules = true
	cfg.Analysis.Timeout = 120 * time.Second
	cfg.Analysis.BackoffBase = 500 * time.Millisecond
	cfg.Log.Level = "info"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RAI_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("RAI_DEV_MODE"); v != "" {
		cfg.Dev.Mode = parseBool(v, cfg.Dev.Mode)
	}
	if v := os.Getenv("RAI_MOCK_LLM_RESPONSES"); v != "" {
		cfg.Dev.MockResponses = parseBool(v, cfg.Dev.MockResponses)
	}
	if v := os.Getenv("RAI_SIMULATE_DELAYS"); v != "" {
		cfg.Dev.SimulateDelays = parseBool(v, cfg.Dev.SimulateDelays)
	}
	if v := os.Getenv("RAI_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("RAI_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("RAI_DEFAULT_MODEL"); v != "" {
		cfg.Analysis.DefaultModel = v
	}
	if v := os.Getenv("RAI_FALLBACK_MODELS"); v != "" {
		cfg.Analysis.FallbackModels = splitList(v)
	}
	if v := os.Getenv("RAI_ANALYSIS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Analysis.Timeout = d
		}
	}
	if v := os.Getenv("RAI_MAX_INPUT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MaxInputLength = n
		}
	}
	if v := os.Getenv("RAI_PREMISE_PATH"); v != "" {
		cfg.Library.PremisePath = v
	}
	if v := os.Getenv("RAI_MODULE_PATH"); v != "" {
		cfg.Library.ModulePath = v
	}
	if v := os.Getenv("RAI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	applyProviderEnv(cfg, "openai", "RAI_OPENAI_API_KEY")
	applyProviderEnv(cfg, "deepseek", "RAI_DEEPSEEK_API_KEY")
	applyProviderEnv(cfg, "anthropic", "RAI_ANTHROPIC_API_KEY")
	applyProviderEnv(cfg, "gemini", "RAI_GEMINI_API_KEY")
	if v := os.Getenv("RAI_OLLAMA_URL"); v != "" {
		p := cfg.Providers["ollama"]
		p.BaseURL = v
		p.Enabled = true
		cfg.Providers["ollama"] = p
	}
}

// applyProviderEnv sets the credential from env and flips the provider on.
// A key supplied via environment implies the operator wants it usable.
func applyProviderEnv(cfg *Config, name string, envKey string) {
	v := os.Getenv(envKey)
	if v == "" {
		return
	}
	p := cfg.Providers[name]
	p.APIKey = v
	p.Enabled = true
	cfg.Providers[name] = p
}

func validate(cfg Config) error {
	for name, p := range cfg.Providers {
		if !p.Enabled {
			continue
		}
		if p.APIKey == "" && requiresKey(name) {
			return fmt.Errorf("config: provider %q enabled without api key", name)
		}
		if p.Model == "" {
			return fmt.Errorf("config: provider %q has no model", name)
		}
		if p.Timeout <= 0 {
			return fmt.Errorf("config: provider %q has non-positive timeout", name)
		}
		if p.MaxRetries < 0 {
			return fmt.Errorf("config: provider %q has negative max_retries", name)
		}
	}
	for alias, a := range cfg.Aliases {
		if _, ok := cfg.Providers[a.Provider]; !ok {
			return fmt.Errorf("config: alias %q references unknown provider %q", alias, a.Provider)
		}
	}
	for _, name := range []string{"quick", "guided", "expert"} {
		m, ok := cfg.Modes[name]
		if !ok {
			return fmt.Errorf("config: missing analysis mode %q", name)
		}
		if m.MaxModules <= 0 {
			return fmt.Errorf("config: mode %q has non-positive max_modules", name)
		}
	}
	if !(cfg.Modes["quick"].MaxModules < cfg.Modes["guided"].MaxModules &&
		cfg.Modes["guided"].MaxModules < cfg.Modes["expert"].MaxModules) {
		return fmt.Errorf("config: mode max_modules must be strictly increasing quick < guided < expert")
	}
	if cfg.Analysis.MaxPrimaryPremises <= 0 || cfg.Analysis.MaxSecondaryPremises < 0 {
		return fmt.Errorf("config: invalid premise limits")
	}
	if cfg.Analysis.Timeout <= 0 {
		return fmt.Errorf("config: analysis timeout must be positive")
	}
	return nil
}

// requiresKey reports whether a provider needs a credential to be usable.
// Local backends (ollama) and the mock double authenticate nothing.
func requiresKey(name string) bool {
	switch name {
	case "ollama", "mock":
		return false
	}
	return true
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
