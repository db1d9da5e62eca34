package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RAI_HTTP_ADDR", ":9100")
	t.Setenv("RAI_DEV_MODE", "false")
	t.Setenv("RAI_MOCK_LLM_RESPONSES", "false")
	t.Setenv("RAI_OPENAI_API_KEY", "sk-test-123")
	t.Setenv("RAI_DEFAULT_MODEL", "gpt-4")
	t.Setenv("RAI_FALLBACK_MODELS", "deepseek, claude")
	t.Setenv("RAI_ANALYSIS_TIMEOUT", "90s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9100" {
		t.Fatalf("expected http addr override")
	}
	if cfg.Dev.Mode {
		t.Fatalf("expected dev mode false")
	}
	if cfg.Dev.MockResponses {
		t.Fatalf("expected mock responses off")
	}
	p := cfg.Providers["openai"]
	if !p.Enabled || p.APIKey != "sk-test-123" {
		t.Fatalf("expected openai enabled with key, got %+v", p)
	}
	if cfg.Analysis.DefaultModel != "gpt-4" {
		t.Fatalf("expected default model override")
	}
	if len(cfg.Analysis.FallbackModels) != 2 || cfg.Analysis.FallbackModels[1] != "claude" {
		t.Fatalf("expected fallback list parsed, got %v", cfg.Analysis.FallbackModels)
	}
	if cfg.Analysis.Timeout != 90*time.Second {
		t.Fatalf("expected analysis timeout override")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
http:
  addr: ":7070"
modes:
  quick:
    max_modules: 2
    output_mode: brief
    focus: essential
  guided:
    max_modules: 4
    output_mode: analytical
    focus: structured
  expert:
    max_modules: 9
    output_mode: analytical
    focus: comprehensive
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("expected yaml addr")
	}
	if cfg.Modes["expert"].MaxModules != 9 {
		t.Fatalf("expected expert max_modules 9")
	}
}

func TestValidateEnabledProviderNeedsKey(t *testing.T) {
	cfg := Default()
	p := cfg.Providers["openai"]
	p.Enabled = true
	p.APIKey = ""
	cfg.Providers["openai"] = p
	if err := validate(cfg); err == nil {
		t.Fatalf("expected validation failure for enabled provider without key")
	}
}

func TestValidateModeMonotonicity(t *testing.T) {
	cfg := Default()
	m := cfg.Modes["quick"]
	m.MaxModules = cfg.Modes["expert"].MaxModules + 1
	cfg.Modes["quick"] = m
	if err := validate(cfg); err == nil {
		t.Fatalf("expected validation failure for non-monotonic modes")
	}
}

func TestValidateAliasTargets(t *testing.T) {
	cfg := Default()
	cfg.Aliases["ghost"] = Alias{Provider: "nosuch", Model: "x"}
	if err := validate(cfg); err == nil {
		t.Fatalf("expected validation failure for alias to unknown provider")
	}
}
