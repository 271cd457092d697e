package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfigFile(t, `
default_threshold: 6
thresholds:
  chat:mention: 4
  monitoring:alert: 7
channel_preferences:
  chat:
    - slack
guardrails:
  provider: anthropic
  model: claude-sonnet-4-5-20250929
  api_key: test-key
  policy_ref: attention-policy-v2
  max_output_tokens: 512
db_path: /tmp/test.db
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("REASONER_API_KEY", "")
	t.Setenv("DEFAULT_THRESHOLD", "")

	cfg := LoadConfig()

	if cfg.DefaultThreshold != 6 {
		t.Fatalf("expected default threshold 6, got %f", cfg.DefaultThreshold)
	}
	if cfg.Thresholds["monitoring:alert"] != 7 {
		t.Fatalf("expected monitoring:alert threshold 7, got %f", cfg.Thresholds["monitoring:alert"])
	}
	if len(cfg.ChannelPreferences["chat"]) != 1 || cfg.ChannelPreferences["chat"][0] != "slack" {
		t.Fatalf("unexpected channel preferences: %v", cfg.ChannelPreferences)
	}
	if cfg.Guardrails.Model != "claude-sonnet-4-5-20250929" {
		t.Fatalf("unexpected model: %s", cfg.Guardrails.Model)
	}
	if cfg.Guardrails.MaxOutputTokens != 512 {
		t.Fatalf("expected max_output_tokens 512, got %d", cfg.Guardrails.MaxOutputTokens)
	}
	if cfg.Guardrails.PolicyRef != "attention-policy-v2" {
		t.Fatalf("unexpected policy ref: %s", cfg.Guardrails.PolicyRef)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	path := writeConfigFile(t, `
default_threshold: 6
guardrails:
  provider: anthropic
  api_key: yaml-key
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DEFAULT_THRESHOLD", "3.5")
	t.Setenv("REASONER_API_KEY", "env-key")
	t.Setenv("REASONER_PROVIDER", "openai")
	t.Setenv("REASONER_MODEL", "gpt-4o-mini")
	t.Setenv("REASONER_ALLOWED_CAPABILITIES", "classify, summarize,")

	cfg := LoadConfig()

	if cfg.DefaultThreshold != 3.5 {
		t.Fatalf("expected env override 3.5, got %f", cfg.DefaultThreshold)
	}
	if cfg.Guardrails.APIKey != "env-key" {
		t.Fatalf("expected env api key, got %s", cfg.Guardrails.APIKey)
	}
	if cfg.Guardrails.Provider != "openai" || cfg.Guardrails.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected provider/model: %s/%s", cfg.Guardrails.Provider, cfg.Guardrails.Model)
	}
	if len(cfg.Guardrails.AllowedCapabilities) != 2 ||
		cfg.Guardrails.AllowedCapabilities[0] != "classify" ||
		cfg.Guardrails.AllowedCapabilities[1] != "summarize" {
		t.Fatalf("unexpected capabilities: %v", cfg.Guardrails.AllowedCapabilities)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// Point at a path that does not exist so only env and defaults apply.
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("REASONER_API_KEY", "")
	t.Setenv("REASONER_API_KEY_OPTIONAL", "true")
	t.Setenv("DEFAULT_THRESHOLD", "")
	t.Setenv("REASONER_PROVIDER", "")
	t.Setenv("REASONER_MODEL", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("LISTEN_ADDR", "")

	cfg := LoadConfig()

	if cfg.DefaultThreshold != 5 {
		t.Fatalf("expected default threshold 5, got %f", cfg.DefaultThreshold)
	}
	if cfg.Guardrails.Provider != "anthropic" {
		t.Fatalf("expected anthropic default, got %s", cfg.Guardrails.Provider)
	}
	if cfg.Guardrails.MaxOutputTokens != 1024 {
		t.Fatalf("expected 1024 token default, got %d", cfg.Guardrails.MaxOutputTokens)
	}
	if cfg.Guardrails.TimeoutSeconds != 30 {
		t.Fatalf("expected 30s timeout default, got %d", cfg.Guardrails.TimeoutSeconds)
	}
	if cfg.DBPath != "./attentiond.db" {
		t.Fatalf("unexpected db path default: %s", cfg.DBPath)
	}
	if cfg.RetentionDays != 30 {
		t.Fatalf("expected 30 day retention default, got %d", cfg.RetentionDays)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr default: %s", cfg.ListenAddr)
	}
	if cfg.ReasonerEnabled() {
		t.Fatal("reasoner must be disabled without an api key")
	}
}

func TestLoadConfigExplicitZeroThreshold(t *testing.T) {
	path := writeConfigFile(t, `
default_threshold: 0
guardrails:
  provider: anthropic
  api_key: test-key
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DEFAULT_THRESHOLD", "")

	cfg := LoadConfig()
	// Zero means escalate everything; it must not be mistaken for unset.
	if cfg.DefaultThreshold != 0 {
		t.Fatalf("explicit zero threshold overwritten, got %f", cfg.DefaultThreshold)
	}
}

func TestLoadConfigZeroThresholdFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DEFAULT_THRESHOLD", "0")
	t.Setenv("REASONER_API_KEY", "test-key")

	cfg := LoadConfig()
	if cfg.DefaultThreshold != 0 {
		t.Fatalf("explicit zero threshold from env overwritten, got %f", cfg.DefaultThreshold)
	}
}

func TestThresholdFor(t *testing.T) {
	cfg := Config{
		DefaultThreshold: 5,
		Thresholds:       map[string]float64{"chat:mention": 4},
	}

	threshold, ruleID := cfg.ThresholdFor("chat:mention")
	if threshold != 4 || ruleID != "chat:mention" {
		t.Fatalf("expected explicit rule, got %f/%s", threshold, ruleID)
	}

	threshold, ruleID = cfg.ThresholdFor("calendar:event")
	if threshold != 5 || ruleID != RuleDefault {
		t.Fatalf("expected default rule, got %f/%s", threshold, ruleID)
	}
}

func TestReasonerEnabled(t *testing.T) {
	if (Config{}).ReasonerEnabled() {
		t.Fatal("empty config must not enable the reasoner")
	}
	cfg := Config{Guardrails: Guardrails{APIKey: "key"}}
	if !cfg.ReasonerEnabled() {
		t.Fatal("expected reasoner enabled with api key set")
	}
}
