package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Guardrails constrain every call into the external reasoning service.
type Guardrails struct {
	Provider            string   `yaml:"provider"`
	Model               string   `yaml:"model"`
	Endpoint            string   `yaml:"endpoint"`
	APIKey              string   `yaml:"api_key"`
	APIKeyOptional      bool     `yaml:"api_key_optional"`
	PolicyRef           string   `yaml:"policy_ref"`
	MaxOutputTokens     int64    `yaml:"max_output_tokens"`
	AllowedCapabilities []string `yaml:"allowed_capabilities"`
	SendPolicyHeader    bool     `yaml:"send_policy_header"`
	TimeoutSeconds      int      `yaml:"timeout_seconds"`
}

type Config struct {
	DefaultThreshold   float64             `yaml:"default_threshold"`
	Thresholds         map[string]float64  `yaml:"thresholds"`
	ChannelPreferences map[string][]string `yaml:"channel_preferences"`

	Guardrails Guardrails `yaml:"guardrails"`

	SlackBotToken  string            `yaml:"slack_bot_token"`
	SlackChannelID string            `yaml:"slack_channel_id"`
	WebhookURL     string            `yaml:"webhook_url"`
	WebhookHeaders map[string]string `yaml:"webhook_headers"`
	AMQPURL        string            `yaml:"amqp_url"`
	AMQPExchange   string            `yaml:"amqp_exchange"`

	DBPath                 string `yaml:"db_path"`
	RetentionDays          int    `yaml:"retention_days"`
	RetentionSweepSchedule string `yaml:"retention_sweep_schedule"`

	ListenAddr string `yaml:"listen_addr"`
}

// RuleDefault is the rule ID recorded when no explicit threshold entry
// matches a source key.
const RuleDefault = "default"

// ThresholdFor returns the threshold for a source key and the rule ID that
// selected it.
func (c Config) ThresholdFor(sourceKey string) (float64, string) {
	if t, ok := c.Thresholds[sourceKey]; ok {
		return t, sourceKey
	}
	return c.DefaultThreshold, RuleDefault
}

// ReasonerEnabled reports whether a reasoning-service credential is
// available. When false the pipeline runs entirely on deterministic
// fallbacks.
func (c Config) ReasonerEnabled() bool {
	return c.Guardrails.APIKey != ""
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	// Zero is a legal threshold (escalate everything), so track whether
	// default_threshold was given at all before falling back to 5.
	thresholdSet := false
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		var probe struct {
			DefaultThreshold *float64 `yaml:"default_threshold"`
		}
		if err := yaml.Unmarshal(data, &probe); err == nil && probe.DefaultThreshold != nil {
			thresholdSet = true
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverrideFloat(&cfg.DefaultThreshold, "DEFAULT_THRESHOLD")
	if os.Getenv("DEFAULT_THRESHOLD") != "" {
		thresholdSet = true
	}
	envOverride(&cfg.Guardrails.Provider, "REASONER_PROVIDER")
	envOverride(&cfg.Guardrails.Model, "REASONER_MODEL")
	envOverride(&cfg.Guardrails.Endpoint, "REASONER_ENDPOINT")
	envOverride(&cfg.Guardrails.APIKey, "REASONER_API_KEY")
	envOverrideBool(&cfg.Guardrails.APIKeyOptional, "REASONER_API_KEY_OPTIONAL")
	envOverride(&cfg.Guardrails.PolicyRef, "REASONER_POLICY_REF")
	envOverrideInt64(&cfg.Guardrails.MaxOutputTokens, "REASONER_MAX_OUTPUT_TOKENS")
	envOverrideBool(&cfg.Guardrails.SendPolicyHeader, "REASONER_SEND_POLICY_HEADER")
	envOverrideInt(&cfg.Guardrails.TimeoutSeconds, "REASONER_TIMEOUT_SECONDS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.WebhookURL, "WEBHOOK_URL")
	envOverride(&cfg.AMQPURL, "AMQP_URL")
	envOverride(&cfg.AMQPExchange, "AMQP_EXCHANGE")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.RetentionDays, "RETENTION_DAYS")
	envOverride(&cfg.RetentionSweepSchedule, "RETENTION_SWEEP_SCHEDULE")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")

	if caps := os.Getenv("REASONER_ALLOWED_CAPABILITIES"); caps != "" {
		cfg.Guardrails.AllowedCapabilities = nil
		for _, c := range strings.Split(caps, ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				cfg.Guardrails.AllowedCapabilities = append(cfg.Guardrails.AllowedCapabilities, c)
			}
		}
	}

	// Defaults
	if !thresholdSet {
		cfg.DefaultThreshold = 5
	}
	if cfg.Guardrails.Provider == "" {
		cfg.Guardrails.Provider = "anthropic"
	}
	if cfg.Guardrails.MaxOutputTokens == 0 {
		cfg.Guardrails.MaxOutputTokens = 1024
	}
	if cfg.Guardrails.TimeoutSeconds == 0 {
		cfg.Guardrails.TimeoutSeconds = 30
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./attentiond.db"
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	// Validate required fields
	switch cfg.Guardrails.Provider {
	case "anthropic", "openai":
	default:
		log.Fatalf("guardrails provider must be 'anthropic' or 'openai', got '%s'", cfg.Guardrails.Provider)
	}
	if cfg.Guardrails.APIKey == "" && !cfg.Guardrails.APIKeyOptional {
		log.Fatalf("guardrails api_key is required (set api_key_optional to run fallback-only)")
	}
	if cfg.DefaultThreshold < 0 || cfg.DefaultThreshold > 10 {
		log.Fatalf("invalid default_threshold '%f': must be between 0 and 10", cfg.DefaultThreshold)
	}
	for key, t := range cfg.Thresholds {
		if t < 0 || t > 10 {
			log.Fatalf("invalid threshold for '%s': %f must be between 0 and 10", key, t)
		}
	}
	if cfg.Guardrails.MaxOutputTokens < 1 {
		log.Fatalf("invalid max_output_tokens '%d': must be >= 1", cfg.Guardrails.MaxOutputTokens)
	}
	if cfg.Guardrails.TimeoutSeconds < 1 {
		log.Fatalf("invalid timeout_seconds '%d': must be >= 1", cfg.Guardrails.TimeoutSeconds)
	}
	if cfg.RetentionDays < 1 {
		log.Fatalf("invalid retention_days '%d': must be >= 1", cfg.RetentionDays)
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideInt64(field *int64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
