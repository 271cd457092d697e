package app

import (
	"log"
	"strings"
	"time"

	amqpchan "attentiond/internal/channels/amqp"
	slackchan "attentiond/internal/channels/slack"
	webhookchan "attentiond/internal/channels/webhook"
	"attentiond/internal/classify"
	"attentiond/internal/config"
	"attentiond/internal/decide"
	"attentiond/internal/directive"
	"attentiond/internal/dispatch"
	"attentiond/internal/journal"
	"attentiond/internal/pipeline"
	"attentiond/internal/reasoner"
	"attentiond/internal/server"
)

func Main() {
	cfg := config.LoadConfig()
	log.Printf(
		"Config loaded. Provider=%s DefaultThreshold=%.1f ThresholdRules=%d PolicyRef=%s MaxOutputTokens=%d Timeout=%ds",
		cfg.Guardrails.Provider,
		cfg.DefaultThreshold,
		len(cfg.Thresholds),
		cfg.Guardrails.PolicyRef,
		cfg.Guardrails.MaxOutputTokens,
		cfg.Guardrails.TimeoutSeconds,
	)

	store, err := journal.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open outcome journal: %v", err)
	}
	log.Printf("Outcome journal at %s", cfg.DBPath)
	defer store.Close()

	stopSweeper := store.StartRetentionSweeper(cfg.RetentionSweepSchedule, cfg.RetentionDays)
	defer stopSweeper()

	timeout := time.Duration(cfg.Guardrails.TimeoutSeconds) * time.Second
	var classifyReasoner classify.Reasoner
	var directiveReasoner directive.Reasoner
	if cfg.ReasonerEnabled() {
		client := reasoner.New(cfg.Guardrails)
		classifyReasoner = client
		directiveReasoner = client
		log.Printf("Reasoning service enabled version=%s", client.Version())
	} else {
		log.Println("No reasoning-service credential; running on deterministic fallbacks only")
	}

	var channels []dispatch.Channel
	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		channels = append(channels, slackchan.New(cfg.SlackBotToken, cfg.SlackChannelID))
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, webhookchan.New(cfg.WebhookURL, cfg.WebhookHeaders))
	}
	if cfg.AMQPURL != "" {
		amqp, err := amqpchan.New(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect AMQP channel: %v", err)
		}
		defer amqp.Close()
		channels = append(channels, amqp)
	}
	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name())
	}
	log.Printf("Delivery channels configured: %s", strings.Join(names, ", "))

	p := pipeline.New(
		cfg,
		classify.New(classifyReasoner, timeout),
		decide.New(cfg),
		directive.New(directiveReasoner, timeout),
		dispatch.New(channels...),
		store,
	)

	log.Println("Starting attention pipeline...")
	if err := server.New(p, store).ListenAndServe(cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
