package main

import (
	"time"

	"github.com/speakcoach/gateway/internal/env"
)

// Turn pacing defaults. Delays are in milliseconds when overridden.
const (
	defaultTurnLimit    = 10
	defaultClosingDelay = 1500 * time.Millisecond
	defaultEvalDelay    = 1500 * time.Millisecond
)

type config struct {
	port string

	completionURL    string
	completionModel  string
	completionTokens string
	llmPoolSize      int
	llmTimeout       time.Duration

	turnLimit    int
	closingDelay time.Duration
	evalDelay    time.Duration

	maxConcurrentSessions int
	traceDB               string
}

func loadConfig() config {
	return config{
		port:             env.Str("GATEWAY_PORT", "8000"),
		completionURL:    env.Str("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
		completionModel:  env.Str("LLM_MODEL", "anthropic/claude-3-haiku:beta"),
		completionTokens: env.Str("OPENROUTER_TOKENS", ""),
		llmPoolSize:      env.Int("LLM_POOL_SIZE", 50),
		llmTimeout:       env.Duration("LLM_TIMEOUT_MS", 30*time.Second),

		turnLimit:    env.Int("TURN_LIMIT", defaultTurnLimit),
		closingDelay: env.Duration("CLOSING_DELAY_MS", defaultClosingDelay),
		evalDelay:    env.Duration("EVAL_DELAY_MS", defaultEvalDelay),

		maxConcurrentSessions: env.Int("MAX_CONCURRENT_SESSIONS", 100),
		traceDB:               env.Str("TRACE_DB", "traces.db"),
	}
}
