package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/speakcoach/gateway/internal/credpool"
	"github.com/speakcoach/gateway/internal/scenario"
	"github.com/speakcoach/gateway/internal/trace"
	"github.com/speakcoach/gateway/internal/tutor"
	"github.com/speakcoach/gateway/internal/ws"
)

func main() {
	godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := loadConfig()

	pool, err := credpool.New(credpool.ParseList(cfg.completionTokens))
	if err != nil {
		slog.Error("startup failed", "error", err, "hint", "set OPENROUTER_TOKENS")
		os.Exit(1)
	}
	slog.Info("credential pool loaded", "size", pool.Size())

	catalog, err := scenario.Load()
	if err != nil {
		slog.Error("scenario catalog failed", "error", err)
		os.Exit(1)
	}

	var traceStore *trace.Store
	if cfg.traceDB != "" {
		traceStore, err = trace.Open(cfg.traceDB)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer traceStore.Close()
		}
	}

	client := tutor.NewClient(cfg.completionURL, cfg.completionModel, pool, cfg.llmPoolSize, cfg.llmTimeout)
	analyzer := tutor.NewAnalyzer(client)
	responder := tutor.NewResponder(client)

	handler := ws.NewHandler(ws.HandlerConfig{
		Analyzer:      analyzer,
		Responder:     responder,
		Catalog:       catalog,
		TurnLimit:     cfg.turnLimit,
		ClosingDelay:  cfg.closingDelay,
		EvalDelay:     cfg.evalDelay,
		TraceStore:    traceStore,
		MaxConcurrent: cfg.maxConcurrentSessions,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		catalog:    catalog,
		analyzer:   analyzer,
		traceStore: traceStore,
		wsHandler:  handler,
	})

	addr := ":" + cfg.port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("gateway starting", "addr", addr, "model", cfg.completionModel, "max_concurrent", cfg.maxConcurrentSessions)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("gateway stopped")
}
