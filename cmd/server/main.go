package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/api/http"
	"github.com/execution-hub/repo-automation/internal/application/automation"
	"github.com/execution-hub/repo-automation/internal/bootstrap"
	"github.com/execution-hub/repo-automation/internal/config"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
	"github.com/execution-hub/repo-automation/internal/infrastructure/natsx"
	"github.com/execution-hub/repo-automation/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx := context.Background()

	// infrastructure
	sseHub := sse.NewHub()
	defer sseHub.Stop()

	engine, err := bootstrap.NewEngine(ctx, cfg, sseHub, logger)
	if err != nil {
		log.Fatalf("engine error: %v", err)
	}
	defer engine.Close()
	logger.Info().
		Str("rule_store", cfg.RuleStore).
		Int("rules", len(engine.Service.GetRules())).
		Msg("rules loaded")

	// event transport
	var nc *nats.Conn
	var subscriber *natsx.Subscriber
	dispatch := dispatchLocal(engine.Service, cfg.RunTimeout, logger)
	if cfg.NATSURL != "" {
		nc, err = natsx.Connect(cfg.NATSURL, "repo-automation", logger)
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer nc.Close()

		subscriber = natsx.NewSubscriber(nc, cfg.NATSSubject, cfg.NATSQueue, engine.Service, cfg.RunTimeout, logger)
		if err := subscriber.Start(); err != nil {
			log.Fatalf("nats subscribe error: %v", err)
		}
		dispatch = dispatchNATS(nc, cfg.NATSSubject, logger)
	}

	webhook := newWebhook(cfg.WebhookSecret, dispatch, logger)

	// API server
	apiServer := httpapi.NewServer(engine.Service, sseHub, engine.Metrics, webhook, cfg.APITokenHash, logger)

	httpServer := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     apiServer.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	sseHub.Stop()
	_ = httpServer.Shutdown(ctxShutdown)
	if subscriber != nil {
		if err := subscriber.Stop(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats subscription")
		}
	}
}

// newWebhook returns the GitHub webhook handler, or nil when no secret is
// configured. Unsigned deliveries are never accepted.
func newWebhook(secret string, dispatch httpapi.DispatchFunc, logger zerolog.Logger) http.Handler {
	if secret == "" {
		logger.Warn().Msg("GITHUB_WEBHOOK_SECRET not set, webhook endpoint disabled")
		return nil
	}
	return httpapi.NewWebhookHandler(secret, dispatch, logger)
}

// dispatchLocal runs webhook triggers in the background on this process.
func dispatchLocal(svc *automation.Service, timeout time.Duration, logger zerolog.Logger) httpapi.DispatchFunc {
	return func(t httpapi.Trigger) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			var err error
			if t.Kind == rule.ResourceTypePullRequest {
				_, err = svc.ExecuteRulesForPullRequest(ctx, t.Owner, t.Repo, t.Number)
			} else {
				_, err = svc.ExecuteRulesForIssue(ctx, t.Owner, t.Repo, t.Number)
			}
			if err != nil {
				logger.Error().Err(err).
					Str("resource_type", string(t.Kind)).
					Str("owner", t.Owner).
					Str("repo", t.Repo).
					Int("number", t.Number).
					Msg("webhook run failed")
			}
		}()
	}
}

// dispatchNATS hands webhook triggers to the worker queue.
func dispatchNATS(nc *nats.Conn, subject string, logger zerolog.Logger) httpapi.DispatchFunc {
	return func(t httpapi.Trigger) {
		event := natsx.Event{Kind: t.Kind, Owner: t.Owner, Repo: t.Repo, Number: t.Number}
		if err := natsx.Publish(nc, subject, event); err != nil {
			logger.Error().Err(err).Int("number", t.Number).Msg("failed to publish trigger")
		}
	}
}
