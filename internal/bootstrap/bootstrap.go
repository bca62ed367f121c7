// Package bootstrap wires the rule engine from configuration.
package bootstrap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/application/action"
	"github.com/execution-hub/repo-automation/internal/application/automation"
	"github.com/execution-hub/repo-automation/internal/application/condition"
	"github.com/execution-hub/repo-automation/internal/application/rulestore"
	"github.com/execution-hub/repo-automation/internal/config"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
	"github.com/execution-hub/repo-automation/internal/infrastructure/boltstore"
	"github.com/execution-hub/repo-automation/internal/infrastructure/filestore"
	"github.com/execution-hub/repo-automation/internal/infrastructure/github"
	"github.com/execution-hub/repo-automation/internal/infrastructure/memstore"
	"github.com/execution-hub/repo-automation/internal/infrastructure/metrics"
	"github.com/execution-hub/repo-automation/internal/infrastructure/postgres"
)

// OpenRuleRepository opens the backend selected by cfg.RuleStore. The
// returned close func releases it and is never nil.
func OpenRuleRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (rule.Repository, func(), error) {
	noop := func() {}
	switch cfg.RuleStore {
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory rule store, rules are lost on restart")
		return memstore.NewRuleRepository(), noop, nil
	case config.StoreFile:
		if err := ensureDir(cfg.RuleStorePath); err != nil {
			return nil, noop, err
		}
		return filestore.NewRuleRepository(cfg.RuleStorePath), noop, nil
	case config.StoreBolt:
		if err := ensureDir(cfg.RuleStorePath); err != nil {
			return nil, noop, err
		}
		repo, err := boltstore.Open(cfg.RuleStorePath)
		if err != nil {
			return nil, noop, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close bolt store")
			}
		}, nil
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return postgres.NewRuleRepository(pool), pool.Close, nil
	default:
		return nil, noop, errors.Newf("unknown rule store %q", cfg.RuleStore)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	return nil
}

// Engine is a fully wired automation service and the resources it holds.
type Engine struct {
	Service *automation.Service
	Metrics *metrics.Metrics
	close   func()
}

func (e *Engine) Close() {
	e.close()
}

// NewEngine opens the rule store and wires the GitHub client, evaluator and
// executor around it. publisher may be nil.
func NewEngine(ctx context.Context, cfg *config.Config, publisher automation.Publisher, logger zerolog.Logger) (*Engine, error) {
	repo, closeRepo, err := OpenRuleRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := rulestore.NewStore(ctx, repo, logger)
	if err != nil {
		closeRepo()
		return nil, err
	}
	client, err := github.NewClient(ctx, github.Options{
		Token:         cfg.GitHubToken,
		BaseURL:       cfg.GitHubAPIURL,
		FetchAttempts: cfg.FetchRetryAttempts,
	}, logger)
	if err != nil {
		closeRepo()
		return nil, err
	}

	m := metrics.New()
	svc := automation.NewService(
		store,
		client,
		condition.NewEvaluator(),
		action.NewExecutor(client, m, logger),
		publisher,
		m,
		logger,
	)
	return &Engine{Service: svc, Metrics: m, close: closeRepo}, nil
}
