package automation

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/application/action"
	"github.com/execution-hub/repo-automation/internal/application/condition"
	"github.com/execution-hub/repo-automation/internal/application/rulestore"
	"github.com/execution-hub/repo-automation/internal/domain/resource"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// Publisher fans execution results out to listeners.
type Publisher interface {
	PublishResults(target resource.Target, results []rule.ExecutionResult)
}

// Recorder observes rule evaluations and fetch failures.
type Recorder interface {
	RuleEvaluated(resourceType rule.ResourceType, matched bool)
	FetchFailed(resourceType rule.ResourceType)
}

// Service runs the enabled rules against a triggering issue or pull request
type Service struct {
	store     *rulestore.Store
	client    resource.Client
	evaluator *condition.Evaluator
	executor  *action.Executor
	publisher Publisher
	recorder  Recorder
	logger    zerolog.Logger
}

// NewService creates a new automation service. publisher and recorder may be nil.
func NewService(
	store *rulestore.Store,
	client resource.Client,
	evaluator *condition.Evaluator,
	executor *action.Executor,
	publisher Publisher,
	recorder Recorder,
	logger zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		client:    client,
		evaluator: evaluator,
		executor:  executor,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger.With().Str("service", "automation").Logger(),
	}
}

// ExecuteRulesForIssue evaluates every enabled ISSUE rule against the issue.
func (s *Service) ExecuteRulesForIssue(ctx context.Context, owner, repo string, number int) ([]rule.ExecutionResult, error) {
	return s.execute(ctx, rule.ResourceTypeIssue, owner, repo, number)
}

// ExecuteRulesForPullRequest evaluates every enabled PULL_REQUEST rule against the pull request.
func (s *Service) ExecuteRulesForPullRequest(ctx context.Context, owner, repo string, number int) ([]rule.ExecutionResult, error) {
	return s.execute(ctx, rule.ResourceTypePullRequest, owner, repo, number)
}

func (s *Service) execute(ctx context.Context, kind rule.ResourceType, owner, repo string, number int) ([]rule.ExecutionResult, error) {
	logger := s.logger.With().
		Str("resource_type", string(kind)).
		Str("owner", owner).
		Str("repo", repo).
		Int("number", number).
		Logger()

	snap, err := s.fetch(ctx, kind, owner, repo, number)
	if err != nil {
		if s.recorder != nil {
			s.recorder.FetchFailed(kind)
		}
		logger.Warn().Err(err).Msg("failed to fetch resource")
		return nil, rule.ResourceFetchError(err, "failed to fetch "+resourceNoun(kind))
	}
	// Actions address the requested resource even if the API echoes back
	// different casing for the owner or repository.
	target := resource.Target{Kind: kind, Owner: owner, Repo: repo, Number: number}

	// Other processes may have changed the rules since the last call.
	if err := s.store.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to refresh rules, using cached collection")
	}

	results := make([]rule.ExecutionResult, 0)
	for _, r := range s.store.GetRules() {
		if !r.Enabled || r.ResourceType != kind {
			continue
		}
		result := rule.ExecutionResult{
			RuleID:          r.ID.String(),
			RuleName:        r.Name,
			ActionsExecuted: []rule.ActionResult{},
		}
		if s.evaluator.Evaluate(r.Conditions, snap) {
			result.Matched = true
			result.ActionsExecuted = s.executor.Execute(ctx, target, r.Actions)
		}
		if s.recorder != nil {
			s.recorder.RuleEvaluated(kind, result.Matched)
		}
		logger.Debug().
			Str("rule_id", result.RuleID).
			Bool("matched", result.Matched).
			Int("actions", len(result.ActionsExecuted)).
			Msg("rule evaluated")
		results = append(results, result)
	}

	logger.Info().Int("rules", len(results)).Int("matched", countMatched(results)).Msg("rules executed")
	if s.publisher != nil && len(results) > 0 {
		s.publisher.PublishResults(target, results)
	}
	return results, nil
}

func (s *Service) fetch(ctx context.Context, kind rule.ResourceType, owner, repo string, number int) (*resource.Snapshot, error) {
	if kind == rule.ResourceTypePullRequest {
		return s.client.GetPullRequest(ctx, owner, repo, number)
	}
	return s.client.GetIssue(ctx, owner, repo, number)
}

// CreateRule creates a rule through the store.
func (s *Service) CreateRule(ctx context.Context, in rule.Input) (*rule.Rule, error) {
	return s.store.CreateRule(ctx, in)
}

// RefreshRules reloads the rule collection from the backend.
func (s *Service) RefreshRules(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// GetRules returns all rules in store order.
func (s *Service) GetRules() []*rule.Rule {
	return s.store.GetRules()
}

// GetRule returns the rule or nil.
func (s *Service) GetRule(id uuid.UUID) *rule.Rule {
	return s.store.GetRule(id)
}

// UpdateRule updates a rule through the store. Returns nil, nil if absent.
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, patch rule.Patch) (*rule.Rule, error) {
	return s.store.UpdateRule(ctx, id, patch)
}

// DeleteRule deletes a rule through the store.
func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.store.DeleteRule(ctx, id)
}

// ImportRules imports a YAML or JSONC rule file through the store.
func (s *Service) ImportRules(ctx context.Context, data []byte, format, createdBy string) ([]*rule.Rule, error) {
	return s.store.Import(ctx, data, format, createdBy)
}

func resourceNoun(kind rule.ResourceType) string {
	if kind == rule.ResourceTypePullRequest {
		return "pull request"
	}
	return "issue"
}

func countMatched(results []rule.ExecutionResult) int {
	n := 0
	for _, r := range results {
		if r.Matched {
			n++
		}
	}
	return n
}
