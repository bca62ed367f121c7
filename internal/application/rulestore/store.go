package rulestore

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// errRuleNotFound aborts an update whose target rule is gone.
var errRuleNotFound = errors.New("rule not found")

// Store caches the rule collection in memory. Every mutation is applied to
// the freshly loaded persisted collection through rule.Repository.Update, so
// writers sharing a backend never overwrite each other's rules.
type Store struct {
	repo   rule.Repository
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	rules []*rule.Rule
}

// NewStore creates a store and loads the persisted collection.
func NewStore(ctx context.Context, repo rule.Repository, logger zerolog.Logger) (*Store, error) {
	rules, err := repo.Load(ctx)
	if err != nil {
		return nil, rule.StorageError(err, "failed to load rules")
	}
	if rules == nil {
		rules = []*rule.Rule{}
	}
	s := &Store{
		repo:   repo,
		logger: logger.With().Str("service", "rule_store").Logger(),
		now:    time.Now,
		rules:  rules,
	}
	s.logger.Info().Int("rules", len(rules)).Msg("rules loaded")
	return s, nil
}

// Refresh reloads the cached collection from the backend. On failure the
// cache is left as it was.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.repo.Load(ctx)
	if err != nil {
		return rule.StorageError(err, "failed to load rules")
	}
	if rules == nil {
		rules = []*rule.Rule{}
	}
	s.rules = rules
	return nil
}

// CreateRule validates input, appends a new rule and persists the collection.
func (s *Store) CreateRule(ctx context.Context, in rule.Input) (*rule.Rule, error) {
	r := rule.NewRule(in, s.now())
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		return append(current, r), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("rule_id", r.ID.String()).
		Str("name", r.Name).
		Str("resource_type", string(r.ResourceType)).
		Msg("rule created")
	return cloneRule(r), nil
}

// GetRules returns copies of all rules in insertion order.
func (s *Store) GetRules() []*rule.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*rule.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, cloneRule(r))
	}
	return out
}

// GetRule returns a copy of the rule, or nil if absent.
func (s *Store) GetRule(id uuid.UUID) *rule.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.rules, id); i >= 0 {
		return cloneRule(s.rules[i])
	}
	return nil
}

// UpdateRule merges patch into the rule and persists the collection.
// Returns nil, nil if the rule does not exist.
func (s *Store) UpdateRule(ctx context.Context, id uuid.UUID, patch rule.Patch) (*rule.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *rule.Rule
	err := s.mutate(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, errRuleNotFound
		}
		updated = cloneRule(current[i])
		updated.Apply(patch, s.now())
		if err := updated.Validate(); err != nil {
			return nil, err
		}
		next := make([]*rule.Rule, len(current))
		copy(next, current)
		next[i] = updated
		return next, nil
	})
	if errors.Is(err, errRuleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("rule_id", id.String()).Msg("rule updated")
	return cloneRule(updated), nil
}

// DeleteRule removes the rule and reports whether it existed. The
// collection is only persisted when something was removed.
func (s *Store) DeleteRule(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, errRuleNotFound
		}
		next := make([]*rule.Rule, 0, len(current)-1)
		next = append(next, current[:i]...)
		return append(next, current[i+1:]...), nil
	})
	if errors.Is(err, errRuleNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info().Str("rule_id", id.String()).Msg("rule deleted")
	return true, nil
}

// mutate applies fn to the persisted collection and caches the result.
// Errors returned by fn pass through unchanged; backend failures become
// storage errors and leave the cache untouched. Callers must hold mu.
func (s *Store) mutate(ctx context.Context, fn rule.UpdateFunc) error {
	var fnErr error
	var latest, next []*rule.Rule
	err := s.repo.Update(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		if current == nil {
			current = []*rule.Rule{}
		}
		latest = current
		next, fnErr = fn(current)
		if fnErr != nil {
			return nil, fnErr
		}
		return next, nil
	})
	switch {
	case err == nil:
		s.rules = next
		return nil
	case fnErr != nil:
		// The backend was readable, so its contents are the newest view.
		s.rules = latest
		return fnErr
	default:
		s.logger.Error().Err(err).Msg("failed to persist rules")
		return rule.StorageError(err, "failed to persist rules")
	}
}

func indexOf(rules []*rule.Rule, id uuid.UUID) int {
	for i, r := range rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneRule(r *rule.Rule) *rule.Rule {
	return deepcopy.Copy(r).(*rule.Rule)
}
