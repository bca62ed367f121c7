package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/domain/resource"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// Recorder receives one observation per executed action.
type Recorder interface {
	ActionExecuted(actionType rule.ActionType, success bool)
}

type handlerFunc func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error

// Executor runs a matched rule's actions against the GitHub API
type Executor struct {
	client   resource.Client
	handlers map[rule.ActionType]handlerFunc
	recorder Recorder
	logger   zerolog.Logger
}

// NewExecutor creates a new action executor
func NewExecutor(client resource.Client, recorder Recorder, logger zerolog.Logger) *Executor {
	return &Executor{
		client:   client,
		handlers: handlers,
		recorder: recorder,
		logger:   logger.With().Str("service", "action_executor").Logger(),
	}
}

// Execute runs actions strictly in order and returns one result per action.
// A failed action is recorded and never stops the remaining ones. There are
// no retries here.
func (e *Executor) Execute(ctx context.Context, target resource.Target, actions []rule.Action) []rule.ActionResult {
	results := make([]rule.ActionResult, 0, len(actions))
	for i, a := range actions {
		err := e.executeOne(ctx, target, a)
		result := rule.ActionResult{Type: a.Type, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
			e.logger.Warn().
				Err(rule.ActionError(err, string(a.Type))).
				Str("owner", target.Owner).
				Str("repo", target.Repo).
				Int("number", target.Number).
				Int("index", i).
				Str("action_type", string(a.Type)).
				Msg("action failed")
		} else {
			e.logger.Debug().
				Str("owner", target.Owner).
				Str("repo", target.Repo).
				Int("number", target.Number).
				Str("action_type", string(a.Type)).
				Msg("action executed")
		}
		if e.recorder != nil {
			e.recorder.ActionExecuted(a.Type, result.Success)
		}
		results = append(results, result)
	}
	return results
}

func (e *Executor) executeOne(ctx context.Context, target resource.Target, a rule.Action) (err error) {
	h, ok := e.handlers[a.Type]
	if !ok {
		return errors.Newf("unsupported action type %q", a.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("action panicked: %v", r)
		}
	}()
	return h(ctx, e.client, target, a)
}

var handlers = map[rule.ActionType]handlerFunc{
	rule.ActionAddLabel: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := required("label", a.Label); err != nil {
			return err
		}
		return c.AddLabels(ctx, t.Owner, t.Repo, t.Number, []string{a.Label})
	},
	rule.ActionRemoveLabel: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := required("label", a.Label); err != nil {
			return err
		}
		return c.RemoveLabel(ctx, t.Owner, t.Repo, t.Number, a.Label)
	},
	rule.ActionReplaceLabel: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := required("oldLabel", a.OldLabel); err != nil {
			return err
		}
		if err := required("label", a.Label); err != nil {
			return err
		}
		if err := c.RemoveLabel(ctx, t.Owner, t.Repo, t.Number, a.OldLabel); err != nil {
			return err
		}
		return c.AddLabels(ctx, t.Owner, t.Repo, t.Number, []string{a.Label})
	},
	rule.ActionAssign: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := required("assignee", a.Assignee); err != nil {
			return err
		}
		return c.AddAssignees(ctx, t.Owner, t.Repo, t.Number, []string{a.Assignee})
	},
	rule.ActionUnassign: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := required("assignee", a.Assignee); err != nil {
			return err
		}
		return c.RemoveAssignees(ctx, t.Owner, t.Repo, t.Number, []string{a.Assignee})
	},
	rule.ActionComment: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := required("body", a.Body); err != nil {
			return err
		}
		return c.CreateComment(ctx, t.Owner, t.Repo, t.Number, a.Body)
	},
	rule.ActionClose: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		return c.SetState(ctx, t.Owner, t.Repo, t.Number, "closed")
	},
	rule.ActionReopen: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		return c.SetState(ctx, t.Owner, t.Repo, t.Number, "open")
	},
	rule.ActionMerge: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := pullRequestOnly(t, a); err != nil {
			return err
		}
		switch a.MergeMethod {
		case "", "merge", "squash", "rebase":
		default:
			return errors.Newf("invalid merge method %q", a.MergeMethod)
		}
		return c.Merge(ctx, t.Owner, t.Repo, t.Number, a.MergeMethod)
	},
	rule.ActionRequestReview: func(ctx context.Context, c resource.Client, t resource.Target, a rule.Action) error {
		if err := pullRequestOnly(t, a); err != nil {
			return err
		}
		if err := required("reviewer", a.Reviewer); err != nil {
			return err
		}
		return c.RequestReviewers(ctx, t.Owner, t.Repo, t.Number, []string{a.Reviewer})
	},
}

func required(param, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", param)
	}
	return nil
}

func pullRequestOnly(t resource.Target, a rule.Action) error {
	if t.Kind != rule.ResourceTypePullRequest {
		return errors.Newf("%s is only supported for pull requests", a.Type)
	}
	return nil
}
