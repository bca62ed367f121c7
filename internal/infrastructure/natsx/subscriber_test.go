package natsx

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

type call struct {
	kind   rule.ResourceType
	owner  string
	repo   string
	number int
}

type fakeRunner struct {
	calls []call
	err   error
}

func (f *fakeRunner) ExecuteRulesForIssue(_ context.Context, owner, repo string, number int) ([]rule.ExecutionResult, error) {
	f.calls = append(f.calls, call{rule.ResourceTypeIssue, owner, repo, number})
	if f.err != nil {
		return nil, f.err
	}
	return []rule.ExecutionResult{{RuleID: "r1", Matched: true, ActionsExecuted: []rule.ActionResult{}}}, nil
}

func (f *fakeRunner) ExecuteRulesForPullRequest(_ context.Context, owner, repo string, number int) ([]rule.ExecutionResult, error) {
	f.calls = append(f.calls, call{rule.ResourceTypePullRequest, owner, repo, number})
	return []rule.ExecutionResult{}, f.err
}

func TestSubscriber_Handle(t *testing.T) {
	t.Run("issue event", func(t *testing.T) {
		runner := &fakeRunner{}
		sub := NewSubscriber(nil, "", "", runner, 0, zerolog.Nop())

		results, err := sub.Handle(context.Background(), []byte(`{"kind":"ISSUE","owner":"acme","repo":"widgets","number":42}`))

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, []call{{rule.ResourceTypeIssue, "acme", "widgets", 42}}, runner.calls)
		assert.Equal(t, DefaultSubject, sub.subject)
	})

	t.Run("pull request event", func(t *testing.T) {
		runner := &fakeRunner{}
		sub := NewSubscriber(nil, "custom.subject", "workers", runner, 0, zerolog.Nop())

		_, err := sub.Handle(context.Background(), []byte(`{"kind":"PULL_REQUEST","owner":"acme","repo":"widgets","number":7}`))

		require.NoError(t, err)
		assert.Equal(t, []call{{rule.ResourceTypePullRequest, "acme", "widgets", 7}}, runner.calls)
	})

	t.Run("invalid payloads never reach the runner", func(t *testing.T) {
		runner := &fakeRunner{}
		sub := NewSubscriber(nil, "", "", runner, 0, zerolog.Nop())

		for _, payload := range []string{
			`not json`,
			`{"kind":"COMMIT","owner":"acme","repo":"widgets","number":1}`,
			`{"kind":"ISSUE","owner":"","repo":"widgets","number":1}`,
			`{"kind":"ISSUE","owner":"acme","repo":"widgets","number":0}`,
		} {
			_, err := sub.Handle(context.Background(), []byte(payload))
			assert.Error(t, err, payload)
		}
		assert.Empty(t, runner.calls)
	})

	t.Run("runner error is returned", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("fetch failed")}
		sub := NewSubscriber(nil, "", "", runner, 0, zerolog.Nop())

		results, err := sub.Handle(context.Background(), []byte(`{"kind":"ISSUE","owner":"acme","repo":"widgets","number":42}`))

		assert.Nil(t, results)
		assert.EqualError(t, err, "fetch failed")
	})
}

func TestPublish_RejectsInvalidEvent(t *testing.T) {
	err := Publish(nil, DefaultSubject, Event{Kind: "ISSUE", Owner: "acme"})

	assert.Error(t, err)
}
