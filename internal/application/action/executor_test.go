package action

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/execution-hub/repo-automation/internal/domain/resource"
	resourceMocks "github.com/execution-hub/repo-automation/internal/domain/resource/mocks"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

type recordedAction struct {
	actionType rule.ActionType
	success    bool
}

type fakeRecorder struct {
	calls []recordedAction
}

func (f *fakeRecorder) ActionExecuted(t rule.ActionType, success bool) {
	f.calls = append(f.calls, recordedAction{t, success})
}

var (
	issueTarget = resource.Target{Kind: rule.ResourceTypeIssue, Owner: "acme", Repo: "widgets", Number: 42}
	pullTarget  = resource.Target{Kind: rule.ResourceTypePullRequest, Owner: "acme", Repo: "widgets", Number: 7}
)

func TestNewExecutor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	executor := NewExecutor(resourceMocks.NewMockClient(ctrl), nil, zerolog.Nop())

	require.NotNil(t, executor)
}

func TestExecutor_Execute(t *testing.T) {
	t.Run("runs every action type against the client", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := resourceMocks.NewMockClient(ctrl)
		ctx := context.Background()

		gomock.InOrder(
			client.EXPECT().AddLabels(ctx, "acme", "widgets", 7, []string{"bug"}).Return(nil),
			client.EXPECT().RemoveLabel(ctx, "acme", "widgets", 7, "triage").Return(nil),
			client.EXPECT().RemoveLabel(ctx, "acme", "widgets", 7, "wip").Return(nil),
			client.EXPECT().AddLabels(ctx, "acme", "widgets", 7, []string{"ready"}).Return(nil),
			client.EXPECT().AddAssignees(ctx, "acme", "widgets", 7, []string{"hubot"}).Return(nil),
			client.EXPECT().RemoveAssignees(ctx, "acme", "widgets", 7, []string{"octocat"}).Return(nil),
			client.EXPECT().CreateComment(ctx, "acme", "widgets", 7, "thanks").Return(nil),
			client.EXPECT().SetState(ctx, "acme", "widgets", 7, "closed").Return(nil),
			client.EXPECT().SetState(ctx, "acme", "widgets", 7, "open").Return(nil),
			client.EXPECT().RequestReviewers(ctx, "acme", "widgets", 7, []string{"reviewer"}).Return(nil),
			client.EXPECT().Merge(ctx, "acme", "widgets", 7, "squash").Return(nil),
		)

		recorder := &fakeRecorder{}
		executor := NewExecutor(client, recorder, zerolog.Nop())

		results := executor.Execute(ctx, pullTarget, []rule.Action{
			{Type: rule.ActionAddLabel, Label: "bug"},
			{Type: rule.ActionRemoveLabel, Label: "triage"},
			{Type: rule.ActionReplaceLabel, OldLabel: "wip", Label: "ready"},
			{Type: rule.ActionAssign, Assignee: "hubot"},
			{Type: rule.ActionUnassign, Assignee: "octocat"},
			{Type: rule.ActionComment, Body: "thanks"},
			{Type: rule.ActionClose},
			{Type: rule.ActionReopen},
			{Type: rule.ActionRequestReview, Reviewer: "reviewer"},
			{Type: rule.ActionMerge, MergeMethod: "squash"},
		})

		require.Len(t, results, 10)
		for _, r := range results {
			assert.True(t, r.Success, "action %s", r.Type)
			assert.Empty(t, r.Error)
		}
		assert.Len(t, recorder.calls, 10)
	})

	t.Run("failure does not stop later actions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := resourceMocks.NewMockClient(ctrl)
		ctx := context.Background()

		gomock.InOrder(
			client.EXPECT().AddLabels(ctx, "acme", "widgets", 42, []string{"bug"}).Return(errors.New("failed to add labels: 404 Not Found")),
			client.EXPECT().CreateComment(ctx, "acme", "widgets", 42, "hello").Return(nil),
		)

		recorder := &fakeRecorder{}
		executor := NewExecutor(client, recorder, zerolog.Nop())

		results := executor.Execute(ctx, issueTarget, []rule.Action{
			{Type: rule.ActionAddLabel, Label: "bug"},
			{Type: rule.ActionComment, Body: "hello"},
		})

		require.Len(t, results, 2)
		assert.False(t, results[0].Success)
		assert.Contains(t, results[0].Error, "404")
		assert.True(t, results[1].Success)
		assert.Equal(t, []recordedAction{{rule.ActionAddLabel, false}, {rule.ActionComment, true}}, recorder.calls)
	})

	t.Run("replace label stops when removal fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := resourceMocks.NewMockClient(ctrl)
		ctx := context.Background()
		client.EXPECT().RemoveLabel(ctx, "acme", "widgets", 42, "wip").Return(errors.New("label does not exist"))

		executor := NewExecutor(client, nil, zerolog.Nop())
		results := executor.Execute(ctx, issueTarget, []rule.Action{{Type: rule.ActionReplaceLabel, OldLabel: "wip", Label: "ready"}})

		require.Len(t, results, 1)
		assert.False(t, results[0].Success)
	})

	t.Run("missing parameters fail without calling the API", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := resourceMocks.NewMockClient(ctrl)
		executor := NewExecutor(client, nil, zerolog.Nop())

		results := executor.Execute(context.Background(), pullTarget, []rule.Action{
			{Type: rule.ActionAddLabel},
			{Type: rule.ActionRemoveLabel, Label: "  "},
			{Type: rule.ActionReplaceLabel, Label: "ready"},
			{Type: rule.ActionAssign},
			{Type: rule.ActionUnassign},
			{Type: rule.ActionComment},
			{Type: rule.ActionRequestReview},
			{Type: rule.ActionMerge, MergeMethod: "fast-forward"},
		})

		require.Len(t, results, 8)
		for _, r := range results {
			assert.False(t, r.Success, "action %s", r.Type)
			assert.NotEmpty(t, r.Error)
		}
		assert.Equal(t, "label is required", results[0].Error)
		assert.Equal(t, "oldLabel is required", results[2].Error)
	})

	t.Run("pull request actions fail on issues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := resourceMocks.NewMockClient(ctrl)
		executor := NewExecutor(client, nil, zerolog.Nop())

		results := executor.Execute(context.Background(), issueTarget, []rule.Action{
			{Type: rule.ActionMerge},
			{Type: rule.ActionRequestReview, Reviewer: "reviewer"},
		})

		require.Len(t, results, 2)
		assert.False(t, results[0].Success)
		assert.Contains(t, results[0].Error, "only supported for pull requests")
		assert.False(t, results[1].Success)
	})

	t.Run("unknown action type is reported", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		executor := NewExecutor(resourceMocks.NewMockClient(ctrl), nil, zerolog.Nop())
		results := executor.Execute(context.Background(), issueTarget, []rule.Action{{Type: "LOCK"}})

		require.Len(t, results, 1)
		assert.Equal(t, rule.ActionType("LOCK"), results[0].Type)
		assert.False(t, results[0].Success)
		assert.Contains(t, results[0].Error, "LOCK")
	})

	t.Run("panicking client is contained", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := resourceMocks.NewMockClient(ctrl)
		ctx := context.Background()
		client.EXPECT().CreateComment(ctx, "acme", "widgets", 42, "boom").DoAndReturn(
			func(context.Context, string, string, int, string) error { panic("nil response") },
		)
		client.EXPECT().SetState(ctx, "acme", "widgets", 42, "closed").Return(nil)

		executor := NewExecutor(client, nil, zerolog.Nop())
		results := executor.Execute(ctx, issueTarget, []rule.Action{
			{Type: rule.ActionComment, Body: "boom"},
			{Type: rule.ActionClose},
		})

		require.Len(t, results, 2)
		assert.False(t, results[0].Success)
		assert.Contains(t, results[0].Error, "nil response")
		assert.True(t, results[1].Success)
	})

	t.Run("empty action list", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		executor := NewExecutor(resourceMocks.NewMockClient(ctrl), nil, zerolog.Nop())
		results := executor.Execute(context.Background(), issueTarget, nil)

		require.NotNil(t, results)
		assert.Empty(t, results)
	})
}
