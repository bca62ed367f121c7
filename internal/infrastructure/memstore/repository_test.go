package memstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

func TestRuleRepository_EmptyLoad(t *testing.T) {
	repo := NewRuleRepository()

	rules, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestRuleRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()
	in := rule.Input{
		Name:         "nested",
		ResourceType: rule.ResourceTypePullRequest,
		Enabled:      true,
		Conditions: rule.And(
			rule.Leaf(rule.ConditionIsDraft, "false"),
			rule.Or(
				rule.Leaf(rule.ConditionBaseBranchEquals, "main"),
				rule.And(rule.Leaf(rule.ConditionLabelPresent, "hotfix"), rule.Leaf(rule.ConditionAuthorEquals, "octocat")),
			),
		),
		Actions:   []rule.Action{{Type: rule.ActionRequestReview, Reviewer: "lead"}},
		CreatedBy: "octocat",
	}
	original := rule.NewRule(in, time.Now())

	require.NoError(t, repo.Save(ctx, []*rule.Rule{original}))
	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	assert.Equal(t, original.Conditions, loaded[0].Conditions)
	assert.NotSame(t, original, loaded[0])

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(repo.Blob(), &raw))
	assert.Equal(t, original.ID.String(), raw[0]["id"])
}

func TestRuleRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()
	first := rule.NewRule(rule.Input{Name: "first", ResourceType: rule.ResourceTypeIssue, CreatedBy: "octocat"}, time.Now())

	err := repo.Update(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		assert.Empty(t, current)
		return append(current, first), nil
	})
	require.NoError(t, err)

	t.Run("fn error leaves the blob untouched", func(t *testing.T) {
		before := repo.Blob()
		failure := assert.AnError

		err := repo.Update(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
			return nil, failure
		})

		assert.ErrorIs(t, err, failure)
		assert.Equal(t, before, repo.Blob())
	})

	rules, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, first.ID, rules[0].ID)
}
