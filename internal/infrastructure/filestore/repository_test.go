package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

func TestRuleRepository_MissingFileIsEmpty(t *testing.T) {
	repo := NewRuleRepository(filepath.Join(t.TempDir(), "rules.json"))

	rules, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRuleRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "rules.json")
	repo := NewRuleRepository(path)

	original := rule.NewRule(rule.Input{
		Name:         "three levels",
		ResourceType: rule.ResourceTypeIssue,
		Enabled:      true,
		Conditions: rule.Or(
			rule.Leaf(rule.ConditionTitleContains, "crash"),
			rule.And(
				rule.Leaf(rule.ConditionLabelPresent, "bug"),
				rule.Or(rule.Leaf(rule.ConditionMilestoneEquals, "v2"), rule.Leaf(rule.ConditionAssigneePresent, "hubot")),
			),
		),
		Actions:   []rule.Action{{Type: rule.ActionReplaceLabel, OldLabel: "triage", Label: "bug"}},
		CreatedBy: "octocat",
	}, time.Now())

	require.NoError(t, repo.Save(ctx, []*rule.Rule{original}))

	loaded, err := NewRuleRepository(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, original.ID, loaded[0].ID)
	assert.Equal(t, original.Conditions, loaded[0].Conditions)
	assert.Equal(t, original.Actions, loaded[0].Actions)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestRuleRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewRuleRepository(path).Load(context.Background())

	assert.Error(t, err)
}

func TestRuleRepository_UpdateAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules.json")
	// Separate instances share nothing but the file, like separate processes.
	repos := []*RuleRepository{NewRuleRepository(path), NewRuleRepository(path), NewRuleRepository(path)}

	var wg sync.WaitGroup
	for _, repo := range repos {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(repo *RuleRepository) {
				defer wg.Done()
				err := repo.Update(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
					r := rule.NewRule(rule.Input{Name: "concurrent", ResourceType: rule.ResourceTypeIssue, CreatedBy: "octocat"}, time.Now())
					return append(current, r), nil
				})
				assert.NoError(t, err)
			}(repo)
		}
	}
	wg.Wait()

	rules, err := repos[0].Load(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 15)
	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file is released")
}

func TestRuleRepository_UpdateAbortReleasesLock(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules.json")
	repo := NewRuleRepository(path)

	err := repo.Update(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		return nil, assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing is written")
	_, statErr = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(statErr))
}

func TestRuleRepository_UpdateRemovesStaleLock(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules.json")
	lockPath := path + ".lock"
	require.NoError(t, os.WriteFile(lockPath, nil, 0o600))
	old := time.Now().Add(-2 * lockStaleAfter)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	err := NewRuleRepository(path).Update(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		return current, nil
	})

	require.NoError(t, err)
}

func TestRuleRepository_UpdateHonorsContextWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path+".lock", nil, 0o600))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewRuleRepository(path).Update(ctx, func(current []*rule.Rule) ([]*rule.Rule, error) {
		t.Fatal("fn must not run without the lock")
		return nil, nil
	})

	assert.Error(t, err)
}
