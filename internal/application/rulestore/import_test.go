package rulestore

import (
	"context"
	"testing"

	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

const yamlRules = `
schemaVersion: "1.0"
rules:
  - name: Label bugs
    resourceType: ISSUE
    enabled: true
    conditions:
      operator: AND
      conditions:
        - type: TITLE_CONTAINS
          value: bug
    actions:
      - type: ADD_LABEL
        label: bug
  - name: Review drafts
    resourceType: PULL_REQUEST
    enabled: false
    createdBy: release-bot
    conditions:
      type: IS_DRAFT
      value: "false"
    actions:
      - type: REQUEST_REVIEW
        reviewer: lead
`

const jsoncRules = `{
  // imported from the ops repo
  "schemaVersion": "1.0",
  "rules": [
    {
      "name": "Close stale",
      "resourceType": "ISSUE",
      "enabled": true,
      "conditions": {"type": "LABEL_PRESENT", "value": "stale"},
      "actions": [{"type": "CLOSE"},],
    },
  ],
}`

func TestStore_Import(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		store, _ := newMemStore(t)

		created, err := store.Import(context.Background(), []byte(yamlRules), FormatYAML, "importer")

		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, "importer", created[0].CreatedBy)
		assert.Equal(t, rule.And(rule.Leaf(rule.ConditionTitleContains, "bug")), created[0].Conditions)
		assert.Equal(t, "release-bot", created[1].CreatedBy)
		assert.False(t, created[1].Enabled)
		assert.Equal(t, rule.ResourceTypePullRequest, created[1].ResourceType)
		assert.Len(t, store.GetRules(), 2)
	})

	t.Run("jsonc with comments and trailing commas", func(t *testing.T) {
		store, _ := newMemStore(t)

		created, err := store.Import(context.Background(), []byte(jsoncRules), FormatJSONC, "importer")

		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, "Close stale", created[0].Name)
		assert.Equal(t, []rule.Action{{Type: rule.ActionClose}}, created[0].Actions)
	})

	t.Run("wrong schema version", func(t *testing.T) {
		store, _ := newMemStore(t)

		_, err := store.Import(context.Background(), []byte("schemaVersion: \"2.0\"\nrules: []\n"), FormatYAML, "importer")

		assert.True(t, cerrors.Is(err, rule.ErrValidation))
	})

	t.Run("unknown format", func(t *testing.T) {
		store, _ := newMemStore(t)

		_, err := store.Import(context.Background(), []byte("{}"), "toml", "importer")

		assert.True(t, cerrors.Is(err, rule.ErrValidation))
	})

	t.Run("stops at first invalid rule", func(t *testing.T) {
		store, _ := newMemStore(t)
		data := `
schemaVersion: "1.0"
rules:
  - name: ok
    resourceType: ISSUE
  - name: ""
    resourceType: ISSUE
  - name: never reached
    resourceType: ISSUE
`
		created, err := store.Import(context.Background(), []byte(data), FormatYAML, "importer")

		require.Error(t, err)
		assert.True(t, cerrors.Is(err, rule.ErrValidation))
		assert.Len(t, created, 1)
		assert.Len(t, store.GetRules(), 1)
	})
}
