package rulestore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// RulesSchemaVersionV1 is the only rule file schema understood by Import.
const RulesSchemaVersionV1 = "1.0"

// Import formats
const (
	FormatYAML  = "yaml"
	FormatJSONC = "jsonc"
)

// RuleFile is the top-level layout of an importable rule file.
type RuleFile struct {
	SchemaVersion string       `json:"schemaVersion" yaml:"schemaVersion"`
	Rules         []rule.Input `json:"rules" yaml:"rules"`
}

// ParseRuleFile decodes a YAML or JSONC rule file. JSONC may carry
// comments and trailing commas.
func ParseRuleFile(data []byte, format string) (*RuleFile, error) {
	var file RuleFile
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, rule.NewValidationError(map[string]string{"file": "is not valid YAML: " + err.Error()})
		}
	case FormatJSONC, "json":
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, rule.NewValidationError(map[string]string{"file": "is not valid JSON: " + err.Error()})
		}
	default:
		return nil, rule.NewValidationError(map[string]string{"format": "must be one of yaml, jsonc"})
	}
	if file.SchemaVersion != RulesSchemaVersionV1 {
		return nil, rule.NewValidationError(map[string]string{"schemaVersion": "must be " + RulesSchemaVersionV1})
	}
	return &file, nil
}

// Import creates every rule of a rule file in order. createdBy fills in
// rules that do not name an author. It stops at the first failure and
// returns the rules created so far.
func (s *Store) Import(ctx context.Context, data []byte, format, createdBy string) ([]*rule.Rule, error) {
	file, err := ParseRuleFile(data, format)
	if err != nil {
		return nil, err
	}

	created := make([]*rule.Rule, 0, len(file.Rules))
	for i, in := range file.Rules {
		if strings.TrimSpace(in.CreatedBy) == "" {
			in.CreatedBy = createdBy
		}
		r, err := s.CreateRule(ctx, in)
		if err != nil {
			return created, errors.Wrapf(err, "rule %d (%s)", i, in.Name)
		}
		created = append(created, r)
	}

	s.logger.Info().Int("rules", len(created)).Str("format", format).Msg("rules imported")
	return created, nil
}
