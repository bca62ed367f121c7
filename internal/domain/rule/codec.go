package rule

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// MarshalCollection serializes the rule collection into the persisted blob.
func MarshalCollection(rules []*Rule) ([]byte, error) {
	if rules == nil {
		rules = []*Rule{}
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal rules")
	}
	return data, nil
}

// UnmarshalCollection parses a persisted blob. An empty blob is an empty collection.
func UnmarshalCollection(data []byte) ([]*Rule, error) {
	if len(data) == 0 {
		return []*Rule{}, nil
	}
	var rules []*Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal rules")
	}
	if rules == nil {
		rules = []*Rule{}
	}
	return rules, nil
}
