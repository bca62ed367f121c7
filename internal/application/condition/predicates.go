package condition

import (
	"strconv"
	"strings"

	"github.com/execution-hub/repo-automation/internal/domain/resource"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// Case policy:
//   - *_CONTAINS: case-insensitive substring, empty field never matches
//   - labels and logins: case-insensitive, GitHub treats them that way
//   - state, title, branch and milestone equality: case-sensitive
var builtins = map[rule.ConditionType]Predicate{
	rule.ConditionTitleContains: func(s *resource.Snapshot, v string) bool {
		return containsFold(s.Title, v)
	},
	rule.ConditionTitleEquals: func(s *resource.Snapshot, v string) bool {
		return s.Title == v
	},
	rule.ConditionBodyContains: func(s *resource.Snapshot, v string) bool {
		return containsFold(s.Body, v)
	},
	rule.ConditionLabelPresent: func(s *resource.Snapshot, v string) bool {
		return anyEqualFold(s.Labels, v)
	},
	rule.ConditionLabelAbsent: func(s *resource.Snapshot, v string) bool {
		return !anyEqualFold(s.Labels, v)
	},
	rule.ConditionAuthorEquals: func(s *resource.Snapshot, v string) bool {
		return s.Author != "" && strings.EqualFold(s.Author, v)
	},
	rule.ConditionAssigneePresent: func(s *resource.Snapshot, v string) bool {
		return anyEqualFold(s.Assignees, v)
	},
	rule.ConditionStateEquals: func(s *resource.Snapshot, v string) bool {
		return s.State == v
	},
	rule.ConditionMilestoneEquals: func(s *resource.Snapshot, v string) bool {
		return s.Milestone != "" && s.Milestone == v
	},
	rule.ConditionIsDraft: func(s *resource.Snapshot, v string) bool {
		return boolEquals(s.Draft, v)
	},
	rule.ConditionIsMerged: func(s *resource.Snapshot, v string) bool {
		return boolEquals(s.Merged, v)
	},
	rule.ConditionBaseBranchEquals: func(s *resource.Snapshot, v string) bool {
		return s.BaseRef != "" && s.BaseRef == v
	},
	rule.ConditionHeadBranchEquals: func(s *resource.Snapshot, v string) bool {
		return s.HeadRef != "" && s.HeadRef == v
	},
	rule.ConditionReviewerRequested: func(s *resource.Snapshot, v string) bool {
		return anyEqualFold(s.RequestedReviewers, v)
	},
	rule.ConditionExpression: evaluateExpression,
}

func containsFold(field, v string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(v))
}

func anyEqualFold(values []string, v string) bool {
	for _, item := range values {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func boolEquals(field bool, v string) bool {
	want, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return field == want
}
