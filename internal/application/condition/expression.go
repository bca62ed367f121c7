package condition

import (
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/execution-hub/repo-automation/internal/domain/resource"
)

// evaluateExpression evaluates a govaluate boolean expression against the
// snapshot, e.g. `state == 'open' && additions > 500` or `'bug' IN labels`.
// Parse errors, evaluation errors and non-boolean results do not match.
func evaluateExpression(s *resource.Snapshot, expression string) bool {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return false
	}
	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return false
	}
	result, err := compiled.Evaluate(expressionParams(s))
	if err != nil {
		return false
	}
	matched, ok := result.(bool)
	return ok && matched
}

func expressionParams(s *resource.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"kind":               string(s.Kind),
		"owner":              s.Owner,
		"repo":               s.Repo,
		"number":             float64(s.Number),
		"title":              s.Title,
		"body":               s.Body,
		"state":              s.State,
		"author":             s.Author,
		"labels":             toInterfaces(s.Labels),
		"assignees":          toInterfaces(s.Assignees),
		"milestone":          s.Milestone,
		"draft":              s.Draft,
		"merged":             s.Merged,
		"baseRef":            s.BaseRef,
		"headRef":            s.HeadRef,
		"requestedReviewers": toInterfaces(s.RequestedReviewers),
		"additions":          float64(s.Additions),
		"deletions":          float64(s.Deletions),
		"changedFiles":       float64(s.ChangedFiles),
	}
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
