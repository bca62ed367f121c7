package condition

import (
	"github.com/execution-hub/repo-automation/internal/domain/resource"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// Predicate tests one leaf condition value against a snapshot.
type Predicate func(s *resource.Snapshot, value string) bool

// Evaluator evaluates condition trees against resource snapshots.
// It has no side effects beyond what registered predicates do.
type Evaluator struct {
	predicates map[rule.ConditionType]Predicate
}

// NewEvaluator creates an evaluator with the built-in predicates registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{predicates: make(map[rule.ConditionType]Predicate, len(builtins))}
	for t, p := range builtins {
		e.predicates[t] = p
	}
	return e
}

// Register adds or replaces the predicate for a condition type.
func (e *Evaluator) Register(t rule.ConditionType, p Predicate) {
	e.predicates[t] = p
}

// Evaluate returns whether the snapshot satisfies the condition tree.
// Unknown leaf types and trees deeper than rule.MaxConditionDepth never match.
func (e *Evaluator) Evaluate(node rule.Condition, s *resource.Snapshot) bool {
	return e.eval(node, s, 1)
}

func (e *Evaluator) eval(node rule.Condition, s *resource.Snapshot, depth int) bool {
	if depth > rule.MaxConditionDepth {
		return false
	}
	if node.IsLeaf() {
		if node.IsGroup() {
			return false
		}
		p, ok := e.predicates[node.Type]
		if !ok || s == nil {
			return false
		}
		return p(s, node.Value)
	}

	switch node.Operator {
	case rule.OperatorOr:
		for _, child := range node.Conditions {
			if e.eval(child, s, depth+1) {
				return true
			}
		}
		return false
	case rule.OperatorAnd, "":
		for _, child := range node.Conditions {
			if !e.eval(child, s, depth+1) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
