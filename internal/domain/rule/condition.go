package rule

import (
	"github.com/cockroachdb/errors"
)

// ConditionType selects the predicate a leaf condition applies
type ConditionType string

const (
	ConditionTitleContains     ConditionType = "TITLE_CONTAINS"
	ConditionTitleEquals       ConditionType = "TITLE_EQUALS"
	ConditionBodyContains      ConditionType = "BODY_CONTAINS"
	ConditionLabelPresent      ConditionType = "LABEL_PRESENT"
	ConditionLabelAbsent       ConditionType = "LABEL_ABSENT"
	ConditionAuthorEquals      ConditionType = "AUTHOR_EQUALS"
	ConditionAssigneePresent   ConditionType = "ASSIGNEE_PRESENT"
	ConditionStateEquals       ConditionType = "STATE_EQUALS"
	ConditionMilestoneEquals   ConditionType = "MILESTONE_EQUALS"
	ConditionIsDraft           ConditionType = "IS_DRAFT"
	ConditionIsMerged          ConditionType = "IS_MERGED"
	ConditionBaseBranchEquals  ConditionType = "BASE_BRANCH_EQUALS"
	ConditionHeadBranchEquals  ConditionType = "HEAD_BRANCH_EQUALS"
	ConditionReviewerRequested ConditionType = "REVIEWER_REQUESTED"
	ConditionExpression        ConditionType = "EXPRESSION"
)

// Operator combines the children of a group condition
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// MaxConditionDepth bounds the nesting of condition groups. A leaf directly
// under the root has depth 2.
const MaxConditionDepth = 32

// Condition is a node of a rule's condition tree: either a leaf
// {type, value} or a group {operator, conditions}. A node with neither set
// behaves as an empty AND group.
type Condition struct {
	Type       ConditionType `json:"type,omitempty" yaml:"type,omitempty"`
	Value      string        `json:"value,omitempty" yaml:"value,omitempty"`
	Operator   Operator      `json:"operator,omitempty" yaml:"operator,omitempty"`
	Conditions []Condition   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Leaf builds a leaf condition.
func Leaf(t ConditionType, value string) Condition {
	return Condition{Type: t, Value: value}
}

// And builds an AND group.
func And(children ...Condition) Condition {
	return Condition{Operator: OperatorAnd, Conditions: children}
}

// Or builds an OR group.
func Or(children ...Condition) Condition {
	return Condition{Operator: OperatorOr, Conditions: children}
}

// IsLeaf reports whether the node is a leaf condition. A node carrying a
// value without a type is a malformed leaf, not an empty group.
func (c Condition) IsLeaf() bool {
	return c.Type != "" || c.Value != ""
}

// IsGroup reports whether the node is a group condition.
func (c Condition) IsGroup() bool {
	return c.Operator != "" || len(c.Conditions) > 0
}

// Depth returns the depth of the tree rooted at c.
func (c Condition) Depth() int {
	max := 0
	for _, child := range c.Conditions {
		if d := child.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// Validate checks the structure of the tree. Unknown leaf types are allowed;
// they never match at evaluation time.
func (c Condition) Validate() error {
	return c.validate(1)
}

func (c Condition) validate(depth int) error {
	if depth > MaxConditionDepth {
		return errors.Newf("condition tree exceeds max depth %d", MaxConditionDepth)
	}
	if c.IsLeaf() && c.IsGroup() {
		return errors.New("condition must be either a leaf or a group, not both")
	}
	if c.IsLeaf() {
		if c.Type == "" {
			return errors.New("leaf condition requires a type")
		}
		return nil
	}
	switch c.Operator {
	case OperatorAnd, OperatorOr:
	case "":
		if len(c.Conditions) > 0 {
			return errors.New("group condition requires an operator")
		}
	default:
		return errors.Newf("invalid operator %q", c.Operator)
	}
	for _, child := range c.Conditions {
		if err := child.validate(depth + 1); err != nil {
			return err
		}
	}
	return nil
}
