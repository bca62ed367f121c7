package rule

// ActionType represents the type of action to take when a rule matches
type ActionType string

const (
	ActionAddLabel      ActionType = "ADD_LABEL"
	ActionRemoveLabel   ActionType = "REMOVE_LABEL"
	ActionReplaceLabel  ActionType = "REPLACE_LABEL"
	ActionAssign        ActionType = "ASSIGN"
	ActionUnassign      ActionType = "UNASSIGN"
	ActionComment       ActionType = "COMMENT"
	ActionClose         ActionType = "CLOSE"
	ActionReopen        ActionType = "REOPEN"
	ActionMerge         ActionType = "MERGE"
	ActionRequestReview ActionType = "REQUEST_REVIEW"
)

// Known reports whether t is one of the built-in action types.
func (t ActionType) Known() bool {
	switch t {
	case ActionAddLabel, ActionRemoveLabel, ActionReplaceLabel, ActionAssign, ActionUnassign,
		ActionComment, ActionClose, ActionReopen, ActionMerge, ActionRequestReview:
		return true
	}
	return false
}

// Action is one side-effecting step of a rule. Only the parameters relevant
// to Type are read.
type Action struct {
	Type        ActionType `json:"type" yaml:"type"`
	Label       string     `json:"label,omitempty" yaml:"label,omitempty"`
	OldLabel    string     `json:"oldLabel,omitempty" yaml:"oldLabel,omitempty"`
	Assignee    string     `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Body        string     `json:"body,omitempty" yaml:"body,omitempty"`
	Reviewer    string     `json:"reviewer,omitempty" yaml:"reviewer,omitempty"`
	MergeMethod string     `json:"mergeMethod,omitempty" yaml:"mergeMethod,omitempty"`
}

// ActionResult is the outcome of a single executed action
type ActionResult struct {
	Type    ActionType `json:"type"`
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
}

// ExecutionResult is the per-rule outcome of one triggering call. It is not persisted.
type ExecutionResult struct {
	RuleID          string         `json:"ruleId"`
	RuleName        string         `json:"ruleName"`
	Matched         bool           `json:"matched"`
	ActionsExecuted []ActionResult `json:"actionsExecuted"`
}
