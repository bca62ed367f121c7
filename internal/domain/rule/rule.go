package rule

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ResourceType represents the kind of GitHub resource a rule applies to
type ResourceType string

const (
	ResourceTypeIssue       ResourceType = "ISSUE"
	ResourceTypePullRequest ResourceType = "PULL_REQUEST"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	return t == ResourceTypeIssue || t == ResourceTypePullRequest
}

// StorageKey is the key under which the whole rule collection is persisted.
const StorageKey = "automation_rules"

// Rule represents a persisted automation rule
type Rule struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name" validate:"required"`
	Description  string       `json:"description,omitempty"`
	ResourceType ResourceType `json:"resourceType" validate:"required,oneof=ISSUE PULL_REQUEST"`
	Enabled      bool         `json:"enabled"`
	Conditions   Condition    `json:"conditions"`
	Actions      []Action     `json:"actions"`
	CreatedBy    string       `json:"createdBy" validate:"required"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Input carries the caller-supplied fields of a new rule.
type Input struct {
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	ResourceType ResourceType `json:"resourceType" yaml:"resourceType"`
	Enabled      bool         `json:"enabled" yaml:"enabled"`
	Conditions   Condition    `json:"conditions" yaml:"conditions"`
	Actions      []Action     `json:"actions" yaml:"actions"`
	CreatedBy    string       `json:"createdBy" yaml:"createdBy"`
}

// Patch holds a partial update. Nil fields are left untouched.
type Patch struct {
	Name         *string       `json:"name,omitempty"`
	Description  *string       `json:"description,omitempty"`
	ResourceType *ResourceType `json:"resourceType,omitempty"`
	Enabled      *bool         `json:"enabled,omitempty"`
	Conditions   *Condition    `json:"conditions,omitempty"`
	Actions      *[]Action     `json:"actions,omitempty"`
	CreatedBy    *string       `json:"createdBy,omitempty"`
}

// NewRule creates a new Rule from input with a fresh id and timestamps.
func NewRule(in Input, now time.Time) *Rule {
	now = now.UTC()
	actions := in.Actions
	if actions == nil {
		actions = []Action{}
	}
	return &Rule{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		ResourceType: in.ResourceType,
		Enabled:      in.Enabled,
		Conditions:   in.Conditions,
		Actions:      actions,
		CreatedBy:    strings.TrimSpace(in.CreatedBy),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply merges the patch into the rule and refreshes UpdatedAt.
// UpdatedAt never moves backwards, even if the clock does.
func (r *Rule) Apply(p Patch, now time.Time) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.ResourceType != nil {
		r.ResourceType = *p.ResourceType
	}
	if p.Enabled != nil {
		r.Enabled = *p.Enabled
	}
	if p.Conditions != nil {
		r.Conditions = *p.Conditions
	}
	if p.Actions != nil {
		r.Actions = *p.Actions
		if r.Actions == nil {
			r.Actions = []Action{}
		}
	}
	if p.CreatedBy != nil {
		r.CreatedBy = strings.TrimSpace(*p.CreatedBy)
	}
	now = now.UTC()
	if now.Before(r.UpdatedAt) {
		now = r.UpdatedAt
	}
	r.UpdatedAt = now
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the rule
func (r *Rule) Validate() error {
	fields := FieldValidationError{}
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[jsonFieldName(fe.Field())] = fieldMessage(fe)
			}
		} else {
			fields["rule"] = err.Error()
		}
	}
	if err := r.Conditions.Validate(); err != nil {
		fields["conditions"] = err.Error()
	}
	for i, a := range r.Actions {
		if a.Type == "" {
			fields["actions"] = fmt.Sprintf("action %d has no type", i)
			break
		}
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.Join(strings.Split(fe.Param(), " "), ", ")
	default:
		return "is invalid"
	}
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
