package resource

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_client.go -package=mocks . Client

import (
	"context"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// Snapshot is a normalized, point-in-time view of an issue or pull request
type Snapshot struct {
	Kind      rule.ResourceType `json:"kind"`
	Owner     string            `json:"owner"`
	Repo      string            `json:"repo"`
	Number    int               `json:"number"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	State     string            `json:"state"`
	Author    string            `json:"author"`
	Labels    []string          `json:"labels"`
	Assignees []string          `json:"assignees"`
	Milestone string            `json:"milestone,omitempty"`

	// Pull request only
	Draft              bool     `json:"draft,omitempty"`
	Merged             bool     `json:"merged,omitempty"`
	BaseRef            string   `json:"baseRef,omitempty"`
	HeadRef            string   `json:"headRef,omitempty"`
	RequestedReviewers []string `json:"requestedReviewers,omitempty"`
	Additions          int      `json:"additions,omitempty"`
	Deletions          int      `json:"deletions,omitempty"`
	ChangedFiles       int      `json:"changedFiles,omitempty"`
}

// Target addresses the resource actions are applied to.
type Target struct {
	Kind   rule.ResourceType
	Owner  string
	Repo   string
	Number int
}

// Target returns the addressing of the snapshot.
func (s *Snapshot) Target() Target {
	return Target{Kind: s.Kind, Owner: s.Owner, Repo: s.Repo, Number: s.Number}
}

// Client is the subset of the GitHub API the automation engine needs.
// Every method is a single network call returning success or an error.
type Client interface {
	GetIssue(ctx context.Context, owner, repo string, number int) (*Snapshot, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*Snapshot, error)

	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
	RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error
	AddAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error
	RemoveAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	SetState(ctx context.Context, owner, repo string, number int, state string) error
	Merge(ctx context.Context, owner, repo string, number int, method string) error
	RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error
}
