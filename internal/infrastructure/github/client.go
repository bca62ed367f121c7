package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/execution-hub/repo-automation/internal/domain/resource"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// Options configures the GitHub client.
type Options struct {
	Token string
	// BaseURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	BaseURL       string
	FetchAttempts uint
	RetryDelay    time.Duration
}

// Client implements resource.Client on top of the GitHub REST API.
// Only fetches are retried. Mutations run once.
type Client struct {
	client        *github.Client
	fetchAttempts uint
	retryDelay    time.Duration
	logger        zerolog.Logger
}

var _ resource.Client = (*Client)(nil)

// NewClient creates a new GitHub client. If the token is empty the client is unauthenticated.
func NewClient(ctx context.Context, opts Options, logger zerolog.Logger) (*Client, error) {
	var tc *http.Client
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(tc)
	if opts.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, errors.Wrap(err, "invalid GitHub API URL")
		}
		client.BaseURL = u
	}

	attempts := opts.FetchAttempts
	if attempts == 0 {
		attempts = 3
	}
	delay := opts.RetryDelay
	if delay == 0 {
		delay = 200 * time.Millisecond
	}

	return &Client{
		client:        client,
		fetchAttempts: attempts,
		retryDelay:    delay,
		logger:        logger.With().Str("service", "github_client").Logger(),
	}, nil
}

// GetIssue fetches issue details.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*resource.Snapshot, error) {
	var issue *github.Issue
	err := c.withRetry(ctx, "issue", func() error {
		var err error
		issue, _, err = c.client.Issues.Get(ctx, owner, repo, number)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch issue")
	}
	return issueSnapshot(owner, repo, issue), nil
}

// GetPullRequest fetches pull request details.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*resource.Snapshot, error) {
	var pr *github.PullRequest
	err := c.withRetry(ctx, "pull_request", func() error {
		var err error
		pr, _, err = c.client.PullRequests.Get(ctx, owner, repo, number)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch pull request")
	}
	return pullRequestSnapshot(owner, repo, pr), nil
}

// AddLabels adds labels to an issue or pull request.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return errors.New("labels cannot be empty")
	}
	if _, _, err := c.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels); err != nil {
		return errors.Wrap(err, "failed to add labels")
	}
	return nil
}

// RemoveLabel removes one label from an issue or pull request.
func (c *Client) RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error {
	if _, err := c.client.Issues.RemoveLabelForIssue(ctx, owner, repo, number, label); err != nil {
		return errors.Wrap(err, "failed to remove label")
	}
	return nil
}

// AddAssignees assigns users.
func (c *Client) AddAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error {
	if _, _, err := c.client.Issues.AddAssignees(ctx, owner, repo, number, assignees); err != nil {
		return errors.Wrap(err, "failed to add assignees")
	}
	return nil
}

// RemoveAssignees unassigns users.
func (c *Client) RemoveAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error {
	if _, _, err := c.client.Issues.RemoveAssignees(ctx, owner, repo, number, assignees); err != nil {
		return errors.Wrap(err, "failed to remove assignees")
	}
	return nil
}

// CreateComment posts a comment on an issue or pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.New("comment body cannot be empty")
	}
	comment := &github.IssueComment{
		Body: github.String(body),
	}
	if _, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, comment); err != nil {
		return errors.Wrap(err, "failed to create comment")
	}
	return nil
}

// SetState opens or closes an issue or pull request.
func (c *Client) SetState(ctx context.Context, owner, repo string, number int, state string) error {
	req := &github.IssueRequest{State: github.String(state)}
	if _, _, err := c.client.Issues.Edit(ctx, owner, repo, number, req); err != nil {
		return errors.Wrapf(err, "failed to set state to %s", state)
	}
	return nil
}

// Merge merges a pull request. An empty method uses the repository default.
func (c *Client) Merge(ctx context.Context, owner, repo string, number int, method string) error {
	result, _, err := c.client.PullRequests.Merge(ctx, owner, repo, number, "", &github.PullRequestOptions{MergeMethod: method})
	if err != nil {
		return errors.Wrap(err, "failed to merge pull request")
	}
	if !result.GetMerged() {
		return errors.Newf("pull request was not merged: %s", result.GetMessage())
	}
	return nil
}

// RequestReviewers requests reviews from users.
func (c *Client) RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error {
	req := github.ReviewersRequest{Reviewers: reviewers}
	if _, _, err := c.client.PullRequests.RequestReviewers(ctx, owner, repo, number, req); err != nil {
		return errors.Wrap(err, "failed to request reviewers")
	}
	return nil
}

func (c *Client) withRetry(ctx context.Context, kind string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(c.fetchAttempts),
		retry.LastErrorOnly(true),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn().Err(err).Str("resource", kind).Uint("attempt", n+1).Msg("retrying fetch")
		}),
	)
}

// isRetryable reports whether a failed fetch is worth another attempt:
// transport errors, rate limits and 5xx responses.
func isRetryable(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return respErr.Response != nil && respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func issueSnapshot(owner, repo string, issue *github.Issue) *resource.Snapshot {
	return &resource.Snapshot{
		Kind:      rule.ResourceTypeIssue,
		Owner:     owner,
		Repo:      repo,
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		Author:    issue.GetUser().GetLogin(),
		Labels:    labelNames(issue.Labels),
		Assignees: logins(issue.Assignees),
		Milestone: issue.GetMilestone().GetTitle(),
	}
}

func pullRequestSnapshot(owner, repo string, pr *github.PullRequest) *resource.Snapshot {
	return &resource.Snapshot{
		Kind:               rule.ResourceTypePullRequest,
		Owner:              owner,
		Repo:               repo,
		Number:             pr.GetNumber(),
		Title:              pr.GetTitle(),
		Body:               pr.GetBody(),
		State:              pr.GetState(),
		Author:             pr.GetUser().GetLogin(),
		Labels:             labelNames(pr.Labels),
		Assignees:          logins(pr.Assignees),
		Milestone:          pr.GetMilestone().GetTitle(),
		Draft:              pr.GetDraft(),
		Merged:             pr.GetMerged(),
		BaseRef:            pr.GetBase().GetRef(),
		HeadRef:            pr.GetHead().GetRef(),
		RequestedReviewers: logins(pr.RequestedReviewers),
		Additions:          pr.GetAdditions(),
		Deletions:          pr.GetDeletions(),
		ChangedFiles:       pr.GetChangedFiles(),
	}
}

func labelNames(labels []*github.Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if name := l.GetName(); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func logins(users []*github.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		if login := u.GetLogin(); login != "" {
			out = append(out, login)
		}
	}
	return out
}
