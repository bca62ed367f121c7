package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Options{
		Token:         "test-token",
		BaseURL:       srv.URL,
		FetchAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_GetIssue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets/issues/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{
			"number": 42,
			"title": "This is a bug report",
			"body": "it crashes",
			"state": "open",
			"user": {"login": "octocat"},
			"labels": [{"name": "triage"}, {"name": "p1"}],
			"assignees": [{"login": "hubot"}],
			"milestone": {"title": "v1.0"}
		}`)
	})
	client := newTestClient(t, mux)

	snap, err := client.GetIssue(context.Background(), "acme", "widgets", 42)

	require.NoError(t, err)
	assert.Equal(t, rule.ResourceTypeIssue, snap.Kind)
	assert.Equal(t, "acme", snap.Owner)
	assert.Equal(t, "widgets", snap.Repo)
	assert.Equal(t, 42, snap.Number)
	assert.Equal(t, "This is a bug report", snap.Title)
	assert.Equal(t, "open", snap.State)
	assert.Equal(t, "octocat", snap.Author)
	assert.Equal(t, []string{"triage", "p1"}, snap.Labels)
	assert.Equal(t, []string{"hubot"}, snap.Assignees)
	assert.Equal(t, "v1.0", snap.Milestone)
}

func TestClient_GetPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"number": 7,
			"title": "Add feature",
			"state": "open",
			"draft": true,
			"merged": false,
			"user": {"login": "dev"},
			"base": {"ref": "main"},
			"head": {"ref": "feature/x"},
			"requested_reviewers": [{"login": "lead"}],
			"additions": 120,
			"deletions": 4,
			"changed_files": 3
		}`)
	})
	client := newTestClient(t, mux)

	snap, err := client.GetPullRequest(context.Background(), "acme", "widgets", 7)

	require.NoError(t, err)
	assert.Equal(t, rule.ResourceTypePullRequest, snap.Kind)
	assert.True(t, snap.Draft)
	assert.False(t, snap.Merged)
	assert.Equal(t, "main", snap.BaseRef)
	assert.Equal(t, "feature/x", snap.HeadRef)
	assert.Equal(t, []string{"lead"}, snap.RequestedReviewers)
	assert.Equal(t, 120, snap.Additions)
	assert.Equal(t, 3, snap.ChangedFiles)
	assert.NotNil(t, snap.Labels)
}

func TestClient_FetchRetries(t *testing.T) {
	t.Run("server errors are retried", func(t *testing.T) {
		var calls int32
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widgets/issues/1", func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				writeJSON(w, http.StatusBadGateway, `{"message": "bad gateway"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"number": 1, "title": "ok"}`)
		})
		client := newTestClient(t, mux)

		snap, err := client.GetIssue(context.Background(), "acme", "widgets", 1)

		require.NoError(t, err)
		assert.Equal(t, "ok", snap.Title)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("not found is not retried", func(t *testing.T) {
		var calls int32
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widgets/issues/404", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			writeJSON(w, http.StatusNotFound, `{"message": "Not Found"}`)
		})
		client := newTestClient(t, mux)

		snap, err := client.GetIssue(context.Background(), "acme", "widgets", 404)

		assert.Nil(t, snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch issue")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		var calls int32
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widgets/pulls/9", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			writeJSON(w, http.StatusServiceUnavailable, `{"message": "unavailable"}`)
		})
		client := newTestClient(t, mux)

		_, err := client.GetPullRequest(context.Background(), "acme", "widgets", 9)

		require.Error(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})
}

func TestClient_Mutations(t *testing.T) {
	type request struct {
		method string
		path   string
		body   map[string]interface{}
	}
	var got []request
	record := func(status int, response string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			req := request{method: r.Method, path: r.URL.Path}
			if data, _ := io.ReadAll(r.Body); len(data) > 0 {
				var body interface{}
				if err := json.Unmarshal(data, &body); err == nil {
					if m, ok := body.(map[string]interface{}); ok {
						req.body = m
					}
				}
			}
			got = append(got, req)
			writeJSON(w, status, response)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/widgets/issues/5/labels", record(http.StatusOK, `[]`))
	mux.HandleFunc("DELETE /repos/acme/widgets/issues/5/labels/wip", record(http.StatusOK, `[]`))
	mux.HandleFunc("POST /repos/acme/widgets/issues/5/assignees", record(http.StatusCreated, `{}`))
	mux.HandleFunc("DELETE /repos/acme/widgets/issues/5/assignees", record(http.StatusOK, `{}`))
	mux.HandleFunc("POST /repos/acme/widgets/issues/5/comments", record(http.StatusCreated, `{}`))
	mux.HandleFunc("PATCH /repos/acme/widgets/issues/5", record(http.StatusOK, `{}`))
	mux.HandleFunc("PUT /repos/acme/widgets/pulls/5/merge", record(http.StatusOK, `{"merged": true}`))
	mux.HandleFunc("POST /repos/acme/widgets/pulls/5/requested_reviewers", record(http.StatusCreated, `{}`))
	client := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, client.AddLabels(ctx, "acme", "widgets", 5, []string{"bug"}))
	require.NoError(t, client.RemoveLabel(ctx, "acme", "widgets", 5, "wip"))
	require.NoError(t, client.AddAssignees(ctx, "acme", "widgets", 5, []string{"hubot"}))
	require.NoError(t, client.RemoveAssignees(ctx, "acme", "widgets", 5, []string{"hubot"}))
	require.NoError(t, client.CreateComment(ctx, "acme", "widgets", 5, "hello"))
	require.NoError(t, client.SetState(ctx, "acme", "widgets", 5, "closed"))
	require.NoError(t, client.Merge(ctx, "acme", "widgets", 5, "squash"))
	require.NoError(t, client.RequestReviewers(ctx, "acme", "widgets", 5, []string{"lead"}))

	require.Len(t, got, 8)
	assert.Equal(t, "DELETE", got[1].method)
	assert.Equal(t, "hello", got[4].body["body"])
	assert.Equal(t, "closed", got[5].body["state"])
	assert.Equal(t, "squash", got[6].body["merge_method"])
	assert.Equal(t, []interface{}{"lead"}, got[7].body["reviewers"])
}

func TestClient_MutationErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /repos/acme/widgets/issues/5/labels/gone", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message": "Label does not exist"}`)
	})
	mux.HandleFunc("PUT /repos/acme/widgets/pulls/5/merge", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"merged": false, "message": "Head branch was modified"}`)
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	err := client.RemoveLabel(ctx, "acme", "widgets", 5, "gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to remove label")

	err = client.Merge(ctx, "acme", "widgets", 5, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Head branch was modified")

	assert.Error(t, client.CreateComment(ctx, "acme", "widgets", 5, "  "))
	assert.Error(t, client.AddLabels(ctx, "acme", "widgets", 5, nil))
}
