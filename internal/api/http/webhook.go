package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// deliveryWindow is how long delivery ids are remembered for replay protection.
const deliveryWindow = time.Hour

// Trigger identifies the resource a webhook event asks to run rules for.
type Trigger struct {
	Kind   rule.ResourceType
	Owner  string
	Repo   string
	Number int
}

// DispatchFunc hands a trigger off for rule execution. It must not block
// on the execution itself.
type DispatchFunc func(t Trigger)

// closed is included so IS_MERGED and STATE_EQUALS closed rules can fire.
var issueActions = map[string]bool{
	"opened":     true,
	"closed":     true,
	"edited":     true,
	"reopened":   true,
	"labeled":    true,
	"unlabeled":  true,
	"assigned":   true,
	"unassigned": true,
	"milestoned": true,
}

var pullRequestActions = map[string]bool{
	"opened":                 true,
	"closed":                 true,
	"edited":                 true,
	"reopened":               true,
	"labeled":                true,
	"unlabeled":              true,
	"assigned":               true,
	"synchronize":            true,
	"ready_for_review":       true,
	"review_requested":       true,
	"converted_to_draft":     true,
	"review_request_removed": true,
}

// WebhookHandler verifies GitHub webhooks and dispatches issue and pull
// request events. Untranslatable payloads are acknowledged with 200 so
// GitHub does not retry them.
type WebhookHandler struct {
	secret   []byte
	dispatch DispatchFunc
	logger   zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	deliveries map[string]time.Time
}

// NewWebhookHandler creates a webhook handler. An empty secret skips
// signature verification.
func NewWebhookHandler(secret string, dispatch DispatchFunc, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:     []byte(secret),
		dispatch:   dispatch,
		logger:     logger.With().Str("service", "github_webhook").Logger(),
		now:        time.Now,
		deliveries: make(map[string]time.Time),
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("webhook verification failed")
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid signature")
		return
	}

	eventType := github.WebHookType(r)
	deliveryID := github.DeliveryID(r)
	if eventType == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "missing X-GitHub-Event header")
		return
	}
	logger := h.logger.With().Str("event_type", eventType).Str("delivery_id", deliveryID).Logger()

	if deliveryID != "" && h.isDuplicate(deliveryID) {
		logger.Debug().Msg("duplicate delivery, ignoring")
		w.WriteHeader(http.StatusOK)
		return
	}

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		logger.Debug().Err(err).Msg("unhandled webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	trigger, ok := translate(event)
	if !ok {
		logger.Debug().Msg("event ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	logger.Info().
		Str("resource_type", string(trigger.Kind)).
		Str("owner", trigger.Owner).
		Str("repo", trigger.Repo).
		Int("number", trigger.Number).
		Msg("webhook dispatched")
	h.dispatch(trigger)
	w.WriteHeader(http.StatusAccepted)
}

func translate(event interface{}) (Trigger, bool) {
	switch e := event.(type) {
	case *github.IssuesEvent:
		if !issueActions[e.GetAction()] {
			return Trigger{}, false
		}
		// Issue events fire for pull requests too; those are handled by
		// pull_request events.
		if e.GetIssue().IsPullRequest() {
			return Trigger{}, false
		}
		return newTrigger(rule.ResourceTypeIssue, e.GetRepo(), e.GetIssue().GetNumber())
	case *github.PullRequestEvent:
		if !pullRequestActions[e.GetAction()] {
			return Trigger{}, false
		}
		number := e.GetNumber()
		if number == 0 {
			number = e.GetPullRequest().GetNumber()
		}
		return newTrigger(rule.ResourceTypePullRequest, e.GetRepo(), number)
	default:
		return Trigger{}, false
	}
}

func newTrigger(kind rule.ResourceType, repo *github.Repository, number int) (Trigger, bool) {
	t := Trigger{
		Kind:   kind,
		Owner:  repo.GetOwner().GetLogin(),
		Repo:   repo.GetName(),
		Number: number,
	}
	if t.Owner == "" || t.Repo == "" || t.Number <= 0 {
		return Trigger{}, false
	}
	return t, true
}

// isDuplicate records deliveryID and reports whether it was already seen
// within the window. Expired entries are pruned on every call.
func (h *WebhookHandler) isDuplicate(deliveryID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for id, receivedAt := range h.deliveries {
		if now.Sub(receivedAt) > deliveryWindow {
			delete(h.deliveries, id)
		}
	}

	if _, exists := h.deliveries[deliveryID]; exists {
		return true
	}
	h.deliveries[deliveryID] = now
	return false
}
