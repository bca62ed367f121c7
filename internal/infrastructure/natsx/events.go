package natsx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// DefaultSubject carries automation trigger events.
const DefaultSubject = "automation.events"

// Event asks the engine to run the rules for one issue or pull request.
type Event struct {
	Kind   rule.ResourceType `json:"kind"`
	Owner  string            `json:"owner"`
	Repo   string            `json:"repo"`
	Number int               `json:"number"`
}

func (e Event) validate() error {
	if !e.Kind.Valid() {
		return errors.Newf("invalid kind %q", e.Kind)
	}
	if e.Owner == "" || e.Repo == "" {
		return errors.New("owner and repo are required")
	}
	if e.Number <= 0 {
		return errors.New("number must be positive")
	}
	return nil
}

// Runner executes rules for a triggering resource.
type Runner interface {
	ExecuteRulesForIssue(ctx context.Context, owner, repo string, number int) ([]rule.ExecutionResult, error)
	ExecuteRulesForPullRequest(ctx context.Context, owner, repo string, number int) ([]rule.ExecutionResult, error)
}

// Reply is sent back on request-reply subjects.
type Reply struct {
	Results []rule.ExecutionResult `json:"results,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Connect opens a NATS connection that keeps reconnecting.
func Connect(url, name string, logger zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to nats")
	}
	return nc, nil
}

// Publish sends an event on subject.
func Publish(nc *nats.Conn, subject string, event Event) error {
	if err := event.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}
	if err := nc.Publish(subject, data); err != nil {
		return errors.Wrap(err, "failed to publish event")
	}
	return nc.Flush()
}

// Request sends an event and waits for the execution results.
func Request(ctx context.Context, nc *nats.Conn, subject string, event Event) ([]rule.ExecutionResult, error) {
	if err := event.validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event")
	}
	msg, err := nc.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, errors.Wrap(err, "failed to decode reply")
	}
	if reply.Error != "" {
		return nil, errors.New(reply.Error)
	}
	return reply.Results, nil
}
