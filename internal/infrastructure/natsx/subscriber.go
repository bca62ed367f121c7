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

// Subscriber consumes trigger events and runs the matching rules. Members
// of the same queue group share the load.
type Subscriber struct {
	conn    *nats.Conn
	subject string
	queue   string
	runner  Runner
	timeout time.Duration
	logger  zerolog.Logger

	sub *nats.Subscription
}

func NewSubscriber(conn *nats.Conn, subject, queue string, runner Runner, timeout time.Duration, logger zerolog.Logger) *Subscriber {
	if subject == "" {
		subject = DefaultSubject
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Subscriber{
		conn:    conn,
		subject: subject,
		queue:   queue,
		runner:  runner,
		timeout: timeout,
		logger:  logger.With().Str("service", "nats_subscriber").Str("subject", subject).Logger(),
	}
}

func (s *Subscriber) Start() error {
	sub, err := s.conn.QueueSubscribe(s.subject, s.queue, s.onMessage)
	if err != nil {
		return errors.Wrapf(err, "failed to subscribe to %s", s.subject)
	}
	s.sub = sub
	s.logger.Info().Str("queue", s.queue).Msg("subscribed")
	return nil
}

// Stop drains the subscription so in-flight events finish.
func (s *Subscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}

func (s *Subscriber) onMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	results, err := s.Handle(ctx, msg.Data)
	if msg.Reply == "" {
		return
	}
	reply := Reply{Results: results}
	if err != nil {
		reply.Error = err.Error()
	}
	data, merr := json.Marshal(reply)
	if merr != nil {
		s.logger.Error().Err(merr).Msg("failed to marshal reply")
		return
	}
	if rerr := msg.Respond(data); rerr != nil {
		s.logger.Warn().Err(rerr).Msg("failed to send reply")
	}
}

// Handle decodes one event payload and runs the rules for it.
func (s *Subscriber) Handle(ctx context.Context, data []byte) ([]rule.ExecutionResult, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("dropping malformed event")
		return nil, errors.Wrap(err, "malformed event")
	}
	if err := event.validate(); err != nil {
		s.logger.Warn().Err(err).Msg("dropping invalid event")
		return nil, err
	}

	var (
		results []rule.ExecutionResult
		err     error
	)
	switch event.Kind {
	case rule.ResourceTypePullRequest:
		results, err = s.runner.ExecuteRulesForPullRequest(ctx, event.Owner, event.Repo, event.Number)
	default:
		results, err = s.runner.ExecuteRulesForIssue(ctx, event.Owner, event.Repo, event.Number)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("owner", event.Owner).
			Str("repo", event.Repo).
			Int("number", event.Number).
			Msg("rule execution failed")
		return nil, err
	}
	return results, nil
}
