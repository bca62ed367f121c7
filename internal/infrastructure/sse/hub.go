package sse

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/execution-hub/repo-automation/internal/domain/resource"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// EventRuleResults is the event name of execution result messages.
const EventRuleResults = "rule_results"

const clientBuffer = 100

// Client is an active SSE connection. An empty Repos list subscribes to
// every repository.
type Client struct {
	ID          string
	Repos       []string
	ConnectedAt time.Time
	MessageChan chan *Message
}

// NewClient creates a client subscribed to the given "owner/repo" names.
func NewClient(id string, repos []string) *Client {
	return &Client{
		ID:          id,
		Repos:       repos,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *Message, clientBuffer),
	}
}

func (c *Client) Close() {
	close(c.MessageChan)
}

func (c *Client) wants(repo string) bool {
	if len(c.Repos) == 0 {
		return true
	}
	for _, r := range c.Repos {
		if strings.EqualFold(r, repo) {
			return true
		}
	}
	return false
}

// Message is one SSE event.
type Message struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMessage(event string, data json.RawMessage) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// ResultsPayload is the data of a rule_results message.
type ResultsPayload struct {
	ResourceType rule.ResourceType      `json:"resourceType"`
	Owner        string                 `json:"owner"`
	Repo         string                 `json:"repo"`
	Number       int                    `json:"number"`
	Results      []rule.ExecutionResult `json:"results"`
}

// Hub manages SSE clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client, replacing any previous client with the same id.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[client.ID]; ok {
		old.Close()
	}
	h.clients[client.ID] = client
}

// Unregister removes client if it is still the registered one for its id.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[client.ID]; ok && c == client {
		c.Close()
		delete(h.clients, client.ID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishResults broadcasts execution results to clients subscribed to the repository.
func (h *Hub) PublishResults(target resource.Target, results []rule.ExecutionResult) {
	payload, err := json.Marshal(ResultsPayload{
		ResourceType: target.Kind,
		Owner:        target.Owner,
		Repo:         target.Repo,
		Number:       target.Number,
		Results:      results,
	})
	if err != nil {
		return
	}
	h.broadcast(target.Owner+"/"+target.Repo, NewMessage(EventRuleResults, payload))
}

func (h *Hub) broadcast(repo string, message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.wants(repo) {
			trySend(c, message)
		}
	}
}

func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}

// trySend drops the message when the client is not keeping up.
func trySend(c *Client, msg *Message) bool {
	select {
	case c.MessageChan <- msg:
		return true
	default:
		return false
	}
}
