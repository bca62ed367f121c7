package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execution-hub/repo-automation/internal/application/automation"
	"github.com/execution-hub/repo-automation/internal/infrastructure/metrics"
	"github.com/execution-hub/repo-automation/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	automationSvc *automation.Service
	sseHub        *sse.Hub
	metrics       *metrics.Metrics
	webhook       http.Handler
	apiTokenHash  []byte
	logger        zerolog.Logger
}

// NewServer creates the HTTP server. webhook may be nil to disable the
// GitHub webhook endpoint. An empty apiTokenHash disables /v1 authentication.
func NewServer(
	automationSvc *automation.Service,
	sseHub *sse.Hub,
	m *metrics.Metrics,
	webhook http.Handler,
	apiTokenHash string,
	logger zerolog.Logger,
) *Server {
	var hash []byte
	if apiTokenHash != "" {
		hash = []byte(apiTokenHash)
	}
	return &Server{
		automationSvc: automationSvc,
		sseHub:        sseHub,
		metrics:       m,
		webhook:       webhook,
		apiTokenHash:  hash,
		logger:        logger.With().Str("service", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	if s.webhook != nil {
		r.Method(http.MethodPost, "/webhooks/github", s.webhook)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireToken)

		// The stream stays open, so it must not inherit the request timeout.
		r.Get("/results/stream", s.resultsStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/rules", func(r chi.Router) {
				r.Post("/", s.createRule)
				r.Get("/", s.listRules)
				r.Post("/import", s.importRules)
				r.Get("/{ruleId}", s.getRule)
				r.Patch("/{ruleId}", s.updateRule)
				r.Delete("/{ruleId}", s.deleteRule)
			})

			r.Route("/repos/{owner}/{repo}", func(r chi.Router) {
				r.Post("/issues/{number}/run", s.runIssue)
				r.Post("/pulls/{number}/run", s.runPullRequest)
			})
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"rules":       len(s.automationSvc.GetRules()),
		"sse_clients": s.sseHub.ClientCount(),
	})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func actorFromRequest(r *http.Request) string {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "system"
	}
	return actor
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := []string{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
