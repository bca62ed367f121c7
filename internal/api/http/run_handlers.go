package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

type runFunc func(ctx context.Context, owner, repo string, number int) ([]rule.ExecutionResult, error)

func (s *Server) runIssue(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, s.automationSvc.ExecuteRulesForIssue)
}

func (s *Server) runPullRequest(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, s.automationSvc.ExecuteRulesForPullRequest)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, fn runFunc) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid number")
		return
	}

	results, err := fn(r.Context(), owner, repo, number)
	if err != nil {
		if errors.Is(err, rule.ErrResourceFetch) {
			respondError(w, http.StatusBadGateway, "RESOURCE_FETCH_FAILED", err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("rule execution failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
