package httpapi

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

const maxImportBodySize = 1 << 20

func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	var in rule.Input
	if err := decodeBody(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if in.CreatedBy == "" {
		in.CreatedBy = actorFromRequest(r)
	}
	created, err := s.automationSvc.CreateRule(r.Context(), in)
	if err != nil {
		s.respondRuleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	s.refreshRules(r)
	rules := s.automationSvc.GetRules()
	if rt := r.URL.Query().Get("resource_type"); rt != "" {
		filtered := make([]*rule.Rule, 0, len(rules))
		for _, rl := range rules {
			if string(rl.ResourceType) == rt {
				filtered = append(filtered, rl)
			}
		}
		rules = filtered
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rules": rules, "count": len(rules)})
}

func (s *Server) getRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "ruleId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid ruleId")
		return
	}
	s.refreshRules(r)
	rl := s.automationSvc.GetRule(id)
	if rl == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "rule not found")
		return
	}
	respondJSON(w, http.StatusOK, rl)
}

func (s *Server) updateRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "ruleId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid ruleId")
		return
	}
	var patch rule.Patch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	updated, err := s.automationSvc.UpdateRule(r.Context(), id, patch)
	if err != nil {
		s.respondRuleError(w, err)
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "rule not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "ruleId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid ruleId")
		return
	}
	removed, err := s.automationSvc.DeleteRule(r.Context(), id)
	if err != nil {
		s.respondRuleError(w, err)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "rule not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) importRules(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "failed to read body")
		return
	}
	created, err := s.automationSvc.ImportRules(r.Context(), data, format, actorFromRequest(r))
	if err != nil {
		if len(created) > 0 {
			s.logger.Warn().Err(err).Int("created", len(created)).Msg("rule import stopped early")
		}
		s.respondRuleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"rules": created, "count": len(created)})
}

// refreshRules picks up rules written by other processes. Reads fall back to
// the cached collection when the backend is unavailable.
func (s *Server) refreshRules(r *http.Request) {
	if err := s.automationSvc.RefreshRules(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh rules")
	}
}

func (s *Server) respondRuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rule.ErrValidation):
		body := map[string]interface{}{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		}
		var fields rule.FieldValidationError
		if errors.As(err, &fields) {
			body["fields"] = fields
		}
		respondJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, rule.ErrStorage):
		s.logger.Error().Err(err).Msg("rule storage failed")
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "failed to persist rules")
	default:
		s.logger.Error().Err(err).Msg("rule operation failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
