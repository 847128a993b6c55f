package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gaevic/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSubmitCase accepts a case submission from the landlord portal.
// A resubmission carrying the same case id is idempotent; partial document
// failures come back in the response body, not as an HTTP error.
func (s *Service) handleSubmitCase(w http.ResponseWriter, r *http.Request) {
	sub := new(types.CaseSubmission)
	if err := json.NewDecoder(r.Body).Decode(sub); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.Submit(r.Context(), sub)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if !result.Success {
		status = http.StatusOK
	}
	s.respondJSON(w, status, result)
}

func (s *Service) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID := flow.Param(r.Context(), "case_id")

	c, err := s.cases.Get(r.Context(), caseID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Service) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	caseID := flow.Param(r.Context(), "case_id")

	infos, err := s.cases.Documents(r.Context(), caseID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string][]types.DocumentInfo{"documents": infos})
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	caseID := flow.Param(r.Context(), "case_id")
	filename := flow.Param(r.Context(), "filename")

	content, err := s.cases.Document(r.Context(), caseID, filename)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		s.logger.WithError(err).Error("failed to write document response")
	}
}
