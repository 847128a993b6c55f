package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"gaevic/internal/cases"
	"gaevic/internal/docs"
	"gaevic/internal/engine"
)

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	CaseID string `json:"case_id,omitempty"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps lifecycle service errors onto HTTP statuses.
func (s *Service) respondServiceError(w http.ResponseWriter, err error) {
	var validation *docs.ValidationError
	switch {
	case errors.Is(err, cases.ErrCaseNotFound),
		errors.Is(err, cases.ErrDocumentNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cases.ErrUnknownStatus),
		errors.Is(err, cases.ErrMissingRejectionReason),
		errors.Is(err, cases.ErrMissingCaseNumber):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validation):
		resp := errorResponse{
			Error: validation.Error(),
			Field: validation.Field,
		}
		var rejected *engine.SubmissionRejectedError
		if errors.As(err, &rejected) {
			resp.CaseID = rejected.CaseID
		}
		s.respondJSON(w, http.StatusBadRequest, resp)
	default:
		s.logger.WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}
