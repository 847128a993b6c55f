package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gaevic/internal/cases"
	"gaevic/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) decodeFilter(r *http.Request) (cases.Filter, error) {
	var filter cases.Filter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		return filter, err
	}
	return filter, nil
}

func (s *Service) handleListCases(w http.ResponseWriter, r *http.Request) {
	filter, err := s.decodeFilter(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	entries, err := s.cases.List(r.Context(), filter)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, types.CaseIndex{Cases: entries})
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cases.Stats(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Service) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	caseID := flow.Param(r.Context(), "case_id")

	var upd types.CaseUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.cases.UpdateStatus(r.Context(), caseID, upd, s.clerkFromContext(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

type assignCaseNumberRequest struct {
	OfficialCaseNumber string `json:"official_case_number"`
	FilingDate         string `json:"filing_date"`
}

func (s *Service) handleAssignCaseNumber(w http.ResponseWriter, r *http.Request) {
	caseID := flow.Param(r.Context(), "case_id")

	var req assignCaseNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.cases.AssignOfficialNumber(r.Context(), caseID,
		req.OfficialCaseNumber, req.FilingDate, s.clerkFromContext(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Service) handleArchiveCase(w http.ResponseWriter, r *http.Request) {
	caseID := flow.Param(r.Context(), "case_id")

	archive, err := s.cases.Archive(r.Context(), caseID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", caseID+".zip"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive); err != nil {
		s.logger.WithError(err).Error("failed to write archive response")
	}
}

func (s *Service) handleFilingFee(w http.ResponseWriter, r *http.Request) {
	caseID := flow.Param(r.Context(), "case_id")

	// Confirm the case exists before opening a payment intent.
	if _, err := s.cases.Get(r.Context(), caseID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	intent, err := s.payments.CreateFilingFeeIntent(r.Context(), caseID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, intent)
}

func (s *Service) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := s.decodeFilter(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	out, err := s.cases.ExportCSV(r.Context(), filter)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="cases.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.WithError(err).Error("failed to write csv response")
	}
}

func (s *Service) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.cases.MonthlyReport(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string][]types.MonthlyReportRow{"months": rows})
}

// handleReconcile rebuilds missing index entries from the case directories
// actually present in storage.
func (s *Service) handleReconcile(w http.ResponseWriter, r *http.Request) {
	repaired, err := s.engine.Reconcile(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"repaired": repaired})
}
