// Package cases is the lifecycle and query service over the index and case
// records the sync engine maintains. All reads and writes go through the
// storage contract; status transitions are validated centrally here.
package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gaevic/internal/engine"
	"gaevic/internal/storage"
	"gaevic/internal/utils"
	"gaevic/pkg/types"

	"github.com/sirupsen/logrus"
)

// recordRetryLimit bounds the read-modify-write cycle on one case record.
// Two concurrent updates to the same case are a last-write-wins race; the
// retry only covers token staleness, it does not merge.
const recordRetryLimit = 3

type Service struct {
	backend storage.Backend
	engine  *engine.Engine
	logger  *logrus.Logger
}

func NewService(backend storage.Backend, eng *engine.Engine, logger *logrus.Logger) *Service {
	return &Service{backend: backend, engine: eng, logger: logger}
}

// Get returns the full case record.
func (s *Service) Get(ctx context.Context, caseID string) (*types.Case, error) {
	raw, _, err := s.backend.GetFile(ctx, recordPath(caseID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("read case record: %w", err)
	}

	c := new(types.Case)
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode case record: %w", err)
	}
	return c, nil
}

// UpdateStatus applies a clerk mutation to the case record and mirrors the
// new status into the index. Claiming or deciding a case stamps the actor.
func (s *Service) UpdateStatus(ctx context.Context, caseID string, upd types.CaseUpdate, actor string) (*types.Case, error) {
	var updated *types.Case

	for attempt := 0; ; attempt++ {
		raw, token, err := s.backend.GetFile(ctx, recordPath(caseID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrCaseNotFound
			}
			return nil, fmt.Errorf("read case record: %w", err)
		}

		c := new(types.Case)
		if err := json.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("decode case record: %w", err)
		}

		if err := validateUpdate(c, upd); err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		if upd.Status != nil {
			if !expectedTransition(c.Status, *upd.Status) {
				s.logger.WithFields(logrus.Fields{
					"case_id": caseID,
					"from":    c.Status,
					"to":      *upd.Status,
				}).Warn("status change outside the expected clerk workflow")
			}
			c.Status = *upd.Status
			c.AssignedBy = utils.StringPtr(actor)
			c.AssignedAt = utils.TimePtr(now)
		}
		if upd.OfficialCaseNumber != nil {
			c.OfficialCaseNumber = upd.OfficialCaseNumber
		}
		if upd.FilingDate != nil {
			c.FilingDate = upd.FilingDate
		}
		if upd.ClerkNotes != nil {
			c.ClerkNotes = upd.ClerkNotes
		}
		if upd.RejectionReason != nil {
			c.RejectionReason = upd.RejectionReason
		}
		c.UpdatedAt = utils.TimePtr(now)

		content, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode case record: %w", err)
		}

		_, err = s.backend.PutFile(ctx, recordPath(caseID), content, token)
		if err == nil {
			updated = c
			break
		}
		if !errors.Is(err, storage.ErrConflict) || attempt >= recordRetryLimit {
			return nil, fmt.Errorf("write case record: %w", err)
		}
	}

	if err := s.engine.UpsertIndex(ctx, updated.IndexEntry()); err != nil {
		return nil, fmt.Errorf("update index entry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"case_id": caseID,
		"status":  updated.Status,
		"actor":   actor,
	}).Info("case updated")

	return updated, nil
}

// AssignOfficialNumber records the court-assigned case number and moves the
// case to filed; the filed status and the number are set in one operation
// so the invariant "filed implies a case number" holds on every path.
func (s *Service) AssignOfficialNumber(ctx context.Context, caseID, officialNumber, filingDate, actor string) (*types.Case, error) {
	if officialNumber == "" {
		return nil, ErrMissingCaseNumber
	}
	if filingDate == "" {
		filingDate = time.Now().UTC().Format("2006-01-02")
	}

	filed := types.StatusFiled
	return s.UpdateStatus(ctx, caseID, types.CaseUpdate{
		Status:             &filed,
		OfficialCaseNumber: utils.StringPtr(officialNumber),
		FilingDate:         utils.StringPtr(filingDate),
	}, actor)
}

// Documents lists the stored documents of a case for API responses.
func (s *Service) Documents(ctx context.Context, caseID string) ([]types.DocumentInfo, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}

	infos := make([]types.DocumentInfo, 0, len(c.Documents))
	for _, filename := range c.Documents {
		infos = append(infos, types.DocumentInfo{
			Name:     displayName(filename),
			Filename: filename,
			URL:      fmt.Sprintf("/api/cases/%s/documents/%s", caseID, filename),
		})
	}
	return infos, nil
}

// Document returns the bytes of one stored document. Only filenames the
// case record lists are served, which also rules out path traversal.
func (s *Service) Document(ctx context.Context, caseID, filename string) ([]byte, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}

	listed := false
	for _, name := range c.Documents {
		if name == filename {
			listed = true
			break
		}
	}
	if !listed {
		return nil, ErrDocumentNotFound
	}

	content, _, err := s.backend.GetFile(ctx, fmt.Sprintf("cases/%s/%s", caseID, filename))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return content, nil
}

func (s *Service) loadIndex(ctx context.Context) (types.CaseIndex, error) {
	var index types.CaseIndex
	raw, _, err := s.backend.GetFile(ctx, engine.IndexPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return index, nil
		}
		return index, fmt.Errorf("read case index: %w", err)
	}
	if err := json.Unmarshal(raw, &index); err != nil {
		return index, fmt.Errorf("decode case index: %w", err)
	}
	return index, nil
}

func recordPath(caseID string) string {
	return fmt.Sprintf("cases/%s/case_data.json", caseID)
}
