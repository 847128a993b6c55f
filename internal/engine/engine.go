// Package engine turns one client submission into a durable case record, a
// deterministic set of document artifacts, and a consistent index entry.
// The two storage backends share no transaction; the engine's job is
// sequencing, per-document failure isolation, and the bounded token-retry
// protocol on the shared index file.
package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"gaevic/internal/caseid"
	"gaevic/internal/docs"
	"gaevic/internal/storage"
	"gaevic/pkg/types"

	"github.com/sirupsen/logrus"
)

// ErrIndexConflict indicates the index read-modify-write cycle kept losing
// to concurrent writers until the retry bound was exhausted.
var ErrIndexConflict = errors.New("case index update conflict, retries exhausted")

// SubmissionRejectedError wraps a pre-write rejection with the case id the
// submission resolved to, so clients learn the id even when nothing was
// persisted.
type SubmissionRejectedError struct {
	CaseID string
	Err    error
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("submission %s rejected: %v", e.CaseID, e.Err)
}

func (e *SubmissionRejectedError) Unwrap() error {
	return e.Err
}

// IndexPath is the shared index file; it is an ordinary path under the
// storage contract and the one object concurrent submissions contend on.
const IndexPath = "cases/index.json"

type Engine struct {
	backend    storage.Backend
	pipeline   *docs.Pipeline
	logger     *logrus.Logger
	retryLimit int
}

func New(backend storage.Backend, pipeline *docs.Pipeline, logger *logrus.Logger, indexRetryLimit int) *Engine {
	if indexRetryLimit <= 0 {
		indexRetryLimit = 5
	}
	return &Engine{
		backend:    backend,
		pipeline:   pipeline,
		logger:     logger,
		retryLimit: indexRetryLimit,
	}
}

type documentPayload struct {
	docType  string
	filename string
	content  []byte
}

// Submit persists one case: resolve identity, render or accept documents,
// write each document, write the case record, then upsert the index entry.
// A document failure never aborts its siblings or the index upsert; all
// failures are aggregated into the result. Only a ValidationError, raised
// before any write, is returned as an error.
func (e *Engine) Submit(ctx context.Context, sub *types.CaseSubmission) (*types.SubmissionResult, error) {
	c := sub.CaseData

	// Identity comes first so a retry of the same logical submission with
	// the same supplied id is detectable before anything is written.
	if sub.CaseID != "" {
		c.CaseID = sub.CaseID
	}
	if c.CaseID == "" {
		c.CaseID = caseid.Allocate()
	}
	if sub.SignatureData != nil {
		c.SignatureData = sub.SignatureData
	}
	c.Status = types.StatusSubmitted

	if err := e.pipeline.Validate(&c); err != nil {
		return nil, &SubmissionRejectedError{CaseID: c.CaseID, Err: err}
	}

	recordPath := fmt.Sprintf("cases/%s/case_data.json", c.CaseID)
	recordToken, err := e.carryOverExisting(ctx, recordPath, &c)
	if err != nil {
		return nil, err
	}
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = time.Now().UTC()
	}

	payloads, failures := e.buildDocuments(sub, &c)

	written := 0
	filenames := make([]string, 0, len(payloads))
	for _, payload := range payloads {
		path := fmt.Sprintf("cases/%s/%s", c.CaseID, payload.filename)
		if err := e.writeFile(ctx, path, payload.content); err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"case_id":  c.CaseID,
				"doc_type": payload.docType,
			}).Error("document write failed")
			failures = append(failures, types.DocumentFailure{DocType: payload.docType, Error: err.Error()})
			continue
		}
		written++
		filenames = append(filenames, payload.filename)
	}
	c.Documents = filenames

	if _, err := e.backend.PutFile(ctx, recordPath, mustIndentJSON(&c), recordToken); err != nil {
		e.logger.WithError(err).WithField("case_id", c.CaseID).Error("case record write failed")
		failures = append(failures, types.DocumentFailure{DocType: "case_data", Error: err.Error()})
	}

	// The index is updated last so it never references a case whose
	// writes have not started.
	if err := e.UpsertIndex(ctx, c.IndexEntry()); err != nil {
		e.logger.WithError(err).WithField("case_id", c.CaseID).Error("index upsert failed")
		failures = append(failures, types.DocumentFailure{DocType: "index", Error: err.Error()})
	}

	result := &types.SubmissionResult{
		Success:          len(failures) == 0,
		CaseID:           c.CaseID,
		DocumentsWritten: written,
		StoragePath:      fmt.Sprintf("cases/%s/", c.CaseID),
		Failures:         failures,
	}

	e.logger.WithFields(logrus.Fields{
		"case_id":           result.CaseID,
		"documents_written": result.DocumentsWritten,
		"success":           result.Success,
	}).Info("case submitted")

	return result, nil
}

// carryOverExisting loads an existing record for this case id, if any, and
// preserves its server-owned fields. submitted_at is set once at creation;
// lifecycle fields survive a resubmission so a retry cannot demote a case
// a clerk has already moved forward. On a fresh case the same fields are
// zeroed: they are set only by lifecycle transitions, never by the
// submitting client.
func (e *Engine) carryOverExisting(ctx context.Context, recordPath string, c *types.Case) (string, error) {
	raw, token, err := e.backend.GetFile(ctx, recordPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.AssignedBy = nil
			c.AssignedAt = nil
			c.OfficialCaseNumber = nil
			c.FilingDate = nil
			c.ClerkNotes = nil
			c.RejectionReason = nil
			c.UpdatedAt = nil
			return "", nil
		}
		return "", fmt.Errorf("read case record: %w", err)
	}

	var existing types.Case
	if err := json.Unmarshal(raw, &existing); err != nil {
		return "", fmt.Errorf("decode existing case record: %w", err)
	}

	c.SubmittedAt = existing.SubmittedAt
	if existing.Status != "" {
		c.Status = existing.Status
	}
	c.AssignedBy = existing.AssignedBy
	c.AssignedAt = existing.AssignedAt
	c.OfficialCaseNumber = existing.OfficialCaseNumber
	c.FilingDate = existing.FilingDate
	c.ClerkNotes = existing.ClerkNotes
	c.RejectionReason = existing.RejectionReason
	c.UpdatedAt = existing.UpdatedAt

	return token, nil
}

// buildDocuments prepares the document payloads: pre-supplied base64
// content when the client signed and uploaded, otherwise the pipeline's
// required set rendered server-side.
func (e *Engine) buildDocuments(sub *types.CaseSubmission, c *types.Case) ([]documentPayload, []types.DocumentFailure) {
	var payloads []documentPayload
	var failures []types.DocumentFailure

	if len(sub.Documents) > 0 {
		docTypes := make([]string, 0, len(sub.Documents))
		for docType := range sub.Documents {
			docTypes = append(docTypes, docType)
		}
		sort.Strings(docTypes)

		for _, docType := range docTypes {
			content, err := base64.StdEncoding.DecodeString(sub.Documents[docType])
			if err != nil {
				failures = append(failures, types.DocumentFailure{
					DocType: docType,
					Error:   fmt.Sprintf("decode base64 content: %v", err),
				})
				continue
			}
			payloads = append(payloads, documentPayload{
				docType:  docType,
				filename: e.pipeline.Rules().FilenameFor(docType),
				content:  content,
			})
		}
		return payloads, failures
	}

	for _, spec := range e.pipeline.Required(c) {
		content, err := e.pipeline.Render(spec, c)
		if err != nil {
			failures = append(failures, types.DocumentFailure{DocType: spec.Type, Error: err.Error()})
			continue
		}
		payloads = append(payloads, documentPayload{
			docType:  spec.Type,
			filename: spec.Filename,
			content:  content,
		})
	}
	return payloads, failures
}

// writeFile performs one read-token-then-conditional-write. Document paths
// are disjoint between cases, so a conflict here is not retried; only the
// shared index gets the bounded retry loop.
func (e *Engine) writeFile(ctx context.Context, path string, content []byte) error {
	_, token, err := e.backend.GetFile(ctx, path)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("read current version: %w", err)
		}
		token = ""
	}

	if _, err := e.backend.PutFile(ctx, path, content, token); err != nil {
		return err
	}
	return nil
}

// UpsertIndex replaces or appends the entry for its case id using the
// read-token-modify-write cycle, retrying a bounded number of times when a
// concurrent writer invalidates the token.
func (e *Engine) UpsertIndex(ctx context.Context, entry types.IndexEntry) error {
	for attempt := 0; attempt <= e.retryLimit; attempt++ {
		raw, token, err := e.backend.GetFile(ctx, IndexPath)
		var index types.CaseIndex
		switch {
		case err == nil:
			if err := json.Unmarshal(raw, &index); err != nil {
				return fmt.Errorf("decode case index: %w", err)
			}
		case errors.Is(err, storage.ErrNotFound):
			// Missing index is an empty index
		default:
			return fmt.Errorf("read case index: %w", err)
		}

		replaced := false
		for i := range index.Cases {
			if index.Cases[i].CaseID == entry.CaseID {
				index.Cases[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			index.Cases = append(index.Cases, entry)
		}

		_, err = e.backend.PutFile(ctx, IndexPath, mustIndentJSON(&index), token)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return fmt.Errorf("write case index: %w", err)
		}

		e.logger.WithFields(logrus.Fields{
			"case_id": entry.CaseID,
			"attempt": attempt + 1,
		}).Warn("index token went stale, retrying")
	}
	return ErrIndexConflict
}

func mustIndentJSON(v any) []byte {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Errorf("marshal to JSON: %w", err))
	}
	return data
}
