package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gaevic/internal/storage"
	"gaevic/pkg/types"
)

// Reconcile re-derives index entries for case directories the index does
// not know about. A crash between the document writes and the index upsert
// leaves an orphaned case directory; this sweep repairs it. The upsert per
// case is the same idempotent, retry-safe path Submit uses.
func (e *Engine) Reconcile(ctx context.Context) (int, error) {
	lister, ok := e.backend.(storage.Lister)
	if !ok {
		return 0, fmt.Errorf("storage backend cannot enumerate case directories")
	}

	dirs, err := lister.ListDirs(ctx, "cases")
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("list case directories: %w", err)
	}

	known := make(map[string]bool)
	raw, _, err := e.backend.GetFile(ctx, IndexPath)
	if err == nil {
		var index types.CaseIndex
		if err := json.Unmarshal(raw, &index); err != nil {
			return 0, fmt.Errorf("decode case index: %w", err)
		}
		for _, entry := range index.Cases {
			known[entry.CaseID] = true
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("read case index: %w", err)
	}

	repaired := 0
	for _, dir := range dirs {
		if known[dir] {
			continue
		}

		recordRaw, _, err := e.backend.GetFile(ctx, fmt.Sprintf("cases/%s/case_data.json", dir))
		if err != nil {
			e.logger.WithError(err).WithField("case_id", dir).Warn("orphaned case directory has no readable record")
			continue
		}

		var c types.Case
		if err := json.Unmarshal(recordRaw, &c); err != nil {
			e.logger.WithError(err).WithField("case_id", dir).Warn("orphaned case record is not valid JSON")
			continue
		}
		if c.CaseID == "" {
			c.CaseID = dir
		}

		if err := e.UpsertIndex(ctx, c.IndexEntry()); err != nil {
			return repaired, fmt.Errorf("reinsert case %s: %w", c.CaseID, err)
		}

		e.logger.WithField("case_id", c.CaseID).Info("restored missing index entry")
		repaired++
	}
	return repaired, nil
}
