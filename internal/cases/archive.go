package cases

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
)

// Archive bundles a case record and its listed documents into a zip. File
// timestamps inside the archive come from the case record, so archiving the
// same case twice yields identical bytes.
func (s *Service) Archive(ctx context.Context, caseID string) ([]byte, error) {
	record, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}

	recordBytes, _, err := s.backend.GetFile(ctx, recordPath(caseID))
	if err != nil {
		return nil, fmt.Errorf("read case record: %w", err)
	}

	stamp := record.SubmittedAt.UTC()
	if record.UpdatedAt != nil {
		stamp = record.UpdatedAt.UTC()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	addFile := func(name string, content []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: stamp,
		})
		if err != nil {
			return err
		}
		_, err = w.Write(content)
		return err
	}

	if err := addFile("case_data.json", recordBytes); err != nil {
		return nil, fmt.Errorf("archive case record: %w", err)
	}

	for _, filename := range record.Documents {
		content, _, err := s.backend.GetFile(ctx, fmt.Sprintf("cases/%s/%s", caseID, filename))
		if err != nil {
			s.logger.WithError(err).WithField("case_id", caseID).
				WithField("filename", filename).
				Warn("skipping unreadable document in archive")
			continue
		}
		if err := addFile(filename, content); err != nil {
			return nil, fmt.Errorf("archive %s: %w", filename, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
