package cases

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"gaevic/pkg/types"
)

var csvHeader = []string{
	"Case ID", "Landlord", "Tenant", "Property", "Amount Owed",
	"Status", "Submitted", "Official Case #", "Filing Date",
}

// ExportCSV renders every case matching the filter as a CSV document. Rows
// come from the full case records, so fields absent from the index (amount
// owed, official case number) are included.
func (s *Service) ExportCSV(ctx context.Context, filter Filter) ([]byte, error) {
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, entry := range entries {
		record, err := s.Get(ctx, entry.CaseID)
		if err != nil {
			s.logger.WithError(err).WithField("case_id", entry.CaseID).
				Warn("skipping unreadable case in export")
			continue
		}

		official := ""
		if record.OfficialCaseNumber != nil {
			official = *record.OfficialCaseNumber
		}
		filing := ""
		if record.FilingDate != nil {
			filing = *record.FilingDate
		}

		row := []string{
			record.CaseID,
			record.LandlordName,
			record.TenantName,
			record.PropertyAddress,
			strconv.FormatFloat(record.AmountOwed, 'f', 2, 64),
			string(record.Status),
			record.SubmittedAt.UTC().Format("2006-01-02"),
			official,
			filing,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyReport aggregates cases by submission month, newest month first.
// Submitted, processing, and approved cases all count as pending since none
// of them has reached a terminal disposition.
func (s *Service) MonthlyReport(ctx context.Context) ([]types.MonthlyReportRow, error) {
	index, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*types.MonthlyReportRow)
	for _, entry := range index.Cases {
		month := entry.SubmittedAt.UTC().Format("2006-01")
		row, ok := byMonth[month]
		if !ok {
			row = &types.MonthlyReportRow{Month: month}
			byMonth[month] = row
		}

		row.Total++
		switch entry.Status {
		case types.StatusFiled:
			row.Filed++
		case types.StatusRejected:
			row.Rejected++
		default:
			row.Pending++
		}

		record, err := s.Get(ctx, entry.CaseID)
		if err != nil {
			s.logger.WithError(err).WithField("case_id", entry.CaseID).
				Warn("skipping unreadable case in monthly report")
			continue
		}
		row.TotalAmount += record.AmountOwed
	}

	rows := make([]types.MonthlyReportRow, 0, len(byMonth))
	for _, row := range byMonth {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Month > rows[j].Month
	})
	return rows, nil
}
