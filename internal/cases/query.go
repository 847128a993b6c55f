package cases

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gaevic/pkg/types"

	textcases "golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Filter narrows a case listing. Zero values mean "no constraint"; the
// status value "all" is accepted as an alias for no constraint.
type Filter struct {
	Status    string     `form:"status"`
	Search    string     `form:"search"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
}

// List returns index entries matching the filter, newest first. It reads
// only the index, never the per-case records.
func (s *Service) List(ctx context.Context, filter Filter) ([]types.IndexEntry, error) {
	index, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]types.IndexEntry, 0, len(index.Cases))
	for _, entry := range index.Cases {
		if matches(entry, filter) {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SubmittedAt.After(entries[j].SubmittedAt)
	})
	return entries, nil
}

// Stats summarizes the index for the dashboard: counts per status plus up
// to five submissions from the past week.
func (s *Service) Stats(ctx context.Context) (*types.DashboardStats, error) {
	index, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	stats := &types.DashboardStats{
		TotalCases:        len(index.Cases),
		RecentSubmissions: []types.IndexEntry{},
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	var recent []types.IndexEntry
	for _, entry := range index.Cases {
		switch entry.Status {
		case types.StatusSubmitted:
			stats.PendingReview++
		case types.StatusProcessing:
			stats.Processing++
		case types.StatusApproved:
			stats.Approved++
		case types.StatusRejected:
			stats.Rejected++
		case types.StatusFiled:
			stats.CourtFiled++
		}
		if !entry.SubmittedAt.Before(weekAgo) {
			recent = append(recent, entry)
		}
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].SubmittedAt.After(recent[j].SubmittedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentSubmissions = append(stats.RecentSubmissions, recent...)

	return stats, nil
}

func matches(entry types.IndexEntry, filter Filter) bool {
	if filter.Status != "" && filter.Status != "all" && string(entry.Status) != filter.Status {
		return false
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystack := strings.ToLower(strings.Join([]string{
			entry.CaseID, entry.Landlord, entry.Tenant, entry.Property,
		}, "\n"))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}

	if filter.StartDate != nil && entry.SubmittedAt.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && entry.SubmittedAt.After(*filter.EndDate) {
		return false
	}
	return true
}

var titleCaser = textcases.Title(language.AmericanEnglish)

// displayName turns "7-Day_Demand_Notice.pdf" into "7-Day Demand Notice".
func displayName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return titleCaser.String(strings.ReplaceAll(stem, "_", " "))
}
