package cases

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"gaevic/internal/docs"
	"gaevic/internal/engine"
	"gaevic/internal/storage"
	"gaevic/internal/utils"
	"gaevic/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixture struct {
	backend *storage.Memory
	engine  *engine.Engine
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rules, err := docs.LoadRules()
	require.NoError(t, err)

	backend := storage.NewMemory()
	logger := testLogger()
	eng := engine.New(backend, docs.NewPipeline(rules, docs.NewPDFRenderer()), logger, 5)
	return &fixture{
		backend: backend,
		engine:  eng,
		service: NewService(backend, eng, logger),
	}
}

func (f *fixture) submit(t *testing.T, caseID, landlord, tenant string, amountOwed float64, submittedAt time.Time) *types.Case {
	t.Helper()

	result, err := f.engine.Submit(context.Background(), &types.CaseSubmission{
		CaseID: caseID,
		CaseData: types.Case{
			LandlordName:    landlord,
			TenantName:      tenant,
			PropertyAddress: "12 Oak St",
			PropertyCity:    "Warner Robins",
			RentAmount:      950,
			AmountOwed:      amountOwed,
			Reason:          "non-payment of rent",
			LeaseType:       "month-to-month",
			SubmittedAt:     submittedAt,
		},
		Documents: map[string]string{"demand_notice": "JVBERg=="},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	c, err := f.service.Get(context.Background(), result.CaseID)
	require.NoError(t, err)
	return c
}

func TestGet_UnknownCase(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), "HOU-2024-1700000000-zzzzzzzz")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestUpdateStatus_ClaimStampsActor(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	processing := types.StatusProcessing
	updated, err := f.service.UpdateStatus(context.Background(), c.CaseID,
		types.CaseUpdate{Status: &processing}, "clerk@houstoncountyga.gov")
	require.NoError(t, err)

	assert.Equal(t, types.StatusProcessing, updated.Status)
	require.NotNil(t, updated.AssignedBy)
	assert.Equal(t, "clerk@houstoncountyga.gov", *updated.AssignedBy)
	assert.NotNil(t, updated.AssignedAt)
	assert.NotNil(t, updated.UpdatedAt)

	// The index mirrors the new status.
	entries, err := f.service.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.StatusProcessing, entries[0].Status)
}

func TestUpdateStatus_RejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	rejected := types.StatusRejected
	_, err := f.service.UpdateStatus(context.Background(), c.CaseID,
		types.CaseUpdate{Status: &rejected}, "clerk")
	assert.ErrorIs(t, err, ErrMissingRejectionReason)

	_, err = f.service.UpdateStatus(context.Background(), c.CaseID, types.CaseUpdate{
		Status:          &rejected,
		RejectionReason: utils.StringPtr("incomplete notice"),
	}, "clerk")
	assert.NoError(t, err)
}

func TestUpdateStatus_FiledRequiresCaseNumber(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	filed := types.StatusFiled
	_, err := f.service.UpdateStatus(context.Background(), c.CaseID,
		types.CaseUpdate{Status: &filed}, "clerk")
	assert.ErrorIs(t, err, ErrMissingCaseNumber)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	bogus := types.CaseStatus("archived")
	_, err := f.service.UpdateStatus(context.Background(), c.CaseID,
		types.CaseUpdate{Status: &bogus}, "clerk")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestAssignOfficialNumber(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	updated, err := f.service.AssignOfficialNumber(context.Background(),
		c.CaseID, "2024-EV-00917", "", "clerk")
	require.NoError(t, err)

	assert.Equal(t, types.StatusFiled, updated.Status)
	require.NotNil(t, updated.OfficialCaseNumber)
	assert.Equal(t, "2024-EV-00917", *updated.OfficialCaseNumber)
	require.NotNil(t, updated.FilingDate)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), *updated.FilingDate)

	_, err = f.service.AssignOfficialNumber(context.Background(), c.CaseID, "", "", "clerk")
	assert.ErrorIs(t, err, ErrMissingCaseNumber)
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)

	a := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, jan)
	b := f.submit(t, "", "Carol White", "Dan Green", 800, feb)

	processing := types.StatusProcessing
	_, err := f.service.UpdateStatus(context.Background(), b.CaseID,
		types.CaseUpdate{Status: &processing}, "clerk")
	require.NoError(t, err)

	all, err := f.service.List(context.Background(), Filter{Status: "all"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, b.CaseID, all[0].CaseID)

	byStatus, err := f.service.List(context.Background(), Filter{Status: "processing"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, b.CaseID, byStatus[0].CaseID)

	bySearch, err := f.service.List(context.Background(), Filter{Search: "smith"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, a.CaseID, bySearch[0].CaseID)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	byDate, err := f.service.List(context.Background(), Filter{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, b.CaseID, byDate[0].CaseID)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	f.submit(t, "", "Ann Smith", "Bob Jones", 1900, now.AddDate(0, -2, 0))
	recent := f.submit(t, "", "Carol White", "Dan Green", 800, now.Add(-time.Hour))

	processing := types.StatusProcessing
	_, err := f.service.UpdateStatus(context.Background(), recent.CaseID,
		types.CaseUpdate{Status: &processing}, "clerk")
	require.NoError(t, err)

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalCases)
	assert.Equal(t, 1, stats.PendingReview)
	assert.Equal(t, 1, stats.Processing)
	require.Len(t, stats.RecentSubmissions, 1)
	assert.Equal(t, recent.CaseID, stats.RecentSubmissions[0].CaseID)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1912.5, jan)

	out, err := f.service.ExportCSV(context.Background(), Filter{})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, c.CaseID, rows[1][0])
	assert.Equal(t, "Ann Smith", rows[1][1])
	assert.Equal(t, "1912.50", rows[1][4])
	assert.Equal(t, "submitted", rows[1][5])
	assert.Equal(t, "2024-01-10", rows[1][6])
}

func TestMonthlyReport(t *testing.T) {
	f := newFixture(t)
	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)

	f.submit(t, "", "Ann Smith", "Bob Jones", 1000, jan)
	f.submit(t, "", "Carol White", "Dan Green", 500, jan)
	rejectedCase := f.submit(t, "", "Eve Black", "Frank Gray", 250, feb)

	rejected := types.StatusRejected
	_, err := f.service.UpdateStatus(context.Background(), rejectedCase.CaseID, types.CaseUpdate{
		Status:          &rejected,
		RejectionReason: utils.StringPtr("wrong county"),
	}, "clerk")
	require.NoError(t, err)

	rows, err := f.service.MonthlyReport(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest month first.
	assert.Equal(t, "2024-02", rows[0].Month)
	assert.Equal(t, 1, rows[0].Total)
	assert.Equal(t, 1, rows[0].Rejected)
	assert.Equal(t, 0, rows[0].Pending)
	assert.InDelta(t, 250, rows[0].TotalAmount, 0.001)

	assert.Equal(t, "2024-01", rows[1].Month)
	assert.Equal(t, 2, rows[1].Total)
	assert.Equal(t, 2, rows[1].Pending)
	assert.InDelta(t, 1500, rows[1].TotalAmount, 0.001)

	// Every case lands in exactly one month and the per-status splits add up.
	for _, row := range rows {
		assert.Equal(t, row.Total, row.Filed+row.Rejected+row.Pending)
	}
}

func TestDocuments_ListAndFetch(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	infos, err := f.service.Documents(context.Background(), c.CaseID)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "7-Day_Demand_Notice.pdf", infos[0].Filename)
	assert.Equal(t, "7-Day Demand Notice", infos[0].Name)
	assert.Equal(t, "/api/cases/"+c.CaseID+"/documents/7-Day_Demand_Notice.pdf", infos[0].URL)

	content, err := f.service.Document(context.Background(), c.CaseID, "7-Day_Demand_Notice.pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestDocument_OnlyListedFilenamesServed(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	_, err := f.service.Document(context.Background(), c.CaseID, "../index.json")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = f.service.Document(context.Background(), c.CaseID, "case_data.json")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestArchive_Deterministic(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900,
		time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))

	first, err := f.service.Archive(context.Background(), c.CaseID)
	require.NoError(t, err)
	second, err := f.service.Archive(context.Background(), c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	zr, err := zip.NewReader(bytes.NewReader(first), int64(len(first)))
	require.NoError(t, err)

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.Contains(t, names, "case_data.json")
	assert.Contains(t, names, "7-Day_Demand_Notice.pdf")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "7-Day Demand Notice", displayName("7-Day_Demand_Notice.pdf"))
	assert.Equal(t, "Lease Agreement", displayName("lease_agreement.pdf"))
}

func TestUpdateStatus_RetriesStaleToken(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "", "Ann Smith", "Bob Jones", 1900, time.Now().UTC())

	backend := &intrudingBackend{Memory: f.backend, target: recordPath(c.CaseID)}
	service := NewService(backend, f.engine, testLogger())

	processing := types.StatusProcessing
	updated, err := service.UpdateStatus(context.Background(), c.CaseID,
		types.CaseUpdate{Status: &processing}, "clerk")
	require.NoError(t, err)
	assert.Equal(t, types.StatusProcessing, updated.Status)
	assert.True(t, backend.intruded)
}

// intrudingBackend rewrites the target record between the service's read and
// write exactly once, forcing a token conflict on the first attempt.
type intrudingBackend struct {
	*storage.Memory
	target   string
	intruded bool
}

func (b *intrudingBackend) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	raw, token, err := b.Memory.GetFile(ctx, path)
	if err == nil && path == b.target && !b.intruded {
		b.intruded = true
		clerkNote := string(bytes.Replace(raw, []byte("Ann Smith"), []byte("Ann R. Smith"), 1))
		if _, werr := b.Memory.PutFile(ctx, path, []byte(clerkNote), token); werr != nil {
			return nil, "", werr
		}
	}
	return raw, token, err
}

func TestUpdateStatus_UnknownCase(t *testing.T) {
	f := newFixture(t)

	processing := types.StatusProcessing
	_, err := f.service.UpdateStatus(context.Background(), "HOU-2024-1700000000-zzzzzzzz",
		types.CaseUpdate{Status: &processing}, "clerk")
	assert.True(t, errors.Is(err, ErrCaseNotFound))
}

func TestExpectedTransitionTable(t *testing.T) {
	assert.True(t, expectedTransition(types.StatusSubmitted, types.StatusProcessing))
	assert.True(t, expectedTransition(types.StatusProcessing, types.StatusApproved))
	assert.True(t, expectedTransition(types.StatusProcessing, types.StatusRejected))
	assert.True(t, expectedTransition(types.StatusApproved, types.StatusFiled))
	assert.False(t, expectedTransition(types.StatusSubmitted, types.StatusFiled))
	assert.False(t, expectedTransition(types.StatusRejected, types.StatusProcessing))
}
