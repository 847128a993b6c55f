package types

// MonthlyReportRow aggregates cases submitted in one calendar month.
// Pending counts submitted, processing and approved cases.
type MonthlyReportRow struct {
	Month       string  `json:"month"`
	Total       int     `json:"total"`
	Filed       int     `json:"filed"`
	Rejected    int     `json:"rejected"`
	Pending     int     `json:"pending"`
	TotalAmount float64 `json:"total_amount"`
}

// DashboardStats summarizes the index for the clerk dashboard.
type DashboardStats struct {
	TotalCases        int          `json:"total_cases"`
	PendingReview     int          `json:"pending_review"`
	Processing        int          `json:"processing"`
	Approved          int          `json:"approved"`
	Rejected          int          `json:"rejected"`
	CourtFiled        int          `json:"court_filed"`
	RecentSubmissions []IndexEntry `json:"recent_submissions"`
}
