package types

import "time"

// CaseStatus is the lifecycle state of an eviction case.
type CaseStatus string

const (
	StatusSubmitted  CaseStatus = "submitted"
	StatusProcessing CaseStatus = "processing"
	StatusApproved   CaseStatus = "approved"
	StatusRejected   CaseStatus = "rejected"
	StatusFiled      CaseStatus = "filed"
)

// Case is the full record persisted at cases/<case_id>/case_data.json.
type Case struct {
	CaseID string `json:"case_id"`

	LandlordName    string `json:"landlord_name"`
	LandlordEmail   string `json:"landlord_email,omitempty"`
	LandlordPhone   string `json:"landlord_phone,omitempty"`
	LandlordAddress string `json:"landlord_address,omitempty"`

	TenantName  string  `json:"tenant_name"`
	TenantPhone *string `json:"tenant_phone,omitempty"`
	TenantEmail *string `json:"tenant_email,omitempty"`

	PropertyAddress string `json:"property_address"`
	PropertyCity    string `json:"property_city,omitempty"`
	PropertyZip     string `json:"property_zip,omitempty"`

	RentAmount    float64 `json:"rent_amount"`
	AmountOwed    float64 `json:"amount_owed"`
	NoticeDate    string  `json:"notice_date,omitempty"`
	NoticeDetails string  `json:"notice_details,omitempty"`
	Reason        string  `json:"reason"`
	LeaseType     string  `json:"lease_type"`
	MilitaryCheck bool    `json:"military_check"`

	// Optional pre-rendered signature image, base64 encoded
	SignatureData *string `json:"signature_data,omitempty"`

	// Filenames of the documents written for this case
	Documents []string `json:"documents,omitempty"`

	SubmittedAt time.Time  `json:"submitted_at"`
	Status      CaseStatus `json:"status"`

	// Set only by lifecycle transitions, never by the submitting client
	AssignedBy         *string    `json:"assigned_by,omitempty"`
	AssignedAt         *time.Time `json:"assigned_at,omitempty"`
	OfficialCaseNumber *string    `json:"official_case_number,omitempty"`
	FilingDate         *string    `json:"filing_date,omitempty"`
	ClerkNotes         *string    `json:"clerk_notes,omitempty"`
	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// IndexEntry is the denormalized projection of a Case kept in
// cases/index.json so listing does not read every case record.
type IndexEntry struct {
	CaseID      string     `json:"case_id"`
	Landlord    string     `json:"landlord"`
	Tenant      string     `json:"tenant"`
	Property    string     `json:"property"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Status      CaseStatus `json:"status"`
}

// CaseIndex is the on-disk shape of cases/index.json.
type CaseIndex struct {
	Cases []IndexEntry `json:"cases"`
}

// IndexEntry projects the case into its index representation.
func (c *Case) IndexEntry() IndexEntry {
	return IndexEntry{
		CaseID:      c.CaseID,
		Landlord:    c.LandlordName,
		Tenant:      c.TenantName,
		Property:    c.PropertyAddress,
		SubmittedAt: c.SubmittedAt,
		Status:      c.Status,
	}
}

// CaseUpdate carries clerk-driven mutations to a case.
type CaseUpdate struct {
	Status             *CaseStatus `json:"status,omitempty"`
	OfficialCaseNumber *string     `json:"official_case_number,omitempty"`
	FilingDate         *string     `json:"filing_date,omitempty"`
	ClerkNotes         *string     `json:"clerk_notes,omitempty"`
	RejectionReason    *string     `json:"rejection_reason,omitempty"`
}
