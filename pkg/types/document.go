package types

// Document type constants
const (
	DocTypeDemandNotice = "demand_notice"
	DocTypeAffidavit    = "affidavit"
	DocTypeSummons      = "summons"
	DocTypeSCRAForm     = "scra_form"
)

// DocumentInfo describes one stored document for API listings
type DocumentInfo struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
