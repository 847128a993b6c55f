package types

// CaseSubmission is the payload accepted by the submission API. CaseID is an
// optional idempotency key from an upstream system; Documents optionally
// carries pre-rendered PDFs (base64) keyed by doc type, for the
// client-signs-and-uploads flow.
type CaseSubmission struct {
	CaseID        string            `json:"case_id,omitempty"`
	CaseData      Case              `json:"case_data"`
	SignatureData *string           `json:"signature_data,omitempty"`
	Documents     map[string]string `json:"documents,omitempty"`
}

// DocumentFailure reports one document that could not be rendered or written.
type DocumentFailure struct {
	DocType string `json:"doc_type"`
	Error   string `json:"error"`
}

// SubmissionResult is returned by the sync engine. A partial failure still
// carries the case id so clients can retry by id without duplicating the case.
type SubmissionResult struct {
	Success          bool              `json:"success"`
	CaseID           string            `json:"case_id"`
	DocumentsWritten int               `json:"documents_written"`
	StoragePath      string            `json:"storage_path"`
	Failures         []DocumentFailure `json:"failures,omitempty"`
}
