package cases

import "errors"

var (
	// ErrCaseNotFound indicates no case record exists for the id.
	ErrCaseNotFound = errors.New("case not found")
	// ErrDocumentNotFound indicates the case has no such document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnknownStatus indicates a status outside the lifecycle enum.
	ErrUnknownStatus = errors.New("unknown case status")
	// ErrMissingRejectionReason indicates a rejection without a reason.
	ErrMissingRejectionReason = errors.New("rejection_reason required to reject a case")
	// ErrMissingCaseNumber indicates filing without an official case number.
	ErrMissingCaseNumber = errors.New("official_case_number required to file a case")
)
