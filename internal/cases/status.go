package cases

import (
	"gaevic/pkg/types"
)

// clerkTransitions is the expected workflow: clerks claim a submitted case,
// decide it, then file an approved one. The table is advisory; departures
// are logged, not rejected, because clerks correct real-world mistakes.
// The invariants checked in validateUpdate are enforced on every path.
var clerkTransitions = map[types.CaseStatus][]types.CaseStatus{
	types.StatusSubmitted:  {types.StatusProcessing},
	types.StatusProcessing: {types.StatusApproved, types.StatusRejected},
	types.StatusApproved:   {types.StatusFiled},
}

func knownStatus(status types.CaseStatus) bool {
	switch status {
	case types.StatusSubmitted, types.StatusProcessing, types.StatusApproved,
		types.StatusRejected, types.StatusFiled:
		return true
	}
	return false
}

func expectedTransition(from, to types.CaseStatus) bool {
	for _, next := range clerkTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// validateUpdate enforces the hard lifecycle invariants: a case can only
// be rejected with a reason and can only be filed with an official case
// number, whichever path sets the status.
func validateUpdate(c *types.Case, upd types.CaseUpdate) error {
	if upd.Status == nil {
		return nil
	}
	if !knownStatus(*upd.Status) {
		return ErrUnknownStatus
	}

	switch *upd.Status {
	case types.StatusRejected:
		if isBlank(upd.RejectionReason) && isBlank(c.RejectionReason) {
			return ErrMissingRejectionReason
		}
	case types.StatusFiled:
		if isBlank(upd.OfficialCaseNumber) && isBlank(c.OfficialCaseNumber) {
			return ErrMissingCaseNumber
		}
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
