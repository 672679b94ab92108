package enums

import "fmt"

// ApprovalStatus tracks where a listing sits in the moderation workflow.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) String() string {
	return string(s)
}

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status no longer awaits moderation.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

func ParseApprovalStatus(raw string) (ApprovalStatus, error) {
	s := ApprovalStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid approval status: %q", raw)
	}
	return s, nil
}
