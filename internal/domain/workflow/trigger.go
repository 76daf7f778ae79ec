package workflow

import (
	"fmt"
	"strings"
)

// Decision is the verdict a role records at its stage. Decisions are the
// triggers of the approval state machine.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision converts user input into a Decision.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
	}
	return d, nil
}

// String returns the string representation of the decision
func (d Decision) String() string {
	return string(d)
}

// IsValid returns true if the decision is approve or reject
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// DecisionStatus is what is stored per role in a workflow.
type DecisionStatus string

const (
	StatusPending  DecisionStatus = "pending"
	StatusApproved DecisionStatus = "approved"
	StatusRejected DecisionStatus = "rejected"
)

// IsValid returns true for the three known statuses
func (s DecisionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (d Decision) status() DecisionStatus {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}
