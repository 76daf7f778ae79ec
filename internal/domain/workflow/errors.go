package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a decision is not permitted at a node
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a workflow state violates the chain ordering
	ErrInvalidState = errors.New("invalid workflow state")

	// ErrForbidden is returned when a role acts out of turn or after the workflow ended
	ErrForbidden = errors.New("action not permitted")

	// ErrInvalidRole is returned for roles outside the approval chain
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidDecision is returned for decisions other than approve or reject
	ErrInvalidDecision = errors.New("invalid decision")
)
