package event

// Type identifies the type of domain event
type Type string

const (
	TypeApplicationSubmitted Type = "application.submitted"
	TypeStageAdvanced        Type = "workflow.advanced"
	TypeApplicationRejected  Type = "workflow.rejected"
	TypeApplicationApproved  Type = "workflow.approved_final"
)

// WorkflowTypes lists the event types that carry a workflow transition.
var WorkflowTypes = []Type{
	TypeApplicationSubmitted,
	TypeStageAdvanced,
	TypeApplicationRejected,
	TypeApplicationApproved,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationSubmitted,
		TypeStageAdvanced,
		TypeApplicationRejected,
		TypeApplicationApproved:
		return true
	default:
		return false
	}
}
