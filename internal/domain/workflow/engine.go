package workflow

import "fmt"

// EventKind classifies the outcome of a recorded decision.
type EventKind string

const (
	EventAdvanced      EventKind = "advanced"
	EventRejected      EventKind = "rejected"
	EventApprovedFinal EventKind = "approved_final"
)

// Event describes what a decision did to a workflow.
type Event struct {
	Kind          EventKind `json:"kind"`
	ApplicationID int64     `json:"application_id"`
	From          Role      `json:"from"`
	To            Role      `json:"to,omitempty"`
	By            Role      `json:"by"`
	Notes         string    `json:"notes,omitempty"`
}

// RecordDecision applies role's decision to state and returns the new state
// together with the event it produced. The input state is never modified.
//
// It fails with ErrForbidden when the workflow has ended or role is not the
// current stage, and never mutates anything on failure.
func RecordDecision(state WorkflowState, role Role, decision Decision, notes string) (WorkflowState, Event, error) {
	if state.IsTerminal() {
		return WorkflowState{}, Event{}, fmt.Errorf("%w: workflow for application %d already %s",
			ErrForbidden, state.ApplicationID, state.FinalResult)
	}
	if role != state.CurrentStage {
		return WorkflowState{}, Event{}, fmt.Errorf("%w: %s cannot decide while the application awaits %s",
			ErrForbidden, role, state.CurrentStage)
	}
	if !decision.IsValid() {
		return WorkflowState{}, Event{}, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	if err := state.Validate(); err != nil {
		return WorkflowState{}, Event{}, err
	}

	m := NewApprovalMachine(StageNode(role))
	if err := m.Fire(decision); err != nil {
		return WorkflowState{}, Event{}, err
	}

	next := state.Clone()
	next.Decisions[role] = RoleDecision{Status: decision.status(), Notes: notes}

	ev := Event{
		ApplicationID: state.ApplicationID,
		From:          role,
		By:            role,
		Notes:         notes,
	}

	switch to := m.State(); to {
	case NodeFailed:
		next.FinalResult = ResultFailed
		ev.Kind = EventRejected
	case NodeSuccessful:
		next.FinalResult = ResultSuccessful
		ev.Kind = EventApprovedFinal
	default:
		nextRole, _ := to.Role()
		next.CurrentStage = nextRole
		ev.Kind = EventAdvanced
		ev.To = nextRole
	}

	return next, ev, nil
}
