package workflow

import "fmt"

// ImplicitApprovalNote is recorded for the field officer when an application
// is submitted.
const ImplicitApprovalNote = "implicit approval at submission"

// RoleDecision is the stored verdict of one role.
type RoleDecision struct {
	Status DecisionStatus `json:"status"`
	Notes  string         `json:"notes,omitempty"`
}

// WorkflowState is the approval progress of a single loan application.
type WorkflowState struct {
	ApplicationID int64                 `json:"application_id"`
	CurrentStage  Role                  `json:"current_stage"`
	Decisions     map[Role]RoleDecision `json:"decisions"`
	FinalResult   FinalResult           `json:"final_result"`
	Version       int64                 `json:"version"`
}

// NewWorkflowState returns the state of a freshly submitted application: the
// field officer has approved by submitting and the manager decides next.
func NewWorkflowState(applicationID int64) WorkflowState {
	decisions := make(map[Role]RoleDecision, len(approvalOrder))
	for _, role := range approvalOrder {
		decisions[role] = RoleDecision{Status: StatusPending}
	}
	decisions[RoleFieldOfficer] = RoleDecision{Status: StatusApproved, Notes: ImplicitApprovalNote}

	return WorkflowState{
		ApplicationID: applicationID,
		CurrentStage:  RoleManager,
		Decisions:     decisions,
		FinalResult:   ResultNone,
		Version:       1,
	}
}

// Clone returns a deep copy of s.
func (s WorkflowState) Clone() WorkflowState {
	c := s
	c.Decisions = make(map[Role]RoleDecision, len(s.Decisions))
	for role, d := range s.Decisions {
		c.Decisions[role] = d
	}
	return c
}

// Decision returns the recorded decision for role. Missing entries read as pending.
func (s WorkflowState) Decision(role Role) RoleDecision {
	if d, ok := s.Decisions[role]; ok {
		return d
	}
	return RoleDecision{Status: StatusPending}
}

// IsTerminal returns true once the workflow has a final result
func (s WorkflowState) IsTerminal() bool {
	return s.FinalResult.IsTerminal()
}

// Validate checks the chain ordering: every role before the current stage has
// approved, and nothing after it has decided. A failed workflow holds a
// rejection at its current stage; a successful one has every role approved.
func (s WorkflowState) Validate() error {
	if !s.CurrentStage.IsValid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidState, s.CurrentStage)
	}
	if !s.FinalResult.IsValid() {
		return fmt.Errorf("%w: unknown final result %q", ErrInvalidState, s.FinalResult)
	}
	for role := range s.Decisions {
		if !role.IsValid() {
			return fmt.Errorf("%w: decision for unknown role %q", ErrInvalidState, role)
		}
	}

	stage := s.CurrentStage.Index()
	for i, role := range approvalOrder {
		d := s.Decision(role)
		if !d.Status.IsValid() {
			return fmt.Errorf("%w: %s has unknown status %q", ErrInvalidState, role, d.Status)
		}

		var want DecisionStatus
		switch {
		case i < stage:
			want = StatusApproved
		case i > stage:
			want = StatusPending
		default:
			switch s.FinalResult {
			case ResultNone:
				want = StatusPending
			case ResultSuccessful:
				want = StatusApproved
			case ResultFailed:
				want = StatusRejected
			}
		}
		if d.Status != want {
			return fmt.Errorf("%w: %s is %s at stage %s", ErrInvalidState, role, d.Status, s.CurrentStage)
		}
	}

	if s.FinalResult == ResultSuccessful && s.CurrentStage != RoleCEO {
		return fmt.Errorf("%w: successful workflow must end at %s", ErrInvalidState, RoleCEO)
	}
	return nil
}
