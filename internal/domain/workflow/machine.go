package workflow

// StateMachine tracks a position in the approval chain and validates decisions
type StateMachine interface {
	// State returns the current node
	State() Node

	// CanFire returns true if decision is permitted at the current node
	CanFire(decision Decision) bool

	// Fire applies decision, moving to the configured node if allowed
	Fire(decision Decision) error

	// PermittedDecisions returns the decisions accepted at the current node
	PermittedDecisions() []Decision
}

var approvalChain = newApprovalChain()

// newApprovalChain wires each stage to its successor on approve and to the
// failed outcome on reject. The CEO's approval ends the chain successfully.
func newApprovalChain() ChainBuilder {
	b := NewBuilder()
	for _, role := range approvalOrder {
		next, ok := role.Next()
		onApprove := NodeSuccessful
		if ok {
			onApprove = StageNode(next)
		}
		b.Configure(role).
			Permit(DecisionApprove, onApprove).
			Permit(DecisionReject, NodeFailed)
	}
	return b
}

// NewApprovalMachine returns the standard approval machine positioned at node.
func NewApprovalMachine(node Node) StateMachine {
	return approvalChain.Build(node)
}
