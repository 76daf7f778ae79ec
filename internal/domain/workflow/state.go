package workflow

// Node is a position in the approval chain: either a stage awaiting a
// role's decision or one of the two terminal outcomes.
type Node string

const (
	NodeSuccessful Node = "successful"
	NodeFailed     Node = "failed"
)

// StageNode returns the node at which role decides.
func StageNode(role Role) Node {
	return Node(role)
}

// Role returns the deciding role for a stage node.
func (n Node) Role() (Role, bool) {
	r := Role(n)
	return r, r.IsValid()
}

// IsTerminal returns true if no further decisions are accepted at n
func (n Node) IsTerminal() bool {
	return n == NodeSuccessful || n == NodeFailed
}

// IsValid returns true if n is a stage or a terminal outcome
func (n Node) IsValid() bool {
	if n.IsTerminal() {
		return true
	}
	_, ok := n.Role()
	return ok
}

// String returns the string representation of the node
func (n Node) String() string {
	return string(n)
}

// FinalResult records how a workflow ended.
type FinalResult string

const (
	ResultNone       FinalResult = "none"
	ResultSuccessful FinalResult = "successful"
	ResultFailed     FinalResult = "failed"
)

// IsValid returns true for the three known results
func (f FinalResult) IsValid() bool {
	switch f {
	case ResultNone, ResultSuccessful, ResultFailed:
		return true
	}
	return false
}

// IsTerminal returns true once a workflow has an outcome
func (f FinalResult) IsTerminal() bool {
	return f == ResultSuccessful || f == ResultFailed
}
