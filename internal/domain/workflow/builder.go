package workflow

import (
	"fmt"
	"sort"
)

// ChainBuilder builds a configured approval state machine
type ChainBuilder interface {
	// Configure returns the configuration for the stage at which role decides
	Configure(role Role) StageConfiguration

	// Build creates a new state machine positioned at initial
	Build(initial Node) StateMachine
}

// StageConfiguration configures the outcomes of decisions at one stage
type StageConfiguration interface {
	// Permit allows decision to move the machine to the target node
	Permit(decision Decision, to Node) StageConfiguration
}

type stageConfig struct {
	stage       Node
	transitions map[Decision]Node
}

type chainBuilder struct {
	configurations map[Node]*stageConfig
}

type stateMachine struct {
	current        Node
	configurations map[Node]*stageConfig
}

// NewBuilder creates a new chain builder
func NewBuilder() ChainBuilder {
	return &chainBuilder{
		configurations: make(map[Node]*stageConfig),
	}
}

// Configure returns the configuration for role's stage, creating it on first use
func (b *chainBuilder) Configure(role Role) StageConfiguration {
	if !role.IsValid() {
		panic(fmt.Sprintf("invalid role: %s", role))
	}

	node := StageNode(role)
	config, exists := b.configurations[node]
	if !exists {
		config = &stageConfig{
			stage:       node,
			transitions: make(map[Decision]Node),
		}
		b.configurations[node] = config
	}

	return config
}

// Build creates a new state machine. Configurations are copied so later
// builder changes do not affect machines already built.
func (b *chainBuilder) Build(initial Node) StateMachine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial node: %s", initial))
	}

	configs := make(map[Node]*stageConfig, len(b.configurations))
	for node, config := range b.configurations {
		transitions := make(map[Decision]Node, len(config.transitions))
		for d, to := range config.transitions {
			transitions[d] = to
		}
		configs[node] = &stageConfig{stage: node, transitions: transitions}
	}

	return &stateMachine{
		current:        initial,
		configurations: configs,
	}
}

// Permit allows decision to move the machine to the target node
func (c *stageConfig) Permit(decision Decision, to Node) StageConfiguration {
	if !decision.IsValid() {
		panic(fmt.Sprintf("invalid decision: %s", decision))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target node: %s", to))
	}

	c.transitions[decision] = to
	return c
}

func (m *stateMachine) State() Node {
	return m.current
}

func (m *stateMachine) CanFire(decision Decision) bool {
	_, err := m.target(decision)
	return err == nil
}

func (m *stateMachine) Fire(decision Decision) error {
	to, err := m.target(decision)
	if err != nil {
		return err
	}
	m.current = to
	return nil
}

func (m *stateMachine) PermittedDecisions() []Decision {
	config, exists := m.configurations[m.current]
	if !exists {
		return []Decision{}
	}

	decisions := make([]Decision, 0, len(config.transitions))
	for d := range config.transitions {
		decisions = append(decisions, d)
	}
	sort.Slice(decisions, func(i, j int) bool { return decisions[i] < decisions[j] })
	return decisions
}

func (m *stateMachine) target(decision Decision) (Node, error) {
	config, exists := m.configurations[m.current]
	if !exists {
		return "", fmt.Errorf("%w: cannot %s at %s (no configuration)", ErrInvalidTransition, decision, m.current)
	}
	to, exists := config.transitions[decision]
	if !exists {
		return "", fmt.Errorf("%w: cannot %s at %s", ErrInvalidTransition, decision, m.current)
	}
	return to, nil
}
