package voiceflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a configured transition may fire.
type GuardFunc func(ctx context.Context) bool

type transition struct {
	to    State
	guard GuardFunc
}

// Builder configures the transition table for a Machine. Configuration is
// fluent: Configure(state).Permit(trigger, target) per edge.
type Builder struct {
	transitions map[State]map[Trigger][]transition
}

// NewBuilder creates an empty state machine builder.
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger][]transition)}
}

// StateConfig configures outgoing transitions for one state.
type StateConfig struct {
	builder *Builder
	state   State
}

// Configure returns the configuration for the given state.
func (b *Builder) Configure(state State) *StateConfig {
	if !state.IsValid() {
		panic(fmt.Sprintf("voiceflow: invalid state %q", state))
	}
	if b.transitions[state] == nil {
		b.transitions[state] = make(map[Trigger][]transition)
	}
	return &StateConfig{builder: b, state: state}
}

// Permit allows trigger to move this state to the target state.
func (c *StateConfig) Permit(trigger Trigger, to State) *StateConfig {
	return c.PermitIf(trigger, to, nil)
}

// PermitIf allows the transition only when guard passes. Transitions for
// the same trigger are tried in configuration order.
func (c *StateConfig) PermitIf(trigger Trigger, to State, guard GuardFunc) *StateConfig {
	if !to.IsValid() {
		panic(fmt.Sprintf("voiceflow: invalid target state %q", to))
	}
	edges := c.builder.transitions[c.state]
	edges[trigger] = append(edges[trigger], transition{to: to, guard: guard})
	return c
}

// Build creates a machine starting at initial. The machine owns a copy of
// the transition table, so the builder can be reused.
func (b *Builder) Build(initial State) *Machine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("voiceflow: invalid initial state %q", initial))
	}
	table := make(map[State]map[Trigger][]transition, len(b.transitions))
	for state, edges := range b.transitions {
		copied := make(map[Trigger][]transition, len(edges))
		for trigger, ts := range edges {
			copied[trigger] = append([]transition(nil), ts...)
		}
		table[state] = copied
	}
	return &Machine{current: initial, transitions: table}
}

// Machine tracks the current state and validates transitions. It is not
// safe for concurrent use; callers serialize access.
type Machine struct {
	current     State
	transitions map[State]map[Trigger][]transition
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire reports whether trigger has at least one configured transition
// from the current state. Guards are not evaluated.
func (m *Machine) CanFire(trigger Trigger) bool {
	return len(m.transitions[m.current][trigger]) > 0
}

// Fire executes the trigger, moving to the first configured target whose
// guard passes.
func (m *Machine) Fire(ctx context.Context, trigger Trigger) error {
	edges := m.transitions[m.current][trigger]
	if len(edges) == 0 {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	for _, t := range edges {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}
	return fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}

// PermittedTriggers returns the triggers configured for the current state.
func (m *Machine) PermittedTriggers() []Trigger {
	edges := m.transitions[m.current]
	triggers := make([]Trigger, 0, len(edges))
	for trigger := range edges {
		triggers = append(triggers, trigger)
	}
	return triggers
}
