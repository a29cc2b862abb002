package planner

import (
	"fmt"

	"github.com/wbrown/graphtype/ir"
)

// VariableMode classifies how one step of a plan uses a variable.
type VariableMode uint8

const (
	// ModeInput: the variable must already be bound before this step runs.
	ModeInput VariableMode = iota
	// ModeOutput: this step binds the variable.
	ModeOutput
	// ModeCount: the step only needs to know how many values would bind,
	// not the values themselves (used for count aggregates).
	ModeCount
	// ModeCheck: the step only verifies the variable's current binding is
	// consistent with the constraint, without producing new rows for it.
	ModeCheck
)

// Step is one scheduled constraint in execution order, with its chosen
// direction and the mode assigned to each of its variables.
type Step struct {
	Constraint ir.Constraint
	Direction  Direction
	Modes      map[ir.VariableID]VariableMode
	Cost       ElementCost
}

// Plan is the fully ordered, direction-chosen execution plan for one
// conjunction's constraints.
type Plan struct {
	Scope       ir.ScopeID
	Steps       []Step
	TotalCost   float64
}

// Describe renders each step as "<constraint> (<direction>, branching <n>)"
// in scheduled order, for diagnostics output and CLI plan inspection.
func (p *Plan) Describe() []string {
	out := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		out[i] = fmt.Sprintf("%s (%s, branching %.1f)", step.Constraint.String(), step.Direction, step.Cost.BranchingFactor)
	}
	return out
}

// Variables returns every variable touched by the plan's own steps, in
// scheduled order, first occurrence only. Variables first touched by the
// same step come out in no defined order.
func (p *Plan) Variables() []ir.VariableID {
	seen := make(map[ir.VariableID]bool)
	var out []ir.VariableID
	for _, step := range p.Steps {
		for v := range step.Modes {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
