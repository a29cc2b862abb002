package planner

import "github.com/wbrown/graphtype/ir"

// order runs the greedy marginal-cost heuristic: at each step, schedule
// whichever remaining vertex has the lowest estimated cost given the
// variables bound so far, then add that vertex's variables to the bound
// set and repeat. Ties are broken by original constraint order, so two
// runs over the same conjunction and input set always produce the same
// plan.
func order(g *Graph, boundInputs map[ir.VariableID]bool) *Plan {
	bound := make(map[ir.VariableID]bool, len(boundInputs))
	for v := range boundInputs {
		bound[v] = true
	}

	remaining := make([]constraintVertex, len(g.vertices))
	copy(remaining, g.vertices)

	var steps []Step
	for len(remaining) > 0 {
		bestIdx := -1
		var bestCost ElementCost
		var best float64

		for i, v := range remaining {
			c := v.cost(bound, 0, g)
			score := c.PerInput + c.PerOutput
			if bestIdx == -1 || score < best {
				bestIdx = i
				best = score
				bestCost = c
			}
		}

		chosen := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

		modes := make(map[ir.VariableID]VariableMode)
		for _, v := range chosen.variables() {
			if bound[v] {
				modes[v] = ModeInput
			} else {
				modes[v] = ModeOutput
				bound[v] = true
			}
		}

		steps = append(steps, Step{
			Constraint: chosen.constraint(),
			Direction:  chosen.chooseDirection(g),
			Modes:      modes,
			Cost:       bestCost,
		})
	}

	costs := make([]ElementCost, len(steps))
	for i, s := range steps {
		costs[i] = s.Cost
	}

	return &Plan{Scope: g.scope, Steps: steps, TotalCost: chainCost(costs)}
}
