package executor

import (
	"strings"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// Checker evaluates an Is or Comparison constraint against an already
// materialized row, without producing or consuming any new variable
// binding. The compiler lowers each scheduled Is or Comparison step to a
// CheckStep, which runs a Checker over the rows earlier steps produced.
type Checker struct {
	constraint ir.Constraint
}

// NewChecker builds a Checker for an Is or Comparison constraint. Any
// other constraint kind is a scheduling error, not a data error.
func NewChecker(c ir.Constraint) (*Checker, error) {
	switch c.(type) {
	case ir.Is, ir.Comparison:
		return &Checker{constraint: c}, nil
	default:
		return nil, compileError("%T is not a checkable constraint", c)
	}
}

// Check reports whether row satisfies the constraint. Both vertices must
// already resolve to a value in row or as a literal vertex.
func (chk *Checker) Check(row Row) (bool, error) {
	switch c := chk.constraint.(type) {
	case ir.Is:
		lhs, ok := resolveVertex(c.LHS, row)
		if !ok {
			return false, compileError("is: unbound vertex " + c.LHS.String())
		}
		rhs, ok := resolveVertex(c.RHS, row)
		if !ok {
			return false, compileError("is: unbound vertex " + c.RHS.String())
		}
		return compareRowValue(lhs, rhs) == 0, nil
	case ir.Comparison:
		lhs, ok := resolveVertex(c.LHS, row)
		if !ok {
			return false, compileError("comparison: unbound vertex " + c.LHS.String())
		}
		rhs, ok := resolveVertex(c.RHS, row)
		if !ok {
			return false, compileError("comparison: unbound vertex " + c.RHS.String())
		}
		return evalComparison(c.Op, lhs, rhs)
	default:
		return false, compileError("%T is not a checkable constraint", chk.constraint)
	}
}

func resolveVertex(v ir.Vertex, row Row) (concept.VariableValue, bool) {
	switch vv := v.(type) {
	case ir.VarVertex:
		val, ok := row[vv.Var.ID]
		return val, ok
	case ir.ParamVertex:
		return concept.VariableValue{Kind: concept.VarValue, Value: vv.Value}, true
	default:
		return concept.VariableValue{}, false
	}
}

func evalComparison(op ir.CompareOp, lhs, rhs concept.VariableValue) (bool, error) {
	switch op {
	case ir.OpEQ:
		return compareRowValue(lhs, rhs) == 0, nil
	case ir.OpLT:
		return compareRowValue(lhs, rhs) < 0, nil
	case ir.OpLTE:
		return compareRowValue(lhs, rhs) <= 0, nil
	case ir.OpGT:
		return compareRowValue(lhs, rhs) > 0, nil
	case ir.OpGTE:
		return compareRowValue(lhs, rhs) >= 0, nil
	case ir.OpContains:
		left, lok := lhs.Value.(string)
		right, rok := rhs.Value.(string)
		if !lok || !rok {
			return false, compileError("contains: both operands must be strings")
		}
		return strings.Contains(left, right), nil
	case ir.OpLike:
		left, lok := lhs.Value.(string)
		right, rok := rhs.Value.(string)
		if !lok || !rok {
			return false, compileError("like: both operands must be strings")
		}
		return matchLike(left, right)
	default:
		return false, compileError("unknown comparison operator " + string(op))
	}
}
