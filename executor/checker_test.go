package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

func TestCheckerRejectsNonCheckableConstraint(t *testing.T) {
	_, err := NewChecker(ir.Isa{})
	require.Error(t, err)
}

func TestCheckerIsConstraint(t *testing.T) {
	x := ir.VariableID(1)
	y := ir.VariableID(2)
	constraint := ir.Is{LHS: ir.VarVertex{Var: ir.Variable{ID: x}}, RHS: ir.VarVertex{Var: ir.Variable{ID: y}}}
	chk, err := NewChecker(constraint)
	require.NoError(t, err)

	ok, err := chk.Check(Row{x: longVal(5), y: longVal(5)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = chk.Check(Row{x: longVal(5), y: longVal(6)})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerIsUnboundVertexErrors(t *testing.T) {
	x := ir.VariableID(1)
	y := ir.VariableID(2)
	constraint := ir.Is{LHS: ir.VarVertex{Var: ir.Variable{ID: x}}, RHS: ir.VarVertex{Var: ir.Variable{ID: y}}}
	chk, err := NewChecker(constraint)
	require.NoError(t, err)

	_, err = chk.Check(Row{x: longVal(5)})
	require.Error(t, err)
}

// S6: a comparison constraint that fails at runtime (e.g. a `like` pattern
// that doesn't match the bound attribute value) is reported as a false
// check, not an execution error — the row is simply filtered out.
func TestCheckerComparisonLikeViolation(t *testing.T) {
	x := ir.VariableID(1)
	constraint := ir.Comparison{
		LHS: ir.VarVertex{Var: ir.Variable{ID: x}},
		RHS: ir.ParamVertex{Name: "pattern", Value: "^foo.*"},
		Op:  ir.OpLike,
	}
	chk, err := NewChecker(constraint)
	require.NoError(t, err)

	ok, err := chk.Check(Row{x: {Kind: concept.VarValue, Value: "foobar"}})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = chk.Check(Row{x: {Kind: concept.VarValue, Value: "barbaz"}})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerComparisonInvalidLikePattern(t *testing.T) {
	x := ir.VariableID(1)
	constraint := ir.Comparison{
		LHS: ir.VarVertex{Var: ir.Variable{ID: x}},
		RHS: ir.ParamVertex{Name: "pattern", Value: "("},
		Op:  ir.OpLike,
	}
	chk, err := NewChecker(constraint)
	require.NoError(t, err)

	_, err = chk.Check(Row{x: {Kind: concept.VarValue, Value: "anything"}})
	require.Error(t, err)
}

func TestCheckerComparisonOrdering(t *testing.T) {
	x := ir.VariableID(1)
	constraint := ir.Comparison{
		LHS: ir.VarVertex{Var: ir.Variable{ID: x}},
		RHS: ir.ParamVertex{Name: "bound", Value: int64(10)},
		Op:  ir.OpGT,
	}
	chk, err := NewChecker(constraint)
	require.NoError(t, err)

	ok, err := chk.Check(Row{x: longVal(11)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = chk.Check(Row{x: longVal(9)})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerComparisonContainsRequiresStrings(t *testing.T) {
	x := ir.VariableID(1)
	constraint := ir.Comparison{
		LHS: ir.VarVertex{Var: ir.Variable{ID: x}},
		RHS: ir.ParamVertex{Name: "needle", Value: "bar"},
		Op:  ir.OpContains,
	}
	chk, err := NewChecker(constraint)
	require.NoError(t, err)

	ok, err := chk.Check(Row{x: {Kind: concept.VarValue, Value: "foobarbaz"}})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = chk.Check(Row{x: longVal(5)})
	require.Error(t, err)
}
