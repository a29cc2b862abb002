package ir

import "github.com/wbrown/graphtype/concept"

// Vertex is the tagged union {Variable, Label, Parameter} every constraint
// argument position holds. It is a closed set: exhaustive type switches
// over Vertex are expected throughout typeinfer and planner rather than a
// dynamic-dispatch interface method per operation.
type Vertex interface {
	isVertex()
	String() string
}

// VarVertex references a query Variable.
type VarVertex struct {
	Var Variable
}

func (VarVertex) isVertex()        {}
func (v VarVertex) String() string { return v.Var.String() }

// LabelVertex names a schema type literally, e.g. the `person` in
// `$x isa person`.
type LabelVertex struct {
	Label concept.Keyword
}

func (LabelVertex) isVertex()        {}
func (l LabelVertex) String() string { return l.Label.String() }

// ParamVertex carries a literal value or an input-bound identifier
// supplied from outside the block (a query parameter).
type ParamVertex struct {
	Name  string
	Value concept.Value
}

func (ParamVertex) isVertex()        {}
func (p ParamVertex) String() string { return "%" + p.Name }

// AsVariable returns the underlying Variable if v is a VarVertex.
func AsVariable(v Vertex) (Variable, bool) {
	if vv, ok := v.(VarVertex); ok {
		return vv.Var, true
	}
	return Variable{}, false
}
