// Package ir models the parsed, constraint-based intermediate
// representation that the (out-of-scope) parser/IR front-end hands to the
// compiler: blocks of conjunctions built from a closed set of constraint
// kinds over variables, labels and parameters.
package ir

import "github.com/wbrown/graphtype/concept"

// VariableID identifies a Variable uniquely and stably within a query.
type VariableID uint32

// Variable is an opaque query variable, tagged with the category and
// optionality the parser assigned it. Identity (VariableID) is stable
// across every stage of compilation.
type Variable struct {
	ID          VariableID
	Name        string
	Category    concept.Category
	Optionality concept.Optionality
}

func (v Variable) String() string { return "$" + v.Name }

// ScopeID identifies a conjunction's variable-declaration scope.
type ScopeID uint32

// RootScope is the scope id of a Block's top-level conjunction.
const RootScope ScopeID = 0
