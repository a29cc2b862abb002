package ir

import (
	"fmt"

	"github.com/wbrown/graphtype/concept"
)

// BindingMode classifies how a variable becomes bound within its
// declaring scope.
type BindingMode uint8

const (
	// LocallyBinding variables are bound by a constraint within their own
	// conjunction.
	LocallyBinding BindingMode = iota
	// OptionallyBinding variables are bound only if an Optional branch
	// containing them matches.
	OptionallyBinding
	// InheritedFromInput variables arrive already bound from a previous
	// pipeline stage or an enclosing query's :in/input clause.
	InheritedFromInput
)

// VariableRegistry is a read-only variable → {name, category, binding-mode}
// table built by the (out-of-scope) parser. The compiler never mutates it.
type VariableRegistry struct {
	variables map[VariableID]Variable
	bindings  map[VariableID]BindingMode
	byName    map[string]VariableID
	next      VariableID
}

// NewVariableRegistry creates an empty registry.
func NewVariableRegistry() *VariableRegistry {
	return &VariableRegistry{
		variables: make(map[VariableID]Variable),
		bindings:  make(map[VariableID]BindingMode),
		byName:    make(map[string]VariableID),
	}
}

// Declare registers a new variable and returns it. Declaring the same name
// twice is a front-end error and is not guarded against here — the
// registry trusts its caller.
func (r *VariableRegistry) Declare(name string, category concept.Category, mode BindingMode) Variable {
	id := r.next
	r.next++
	v := Variable{ID: id, Name: name, Category: category}
	r.variables[id] = v
	r.bindings[id] = mode
	r.byName[name] = id
	return v
}

// Lookup resolves a variable by name.
func (r *VariableRegistry) Lookup(name string) (Variable, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Variable{}, false
	}
	return r.variables[id], true
}

// BindingModeOf returns the binding mode of a registered variable.
func (r *VariableRegistry) BindingModeOf(id VariableID) BindingMode {
	return r.bindings[id]
}

// Name returns the human-readable name of a variable, for error messages.
func (r *VariableRegistry) Name(id VariableID) string {
	if v, ok := r.variables[id]; ok {
		return v.Name
	}
	return fmt.Sprintf("_var%d", id)
}

// BlockContext provides variable declaration scopes for a Block: which
// scope each variable was declared in, and its binding mode within that
// scope.
type BlockContext struct {
	Registry     *VariableRegistry
	ScopeOfVar   map[VariableID]ScopeID
	ParentScope  map[ScopeID]ScopeID
}

// NewBlockContext creates a context rooted at RootScope.
func NewBlockContext(registry *VariableRegistry) *BlockContext {
	return &BlockContext{
		Registry:    registry,
		ScopeOfVar:  make(map[VariableID]ScopeID),
		ParentScope: make(map[ScopeID]ScopeID),
	}
}

// DeclareIn records that variable v was declared in scope s.
func (c *BlockContext) DeclareIn(v Variable, s ScopeID) {
	c.ScopeOfVar[v.ID] = s
}

// SetParent records that scope child is nested directly inside scope parent.
func (c *BlockContext) SetParent(child, parent ScopeID) {
	c.ParentScope[child] = parent
}

// IsAncestor reports whether ancestor is parent, grandparent, ... of scope.
func (c *BlockContext) IsAncestor(ancestor, scope ScopeID) bool {
	for s, ok := c.ParentScope[scope]; ok; s, ok = c.ParentScope[s] {
		if s == ancestor {
			return true
		}
	}
	return false
}

// Block is a root conjunction plus its variable-scope context.
type Block struct {
	Context     *BlockContext
	Conjunction *Conjunction
}

// NewBlock builds a Block with an empty root conjunction.
func NewBlock(context *BlockContext) *Block {
	return &Block{Context: context, Conjunction: NewConjunction(RootScope)}
}
