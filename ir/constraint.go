package ir

import "github.com/wbrown/graphtype/concept"

// Constraint is the closed tagged union of every atomic restriction a
// conjunction can carry. isConstraint is unexported so the set of
// implementers cannot grow outside this package; typeinfer, planner and
// executor all switch exhaustively over it.
type Constraint interface {
	isConstraint()
	// Vertices returns every Vertex argument this constraint touches, in a
	// stable, constraint-kind-specific order.
	Vertices() []Vertex
	String() string
}

// IsaKind distinguishes `isa` (any subtype) from `isa!` (exact type only).
type IsaKind uint8

const (
	IsaSubtype IsaKind = iota
	IsaExact
)

// Isa constrains Thing to be an instance of Type (or one of its subtypes).
type Isa struct {
	Thing Vertex
	Type  Vertex
	Kind  IsaKind
}

func (Isa) isConstraint()        {}
func (c Isa) Vertices() []Vertex { return []Vertex{c.Thing, c.Type} }
func (c Isa) String() string     { return c.Thing.String() + " isa " + c.Type.String() }

// Sub constrains Subtype to be a (direct or transitive) subtype of Supertype.
type Sub struct {
	Subtype   Vertex
	Supertype Vertex
	Kind      IsaKind
}

func (Sub) isConstraint()        {}
func (c Sub) Vertices() []Vertex { return []Vertex{c.Subtype, c.Supertype} }
func (c Sub) String() string     { return c.Subtype.String() + " sub " + c.Supertype.String() }

// Has constrains Owner to own an Attribute instance.
type Has struct {
	Owner     Vertex
	Attribute Vertex
}

func (Has) isConstraint()        {}
func (c Has) Vertices() []Vertex { return []Vertex{c.Owner, c.Attribute} }
func (c Has) String() string     { return c.Owner.String() + " has " + c.Attribute.String() }

// Links constrains Relation to link Player in Role.
type Links struct {
	Relation Vertex
	Player   Vertex
	Role     Vertex
}

func (Links) isConstraint() {}
func (c Links) Vertices() []Vertex {
	return []Vertex{c.Relation, c.Player, c.Role}
}
func (c Links) String() string {
	return c.Relation.String() + " links (" + c.Role.String() + ": " + c.Player.String() + ")"
}

// IndexedLinks fuses two Links constraints over the same binary-relation
// instance (one role bound at each end) into a single constraint that can
// be driven off the player-player index instead of two relation-joined
// scans. It is never produced by query construction — typeinfer and
// planner never see it — only synthesized by the compiler package after
// planning, from a pair of Links steps it recognizes as eligible.
type IndexedLinks struct {
	Relation    Vertex
	PlayerStart Vertex
	RoleStart   Vertex
	PlayerEnd   Vertex
	RoleEnd     Vertex
}

func (IndexedLinks) isConstraint() {}
func (c IndexedLinks) Vertices() []Vertex {
	return []Vertex{c.Relation, c.PlayerStart, c.RoleStart, c.PlayerEnd, c.RoleEnd}
}
func (c IndexedLinks) String() string {
	return c.Relation.String() + " links (" + c.RoleStart.String() + ": " + c.PlayerStart.String() +
		", " + c.RoleEnd.String() + ": " + c.PlayerEnd.String() + ")"
}

// Owns is a schema-level capability constraint: OwnerType owns AttributeType.
type Owns struct {
	OwnerType     Vertex
	AttributeType Vertex
}

func (Owns) isConstraint()        {}
func (c Owns) Vertices() []Vertex { return []Vertex{c.OwnerType, c.AttributeType} }
func (c Owns) String() string     { return c.OwnerType.String() + " owns " + c.AttributeType.String() }

// Relates is a schema-level capability constraint: RelationType relates RoleType.
type Relates struct {
	RelationType Vertex
	RoleType     Vertex
}

func (Relates) isConstraint()        {}
func (c Relates) Vertices() []Vertex { return []Vertex{c.RelationType, c.RoleType} }
func (c Relates) String() string {
	return c.RelationType.String() + " relates " + c.RoleType.String()
}

// Plays is a schema-level capability constraint: PlayerType plays RoleType.
type Plays struct {
	PlayerType Vertex
	RoleType   Vertex
}

func (Plays) isConstraint()        {}
func (c Plays) Vertices() []Vertex { return []Vertex{c.PlayerType, c.RoleType} }
func (c Plays) String() string     { return c.PlayerType.String() + " plays " + c.RoleType.String() }

// Label restricts TypeVar to the single type named Name.
type Label struct {
	TypeVar Vertex
	Name    concept.Keyword
}

func (Label) isConstraint()        {}
func (c Label) Vertices() []Vertex { return []Vertex{c.TypeVar} }
func (c Label) String() string     { return c.TypeVar.String() + " label " + c.Name.String() }

// RoleName restricts TypeVar to role types named Name (possibly across
// several relations, e.g. all `employer` roles).
type RoleName struct {
	TypeVar Vertex
	Name    string
}

func (RoleName) isConstraint()        {}
func (c RoleName) Vertices() []Vertex { return []Vertex{c.TypeVar} }
func (c RoleName) String() string     { return c.TypeVar.String() + " role-name " + c.Name }

// Kind restricts TypeVar to types of the given schema kind.
type Kind struct {
	TypeVar Vertex
	Kind    concept.TypeKind
}

func (Kind) isConstraint()        {}
func (c Kind) Vertices() []Vertex { return []Vertex{c.TypeVar} }
func (c Kind) String() string     { return c.TypeVar.String() + " kind " + c.Kind.String() }

// Is constrains two vertices to denote the same variable identity.
type Is struct {
	LHS Vertex
	RHS Vertex
}

func (Is) isConstraint()        {}
func (c Is) Vertices() []Vertex { return []Vertex{c.LHS, c.RHS} }
func (c Is) String() string     { return c.LHS.String() + " is " + c.RHS.String() }

// CompareOp enumerates the comparison operators a Comparison constraint
// may use.
type CompareOp string

const (
	OpEQ       CompareOp = "="
	OpLT       CompareOp = "<"
	OpLTE      CompareOp = "<="
	OpGT       CompareOp = ">"
	OpGTE      CompareOp = ">="
	OpLike     CompareOp = "like"
	OpContains CompareOp = "contains"
)

// Comparison constrains LHS and RHS by Op.
type Comparison struct {
	LHS Vertex
	RHS Vertex
	Op  CompareOp
}

func (Comparison) isConstraint()        {}
func (c Comparison) Vertices() []Vertex { return []Vertex{c.LHS, c.RHS} }
func (c Comparison) String() string {
	return c.LHS.String() + " " + string(c.Op) + " " + c.RHS.String()
}

// Expr is the closed expression-tree union used by ExpressionBinding and
// FunctionCallBinding's argument positions; arithmetic/string evaluation
// itself is an executor concern (executor/expressions.go).
type Expr interface {
	isExpr()
	String() string
}

// ExprVertex lifts a Vertex (a variable, label, or parameter) into Expr.
type ExprVertex struct{ V Vertex }

func (ExprVertex) isExpr()        {}
func (e ExprVertex) String() string { return e.V.String() }

// ExprCall applies a named operator to argument expressions, e.g. `+`, `len`.
type ExprCall struct {
	Op   string
	Args []Expr
}

func (ExprCall) isExpr() {}
func (e ExprCall) String() string {
	s := "(" + e.Op
	for _, a := range e.Args {
		s += " " + a.String()
	}
	return s + ")"
}

// ExpressionBinding evaluates Expr and binds the result(s) to Assigned.
type ExpressionBinding struct {
	Assigned []Vertex
	Expr     Expr
}

func (ExpressionBinding) isConstraint() {}
func (c ExpressionBinding) Vertices() []Vertex {
	return c.Assigned
}
func (c ExpressionBinding) String() string {
	s := ""
	for i, v := range c.Assigned {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s + " = " + c.Expr.String()
}

// FunctionCallBinding invokes Callee with Args and binds its results to
// Assigned. Unlike ExpressionBinding, the callee is a named function
// resolved against the (out-of-scope) function registry rather than an
// inline expression.
type FunctionCallBinding struct {
	Assigned []Vertex
	Callee   string
	Args     []Vertex
}

func (FunctionCallBinding) isConstraint() {}
func (c FunctionCallBinding) Vertices() []Vertex {
	return append(append([]Vertex{}, c.Assigned...), c.Args...)
}
func (c FunctionCallBinding) String() string {
	s := c.Callee + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}
