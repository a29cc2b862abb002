package concept

import "time"

// Value is anything storable in an attribute position: a string, number,
// boolean, timestamp, byte string, or a Reference to another thing. This
// is deliberately interface{} rather than a closed Go type union —
// storage and comparison enumerate the valid concrete types explicitly
// (see Compare, in compare.go).
type Value interface{}

// Reference is a Value that points at another thing by Identity — used for
// attribute values that are themselves entity/relation references and for
// RoleType.
type Reference = Identity

func StringValue(s string) Value     { return s }
func LongValue(i int64) Value        { return i }
func DoubleValue(f float64) Value    { return f }
func BoolValue(b bool) Value         { return b }
func DateTimeValue(t time.Time) Value { return t }
func BytesValue(b []byte) Value      { return b }
func RefValue(id Identity) Value     { return Reference(id) }

// VariableValueKind tags what a runtime row slot currently holds: either
// nothing yet, a schema type, a thing instance, or a plain value.
type VariableValueKind uint8

const (
	VarEmpty VariableValueKind = iota
	VarType
	VarThing
	VarValue
)

// VariableValue is one cell of a runtime Row.
type VariableValue struct {
	Kind  VariableValueKind
	Type  TypeAnnotation // valid when Kind == VarType
	Thing Identity       // valid when Kind == VarThing
	Value Value          // valid when Kind == VarValue
}

// Empty reports whether this slot carries no binding.
func (v VariableValue) Empty() bool { return v.Kind == VarEmpty }

func (v VariableValue) String() string {
	switch v.Kind {
	case VarType:
		return v.Type.String()
	case VarThing:
		return v.Thing.String()
	case VarValue:
		return toString(v.Value)
	default:
		return "<empty>"
	}
}
