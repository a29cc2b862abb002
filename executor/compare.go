package executor

import "github.com/wbrown/graphtype/concept"

// compareRowValue orders two VariableValue cells the same way regardless
// of which union arm is active, so a sort-merge iterator can compare its
// sort variable's values without a type switch at every call site. A
// single instruction's sort variable always carries one Kind throughout
// its run; Kind only breaks ties if that invariant is ever violated.
func compareRowValue(a, b concept.VariableValue) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case concept.VarType:
		return a.Type.Compare(b.Type)
	case concept.VarThing:
		return a.Thing.Compare(b.Thing)
	case concept.VarValue:
		return concept.Compare(a.Value, b.Value)
	default:
		return 0
	}
}
