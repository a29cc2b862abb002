package typeinfer

import "fmt"

// Error reports a compile-time type inference failure: a query whose
// constraints admit no consistent assignment of schema types. It is
// always caused by the query's shape (or its interaction with the
// schema), never by data, so the same query fails the same way on every
// retry (the cooperative error taxonomy's compile-time class).
type Error struct {
	Scope   uint32
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("type inference (scope %d): %s", e.Scope, e.Message)
}

func unsatisfiableEdge(scope uint32, description string) *Error {
	return &Error{Scope: scope, Message: "no consistent types for " + description}
}

func unsatisfiablePattern(scope uint32) *Error {
	return &Error{Scope: scope, Message: "pattern admits no type assignment"}
}
