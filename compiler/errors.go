package compiler

import (
	"fmt"

	"github.com/wbrown/graphtype/executor"
)

// compileErrorf reports a malformed or unsupported constraint the same
// way the executor package's own compile-time errors do, so a caller
// switching on executor.Error's Class sees one consistent failure mode
// regardless of which package actually raised it.
func compileErrorf(format string, args ...interface{}) *executor.Error {
	return &executor.Error{Class: executor.ClassCompile, Message: fmt.Sprintf(format, args...)}
}
