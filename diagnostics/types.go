// Package diagnostics provides a low-overhead annotation system for
// observing compilation and execution of a query: type-inference
// iterations, planner cost decisions, and executor join/write activity.
package diagnostics

import (
	"sync"
	"time"
)

// Event name constants, grouped by the stage of the pipeline that emits
// them.
const (
	QueryInvoked   = "query/invoked"
	QueryCompiled  = "query/compiled"
	QueryCompleted = "query/completed"

	TypeInferSeeded    = "typeinfer/seeded"
	TypeInferIteration = "typeinfer/iteration"
	TypeInferConverged = "typeinfer/converged"
	TypeInferPruned    = "typeinfer/pruned"

	PlanStepChosen  = "plan/step.chosen"
	PlanCostScored  = "plan/cost.scored"
	PlanCreated     = "plan/created"

	PhaseBegin    = "phase/begin"
	PhaseComplete = "phase/complete"

	IntersectionAdvance  = "intersection/advance"
	IntersectionCartesian = "intersection/cartesian"
	DisjunctionBranch    = "disjunction/branch"

	WriteInsert = "write/insert"
	WriteDelete = "write/delete"

	ErrorCompile = "error/compile"
	ErrorRead    = "error/read"
	ErrorWrite   = "error/write"
)

// Event is one recorded occurrence during compilation or execution.
type Event struct {
	Name    string
	Start   time.Time
	End     time.Time
	Latency time.Duration
	Data    map[string]interface{}
}

// Handler processes events as they occur.
type Handler func(event Event)

// Collector accumulates events for later rendering or inspection. A nil
// handler disables collection entirely so instrumented code pays only the
// cost of a map lookup and a boolean check.
type Collector struct {
	enabled bool
	handler Handler
	events  []Event
	mu      sync.Mutex
}

// NewCollector builds a Collector that forwards every Add to handler, or
// one that does nothing if handler is nil.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		events:  make([]Event, 0, 64),
	}
}

// Add records event and forwards it to the handler, outside the lock so a
// slow handler never blocks another goroutine's Add. A nil Collector is a
// valid no-op receiver, so callers deep in the call stack don't need to
// thread a disabled-but-non-nil Collector just to satisfy this method.
func (c *Collector) Add(event Event) {
	if c == nil || !c.enabled {
		return
	}
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	if c.handler != nil {
		c.handler(event)
	}
}

// Timed records an event whose Start is now and whose End/Latency are
// computed when fn returns.
func (c *Collector) Timed(name string, data map[string]interface{}, fn func() error) error {
	if c == nil || !c.enabled {
		return fn()
	}
	start := time.Now()
	err := fn()
	end := time.Now()
	c.Add(Event{Name: name, Start: start, End: end, Latency: end.Sub(start), Data: data})
	return err
}

// Events returns a copy of every event recorded so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Reset clears recorded events without disabling the collector.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
