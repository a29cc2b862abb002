package executor

import "context"

// Interrupt is the cooperative cancellation token every stage checks at
// batch boundaries, not between every row — interruption is prompt, not
// instant: a query stops within one batch, never mid-row.
type Interrupt struct {
	ctx context.Context
}

// NewInterrupt wraps a context as an execution interrupt token.
func NewInterrupt(ctx context.Context) *Interrupt {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Interrupt{ctx: ctx}
}

// Check reports a cooperative error if the interrupt has fired, nil
// otherwise. Call this once per batch, never once per row.
func (i *Interrupt) Check() error {
	if i == nil {
		return nil
	}
	select {
	case <-i.ctx.Done():
		return interruptedError()
	default:
		return nil
	}
}
