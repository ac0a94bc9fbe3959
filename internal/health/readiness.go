// Package health holds the process-wide readiness state consulted by the
// readiness probe.
//
// Lifecycle: a [Readiness] starts pending (not ready), becomes ready once the
// request pipeline has been fully assembled, and is shut down explicitly to
// drain traffic before termination. Shut down is terminal.
package health

import "sync/atomic"

const (
	statePending int32 = iota
	stateReady
	stateShutdown
)

// Readiness is safe for concurrent use. The zero value is pending.
type Readiness struct {
	state atomic.Int32
}

// MarkReady moves a pending Readiness to ready. It reports whether the
// transition happened; it never revives a shut down Readiness.
func (r *Readiness) MarkReady() bool {
	return r.state.CompareAndSwap(statePending, stateReady)
}

// Shutdown makes r permanently not ready. It is idempotent.
func (r *Readiness) Shutdown() {
	r.state.Store(stateShutdown)
}

// Ready reports whether r is ready to accept traffic.
func (r *Readiness) Ready() bool {
	return r.state.Load() == stateReady
}
