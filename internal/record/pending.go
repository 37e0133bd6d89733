package record

import "sync"

// PendingState tracks the remote persistence outcome of an optimistic mutation
type PendingState int

const (
	// StatePending means the remote request is still in flight
	StatePending PendingState = iota
	// StateConfirmed means the remote store accepted the mutation
	StateConfirmed
	// StateFailed means the remote request failed and the optimistic
	// change was reverted
	StateFailed
)

// Pending is the handle for one optimistic mutation. The local change is
// already applied when the handle is returned; Done closes once the remote
// request settles.
type Pending struct {
	mu    sync.Mutex
	state PendingState
	err   error
	done  chan struct{}
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done returns a channel closed once the remote request has settled
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// State returns the current reconciliation state
func (p *Pending) State() PendingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the failure, if any. Only meaningful after Done closes.
func (p *Pending) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pending) confirm() {
	p.mu.Lock()
	p.state = StateConfirmed
	p.mu.Unlock()
	close(p.done)
}

func (p *Pending) fail(err error) {
	p.mu.Lock()
	p.state = StateFailed
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// settled creates an already-confirmed handle for no-op mutations
func settled() *Pending {
	p := newPending()
	p.confirm()
	return p
}
