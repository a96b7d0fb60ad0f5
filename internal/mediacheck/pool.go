package mediacheck

import (
	"context"
	"sync"
)

// pool is a bounded worker pool for outbound classification calls. Its
// size is independent of the HTTP server's concurrency, so a burst of
// media-check requests queues here instead of starving capacity needed
// for other request types.
type pool struct {
	tasks chan func()

	mu     sync.Mutex
	closed bool
}

// newPool starts the given number of workers. The task queue is buffered
// to the worker count; beyond that, submitters block until a slot frees
// or their context expires.
func newPool(workers int) *pool {
	p := &pool{
		tasks: make(chan func(), workers),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *pool) worker() {
	for fn := range p.tasks {
		fn()
	}
}

// submit enqueues fn for execution. It returns false if ctx expires
// before a queue slot becomes available.
func (p *pool) submit(ctx context.Context, fn func()) bool {
	select {
	case p.tasks <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// close stops accepting work and lets the workers drain.
func (p *pool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
}
