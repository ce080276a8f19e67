package onnxengine

import (
	"context"
	"sync"
)

// maxPermitCapacity bounds the permit pool's channel buffer. It is sized
// far above any realistic controller target (spec.md C6's increments are
// unbounded but gradual) purely so IncrementParallelism never has to wait
// for a concurrent Run to return a permit first; since the channel holds
// struct{} values the buffer itself costs no memory regardless of size.
const maxPermitCapacity = 1 << 20

// permitPool is a growable counting semaphore gating concurrent Run calls
// across the real and null kernels. capacity is the logical permit count
// CurrentMaxCapacity reports; tokens is preallocated to maxPermitCapacity
// up front so growing capacity is a plain non-blocking send, matching the
// "IncrementParallelism is non-blocking" contract on Engine. A fixed-size
// buffer filled to capacity at construction (the earlier design) cannot
// grow without blocking on a concurrent release; preallocating headroom
// instead of growing on demand avoids that.
type permitPool struct {
	mu       sync.Mutex
	capacity int
	tokens   chan struct{}
}

// newPermitPool builds a pool starting at initial permits (minimum 1).
func newPermitPool(initial int) *permitPool {
	if initial < 1 {
		initial = 1
	}
	p := &permitPool{capacity: initial, tokens: make(chan struct{}, maxPermitCapacity)}
	for range initial {
		p.tokens <- struct{}{}
	}
	return p
}

// acquire blocks until a permit is available or ctx is done.
func (p *permitPool) acquire(ctx context.Context) error {
	select {
	case <-p.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release returns a permit to the pool.
func (p *permitPool) release() {
	p.tokens <- struct{}{}
}

// current returns the logical capacity.
func (p *permitPool) current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity
}

// increment raises capacity by one and hands out a matching permit. The
// token buffer has effectively unbounded headroom, so the send below never
// blocks in practice.
func (p *permitPool) increment() {
	p.mu.Lock()
	p.capacity++
	p.mu.Unlock()
	p.tokens <- struct{}{}
}

// decrement lowers capacity by one (never below 1) by withdrawing a permit
// from circulation; it blocks until an outstanding permit is returned, per
// Engine.DecrementParallelism's contract.
func (p *permitPool) decrement(ctx context.Context) error {
	p.mu.Lock()
	if p.capacity <= 1 {
		p.mu.Unlock()
		return nil
	}
	p.capacity--
	p.mu.Unlock()

	select {
	case <-p.tokens:
		return nil
	case <-ctx.Done():
		p.mu.Lock()
		p.capacity++
		p.mu.Unlock()
		return ctx.Err()
	}
}
