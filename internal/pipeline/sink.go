package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// maxPendingResults bounds how many finished-but-unclaimed results the
// sink will hold. A caller that submits far more work than it awaits
// would otherwise grow this map without limit; past the bound, emit
// reports a sink fault instead of accepting more unclaimed results.
const maxPendingResults = 4096

// sink collects finished jobs keyed by sequence number and wakes whichever
// caller is waiting on that sequence, restoring submission order for
// callers that await sequentially even though stages complete out of
// order.
type sink struct {
	mu      sync.Mutex
	results map[uint64]Result
	waiters map[uint64]chan struct{}
}

func newSink() *sink {
	return &sink{
		results: make(map[uint64]Result),
		waiters: make(map[uint64]chan struct{}),
	}
}

// emit records j's outcome. It never itself returns an error for a
// per-job failure (those are carried in Result.Err); a non-nil return is
// reserved for sink-internal faults that should trip the pipeline's
// fail-fast state.
func (s *sink) emit(j *job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, waited := s.waiters[j.seq]; !waited && len(s.results) >= maxPendingResults {
		return fmt.Errorf("sink: %d unclaimed results pending, refusing job %d", len(s.results), j.seq)
	}
	s.results[j.seq] = Result{Boxes: j.boxes, Recognitions: j.recs, Err: j.err}
	if w, ok := s.waiters[j.seq]; ok {
		close(w)
		delete(s.waiters, j.seq)
	}
	return nil
}

// faultAll wakes every pending waiter with a faulted result, used once the
// pipeline trips its fail-fast state so no caller blocks forever on a
// sequence number that will never complete.
func (s *sink) faultAll(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for seq, w := range s.waiters {
		s.results[seq] = Result{Err: err}
		close(w)
		delete(s.waiters, seq)
	}
}

// await blocks until seq's result is recorded or ctx is cancelled.
func (s *sink) await(ctx context.Context, seq uint64) (Result, error) {
	s.mu.Lock()
	if r, ok := s.results[seq]; ok {
		delete(s.results, seq)
		s.mu.Unlock()
		return r, nil
	}
	w, ok := s.waiters[seq]
	if !ok {
		w = make(chan struct{})
		s.waiters[seq] = w
	}
	s.mu.Unlock()

	select {
	case <-w:
		s.mu.Lock()
		r := s.results[seq]
		delete(s.results, seq)
		s.mu.Unlock()
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
