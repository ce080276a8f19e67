package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/pogo/internal/detector"
	"github.com/MeKo-Tech/pogo/internal/recognizer"
)

// ErrFaulted is returned by Submit/ReadOne/ReadMany once the pipeline has
// hit a fatal sink-level error and stopped accepting new work.
var ErrFaulted = errors.New("pipeline: faulted")

// Pipeline owns the channel graph connecting detection and recognition.
// Stage worker counts are fixed at construction; actual inference
// concurrency is capped independently by each engine's own permit
// semaphore (onnxengine.Engine), so oversizing a stage's worker pool
// relative to engine.CurrentMaxCapacity only adds queueing, never
// over-admits inference calls.
type Pipeline struct {
	det *detector.Detector
	rec *recognizer.Recognizer

	detCapacity int
	recCapacity int

	qDetPre *boundedQueue[*job]
	qDetRun *boundedQueue[*job]
	qRecPre *boundedQueue[*job]
	qRecRun *boundedQueue[*job]

	sink *sink

	nextSeq atomic.Uint64

	faulted atomic.Bool
	wg      sync.WaitGroup

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Pipeline and starts its worker goroutines. detCapacity and
// recCapacity are the detector/recognizer engines' current max
// capacities. They size the bounded queues per spec §4.7,
// ceil((p_det + p_rec) * 1.5), and set the stage worker counts:
// detCapacity detection-inference workers, recCapacity
// recognition-inference workers, and their sum for each preprocessing stage.
func New(ctx context.Context, det *detector.Detector, rec *recognizer.Recognizer, detCapacity, recCapacity int) *Pipeline {
	queueCap := int(math.Ceil(float64(detCapacity+recCapacity) * 1.5))
	if queueCap < 1 {
		queueCap = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	p := &Pipeline{
		det:         det,
		rec:         rec,
		detCapacity: detCapacity,
		recCapacity: recCapacity,
		qDetPre:     newBoundedQueue[*job](queueCap),
		qDetRun:     newBoundedQueue[*job](queueCap),
		qRecPre:     newBoundedQueue[*job](queueCap),
		qRecRun:     newBoundedQueue[*job](queueCap),
		sink:        newSink(),
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	workers := detCapacity + recCapacity
	if workers < 1 {
		workers = 1
	}
	p.startStage(runCtx, workers, p.qDetPre, p.qDetRun, p.runDetPre)
	p.startStage(runCtx, detCapacity, p.qDetRun, p.qRecPre, p.runDetInferPost)
	p.startStage(runCtx, workers, p.qRecPre, p.qRecRun, p.runRecPre)
	p.startStage(runCtx, recCapacity, p.qRecRun, nil, p.runRecInferPostAndSink)

	go func() {
		<-runCtx.Done()
		p.wg.Wait()
		close(p.done)
	}()

	return p
}

// startStage launches n workers pulling from in and pushing to out (if
// non-nil), running fn on each job; fn records any error onto the job
// itself rather than stopping the stage, so one job's failure never blocks
// its siblings.
func (p *Pipeline) startStage(ctx context.Context, n int, in *boundedQueue[*job], out *boundedQueue[*job], fn func(context.Context, *job)) {
	if n < 1 {
		n = 1
	}
	for range n {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				j, ok := in.pop(ctx)
				if !ok {
					return
				}
				if j.err == nil {
					fn(ctx, j)
				}
				if out != nil {
					if !out.push(ctx, j) {
						return
					}
				}
			}
		}()
	}
}

// runDetPre is a passthrough stage: detector.Detect performs its own
// tiling and preprocessing internally, so this stage's worker pool exists
// only to absorb queueing between submission and detector inference,
// matching the spec's five named stages without duplicating detector
// internals here.
func (p *Pipeline) runDetPre(_ context.Context, _ *job) {}

func (p *Pipeline) runDetInferPost(ctx context.Context, j *job) {
	boxes, err := p.det.Detect(ctx, j.image)
	if err != nil {
		j.err = fmt.Errorf("pipeline: detect job %d: %w", j.seq, err)
		return
	}
	j.boxes = boxes
}

// runRecPre is a passthrough stage for the same reason as runDetPre:
// recognizer.Recognize performs oriented-crop batching internally, so
// this stage's worker pool only absorbs queueing ahead of recognizer
// inference.
func (p *Pipeline) runRecPre(_ context.Context, _ *job) {}

func (p *Pipeline) runRecInferPostAndSink(ctx context.Context, j *job) {
	if len(j.boxes) > 0 {
		recs, err := p.rec.Recognize(ctx, j.boxes, j.image)
		if err != nil {
			j.err = fmt.Errorf("pipeline: recognize job %d: %w", j.seq, err)
		} else {
			j.recs = recs
		}
	}

	if err := p.sink.emit(j); err != nil {
		p.faulted.Store(true)
		slog.Error("pipeline: sink faulted", "err", err)
		p.sink.faultAll(fmt.Errorf("%w: %v", ErrFaulted, err))
		p.cancel()
	}
}

// Submit enqueues img and returns its assigned sequence number; blocks if
// the first queue is full (backpressure), per spec §4.7.
func (p *Pipeline) Submit(ctx context.Context, img image.Image) (uint64, error) {
	if p.faulted.Load() {
		return 0, ErrFaulted
	}
	seq := p.nextSeq.Add(1) - 1
	j := &job{seq: seq, image: img}
	if !p.qDetPre.push(ctx, j) {
		return 0, ctx.Err()
	}
	return seq, nil
}

// Await blocks until seq's result is available, cancellation fires, or the
// pipeline faults.
func (p *Pipeline) Await(ctx context.Context, seq uint64) (Result, error) {
	return p.sink.await(ctx, seq)
}

// Close signals cancellation to every stage and waits for their worker
// goroutines to exit, or for ctx to fire first. In-flight jobs are
// abandoned rather than drained; callers that need every submitted image
// answered should await all outstanding sequence numbers before closing.
func (p *Pipeline) Close(ctx context.Context) error {
	p.faulted.Store(true)
	p.cancel()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
