package pipeline

import (
	"context"
	"image"
)

// ReadOne submits a single image and blocks until its result is ready,
// the pipeline faults, or ctx is cancelled.
func (p *Pipeline) ReadOne(ctx context.Context, img image.Image) (Result, error) {
	seq, err := p.Submit(ctx, img)
	if err != nil {
		return Result{}, err
	}
	return p.Await(ctx, seq)
}

// ReadMany streams imgs through the pipeline and returns their results in
// submission order. It submits every image before awaiting any result, so
// throughput is bounded by the pipeline's own backpressure rather than by
// waiting on each image serially.
func (p *Pipeline) ReadMany(ctx context.Context, imgs []image.Image) ([]Result, error) {
	seqs := make([]uint64, len(imgs))
	for i, img := range imgs {
		seq, err := p.Submit(ctx, img)
		if err != nil {
			return nil, err
		}
		seqs[i] = seq
	}

	results := make([]Result, len(imgs))
	for i, seq := range seqs {
		r, err := p.Await(ctx, seq)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}
