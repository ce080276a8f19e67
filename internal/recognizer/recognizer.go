package recognizer

import (
	"context"
	"fmt"
	"image"

	"github.com/MeKo-Tech/pogo/internal/detector"
	"github.com/MeKo-Tech/pogo/internal/mempool"
	"github.com/MeKo-Tech/pogo/internal/onnxengine"
)

// Recognizer composes oriented-crop preprocessing, inference and CTC
// decoding over an onnxengine.Engine.
type Recognizer struct {
	engine       onnxengine.Engine
	dict         *Dictionary
	opts         PreprocessOptions
	classesFirst bool
}

// New builds a Recognizer. classesFirst selects the model's logits layout:
// true for (N, V, T), false for (N, T, V).
func New(engine onnxengine.Engine, dict *Dictionary, opts PreprocessOptions, classesFirst bool) *Recognizer {
	return &Recognizer{engine: engine, dict: dict, opts: opts, classesFirst: classesFirst}
}

// Recognize crops, batches and decodes every box against img, returning one
// Recognition per box in the same order.
func (r *Recognizer) Recognize(ctx context.Context, boxes []detector.BoundingBox, img image.Image) ([]Recognition, error) {
	if len(boxes) == 0 {
		return nil, nil
	}

	input, _, err := Preprocess(boxes, img, r.opts)
	if err != nil {
		return nil, fmt.Errorf("recognizer: preprocess: %w", err)
	}
	defer mempool.PutFloat32(input.Data)

	output, err := r.engine.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("recognizer: inference: %w", err)
	}

	return DecodeGreedy(output.Data, output.Shape, r.dict, r.classesFirst), nil
}
