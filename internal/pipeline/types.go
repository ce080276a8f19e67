// Package pipeline implements the bounded, multi-stage OCR orchestrator
// (spec.md C7): per-image submission (ReadOne) and streaming (ReadMany)
// over a channel graph that composes detection and recognition with
// backpressure, in-order results, cooperative cancellation and per-job
// fault isolation.
package pipeline

import (
	"image"

	"github.com/MeKo-Tech/pogo/internal/detector"
	"github.com/MeKo-Tech/pogo/internal/recognizer"
)

// Result is one image's final outcome.
type Result struct {
	Boxes        []detector.BoundingBox
	Recognitions []recognizer.Recognition
	Err          error
}

// job threads one image through every stage, carrying its submission-order
// sequence number so the sink can restore that order regardless of which
// stage finishes first.
type job struct {
	seq   uint64
	image image.Image

	boxes []detector.BoundingBox
	recs  []recognizer.Recognition
	err   error
}
