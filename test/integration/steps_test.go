package integration_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pogo/internal/detector"
	"github.com/MeKo-Tech/pogo/internal/geometry"
	"github.com/MeKo-Tech/pogo/internal/onnxengine"
	"github.com/MeKo-Tech/pogo/internal/pipeline"
	"github.com/MeKo-Tech/pogo/internal/recognizer"
)

// world carries state across the steps of one scenario. InitializeScenario
// resets it before every scenario runs.
type world struct {
	image image.Image

	pl     *pipeline.Pipeline
	result pipeline.Result
	resErr error

	boxes         []detector.BoundingBox
	expectedWords []geometry.AxisAlignedRectangle

	gate        chan struct{}
	submitDone  []chan struct{}
	submitSeqs  []uint64
	submitErrs  []error
	submitImage image.Image
}

func InitializeScenario(sc *godog.ScenarioContext) {
	w := &world{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*w = world{}
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if w.pl != nil {
			_ = w.pl.Close(context.Background())
		}
		return ctx, nil
	})

	sc.Step(`^a (\d+)x(\d+) white image with the word "([^"]+)" rendered near \((\d+), (\d+)\)$`, w.givenSingleWordImage)
	sc.Step(`^a (\d+)x(\d+) white image with the word "([^"]+)" rendered at \+45 degrees in a (\d+)x(\d+) region$`, w.givenRotatedWordImage)
	sc.Step(`^a (\d+)x(\d+) image with (\d+) words laid out on a grid$`, w.givenGridWordsImage)
	sc.Step(`^a pipeline whose detector is a null engine expecting a (\d+)x(\d+) input$`, w.givenNullEngineDetector)
	sc.Step(`^a pipeline with detector capacity (\d+) and recognizer capacity (\d+) fed by a blocking detector$`, w.givenBlockingPipeline)

	sc.Step(`^the image is read through the pipeline$`, w.whenReadThroughPipeline)
	sc.Step(`^the image is detected through the pipeline$`, w.whenDetectedThroughPipeline)
	sc.Step(`^a (\d+)x(\d+) image is read through the pipeline$`, w.whenSizedImageReadThroughPipeline)
	sc.Step(`^(\d+) images are submitted without releasing the blocker$`, w.whenImagesSubmittedWithoutReleasing)
	sc.Step(`^the blocker is released$`, w.whenBlockerReleased)

	sc.Step(`^the result has exactly (\d+) recognized words?$`, w.thenResultHasNRecognizedWords)
	sc.Step(`^the recognized text is "([^"]+)"$`, w.thenRecognizedTextIs)
	sc.Step(`^the recognition confidence is at least ([0-9.]+)$`, w.thenConfidenceAtLeast)
	sc.Step(`^the rotated angle is approximately ([0-9.]+) radians$`, w.thenRotatedAngleApprox)
	sc.Step(`^the rotated angle is within ([0-9.]+) radians of pi/4$`, w.thenRotatedAngleNearQuarterPi)
	sc.Step(`^exactly (\d+) bounding boxes are found$`, w.thenExactlyNBoundingBoxes)
	sc.Step(`^every expected word region has an IoU of at least ([0-9.]+) with a unique detected box$`, w.thenEveryExpectedRegionMatches)
	sc.Step(`^the call returns with no error$`, w.thenNoError)
	sc.Step(`^at least (\d+) submission is still suspended$`, w.thenAtLeastNSubmissionsSuspended)
	sc.Step(`^all (\d+) submissions complete with results in submission order$`, w.thenAllSubmissionsCompleteInOrder)
}

func whiteImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// dictionaryForWord builds the minimal recognizer dictionary and CTC class
// index sequence that greedily decodes to word, inserting a blank between
// repeated consecutive letters so they survive collapse.
func dictionaryForWord(word string) (*recognizer.Dictionary, []int) {
	letterIdx := make(map[rune]int)
	var lines []string
	for _, r := range word {
		if _, ok := letterIdx[r]; !ok {
			lines = append(lines, string(r))
			letterIdx[r] = len(lines)
		}
	}
	dict := &recognizer.Dictionary{Lines: lines}

	var indices []int
	prev := -1
	for _, r := range word {
		idx := letterIdx[r]
		if idx == prev {
			indices = append(indices, recognizer.BlankIndex)
		}
		indices = append(indices, idx)
		prev = idx
	}
	return dict, indices
}

// rectDetEngine reports a single solid axis-aligned rectangle at (rx, ry,
// rw, rh) in model-pixel space, sized to whatever the detector requests.
type rectDetEngine struct {
	rx, ry, rw, rh int
}

func (e rectDetEngine) Run(_ context.Context, input onnxengine.Tensor) (onnxengine.Tensor, error) {
	n := input.Shape[0]
	h := int(input.Shape[2])
	w := int(input.Shape[3])
	tile := make([]float32, w*h)
	for y := range h {
		for x := range w {
			if x >= e.rx && x < e.rx+e.rw && y >= e.ry && y < e.ry+e.rh {
				tile[y*w+x] = 0.95
			}
		}
	}
	data := make([]float32, 0, int(n)*len(tile))
	for range n {
		data = append(data, tile...)
	}
	return onnxengine.Tensor{Data: data, Shape: []int64{n, 1, int64(h), int64(w)}}, nil
}
func (rectDetEngine) CurrentMaxCapacity() int                        { return 2 }
func (rectDetEngine) IncrementParallelism()                          {}
func (rectDetEngine) DecrementParallelism(_ context.Context) error   { return nil }
func (rectDetEngine) Dispose() error                                 { return nil }

// rotatedRectDetEngine reports a single solid rectangle centered at (cx,
// cy), rw x rh, rotated by angle radians, in model-pixel space.
type rotatedRectDetEngine struct {
	cx, cy, rw, rh, angle float64
}

func (e rotatedRectDetEngine) Run(_ context.Context, input onnxengine.Tensor) (onnxengine.Tensor, error) {
	n := input.Shape[0]
	h := int(input.Shape[2])
	w := int(input.Shape[3])
	cos, sin := math.Cos(e.angle), math.Sin(e.angle)
	tile := make([]float32, w*h)
	for y := range h {
		for x := range w {
			dx := float64(x) - e.cx
			dy := float64(y) - e.cy
			rx := dx*cos + dy*sin
			ry := -dx*sin + dy*cos
			if math.Abs(rx) <= e.rw/2 && math.Abs(ry) <= e.rh/2 {
				tile[y*w+x] = 0.95
			}
		}
	}
	data := make([]float32, 0, int(n)*len(tile))
	for range n {
		data = append(data, tile...)
	}
	return onnxengine.Tensor{Data: data, Shape: []int64{n, 1, int64(h), int64(w)}}, nil
}
func (rotatedRectDetEngine) CurrentMaxCapacity() int                      { return 2 }
func (rotatedRectDetEngine) IncrementParallelism()                        {}
func (rotatedRectDetEngine) DecrementParallelism(_ context.Context) error { return nil }
func (rotatedRectDetEngine) Dispose() error                               { return nil }

// gridCell is one expected word region, given as a fraction of the source
// image's dimensions so it survives the detector's model-space resampling
// regardless of exact tile padding.
type gridCell struct {
	fx, fy, fw, fh float64
}

// gridWordsDetEngine places one solid rectangle per cell, computing the
// same non-padded model-space fit the detector's own postprocessing uses
// (internal/detector/postprocess.go's computeFitSize) so a cell's fraction
// of the source image lands at the same fraction within the model canvas.
type gridWordsDetEngine struct {
	srcW, srcH int
	cells      []gridCell
}

func fitWithin(srcW, srcH, dstW, dstH int) (int, int) {
	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	fitW := int(math.Round(float64(srcW) * scale))
	fitH := int(math.Round(float64(srcH) * scale))
	if fitW < 1 {
		fitW = 1
	}
	if fitH < 1 {
		fitH = 1
	}
	return fitW, fitH
}

func (e gridWordsDetEngine) Run(_ context.Context, input onnxengine.Tensor) (onnxengine.Tensor, error) {
	n := input.Shape[0]
	h := int(input.Shape[2])
	w := int(input.Shape[3])
	fitW, fitH := fitWithin(e.srcW, e.srcH, w, h)

	tile := make([]float32, w*h)
	for _, c := range e.cells {
		cx, cy := c.fx*float64(fitW), c.fy*float64(fitH)
		rw, rh := c.fw*float64(fitW), c.fh*float64(fitH)
		x0, y0 := int(cx-rw/2), int(cy-rh/2)
		x1, y1 := int(cx+rw/2), int(cy+rh/2)
		for y := max(0, y0); y < min(h, y1); y++ {
			for x := max(0, x0); x < min(w, x1); x++ {
				tile[y*w+x] = 0.95
			}
		}
	}
	data := make([]float32, 0, int(n)*len(tile))
	for range n {
		data = append(data, tile...)
	}
	return onnxengine.Tensor{Data: data, Shape: []int64{n, 1, int64(h), int64(w)}}, nil
}
func (gridWordsDetEngine) CurrentMaxCapacity() int                        { return 1 }
func (gridWordsDetEngine) IncrementParallelism()                          {}
func (gridWordsDetEngine) DecrementParallelism(_ context.Context) error { return nil }
func (gridWordsDetEngine) Dispose() error                              { return nil }

// fixedWordRecEngine greedily decodes to the same word for every box in a
// batch, regardless of batch size.
type fixedWordRecEngine struct {
	dict    *recognizer.Dictionary
	indices []int
}

func (e fixedWordRecEngine) Run(_ context.Context, input onnxengine.Tensor) (onnxengine.Tensor, error) {
	n := int(input.Shape[0])
	classes := e.dict.Size()
	single := make([]float32, 0, len(e.indices)*classes)
	for _, idx := range e.indices {
		for c := range classes {
			if c == idx {
				single = append(single, 10)
			} else {
				single = append(single, 0)
			}
		}
	}
	data := make([]float32, 0, n*len(single))
	for range n {
		data = append(data, single...)
	}
	return onnxengine.Tensor{Data: data, Shape: []int64{int64(n), int64(len(e.indices)), int64(classes)}}, nil
}
func (fixedWordRecEngine) CurrentMaxCapacity() int                        { return 2 }
func (fixedWordRecEngine) IncrementParallelism()                          {}
func (fixedWordRecEngine) DecrementParallelism(_ context.Context) error { return nil }
func (fixedWordRecEngine) Dispose() error                              { return nil }

// blockingDetEngine waits on gate before answering with an empty
// probability map, simulating a detector stage slow enough to back up the
// pipeline's bounded queues.
type blockingDetEngine struct {
	gate chan struct{}
}

func (e *blockingDetEngine) Run(ctx context.Context, input onnxengine.Tensor) (onnxengine.Tensor, error) {
	select {
	case <-e.gate:
	case <-ctx.Done():
		return onnxengine.Tensor{}, ctx.Err()
	}
	h := int(input.Shape[2])
	w := int(input.Shape[3])
	return onnxengine.Tensor{Data: make([]float32, w*h), Shape: []int64{input.Shape[0], 1, int64(h), int64(w)}}, nil
}
func (*blockingDetEngine) CurrentMaxCapacity() int                        { return 2 }
func (*blockingDetEngine) IncrementParallelism()                          {}
func (*blockingDetEngine) DecrementParallelism(_ context.Context) error { return nil }
func (*blockingDetEngine) Dispose() error                              { return nil }

func newTrivialRecognizer() *recognizer.Recognizer {
	dict := &recognizer.Dictionary{Lines: []string{"a"}}
	return recognizer.New(fixedWordRecEngine{dict: dict, indices: []int{1}}, dict, recognizer.DefaultPreprocessOptions(), false)
}

// --- Given ---

func (w *world) givenSingleWordImage(width, height int, word string, x, y int) error {
	w.image = whiteImage(width, height)
	dict, indices := dictionaryForWord(word)
	det := detector.New(rectDetEngine{rx: x, ry: y, rw: 150, rh: 40}, detector.DefaultOptions())
	rec := recognizer.New(fixedWordRecEngine{dict: dict, indices: indices}, dict, recognizer.DefaultPreprocessOptions(), false)
	w.pl = pipeline.New(context.Background(), det, rec, 2, 2)
	return nil
}

func (w *world) givenRotatedWordImage(width, height int, word string, regionW, regionH int) error {
	w.image = whiteImage(width, height)
	dict, indices := dictionaryForWord(word)
	det := detector.New(rotatedRectDetEngine{
		cx: float64(width) / 2, cy: float64(height) / 2,
		rw: float64(regionW), rh: float64(regionH), angle: math.Pi / 4,
	}, detector.DefaultOptions())
	rec := recognizer.New(fixedWordRecEngine{dict: dict, indices: indices}, dict, recognizer.DefaultPreprocessOptions(), false)
	w.pl = pipeline.New(context.Background(), det, rec, 2, 2)
	return nil
}

func (w *world) givenGridWordsImage(width, height, count int) error {
	w.image = whiteImage(width, height)

	side := int(math.Ceil(math.Sqrt(float64(count))))
	var cells []gridCell
	var expected []geometry.AxisAlignedRectangle
	const fw, fh = 0.10, 0.05
	for i := 0; i < count; i++ {
		row, col := i/side, i%side
		fx := (float64(col) + 1) / float64(side+1)
		fy := (float64(row) + 1) / float64(side+1)
		cells = append(cells, gridCell{fx: fx, fy: fy, fw: fw, fh: fh})
		expected = append(expected, geometry.AxisAlignedRectangle{
			X: fx*float64(width) - fw*float64(width)/2,
			Y: fy*float64(height) - fh*float64(height)/2,
			Width: fw * float64(width), Height: fh * float64(height),
		})
	}
	w.expectedWords = expected

	eng := gridWordsDetEngine{srcW: width, srcH: height, cells: cells}
	boxes, err := detector.New(eng, detector.DefaultOptions()).Detect(context.Background(), w.image)
	w.boxes = boxes
	return err
}

func (w *world) givenNullEngineDetector(width, height int) error {
	kernel := onnxengine.NewNullKernel([]int64{-1, 3, int64(height), int64(width)}, []int64{-1, 1, int64(height), int64(width)}, 2)
	det := detector.New(kernel, detector.DefaultOptions())
	w.pl = pipeline.New(context.Background(), det, newTrivialRecognizer(), 2, 2)
	return nil
}

func (w *world) givenBlockingPipeline(detCap, recCap int) error {
	w.gate = make(chan struct{})
	det := detector.New(&blockingDetEngine{gate: w.gate}, detector.DefaultOptions())
	w.pl = pipeline.New(context.Background(), det, newTrivialRecognizer(), detCap, recCap)
	return nil
}

// --- When ---

func (w *world) whenReadThroughPipeline() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := w.pl.ReadOne(ctx, w.image)
	w.result = result
	w.resErr = err
	return nil
}

func (w *world) whenDetectedThroughPipeline() error {
	// The detector already ran in the Given step (multi-word scenario
	// bypasses recognition since it only asserts on box geometry).
	return nil
}

func (w *world) whenSizedImageReadThroughPipeline(width, height int) error {
	w.image = whiteImage(width, height)
	return w.whenReadThroughPipeline()
}

func (w *world) whenImagesSubmittedWithoutReleasing(n int) error {
	w.submitImage = whiteImage(64, 64)
	w.submitDone = make([]chan struct{}, n)
	w.submitSeqs = make([]uint64, n)
	w.submitErrs = make([]error, n)

	for i := range n {
		done := make(chan struct{})
		w.submitDone[i] = done
		go func(i int) {
			defer close(done)
			seq, err := w.pl.Submit(context.Background(), w.submitImage)
			w.submitSeqs[i] = seq
			w.submitErrs[i] = err
		}(i)
	}
	// Give the fast path time to drain whatever doesn't need to block.
	time.Sleep(300 * time.Millisecond)
	return nil
}

func (w *world) whenBlockerReleased() error {
	close(w.gate)
	return nil
}

// --- Then ---

func (w *world) thenResultHasNRecognizedWords(n int) error {
	if len(w.result.Recognitions) != n {
		return fmt.Errorf("expected %d recognitions, got %d", n, len(w.result.Recognitions))
	}
	return nil
}

func (w *world) thenRecognizedTextIs(text string) error {
	if len(w.result.Recognitions) == 0 {
		return errors.New("no recognitions to check")
	}
	if w.result.Recognitions[0].Text != text {
		return fmt.Errorf("expected text %q, got %q", text, w.result.Recognitions[0].Text)
	}
	return nil
}

func (w *world) thenConfidenceAtLeast(min float64) error {
	if len(w.result.Recognitions) == 0 {
		return errors.New("no recognitions to check")
	}
	if w.result.Recognitions[0].Confidence < min {
		return fmt.Errorf("expected confidence >= %v, got %v", min, w.result.Recognitions[0].Confidence)
	}
	return nil
}

func (w *world) thenRotatedAngleApprox(want float64) error {
	if len(w.result.Boxes) == 0 {
		return errors.New("no boxes to check")
	}
	got := w.result.Boxes[0].Rotated.Angle
	if math.Abs(got-want) > 0.05 {
		return fmt.Errorf("expected angle ~%v, got %v", want, got)
	}
	return nil
}

func (w *world) thenRotatedAngleNearQuarterPi(tolerance float64) error {
	if len(w.result.Boxes) == 0 {
		return errors.New("no boxes to check")
	}
	got := math.Abs(w.result.Boxes[0].Rotated.Angle)
	if math.Abs(got-math.Pi/4) > tolerance {
		return fmt.Errorf("expected |angle| within %v of pi/4, got %v", tolerance, got)
	}
	return nil
}

func (w *world) thenExactlyNBoundingBoxes(n int) error {
	if len(w.boxes) != n {
		return fmt.Errorf("expected %d bounding boxes, got %d", n, len(w.boxes))
	}
	return nil
}

func (w *world) thenEveryExpectedRegionMatches(minIoU float64) error {
	used := make([]bool, len(w.boxes))
	for _, expected := range w.expectedWords {
		matched := false
		for i, box := range w.boxes {
			if used[i] {
				continue
			}
			if geometry.IoUBoxes(expected, box.AxisAligned) >= minIoU {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("no detected box matches expected region %+v with IoU >= %v", expected, minIoU)
		}
	}
	return nil
}

func (w *world) thenNoError() error {
	if w.resErr != nil {
		return w.resErr
	}
	return w.result.Err
}

func (w *world) thenAtLeastNSubmissionsSuspended(n int) error {
	suspended := 0
	for _, done := range w.submitDone {
		select {
		case <-done:
		default:
			suspended++
		}
	}
	if suspended < n {
		return fmt.Errorf("expected at least %d suspended submissions, got %d", n, suspended)
	}
	return nil
}

func (w *world) thenAllSubmissionsCompleteInOrder(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i, done := range w.submitDone {
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("submission %d did not complete after releasing the blocker", i)
		}
		if w.submitErrs[i] != nil {
			return fmt.Errorf("submission %d failed: %w", i, w.submitErrs[i])
		}
		if int(w.submitSeqs[i]) != i {
			return fmt.Errorf("submission %d got out-of-order sequence %d", i, w.submitSeqs[i])
		}
		if _, err := w.pl.Await(ctx, w.submitSeqs[i]); err != nil {
			return fmt.Errorf("await submission %d: %w", i, err)
		}
	}
	if len(w.submitDone) != n {
		return fmt.Errorf("expected %d submissions, tracked %d", n, len(w.submitDone))
	}
	return nil
}
