// Package ocrapp wires configuration into a running OCR pipeline: it
// resolves model paths, brings up the detector and recognizer inference
// engines (spec.md C5) behind their adaptive parallelism controllers
// (C6), and starts the orchestrator (C7) over them. cmd/ocr and
// internal/server both build an App instead of duplicating this wiring.
package ocrapp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/MeKo-Tech/pogo/internal/adaptive"
	"github.com/MeKo-Tech/pogo/internal/config"
	"github.com/MeKo-Tech/pogo/internal/detector"
	"github.com/MeKo-Tech/pogo/internal/metrics"
	"github.com/MeKo-Tech/pogo/internal/models"
	"github.com/MeKo-Tech/pogo/internal/onnxengine"
	"github.com/MeKo-Tech/pogo/internal/pipeline"
	"github.com/MeKo-Tech/pogo/internal/recognizer"
)

// processMetricsInterval is how often Build's background reporter samples
// process memory/CPU for speedreader's process.* metrics (spec.md §6).
const processMetricsInterval = 10 * time.Second

// defaultOscillationThreshold matches the reference controller's default
// (adaptive.NewController falls back to this when given <= 0 anyway; named
// here so App's wiring reads as a deliberate choice, not a magic 0).
const defaultOscillationThreshold = 3

// App owns one detector engine, one recognizer engine, their adaptive
// controllers, and the pipeline connecting them.
type App struct {
	Pipeline   *pipeline.Pipeline
	Dictionary *recognizer.Dictionary

	detEngine *onnxengine.RealKernel
	recEngine *onnxengine.RealKernel
	detCtrl   *adaptive.Controller
	recCtrl   *adaptive.Controller

	cancel context.CancelFunc
}

// ortEnvReady records that onnxruntime's process-wide environment has been
// initialized: the runtime only allows one InitializeEnvironment call per process, but
// tests and repeated Build calls in the same binary are common.
var ortEnvReady bool

func ensureEnvironment(useGPU bool) error {
	if ortEnvReady {
		return nil
	}
	if err := onnxengine.SetLibraryPath(useGPU); err != nil {
		return fmt.Errorf("ocrapp: locate onnxruntime library: %w", err)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("ocrapp: initialize onnxruntime: %w", err)
	}
	ortEnvReady = true
	return nil
}

// Build resolves cfg into concrete model paths, constructs both inference
// engines, starts their adaptive controllers, and returns a running App.
// Callers must Close the App when done.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := ensureEnvironment(cfg.GPU.Enabled); err != nil {
		return nil, err
	}

	modelsDir := models.GetModelsDir(cfg.ModelsDir)

	detPath := cfg.Pipeline.Detector.ModelPath
	if detPath == "" {
		detPath = models.GetDetectionModelPath(modelsDir, false)
	}
	recPath := cfg.Pipeline.Recognizer.ModelPath
	if recPath == "" {
		recPath = models.GetRecognitionModelPath(modelsDir, false)
	}

	dict, err := loadDictionary(cfg, modelsDir)
	if err != nil {
		return nil, err
	}

	gpuConf, err := gpuConfig(cfg)
	if err != nil {
		return nil, err
	}

	detEngine, err := onnxengine.NewRealKernel(onnxengine.SessionOptions{
		ModelPath:      detPath,
		InputName:      "x",
		OutputName:     "sigmoid_0.tmp_0",
		IntraOpThreads: cfg.Pipeline.Detector.NumThreads,
		GPU:            gpuConf,
	})
	if err != nil {
		return nil, fmt.Errorf("ocrapp: build detector engine: %w", err)
	}

	recEngine, err := onnxengine.NewRealKernel(onnxengine.SessionOptions{
		ModelPath:      recPath,
		InputName:      "x",
		OutputName:     "softmax_0.tmp_0",
		IntraOpThreads: cfg.Pipeline.Recognizer.NumThreads,
		GPU:            gpuConf,
	})
	if err != nil {
		_ = detEngine.Dispose()
		return nil, fmt.Errorf("ocrapp: build recognizer engine: %w", err)
	}

	sink := metrics.NewPrometheusSink(nil)

	detOpts := detector.DefaultOptions()
	if cfg.Pipeline.Detector.DbThresh > 0 {
		detOpts.BinarizeThreshold = cfg.Pipeline.Detector.DbThresh
	}
	detSensor := adaptive.NewSensor()
	detSensed := onnxengine.NewSensedKernel(detEngine, detSensor).
		WithMetrics(sink, map[string]string{"stage": "detector"})
	det := detector.New(detSensed, detOpts)

	recOpts := recognizer.DefaultPreprocessOptions()
	if cfg.Pipeline.Recognizer.ImageHeight > 0 {
		recOpts.Height = cfg.Pipeline.Recognizer.ImageHeight
	}
	recSensor := adaptive.NewSensor()
	recSensed := onnxengine.NewSensedKernel(recEngine, recSensor).
		WithMetrics(sink, map[string]string{"stage": "recognizer"})
	rec := recognizer.New(recSensed, dict, recOpts, false)

	runCtx, cancel := context.WithCancel(ctx)

	detCtrl := adaptive.NewController(detEngine, detSensor, defaultOscillationThreshold).
		WithMetrics(sink, map[string]string{"stage": "detector"})
	recCtrl := adaptive.NewController(recEngine, recSensor, defaultOscillationThreshold).
		WithMetrics(sink, map[string]string{"stage": "recognizer"})
	go detCtrl.Run(runCtx)
	go recCtrl.Run(runCtx)
	go metrics.ReportProcess(runCtx, sink, processMetricsInterval)

	pl := pipeline.New(runCtx, det, rec, detEngine.CurrentMaxCapacity(), recEngine.CurrentMaxCapacity())

	return &App{
		Pipeline:   pl,
		Dictionary: dict,
		detEngine:  detEngine,
		recEngine:  recEngine,
		detCtrl:    detCtrl,
		recCtrl:    recCtrl,
		cancel:     cancel,
	}, nil
}

// gpuConfig translates the CLI/config-level GPU settings into the
// onnxengine.GPUConfig the real kernel's session construction expects,
// resolving "auto" to the recommended limit onnxengine computes.
func gpuConfig(cfg *config.Config) (onnxengine.GPUConfig, error) {
	g := onnxengine.DefaultGPUConfig()
	if !cfg.GPU.Enabled {
		return g, nil
	}
	g.UseGPU = true
	g.DeviceID = cfg.GPU.Device

	switch limit := strings.TrimSpace(cfg.GPU.MemoryLimit); {
	case limit == "":
	case limit == "auto":
		g.GPUMemLimit = onnxengine.GetRecommendedGPUMemLimit()
	default:
		bytes, err := parseMemorySize(limit)
		if err != nil {
			return onnxengine.GPUConfig{}, fmt.Errorf("ocrapp: invalid gpu memory limit %q: %w", limit, err)
		}
		g.GPUMemLimit = bytes
	}
	return g, nil
}

// parseMemorySize parses strings like "2GB", "512MB", "1024" into bytes.
func parseMemorySize(s string) (uint64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	var multiplier uint64 = 1
	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier, s = 1024, s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier, s = 1024*1024, s[:len(s)-2]
	case strings.HasSuffix(s, "GB"):
		multiplier, s = 1024*1024*1024, s[:len(s)-2]
	case strings.HasSuffix(s, "K"):
		multiplier, s = 1024, s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		multiplier, s = 1024*1024, s[:len(s)-1]
	case strings.HasSuffix(s, "G"):
		multiplier, s = 1024*1024*1024, s[:len(s)-1]
	}
	value, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size: %s", s)
	}
	return value * multiplier, nil
}

func loadDictionary(cfg *config.Config, modelsDir string) (*recognizer.Dictionary, error) {
	dictPath := cfg.Pipeline.Recognizer.DictPath
	if dictPath == "" && cfg.Pipeline.Recognizer.DictLangs != "" {
		langs := strings.Split(cfg.Pipeline.Recognizer.DictLangs, ",")
		if paths := models.GetDictionaryPathsForLanguages(modelsDir, langs); len(paths) > 0 {
			dictPath = paths[0]
		}
	}
	if dictPath == "" {
		dictPath = models.GetDictionaryPath(modelsDir, models.DictionaryPPOCRKeysV1)
	}
	dict, err := recognizer.LoadDictionary(dictPath)
	if err != nil {
		return nil, fmt.Errorf("ocrapp: load dictionary %s: %w", dictPath, err)
	}
	return dict, nil
}

// StageTuning summarizes one adaptive controller's current state, for the
// "bench" CLI report.
type StageTuning struct {
	Stage         string
	MaxCapacity   int
	IsOscillating bool
}

// TuningReport snapshots both controllers' adaptive-parallelism state
// (spec.md §4.6), letting cmd/ocr's bench subcommand print a tuning
// report without reaching into ocrapp internals.
func (a *App) TuningReport() []StageTuning {
	return []StageTuning{
		{Stage: "detector", MaxCapacity: a.detEngine.CurrentMaxCapacity(), IsOscillating: a.detCtrl.IsOscillating()},
		{Stage: "recognizer", MaxCapacity: a.recEngine.CurrentMaxCapacity(), IsOscillating: a.recCtrl.IsOscillating()},
	}
}

// Close stops the adaptive controllers and releases both engines. The
// Pipeline itself is cancelled via the context passed to Build.
func (a *App) Close() error {
	a.cancel()
	detErr := a.detEngine.Dispose()
	recErr := a.recEngine.Dispose()
	if detErr != nil {
		return detErr
	}
	return recErr
}
