//nolint:lll
package config

// Config is the root of pogo's configuration tree, assembled by Loader from
// (in increasing priority) defaults, a config file, POGO_*-prefixed
// environment variables, and CLI flags. Every field below is addressable
// from a config file using its mapstructure/yaml tag, e.g.
// "pipeline.detector.db_thresh".
type Config struct {
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"  json:"log_level"`
	Verbose   bool   `mapstructure:"verbose"    yaml:"verbose"    json:"verbose"`

	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `mapstructure:"output"   yaml:"output"   json:"output"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"   json:"server"`
	Batch    BatchConfig    `mapstructure:"batch"    yaml:"batch"    json:"batch"`
	Features FeatureConfig  `mapstructure:"features" yaml:"features" json:"features"`
	GPU      GPUConfig      `mapstructure:"gpu"      yaml:"gpu"      json:"gpu"`
}

// PipelineConfig groups the settings that shape the detect-then-recognize
// pipeline itself, as opposed to how results get in or out (OutputConfig,
// ServerConfig, BatchConfig).
type PipelineConfig struct {
	Detector   DetectorConfig   `mapstructure:"detector"   yaml:"detector"   json:"detector"`
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Parallel   ParallelConfig   `mapstructure:"parallel"   yaml:"parallel"   json:"parallel"`
	Resource   ResourceConfig   `mapstructure:"resource"   yaml:"resource"   json:"resource"`

	WarmupIterations int `mapstructure:"warmup_iterations" yaml:"warmup_iterations" json:"warmup_iterations"`
}

// DetectorConfig tunes the segmentation-based text detector: the DB
// threshold pair, polygon reconstruction mode and its NMS pass.
type DetectorConfig struct {
	ModelPath    string  `mapstructure:"model_path"    yaml:"model_path"    json:"model_path"`
	DbThresh     float32 `mapstructure:"db_thresh"     yaml:"db_thresh"     json:"db_thresh"`
	DbBoxThresh  float32 `mapstructure:"db_box_thresh" yaml:"db_box_thresh" json:"db_box_thresh"`
	PolygonMode  string  `mapstructure:"polygon_mode"  yaml:"polygon_mode"  json:"polygon_mode"`
	UseNMS       bool    `mapstructure:"use_nms"       yaml:"use_nms"       json:"use_nms"`
	NMSThreshold float64 `mapstructure:"nms_threshold" yaml:"nms_threshold" json:"nms_threshold"`
	NumThreads   int     `mapstructure:"num_threads"   yaml:"num_threads"   json:"num_threads"`
	MaxImageSize int     `mapstructure:"max_image_size" yaml:"max_image_size" json:"max_image_size"`

	// Region-size-aware NMS: scale the IoU threshold by region size instead
	// of applying one threshold uniformly.
	UseAdaptiveNMS     bool    `mapstructure:"use_adaptive_nms"   yaml:"use_adaptive_nms"   json:"use_adaptive_nms"`
	AdaptiveNMSScale   float64 `mapstructure:"adaptive_nms_scale" yaml:"adaptive_nms_scale" json:"adaptive_nms_scale"`
	SizeAwareNMS       bool    `mapstructure:"size_aware_nms"     yaml:"size_aware_nms"     json:"size_aware_nms"`
	MinRegionSize      int     `mapstructure:"min_region_size"    yaml:"min_region_size"    json:"min_region_size"`
	MaxRegionSize      int     `mapstructure:"max_region_size"    yaml:"max_region_size"    json:"max_region_size"`
	SizeNMSScaleFactor float64 `mapstructure:"size_nms_scale_factor" yaml:"size_nms_scale_factor" json:"size_nms_scale_factor"` //nolint:lll
}

// RecognizerConfig tunes the CTC text recognizer: crop geometry, dictionary
// selection and the confidence floor applied to decoded text.
type RecognizerConfig struct {
	ModelPath        string  `mapstructure:"model_path"         yaml:"model_path"         json:"model_path"`
	DictPath         string  `mapstructure:"dict_path"          yaml:"dict_path"          json:"dict_path"`
	DictLangs        string  `mapstructure:"dict_langs"         yaml:"dict_langs"         json:"dict_langs"`
	Language         string  `mapstructure:"language"           yaml:"language"           json:"language"`
	ImageHeight      int     `mapstructure:"image_height"       yaml:"image_height"       json:"image_height"`
	MaxWidth         int     `mapstructure:"max_width"          yaml:"max_width"          json:"max_width"`
	PadWidthMultiple int     `mapstructure:"pad_width_multiple" yaml:"pad_width_multiple" json:"pad_width_multiple"`
	MinConfidence    float64 `mapstructure:"min_confidence"     yaml:"min_confidence"     json:"min_confidence"`
	NumThreads       int     `mapstructure:"num_threads"        yaml:"num_threads"        json:"num_threads"`
}

// ParallelConfig bounds the worker pool that fans work out across images.
type ParallelConfig struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`
	BatchSize  int `mapstructure:"batch_size"  yaml:"batch_size"  json:"batch_size"`
}

// ResourceConfig caps concurrency outside the worker pool itself.
type ResourceConfig struct {
	MaxGoroutines int `mapstructure:"max_goroutines" yaml:"max_goroutines" json:"max_goroutines"`
}

// OutputConfig controls result formatting and the optional debug overlay.
type OutputConfig struct {
	Format              string `mapstructure:"format"               yaml:"format"               json:"format"`
	File                string `mapstructure:"file"                 yaml:"file"                 json:"file"`
	ConfidencePrecision int    `mapstructure:"confidence_precision" yaml:"confidence_precision" json:"confidence_precision"` //nolint:lll
	OverlayDir          string `mapstructure:"overlay_dir"          yaml:"overlay_dir"          json:"overlay_dir"`
	OverlayBoxColor     string `mapstructure:"overlay_box_color"    yaml:"overlay_box_color"    json:"overlay_box_color"`
	OverlayPolyColor    string `mapstructure:"overlay_poly_color"   yaml:"overlay_poly_color"   json:"overlay_poly_color"`
}

// ServerConfig configures the `serve` command's HTTP listener.
type ServerConfig struct {
	Host            string `mapstructure:"host"             yaml:"host"             json:"host"`
	Port            int    `mapstructure:"port"             yaml:"port"             json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin"      yaml:"cors_origin"      json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb"    yaml:"max_upload_mb"    json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec"      yaml:"timeout_sec"      json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayEnabled  bool   `mapstructure:"overlay_enabled"  yaml:"overlay_enabled"  json:"overlay_enabled"`
}

// BatchConfig configures the `batch` command's directory walk.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers"           yaml:"workers"           json:"workers"`
	OutputDir       string `mapstructure:"output_dir"        yaml:"output_dir"        json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// FeatureConfig toggles the optional preprocessing stages that run ahead of
// detection: orientation classification, text-line orientation and
// document rectification, each with its own model path and threshold.
type FeatureConfig struct {
	OrientationEnabled   bool    `mapstructure:"orientation_enabled"    yaml:"orientation_enabled"    json:"orientation_enabled"`    //nolint:lll
	OrientationThreshold float64 `mapstructure:"orientation_threshold"  yaml:"orientation_threshold"  json:"orientation_threshold"`  //nolint:lll
	OrientationModelPath string  `mapstructure:"orientation_model_path" yaml:"orientation_model_path" json:"orientation_model_path"` //nolint:lll

	TextlineEnabled   bool    `mapstructure:"textline_enabled"   yaml:"textline_enabled"   json:"textline_enabled"`
	TextlineThreshold float64 `mapstructure:"textline_threshold" yaml:"textline_threshold" json:"textline_threshold"`
	TextlineModelPath string  `mapstructure:"textline_model_path" yaml:"textline_model_path" json:"textline_model_path"`

	RectificationEnabled   bool    `mapstructure:"rectification_enabled"    yaml:"rectification_enabled"    json:"rectification_enabled"`    //nolint:lll
	RectificationModelPath string  `mapstructure:"rectification_model_path" yaml:"rectification_model_path" json:"rectification_model_path"` //nolint:lll
	RectificationThreshold float64 `mapstructure:"rectification_threshold" yaml:"rectification_threshold" json:"rectification_threshold"`     //nolint:lll
	RectificationHeight    int     `mapstructure:"rectification_height"    yaml:"rectification_height"    json:"rectification_height"`
	RectificationDebugDir  string  `mapstructure:"rectification_debug_dir" yaml:"rectification_debug_dir" json:"rectification_debug_dir"` //nolint:lll
}

// GPUConfig selects the ONNX Runtime execution provider.
type GPUConfig struct {
	Enabled     bool   `mapstructure:"enabled"      yaml:"enabled"      json:"enabled"`
	Device      int    `mapstructure:"device"       yaml:"device"       json:"device"`
	MemoryLimit string `mapstructure:"memory_limit" yaml:"memory_limit" json:"memory_limit"`
}
