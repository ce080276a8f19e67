package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name Loader searches for (pogo.yaml,
	// pogo.json, ...) when no explicit path is given.
	ConfigFileName = "pogo"

	// EnvPrefix namespaces environment-variable overrides, e.g.
	// POGO_SERVER_PORT for server.port.
	EnvPrefix = "POGO"
)

// Loader reads Config from a config file, POGO_*-prefixed environment
// variables and defaults, via viper's global instance so CLI flag bindings
// set up elsewhere in the cmd package still apply.
type Loader struct {
	v *viper.Viper
}

// NewLoader wraps viper's global instance.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// prepare points the loader at either a named file (configFile != "") or
// the standard search paths, and primes env handling and defaults ahead of
// reading the config.
func (l *Loader) prepare(configFile string) error {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Load reads the standard search paths and validates the result.
func (l *Loader) Load() (*Config, error) {
	if err := l.prepare(""); err != nil {
		return nil, err
	}
	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation is Load without the final Validate call, for
// callers (like the CLI's flag-merge path) that validate later once every
// source has been merged in.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	if err := l.prepare(""); err != nil {
		return nil, err
	}
	return l.unmarshal()
}

// LoadWithFile reads configFile specifically; an empty path defers to
// Load's standard search paths.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if err := l.prepare(configFile); err != nil {
		return nil, err
	}
	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithFileWithoutValidation is LoadWithFile without the final Validate
// call.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	if configFile == "" {
		return l.LoadWithoutValidation()
	}
	if err := l.prepare(configFile); err != nil {
		return nil, err
	}
	return l.unmarshal()
}

// BindFlag is reserved for explicit key/flag binding; flag binding
// currently happens where the flags are defined in the cmd package.
func (l *Loader) BindFlag(key, flagName string) error {
	return nil
}

// BindFlagSet is reserved for bulk flag binding; see BindFlag.
func (l *Loader) BindFlagSet(flagSet interface{}) error {
	return nil
}

// Get returns a resolved configuration value by key.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString returns a resolved configuration value as a string.
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// Set overrides a configuration value, taking precedence over file and
// environment sources (but not later Set calls).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file that was actually
// read, or "" if none was found.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper exposes the underlying viper instance for callers that need
// functionality Loader doesn't wrap directly.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "pogo"))
	}
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(configDir, "pogo"))
	}
	l.v.AddConfigPath("/etc/pogo")
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults seeds viper with DefaultConfig's values so unset keys still
// resolve to something sane after Unmarshal.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("models_dir", d.ModelsDir)
	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	det := d.Pipeline.Detector
	l.v.SetDefault("pipeline.detector.db_thresh", det.DbThresh)
	l.v.SetDefault("pipeline.detector.db_box_thresh", det.DbBoxThresh)
	l.v.SetDefault("pipeline.detector.polygon_mode", det.PolygonMode)
	l.v.SetDefault("pipeline.detector.use_nms", det.UseNMS)
	l.v.SetDefault("pipeline.detector.nms_threshold", det.NMSThreshold)
	l.v.SetDefault("pipeline.detector.num_threads", det.NumThreads)
	l.v.SetDefault("pipeline.detector.max_image_size", det.MaxImageSize)
	l.v.SetDefault("pipeline.detector.use_adaptive_nms", det.UseAdaptiveNMS)
	l.v.SetDefault("pipeline.detector.adaptive_nms_scale", det.AdaptiveNMSScale)
	l.v.SetDefault("pipeline.detector.size_aware_nms", det.SizeAwareNMS)
	l.v.SetDefault("pipeline.detector.min_region_size", det.MinRegionSize)
	l.v.SetDefault("pipeline.detector.max_region_size", det.MaxRegionSize)
	l.v.SetDefault("pipeline.detector.size_nms_scale_factor", det.SizeNMSScaleFactor)

	rec := d.Pipeline.Recognizer
	l.v.SetDefault("pipeline.recognizer.language", rec.Language)
	l.v.SetDefault("pipeline.recognizer.image_height", rec.ImageHeight)
	l.v.SetDefault("pipeline.recognizer.max_width", rec.MaxWidth)
	l.v.SetDefault("pipeline.recognizer.pad_width_multiple", rec.PadWidthMultiple)
	l.v.SetDefault("pipeline.recognizer.min_confidence", rec.MinConfidence)
	l.v.SetDefault("pipeline.recognizer.num_threads", rec.NumThreads)

	l.v.SetDefault("pipeline.parallel.max_workers", d.Pipeline.Parallel.MaxWorkers)
	l.v.SetDefault("pipeline.parallel.batch_size", d.Pipeline.Parallel.BatchSize)
	l.v.SetDefault("pipeline.resource.max_goroutines", d.Pipeline.Resource.MaxGoroutines)
	l.v.SetDefault("pipeline.warmup_iterations", d.Pipeline.WarmupIterations)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("output.confidence_precision", d.Output.ConfidencePrecision)
	l.v.SetDefault("output.overlay_box_color", d.Output.OverlayBoxColor)
	l.v.SetDefault("output.overlay_poly_color", d.Output.OverlayPolyColor)

	srv := d.Server
	l.v.SetDefault("server.host", srv.Host)
	l.v.SetDefault("server.port", srv.Port)
	l.v.SetDefault("server.cors_origin", srv.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", srv.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", srv.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", srv.ShutdownTimeout)
	l.v.SetDefault("server.overlay_enabled", srv.OverlayEnabled)

	l.v.SetDefault("batch.workers", d.Batch.Workers)
	l.v.SetDefault("batch.continue_on_error", d.Batch.ContinueOnError)

	feat := d.Features
	l.v.SetDefault("features.orientation_enabled", feat.OrientationEnabled)
	l.v.SetDefault("features.orientation_threshold", feat.OrientationThreshold)
	l.v.SetDefault("features.textline_enabled", feat.TextlineEnabled)
	l.v.SetDefault("features.textline_threshold", feat.TextlineThreshold)
	l.v.SetDefault("features.rectification_enabled", feat.RectificationEnabled)
	l.v.SetDefault("features.rectification_threshold", feat.RectificationThreshold)
	l.v.SetDefault("features.rectification_height", feat.RectificationHeight)

	l.v.SetDefault("gpu.enabled", d.GPU.Enabled)
	l.v.SetDefault("gpu.device", d.GPU.Device)
	l.v.SetDefault("gpu.memory_limit", d.GPU.MemoryLimit)
}

// GetResolvedConfig returns every resolved setting as a nested map, for
// debug output.
func (l *Loader) GetResolvedConfig() map[string]interface{} {
	return l.v.AllSettings()
}

// WriteConfigToFile writes the loader's current settings to filename, in
// the format implied by its extension.
func (l *Loader) WriteConfigToFile(filename string) error {
	return l.v.WriteConfigAs(filename)
}

// GenerateDefaultConfigFile writes DefaultConfig's values to filename (or
// "pogo.yaml" in the working directory if filename is empty).
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = "pogo.yaml"
	}
	loader := NewLoader()
	loader.setDefaults()
	return loader.WriteConfigToFile(filename)
}

// GetConfigSearchPaths lists the directories Loader checks for a pogo.*
// config file, in search order.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home, filepath.Join(home, ".config", "pogo"))
	}
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(configDir, "pogo"))
	}
	return append(paths, "/etc/pogo")
}

// PrintConfigInfo prints the resolved config file path, search paths and
// environment prefix, for `pogo --config-info`-style debugging.
func (l *Loader) PrintConfigInfo() {
	fmt.Printf("Configuration file used: %s\n", l.GetConfigFileUsed())
	fmt.Printf("Configuration search paths: %v\n", GetConfigSearchPaths())
	fmt.Printf("Environment prefix: %s\n", EnvPrefix)
}
