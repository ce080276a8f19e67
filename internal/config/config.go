package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/pogo/internal/models"
)

const (
	// Common string constants to avoid repetition.
	autoValue  = "auto"
	infoLevel  = "info"
	debugLevel = "debug"
	warnLevel  = "warn"
	errorLevel = "error"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir: models.DefaultModelsDir,
		LogLevel:  infoLevel,
		Verbose:   false,
		Pipeline: PipelineConfig{
			Detector:         defaultDetectorConfig(),
			Recognizer:       defaultRecognizerConfig(),
			Parallel:         defaultParallelConfig(),
			Resource:         defaultResourceConfig(),
			WarmupIterations: 0,
		},
		Output: OutputConfig{
			Format:              "text",
			ConfidencePrecision: 2,
			OverlayBoxColor:     "#FF0000",
			OverlayPolyColor:    "#00FF00",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			OverlayEnabled:  true,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: false,
		},
		Features: FeatureConfig{
			OrientationEnabled:     false,
			OrientationThreshold:   0.7,
			TextlineEnabled:        false,
			TextlineThreshold:      0.6,
			RectificationEnabled:   false,
			RectificationThreshold: 0.5,
			RectificationHeight:    1024,
			BarcodeEnabled:         false,
			BarcodeTypes:           "",
			BarcodeMinSize:         0,
		},
		GPU: GPUConfig{
			Enabled:     false,
			Device:      0,
			MemoryLimit: autoValue,
		},
	}
}

// defaultDetectorConfig returns default detector configuration, matching
// detector.DefaultOptions's binarization threshold so a config produced by
// DefaultConfig leaves the detector's default threshold unchanged.
func defaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		DbThresh:           0.2,
		DbBoxThresh:        0.5,
		PolygonMode:        "minrect",
		UseNMS:             false,
		NMSThreshold:       0.3,
		NumThreads:         0,
		MaxImageSize:       0,
		UseAdaptiveNMS:     false,
		AdaptiveNMSScale:   1.0,
		SizeAwareNMS:       false,
		MinRegionSize:      1,
		MaxRegionSize:      1 << 30,
		SizeNMSScaleFactor: 1.0,
	}
}

// defaultRecognizerConfig returns default recognizer configuration.
func defaultRecognizerConfig() RecognizerConfig {
	return RecognizerConfig{
		Language:         "en",
		ImageHeight:      48,
		MaxWidth:         0,
		PadWidthMultiple: 0,
		MinConfidence:    0.0,
		NumThreads:       0,
	}
}

// defaultParallelConfig returns default parallel configuration.
func defaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers: 0,
		BatchSize:  1,
	}
}

// defaultResourceConfig returns default resource configuration.
func defaultResourceConfig() ResourceConfig {
	return ResourceConfig{MaxGoroutines: 0}
}

// validateBasicEnums validates log level and output format.
func (c *Config) validateBasicEnums() error {
	validLogLevels := []string{debugLevel, infoLevel, warnLevel, errorLevel}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	return nil
}

// validateThresholds validates all threshold values.
func (c *Config) validateThresholds() error {
	if err := validateThreshold(float64(c.Pipeline.Detector.DbThresh), "detector.db_thresh"); err != nil {
		return err
	}
	if err := validateThreshold(float64(c.Pipeline.Detector.DbBoxThresh), "detector.db_box_thresh"); err != nil {
		return err
	}
	if err := validateThreshold(c.Pipeline.Detector.NMSThreshold, "detector.nms_threshold"); err != nil {
		return err
	}
	if err := validateThreshold(c.Pipeline.Detector.AdaptiveNMSScale, "detector.adaptive_nms_scale"); err != nil {
		return err
	}
	if err := validateThreshold(c.Pipeline.Detector.SizeNMSScaleFactor, "detector.size_nms_scale_factor"); err != nil {
		return err
	}
	if err := validateThreshold(c.Pipeline.Recognizer.MinConfidence, "recognizer.min_confidence"); err != nil {
		return err
	}
	if err := validateThreshold(c.Features.OrientationThreshold, "features.orientation_threshold"); err != nil {
		return err
	}
	if err := validateThreshold(c.Features.TextlineThreshold, "features.textline_threshold"); err != nil {
		return err
	}
	if err := validateThreshold(c.Features.RectificationThreshold, "features.rectification_threshold"); err != nil {
		return err
	}

	return nil
}

// validatePositiveIntegers validates all positive integer values.
func (c *Config) validatePositiveIntegers() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	if c.Pipeline.Detector.MinRegionSize <= 0 {
		return fmt.Errorf("invalid detector min region size: %d (must be positive)", c.Pipeline.Detector.MinRegionSize)
	}
	if c.Pipeline.Detector.MaxRegionSize <= 0 {
		return fmt.Errorf("invalid detector max region size: %d (must be positive)", c.Pipeline.Detector.MaxRegionSize)
	}
	if c.Pipeline.Detector.MaxRegionSize < c.Pipeline.Detector.MinRegionSize {
		return fmt.Errorf("detector max region size (%d) must be >= min region size (%d)",
			c.Pipeline.Detector.MaxRegionSize, c.Pipeline.Detector.MinRegionSize)
	}
	if c.Features.BarcodeMinSize < 0 {
		return fmt.Errorf("invalid barcode_min_size: %d (must be >= 0)", c.Features.BarcodeMinSize)
	}

	return nil
}

// validateEnums validates enum-like fields.
func (c *Config) validateEnums() error {
	validPolygonModes := []string{"minrect", "contour"}
	if !contains(validPolygonModes, c.Pipeline.Detector.PolygonMode) {
		return fmt.Errorf("invalid polygon mode: %s (must be one of: %s)",
			c.Pipeline.Detector.PolygonMode, strings.Join(validPolygonModes, ", "))
	}

	return nil
}

// validateGPU validates GPU-related settings.
func (c *Config) validateGPU() error {
	if c.GPU.MemoryLimit != autoValue && c.GPU.MemoryLimit != "" {
		if err := validateMemoryLimit(c.GPU.MemoryLimit); err != nil {
			return fmt.Errorf("invalid GPU memory limit: %w", err)
		}
	}

	return nil
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if err := c.validateBasicEnums(); err != nil {
		return err
	}
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validatePositiveIntegers(); err != nil {
		return err
	}
	if err := c.validateEnums(); err != nil {
		return err
	}
	if err := c.validateGPU(); err != nil {
		return err
	}

	return nil
}

// Helper functions

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	return slices.Contains(slice, item)
}

// validateThreshold validates that a value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}

// validateMemoryLimit validates GPU memory limit format (e.g., "1GB", "512MB").
func validateMemoryLimit(limit string) error {
	if limit == "" || limit == autoValue {
		return nil
	}

	// Longer suffixes first, so "1GB" is read as 1 GB rather than "1G" bytes.
	validUnits := []string{"GB", "MB", "KB", "B"}
	hasValidUnit := false
	for _, unit := range validUnits {
		if strings.HasSuffix(strings.ToUpper(limit), unit) {
			hasValidUnit = true
			numStr := strings.TrimSuffix(strings.ToUpper(limit), unit)
			if _, err := strconv.ParseFloat(numStr, 64); err != nil {
				return fmt.Errorf("invalid number in memory limit: %s", limit)
			}
			break
		}
	}

	if !hasValidUnit {
		return fmt.Errorf("memory limit must end with one of: %s", strings.Join(validUnits, ", "))
	}

	return nil
}
