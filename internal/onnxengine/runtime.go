package onnxengine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	ort "github.com/yalue/onnxruntime_go"
)

// GPUConfig configures the CUDA execution provider optionally attached to a
// RealKernel's session. The zero value means CPU-only.
type GPUConfig struct {
	UseGPU                bool
	DeviceID              int
	GPUMemLimit           uint64 // bytes; 0 means unlimited
	ArenaExtendStrategy   string // "kNextPowerOfTwo" or "kSameAsRequested"
	CUDNNConvAlgoSearch   string // "EXHAUSTIVE", "HEURISTIC", or "DEFAULT"
	DoCopyInDefaultStream bool
}

// DefaultGPUConfig returns the conservative CPU-only default; callers flip
// UseGPU on once a device is confirmed available.
func DefaultGPUConfig() GPUConfig {
	return GPUConfig{
		ArenaExtendStrategy:   "kNextPowerOfTwo",
		CUDNNConvAlgoSearch:   "DEFAULT",
		DoCopyInDefaultStream: true,
	}
}

// ValidateGPUConfig rejects settings the CUDA provider would reject anyway,
// so ConfigureSessionForGPU reports them before any CUDA provider setup.
// NewRealKernel logs that error and continues on CPU.
func ValidateGPUConfig(cfg GPUConfig) error {
	if !cfg.UseGPU {
		return nil
	}
	if cfg.DeviceID < 0 {
		return fmt.Errorf("onnxengine: gpu device id must be >= 0, got %d", cfg.DeviceID)
	}
	switch cfg.ArenaExtendStrategy {
	case "", "kNextPowerOfTwo", "kSameAsRequested":
	default:
		return fmt.Errorf("onnxengine: invalid arena extend strategy %q", cfg.ArenaExtendStrategy)
	}
	switch cfg.CUDNNConvAlgoSearch {
	case "", "EXHAUSTIVE", "HEURISTIC", "DEFAULT":
	default:
		return fmt.Errorf("onnxengine: invalid cudnn conv algo search %q", cfg.CUDNNConvAlgoSearch)
	}
	return nil
}

// GetRecommendedGPUMemLimit is a conservative stand-in for querying the
// device's actual free memory, which Go has no portable way to do without
// a CUDA/NVML binding; 2GiB leaves room for other processes on typical
// inference hosts.
func GetRecommendedGPUMemLimit() uint64 { return 2 << 30 }

// ConfigureSessionForGPU attaches a CUDA execution provider to sessionOptions.
// On any failure it returns an error so the caller can fall back to CPU
// execution rather than fail session construction outright.
func ConfigureSessionForGPU(sessionOptions *ort.SessionOptions, cfg GPUConfig) error {
	if !cfg.UseGPU {
		return nil
	}
	if err := ValidateGPUConfig(cfg); err != nil {
		return err
	}

	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("onnxengine: cuda provider options unavailable: %w", err)
	}
	defer func() {
		if destroyErr := cudaOpts.Destroy(); destroyErr != nil {
			fmt.Fprintf(os.Stderr, "onnxengine: destroy cuda provider options: %v\n", destroyErr)
		}
	}()

	settings := map[string]string{"device_id": strconv.Itoa(cfg.DeviceID)}
	if cfg.GPUMemLimit > 0 {
		settings["gpu_mem_limit"] = strconv.FormatUint(cfg.GPUMemLimit, 10)
	}
	if cfg.ArenaExtendStrategy != "" {
		settings["arena_extend_strategy"] = cfg.ArenaExtendStrategy
	}
	if cfg.CUDNNConvAlgoSearch != "" {
		settings["cudnn_conv_algo_search"] = cfg.CUDNNConvAlgoSearch
	}
	if cfg.DoCopyInDefaultStream {
		settings["do_copy_in_default_stream"] = "1"
	} else {
		settings["do_copy_in_default_stream"] = "0"
	}

	if err := cudaOpts.Update(settings); err != nil {
		return fmt.Errorf("onnxengine: update cuda provider options: %w", err)
	}
	if err := sessionOptions.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		return fmt.Errorf("onnxengine: append cuda execution provider: %w", err)
	}
	return nil
}

// sharedLibraryName returns the onnxruntime shared library filename for the
// running OS.
func sharedLibraryName() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "libonnxruntime.so", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "windows":
		return "onnxruntime.dll", nil
	default:
		return "", fmt.Errorf("onnxengine: unsupported os %s", runtime.GOOS)
	}
}

// projectRoot walks up from the working directory to the nearest ancestor
// containing go.mod, which is where scripts/setup-onnxruntime.sh installs
// the vendored onnxruntime/ directory.
func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("onnxengine: working directory: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("onnxengine: no go.mod found above working directory")
		}
		dir = parent
	}
}

// candidateLibraryPaths lists, in preference order, the places the
// onnxruntime shared library might live: system package install locations
// first, then the project-vendored onnxruntime/{gpu,}/lib layout.
func candidateLibraryPaths(useGPU bool) ([]string, error) {
	libName, err := sharedLibraryName()
	if err != nil {
		return nil, err
	}

	var paths []string
	if useGPU {
		paths = append(paths, "/opt/onnxruntime/gpu/lib/"+libName)
	}
	paths = append(paths,
		"/usr/local/lib/"+libName,
		"/usr/lib/"+libName,
		"/opt/onnxruntime/cpu/lib/"+libName,
	)

	root, err := projectRoot()
	if err != nil {
		return paths, nil //nolint:nilerr // system paths above may still resolve
	}
	if useGPU {
		paths = append(paths, filepath.Join(root, "onnxruntime", "gpu", "lib", libName))
	}
	paths = append(paths, filepath.Join(root, "onnxruntime", "lib", libName))
	return paths, nil
}

// SetLibraryPath locates the onnxruntime shared library on disk and tells
// onnxruntime_go to load it, preferring a GPU build when useGPU is set. It
// must run once per process before ort.InitializeEnvironment.
func SetLibraryPath(useGPU bool) error {
	paths, err := candidateLibraryPaths(useGPU)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if _, statErr := os.Stat(p); statErr == nil {
			ort.SetSharedLibraryPath(p)
			return nil
		}
	}
	return fmt.Errorf("onnxengine: onnxruntime shared library not found, tried %v", paths)
}

// VerifyRuntime locates and initializes the onnxruntime environment without
// constructing a session, confirming the CGO link and shared library are
// working, then tears the environment back down. Used standalone by
// cmd/ocr's "test" subcommand, not alongside a running App in the same
// process (onnxruntime_go only tolerates one live environment at a time).
func VerifyRuntime() error {
	if err := SetLibraryPath(false); err != nil {
		return fmt.Errorf("onnxengine: locate runtime library: %w", err)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnxengine: initialize runtime: %w", err)
	}
	if err := ort.DestroyEnvironment(); err != nil {
		return fmt.Errorf("onnxengine: destroy runtime environment: %w", err)
	}
	return nil
}
