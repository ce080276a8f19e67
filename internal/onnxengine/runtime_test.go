package onnxengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGPUConfig(t *testing.T) {
	cfg := DefaultGPUConfig()
	assert.False(t, cfg.UseGPU)
	assert.Equal(t, 0, cfg.DeviceID)
	assert.Equal(t, uint64(0), cfg.GPUMemLimit)
	assert.Equal(t, "kNextPowerOfTwo", cfg.ArenaExtendStrategy)
	assert.Equal(t, "DEFAULT", cfg.CUDNNConvAlgoSearch)
	assert.True(t, cfg.DoCopyInDefaultStream)
}

func TestValidateGPUConfig(t *testing.T) {
	cases := map[string]struct {
		cfg     GPUConfig
		wantErr bool
	}{
		"cpu-only is always valid": {cfg: GPUConfig{DeviceID: -1, ArenaExtendStrategy: "bogus"}, wantErr: false},
		"default gpu config":       {cfg: DefaultGPUConfig(), wantErr: false},
		"negative device id":       {cfg: GPUConfig{UseGPU: true, DeviceID: -1}, wantErr: true},
		"bad arena strategy":       {cfg: GPUConfig{UseGPU: true, ArenaExtendStrategy: "invalid"}, wantErr: true},
		"bad cudnn algo search":    {cfg: GPUConfig{UseGPU: true, CUDNNConvAlgoSearch: "invalid"}, wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateGPUConfig(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetRecommendedGPUMemLimit(t *testing.T) {
	assert.Equal(t, uint64(2<<30), GetRecommendedGPUMemLimit())
}

func TestSharedLibraryName(t *testing.T) {
	name, err := sharedLibraryName()
	// Only linux/darwin/windows are supported; the test environment is one
	// of those, so this should always resolve.
	assert.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestCandidateLibraryPathsIncludesGPUTierWhenRequested(t *testing.T) {
	cpuPaths, err := candidateLibraryPaths(false)
	assert.NoError(t, err)

	gpuPaths, err := candidateLibraryPaths(true)
	assert.NoError(t, err)

	assert.Greater(t, len(gpuPaths), len(cpuPaths))
}
