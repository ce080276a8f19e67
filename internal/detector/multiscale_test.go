package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiScaleFitSize_DisabledByDefault(t *testing.T) {
	opts := DefaultOptions()
	fw, fh := multiScaleFitSize(100, 80, 1333, 736, opts)
	assert.Equal(t, 1333, fw)
	assert.Equal(t, 736, fh)
}

func TestMultiScaleFitSize_UpscalesSmallImages(t *testing.T) {
	opts := DefaultOptions()
	opts.MultiScaleUpscale = 200
	opts.MultiScaleFactor = 2.0

	fw, fh := multiScaleFitSize(100, 80, 320, 256, opts)
	assert.Equal(t, 640, fw)
	assert.Equal(t, 512, fh)
}

func TestMultiScaleFitSize_LeavesLargeImagesAlone(t *testing.T) {
	opts := DefaultOptions()
	opts.MultiScaleUpscale = 200
	opts.MultiScaleFactor = 2.0

	fw, fh := multiScaleFitSize(1000, 800, 1333, 736, opts)
	assert.Equal(t, 1333, fw)
	assert.Equal(t, 736, fh)
}
