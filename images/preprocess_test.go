package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidPNG encodes a solid-color image of the given size as PNG bytes.
func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	data := solidPNG(t, 320, 240, color.RGBA{R: 255, A: 255})

	img, err := DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = DecodeImage(nil)
	assert.Error(t, err)
}

// TestPrepareInput verifies the channel-first RGB layout and [0,1]
// normalization of the model input buffer.
func TestPrepareInput(t *testing.T) {
	const size = 8
	img, err := DecodeImage(solidPNG(t, 16, 16, color.RGBA{R: 255, G: 0, B: 0, A: 255}))
	require.NoError(t, err)

	data := make([]float32, size*size*3)
	require.NoError(t, PrepareInput(img, data, size))

	channelSize := size * size
	for i := 0; i < channelSize; i++ {
		assert.InDelta(t, 1.0, data[i], 0.02, "red channel at %d", i)
		assert.InDelta(t, 0.0, data[channelSize+i], 0.02, "green channel at %d", i)
		assert.InDelta(t, 0.0, data[2*channelSize+i], 0.02, "blue channel at %d", i)
	}
}

func TestPrepareInputRejectsShortBuffer(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	err := PrepareInput(img, make([]float32, 10), 8)
	assert.Error(t, err)
}
