package images

import (
	"bytes"
	"image"

	// Register the image formats accepted on upload.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// DecodeImage decodes raw uploaded bytes into an image.Image.
//
// Arguments:
//   - data: The raw image bytes (JPEG, PNG or GIF).
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the bytes are not a supported image.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return img, nil
}

// PrepareInput resizes an image to size x size and writes it into the
// model input buffer as a channel-first, RGB, [0,1]-normalized float
// layout ([1,3,size,size]). The buffer is typically the backing data of
// a pre-allocated input tensor.
//
// Arguments:
//   - img: The image to prepare.
//   - data: The destination buffer to populate.
//   - size: The model input resolution (width and height).
//
// Returns:
//   - error: An error if the buffer is too small for the requested size.
func PrepareInput(img image.Image, data []float32, size int) error {
	channelSize := size * size
	if len(data) < channelSize*3 {
		return errors.Errorf("destination buffer only holds %d floats, needs "+
			"%d (make sure it's the right shape)", len(data), channelSize*3)
	}
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	// Resize with Lanczos3, matching the resolution the model was
	// exported at. Aspect ratio is not preserved; the decoder rescales
	// x and y independently back to the original dimensions.
	img = resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
