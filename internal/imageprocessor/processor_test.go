package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFit_ShrinksKeepingAspect(t *testing.T) {
	p := NewProcessor(80)

	res, err := p.Fit(bytes.NewReader(pngBytes(t, 1200, 600)), SizeAvatar)
	require.NoError(t, err)

	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 200, res.Height)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, ".png", res.Ext)
}

func TestFit_DoesNotUpscale(t *testing.T) {
	p := NewProcessor(0)

	res, err := p.Fit(bytes.NewReader(pngBytes(t, 100, 50)), SizeThumbnail)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)
}

func TestFit_JPEGStaysJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 900, 900)), nil))

	res, err := NewProcessor(85).Fit(&buf, SizeThumbnail)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.ContentType)
	assert.Equal(t, 300, res.Width)
}

func TestFit_RejectsGarbage(t *testing.T) {
	_, err := NewProcessor(85).Fit(strings.NewReader("not an image"), SizeAvatar)
	assert.Error(t, err)
	assert.False(t, IsValidImage(strings.NewReader("nope")))
}
