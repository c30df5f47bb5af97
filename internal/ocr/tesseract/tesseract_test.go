package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spherical/question-agent/internal/ocr"
	"github.com/spherical/question-agent/internal/preprocess"
)

func requireTesseract(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract binary not installed")
	}
}

// renderHelloWorld draws "Hello World" with the 7x13 bitmap face, scales the
// glyphs up and centers them on a 2000x800 white canvas.
func renderHelloWorld(t *testing.T) string {
	t.Helper()
	const text = "Hello World"
	small := image.NewRGBA(image.Rect(0, 0, 12+7*len(text), 24))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(6, 17),
	}
	d.DrawString(text)

	canvas := image.NewRGBA(image.Rect(0, 0, 2000, 800))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	w, h := small.Bounds().Dx()*8, small.Bounds().Dy()*8
	x0, y0 := (2000-w)/2, (800-h)/2
	draw.NearestNeighbor.Scale(canvas, image.Rect(x0, y0, x0+w, y0+h), small, small.Bounds(), draw.Src, nil)

	path := filepath.Join(t.TempDir(), "hello.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, canvas))
	return path
}

func TestRecognizeHelloWorld(t *testing.T) {
	requireTesseract(t)

	path := renderHelloWorld(t)
	pre := preprocess.New(preprocess.DefaultOptions())

	prep, err := pre.Preprocess(path)
	require.NoError(t, err)
	assert.False(t, prep.Scaled)
	assert.False(t, prep.Inverted)
	assert.Equal(t, 2000, prep.Width)

	cache := ocr.NewCache(NewFactory(nil), nil)
	defer cache.Close()

	text, err := ocr.NewExtractor(cache, pre, nil).ExtractText(context.Background(), path, []string{"en"}, false)
	require.NoError(t, err)

	lower := strings.ToLower(text)
	assert.Contains(t, lower, "hello")
	assert.Contains(t, lower, "world")
}

func TestExtractBlankImageReturnsEmpty(t *testing.T) {
	requireTesseract(t)

	canvas := image.NewRGBA(image.Rect(0, 0, 400, 200))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	path := filepath.Join(t.TempDir(), "blank.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, canvas))
	require.NoError(t, f.Close())

	cache := ocr.NewCache(NewFactory(nil), nil)
	defer cache.Close()

	text, err := ocr.NewExtractor(cache, preprocess.New(preprocess.DefaultOptions()), nil).
		ExtractText(context.Background(), path, []string{"en"}, true)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRecognizeBlankImage(t *testing.T) {
	requireTesseract(t)

	engine, err := New(ocr.EngineConfig{Languages: []string{"eng"}})
	require.NoError(t, err)
	defer engine.Close()

	blank := image.NewGray(image.Rect(0, 0, 200, 100))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}

	paragraphs, err := engine.Recognize(context.Background(), blank)
	require.NoError(t, err)
	for _, p := range paragraphs {
		assert.Empty(t, strings.TrimSpace(p))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	requireTesseract(t)

	engine, err := New(ocr.EngineConfig{Languages: []string{"eng"}})
	require.NoError(t, err)
	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())
}
