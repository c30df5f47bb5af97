// Package preprocess cleans up a question image before text recognition.
//
// The steps always run in the same order: optional upscale to a target width,
// grayscale, polarity normalization for dark backgrounds, an edge-preserving
// bilateral filter and an adaptive Gaussian threshold. Output is a freshly
// allocated binarized bitmap and is bit-identical for identical input.
package preprocess

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

// Debug stage names handed to the DebugSink.
const (
	StageGray      = "gray"
	StageBlur      = "blur"
	StageBinarized = "binarized"
)

// Options configures the preprocessing steps.
type Options struct {
	TargetWidth         int
	DarkMeanThreshold   float64
	BilateralDiameter   int
	BilateralSigmaColor float64
	BilateralSigmaSpace float64
	ThresholdBlockSize  int
	ThresholdBias       int
}

// DefaultOptions returns the parameters tuned for exam screenshots.
func DefaultOptions() Options {
	return Options{
		TargetWidth:         1600,
		DarkMeanThreshold:   100,
		BilateralDiameter:   9,
		BilateralSigmaColor: 15,
		BilateralSigmaSpace: 15,
		ThresholdBlockSize:  15,
		ThresholdBias:       8,
	}
}

// Result is the output of one Preprocess call.
type Result struct {
	Binarized     *image.Gray
	Width         int
	Height        int
	Scaled        bool
	Inverted      bool
	MeanIntensity float64
}

// Preprocessor runs the cleanup pipeline. It holds no per-image state.
type Preprocessor struct {
	opts   Options
	sink   DebugSink
	logger *observability.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithDebugSink routes intermediate buffers to sink.
func WithDebugSink(sink DebugSink) Option {
	return func(p *Preprocessor) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *observability.Logger) Option {
	return func(p *Preprocessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Preprocessor.
func New(opts Options, options ...Option) *Preprocessor {
	p := &Preprocessor{
		opts:   opts,
		sink:   NopSink{},
		logger: observability.Nop(),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Preprocess loads the image at path and returns its binarized form.
// A missing or undecodable file fails with an image_not_found error.
func (p *Preprocessor) Preprocess(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ImageNotFoundError(path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, domain.ImageNotFoundError(path, err)
	}

	p.logger.Debug().
		Str("path", path).
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("decoded image")

	return p.PreprocessImage(img), nil
}

// PreprocessImage runs the pipeline on an already decoded image.
func (p *Preprocessor) PreprocessImage(img image.Image) *Result {
	res := &Result{}

	src := img
	if w := img.Bounds().Dx(); w > 0 && w < p.opts.TargetWidth {
		src = upscale(img, p.opts.TargetWidth)
		res.Scaled = true
	}

	gray := toGray(src)
	res.MeanIntensity = meanIntensity(gray)
	if res.MeanIntensity < p.opts.DarkMeanThreshold {
		invert(gray)
		res.Inverted = true
	}
	p.sink.Write(StageGray, gray)

	blur := bilateralFilter(gray, p.opts.BilateralDiameter, p.opts.BilateralSigmaColor, p.opts.BilateralSigmaSpace)
	p.sink.Write(StageBlur, blur)

	bin := adaptiveGaussianThreshold(blur, p.opts.ThresholdBlockSize, p.opts.ThresholdBias)
	p.sink.Write(StageBinarized, bin)

	res.Binarized = bin
	res.Width = bin.Rect.Dx()
	res.Height = bin.Rect.Dy()

	p.logger.Debug().
		Int("width", res.Width).
		Int("height", res.Height).
		Float64("mean_intensity", res.MeanIntensity).
		Bool("scaled", res.Scaled).
		Bool("inverted", res.Inverted).
		Msg("image preprocessed")
	return res
}

// upscale scales img so its width equals target, keeping the aspect ratio.
func upscale(img image.Image, target int) image.Image {
	b := img.Bounds()
	factor := float64(target) / float64(b.Dx())
	h := int(math.Round(float64(b.Dy()) * factor))
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, target, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// toGray converts to 8-bit luma using the ITU-R 601 weights of color.GrayModel.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

func meanIntensity(g *image.Gray) float64 {
	n := len(g.Pix)
	if n == 0 {
		return 0
	}
	var sum uint64
	for _, v := range g.Pix {
		sum += uint64(v)
	}
	return float64(sum) / float64(n)
}

func invert(g *image.Gray) {
	for i, v := range g.Pix {
		g.Pix[i] = 255 - v
	}
}
