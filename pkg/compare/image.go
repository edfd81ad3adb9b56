package compare

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// ImageResult summarises a pixel comparison.
type ImageResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest channel difference seen
	// Diff marks differing pixels in red over a grey copy of the actual
	// image. Only set when the images differ.
	Diff *image.RGBA
}

// ImageOptions tunes Images.
type ImageOptions struct {
	// Tolerance is the largest per-channel difference (0-255) still treated
	// as equal.
	Tolerance int
	// MaxDifferentPercent lets a comparison pass with a small share of
	// differing pixels.
	MaxDifferentPercent float64
}

// Images compares two rendered pages pixel by pixel.
func Images(actual, expected image.Image, opts ImageOptions) (ImageResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return ImageResult{}, fmt.Errorf("%w: image bounds %v, want %v", ErrMismatch, bounds, expected.Bounds())
	}

	res := ImageResult{Match: true, TotalPixels: bounds.Dx() * bounds.Dy()}
	diff := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := color.RGBAModel.Convert(actual.At(x, y)).(color.RGBA)
			e := color.RGBAModel.Convert(expected.At(x, y)).(color.RGBA)
			d := max(
				absDiff(a.R, e.R), absDiff(a.G, e.G),
				absDiff(a.B, e.B), absDiff(a.A, e.A),
			)
			res.MaxDifference = max(res.MaxDifference, d)
			if d > opts.Tolerance {
				res.Match = false
				res.DifferentPixels++
				diff.Set(x, y, color.RGBA{R: 255, A: 255})
				continue
			}
			diff.Set(x, y, color.RGBA{R: a.R, G: a.R, B: a.R, A: 255})
		}
	}

	if !res.Match && opts.MaxDifferentPercent > 0 && res.TotalPixels > 0 {
		pct := float64(res.DifferentPixels) / float64(res.TotalPixels) * 100
		res.Match = pct <= opts.MaxDifferentPercent
	}
	if !res.Match {
		res.Diff = diff
	}
	return res, nil
}

// LoadPNG decodes a PNG file.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// SavePNG encodes img to path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
