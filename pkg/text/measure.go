// Package text measures text runs for intrinsic sizing. Shaping and line
// breaking are not done here; a run is measured as a single line.
package text

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// LineHeightFactor is the "normal" line height relative to font-size.
const LineHeightFactor = 1.2

// Measurer returns the advance width of a single-line run.
type Measurer interface {
	Width(s string, fontSize float64) float64
}

// Monospace measures every glyph with the same advance, expressed as a
// fraction of the font size. 0.6 approximates common monospace faces and 1.0
// reproduces the Ahem test font.
type Monospace struct {
	Advance float64
}

// DefaultMeasurer matches the monospace reset the reference harness injects.
func DefaultMeasurer() Monospace {
	return Monospace{Advance: 0.6}
}

func (m Monospace) Width(s string, fontSize float64) float64 {
	return float64(len([]rune(s))) * fontSize * m.Advance
}

// FontMeasurer measures with a real font face loaded through gg. Faces are
// cached per size.
type FontMeasurer struct {
	path  string
	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontMeasurer loads the face once to validate the path.
func NewFontMeasurer(path string) (*FontMeasurer, error) {
	m := &FontMeasurer{path: path, faces: make(map[float64]font.Face)}
	if _, err := m.face(16); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *FontMeasurer) face(size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := gg.LoadFontFace(m.path, size)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", m.path, err)
	}
	m.faces[size] = f
	return f, nil
}

func (m *FontMeasurer) Width(s string, fontSize float64) float64 {
	f, err := m.face(fontSize)
	if err != nil {
		return DefaultMeasurer().Width(s, fontSize)
	}
	adv := font.MeasureString(f, s)
	return float64(adv) / 64
}

// CollapseWhitespace applies white-space:normal collapsing to a run.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MinMax returns the min-content (longest word) and max-content (whole run)
// widths of s after whitespace collapsing.
func MinMax(m Measurer, s string, fontSize float64) (minContent, maxContent float64) {
	s = CollapseWhitespace(s)
	if s == "" {
		return 0, 0
	}
	maxContent = m.Width(s, fontSize)
	for _, w := range strings.Fields(s) {
		if ww := m.Width(w, fontSize); ww > minContent {
			minContent = ww
		}
	}
	return minContent, maxContent
}

// LineHeight is the height of one line of text at fontSize.
func LineHeight(fontSize float64) float64 {
	return fontSize * LineHeightFactor
}
