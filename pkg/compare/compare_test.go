package compare

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/BigBadE/valor-sub000/pkg/fixture"
	"github.com/BigBadE/valor-sub000/pkg/layout"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testOptions() Options {
	return Options{
		Concurrency: 2,
		Layouter:    []layouter.Option{layouter.WithEngineOptions(layout.WithViewport(800, 600))},
	}
}

func TestSnapshotStartsAtBodyAndSkipsHead(t *testing.T) {
	fx, err := fixture.LoadFile(filepath.Join("testdata", "stack.html"))
	require.NoError(t, err)
	doc, err := fx.Build(testOptions().Layouter...)
	require.NoError(t, err)

	snap, err := Snapshot(doc.Tree(), doc.Layout())
	require.NoError(t, err)
	assert.Equal(t, "body", snap.Tag)
	require.Len(t, snap.Children, 2)
	assert.Equal(t, Node{Tag: "div", ID: "b", Rect: Rect{Y: 50, Width: 800, Height: 10}, Children: []Node{}}, snap.Children[1])

	data, err := Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"children": []`)
}

func TestSnapshotWithoutBody(t *testing.T) {
	l := layouter.New()
	require.NoError(t, l.ApplyUpdate(layouter.InsertElement{Parent: 0, Node: 1, Tag: "div", Pos: -1}))
	_, err := Snapshot(l.Tree(), l.Layout())
	require.Error(t, err)
}

func TestJSONComparison(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		want     string
		wantPath string
	}{
		{name: "equal", got: `{"a":1,"b":[true,"x"]}`, want: `{"b":[true,"x"],"a":1}`},
		{name: "within epsilon", got: `{"w":100.0000001}`, want: `{"w":100}`},
		{name: "number", got: `{"rect":{"w":101}}`, want: `{"rect":{"w":100}}`, wantPath: "$.rect.w"},
		{name: "array length", got: `{"c":[1]}`, want: `{"c":[1,2]}`, wantPath: "$.c:"},
		{name: "array element", got: `[{"id":"a"},{"id":"b"}]`, want: `[{"id":"a"},{"id":"c"}]`, wantPath: "$[1].id"},
		{name: "missing key", got: `{"a":1}`, want: `{"a":1,"b":2}`, wantPath: "$.b"},
		{name: "type", got: `{"a":"1"}`, want: `{"a":1}`, wantPath: "$.a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := JSON([]byte(tt.got), []byte(tt.want), DefaultEpsilon)
			if tt.wantPath == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrMismatch)
			assert.Contains(t, err.Error(), "at "+tt.wantPath)
		})
	}
}

func TestJSONRejectsGarbage(t *testing.T) {
	err := JSON([]byte(`{`), []byte(`{}`), DefaultEpsilon)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMismatch))
}

func TestRunSuite(t *testing.T) {
	paths, err := fixture.Discover("testdata")
	require.NoError(t, err)
	require.Len(t, paths, 3)

	results, err := RunSuite(context.Background(), paths, testOptions())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := make(map[string]Result)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Fixture, "results keep input order")
		byName[filepath.Base(r.Fixture)] = r
	}

	broken := byName["broken.html"]
	assert.True(t, broken.Compared)
	require.ErrorIs(t, broken.Err, ErrMismatch)
	assert.Contains(t, broken.Err.Error(), "$.children[1].rect.width")

	script := byName["script_fail.html"]
	assert.False(t, script.Compared)
	require.ErrorIs(t, script.Err, ErrAssertion)
	require.Len(t, script.Assertions, 1)
	assert.Equal(t, "off by one on purpose", script.Assertions[0].Details)

	stack := byName["stack.html"]
	assert.True(t, stack.Compared)
	assert.True(t, stack.Passed(), "%v", stack.Err)
}

func TestRunSuiteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := RunSuite(ctx, []string{filepath.Join("testdata", "stack.html")}, testOptions())
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestReferencePath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b.chromium.json"), ReferencePath(filepath.Join("a", "b.html"), ".chromium.json"))
}

func TestImages(t *testing.T) {
	solid := func(c color.RGBA) *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				img.Set(x, y, c)
			}
		}
		return img
	}
	white := solid(color.RGBA{255, 255, 255, 255})

	res, err := Images(white, solid(color.RGBA{253, 255, 255, 255}), ImageOptions{Tolerance: 2})
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 2, res.MaxDifference)
	assert.Nil(t, res.Diff)

	dotted := solid(color.RGBA{255, 255, 255, 255})
	dotted.Set(1, 1, color.RGBA{0, 0, 0, 255})
	res, err = Images(white, dotted, ImageOptions{})
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 1, res.DifferentPixels)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, res.Diff.RGBAAt(1, 1))

	res, err = Images(white, dotted, ImageOptions{MaxDifferentPercent: 10})
	require.NoError(t, err)
	assert.True(t, res.Match, "1 of 16 pixels is under the limit")

	_, err = Images(white, image.NewRGBA(image.Rect(0, 0, 2, 2)), ImageOptions{})
	require.ErrorIs(t, err, ErrMismatch)
}
