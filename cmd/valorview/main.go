// Command valorview opens a window that lays out and paints fixtures.
package main

import (
	"flag"
	"fmt"
	"image"
	"math"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/BigBadE/valor-sub000/internal/config"
	"github.com/BigBadE/valor-sub000/internal/observability"
	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/fixture"
	"github.com/BigBadE/valor-sub000/pkg/js"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
	"github.com/BigBadE/valor-sub000/pkg/render"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is ./config.yaml)")
	flag.Parse()

	v, err := config.NewViper(*cfgFile)
	if err == nil {
		var cfg *config.Config
		if cfg, err = config.NewConfigFromViper(v); err == nil {
			observability.InitializeLogger(cfg.Logger)
			run(cfg, flag.Arg(0))
		}
	}
	observability.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, initial string) {
	logger := observability.GetLogger()
	width := int(math.Ceil(cfg.Layout.ViewportWidth))
	height := int(math.Ceil(cfg.Layout.ViewportHeight))

	a := app.New()
	w := a.NewWindow("valor")
	w.Resize(fyne.NewSize(float32(width)+24, float32(height)+80))

	canvasImg := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
	canvasImg.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Enter a fixture path and press Enter")

	pathEntry := widget.NewEntry()
	pathEntry.SetPlaceHolder("testdata/fixture.html")
	pathEntry.OnSubmitted = func(path string) {
		status.SetText("Loading " + path + "...")
		go func() {
			img, summary, err := paint(cfg, logger, path)
			fyne.Do(func() {
				if err != nil {
					logger.Warn("fixture failed", zap.String("path", path), zap.Error(err))
					status.SetText("Error: " + err.Error())
					return
				}
				canvasImg.Image = img
				canvasImg.Refresh()
				status.SetText(summary)
				w.SetTitle("valor - " + path)
			})
		}()
	}

	content := container.NewBorder(pathEntry, status, nil, nil, container.NewScroll(canvasImg))
	w.SetContent(content)
	// The entry is the only focusable widget; Tab freezes without focus.
	w.Canvas().Focus(pathEntry)

	if initial != "" {
		pathEntry.SetText(initial)
		pathEntry.OnSubmitted(initial)
	}
	w.ShowAndRun()
}

// paint builds the fixture, runs its scripts and paints the final layout.
func paint(cfg *config.Config, logger *zap.Logger, path string) (image.Image, string, error) {
	engineOpts, err := cfg.LayoutOptions()
	if err != nil {
		return nil, "", err
	}
	fx, err := fixture.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	doc, err := fx.Build(layouter.WithLogger(logger), layouter.WithEngineOptions(engineOpts...))
	if err != nil {
		return nil, "", err
	}

	var assertions, failed int
	if len(fx.Scripts) > 0 {
		engine := js.New(doc, js.WithLogger(logger), js.WithTimeout(cfg.Suite.ScriptTimeout))
		if err := engine.Execute(fx.Scripts); err != nil {
			return nil, "", err
		}
		assertions, failed = len(engine.Assertions()), len(engine.Failures())
	}

	res := doc.Layout()
	height := cfg.Layout.ViewportHeight
	if r, ok := res.Rect(boxtree.Root); ok {
		height = math.Max(height, r.Height)
	}
	r := render.NewRenderer(
		int(math.Ceil(cfg.Layout.ViewportWidth)), int(math.Ceil(height)),
		render.WithBackground(cfg.BackgroundColor()),
		render.WithOutlines(cfg.Render.Outline),
	)
	r.Render(doc.Tree(), res)

	summary := fmt.Sprintf("%s: %d boxes, %d/%d assertions passed",
		fx.Name, len(res.Rects), assertions-failed, assertions)
	return r.Image(), summary, nil
}
