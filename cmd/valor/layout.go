package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/compare"
	"github.com/BigBadE/valor-sub000/pkg/js"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
	"github.com/BigBadE/valor-sub000/pkg/render"
)

func newLayoutCmd(a *app) *cobra.Command {
	var out string
	var runScripts bool
	cmd := &cobra.Command{
		Use:   "layout <fixture.html>",
		Short: "Print the geometry snapshot of a fixture as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, doc, err := a.build(args[0])
			if err != nil {
				return err
			}
			if runScripts {
				if err := a.runScripts(doc, fx.Scripts); err != nil {
					return err
				}
			}
			snap, err := compare.Snapshot(doc.Tree(), doc.Layout())
			if err != nil {
				return err
			}
			data, err := compare.Marshal(snap)
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			a.logger.Info("snapshot written", zap.String("path", out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the snapshot to a file instead of stdout")
	cmd.Flags().BoolVar(&runScripts, "scripts", false, "run the fixture's scripts before taking the snapshot")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var out, golden, diff string
	var tolerance int
	cmd := &cobra.Command{
		Use:   "render <fixture.html>",
		Short: "Paint a fixture to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, doc, err := a.build(args[0])
			if err != nil {
				return err
			}
			r := a.paint(doc)
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}
			if err := r.SavePNG(out); err != nil {
				return fmt.Errorf("save %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if golden == "" {
				return nil
			}
			want, err := compare.LoadPNG(golden)
			if err != nil {
				return err
			}
			res, err := compare.Images(r.Image(), want, compare.ImageOptions{Tolerance: tolerance})
			if err != nil {
				return err
			}
			if res.Match {
				return nil
			}
			if diff != "" && res.Diff != nil {
				if err := compare.SavePNG(res.Diff, diff); err != nil {
					return err
				}
			}
			return fmt.Errorf("%w: %d of %d pixels differ (max channel difference %d)",
				compare.ErrMismatch, res.DifferentPixels, res.TotalPixels, res.MaxDifference)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG (default: fixture path with .png)")
	cmd.Flags().StringVar(&golden, "golden", "", "compare the output with this PNG")
	cmd.Flags().StringVar(&diff, "diff", "", "write a diff image here when the golden comparison fails")
	cmd.Flags().IntVar(&tolerance, "tolerance", 2, "per-channel tolerance for the golden comparison")
	return cmd
}

// paint renders doc onto a canvas as wide as the viewport and tall enough
// for the document.
func (a *app) paint(doc *layouter.Layouter) *render.Renderer {
	res := doc.Layout()
	height := a.cfg.Layout.ViewportHeight
	if r, ok := res.Rect(boxtree.Root); ok {
		height = math.Max(height, r.Height)
	}
	r := render.NewRenderer(
		int(math.Ceil(a.cfg.Layout.ViewportWidth)), int(math.Ceil(height)),
		render.WithBackground(a.cfg.BackgroundColor()),
		render.WithOutlines(a.cfg.Render.Outline),
	)
	r.Render(doc.Tree(), res)
	return r
}

func (a *app) runScripts(doc *layouter.Layouter, scripts []string) error {
	engine := js.New(doc, js.WithLogger(a.logger), js.WithTimeout(a.cfg.Suite.ScriptTimeout))
	if err := engine.Execute(scripts); err != nil {
		return err
	}
	for _, f := range engine.Failures() {
		a.logger.Warn("assertion failed", zap.String("name", f.Name), zap.String("details", f.Details))
	}
	return nil
}
