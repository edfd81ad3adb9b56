package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BigBadE/valor-sub000/internal/config"
	"github.com/BigBadE/valor-sub000/internal/observability"
	"github.com/BigBadE/valor-sub000/pkg/fixture"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

// app carries what every subcommand needs once the root pre-run has loaded
// the configuration.
type app struct {
	cfgFile        string
	viewportWidth  float64
	viewportHeight float64

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds a fresh command tree. Each call has its own flag
// state.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "valor",
		Short:         "valor lays out HTML fixtures and checks them against reference geometry.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "valor version %s\n" .Version}}`)
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().Float64Var(&a.viewportWidth, "width", 0, "viewport width override")
	root.PersistentFlags().Float64Var(&a.viewportHeight, "height", 0, "viewport height override")

	root.AddCommand(
		newLayoutCmd(a),
		newRenderCmd(a),
		newCheckCmd(a),
		newSuiteCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("width") {
		v.Set("layout.viewport_width", a.viewportWidth)
	}
	if cmd.Flags().Changed("height") {
		v.Set("layout.viewport_height", a.viewportHeight)
	}
	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	return nil
}

func (a *app) layouterOptions() ([]layouter.Option, error) {
	engineOpts, err := a.cfg.LayoutOptions()
	if err != nil {
		return nil, err
	}
	return []layouter.Option{
		layouter.WithLogger(a.logger),
		layouter.WithEngineOptions(engineOpts...),
	}, nil
}

// build loads a fixture and applies it to a new layouter.
func (a *app) build(path string) (*fixture.Fixture, *layouter.Layouter, error) {
	fx, err := fixture.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	opts, err := a.layouterOptions()
	if err != nil {
		return nil, nil, err
	}
	doc, err := fx.Build(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", path, err)
	}
	return fx, doc, nil
}
