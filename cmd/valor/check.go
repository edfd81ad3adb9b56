package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/BigBadE/valor-sub000/pkg/compare"
	"github.com/BigBadE/valor-sub000/pkg/fixture"
)

func (a *app) compareOptions() (compare.Options, error) {
	opts, err := a.layouterOptions()
	if err != nil {
		return compare.Options{}, err
	}
	return compare.Options{
		Epsilon:         a.cfg.Compare.Epsilon,
		ReferenceSuffix: a.cfg.Suite.ReferenceSuffix,
		Concurrency:     a.cfg.Suite.Concurrency,
		ScriptTimeout:   a.cfg.Suite.ScriptTimeout,
		Layouter:        opts,
		Logger:          a.logger,
	}, nil
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <fixture.html>",
		Short: "Compare a fixture with its reference snapshot and run its scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.compareOptions()
			if err != nil {
				return err
			}
			res := compare.Check(cmd.Context(), args[0], opts)
			printResult(cmd.OutOrStdout(), res)
			return res.Err
		},
	}
}

func newSuiteCmd(a *app) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "suite <dir>",
		Short: "Check every fixture under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := fixture.Discover(args[0])
			if err != nil {
				return err
			}
			opts, err := a.compareOptions()
			if err != nil {
				return err
			}
			if concurrency > 0 {
				opts.Concurrency = concurrency
			}

			results, err := compare.RunSuite(cmd.Context(), paths, opts)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				printResult(cmd.OutOrStdout(), r)
				if !r.Passed() {
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed\n", len(results)-failed, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d fixtures failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&concurrency, "jobs", "j", 0, "fixtures checked in parallel (default from config)")
	return cmd
}

func printResult(w io.Writer, r compare.Result) {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s (%s)", status, r.Fixture, r.Duration.Round(time.Microsecond))
	if !r.Compared {
		fmt.Fprint(w, " [no reference]")
	}
	if r.Err != nil {
		fmt.Fprintf(w, ": %v", r.Err)
	}
	fmt.Fprintln(w)
}
