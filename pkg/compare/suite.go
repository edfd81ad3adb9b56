package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BigBadE/valor-sub000/pkg/fixture"
	"github.com/BigBadE/valor-sub000/pkg/js"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

// ErrAssertion is returned when a fixture script reports a failed assertion.
var ErrAssertion = errors.New("script assertion failed")

// Options controls how fixtures are checked.
type Options struct {
	Epsilon float64
	// ReferenceSuffix replaces a fixture's .html extension to find its
	// reference snapshot.
	ReferenceSuffix string
	Concurrency     int
	ScriptTimeout   time.Duration
	Layouter        []layouter.Option
	Logger          *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.ReferenceSuffix == "" {
		o.ReferenceSuffix = ".chromium.json"
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.ScriptTimeout <= 0 {
		o.ScriptTimeout = js.DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Result is the outcome of checking one fixture.
type Result struct {
	Fixture string
	// Compared is false when the fixture has no reference snapshot.
	Compared   bool
	Assertions []js.Assertion
	Duration   time.Duration
	Err        error
}

func (r Result) Passed() bool { return r.Err == nil }

// ReferencePath is the snapshot path for a fixture.
func ReferencePath(fixturePath, suffix string) string {
	return strings.TrimSuffix(fixturePath, filepath.Ext(fixturePath)) + suffix
}

// Check lays out one fixture, compares it with its reference snapshot when
// one exists and runs its scripts.
func Check(ctx context.Context, path string, opts Options) Result {
	opts = opts.withDefaults()
	start := time.Now()
	res := Result{Fixture: path}
	res.Err = check(ctx, path, opts, &res)
	res.Duration = time.Since(start)
	return res
}

func check(ctx context.Context, path string, opts Options, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fx, err := fixture.LoadFile(path)
	if err != nil {
		return err
	}
	doc, err := fx.Build(append([]layouter.Option{layouter.WithLogger(opts.Logger)}, opts.Layouter...)...)
	if err != nil {
		return err
	}

	refPath := ReferencePath(path, opts.ReferenceSuffix)
	want, err := os.ReadFile(refPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		opts.Logger.Debug("no reference snapshot", zap.String("fixture", path))
	case err != nil:
		return fmt.Errorf("read reference: %w", err)
	default:
		res.Compared = true
		snap, err := Snapshot(doc.Tree(), doc.Layout())
		if err != nil {
			return err
		}
		if err := Snapshots(snap, want, opts.Epsilon); err != nil {
			return err
		}
	}

	if len(fx.Scripts) == 0 {
		return nil
	}
	engine := js.New(doc, js.WithLogger(opts.Logger), js.WithTimeout(opts.ScriptTimeout))
	execErr := engine.Execute(fx.Scripts)
	res.Assertions = engine.Assertions()
	if execErr != nil {
		return execErr
	}
	if failed := engine.Failures(); len(failed) > 0 {
		return fmt.Errorf("%w: %s (%d of %d)", ErrAssertion, failed[0].Name, len(failed), len(res.Assertions))
	}
	return nil
}

// RunSuite checks fixtures concurrently. Results come back in the order of
// paths; a failing fixture does not stop the others. The returned error is
// only set when ctx is cancelled.
func RunSuite(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	results := make([]Result, len(paths))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = Check(groupCtx, path, opts)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	passed := 0
	for _, r := range results {
		if r.Passed() {
			passed++
		}
	}
	opts.Logger.Info("suite complete",
		zap.Int("fixtures", len(paths)), zap.Int("passed", passed), zap.Int("failed", len(paths)-passed))
	return results, nil
}
