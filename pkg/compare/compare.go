package compare

import (
	"errors"
	"fmt"
	"math"
	"sort"

	json "github.com/json-iterator/go"
)

// DefaultEpsilon is three float32 machine epsilons.
const DefaultEpsilon = 3 * 1.1920928955078125e-07

// ErrMismatch is returned when two snapshots differ.
var ErrMismatch = errors.New("layout mismatch")

// Snapshots compares a snapshot against reference JSON.
func Snapshots(got Node, want []byte, epsilon float64) error {
	data, err := json.Marshal(got)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return JSON(data, want, epsilon)
}

// JSON compares two JSON documents structurally. Numbers match when they
// differ by at most epsilon. The error names the path of the first
// difference, e.g. $.children[1].rect.width.
func JSON(got, want []byte, epsilon float64) error {
	var g, w interface{}
	if err := json.Unmarshal(got, &g); err != nil {
		return fmt.Errorf("decode actual: %w", err)
	}
	if err := json.Unmarshal(want, &w); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	return compareValues("$", g, w, epsilon)
}

func compareValues(path string, got, want interface{}, epsilon float64) error {
	switch w := want.(type) {
	case map[string]interface{}:
		g, ok := got.(map[string]interface{})
		if !ok {
			return mismatch(path, got, want)
		}
		for _, k := range unionKeys(g, w) {
			gv, gok := g[k]
			wv, wok := w[k]
			if !gok || !wok {
				return fmt.Errorf("%w at %s.%s: got %v, want %v", ErrMismatch, path, k, gv, wv)
			}
			if err := compareValues(path+"."+k, gv, wv, epsilon); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		g, ok := got.([]interface{})
		if !ok {
			return mismatch(path, got, want)
		}
		if len(g) != len(w) {
			return fmt.Errorf("%w at %s: got %d entries, want %d", ErrMismatch, path, len(g), len(w))
		}
		for i := range w {
			if err := compareValues(fmt.Sprintf("%s[%d]", path, i), g[i], w[i], epsilon); err != nil {
				return err
			}
		}
		return nil
	case float64:
		g, ok := got.(float64)
		if !ok || math.Abs(g-w) > epsilon {
			return mismatch(path, got, want)
		}
		return nil
	default:
		if got != want {
			return mismatch(path, got, want)
		}
		return nil
	}
}

func mismatch(path string, got, want interface{}) error {
	return fmt.Errorf("%w at %s: got %v, want %v", ErrMismatch, path, got, want)
}

func unionKeys(a, b map[string]interface{}) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for _, m := range []map[string]interface{}{b, a} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
