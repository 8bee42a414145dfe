package rewrite

import (
	"github.com/derivekit/derivekit/internal/edit"
	"github.com/derivekit/derivekit/internal/resolve"
)

// DefaultSweepLimit bounds how many times a single unit may be patched
// and re-resolved before the run is declared non-terminating.
const DefaultSweepLimit = 10

// Driver runs one unit's rewrite loop to a fixed point. Each sweep
// parses the current text, consults the modifiers in priority order,
// and applies the first non-empty edit batch. Applying a batch
// invalidates every span and binding derived from the old text, so the
// driver always restarts from a fresh parse rather than reusing the
// stale tree.
type Driver struct {
	modifiers  []Modifier
	sweepLimit int
}

// NewDriver returns a Driver over the given modifiers. A sweepLimit of
// zero or less selects DefaultSweepLimit.
func NewDriver(modifiers []Modifier, sweepLimit int) *Driver {
	if sweepLimit <= 0 {
		sweepLimit = DefaultSweepLimit
	}
	return &Driver{modifiers: modifiers, sweepLimit: sweepLimit}
}

// Run rewrites text until no modifier produces edits. It returns the
// final text and whether it differs from the input. Reaching the sweep
// limit without stabilizing is a NonTerminatingRewriteError; it means a
// modifier kept producing edits for code it already generated.
func (d *Driver) Run(path, text string) (string, bool, error) {
	changed := false

	for sweep := 0; sweep < d.sweepLimit; sweep++ {
		unit, err := resolve.Parse(path, text)
		if err != nil {
			return "", false, err
		}

		batch, err := d.scanOnce(unit)
		if err != nil {
			return "", false, err
		}
		if len(batch) == 0 {
			return text, changed, nil
		}

		text = edit.Apply(text, batch)
		changed = true
	}

	return "", false, &NonTerminatingRewriteError{Path: path, Sweeps: d.sweepLimit}
}

// scanOnce consults the modifiers in priority order and returns the
// first non-empty batch. Stopping at the first batch keeps every edit
// in a sweep anchored to a single modifier's view of the unit, which is
// what guarantees the batch is sorted and non-overlapping.
func (d *Driver) scanOnce(unit *resolve.Unit) ([]edit.Edit, error) {
	for _, m := range d.modifiers {
		batch, err := m.Modify(unit)
		if err != nil {
			return nil, err
		}
		if len(batch) > 0 {
			return batch, nil
		}
	}
	return nil, nil
}
