package rewrite

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/derivekit/derivekit/internal/cache"
	"github.com/derivekit/derivekit/internal/comment"
	"github.com/derivekit/derivekit/internal/config"
	"github.com/derivekit/derivekit/internal/fragment"
	godiffpatch "github.com/sourcegraph/go-diff-patch"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// UnitStatus is the outcome of processing one unit.
type UnitStatus uint8

const (
	// StatusUnchanged means the unit produced no output; the host keeps
	// the original file.
	StatusUnchanged UnitStatus = iota

	// StatusRewritten means the unit has full replacement text.
	StatusRewritten

	// StatusConsumed means the unit is a fragment that was absorbed by
	// its owner and must not be re-emitted.
	StatusConsumed

	// StatusFailed means processing the unit stopped on an error.
	// Other units are unaffected.
	StatusFailed
)

func (s UnitStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusRewritten:
		return "rewritten"
	case StatusConsumed:
		return "consumed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UnitState tracks one unit through the pipeline. A unit's state is
// owned exclusively by its own driver between the merge phase and the
// end of the rewrite phase.
type UnitState struct {
	Path     string // on-disk path
	Rel      string // path relative to the root, the unit's identity
	Original string // raw text as read from disk
	Merged   string // text after fragment merging
	Output   string // full replacement text when Status is StatusRewritten
	Status   UnitStatus
	Err      error
}

// Manager runs the rewrite pipeline over every unit under a root
// directory: discover, merge fragments, drive each unit to a fixed
// point, then emit outputs.
type Manager struct {
	cfg       *config.Config
	modifiers []Modifier
	cache     *cache.Cache

	// units is fully populated before the parallel phase starts and is
	// only read afterwards; each UnitState is owned by its own driver
	units map[string]*UnitState
	order []string
}

// NewManager initializes a Manager. With no modifiers the default set
// is used; tests pass their own.
func NewManager(cfg *config.Config, modifiers ...Modifier) *Manager {
	if len(modifiers) == 0 {
		modifiers = DefaultModifiers()
	}

	m := &Manager{
		cfg:       cfg,
		modifiers: modifiers,
		units:     map[string]*UnitState{},
	}
	if cfg.CacheFile != "" {
		m.cache = cache.Load(cfg.CacheFile)
	}
	return m
}

// DiscoverUnits walks the root and reads every candidate .go file.
// vendor, testdata, hidden, and underscore-prefixed entries are
// skipped, as are files matching the configured ignore globs.
func (m *Manager) DiscoverUnits() error {
	return filepath.WalkDir(m.cfg.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path == m.cfg.Path {
				return nil
			}
			if name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(name) != ".go" || strings.HasPrefix(name, ".") {
			return nil
		}
		for _, pattern := range m.cfg.Ignore {
			if ok, _ := filepath.Match(pattern, name); ok {
				return nil
			}
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(m.cfg.Path, path)
		if err != nil {
			rel = path
		}

		state := &UnitState{
			Path:     path,
			Rel:      rel,
			Original: string(raw),
		}
		m.units[path] = state
		m.order = append(m.order, path)
		return nil
	})
}

// MergeFragments runs the fragment preprocessor over every discovered
// unit. Fragment units are marked consumed; merge failures fail only
// the owning unit.
func (m *Manager) MergeFragments() {
	for _, path := range m.order {
		state := m.units[path]

		result, err := fragment.Merge(path, state.Original, m.readRaw)
		if err != nil {
			state.Status = StatusFailed
			state.Err = err
			continue
		}
		if result.Consumed {
			state.Status = StatusConsumed
			continue
		}
		state.Merged = result.Text

		for _, absorbed := range result.Absorbed {
			comment.Info(state.Rel, fmt.Sprintf("absorbed fragment %s", absorbed))
			// the absorbed unit, when it is under the root, must not be
			// processed independently
			if frag, ok := m.units[absorbed]; ok {
				frag.Status = StatusConsumed
			}
		}
	}
}

// readRaw serves fragment reads from the discovered set when possible,
// falling back to the filesystem for fragments outside the root.
func (m *Manager) readRaw(path string) ([]byte, error) {
	if state, ok := m.units[path]; ok {
		return []byte(state.Original), nil
	}
	return os.ReadFile(path)
}

// Rewrite drives every remaining unit to a fixed point. Units are
// independent after merging, so they are processed in parallel; each
// unit's text and tree are owned by its own driver for the unit's whole
// lifetime. Per-unit errors are recorded, not propagated.
func (m *Manager) Rewrite() {
	group := errgroup.Group{}
	group.SetLimit(m.cfg.Concurrency)

	for _, path := range m.order {
		state := m.units[path]
		if state.Status == StatusConsumed || state.Status == StatusFailed {
			continue
		}

		group.Go(func() error {
			m.rewriteUnit(state)
			return nil
		})
	}

	// the group never returns an error; it only bounds concurrency
	_ = group.Wait()
}

func (m *Manager) rewriteUnit(state *UnitState) {
	if m.cache != nil && m.cache.Stable(state.Rel, state.Merged) {
		state.Status = StatusUnchanged
		return
	}

	driver := NewDriver(m.modifiers, m.cfg.SweepLimit)
	final, _, err := driver.Run(state.Rel, state.Merged)
	if err != nil {
		state.Status = StatusFailed
		state.Err = err
		return
	}

	// fragment merging alone already changes the output, so compare
	// against what is on disk rather than the merged text
	if final == state.Original {
		state.Status = StatusUnchanged
	} else {
		state.Status = StatusRewritten
		state.Output = final
	}

	if m.cache != nil {
		m.cache.MarkStable(state.Rel, final)
	}
}

// WriteOutputs emits every rewritten unit, either in place or as a
// unified diff, and persists the cache. It returns the first I/O error;
// per-unit rewrite failures are reported separately via Results.
func (m *Manager) WriteOutputs() error {
	if !m.cfg.Write {
		// start each run with a fresh diff file
		f, err := os.Create(m.cfg.DiffFile)
		if err != nil {
			return err
		}
		f.Close()
	}

	for _, path := range m.order {
		state := m.units[path]
		if state.Status != StatusRewritten {
			continue
		}

		output := state.Output
		if m.cfg.Format {
			formatted, err := imports.Process(state.Path, []byte(output), nil)
			if err != nil {
				state.Status = StatusFailed
				state.Err = fmt.Errorf("formatting %s: %w", state.Rel, err)
				continue
			}
			output = string(formatted)
		}

		if m.cfg.Write {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(state.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(state.Path, []byte(output), mode); err != nil {
				return err
			}
			continue
		}

		patch := godiffpatch.GeneratePatch(state.Rel, state.Original, output)
		f, err := os.OpenFile(m.cfg.DiffFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(patch); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}

	if m.cache != nil {
		if err := m.cache.Save(); err != nil {
			return err
		}
	}

	if !m.cfg.Write {
		log.Printf("changes written to %s", m.cfg.DiffFile)
	}
	return nil
}

// Results returns every unit's final state in discovery order.
func (m *Manager) Results() []*UnitState {
	out := make([]*UnitState, 0, len(m.order))
	for _, path := range m.order {
		out = append(out, m.units[path])
	}
	return out
}

// FailedUnits returns the units that ended in StatusFailed.
func (m *Manager) FailedUnits() []*UnitState {
	var out []*UnitState
	for _, path := range m.order {
		if state := m.units[path]; state.Status == StatusFailed {
			out = append(out, state)
		}
	}
	return out
}
