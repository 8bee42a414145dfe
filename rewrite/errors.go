package rewrite

import "fmt"

// MalformedAnnotationError reports a marker annotation whose arguments
// have an unexpected shape. It is recoverable: the declaration is
// skipped for the pass and scanning continues.
type MalformedAnnotationError struct {
	Path string
	Decl string
	Msg  string
}

func (e *MalformedAnnotationError) Error() string {
	return fmt.Sprintf("%s: malformed annotation on %s: %s", e.Path, e.Decl, e.Msg)
}

// NonTerminatingRewriteError reports a unit whose rewrite loop exceeded
// the sweep budget. It indicates a modifier bug, such as one that keeps
// reporting edits for methods it already inserted, and is fatal for the
// unit.
type NonTerminatingRewriteError struct {
	Path   string
	Sweeps int
}

func (e *NonTerminatingRewriteError) Error() string {
	return fmt.Sprintf("%s: rewrite did not stabilize after %d sweeps", e.Path, e.Sweeps)
}
