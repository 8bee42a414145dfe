// Package edit provides the text patching primitives used by the rewrite
// engine. All spans are byte offsets into the original source, so a batch
// of edits computed against one snapshot of a file can be applied in a
// single pass even though each splice shifts the text under later edits.
package edit

import "fmt"

// Edit replaces the half-open span [Begin, End) of the original source
// with Content. An insertion has Begin == End; a deletion has empty
// Content. Edits are immutable once created.
type Edit struct {
	Begin   int
	End     int
	Content string
}

// New returns an Edit for the span [begin, end).
// It panics if the span is invalid; spans always come from parsed node
// positions, so an invalid span is a programming error.
func New(begin, end int, content string) Edit {
	if begin < 0 || end < begin {
		panic(fmt.Sprintf("edit: invalid span [%d, %d)", begin, end))
	}
	return Edit{Begin: begin, End: end, Content: content}
}

// Insert returns a pure insertion Edit at offset.
func Insert(offset int, content string) Edit {
	return New(offset, offset, content)
}

// IsInsert reports whether the edit inserts without removing anything.
func (e Edit) IsInsert() bool { return e.Begin == e.End }

func (e Edit) String() string {
	return fmt.Sprintf("[%d, %d) -> %q", e.Begin, e.End, e.Content)
}

// Apply splices edits into source and returns the rewritten string.
//
// Edits must be sorted by ascending Begin in original-source coordinates
// and must not overlap in those coordinates; behavior is undefined
// otherwise. Multiple insertions at the same offset apply in sequence
// order, each landing after the previous one's content.
//
// A running padding tracks the cumulative length delta of the edits
// already applied, shifting each original-coordinate span onto the
// progressively rewritten string. This is the same offset-shift scheme a
// fix engine uses to stack independent fixes on one buffer.
func Apply(source string, edits []Edit) string {
	if len(edits) == 0 {
		return source
	}

	padding := 0
	for _, e := range edits {
		begin := e.Begin + padding
		end := e.End + padding
		source = source[:begin] + e.Content + source[end:]
		padding += len(e.Content) - (e.End - e.Begin)
	}
	return source
}
