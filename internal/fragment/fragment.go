// Package fragment inlines auxiliary file fragments into their owning
// unit before anything parses it. A fragment file marks itself with a
// fragment-of directive and is only ever absorbed by its owner; it is
// never parsed, rewritten, or emitted on its own.
//
// Directives follow the Go toolchain convention: they start in column
// one with no space after the slashes.
//
//	//derive:include points_extra.go      (in the owner)
//	//derive:fragment-of points.go        (in the fragment)
package fragment

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/derivekit/derivekit/internal/edit"
)

const (
	includeDirective    = "//derive:include"
	fragmentOfDirective = "//derive:fragment-of"
)

// MissingFragmentError reports an include directive naming a path that
// cannot be read. Fatal for the owning unit.
type MissingFragmentError struct {
	Owner    string
	Fragment string
	Err      error
}

func (e *MissingFragmentError) Error() string {
	return fmt.Sprintf("%s: cannot read fragment %s: %v", e.Owner, e.Fragment, e.Err)
}

func (e *MissingFragmentError) Unwrap() error { return e.Err }

// MalformedDirectiveError reports an include or fragment-of directive
// whose configuration is inconsistent: ownership cycles, nested
// includes, or a fragment that does not acknowledge its owner.
type MalformedDirectiveError struct {
	Owner    string
	Fragment string
	Msg      string
}

func (e *MalformedDirectiveError) Error() string {
	return fmt.Sprintf("%s: fragment %s: %s", e.Owner, e.Fragment, e.Msg)
}

// ReadFileFunc reads the raw text of a fragment by path.
type ReadFileFunc func(path string) ([]byte, error)

// Result is the outcome of preprocessing one unit.
type Result struct {
	// Text is the fully merged unit text. Unchanged when the unit has
	// no include directives.
	Text string

	// Consumed is true when the unit is itself a fragment; it must not
	// be processed or emitted independently.
	Consumed bool

	// Absorbed lists the resolved paths of fragments merged into this
	// unit, in directive order.
	Absorbed []string
}

// directive is one recognized marker line, with its byte span.
type directive struct {
	name  string
	arg   string
	begin int
	end   int // exclusive, without the trailing newline
}

// Merge preprocesses one unit. A unit declaring itself a fragment is
// reported consumed and left untouched. Otherwise every include
// directive is replaced by the named fragment's text with the
// fragment's own fragment-of line stripped. A fragment is absorbed at
// most once; directives appear at increasing offsets, so the owner-side
// replacements are already in patch order.
func Merge(unitPath, text string, readFile ReadFileFunc) (Result, error) {
	directives := scan(text)

	for _, d := range directives {
		if d.name == fragmentOfDirective {
			return Result{Text: text, Consumed: true}, nil
		}
	}

	var edits []edit.Edit
	var absorbed []string
	seen := map[string]bool{}

	for _, d := range directives {
		if d.name != includeDirective {
			continue
		}

		fragmentPath := filepath.Join(filepath.Dir(unitPath), d.arg)
		if fragmentPath == filepath.Clean(unitPath) {
			return Result{}, &MalformedDirectiveError{
				Owner:    unitPath,
				Fragment: d.arg,
				Msg:      "unit includes itself",
			}
		}
		if seen[fragmentPath] {
			return Result{}, &MalformedDirectiveError{
				Owner:    unitPath,
				Fragment: d.arg,
				Msg:      "fragment included twice",
			}
		}
		seen[fragmentPath] = true

		raw, err := readFile(fragmentPath)
		if err != nil {
			return Result{}, &MissingFragmentError{Owner: unitPath, Fragment: fragmentPath, Err: err}
		}

		cleaned, err := stripOwnerMarker(unitPath, fragmentPath, string(raw))
		if err != nil {
			return Result{}, err
		}

		edits = append(edits, edit.New(d.begin, d.end, cleaned))
		absorbed = append(absorbed, fragmentPath)
	}

	return Result{
		Text:     edit.Apply(text, edits),
		Absorbed: absorbed,
	}, nil
}

// stripOwnerMarker validates a fragment's directives and deletes its
// fragment-of line, leaving every other byte untouched.
func stripOwnerMarker(ownerPath, fragmentPath, text string) (string, error) {
	var marker *directive

	for _, d := range scan(text) {
		switch d.name {
		case includeDirective:
			return "", &MalformedDirectiveError{
				Owner:    ownerPath,
				Fragment: fragmentPath,
				Msg:      "fragments cannot include further fragments",
			}
		case fragmentOfDirective:
			if marker != nil {
				return "", &MalformedDirectiveError{
					Owner:    ownerPath,
					Fragment: fragmentPath,
					Msg:      "multiple fragment-of directives",
				}
			}
			d := d
			marker = &d
		}
	}

	if marker == nil {
		return "", &MalformedDirectiveError{
			Owner:    ownerPath,
			Fragment: fragmentPath,
			Msg:      "missing fragment-of directive",
		}
	}

	declaredOwner := filepath.Join(filepath.Dir(fragmentPath), marker.arg)
	if declaredOwner != filepath.Clean(ownerPath) {
		return "", &MalformedDirectiveError{
			Owner:    ownerPath,
			Fragment: fragmentPath,
			Msg:      fmt.Sprintf("fragment belongs to %s", declaredOwner),
		}
	}

	// delete the directive line together with its newline
	end := marker.end
	if end < len(text) && text[end] == '\n' {
		end++
	}
	return edit.Apply(text, []edit.Edit{edit.New(marker.begin, end, "")}), nil
}

// scan finds directive lines in text. Only whole lines starting in
// column one are recognized.
func scan(text string) []directive {
	var out []directive

	offset := 0
	for offset < len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += offset
		}
		line := text[offset:lineEnd]

		for _, name := range []string{includeDirective, fragmentOfDirective} {
			rest, ok := strings.CutPrefix(line, name+" ")
			if !ok {
				continue
			}
			arg := strings.TrimSpace(rest)
			if arg == "" {
				continue
			}
			out = append(out, directive{name: name, arg: arg, begin: offset, end: lineEnd})
			break
		}

		offset = lineEnd + 1
	}
	return out
}
