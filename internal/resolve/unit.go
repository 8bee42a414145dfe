package resolve

import "reflect"

// Unit is a read-only view of one parsed compilation unit. All offsets
// are byte offsets into Text. The rewrite engine treats a Unit as a
// disposable snapshot: after any edit is applied the Unit is discarded
// and the new text is parsed again.
type Unit struct {
	// Path is the package-relative identity of the unit.
	Path string

	// Text is the exact source the unit was parsed from.
	Text string

	// Decls holds the unit's struct type declarations in source order.
	Decls []*TypeDecl

	// Imports maps each import's local name to its import path.
	Imports map[string]string

	// ImportInsert is the offset just before the closing paren of the
	// unit's import block, or -1 when the unit has no parenthesized
	// import block.
	ImportInsert int

	// PackageClauseEnd is the offset just past the package clause,
	// where a new import declaration can be inserted.
	PackageClauseEnd int
}

// HasImport reports whether the unit already imports path.
func (u *Unit) HasImport(path string) bool {
	for _, p := range u.Imports {
		if p == path {
			return true
		}
	}
	return false
}

// TypeDecl describes one struct type declaration.
type TypeDecl struct {
	Name string

	// Pos and End are the byte span [Pos, End) of the enclosing type
	// declaration. Generated methods are anchored at End.
	Pos int
	End int

	// Fields holds the names of the struct's value fields in
	// declaration order. Blank marker fields and embedded fields are
	// not included.
	Fields []string

	// Embedded is the name of the first embedded field, or "" when the
	// struct embeds nothing. It is the receiver of super calls.
	Embedded string

	// Methods is the set of method names defined on this receiver type
	// anywhere in the unit, by value or pointer receiver.
	Methods map[string]bool

	// Annotations holds the declaration's marker annotations.
	Annotations []Annotation
}

// HasMethod reports whether the declaration already defines the named
// method.
func (d *TypeDecl) HasMethod(name string) bool {
	return d.Methods[name]
}

// Annotation is a marker annotation attached to a declaration, resolved
// to the identity of the marker type it came from.
type Annotation struct {
	// Path is the resolved import path of the package the marker type
	// belongs to. Empty for markers declared in the unit's own package.
	Path string

	// Name is the marker type's name.
	Name string

	// Tag carries the annotation's named arguments.
	Tag reflect.StructTag
}
