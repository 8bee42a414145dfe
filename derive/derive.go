// Package derive declares the marker types recognized by the derivekit
// generator. A struct opts in to method generation by declaring a blank
// field of a marker type:
//
//	type Point struct {
//		_ derive.Stringer
//		_ derive.Equatable `exclude:"cachedNorm"`
//		X, Y       int
//		cachedNorm float64
//	}
//
// Markers are matched by their resolved import path, so aliasing this
// package is fine and a marker type with the same name from another
// module is ignored.
//
// A marker field's struct tag carries the generation options:
//
//	callSuper:"true"   include the first embedded field as a "super"
//	                   component of the generated method
//	exclude:"a,b"      omit the named fields from generated output
//
// The marker types carry no data and cost nothing at runtime; a blank
// field of a zero-size type does not change the struct's layout.
package derive

// Stringer requests a generated String() string method that renders the
// struct name followed by each field as name=value pairs.
type Stringer struct{}

// Equatable requests a generated Hash() uint64 accessor and an
// Equal(other any) bool method comparing every field in declaration
// order.
type Equatable struct{}
