package rewrite

import (
	"testing"

	"github.com/derivekit/derivekit/internal/edit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualityModify(t *testing.T) {
	src := `package geometry

import (
	"github.com/derivekit/derivekit/derive"
)

type Point struct {
	_ derive.Equatable
	X, Y int
}
`
	unit := mustParse(t, src)

	edits, err := EqualityModifier{}.Modify(unit)
	require.NoError(t, err)
	require.Len(t, edits, 3) // imports, hash, equality

	patched := edit.Apply(src, edits)
	assert.Contains(t, patched, `"hash/fnv"`)
	assert.Contains(t, patched, `"fmt"`)
	assert.Contains(t, patched, "func (v Point) Hash() uint64")
	assert.Contains(t, patched, "func (v Point) Equal(other any) bool")
	assert.Contains(t, patched, "return ok && v.X == o.X && v.Y == o.Y")

	// hash accessor precedes the equality operator
	assert.Less(t, indexOf(t, patched, "func (v Point) Hash"), indexOf(t, patched, "func (v Point) Equal"))
}

func TestEqualityGuardsEachMethodIndependently(t *testing.T) {
	src := `package x

import "github.com/derivekit/derivekit/derive"

type T struct {
	_ derive.Equatable
	A int
}

func (t T) Equal(other any) bool { return false }
`
	unit := mustParse(t, src)

	edits, err := EqualityModifier{}.Modify(unit)
	require.NoError(t, err)

	patched := edit.Apply(src, edits)
	assert.Contains(t, patched, "func (v T) Hash() uint64")
	assert.NotContains(t, patched, "func (v T) Equal")
}

func TestEqualityFullyGeneratedIsNoOp(t *testing.T) {
	src := `package x

import "github.com/derivekit/derivekit/derive"

type T struct {
	_ derive.Equatable
	A int
}

func (t T) Equal(other any) bool { return false }

func (t T) Hash() uint64 { return 0 }
`
	unit := mustParse(t, src)

	edits, err := EqualityModifier{}.Modify(unit)
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestEqualityExcludesFields(t *testing.T) {
	src := `package x

import "github.com/derivekit/derivekit/derive"

type T struct {
	_ derive.Equatable ` + "`exclude:\"b\"`" + `
	a, b, c int
}
`
	unit := mustParse(t, src)

	edits, err := EqualityModifier{}.Modify(unit)
	require.NoError(t, err)

	patched := edit.Apply(src, edits)
	assert.Contains(t, patched, "return ok && v.a == o.a && v.c == o.c")
	assert.NotContains(t, patched, "o.b")
}

func TestEqualityCallSuper(t *testing.T) {
	src := `package x

import "github.com/derivekit/derivekit/derive"

type Shape struct{}

type Circle struct {
	_ derive.Equatable ` + "`callSuper:\"true\"`" + `
	Shape
	R int
}
`
	unit := mustParse(t, src)

	edits, err := EqualityModifier{}.Modify(unit)
	require.NoError(t, err)

	patched := edit.Apply(src, edits)
	assert.Contains(t, patched, `fmt.Fprintf(h, "%v/", v.Shape.Hash())`)
	assert.Contains(t, patched, "return ok && v.Shape.Equal(o.Shape) && v.R == o.R")
}

func TestEqualityHashOnlyNeedsNoFmtWithoutInputs(t *testing.T) {
	src := `package x

import "github.com/derivekit/derivekit/derive"

type Unit struct {
	_ derive.Equatable
}
`
	unit := mustParse(t, src)

	edits, err := EqualityModifier{}.Modify(unit)
	require.NoError(t, err)

	patched := edit.Apply(src, edits)
	assert.Contains(t, patched, `"hash/fnv"`)
	assert.NotContains(t, patched, `"fmt"`)
}
