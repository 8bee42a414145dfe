package rewrite

import (
	"strings"
	"testing"

	"github.com/derivekit/derivekit/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *resolve.Unit {
	t.Helper()
	unit, err := resolve.Parse("test.go", src)
	require.NoError(t, err)
	return unit
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "%q not found", needle)
	return idx
}

func TestFindAnnotatedMatchesByResolvedIdentity(t *testing.T) {
	src := `package x

import (
	blessed "github.com/derivekit/derivekit/derive"
	derive "example.com/impostor/derive"
)

type Real struct {
	_ blessed.Stringer
	A int
}

type Impostor struct {
	_ derive.Stringer
	B int
}

type Unmarked struct {
	C int
}
`
	unit := mustParse(t, src)

	found := FindAnnotated(unit, "Stringer")
	require.Len(t, found, 1)
	assert.Equal(t, "Real", found[0].Name)
}

func TestFindAnnotatedDistinguishesMarkers(t *testing.T) {
	src := `package x

import "github.com/derivekit/derivekit/derive"

type OnlyString struct {
	_ derive.Stringer
	A int
}

type OnlyEqual struct {
	_ derive.Equatable
	B int
}

type Both struct {
	_ derive.Stringer
	_ derive.Equatable
	C int
}
`
	unit := mustParse(t, src)

	stringers := FindAnnotated(unit, "Stringer")
	require.Len(t, stringers, 2)
	assert.Equal(t, "OnlyString", stringers[0].Name)
	assert.Equal(t, "Both", stringers[1].Name)

	equatables := FindAnnotated(unit, "Equatable")
	require.Len(t, equatables, 2)
	assert.Equal(t, "OnlyEqual", equatables[0].Name)
	assert.Equal(t, "Both", equatables[1].Name)
}

func TestExtractConfig(t *testing.T) {
	tests := []struct {
		name          string
		tag           string
		wantCallSuper bool
		wantExclude   []string
		wantErr       string
	}{
		{
			name: "absent_arguments_take_defaults",
			tag:  "",
		},
		{
			name:          "call_super_true",
			tag:           "`callSuper:\"true\"`",
			wantCallSuper: true,
		},
		{
			name: "call_super_false",
			tag:  "`callSuper:\"false\"`",
		},
		{
			name:    "call_super_not_a_bool_literal",
			tag:     "`callSuper:\"yes\"`",
			wantErr: "callSuper must be true or false",
		},
		{
			name:        "exclude_list",
			tag:         "`exclude:\"b, c\"`",
			wantExclude: []string{"b", "c"},
		},
		{
			name: "unknown_arguments_are_ignored",
			tag:  "`frobnicate:\"sure\"`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `package x

import "github.com/derivekit/derivekit/derive"

type T struct {
	_ derive.Stringer ` + tt.tag + `
	a, b, c int
}
`
			unit := mustParse(t, src)
			require.Len(t, unit.Decls, 1)

			cfg, err := ExtractConfig(unit, unit.Decls[0], "Stringer")
			if tt.wantErr != "" {
				require.Error(t, err)
				var malformed *MalformedAnnotationError
				require.ErrorAs(t, err, &malformed)
				assert.Contains(t, malformed.Msg, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantCallSuper, cfg.CallSuper)
			assert.Len(t, cfg.Exclude, len(tt.wantExclude))
			for _, name := range tt.wantExclude {
				assert.True(t, cfg.Exclude[name], "expected %s excluded", name)
			}
		})
	}
}

func TestExtractConfigMissingAnnotation(t *testing.T) {
	unit := mustParse(t, "package x\n\ntype T struct{ A int }\n")
	require.Len(t, unit.Decls, 1)

	_, err := ExtractConfig(unit, unit.Decls[0], "Stringer")
	var malformed *MalformedAnnotationError
	require.ErrorAs(t, err, &malformed)
}

func TestFieldNamesExclusionPreservesOrder(t *testing.T) {
	src := `package x

import "github.com/derivekit/derivekit/derive"

type T struct {
	_ derive.Equatable ` + "`exclude:\"b\"`" + `
	a, b, c int
}
`
	unit := mustParse(t, src)
	cfg, err := ExtractConfig(unit, unit.Decls[0], "Equatable")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, FieldNames(unit.Decls[0], cfg))
}
