package fragment

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readerFor(files map[string]string) ReadFileFunc {
	return func(path string) ([]byte, error) {
		text, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
		}
		return []byte(text), nil
	}
}

func TestMergeAbsorbsFragment(t *testing.T) {
	owner := `package geometry

//derive:include point_extra.go

type Point struct {
	X, Y int
}
`
	fragmentText := `//derive:fragment-of point.go

type Distance struct {
	D float64
}
`
	read := readerFor(map[string]string{
		"geometry/point_extra.go": fragmentText,
	})

	result, err := Merge("geometry/point.go", owner, read)
	require.NoError(t, err)

	assert.False(t, result.Consumed)
	assert.Equal(t, []string{"geometry/point_extra.go"}, result.Absorbed)

	assert.Contains(t, result.Text, "type Distance struct")
	assert.Contains(t, result.Text, "type Point struct")
	assert.NotContains(t, result.Text, "derive:include")
	assert.NotContains(t, result.Text, "derive:fragment-of")
}

func TestMergeFragmentUnitIsConsumed(t *testing.T) {
	text := `//derive:fragment-of point.go

type Distance struct{}
`
	result, err := Merge("geometry/point_extra.go", text, readerFor(nil))
	require.NoError(t, err)

	assert.True(t, result.Consumed)
	assert.Equal(t, text, result.Text)
	assert.Empty(t, result.Absorbed)
}

func TestMergeNoDirectivesPassesThrough(t *testing.T) {
	text := "package x\n\ntype T struct{}\n"
	result, err := Merge("x/x.go", text, readerFor(nil))
	require.NoError(t, err)

	assert.False(t, result.Consumed)
	assert.Equal(t, text, result.Text)
}

func TestMergeMultipleFragmentsInDirectiveOrder(t *testing.T) {
	owner := `package geometry

//derive:include a.go

type Mid struct{}

//derive:include b.go
`
	read := readerFor(map[string]string{
		"geometry/a.go": "//derive:fragment-of point.go\ntype A struct{}\n",
		"geometry/b.go": "//derive:fragment-of point.go\ntype B struct{}\n",
	})

	result, err := Merge("geometry/point.go", owner, read)
	require.NoError(t, err)

	aIdx := indexOf(t, result.Text, "type A struct")
	midIdx := indexOf(t, result.Text, "type Mid struct")
	bIdx := indexOf(t, result.Text, "type B struct")
	assert.Less(t, aIdx, midIdx)
	assert.Less(t, midIdx, bIdx)
	assert.Equal(t, []string{"geometry/a.go", "geometry/b.go"}, result.Absorbed)
}

func TestMergeMissingFragment(t *testing.T) {
	owner := "package x\n\n//derive:include gone.go\n"

	_, err := Merge("x/x.go", owner, readerFor(nil))
	require.Error(t, err)

	var missing *MissingFragmentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "x/x.go", missing.Owner)
	assert.Equal(t, "x/gone.go", missing.Fragment)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMergeRejectsMalformedConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		files   map[string]string
		wantMsg string
	}{
		{
			name:    "self_include",
			owner:   "package x\n\n//derive:include x.go\n",
			wantMsg: "unit includes itself",
		},
		{
			name:  "fragment_missing_marker",
			owner: "package x\n\n//derive:include f.go\n",
			files: map[string]string{
				"x/f.go": "type F struct{}\n",
			},
			wantMsg: "missing fragment-of directive",
		},
		{
			name:  "fragment_owned_by_someone_else",
			owner: "package x\n\n//derive:include f.go\n",
			files: map[string]string{
				"x/f.go": "//derive:fragment-of other.go\ntype F struct{}\n",
			},
			wantMsg: "fragment belongs to",
		},
		{
			name:  "nested_include",
			owner: "package x\n\n//derive:include f.go\n",
			files: map[string]string{
				"x/f.go": "//derive:fragment-of x.go\n//derive:include g.go\n",
			},
			wantMsg: "fragments cannot include further fragments",
		},
		{
			name:  "duplicate_include",
			owner: "package x\n\n//derive:include f.go\n//derive:include f.go\n",
			files: map[string]string{
				"x/f.go": "//derive:fragment-of x.go\ntype F struct{}\n",
			},
			wantMsg: "fragment included twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge("x/x.go", tt.owner, readerFor(tt.files))
			require.Error(t, err)

			var malformed *MalformedDirectiveError
			require.ErrorAs(t, err, &malformed)
			assert.Contains(t, malformed.Msg, tt.wantMsg)
		})
	}
}

func TestMergeKeepsSurroundingBytesIntact(t *testing.T) {
	owner := "package x\n\n//derive:include f.go\n\nvar tail = 1\n"
	read := readerFor(map[string]string{
		"x/f.go": "//derive:fragment-of x.go\nvar head = 2\n",
	})

	result, err := Merge("x/x.go", owner, read)
	require.NoError(t, err)

	assert.Equal(t, "package x\n\nvar head = 2\n\n\nvar tail = 1\n", result.Text)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "%q not in merged text", needle)
	return idx
}
