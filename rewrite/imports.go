package rewrite

import (
	"fmt"
	"strings"

	"github.com/derivekit/derivekit/internal/edit"
	"github.com/derivekit/derivekit/internal/resolve"
)

// importEdits returns the insertion needed to make the unit import every
// path in needed, or nil when all are present. With an existing import
// block the lines go just before its closing paren; otherwise a new
// block is inserted after the package clause. At most one edit is
// returned so modifiers can prepend it to their batch without extra
// sorting.
func importEdits(unit *resolve.Unit, needed ...string) []edit.Edit {
	var missing []string
	seen := map[string]bool{}
	for _, path := range needed {
		if seen[path] || unit.HasImport(path) {
			continue
		}
		seen[path] = true
		missing = append(missing, path)
	}
	if len(missing) == 0 {
		return nil
	}

	b := strings.Builder{}
	if unit.ImportInsert >= 0 {
		for _, path := range missing {
			fmt.Fprintf(&b, "\t%q\n", path)
		}
		return []edit.Edit{edit.Insert(unit.ImportInsert, b.String())}
	}

	b.WriteString("\n\nimport (\n")
	for _, path := range missing {
		fmt.Fprintf(&b, "\t%q\n", path)
	}
	b.WriteString(")")
	return []edit.Edit{edit.Insert(unit.PackageClauseEnd, b.String())}
}
