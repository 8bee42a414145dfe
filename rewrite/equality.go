package rewrite

import (
	"github.com/derivekit/derivekit/internal/codegen"
	"github.com/derivekit/derivekit/internal/edit"
	"github.com/derivekit/derivekit/internal/resolve"
)

// EqualityModifier generates a Hash() uint64 accessor and an
// Equal(other any) bool method for every declaration annotated with
// derive.Equatable. Each method is guarded independently: a declaration
// with a hand-written Equal still receives a generated Hash, and vice
// versa.
type EqualityModifier struct{}

func (EqualityModifier) Name() string { return "equality" }

func (EqualityModifier) Modify(unit *resolve.Unit) ([]edit.Edit, error) {
	var edits []edit.Edit
	var needed []string

	for _, decl := range FindAnnotated(unit, equatableMarker) {
		needsHash := !decl.HasMethod("Hash")
		needsEqual := !decl.HasMethod("Equal")
		if !needsHash && !needsEqual {
			continue
		}

		cfg, err := ExtractConfig(unit, decl, equatableMarker)
		if err != nil {
			warnMalformed(unit, decl, err)
			continue
		}

		super := superField(unit, decl, cfg)
		fields := FieldNames(decl, cfg)

		// hash before equality; both anchor at the declaration's end,
		// so the patcher keeps this order
		if needsHash {
			text := codegen.HashMethod(decl.Name, fields, super)
			edits = append(edits, edit.Insert(decl.End, "\n\n"+text))
			needed = append(needed, "hash/fnv")
			if super != "" || len(fields) > 0 {
				needed = append(needed, "fmt")
			}
		}
		if needsEqual {
			text := codegen.EqualMethod(decl.Name, fields, super)
			edits = append(edits, edit.Insert(decl.End, "\n\n"+text))
		}
	}

	if len(edits) == 0 {
		return nil, nil
	}
	return append(importEdits(unit, needed...), edits...), nil
}
