package rewrite

import (
	"github.com/derivekit/derivekit/internal/codegen"
	"github.com/derivekit/derivekit/internal/comment"
	"github.com/derivekit/derivekit/internal/edit"
	"github.com/derivekit/derivekit/internal/resolve"
)

// StringerModifier generates a String() string method for every
// declaration annotated with derive.Stringer that does not already
// define one.
type StringerModifier struct{}

func (StringerModifier) Name() string { return "stringer" }

func (StringerModifier) Modify(unit *resolve.Unit) ([]edit.Edit, error) {
	var edits []edit.Edit
	needsFmt := false

	for _, decl := range FindAnnotated(unit, stringerMarker) {
		if decl.HasMethod("String") {
			continue
		}

		cfg, err := ExtractConfig(unit, decl, stringerMarker)
		if err != nil {
			warnMalformed(unit, decl, err)
			continue
		}

		super := superField(unit, decl, cfg)
		fields := FieldNames(decl, cfg)

		text := codegen.StringMethod(decl.Name, fields, super)
		edits = append(edits, edit.Insert(decl.End, "\n\n"+text))
		if super != "" || len(fields) > 0 {
			needsFmt = true
		}
	}

	if len(edits) == 0 {
		return nil, nil
	}
	if needsFmt {
		edits = append(importEdits(unit, "fmt"), edits...)
	}
	return edits, nil
}

// superField resolves the callSuper option against the declaration's
// embedded field. callSuper without an embedded field is a recoverable
// configuration mistake: the super part is skipped with a warning.
func superField(unit *resolve.Unit, decl *resolve.TypeDecl, cfg Config) string {
	if !cfg.CallSuper {
		return ""
	}
	if decl.Embedded == "" {
		comment.Warn(
			comment.Location(unit.Path, unit.Text, decl.Pos),
			"callSuper requested on "+decl.Name+" which embeds nothing; skipping the super component",
		)
		return ""
	}
	return decl.Embedded
}

// warnMalformed surfaces a malformed-annotation error as a warning; the
// declaration is skipped for this pass and scanning continues.
func warnMalformed(unit *resolve.Unit, decl *resolve.TypeDecl, err error) {
	comment.Warn(
		comment.Location(unit.Path, unit.Text, decl.Pos),
		err.Error(),
	)
}
