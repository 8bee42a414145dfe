package rewrite

import (
	"fmt"
	"strings"

	"github.com/derivekit/derivekit/internal/resolve"
)

// Config is the structured view of one marker annotation's arguments.
// Absent arguments take the zero defaults; only a present argument with
// an unexpected shape is an error.
type Config struct {
	CallSuper bool
	Exclude   map[string]bool
}

// FindAnnotated returns the unit's declarations carrying at least one
// annotation whose resolved origin is this module's marker type named
// markerName. Matching is by import-path identity, so unrelated types
// with the same name never qualify.
func FindAnnotated(unit *resolve.Unit, markerName string) []*resolve.TypeDecl {
	var out []*resolve.TypeDecl
	for _, decl := range unit.Decls {
		if findAnnotation(decl, markerName) != nil {
			out = append(out, decl)
		}
	}
	return out
}

// ExtractConfig reads the named arguments off the declaration's first
// annotation matching markerName. A missing annotation or an argument
// with the wrong shape yields a MalformedAnnotationError.
func ExtractConfig(unit *resolve.Unit, decl *resolve.TypeDecl, markerName string) (Config, error) {
	cfg := Config{Exclude: map[string]bool{}}

	ann := findAnnotation(decl, markerName)
	if ann == nil {
		return cfg, &MalformedAnnotationError{
			Path: unit.Path,
			Decl: decl.Name,
			Msg:  fmt.Sprintf("no %s annotation", markerName),
		}
	}

	if raw, ok := ann.Tag.Lookup("callSuper"); ok {
		switch raw {
		case "true":
			cfg.CallSuper = true
		case "false":
			cfg.CallSuper = false
		default:
			return cfg, &MalformedAnnotationError{
				Path: unit.Path,
				Decl: decl.Name,
				Msg:  fmt.Sprintf("callSuper must be true or false, got %q", raw),
			}
		}
	}

	if raw, ok := ann.Tag.Lookup("exclude"); ok {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			cfg.Exclude[name] = true
		}
	}

	return cfg, nil
}

// FieldNames returns the declaration's instance fields minus the
// config's exclusions, preserving declaration order.
func FieldNames(decl *resolve.TypeDecl, cfg Config) []string {
	var out []string
	for _, name := range decl.Fields {
		if cfg.Exclude[name] {
			continue
		}
		out = append(out, name)
	}
	return out
}

func findAnnotation(decl *resolve.TypeDecl, markerName string) *resolve.Annotation {
	for i := range decl.Annotations {
		ann := &decl.Annotations[i]
		if ann.Path == markerPackagePath && ann.Name == markerName {
			return ann
		}
	}
	return nil
}
