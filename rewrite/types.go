package rewrite

import (
	"github.com/derivekit/derivekit/internal/edit"
	"github.com/derivekit/derivekit/internal/resolve"
)

// markerPackagePath is the import path marker annotations must resolve
// to. Declarations referencing a same-named type from any other package
// are ignored.
const markerPackagePath = "github.com/derivekit/derivekit/derive"

// Marker type names recognized by the built-in modifiers.
const (
	stringerMarker  = "Stringer"
	equatableMarker = "Equatable"
)

// A Modifier owns one generated-method family. It inspects a unit's
// declarations and produces insertion edits for every qualifying
// declaration that is missing the family's methods. Modifiers never
// mutate the unit; an empty batch is the normal outcome for a unit with
// nothing left to generate.
//
// Edits in a batch must be sorted by ascending offset in the unit's
// original coordinates and must not overlap.
type Modifier interface {
	Name() string
	Modify(unit *resolve.Unit) ([]edit.Edit, error)
}

// DefaultModifiers returns the built-in modifier set in priority order.
// The driver consults them in this order each sweep; new families are
// added here without touching the driver.
func DefaultModifiers() []Modifier {
	return []Modifier{
		StringerModifier{},
		EqualityModifier{},
	}
}
