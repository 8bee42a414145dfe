// Package resolve turns raw source text into the read-only Unit view the
// rewrite engine consumes. It wraps the standard parser behind a dst
// decorator so declaration spans can be recovered as byte offsets while
// the tree itself stays position-free.
package resolve

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"path"
	"reflect"
	"strconv"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// SyntaxError reports malformed source text. It is fatal for the
// affected unit only.
type SyntaxError struct {
	Path   string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error at offset %d: %s", e.Path, e.Offset, e.Msg)
}

// ResolutionError reports an annotation whose qualifier cannot be bound
// against the unit's import table.
type ResolutionError struct {
	Path string
	Name string
	Msg  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: cannot resolve %s: %s", e.Path, e.Name, e.Msg)
}

// Parse parses text into a Unit. The returned Unit is a snapshot of this
// exact text; callers must re-Parse after any edit is applied.
func Parse(unitPath, text string) (*Unit, error) {
	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	file, err := dec.ParseFile(unitPath, text, parser.ParseComments)
	if err != nil {
		return nil, syntaxError(unitPath, err)
	}

	offset := func(n dst.Node) (int, int) {
		astNode := dec.Ast.Nodes[n]
		if astNode == nil {
			return 0, 0
		}
		return fset.Position(astNode.Pos()).Offset, fset.Position(astNode.End()).Offset
	}

	unit := &Unit{
		Path:         unitPath,
		Text:         text,
		Imports:      map[string]string{},
		ImportInsert: -1,
	}

	astFile, _ := dec.Ast.Nodes[file].(*ast.File)
	if astFile != nil {
		unit.PackageClauseEnd = fset.Position(astFile.Name.End()).Offset
		for _, decl := range astFile.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if ok && gen.Tok == token.IMPORT && gen.Rparen.IsValid() {
				unit.ImportInsert = fset.Position(gen.Rparen).Offset
				break
			}
		}
	}

	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		local := path.Base(importPath)
		if spec.Name != nil {
			local = spec.Name.Name
		}
		unit.Imports[local] = importPath
	}

	methods := methodsByReceiver(file)

	for _, decl := range file.Decls {
		gen, ok := decl.(*dst.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		pos, end := offset(gen)

		for _, spec := range gen.Specs {
			typeSpec, ok := spec.(*dst.TypeSpec)
			if !ok {
				continue
			}
			structType, ok := typeSpec.Type.(*dst.StructType)
			if !ok {
				continue
			}

			td := &TypeDecl{
				Name:    typeSpec.Name.Name,
				Pos:     pos,
				End:     end,
				Methods: methods[typeSpec.Name.Name],
			}
			if td.Methods == nil {
				td.Methods = map[string]bool{}
			}
			if err := collectFields(unit, td, structType); err != nil {
				return nil, err
			}
			unit.Decls = append(unit.Decls, td)
		}
	}

	return unit, nil
}

// collectFields splits a struct's field list into value fields, the
// embedded "super" field, and marker annotations.
func collectFields(unit *Unit, td *TypeDecl, structType *dst.StructType) error {
	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			if td.Embedded == "" {
				td.Embedded = baseTypeName(field.Type)
			}
			continue
		}
		for _, name := range field.Names {
			if name.Name == "_" {
				ann, ok, err := markerAnnotation(unit, field)
				if err != nil {
					return err
				}
				if ok {
					td.Annotations = append(td.Annotations, ann)
				}
				continue
			}
			td.Fields = append(td.Fields, name.Name)
		}
	}
	return nil
}

// markerAnnotation resolves a blank field's type against the unit's
// import table. Blank fields of unqualified or non-named types are not
// annotations and are skipped without error.
func markerAnnotation(unit *Unit, field *dst.Field) (Annotation, bool, error) {
	var ann Annotation

	switch t := field.Type.(type) {
	case *dst.Ident:
		// decorator resolvers store the import path on the ident itself
		ann.Path = t.Path
		ann.Name = t.Name
	case *dst.SelectorExpr:
		qualifier, ok := t.X.(*dst.Ident)
		if !ok {
			return ann, false, nil
		}
		importPath, ok := unit.Imports[qualifier.Name]
		if !ok {
			return ann, false, &ResolutionError{
				Path: unit.Path,
				Name: qualifier.Name + "." + t.Sel.Name,
				Msg:  fmt.Sprintf("package %q is not imported", qualifier.Name),
			}
		}
		ann.Path = importPath
		ann.Name = t.Sel.Name
	default:
		return ann, false, nil
	}

	if field.Tag != nil {
		raw, err := strconv.Unquote(field.Tag.Value)
		if err == nil {
			ann.Tag = reflect.StructTag(raw)
		}
	}
	return ann, true, nil
}

// methodsByReceiver indexes every method declaration in the file by the
// name of its receiver's base type.
func methodsByReceiver(file *dst.File) map[string]map[string]bool {
	methods := map[string]map[string]bool{}
	for _, decl := range file.Decls {
		fn, ok := decl.(*dst.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		recv := baseTypeName(fn.Recv.List[0].Type)
		if recv == "" {
			continue
		}
		if methods[recv] == nil {
			methods[recv] = map[string]bool{}
		}
		methods[recv][fn.Name.Name] = true
	}
	return methods
}

// baseTypeName returns the identifier at the core of a receiver or
// embedded field type, unwrapping pointers and qualifiers.
func baseTypeName(expr dst.Expr) string {
	switch t := expr.(type) {
	case *dst.Ident:
		return t.Name
	case *dst.StarExpr:
		return baseTypeName(t.X)
	case *dst.SelectorExpr:
		return t.Sel.Name
	case *dst.IndexExpr:
		return baseTypeName(t.X)
	case *dst.IndexListExpr:
		return baseTypeName(t.X)
	}
	return ""
}

func syntaxError(unitPath string, err error) error {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return &SyntaxError{
			Path:   unitPath,
			Offset: list[0].Pos.Offset,
			Msg:    list[0].Msg,
		}
	}
	return &SyntaxError{Path: unitPath, Msg: err.Error()}
}
