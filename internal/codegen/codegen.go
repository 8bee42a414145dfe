// Package codegen renders the method bodies the rewrite engine splices
// into source files. Each constructor builds one method for a named
// struct type and returns its full textual definition. The rules for
// functions in this package:
//
// 1. Constructors are pure: they read their arguments and return text,
// nothing else.
// 2. Every generated method starts with the GeneratedMarker comment so
// downstream tools can recognize machine-written code.
// 3. Field order in the output always follows the order the caller
// passes in, which is declaration order after exclusions.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
)

// GeneratedMarker is the comment tag placed on every generated method.
const GeneratedMarker = "derivekit:generated"

// receiver is the receiver variable name used by all generated methods.
const receiver = "v"

// StringMethod renders a String() string method for typeName that
// formats the struct as "Name(f1=..., f2=...)". When superField is
// non-empty the output starts with a "super=" component rendered from
// that embedded field's own String method.
func StringMethod(typeName string, fields []string, superField string) string {
	var parts []string
	var args []jen.Code

	if superField != "" {
		parts = append(parts, "super=%v")
		args = append(args, jen.Id(receiver).Dot(superField).Dot("String").Call())
	}
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s=%%v", field))
		args = append(args, jen.Id(receiver).Dot(field))
	}

	format := typeName + "(" + strings.Join(parts, ", ") + ")"

	var body jen.Code
	if len(args) == 0 {
		body = jen.Return(jen.Lit(format))
	} else {
		callArgs := append([]jen.Code{jen.Lit(format)}, args...)
		body = jen.Return(jen.Id("fmt").Dot("Sprintf").Call(callArgs...))
	}

	return render(method(typeName, "String").Params().String().Block(body))
}

// HashMethod renders a Hash() uint64 accessor for typeName that feeds
// every input through an FNV-1a combinator. When superField is
// non-empty, the embedded field's Hash result is the first input.
func HashMethod(typeName string, fields []string, superField string) string {
	stmts := []jen.Code{
		jen.Id("h").Op(":=").Id("fnv").Dot("New64a").Call(),
	}

	write := func(value jen.Code) jen.Code {
		return jen.Id("fmt").Dot("Fprintf").Call(jen.Id("h"), jen.Lit("%v/"), value)
	}

	if superField != "" {
		stmts = append(stmts, write(jen.Id(receiver).Dot(superField).Dot("Hash").Call()))
	}
	for _, field := range fields {
		stmts = append(stmts, write(jen.Id(receiver).Dot(field)))
	}
	stmts = append(stmts, jen.Return(jen.Id("h").Dot("Sum64").Call()))

	return render(method(typeName, "Hash").Params().Uint64().Block(stmts...))
}

// EqualMethod renders an Equal(other any) bool method for typeName. The
// body asserts other to the receiver type and compares every field in
// order with short-circuit evaluation. When superField is non-empty the
// embedded field's Equal method is the first conjunct after the type
// assertion.
func EqualMethod(typeName string, fields []string, superField string) string {
	// with nothing to compare, the assertion result is the whole answer
	// and binding o would leave it unused
	asserted := jen.Id("o")
	if superField == "" && len(fields) == 0 {
		asserted = jen.Id("_")
	}

	cond := jen.Id("ok")
	if superField != "" {
		cond = cond.Op("&&").Id(receiver).Dot(superField).Dot("Equal").Call(jen.Id("o").Dot(superField))
	}
	for _, field := range fields {
		cond = cond.Op("&&").Id(receiver).Dot(field).Op("==").Id("o").Dot(field)
	}

	return render(method(typeName, "Equal").Params(jen.Id("other").Any()).Bool().Block(
		jen.List(asserted, jen.Id("ok")).Op(":=").Id("other").Assert(jen.Id(typeName)),
		jen.Return(cond),
	))
}

// method starts a marked method statement for typeName.
func method(typeName, name string) *jen.Statement {
	return jen.Comment(GeneratedMarker).Line().
		Func().Params(jen.Id(receiver).Id(typeName)).Id(name)
}

func render(stmt *jen.Statement) string {
	buf := &bytes.Buffer{}
	if err := stmt.Render(buf); err != nil {
		// the shapes built here always render
		panic(fmt.Sprintf("codegen: render failed: %v", err))
	}
	return buf.String()
}
