package model

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrDepthExceeded is returned when a typing or resolution walk hits the
// bounded recursion limit (cyclic supertype graphs, adversarial generics).
var ErrDepthExceeded = errors.New("type walk depth exceeded")

// QueryError is a model query failure. Collectors treat a failed query as
// "no information" and continue; a QueryError never aborts a run.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("model query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func queryErr(op string, err error) *QueryError {
	return &QueryError{Op: op, Err: err}
}

// ResolveTypeName resolves a type name as written at a usage site in unit u
// to a declaration loaded in the program. Resolution order follows the
// language: the name itself as a canonical FQN, a type of the same package,
// single-type imports, then on-demand imports. Returns (nil, nil) if nothing
// declared matches.
func (p *Program) ResolveTypeName(u *Unit, name string) (*TypeDecl, error) {
	if name == "" {
		return nil, nil
	}

	// Fully qualified as written, or already canonical.
	if d := p.decls[name]; d != nil {
		return d, nil
	}

	pkg, simple := splitFQN(name)
	if pkg != "" {
		// Dotted name may be Outer.Inner; resolve the prefix as a type and
		// look up the nested canonical spelling under it.
		outer, err := p.ResolveTypeName(u, pkg)
		if err != nil {
			return nil, err
		}

		if outer != nil {
			if d := p.decls[outer.FQN+NestingSep+simple]; d != nil {
				return d, nil
			}
		}

		if d := p.decls[pkg+NestingSep+simple]; d != nil {
			return d, nil
		}

		return nil, nil
	}

	// Same package.
	if u.Package != "" {
		if d := p.decls[u.Package+"."+simple]; d != nil {
			return d, nil
		}
	} else if d := p.decls[simple]; d != nil {
		return d, nil
	}

	// Nested in an enclosing type of the same unit.
	for _, cand := range p.bySimple[simple] {
		if cand.Unit == u {
			return cand, nil
		}
	}

	// Single-type imports, in source order.
	for _, im := range u.Imports {
		if im.Kind == ImportSingle && im.TypeName() == simple {
			if d := p.decls[im.Path]; d != nil {
				return d, nil
			}
		}
	}

	// On-demand imports.
	for _, im := range u.Imports {
		if im.Kind != ImportOnDemand {
			continue
		}

		if d := p.decls[im.Path+"."+simple]; d != nil {
			return d, nil
		}
	}

	return nil, nil
}

// ResolveRef resolves a TypeRef as produced at a usage site to a loaded
// declaration, or nil.
func (p *Program) ResolveRef(u *Unit, ref TypeRef) (*TypeDecl, error) {
	if ref.IsZero() || ref.Primitive || ref.Void || ref.Null {
		return nil, nil
	}

	if ref.Qualified() {
		if d := p.decls[ref.FQN()]; d != nil {
			return d, nil
		}
		// The qualifier may be a package spelling of a nested type.
		return p.ResolveTypeName(u, ref.Package+"."+ref.Simple)
	}

	return p.ResolveTypeName(u, ref.nestedPath())
}

// EnclosingDecl returns the innermost type declaration containing n, or nil.
func (p *Program) EnclosingDecl(u *Unit, n *sitter.Node) *TypeDecl {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if _, ok := declNodeTypes[cur.Type()]; ok {
			if d := p.declByNode[keyOf(u, cur)]; d != nil {
				return d
			}
		}
	}

	return nil
}

// EnclosingMethodReturn returns the declared return type of the method
// enclosing n. ok is false outside any method, or inside a constructor or
// initializer.
func (p *Program) EnclosingMethodReturn(u *Unit, n *sitter.Node) (TypeRef, bool) {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "method_declaration":
			if typeNode := cur.ChildByFieldName("type"); typeNode != nil {
				return ParseTypeText(u.Text(typeNode)), true
			}

			return VoidRef(), true
		case "constructor_declaration", "static_initializer", "lambda_expression":
			return TypeRef{}, false
		}
	}

	return TypeRef{}, false
}

// superDecl resolves a declaration's superclass to another loaded
// declaration, or nil.
func (p *Program) superDecl(d *TypeDecl) (*TypeDecl, error) {
	if d.Superclass == "" {
		return nil, nil
	}

	super := ParseTypeText(d.Superclass)
	if super.IsZero() {
		return nil, nil
	}

	return p.ResolveRef(d.Unit, super)
}

// ResolveCall resolves a method invocation against loaded declarations.
// It returns the receiver's declaration (nil when the receiver type is not
// declared in the program) and the first declared overload matching the
// call's name and arity (nil when none applies). Supertype walking is
// depth-bounded; exceeding the bound is a QueryError.
func (p *Program) ResolveCall(u *Unit, call *sitter.Node) (*MethodDecl, *TypeDecl, error) {
	if call == nil || call.Type() != "method_invocation" {
		return nil, nil, nil
	}

	nameNode := call.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil, nil
	}

	name := u.Text(nameNode)
	argc := len(Args(call))

	owner, err := p.receiverDecl(u, call)
	if err != nil || owner == nil {
		return nil, nil, err
	}

	cur := owner

	for depth := 0; cur != nil; depth++ {
		if depth >= maxTypeDepth {
			return nil, owner, queryErr("resolve_call", ErrDepthExceeded)
		}

		for _, m := range cur.MethodsNamed(name) {
			if arityMatches(m, argc) {
				return m, owner, nil
			}
		}

		next, err := p.superDecl(cur)
		if err != nil {
			return nil, owner, err
		}

		cur = next
	}

	return nil, owner, nil
}

func arityMatches(m *MethodDecl, argc int) bool {
	if m.Varargs {
		return argc >= len(m.Params)-1
	}

	return argc == len(m.Params)
}

// receiverDecl resolves the declared type of a call's receiver expression.
func (p *Program) receiverDecl(u *Unit, call *sitter.Node) (*TypeDecl, error) {
	object := call.ChildByFieldName("object")

	if object == nil {
		return p.EnclosingDecl(u, call), nil
	}

	switch object.Type() {
	case "this":
		return p.EnclosingDecl(u, call), nil
	case "super":
		if d := p.EnclosingDecl(u, call); d != nil {
			return p.superDecl(d)
		}

		return nil, nil
	}

	objType, err := p.TypeOfExpr(u, object)
	if err != nil {
		return nil, err
	}

	if !objType.IsZero() {
		return p.ResolveRef(u, objType)
	}

	// A bare identifier receiver with no local declaration may name a type
	// (static call).
	if object.Type() == "identifier" || object.Type() == "scoped_identifier" {
		return p.ResolveTypeName(u, u.Text(object))
	}

	return nil, nil
}

// Args returns the argument expression nodes of a method invocation,
// object creation, or explicit constructor invocation.
func Args(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}

	argList := n.ChildByFieldName("arguments")
	if argList == nil {
		return nil
	}

	out := make([]*sitter.Node, 0, argList.NamedChildCount())
	for i := 0; i < int(argList.NamedChildCount()); i++ {
		out = append(out, argList.NamedChild(i))
	}

	return out
}
