package model

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// TypeOfExpr computes the declared or inferred type of an expression node.
// The zero TypeRef means "no information"; that is a normal answer, not an
// error. Errors are reserved for genuine query failures (depth bounds).
func (p *Program) TypeOfExpr(u *Unit, n *sitter.Node) (TypeRef, error) {
	return p.typeOfExpr(u, n, 0)
}

func (p *Program) typeOfExpr(u *Unit, n *sitter.Node, depth int) (TypeRef, error) {
	if n == nil {
		return TypeRef{}, nil
	}

	if depth >= maxTypeDepth {
		return TypeRef{}, queryErr("type_of_expr", ErrDepthExceeded)
	}

	// A rewritten node has the type of its replacement literal.
	if lit, ok := p.ReplacementFor(u, n); ok {
		return lit.Type, nil
	}

	switch n.Type() {
	case "decimal_integer_literal", "hex_integer_literal",
		"octal_integer_literal", "binary_integer_literal":
		if text := u.Text(n); strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L") {
			return PrimitiveRef("long"), nil
		}

		return PrimitiveRef("int"), nil

	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if text := u.Text(n); strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
			return PrimitiveRef("float"), nil
		}

		return PrimitiveRef("double"), nil

	case "true", "false":
		return PrimitiveRef("boolean"), nil

	case "character_literal":
		return PrimitiveRef("char"), nil

	case "string_literal", "text_block":
		return StringRef(), nil

	case "null_literal":
		return NullRef(), nil

	case "this":
		if d := p.EnclosingDecl(u, n); d != nil {
			return d.Ref(), nil
		}

		return TypeRef{}, nil

	case "identifier":
		return p.typeOfIdentifier(u, n)

	case "field_access":
		return p.typeOfFieldAccess(u, n, depth)

	case "array_access":
		arr, err := p.typeOfExpr(u, n.ChildByFieldName("array"), depth+1)
		if err != nil || arr.IsZero() {
			return TypeRef{}, err
		}

		return arr.Elem(), nil

	case "method_invocation":
		m, owner, err := p.ResolveCall(u, n)
		if err != nil || m == nil {
			return TypeRef{}, err
		}

		return p.anchorRef(declScope(owner, u), m.Return), nil

	case "object_creation_expression":
		if typeNode := n.ChildByFieldName("type"); typeNode != nil {
			return ParseTypeText(u.Text(typeNode)), nil
		}

		return TypeRef{}, nil

	case "array_creation_expression":
		return p.typeOfArrayCreation(u, n), nil

	case "cast_expression":
		if typeNode := n.ChildByFieldName("type"); typeNode != nil {
			return ParseTypeText(u.Text(typeNode)), nil
		}

		return TypeRef{}, nil

	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return p.typeOfExpr(u, n.NamedChild(0), depth+1)
		}

		return TypeRef{}, nil

	case "assignment_expression":
		return p.typeOfExpr(u, n.ChildByFieldName("left"), depth+1)

	case "binary_expression":
		return p.typeOfBinary(u, n, depth)

	case "instanceof_expression":
		return PrimitiveRef("boolean"), nil

	case "unary_expression":
		return p.typeOfUnary(u, n, depth)

	case "update_expression":
		if n.NamedChildCount() > 0 {
			return p.typeOfExpr(u, n.NamedChild(0), depth+1)
		}

		return TypeRef{}, nil

	case "ternary_expression":
		t, err := p.typeOfExpr(u, n.ChildByFieldName("consequence"), depth+1)
		if err != nil || !t.IsZero() {
			return t, err
		}

		return p.typeOfExpr(u, n.ChildByFieldName("alternative"), depth+1)

	case "class_literal":
		return ClassRef("java.lang", "Class"), nil

	default:
		return TypeRef{}, nil
	}
}

// typeOfIdentifier resolves a bare identifier against enclosing scopes:
// locals, parameters, for/catch/resource variables, then fields of the
// enclosing types.
func (p *Program) typeOfIdentifier(u *Unit, n *sitter.Node) (TypeRef, error) {
	name := u.Text(n)

	if typeText, found := findLocalDeclType(u, n, name); found {
		return p.anchorRef(u, ParseTypeText(typeText)), nil
	}

	for d := p.EnclosingDecl(u, n); d != nil; {
		if f := d.Field(name); f != nil {
			return p.anchorRef(declScope(d, u), f.Type), nil
		}

		next, err := p.superDecl(d)
		if err != nil {
			return TypeRef{}, err
		}

		d = next
	}

	return TypeRef{}, nil
}

// anchorRef qualifies a bare parsed type against the declarations visible
// from unit u. References that are already qualified, primitive, or that
// name no loaded declaration pass through unchanged.
func (p *Program) anchorRef(u *Unit, ref TypeRef) TypeRef {
	if u == nil || ref.IsZero() || ref.Primitive || ref.Void || ref.Null {
		return ref
	}

	if ref.Qualified() || ref.Declaring != nil {
		return ref
	}

	d, err := p.ResolveTypeName(u, ref.Simple)
	if err != nil || d == nil {
		return ref
	}

	anchored := d.Ref()
	anchored.ArrayDims = ref.ArrayDims
	anchored.Args = ref.Args

	return anchored
}

// declScope returns the unit a member's declared type should resolve in:
// the unit that declares the member's owner, falling back to the use site.
func declScope(d *TypeDecl, fallback *Unit) *Unit {
	if d != nil && d.Unit != nil {
		return d.Unit
	}

	return fallback
}

func (p *Program) typeOfFieldAccess(u *Unit, n *sitter.Node, depth int) (TypeRef, error) {
	object := n.ChildByFieldName("object")
	fieldNode := n.ChildByFieldName("field")

	if object == nil || fieldNode == nil {
		return TypeRef{}, nil
	}

	name := u.Text(fieldNode)

	// Array .length is the only member arrays have.
	objType, err := p.typeOfExpr(u, object, depth+1)
	if err != nil {
		return TypeRef{}, err
	}

	if objType.IsArray() && name == "length" {
		return PrimitiveRef("int"), nil
	}

	owner, err := p.ResolveRef(u, objType)
	if err != nil {
		return TypeRef{}, err
	}

	if owner == nil && (object.Type() == "identifier" || object.Type() == "scoped_identifier") {
		// A static access through a type name.
		owner, err = p.ResolveTypeName(u, u.Text(object))
		if err != nil {
			return TypeRef{}, err
		}
	}

	for d := owner; d != nil; {
		if f := d.Field(name); f != nil {
			return p.anchorRef(declScope(d, u), f.Type), nil
		}

		next, err := p.superDecl(d)
		if err != nil {
			return TypeRef{}, err
		}

		d = next
	}

	return TypeRef{}, nil
}

func (p *Program) typeOfArrayCreation(u *Unit, n *sitter.Node) TypeRef {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return TypeRef{}
	}

	base := ParseTypeText(u.Text(typeNode))
	dims := 0

	for i := 0; i < int(n.NamedChildCount()); i++ {
		switch n.NamedChild(i).Type() {
		case "dimensions_expr":
			dims++
		case "dimensions":
			dims += strings.Count(u.Text(n.NamedChild(i)), "[")
		}
	}

	if dims == 0 {
		dims = 1
	}

	return base.WithArrayDims(base.ArrayDims + dims)
}

func (p *Program) typeOfBinary(u *Unit, n *sitter.Node, depth int) (TypeRef, error) {
	op := ""
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = opNode.Type()
	}

	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return PrimitiveRef("boolean"), nil
	}

	left, err := p.typeOfExpr(u, n.ChildByFieldName("left"), depth+1)
	if err != nil {
		return TypeRef{}, err
	}

	right, err := p.typeOfExpr(u, n.ChildByFieldName("right"), depth+1)
	if err != nil {
		return TypeRef{}, err
	}

	if op == "+" && (left.IsString() || right.IsString()) {
		return StringRef(), nil
	}

	// Numeric promotion, roughly: widest operand wins, int by default.
	for _, wide := range []string{"double", "float", "long"} {
		if (left.Primitive && left.Simple == wide) || (right.Primitive && right.Simple == wide) {
			return PrimitiveRef(wide), nil
		}
	}

	if left.IsNumeric() || right.IsNumeric() {
		return PrimitiveRef("int"), nil
	}

	return TypeRef{}, nil
}

func (p *Program) typeOfUnary(u *Unit, n *sitter.Node, depth int) (TypeRef, error) {
	opNode := n.ChildByFieldName("operator")
	operand := n.ChildByFieldName("operand")

	if opNode != nil && opNode.Type() == "!" {
		return PrimitiveRef("boolean"), nil
	}

	t, err := p.typeOfExpr(u, operand, depth+1)
	if err != nil {
		return TypeRef{}, err
	}

	if t.IsZero() {
		return PrimitiveRef("int"), nil
	}

	return t, nil
}

// findLocalDeclType walks enclosing scopes looking for the declaration of a
// local variable, parameter, loop variable, catch parameter, or
// try-with-resources resource named name. It returns the declared type's
// source text.
func findLocalDeclType(u *Unit, from *sitter.Node, name string) (string, bool) {
	for cur := from.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "block", "constructor_body":
			if text, ok := scanBlockForLocal(u, cur, name); ok {
				return text, true
			}

		case "method_declaration", "constructor_declaration":
			if text, ok := scanParamsForName(u, cur.ChildByFieldName("parameters"), name); ok {
				return text, true
			}

		case "enhanced_for_statement":
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil && u.Text(nameNode) == name {
				if typeNode := cur.ChildByFieldName("type"); typeNode != nil {
					return u.Text(typeNode), true
				}
			}

		case "for_statement":
			if init := cur.ChildByFieldName("init"); init != nil && init.Type() == "local_variable_declaration" {
				if text, ok := declaratorTypeFor(u, init, name); ok {
					return text, true
				}
			}

		case "catch_clause":
			if text, ok := scanCatchForName(u, cur, name); ok {
				return text, true
			}

		case "try_with_resources_statement":
			if text, ok := scanResourcesForName(u, cur, name); ok {
				return text, true
			}
		}
	}

	return "", false
}

func scanBlockForLocal(u *Unit, block *sitter.Node, name string) (string, bool) {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)
		if stmt.Type() != "local_variable_declaration" {
			continue
		}

		if text, ok := declaratorTypeFor(u, stmt, name); ok {
			return text, true
		}
	}

	return "", false
}

func declaratorTypeFor(u *Unit, decl *sitter.Node, name string) (string, bool) {
	typeNode := decl.ChildByFieldName("type")
	if typeNode == nil {
		return "", false
	}

	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		if nameNode := child.ChildByFieldName("name"); nameNode != nil && u.Text(nameNode) == name {
			return u.Text(typeNode), true
		}
	}

	return "", false
}

func scanParamsForName(u *Unit, params *sitter.Node, name string) (string, bool) {
	if params == nil {
		return "", false
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)

		switch param.Type() {
		case "formal_parameter":
			if nameNode := param.ChildByFieldName("name"); nameNode != nil && u.Text(nameNode) == name {
				if typeNode := param.ChildByFieldName("type"); typeNode != nil {
					return u.Text(typeNode), true
				}
			}
		case "spread_parameter":
			for j := 0; j < int(param.NamedChildCount()); j++ {
				child := param.NamedChild(j)
				if child.Type() != "variable_declarator" {
					continue
				}

				if nameNode := child.ChildByFieldName("name"); nameNode != nil && u.Text(nameNode) == name {
					return u.Text(param.NamedChild(0)) + "[]", true
				}
			}
		}
	}

	return "", false
}

func scanCatchForName(u *Unit, clause *sitter.Node, name string) (string, bool) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		if child.Type() != "catch_formal_parameter" {
			continue
		}

		var typeText string

		for j := 0; j < int(child.NamedChildCount()); j++ {
			gc := child.NamedChild(j)

			switch gc.Type() {
			case "catch_type":
				// Multi-catch unions carry no single type.
				if gc.NamedChildCount() == 1 {
					typeText = u.Text(gc.NamedChild(0))
				}
			case "identifier":
				if u.Text(gc) == name && typeText != "" {
					return typeText, true
				}
			}
		}
	}

	return "", false
}

func scanResourcesForName(u *Unit, try *sitter.Node, name string) (string, bool) {
	for i := 0; i < int(try.NamedChildCount()); i++ {
		spec := try.NamedChild(i)
		if spec.Type() != "resource_specification" {
			continue
		}

		for j := 0; j < int(spec.NamedChildCount()); j++ {
			res := spec.NamedChild(j)
			if res.Type() != "resource" {
				continue
			}

			if nameNode := res.ChildByFieldName("name"); nameNode != nil && u.Text(nameNode) == name {
				if typeNode := res.ChildByFieldName("type"); typeNode != nil {
					return u.Text(typeNode), true
				}
			}
		}
	}

	return "", false
}
