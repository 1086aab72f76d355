package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/common"
	"slicestub/internal/model"
)

// constantRewrite is one planned replacement of an unresolved constant
// identifier with a literal.
type constantRewrite struct {
	unit *model.Unit
	node *sitter.Node
	lit  model.Literal
}

// normalizeConstants is the pre-pass that rewrites unresolved ALL-CAPS
// identifiers in value position to literals, so later passes never stub
// them as fields. It runs in two phases: first collect every target node,
// then apply all rewrites, so traversal never observes its own mutations.
func (c *Collector) normalizeConstants() error {
	var rewrites []constantRewrite

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if n.Type() != "identifier" {
			return
		}

		name := u.Text(n)
		if !common.IsScreamingCase(name) {
			return
		}

		if !c.inValuePosition(n) {
			return
		}

		if !c.identifierUnresolved(u, n, name) {
			return
		}

		expected, ok := c.inferExpectedType(u, n)
		if !ok {
			return
		}

		lit, ok := literalFor(name, expected)
		if !ok {
			// Reference types other than String are left for the field
			// collector.
			return
		}

		rewrites = append(rewrites, constantRewrite{unit: u, node: n, lit: lit})
	})

	for _, rw := range rewrites {
		c.prog.ReplaceNode(rw.unit, rw.node, rw.lit)
		c.res.Diagnostics.AddInfo("constant_normalized",
			"rewrote "+rw.unit.Text(rw.node)+" to "+rw.lit.Text,
			"", rw.unit.Text(rw.node))
	}

	return nil
}

// inValuePosition reports whether an identifier is read as a value: not a
// declaration name, not the member half of a field access or call, not a
// write target, and never a type position (type positions are distinct node
// kinds in the grammar and additionally excluded here).
func (c *Collector) inValuePosition(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}

	switch parent.Type() {
	case "variable_declarator":
		// The declarator's name is a declaration, its value is a value.
		if nameNode := parent.ChildByFieldName("name"); nameNode != nil && nameNode.Equal(n) {
			return false
		}

		return true

	case "field_access":
		// Only the receiver side is an independent value.
		if object := parent.ChildByFieldName("object"); object != nil && object.Equal(n) {
			return false // a receiver is a reference, not a constant usage
		}

		return false

	case "method_invocation":
		// The name is a member reference; the receiver is not a constant.
		return false

	case "assignment_expression":
		if left := parent.ChildByFieldName("left"); left != nil && left.Equal(n) {
			return false
		}

		return true

	case "superclass", "super_interfaces", "extends_interfaces", "throws",
		"catch_type", "type_arguments", "generic_type", "scoped_type_identifier",
		"import_declaration", "package_declaration", "scoped_identifier",
		"method_declaration", "constructor_declaration", "class_declaration",
		"interface_declaration", "enum_declaration", "annotation_type_declaration",
		"formal_parameter", "spread_parameter", "enhanced_for_statement",
		"labeled_statement", "method_reference", "annotation", "marker_annotation":
		return false

	default:
		return true
	}
}

// identifierUnresolved reports whether nothing loaded declares the
// identifier: no local, parameter, or field in scope, no static import
// backing it, and no type of that name. A failed model query counts as
// unresolved.
func (c *Collector) identifierUnresolved(u *model.Unit, n *sitter.Node, name string) bool {
	if t, err := c.prog.TypeOfExpr(u, n); err == nil && !t.IsZero() {
		return false
	}

	for _, im := range u.Imports {
		switch im.Kind {
		case model.ImportStatic:
			if im.MemberName() == name {
				return false
			}
		case model.ImportStaticOnDemand:
			if c.ctx.HasField(im.OwnerFQN(), name) {
				return false
			}
		}
	}

	if d, err := c.prog.ResolveTypeName(u, name); err == nil && d != nil {
		return false
	}

	return true
}

// literalFor maps an expected type to a placeholder literal: strings carry
// the identifier's own name, primitives their zero value.
func literalFor(name string, expected model.TypeRef) (model.Literal, bool) {
	if expected.IsString() {
		return model.Literal{Text: `"` + name + `"`, Type: model.StringRef()}, true
	}

	if !expected.Primitive || expected.ArrayDims > 0 {
		return model.Literal{}, false
	}

	var text string

	switch expected.Simple {
	case "boolean":
		text = "false"
	case "char":
		text = `'\0'`
	case "long":
		text = "0L"
	case "float":
		text = "0.0f"
	case "double":
		text = "0.0"
	default: // byte, short, int
		text = "0"
	}

	return model.Literal{Text: text, Type: expected}, true
}
