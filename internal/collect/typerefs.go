package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// planTypeUsage resolves one type reference appearing in a type position and
// plans a stub for every unresolved component, descending into generic
// arguments to a bounded depth.
func (c *Collector) planTypeUsage(u *model.Unit, n *sitter.Node, raw model.TypeRef, kind stub.TypeKind, depth int) error {
	if depth > c.maxDepth() {
		return nil
	}

	for _, arg := range raw.Args {
		if err := c.planTypeUsage(u, n, arg, stub.KindClass, depth+1); err != nil {
			return err
		}
	}

	if raw.IsZero() || raw.Primitive || raw.Void || raw.Null {
		return nil
	}

	owner, err := c.resolveOwner(u, raw.WithArrayDims(0), siteOf(u, n))
	if err != nil {
		return err
	}

	if owner.IsZero() || reserved(owner) {
		return nil
	}

	if c.prog.DeclaredType(owner.FQN()) != nil || c.ctx.Knows(owner.FQN()) {
		return nil
	}

	c.planOwner(owner, kind)

	return nil
}

func (c *Collector) planTypeText(u *model.Unit, n *sitter.Node, text string, kind stub.TypeKind) error {
	return c.planTypeUsage(u, n, model.ParseTypeText(text), kind, 0)
}

// collectThrownTypes plans exception classes named in throws clauses and
// catch parameters, including the alternatives of a multi-catch.
func (c *Collector) collectThrownTypes() error {
	var failure error

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil {
			return
		}

		switch n.Type() {
		case "throws":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if err := c.planTypeText(u, n, u.Text(n.NamedChild(i)), stub.KindClass); err != nil {
					failure = err
					return
				}
			}
		case "catch_type":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if err := c.planTypeText(u, n, u.Text(n.NamedChild(i)), stub.KindClass); err != nil {
					failure = err
					return
				}
			}
		}
	})

	return failure
}

// collectSupertypes plans missing superclasses and super-interfaces of the
// slice's own declarations.
func (c *Collector) collectSupertypes() error {
	for _, u := range c.prog.SliceUnits() {
		for _, d := range c.prog.UnitDecls(u) {
			if d.Superclass != "" {
				if err := c.planTypeText(u, d.Node, d.Superclass, stub.KindClass); err != nil {
					return err
				}
			}

			for _, iface := range d.Interfaces {
				if err := c.planTypeText(u, d.Node, iface, stub.KindInterface); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// collectTypeUsages covers the remaining expression-adjacent type positions:
// instanceof targets, cast types, class literals, and foreach element types.
func (c *Collector) collectTypeUsages() error {
	var failure error

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil {
			return
		}

		var typeNode *sitter.Node

		switch n.Type() {
		case "instanceof_expression":
			typeNode = n.ChildByFieldName("right")
		case "cast_expression":
			typeNode = n.ChildByFieldName("type")
		case "class_literal":
			typeNode = n.NamedChild(0)
		case "enhanced_for_statement":
			typeNode = n.ChildByFieldName("type")
		default:
			return
		}

		if typeNode == nil {
			return
		}

		if err := c.planTypeText(u, n, u.Text(typeNode), stub.KindClass); err != nil {
			failure = err
		}
	})

	return failure
}

// collectDeclaredTypes plans types named by local, field, parameter, and
// return declarations inside the slice.
func (c *Collector) collectDeclaredTypes() error {
	var failure error

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil {
			return
		}

		switch n.Type() {
		case "local_variable_declaration", "field_declaration", "formal_parameter", "spread_parameter":
		case "method_declaration":
			// Return type only; parameters are visited as their own nodes.
		default:
			return
		}

		typeNode := n.ChildByFieldName("type")
		if typeNode == nil {
			return
		}

		if err := c.planTypeText(u, n, u.Text(typeNode), stub.KindClass); err != nil {
			failure = err
		}
	})

	return failure
}
