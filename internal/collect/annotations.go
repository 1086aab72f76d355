package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// collectAnnotations plans annotation-type stubs for unresolved annotation
// uses, records literal-typed attributes, and plans a pluralized container
// type when the same annotation repeats on one element.
func (c *Collector) collectAnnotations() error {
	var (
		failure error
		perSite = make(map[string]int)
	)

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil {
			return
		}

		if n.Type() != "annotation" && n.Type() != "marker_annotation" {
			return
		}

		owner, err := c.annotationOwner(u, n)
		if err != nil {
			failure = err
			return
		}

		if owner.IsZero() || reserved(owner) {
			return
		}

		if c.prog.DeclaredType(owner.FQN()) != nil || c.ctx.Knows(owner.FQN()) {
			return
		}

		c.planOwner(owner, stub.KindAnnotation)
		c.recordAttributes(u, n, owner)

		// Two uses on the same declaration require a repeatable container.
		if parent := n.Parent(); parent != nil {
			key := siteOf(u, parent) + "@" + owner.FQN()
			perSite[key]++

			if perSite[key] == 2 {
				container := model.TypeRef{Package: owner.Package, Simple: owner.Simple + "s"}
				c.planOwner(container, stub.KindAnnotation)
			}
		}
	})

	return failure
}

func (c *Collector) annotationOwner(u *model.Unit, n *sitter.Node) (model.TypeRef, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return model.TypeRef{}, nil
	}

	return c.resolveOwner(u, model.ParseTypeText(u.Text(nameNode)), siteOf(u, n))
}

// recordAttributes keeps literal-valued attributes only; anything more
// complex than a literal carries no reliable type signal.
func (c *Collector) recordAttributes(u *model.Unit, n *sitter.Node, owner model.TypeRef) {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)

		if child.Type() == "element_value_pair" {
			key := child.ChildByFieldName("key")
			value := child.ChildByFieldName("value")

			if key == nil || value == nil {
				continue
			}

			if name, ok := literalAttrType(value); ok {
				c.res.SetAnnotationAttr(owner.FQN(), u.Text(key), name)
			}

			continue
		}

		if name, ok := literalAttrType(child); ok {
			c.res.SetAnnotationAttr(owner.FQN(), "value", name)
		}
	}
}

func literalAttrType(n *sitter.Node) (string, bool) {
	switch n.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return "int", true
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		return "double", true
	case "true", "false":
		return "boolean", true
	case "character_literal":
		return "char", true
	case "string_literal":
		return "String", true
	default:
		return "", false
	}
}
