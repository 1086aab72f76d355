package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// boxedPairs maps each primitive to its wrapper simple name. A primitive
// argument against a wrapper parameter (and vice versa) still counts as
// applicable.
var boxedPairs = map[string]string{
	"boolean": "Boolean",
	"byte":    "Byte",
	"short":   "Short",
	"char":    "Character",
	"int":     "Integer",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
}

// collectOverloadGaps handles calls whose owner is a loaded declaration that
// already has same-named methods, none of which fits the call: a sliced
// overload. A new overload is synthesized with the sibling's visibility.
func (c *Collector) collectOverloadGaps() error {
	var failure error

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil || n.Type() != "method_invocation" {
			return
		}

		if err := c.collectOverloadGap(u, n); err != nil {
			failure = err
		}
	})

	return failure
}

func (c *Collector) collectOverloadGap(u *model.Unit, n *sitter.Node) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	name := u.Text(nameNode)

	m, ownerDecl, err := c.prog.ResolveCall(u, n)
	if err != nil || m != nil || ownerDecl == nil {
		return nil
	}

	siblings := ownerDecl.MethodsNamed(name)
	if len(siblings) == 0 {
		return nil
	}

	args := model.Args(n)
	argTypes := make([]model.TypeRef, 0, len(args))

	for _, arg := range args {
		t, aerr := c.argType(u, arg)
		if aerr != nil {
			return aerr
		}

		t, aerr = c.resolveOwner(u, t, siteOf(u, n))
		if aerr != nil {
			return aerr
		}

		argTypes = append(argTypes, t)
	}

	for _, sib := range siblings {
		if applicable(sib, argTypes) {
			return nil
		}
	}

	owner := ownerDecl.Ref()

	if c.res.HasMethodWithArity(owner, name, len(argTypes)) {
		return nil
	}

	first := siblings[0]

	c.planOwner(owner, stub.KindClass)
	c.res.AddMethod(stub.MethodPlan{
		Owner:      owner,
		Name:       name,
		Return:     first.Return,
		Params:     argTypes,
		Static:     first.Static,
		Visibility: stub.VisibilityFromModifier(first.Visibility),
	})

	return nil
}

// applicable reports whether a declared overload accepts the inferred
// argument types: arity must match and each position must agree by canonical
// name or by a primitive/boxed pairing. An Unknown argument matches anything.
func applicable(m *model.MethodDecl, args []model.TypeRef) bool {
	if len(m.Params) != len(args) {
		return false
	}

	for i, p := range m.Params {
		if !typeCompatible(p, args[i]) {
			return false
		}
	}

	return true
}

func typeCompatible(param, arg model.TypeRef) bool {
	if arg.IsZero() || arg.IsUnknown() || arg.Null {
		return true
	}

	if param.Key() == arg.Key() {
		return true
	}

	if param.ArrayDims != arg.ArrayDims {
		return false
	}

	if param.Primitive && boxedPairs[param.Simple] == arg.Simple {
		return true
	}

	if arg.Primitive && boxedPairs[arg.Simple] == param.Simple {
		return true
	}

	return false
}
