package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// collectMethodRefs plans stubs for unresolved method references
// (Type::member, expr::member, Type::new). Parameter shapes are not
// recoverable from the reference itself, so members are synthesized with
// empty parameter lists and the constructor/method distinction taken from
// the referenced name.
func (c *Collector) collectMethodRefs() error {
	var failure error

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil || n.Type() != "method_reference" {
			return
		}

		if err := c.collectMethodRef(u, n); err != nil {
			failure = err
		}
	})

	return failure
}

func (c *Collector) collectMethodRef(u *model.Unit, n *sitter.Node) error {
	if n.ChildCount() < 2 {
		return nil
	}

	qualifier := n.Child(0)
	member := n.Child(int(n.ChildCount()) - 1)

	if qualifier == nil || member == nil || qualifier.Type() == "super" {
		return nil
	}

	owner, static, err := c.methodRefOwner(u, n, qualifier)
	if err != nil {
		return err
	}

	if owner.IsZero() || owner.IsArray() || reserved(owner) {
		return nil
	}

	name := u.Text(member)

	if member.Type() != "identifier" { // Type::new
		if c.prog.DeclaredType(owner.FQN()) != nil {
			return nil
		}

		c.planOwner(owner, stub.KindClass)
		c.res.AddConstructor(stub.ConstructorPlan{Owner: owner})

		return nil
	}

	if decl := c.prog.DeclaredType(owner.FQN()); decl != nil {
		if len(decl.MethodsNamed(name)) > 0 {
			return nil
		}
	}

	if c.ctx.HasMethodNamed(owner.FQN(), name) {
		return nil
	}

	c.planOwner(owner, stub.KindClass)
	c.res.AddMethod(stub.MethodPlan{
		Owner:      owner,
		Name:       name,
		Return:     model.UnknownRef(),
		Static:     static,
		Visibility: stub.VisibilityPublic,
	})

	return nil
}

// methodRefOwner resolves the left-hand side of a method reference: a type
// name yields a static member owner, any other expression an instance one.
func (c *Collector) methodRefOwner(u *model.Unit, n, qualifier *sitter.Node) (model.TypeRef, bool, error) {
	switch qualifier.Type() {
	case "identifier", "type_identifier", "scoped_identifier", "scoped_type_identifier", "generic_type":
		text := u.Text(qualifier)

		if t, err := c.prog.TypeOfExpr(u, qualifier); err == nil && !t.IsZero() {
			// The qualifier names a value in scope, not a type.
			return t, false, nil
		}

		owner, err := c.resolveOwner(u, model.ParseTypeText(text), siteOf(u, n))

		return owner, true, err
	default:
		t, err := c.prog.TypeOfExpr(u, qualifier)
		if err != nil || t.IsZero() {
			return model.TypeRef{}, false, nil
		}

		owner, rerr := c.resolveOwner(u, t, siteOf(u, n))

		return owner, false, rerr
	}
}
