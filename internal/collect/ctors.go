package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// collectConstructors plans constructor stubs for unresolved instantiations,
// including qualified inner-class creation (outer.new Inner(...)) and
// explicit super(...) calls against a missing superclass.
func (c *Collector) collectConstructors() error {
	var failure error

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil {
			return
		}

		var err error

		switch n.Type() {
		case "object_creation_expression":
			err = c.collectCreation(u, n)
		case "explicit_constructor_invocation":
			err = c.collectSuperInvocation(u, n)
		}

		if err != nil {
			failure = err
		}
	})

	return failure
}

func (c *Collector) collectCreation(u *model.Unit, n *sitter.Node) error {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}

	owner, err := c.creationOwner(u, n, typeNode)
	if err != nil {
		return err
	}

	if owner.IsZero() || reserved(owner) {
		return nil
	}

	if c.prog.DeclaredType(owner.FQN()) != nil || c.ctx.Knows(owner.FQN()) {
		return nil
	}

	params, err := c.creationParams(u, n)
	if err != nil {
		return err
	}

	c.planOwner(owner, stub.KindClass)

	// A zero-argument call on a top-level type is satisfied by the default
	// constructor; member types still need a plan so the generator knows
	// about the enclosing instance.
	if len(params) > 0 || owner.Declaring != nil {
		c.res.AddConstructor(stub.ConstructorPlan{Owner: owner, Params: params})
	}

	return nil
}

// creationOwner resolves the instantiated type. For qualified creation the
// enclosing instance expression supplies the declaring type and the created
// name nests under it.
func (c *Collector) creationOwner(u *model.Unit, n, typeNode *sitter.Node) (model.TypeRef, error) {
	raw := model.ParseTypeText(u.Text(typeNode))

	qualifier := n.Child(0)
	if qualifier == nil || qualifier.Type() == "new" {
		return c.resolveOwner(u, raw, siteOf(u, n))
	}

	outerType, err := c.prog.TypeOfExpr(u, qualifier)
	if err != nil || outerType.IsZero() {
		return c.resolveOwner(u, raw, siteOf(u, n))
	}

	outer, rerr := c.resolveOwner(u, outerType, siteOf(u, n))
	if rerr != nil {
		return model.TypeRef{}, rerr
	}

	if outer.IsZero() || reserved(outer) {
		return model.TypeRef{}, nil
	}

	return model.TypeRef{
		Package:   outer.Package,
		Simple:    raw.Simple,
		Declaring: &outer,
	}, nil
}

func (c *Collector) creationParams(u *model.Unit, n *sitter.Node) ([]model.TypeRef, error) {
	args := model.Args(n)
	params := make([]model.TypeRef, 0, len(args))

	for _, arg := range args {
		t, err := c.argType(u, arg)
		if err != nil {
			return nil, err
		}

		t, err = c.resolveOwner(u, t, siteOf(u, n))
		if err != nil {
			return nil, err
		}

		params = append(params, t)
	}

	return params, nil
}

// collectSuperInvocation handles super(...) calls whose superclass left the
// slice: the missing class still needs a constructor of matching shape.
func (c *Collector) collectSuperInvocation(u *model.Unit, n *sitter.Node) error {
	if first := n.Child(0); first == nil || first.Type() != "super" {
		return nil
	}

	encl := c.prog.EnclosingDecl(u, n)
	if encl == nil || encl.Superclass == "" {
		return nil
	}

	owner, err := c.resolveOwner(u, model.ParseTypeText(encl.Superclass), siteOf(u, n))
	if err != nil {
		return err
	}

	if owner.IsZero() || reserved(owner) {
		return nil
	}

	if c.prog.DeclaredType(owner.FQN()) != nil || c.ctx.Knows(owner.FQN()) {
		return nil
	}

	params, err := c.creationParams(u, n)
	if err != nil {
		return err
	}

	c.planOwner(owner, stub.KindClass)

	if len(params) > 0 {
		c.res.AddConstructor(stub.ConstructorPlan{Owner: owner, Params: params})
	}

	return nil
}
