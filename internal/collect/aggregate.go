package collect

import (
	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// closeOwners makes the plan set self-contained: every type a member plan
// mentions (owner, field type, return, parameter, thrown) gets a class-kind
// type plan unless it is primitive, reserved, or already covered.
func (c *Collector) closeOwners() {
	var refs []model.TypeRef

	for _, f := range c.res.Fields {
		refs = append(refs, f.Owner, f.Type)
	}

	for _, ct := range c.res.Constructors {
		refs = append(refs, ct.Owner)
		refs = append(refs, ct.Params...)
	}

	for _, m := range c.res.Methods {
		refs = append(refs, m.Owner, m.Return)
		refs = append(refs, m.Params...)
		refs = append(refs, m.Throws...)
	}

	for _, ref := range refs {
		c.closeOver(ref, 0)
	}
}

func (c *Collector) closeOver(ref model.TypeRef, depth int) {
	if depth > c.maxDepth() {
		return
	}

	for _, arg := range ref.Args {
		c.closeOver(arg, depth+1)
	}

	if ref.Declaring != nil {
		c.closeOver(*ref.Declaring, depth+1)
	}

	ref = ref.WithArrayDims(0)

	if ref.IsZero() || ref.Primitive || ref.Void || ref.Null || reserved(ref) {
		return
	}

	fqn := ref.FQN()

	if c.res.HasType(fqn) || c.prog.DeclaredType(fqn) != nil || c.ctx.Knows(fqn) {
		return
	}

	c.res.AddType(fqn, stub.KindClass)
}

// cleanup reconciles speculative unknown-package plans with properly
// anchored ones: within each simple-name group, an anchored member evicts
// every unanchored sibling.
func (c *Collector) cleanup() {
	anchored := make(map[string]bool)

	for _, t := range c.res.Types {
		if t.Anchored() {
			anchored[t.SimpleName()] = true
		}
	}

	c.res.RemoveTypes(func(t stub.TypePlan) bool {
		return !t.Anchored() && anchored[t.SimpleName()]
	})
}
