package collect

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/common"
	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// collectFields finds unresolved field reads and writes, both explicit
// (receiver.name, Type.NAME) and bare identifiers left over after constant
// normalization, and plans a field stub on the resolved owner.
func (c *Collector) collectFields() error {
	var failure error

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil {
			return
		}

		var err error

		switch n.Type() {
		case "field_access":
			err = c.collectFieldAccess(u, n)
		case "identifier":
			err = c.collectBareFieldRead(u, n)
		}

		if err != nil {
			failure = err
		}
	})

	return failure
}

func (c *Collector) collectFieldAccess(u *model.Unit, n *sitter.Node) error {
	object := n.ChildByFieldName("object")
	fieldNode := n.ChildByFieldName("field")

	if object == nil || fieldNode == nil {
		return nil
	}

	name := u.Text(fieldNode)

	// Resolved accesses are left untouched. A failed query conservatively
	// counts as unresolved so missing symbols are never masked.
	if t, err := c.prog.TypeOfExpr(u, n); err == nil && !t.IsZero() {
		return nil
	}

	if object.Type() == "super" {
		return nil // handled through the enclosing type's supertype chain
	}

	owner, static, err := c.fieldOwner(u, n, object)
	if err != nil {
		return err
	}

	if owner.IsZero() || reserved(owner) || owner.IsArray() {
		return nil
	}

	// Owners declared inside the slice keep their real members; a missing
	// field there is not a slicing artifact.
	if d := c.prog.DeclaredType(owner.FQN()); d != nil && d.Unit != nil && d.Unit.InSlice {
		return nil
	}

	if c.ctx.HasField(owner.FQN(), name) {
		return nil
	}

	fieldType, ok := c.inferExpectedType(u, n)
	if !ok {
		if c.cfg.Strict {
			return &AmbiguityError{Name: name, Candidates: []string{"no usable type context"}, Site: siteOf(u, n)}
		}

		fieldType = model.UnknownRef()
	}

	fieldType, err = c.resolveOwner(u, fieldType, siteOf(u, n))
	if err != nil {
		return err
	}

	c.planOwner(owner, stub.KindClass)
	c.res.AddField(stub.FieldPlan{Owner: owner, Name: name, Type: fieldType, Static: static})

	return nil
}

// fieldOwner resolves the owner type of a field access and whether the
// access is static (through a type name rather than a value).
func (c *Collector) fieldOwner(u *model.Unit, n, object *sitter.Node) (model.TypeRef, bool, error) {
	if object.Type() == "this" {
		if d := c.prog.EnclosingDecl(u, n); d != nil {
			return d.Ref(), false, nil
		}

		return model.TypeRef{}, false, nil
	}

	objType, qerr := c.prog.TypeOfExpr(u, object)
	if qerr == nil && !objType.IsZero() && !objType.Null {
		owner, err := c.resolveOwner(u, objType, siteOf(u, object))
		return owner, false, err
	}

	var qe *model.QueryError
	if qerr != nil && !errors.As(qerr, &qe) {
		return model.TypeRef{}, false, qerr
	}

	// No value of that name in scope: the receiver is a type name and the
	// access is static.
	if object.Type() == "identifier" || object.Type() == "scoped_identifier" {
		raw := model.ParseTypeText(u.Text(object))

		owner, err := c.resolveOwner(u, raw, siteOf(u, object))

		return owner, true, err
	}

	return model.TypeRef{}, false, nil
}

// collectBareFieldRead handles unresolved bare identifiers in value
// position that survived constant normalization: fields inherited from a
// removed supertype, or constants backed by a static import.
func (c *Collector) collectBareFieldRead(u *model.Unit, n *sitter.Node) error {
	name := u.Text(n)

	if !c.inValuePosition(n) {
		return nil
	}

	if _, rewritten := c.prog.ReplacementFor(u, n); rewritten {
		return nil
	}

	if t, err := c.prog.TypeOfExpr(u, n); err == nil && !t.IsZero() {
		return nil
	}

	// A name that resolves to a type is a receiver, not a field.
	if d, err := c.prog.ResolveTypeName(u, name); err == nil && d != nil {
		return nil
	}

	owner, static, ok, err := c.bareFieldOwner(u, n, name)
	if err != nil || !ok {
		return err
	}

	if owner.IsZero() || reserved(owner) {
		return nil
	}

	fieldType, inferred := c.inferExpectedType(u, n)
	if !inferred {
		// Plain unresolved lowercase identifiers with no context are more
		// likely slicing debris than fields; only screaming-case names and
		// static-import-backed names are worth a stub.
		if !common.IsScreamingCase(name) && !static {
			return nil
		}

		fieldType = model.UnknownRef()
	}

	fieldType, err = c.resolveOwner(u, fieldType, siteOf(u, n))
	if err != nil {
		return err
	}

	c.planOwner(owner, stub.KindClass)
	c.res.AddField(stub.FieldPlan{Owner: owner, Name: name, Type: fieldType, Static: static})

	return nil
}

// bareFieldOwner decides who owns an implicit-receiver field reference:
// a context-known supertype of the enclosing class, a non-reserved direct
// superclass, or a static import naming the member.
func (c *Collector) bareFieldOwner(u *model.Unit, n *sitter.Node, name string) (model.TypeRef, bool, bool, error) {
	encl := c.prog.EnclosingDecl(u, n)

	// (a) context index lookup along the supertype chain.
	if encl != nil {
		if fqn, ok := c.contextOwnerWithField(u, encl, name); ok {
			return model.RefFromFQN(fqn), false, true, nil
		}
	}

	// (b) static imports naming the member.
	for _, im := range u.Imports {
		if im.Kind == model.ImportStatic && im.MemberName() == name {
			return model.RefFromFQN(im.OwnerFQN()), true, true, nil
		}
	}

	for _, im := range u.Imports {
		if im.Kind == model.ImportStaticOnDemand && common.IsScreamingCase(name) {
			return model.RefFromFQN(im.OwnerFQN()), true, true, nil
		}
	}

	// (c) the direct superclass, when it is outside the slice.
	if encl != nil && encl.Superclass != "" {
		raw := model.ParseTypeText(encl.Superclass)

		owner, err := c.resolveOwner(u, raw, siteOf(u, n))
		if err != nil {
			return model.TypeRef{}, false, false, err
		}

		if !reserved(owner) && c.prog.DeclaredType(owner.FQN()) == nil {
			return owner, false, true, nil
		}
	}

	return model.TypeRef{}, false, false, nil
}

// contextOwnerWithField walks the enclosing class's supertype chain through
// the context index looking for a type that declares the field.
func (c *Collector) contextOwnerWithField(u *model.Unit, encl *model.TypeDecl, name string) (string, bool) {
	for _, fqn := range c.supertypeFQNs(u, encl) {
		if c.ctx.HasField(fqn, name) {
			return fqn, true
		}
	}

	return "", false
}

// supertypeFQNs resolves the enclosing declaration's superclass chain and
// interfaces to canonical FQNs, walking further chains through the context
// index, depth-bounded.
func (c *Collector) supertypeFQNs(u *model.Unit, encl *model.TypeDecl) []string {
	var out []string

	appendResolved := func(text string) string {
		raw := model.ParseTypeText(text)

		owner, err := c.resolveOwner(u, raw, encl.FQN)
		if err != nil || owner.IsZero() || reserved(owner) {
			return ""
		}

		out = append(out, owner.FQN())

		return owner.FQN()
	}

	if encl.Superclass != "" {
		cur := appendResolved(encl.Superclass)

		for depth := 0; cur != "" && depth < c.maxDepth(); depth++ {
			super, interfaces, ok := c.ctx.Supertypes(cur)
			if !ok {
				break
			}

			out = append(out, interfaces...)

			if super == "" || model.IsReservedFQN(super) {
				break
			}

			out = append(out, super)
			cur = super
		}
	}

	for _, iface := range encl.Interfaces {
		appendResolved(iface)
	}

	return common.Dedup(out)
}
