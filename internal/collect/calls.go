package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/common"
	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// callRecord is one unresolved invocation waiting for plan synthesis.
type callRecord struct {
	unit    *model.Unit
	node    *sitter.Node
	owner   model.TypeRef
	name    string
	static  bool
	onIface bool
}

// collectCalls finds unresolved method invocations and plans method stubs.
// It runs in two phases: gather every unresolved call with its resolved
// owner first, then group by (owner, name) so signatures used only for
// effect can be synthesized void.
func (c *Collector) collectCalls() error {
	records, err := c.gatherUnresolvedCalls()
	if err != nil {
		return err
	}

	returns, err := c.groupReturns(records)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := c.emitCallPlan(rec, returns[callKey(rec)]); err != nil {
			return err
		}
	}

	return nil
}

func callKey(rec callRecord) string {
	return rec.owner.FQN() + "#" + rec.name
}

// groupReturns settles one return type per (owner, name) group. A group
// none of whose occurrences observe the result returns void. Otherwise the
// first occurrence with usable type context decides, so an effect-only
// occurrence cannot shadow a typed one elsewhere in the group. A consuming
// group with no usable context anywhere is ambiguous in strict mode and
// routed to the unknown placeholder otherwise.
func (c *Collector) groupReturns(records []callRecord) (map[string]model.TypeRef, error) {
	returns := make(map[string]model.TypeRef)
	consumingSite := make(map[string]string)

	for _, rec := range records {
		if !valueConsuming(rec.node) {
			continue
		}

		key := callKey(rec)

		if _, seen := consumingSite[key]; !seen {
			consumingSite[key] = siteOf(rec.unit, rec.node)
		}

		if _, done := returns[key]; done {
			continue
		}

		inferred, ok := c.inferExpectedType(rec.unit, rec.node)
		if !ok {
			continue
		}

		ret, err := c.resolveOwner(rec.unit, inferred, siteOf(rec.unit, rec.node))
		if err != nil {
			return nil, err
		}

		returns[key] = ret
	}

	for _, rec := range records {
		key := callKey(rec)
		if _, done := returns[key]; done {
			continue
		}

		site, consumed := consumingSite[key]
		if !consumed {
			returns[key] = model.VoidRef()
			continue
		}

		if c.cfg.Strict {
			return nil, &AmbiguityError{
				Name:       rec.name,
				Candidates: []string{"no usable type context"},
				Site:       site,
			}
		}

		returns[key] = model.UnknownRef()
	}

	return returns, nil
}

func (c *Collector) gatherUnresolvedCalls() ([]callRecord, error) {
	var (
		records []callRecord
		failure error
	)

	c.eachSliceNode(func(u *model.Unit, n *sitter.Node) {
		if failure != nil || n.Type() != "method_invocation" {
			return
		}

		rec, ok, err := c.classifyCall(u, n)
		if err != nil {
			failure = err
			return
		}

		if ok {
			records = append(records, rec)
		}
	})

	return records, failure
}

// classifyCall decides whether an invocation is unresolved and, if so, who
// owns the missing method.
func (c *Collector) classifyCall(u *model.Unit, n *sitter.Node) (callRecord, bool, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return callRecord{}, false, nil
	}

	name := u.Text(nameNode)
	argc := len(model.Args(n))

	// A query failure is conservatively treated as unresolved rather than
	// dropped, to avoid masking missing symbols.
	m, ownerDecl, qerr := c.prog.ResolveCall(u, n)
	if qerr == nil {
		if m != nil {
			return callRecord{}, false, nil
		}

		if ownerDecl != nil && len(ownerDecl.MethodsNamed(name)) > 0 {
			return callRecord{}, false, nil // an overload gap, handled separately
		}
	}

	object := n.ChildByFieldName("object")

	if object == nil || object.Type() == "this" || object.Type() == "super" {
		rec, ok, err := c.implicitReceiver(u, n, name, argc)
		if err != nil || !ok {
			return callRecord{}, false, err
		}

		if reserved(rec.owner) || c.ctx.HasMethod(rec.owner.FQN(), name, argc) {
			return callRecord{}, false, nil
		}

		rec.unit, rec.node, rec.name = u, n, name

		return rec, true, nil
	}

	// Explicit receiver: when its declaration is loaded, the missing member
	// is not a slicing artifact.
	if ownerDecl != nil {
		return callRecord{}, false, nil
	}

	owner, static, err := c.fieldOwner(u, n, object)
	if err != nil {
		return callRecord{}, false, err
	}

	if owner.IsZero() || owner.IsArray() || reserved(owner) {
		return callRecord{}, false, nil
	}

	if c.ctx.HasMethod(owner.FQN(), name, argc) {
		return callRecord{}, false, nil
	}

	return callRecord{unit: u, node: n, owner: owner, name: name, static: static}, true, nil
}

// implicitReceiver runs the resolution chain for calls with no explicit
// receiver: context index along the supertype chain, the direct superclass,
// a single super-interface, static imports, and finally the enclosing class
// itself.
func (c *Collector) implicitReceiver(u *model.Unit, n *sitter.Node, name string, argc int) (callRecord, bool, error) {
	encl := c.prog.EnclosingDecl(u, n)
	if encl == nil {
		return callRecord{}, false, nil
	}

	supers := c.supertypeFQNs(u, encl)

	// (a) a context-known supertype that declares the method.
	for _, fqn := range supers {
		if c.ctx.HasMethod(fqn, name, argc) {
			// The context proves the member exists; nothing to stub.
			return callRecord{}, false, nil
		}
	}

	// (b) the direct superclass, when it is outside both the slice and the
	// standard library.
	if encl.Superclass != "" {
		raw := model.ParseTypeText(encl.Superclass)

		owner, err := c.resolveOwner(u, raw, siteOf(u, n))
		if err != nil {
			return callRecord{}, false, err
		}

		if !owner.IsZero() && !reserved(owner) && c.prog.DeclaredType(owner.FQN()) == nil {
			return callRecord{owner: owner}, true, nil
		}
	}

	// (c) exactly one non-reserved super-interface.
	var ifaceOwners []model.TypeRef

	for _, text := range encl.Interfaces {
		raw := model.ParseTypeText(text)

		owner, err := c.resolveOwner(u, raw, siteOf(u, n))
		if err != nil {
			return callRecord{}, false, err
		}

		if !owner.IsZero() && !reserved(owner) && c.prog.DeclaredType(owner.FQN()) == nil {
			ifaceOwners = append(ifaceOwners, owner)
		}
	}

	if common.IsSingle(ifaceOwners) {
		return callRecord{owner: ifaceOwners[0], onIface: true}, true, nil
	}

	// (d) static imports naming the method.
	for _, im := range u.Imports {
		if im.Kind == model.ImportStatic && im.MemberName() == name {
			return callRecord{owner: model.RefFromFQN(im.OwnerFQN()), static: true}, true, nil
		}
	}

	for _, im := range u.Imports {
		if im.Kind == model.ImportStaticOnDemand {
			return callRecord{owner: model.RefFromFQN(im.OwnerFQN()), static: true}, true, nil
		}
	}

	// (e) the enclosing class itself.
	return callRecord{owner: encl.Ref()}, true, nil
}

// valueConsuming reports whether a call's result is observed: used as a
// receiver, assigned, returned, or fed into another expression.
func valueConsuming(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}

	switch parent.Type() {
	case "expression_statement", "labeled_statement":
		return false
	default:
		return true
	}
}

func (c *Collector) emitCallPlan(rec callRecord, ret model.TypeRef) error {
	u, n := rec.unit, rec.node

	params, varargs, err := c.inferParamTypes(u, n)
	if err != nil {
		return err
	}

	for i := range params {
		params[i], err = c.resolveOwner(u, params[i], siteOf(u, n))
		if err != nil {
			return err
		}
	}

	kind := stub.KindClass
	if rec.onIface {
		kind = stub.KindInterface
	}

	c.planOwner(rec.owner, kind)
	c.res.AddMethod(stub.MethodPlan{
		Owner:              rec.owner,
		Name:               rec.name,
		Return:             ret,
		Params:             params,
		Static:             rec.static,
		Visibility:         stub.VisibilityPublic,
		DefaultOnInterface: rec.onIface,
		Varargs:            varargs,
	})

	return nil
}
