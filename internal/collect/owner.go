package collect

import (
	"strings"

	"slicestub/internal/common"
	"slicestub/internal/model"
)

// resolveOwner decides the canonical package-qualified owner for a possibly
// unqualified type reference at a usage site.
//
// A reference that is already package-qualified is canonicalized and
// returned. A bare simple name is qualified from the unit's imports:
// single-type imports first (source order, deduplicated), then on-demand
// imports. With no candidate the name is routed to the reserved unknown
// package; with two or more, strict mode raises an AmbiguityError and
// lenient mode never guesses and routes to unknown as well.
func (c *Collector) resolveOwner(u *model.Unit, raw model.TypeRef, site string) (model.TypeRef, error) {
	if raw.IsZero() {
		return model.UnknownRef(), nil
	}

	if raw.Primitive || raw.Void || raw.Null {
		return raw, nil
	}

	if raw.Qualified() {
		return c.canonicalizeFQN(raw), nil
	}

	simple := raw.Simple
	if raw.Declaring != nil {
		// Already anchored to a declaring type; canonicalize through it.
		declaring, err := c.resolveOwner(u, *raw.Declaring, site)
		if err != nil {
			return model.TypeRef{}, err
		}

		raw.Declaring = &declaring
		raw.Package = declaring.Package

		return raw, nil
	}

	// A declaration loaded in the program wins over import guessing.
	if d, err := c.prog.ResolveTypeName(u, simple); err == nil && d != nil {
		return d.Ref().WithArrayDims(raw.ArrayDims), nil
	}

	// Implicit java.lang import.
	if model.IsJavaLangType(simple) {
		return model.ClassRef("java.lang", simple).WithArrayDims(raw.ArrayDims), nil
	}

	var pkgs []string

	for _, im := range u.Imports {
		switch im.Kind {
		case model.ImportSingle:
			if im.TypeName() == simple {
				pkgs = append(pkgs, im.PackageOf())
			}
		case model.ImportStatic, model.ImportStaticOnDemand:
			// A static import's owning type also brings its simple name
			// into scope as a receiver.
			if pkg, owner := common.SplitQualified(im.OwnerFQN()); owner == simple && pkg != "" {
				pkgs = append(pkgs, pkg)
			}
		}
	}

	pkgs = common.Dedup(pkgs)

	if len(pkgs) == 0 {
		for _, im := range u.Imports {
			if im.Kind == model.ImportOnDemand && im.Path != model.UnknownPackage {
				pkgs = append(pkgs, im.Path)
			}
		}

		pkgs = common.Dedup(pkgs)
	}

	switch {
	case common.IsEmpty(pkgs):
		resolved := model.ClassRef(model.UnknownPackage, simple).WithArrayDims(raw.ArrayDims)
		resolved.Args = raw.Args

		return resolved, nil

	case common.IsSingle(pkgs):
		resolved := model.ClassRef(pkgs[0], simple).WithArrayDims(raw.ArrayDims)
		resolved.Args = raw.Args

		return c.canonicalizeFQN(resolved), nil

	default:
		if c.cfg.Strict {
			candidates := make([]string, len(pkgs))
			for i, p := range pkgs {
				candidates[i] = p + "." + simple
			}

			return model.TypeRef{}, &AmbiguityError{Name: simple, Candidates: candidates, Site: site}
		}

		c.res.Diagnostics.AddWarning("ambiguous_import",
			"multiple import candidates for "+simple+"; routed to "+model.UnknownPackage,
			"", simple)

		return model.ClassRef(model.UnknownPackage, simple).WithArrayDims(raw.ArrayDims), nil
	}
}

// canonicalizeFQN rewrites a dotted qualified name whose prefix is actually
// a type (not a package) into the nested canonical form: the longest dotted
// prefix that names a declared type, an already-planned type, or a type the
// context index knows is accepted as the declaring type, and the remainder
// is joined with the nesting separator. With no accepted prefix the
// reference is returned unchanged, which makes the rewrite idempotent.
func (c *Collector) canonicalizeFQN(ref model.TypeRef) model.TypeRef {
	if ref.Declaring != nil || ref.Package == "" {
		return ref
	}

	fqn := ref.Package + "." + ref.Simple
	if strings.Contains(fqn, model.NestingSep) {
		return ref
	}

	segments := strings.Split(fqn, ".")
	if len(segments) < 2 {
		return ref
	}

	limit := len(segments) - 1
	if limit > c.maxDepth() {
		limit = c.maxDepth()
	}

	for k := limit; k >= 1; k-- {
		prefix := strings.Join(segments[:k], ".")
		if !c.typeKnown(prefix) {
			continue
		}

		nested := prefix + model.NestingSep + strings.Join(segments[k:], model.NestingSep)

		resolved := model.RefFromFQN(nested)
		resolved.ArrayDims = ref.ArrayDims
		resolved.Args = ref.Args

		return resolved
	}

	return ref
}

// typeKnown reports whether a dotted name denotes a type rather than a
// package: declared in the model, already planned in this run, or known to
// the context index.
func (c *Collector) typeKnown(fqn string) bool {
	if c.prog.DeclaredType(fqn) != nil {
		return true
	}

	if c.res != nil && c.res.HasType(fqn) {
		return true
	}

	return c.ctx.Knows(fqn)
}

func (c *Collector) maxDepth() int {
	if c.cfg.MaxTypeDepth > 0 {
		return c.cfg.MaxTypeDepth
	}

	return DefaultConfig().MaxTypeDepth
}

// reserved reports whether a resolved owner lands in a standard-library
// namespace; collectors short-circuit with no plan in that case.
func reserved(ref model.TypeRef) bool {
	return model.IsReservedPackage(ref.Package)
}
