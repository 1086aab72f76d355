package collect

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/model"
	"slicestub/internal/oracle"
	"slicestub/internal/stub"
)

// Collector walks a loaded program and synthesizes the stub plans required
// to make the slice self-consistent. One Collector performs one run; all
// mutable state lives in the Result it produces.
type Collector struct {
	prog       *model.Program
	ctx        *oracle.Index
	cfg        Config
	res        *stub.Result
	sliceTypes map[string]bool
}

// New creates a Collector over a program and an optional context index
// (ctx may be nil).
func New(prog *model.Program, ctx *oracle.Index, cfg Config) *Collector {
	var sliceTypes map[string]bool

	if len(cfg.SliceTypes) > 0 {
		sliceTypes = make(map[string]bool, len(cfg.SliceTypes))
		for _, t := range cfg.SliceTypes {
			sliceTypes[t] = true
		}
	}

	return &Collector{
		prog:       prog,
		ctx:        ctx,
		cfg:        cfg,
		sliceTypes: sliceTypes,
	}
}

// pass is one per-kind collection pass. Passes run in a fixed order for
// debuggability; apart from the constant normalizer, which must run first,
// order never affects the result because plan identity is keyed by FQN and
// signature.
type pass struct {
	name string
	run  func() error
}

// Run executes the full collection pipeline and returns the aggregated
// result. In lenient mode the returned error is nil unless the program
// itself is unusable; in strict mode an AmbiguityError aborts the run.
func (c *Collector) Run() (*stub.Result, error) {
	if c.prog == nil {
		return nil, errors.New("program is required")
	}

	c.res = stub.NewResult()

	passes := []pass{
		{"normalize_constants", c.normalizeConstants},
		{"fields", c.collectFields},
		{"method_references", c.collectMethodRefs},
		{"constructors", c.collectConstructors},
		{"calls", c.collectCalls},
		{"annotations", c.collectAnnotations},
		{"thrown_types", c.collectThrownTypes},
		{"supertypes", c.collectSupertypes},
		{"type_usages", c.collectTypeUsages},
		{"declared_types", c.collectDeclaredTypes},
		{"overload_gaps", c.collectOverloadGaps},
		{"import_anchors", c.collectImportAnchors},
	}

	for _, p := range passes {
		if err := p.run(); err != nil {
			var amb *AmbiguityError
			if errors.As(err, &amb) && c.cfg.Strict {
				c.res.Diagnostics.AddError("ambiguous_reference", amb.Error(), "", amb.Name)
				return c.res, fmt.Errorf("strict mode: %s pass: %w", p.name, err)
			}

			return c.res, fmt.Errorf("%s pass: %w", p.name, err)
		}
	}

	c.closeOwners()
	c.cleanup()

	return c.res, nil
}

// inSlice reports whether an element may be visited by collectors: its unit
// must belong to the slice, and when a type allowlist is configured, its
// enclosing declaration must be on it.
func (c *Collector) inSlice(u *model.Unit, n *sitter.Node) bool {
	if !u.InSlice {
		return false
	}

	if c.sliceTypes == nil {
		return true
	}

	d := c.prog.EnclosingDecl(u, n)
	if d == nil {
		return true
	}

	return c.sliceTypes[d.FQN]
}

// walk visits every node of a unit depth-first. The visitor returns false to
// prune the subtree. Iterative, so adversarial nesting cannot blow the stack.
func walk(u *model.Unit, visit func(n *sitter.Node) bool) {
	if u.Root == nil {
		return
	}

	stack := []*sitter.Node{u.Root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(n) {
			continue
		}

		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}
}

// eachSliceNode walks all slice units, visiting only nodes inside the slice
// boundary.
func (c *Collector) eachSliceNode(visit func(u *model.Unit, n *sitter.Node)) {
	for _, u := range c.prog.SliceUnits() {
		walk(u, func(n *sitter.Node) bool {
			// Descend regardless: a nested type may be back inside the
			// boundary even when its enclosing type is not.
			if c.inSlice(u, n) {
				visit(u, n)
			}

			return true
		})
	}
}

// planOwner records a type plan for a canonical owner unless it lives in a
// reserved namespace.
func (c *Collector) planOwner(owner model.TypeRef, kind stub.TypeKind) {
	if owner.IsZero() || owner.Primitive || owner.Void || owner.Null {
		return
	}

	if model.IsReservedPackage(owner.Package) {
		return
	}

	// Types with a loaded declaration or a context-index entry need no stub,
	// even when a member plan targets them.
	if c.prog.DeclaredType(owner.FQN()) != nil || c.ctx.Knows(owner.FQN()) {
		return
	}

	c.res.AddType(owner.FQN(), kind)

	// A nested plan implies its enclosing type as well.
	for d := owner.Declaring; d != nil; d = d.Declaring {
		if c.prog.DeclaredType(d.FQN()) == nil && !c.ctx.Knows(d.FQN()) {
			c.res.AddType(d.FQN(), stub.KindClass)
		}
	}
}

// siteOf renders a diagnostic location for a node.
func siteOf(u *model.Unit, n *sitter.Node) string {
	if n == nil {
		return u.Path
	}

	pt := n.StartPoint()

	return fmt.Sprintf("%s:%d:%d", u.Path, pt.Row+1, pt.Column+1)
}
