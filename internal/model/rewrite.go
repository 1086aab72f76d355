package model

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Literal is a replacement value for a rewritten expression node.
type Literal struct {
	// Text is the literal source text ("\"PUSH_TOKEN\"", "0", "false").
	Text string
	// Type is the literal's type.
	Type TypeRef
}

// ReplaceNode records an in-place replacement of an expression node with a
// literal. The syntax tree itself is immutable, so replacements live in an
// overlay: typing queries consult the overlay before the tree, and the
// renderer applies the overlay as source edits. Rewrites are collected in
// one phase and applied in another, so traversal never observes a
// half-rewritten tree.
func (p *Program) ReplaceNode(u *Unit, n *sitter.Node, lit Literal) {
	p.rewrites[keyOf(u, n)] = lit
}

// ReplacementFor returns the literal a node has been rewritten to, if any.
func (p *Program) ReplacementFor(u *Unit, n *sitter.Node) (Literal, bool) {
	lit, ok := p.rewrites[keyOf(u, n)]
	return lit, ok
}

// Edit is a source-text replacement in a unit, for the renderer.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

// Edits returns the unit's recorded rewrites as source edits ordered by
// position.
func (p *Program) Edits(u *Unit) []Edit {
	var out []Edit

	for k, lit := range p.rewrites {
		if k.path != u.Path {
			continue
		}

		out = append(out, Edit{Start: k.start, End: k.end, Text: lit.Text})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	return out
}
