package model

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// DeclKind classifies a type declaration.
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclEnum
	DeclAnnotation
	DeclRecord
)

//go:generate go tool stringer -type=DeclKind -trimprefix=Decl

// ImportKind classifies an import declaration.
type ImportKind int

const (
	// ImportSingle is a single-type import: import a.b.C;
	ImportSingle ImportKind = iota
	// ImportOnDemand is a star import: import a.b.*;
	ImportOnDemand
	// ImportStatic is a static member import: import static a.b.C.member;
	ImportStatic
	// ImportStaticOnDemand is a static star import: import static a.b.C.*;
	ImportStaticOnDemand
)

// Import is one import declaration of a compilation unit, in source order.
type Import struct {
	Kind ImportKind
	// Path is the dotted name as written, without the trailing ".*".
	Path string
}

// TypeName returns the imported type's simple name for single-type imports,
// or the empty string for on-demand imports.
func (im Import) TypeName() string {
	switch im.Kind {
	case ImportSingle:
		_, simple := splitFQN(im.Path)
		return simple
	case ImportStatic:
		// a.b.C.member -> C
		owner, _ := splitFQN(im.Path)
		_, simple := splitFQN(owner)

		return simple
	default:
		return ""
	}
}

// PackageOf returns the package prefix the import draws from: for single-type
// imports the declaring package of the type, for on-demand imports the
// imported package itself.
func (im Import) PackageOf() string {
	switch im.Kind {
	case ImportSingle:
		pkg, _ := splitFQN(im.Path)
		return pkg
	case ImportStatic:
		owner, _ := splitFQN(im.Path)
		pkg, _ := splitFQN(owner)

		return pkg
	default:
		return im.Path
	}
}

// MemberName returns the imported member name for static single imports.
func (im Import) MemberName() string {
	if im.Kind != ImportStatic {
		return ""
	}

	_, member := splitFQN(im.Path)

	return member
}

// OwnerFQN returns the owning type FQN for static imports
// (a.b.C.member -> a.b.C; static on-demand a.b.C -> a.b.C).
func (im Import) OwnerFQN() string {
	switch im.Kind {
	case ImportStatic:
		owner, _ := splitFQN(im.Path)
		return owner
	case ImportStaticOnDemand:
		return im.Path
	default:
		return ""
	}
}

// Unit is one parsed compilation unit.
type Unit struct {
	// Path is the file path the unit was parsed from.
	Path string
	// Package is the declared package, empty for the default package.
	Package string
	// Imports lists import declarations in source order.
	Imports []Import
	// Source is the raw file content; node text is sliced out of it.
	Source []byte
	// Root is the tree-sitter root node.
	Root *sitter.Node
	// InSlice marks units belonging to the kept slice. Units loaded purely
	// for context are parsed but never visited by collectors.
	InSlice bool

	prog *Program
	tree *sitter.Tree
}

// Program reports the Program this unit belongs to.
func (u *Unit) Program() *Program { return u.prog }

// Text returns the source text of a node.
func (u *Unit) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}

	return n.Content(u.Source)
}

// FieldDecl is a field declared by an in-slice or context type.
type FieldDecl struct {
	Name   string
	Type   TypeRef
	Static bool
}

// MethodDecl is a method (or annotation element) declared by a type.
type MethodDecl struct {
	Name       string
	Params     []TypeRef
	Return     TypeRef
	Static     bool
	Abstract   bool
	Visibility string // "public", "protected", "private" or "" for package
	Varargs    bool
	Node       *sitter.Node
}

// TypeDecl is a type declared somewhere in the loaded program.
type TypeDecl struct {
	// FQN is canonical: package-qualified, nested types joined with "$".
	FQN  string
	Kind DeclKind
	Unit *Unit
	Node *sitter.Node
	// Superclass is the extends clause type text, "" if absent.
	Superclass string
	// Interfaces lists implements/extends-interface clause type texts.
	Interfaces []string
	Fields     []FieldDecl
	Methods    []MethodDecl
}

// Field returns the declared field with the given name, or nil.
func (d *TypeDecl) Field(name string) *FieldDecl {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}

	return nil
}

// MethodsNamed returns all declared methods with the given name.
func (d *TypeDecl) MethodsNamed(name string) []*MethodDecl {
	var out []*MethodDecl

	for i := range d.Methods {
		if d.Methods[i].Name == name {
			out = append(out, &d.Methods[i])
		}
	}

	return out
}

// Ref returns a TypeRef denoting this declaration.
func (d *TypeDecl) Ref() TypeRef {
	pkg, path := splitDeclFQN(d.FQN)

	return refFromNestedPath(pkg, path)
}

// nodeKey identifies a syntax node within a program. Tree-sitter hands out
// fresh *Node values on every navigation call, so identity is positional.
type nodeKey struct {
	path  string
	start uint32
	end   uint32
}

func keyOf(u *Unit, n *sitter.Node) nodeKey {
	return nodeKey{path: u.Path, start: n.StartByte(), end: n.EndByte()}
}

// Program is the loaded slice plus any context units, with a declared-type
// index. It answers the resolution and typing queries collectors depend on.
type Program struct {
	Units []*Unit

	decls      map[string]*TypeDecl   // canonical FQN -> decl
	bySimple   map[string][]*TypeDecl // simple name -> decls
	declByNode map[nodeKey]*TypeDecl
	rewrites   map[nodeKey]Literal
}

// NewProgram returns an empty Program.
func NewProgram() *Program {
	return &Program{
		decls:      make(map[string]*TypeDecl),
		bySimple:   make(map[string][]*TypeDecl),
		declByNode: make(map[nodeKey]*TypeDecl),
		rewrites:   make(map[nodeKey]Literal),
	}
}

// DeclaredType looks up a declaration by canonical FQN.
func (p *Program) DeclaredType(fqn string) *TypeDecl {
	return p.decls[fqn]
}

// DeclaredFQNs returns all declared canonical FQNs, sorted.
func (p *Program) DeclaredFQNs() []string {
	out := make([]string, 0, len(p.decls))
	for fqn := range p.decls {
		out = append(out, fqn)
	}

	sort.Strings(out)

	return out
}

// UnitDecls returns the declarations parsed from one unit, sorted by FQN.
func (p *Program) UnitDecls(u *Unit) []*TypeDecl {
	var out []*TypeDecl

	for _, fqn := range p.DeclaredFQNs() {
		if d := p.decls[fqn]; d.Unit == u {
			out = append(out, d)
		}
	}

	return out
}

// SliceUnits returns the units belonging to the kept slice.
func (p *Program) SliceUnits() []*Unit {
	var out []*Unit

	for _, u := range p.Units {
		if u.InSlice {
			out = append(out, u)
		}
	}

	return out
}

// splitDeclFQN splits a canonical FQN into package and $-joined nested path.
func splitDeclFQN(fqn string) (pkg, path string) {
	return splitFQN(fqn)
}
