package model

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// declNodeTypes are the tree-sitter node types introducing a type declaration.
var declNodeTypes = map[string]DeclKind{
	"class_declaration":           DeclClass,
	"interface_declaration":       DeclInterface,
	"enum_declaration":            DeclEnum,
	"annotation_type_declaration": DeclAnnotation,
	"record_declaration":          DeclRecord,
}

// LoadDir parses every .java file under dir into the program, in sorted path
// order for determinism.
func (p *Program) LoadDir(dir string, inSlice bool) error {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".java") {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(paths)

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if _, err := p.AddSource(path, src, inSlice); err != nil {
			return err
		}
	}

	return nil
}

// AddSource parses one compilation unit and indexes its declarations.
func (p *Program) AddSource(path string, src []byte, inSlice bool) (*Unit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	unit := &Unit{
		Path:    path,
		Source:  src,
		Root:    tree.RootNode(),
		InSlice: inSlice,
		prog:    p,
		tree:    tree,
	}

	root := unit.Root

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)

		switch child.Type() {
		case "package_declaration":
			unit.Package = packageName(unit, child)
		case "import_declaration":
			if im, ok := parseImport(unit, child); ok {
				unit.Imports = append(unit.Imports, im)
			}
		default:
			if _, isDecl := declNodeTypes[child.Type()]; isDecl {
				p.indexTypeDecl(unit, child, "")
			}
		}
	}

	p.Units = append(p.Units, unit)

	return unit, nil
}

func packageName(u *Unit, n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if t := child.Type(); t == "scoped_identifier" || t == "identifier" {
			return u.Text(child)
		}
	}

	return ""
}

// parseImport decodes one import declaration into its kind and dotted path.
func parseImport(u *Unit, n *sitter.Node) (Import, bool) {
	var (
		path     string
		isStatic bool
		wildcard bool
	)

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)

		switch child.Type() {
		case "static":
			isStatic = true
		case "scoped_identifier", "identifier":
			path = u.Text(child)
		case "asterisk":
			wildcard = true
		}
	}

	if path == "" {
		return Import{}, false
	}

	kind := ImportSingle

	switch {
	case isStatic && wildcard:
		kind = ImportStaticOnDemand
	case isStatic:
		kind = ImportStatic
	case wildcard:
		kind = ImportOnDemand
	}

	return Import{Kind: kind, Path: path}, true
}

// indexTypeDecl registers a type declaration (and its nested types) under
// its canonical FQN.
func (p *Program) indexTypeDecl(u *Unit, n *sitter.Node, enclosing string) {
	kind, ok := declNodeTypes[n.Type()]
	if !ok {
		return
	}

	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	name := u.Text(nameNode)

	path := name
	if enclosing != "" {
		path = enclosing + NestingSep + name
	}

	fqn := path
	if u.Package != "" {
		fqn = u.Package + "." + path
	}

	decl := &TypeDecl{
		FQN:  fqn,
		Kind: kind,
		Unit: u,
		Node: n,
	}

	p.parseSupertypes(u, n, decl)

	if body := n.ChildByFieldName("body"); body != nil {
		p.parseBody(u, body, decl, path)
	}

	p.decls[fqn] = decl
	p.bySimple[name] = append(p.bySimple[name], decl)
	p.declByNode[keyOf(u, n)] = decl
}

// parseSupertypes fills the extends/implements clause texts.
func (p *Program) parseSupertypes(u *Unit, n *sitter.Node, decl *TypeDecl) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)

		switch child.Type() {
		case "superclass":
			// "extends X" - the type is the last named child.
			if c := child.NamedChildCount(); c > 0 {
				decl.Superclass = u.Text(child.NamedChild(int(c) - 1))
			}
		case "super_interfaces", "extends_interfaces":
			decl.Interfaces = append(decl.Interfaces, typeListTexts(u, child)...)
		}
	}
}

func typeListTexts(u *Unit, n *sitter.Node) []string {
	var out []string

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "type_list" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				out = append(out, u.Text(child.NamedChild(j)))
			}
		}
	}

	return out
}

// parseBody walks a type body, extracting members and recursing into nested
// type declarations.
func (p *Program) parseBody(u *Unit, body *sitter.Node, decl *TypeDecl, path string) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)

		switch member.Type() {
		case "field_declaration":
			decl.Fields = append(decl.Fields, parseFieldDecl(u, member)...)
		case "method_declaration":
			if m, ok := parseMethodDecl(u, member); ok {
				decl.Methods = append(decl.Methods, m)
			}
		case "constructor_declaration":
			if m, ok := parseConstructorDecl(u, member); ok {
				decl.Methods = append(decl.Methods, m)
			}
		case "annotation_type_element_declaration":
			if m, ok := parseAnnotationElement(u, member); ok {
				decl.Methods = append(decl.Methods, m)
			}
		case "enum_body_declarations":
			// Enum members past the constant list live one level deeper.
			p.parseBody(u, member, decl, path)
		case "enum_constant":
			decl.Fields = append(decl.Fields, FieldDecl{
				Name:   u.Text(member.ChildByFieldName("name")),
				Type:   decl.Ref(),
				Static: true,
			})
		default:
			if _, isDecl := declNodeTypes[member.Type()]; isDecl {
				p.indexTypeDecl(u, member, path)
			}
		}
	}
}

// modifierSet collects modifier tokens of a declaration node.
func modifierSet(u *Unit, n *sitter.Node) map[string]bool {
	out := map[string]bool{}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "modifiers" {
			continue
		}

		for j := 0; j < int(child.ChildCount()); j++ {
			out[child.Child(j).Type()] = true
		}
	}

	return out
}

func visibilityOf(mods map[string]bool) string {
	switch {
	case mods["public"]:
		return "public"
	case mods["protected"]:
		return "protected"
	case mods["private"]:
		return "private"
	default:
		return ""
	}
}

func parseFieldDecl(u *Unit, n *sitter.Node) []FieldDecl {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}

	mods := modifierSet(u, n)
	baseType := ParseTypeText(u.Text(typeNode))

	var out []FieldDecl

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		out = append(out, FieldDecl{
			Name:   u.Text(nameNode),
			Type:   baseType,
			Static: mods["static"],
		})
	}

	return out
}

func parseMethodDecl(u *Unit, n *sitter.Node) (MethodDecl, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return MethodDecl{}, false
	}

	mods := modifierSet(u, n)

	ret := VoidRef()
	if typeNode := n.ChildByFieldName("type"); typeNode != nil {
		ret = ParseTypeText(u.Text(typeNode))
	}

	params, varargs := parseFormalParams(u, n.ChildByFieldName("parameters"))

	return MethodDecl{
		Name:       u.Text(nameNode),
		Params:     params,
		Return:     ret,
		Static:     mods["static"],
		Abstract:   mods["abstract"],
		Visibility: visibilityOf(mods),
		Varargs:    varargs,
		Node:       n,
	}, true
}

// CtorName is the reserved method name constructors are indexed under.
const CtorName = "<init>"

func parseConstructorDecl(u *Unit, n *sitter.Node) (MethodDecl, bool) {
	params, varargs := parseFormalParams(u, n.ChildByFieldName("parameters"))
	mods := modifierSet(u, n)

	return MethodDecl{
		Name:       CtorName,
		Params:     params,
		Return:     VoidRef(),
		Visibility: visibilityOf(mods),
		Varargs:    varargs,
		Node:       n,
	}, true
}

func parseAnnotationElement(u *Unit, n *sitter.Node) (MethodDecl, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return MethodDecl{}, false
	}

	ret := TypeRef{}
	if typeNode := n.ChildByFieldName("type"); typeNode != nil {
		ret = ParseTypeText(u.Text(typeNode))
	}

	return MethodDecl{
		Name:   u.Text(nameNode),
		Return: ret,
		Node:   n,
	}, true
}

// parseFormalParams extracts parameter types and a trailing-varargs flag.
func parseFormalParams(u *Unit, params *sitter.Node) ([]TypeRef, bool) {
	if params == nil {
		return nil, false
	}

	var (
		out     []TypeRef
		varargs bool
	)

	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)

		switch child.Type() {
		case "formal_parameter":
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				out = append(out, ParseTypeText(u.Text(typeNode)))
			}
		case "spread_parameter":
			varargs = true

			if c := child.NamedChildCount(); c > 0 {
				t := ParseTypeText(u.Text(child.NamedChild(0)))
				out = append(out, t.WithArrayDims(t.ArrayDims+1))
			}
		}
	}

	return out, varargs
}
