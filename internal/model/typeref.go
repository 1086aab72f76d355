package model

import (
	"strings"

	"slicestub/internal/common"
)

// UnknownPackage is the reserved package used when no owner or type can be
// determined for a reference.
const UnknownPackage = "unknown"

// UnknownSimpleName is the simple name of the reserved placeholder type.
const UnknownSimpleName = "Unknown"

// UnknownFQN is the fully qualified name of the reserved placeholder type.
const UnknownFQN = UnknownPackage + "." + UnknownSimpleName

// NestingSep joins an enclosing type and a member type in a canonical FQN.
// It is distinct from the package separator so `a.b.Outer$Inner` stays
// unambiguous.
const NestingSep = "$"

// TypeRef is a structural reference to a type as it appears at a usage site.
// The zero value means "no type information".
type TypeRef struct {
	// Package is the package qualifier, empty for a bare simple name.
	Package string
	// Simple is the simple type name, or the primitive keyword.
	Simple string
	// Declaring is the enclosing type for member (nested) types.
	Declaring *TypeRef
	// Args holds generic type arguments, if any.
	Args []TypeRef
	// Primitive marks primitive types (int, boolean, ...).
	Primitive bool
	// Void marks the void pseudo-type.
	Void bool
	// Null marks the type of the null literal.
	Null bool
	// ArrayDims counts array dimensions (0 for non-arrays).
	ArrayDims int
}

// PrimitiveRef returns a TypeRef for a primitive type keyword.
func PrimitiveRef(name string) TypeRef {
	return TypeRef{Simple: name, Primitive: true}
}

// VoidRef returns the void pseudo-type.
func VoidRef() TypeRef {
	return TypeRef{Simple: "void", Void: true}
}

// NullRef returns the type of the null literal.
func NullRef() TypeRef {
	return TypeRef{Simple: "null", Null: true}
}

// ClassRef returns a reference to pkg.simple. pkg may be empty for a bare name.
func ClassRef(pkg, simple string) TypeRef {
	return TypeRef{Package: pkg, Simple: simple}
}

// StringRef returns a reference to java.lang.String.
func StringRef() TypeRef {
	return ClassRef("java.lang", "String")
}

// ObjectRef returns a reference to java.lang.Object.
func ObjectRef() TypeRef {
	return ClassRef("java.lang", "Object")
}

// UnknownRef returns the reserved placeholder type.
func UnknownRef() TypeRef {
	return ClassRef(UnknownPackage, UnknownSimpleName)
}

// IsZero reports whether the reference carries no type information at all.
func (t TypeRef) IsZero() bool {
	return t.Simple == "" && !t.Primitive && !t.Void && !t.Null
}

// IsUnknown reports whether the reference is the reserved placeholder type.
func (t TypeRef) IsUnknown() bool {
	return t.Package == UnknownPackage && t.Simple == UnknownSimpleName
}

// IsArray reports whether the reference has at least one array dimension.
func (t TypeRef) IsArray() bool {
	return t.ArrayDims > 0
}

// Qualified reports whether the reference carries a package qualifier.
func (t TypeRef) Qualified() bool {
	return t.Package != ""
}

// IsBoolean reports whether the reference is the primitive boolean type.
func (t TypeRef) IsBoolean() bool {
	return t.Primitive && t.Simple == "boolean" && t.ArrayDims == 0
}

// IsString reports whether the reference is java.lang.String or a bare String.
func (t TypeRef) IsString() bool {
	return !t.Primitive && t.Simple == "String" && t.ArrayDims == 0 &&
		(t.Package == "" || t.Package == "java.lang")
}

// IsNumeric reports whether the reference is a primitive numeric type.
func (t TypeRef) IsNumeric() bool {
	if !t.Primitive || t.ArrayDims > 0 {
		return false
	}

	switch t.Simple {
	case "byte", "short", "int", "long", "float", "double", "char":
		return true
	default:
		return false
	}
}

// Elem returns the reference with one array dimension removed.
// Calling Elem on a non-array returns the reference unchanged.
func (t TypeRef) Elem() TypeRef {
	if t.ArrayDims == 0 {
		return t
	}

	t.ArrayDims--

	return t
}

// WithArrayDims returns a copy of t with the given array dimension count.
func (t TypeRef) WithArrayDims(dims int) TypeRef {
	t.ArrayDims = dims
	return t
}

// nestedPath renders the Declaring chain joined with the nesting separator,
// ending in the simple name: Outer$Inner. Depth-bounded against cyclic
// declaring chains.
func (t TypeRef) nestedPath() string {
	parts := []string{t.Simple}

	for d, depth := t.Declaring, 0; d != nil && depth < maxTypeDepth; d, depth = d.Declaring, depth+1 {
		parts = append([]string{d.Simple}, parts...)
	}

	return strings.Join(parts, NestingSep)
}

// FQN returns the canonical fully qualified name: package-qualified with the
// Declaring chain joined by the nesting separator. A bare name is returned
// as-is; arrays and generic arguments are not part of the FQN.
func (t TypeRef) FQN() string {
	if t.Primitive || t.Void || t.Null {
		return t.Simple
	}

	path := t.nestedPath()
	if t.Package == "" {
		return path
	}

	return t.Package + "." + path
}

// Key returns a stable identity string for dedup purposes, including array
// dimensions but excluding generic arguments.
func (t TypeRef) Key() string {
	return t.FQN() + strings.Repeat("[]", t.ArrayDims)
}

// String renders a human-readable form including generics and arrays.
func (t TypeRef) String() string {
	if t.IsZero() {
		return "<none>"
	}

	var sb strings.Builder

	sb.WriteString(t.FQN())

	if len(t.Args) > 0 {
		sb.WriteByte('<')

		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(a.String())
		}

		sb.WriteByte('>')
	}

	sb.WriteString(strings.Repeat("[]", t.ArrayDims))

	return sb.String()
}

// Equal reports whether two references denote the same type, ignoring
// generic arguments.
func (t TypeRef) Equal(o TypeRef) bool {
	return t.Key() == o.Key() && t.Primitive == o.Primitive && t.Void == o.Void && t.Null == o.Null
}

// maxTypeDepth bounds recursion when parsing or walking generic arguments
// and declaring chains, so adversarial or cyclic type shapes cannot blow the
// stack.
const maxTypeDepth = 10

// primitiveNames is the closed set of Java primitive type keywords.
var primitiveNames = map[string]bool{
	"boolean": true,
	"byte":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"char":    true,
	"float":   true,
	"double":  true,
}

// IsPrimitiveName reports whether name is a primitive type keyword.
func IsPrimitiveName(name string) bool {
	return primitiveNames[name]
}

// ParseTypeText parses Java type source text ("List<Foo>", "int[]",
// "a.b.C") into a TypeRef. Dotted names are split into a raw package prefix
// and simple name; whether the prefix is really a package or an enclosing
// type is decided later by owner resolution. Returns the zero TypeRef for
// unparseable text.
func ParseTypeText(text string) TypeRef {
	return parseTypeText(text, 0)
}

func parseTypeText(text string, depth int) TypeRef {
	text = strings.TrimSpace(text)
	if text == "" || depth >= maxTypeDepth {
		return TypeRef{}
	}

	// Wildcards carry no usable identity.
	if text == "?" || strings.HasPrefix(text, "? ") {
		return ObjectRef()
	}

	dims := 0
	for strings.HasSuffix(text, "[]") {
		dims++
		text = strings.TrimSpace(strings.TrimSuffix(text, "[]"))
	}

	// Varargs are normalized to one extra array dimension.
	if strings.HasSuffix(text, "...") {
		dims++
		text = strings.TrimSpace(strings.TrimSuffix(text, "..."))
	}

	var args []TypeRef

	if i := strings.IndexByte(text, '<'); i >= 0 {
		j := strings.LastIndexByte(text, '>')
		if j > i {
			args = parseTypeArgs(text[i+1:j], depth+1)
			text = strings.TrimSpace(text[:i])
		}
	}

	if text == "void" {
		return TypeRef{Simple: "void", Void: true, ArrayDims: dims}
	}

	if IsPrimitiveName(text) {
		return TypeRef{Simple: text, Primitive: true, ArrayDims: dims}
	}

	pkg, simple := common.SplitQualified(text)
	if simple == "" || !isIdent(simple) {
		return TypeRef{}
	}

	return TypeRef{Package: pkg, Simple: simple, Args: args, ArrayDims: dims}
}

// parseTypeArgs splits a generic argument list at top-level commas.
func parseTypeArgs(text string, depth int) []TypeRef {
	var (
		args  []TypeRef
		level int
		start int
	)

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '<':
			level++
		case '>':
			level--
		case ',':
			if level == 0 {
				if a := parseTypeText(text[start:i], depth); !a.IsZero() {
					args = append(args, a)
				}

				start = i + 1
			}
		}
	}

	if a := parseTypeText(text[start:], depth); !a.IsZero() {
		args = append(args, a)
	}

	return args
}

// refFromNestedPath builds a TypeRef from a package and a $-joined nested
// path ("Outer$Inner"), reconstructing the Declaring chain.
func refFromNestedPath(pkg, path string) TypeRef {
	parts := strings.Split(path, NestingSep)

	ref := TypeRef{Package: pkg, Simple: parts[0]}
	for _, part := range parts[1:] {
		outer := ref
		ref = TypeRef{Package: pkg, Simple: part, Declaring: &outer}
	}

	return ref
}

// RefFromFQN parses a canonical FQN ("a.b.Outer$Inner") back into a TypeRef.
func RefFromFQN(fqn string) TypeRef {
	pkg, path := splitFQN(fqn)
	return refFromNestedPath(pkg, path)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		ok := c == '_' || c == '$' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(i > 0 && c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}

	return true
}
