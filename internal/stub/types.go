package stub

import (
	"strings"

	"slicestub/internal/common"
	"slicestub/internal/diagnostic"
	"slicestub/internal/model"
)

// TypeKind classifies a planned type stub.
type TypeKind int

const (
	// KindClass is the default for types whose shape is unknown.
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindAnnotation
)

// String returns a human-readable kind name.
func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	default:
		return common.UnknownStr
	}
}

// Visibility is the access level of a planned member.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
	VisibilityPackage
)

// String returns the Java modifier spelling, empty for package visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	case VisibilityPackage:
		return ""
	default:
		return common.UnknownStr
	}
}

// VisibilityFromModifier maps a Java modifier spelling to a Visibility.
func VisibilityFromModifier(mod string) Visibility {
	switch mod {
	case "public":
		return VisibilityPublic
	case "protected":
		return VisibilityProtected
	case "private":
		return VisibilityPrivate
	default:
		return VisibilityPackage
	}
}

// TypePlan is a synthetic type declaration to be generated.
type TypePlan struct {
	// FQN is canonical: package-qualified or routed to the reserved unknown
	// package, with nested types joined by "$". Never a bare simple name.
	FQN  string
	Kind TypeKind
}

// SimpleName returns the innermost simple name of the planned type.
func (t TypePlan) SimpleName() string {
	name := common.LastSegment(t.FQN)
	if i := strings.LastIndex(name, model.NestingSep); i >= 0 {
		name = name[i+len(model.NestingSep):]
	}

	return name
}

// Anchored reports whether the plan's FQN is properly package-qualified:
// neither unknown-package-routed nor a bare name.
func (t TypePlan) Anchored() bool {
	pkg, _ := common.SplitQualified(t.FQN)
	return pkg != "" && pkg != model.UnknownPackage
}

// FieldPlan is a synthetic field declaration.
type FieldPlan struct {
	Owner  model.TypeRef
	Name   string
	Type   model.TypeRef
	Static bool
}

// ConstructorPlan is a synthetic constructor declaration. Params are ordered
// and position-significant.
type ConstructorPlan struct {
	Owner  model.TypeRef
	Params []model.TypeRef
}

// MethodPlan is a synthetic method declaration.
type MethodPlan struct {
	Owner      model.TypeRef
	Name       string
	Return     model.TypeRef
	Params     []model.TypeRef
	Static     bool
	Visibility Visibility
	Throws     []model.TypeRef
	// DefaultOnInterface marks methods that must carry a body because their
	// synthesized owner is an interface.
	DefaultOnInterface bool
	Varargs            bool
}

// Result owns every plan produced by one collection run. Plans are
// append-only until the final cleanup pass; identity is keyed by canonical
// FQN or signature, so insertion order never affects correctness.
type Result struct {
	Types        []TypePlan
	Fields       []FieldPlan
	Constructors []ConstructorPlan
	Methods      []MethodPlan

	// AnnotationAttrs maps annotation FQN -> attribute name -> inferred
	// primitive-or-String type name.
	AnnotationAttrs map[string]map[string]string

	Diagnostics diagnostic.Diagnostics

	// Dedup state is owned by the result, never package-level, so parallel
	// runs cannot interfere.
	typeFQNs   map[string]int // FQN -> index into Types
	fieldKeys  map[string]bool
	ctorKeys   map[string]bool
	methodKeys map[string]bool
}

// NewResult returns an empty Result ready for one collection run.
func NewResult() *Result {
	return &Result{
		AnnotationAttrs: make(map[string]map[string]string),
		typeFQNs:        make(map[string]int),
		fieldKeys:       make(map[string]bool),
		ctorKeys:        make(map[string]bool),
		methodKeys:      make(map[string]bool),
	}
}

// HasType reports whether a type plan exists for the canonical FQN.
func (r *Result) HasType(fqn string) bool {
	_, ok := r.typeFQNs[fqn]
	return ok
}

// AddType records a type plan, keeping the result set-like by FQN. A later
// add with a more specific kind upgrades an earlier default class-kind plan.
// Returns true if the plan set changed.
func (r *Result) AddType(fqn string, kind TypeKind) bool {
	if fqn == "" {
		return false
	}

	if i, ok := r.typeFQNs[fqn]; ok {
		if r.Types[i].Kind == KindClass && kind != KindClass {
			r.Types[i].Kind = kind
			return true
		}

		return false
	}

	r.typeFQNs[fqn] = len(r.Types)
	r.Types = append(r.Types, TypePlan{FQN: fqn, Kind: kind})

	return true
}

// RemoveTypes deletes every type plan matching pred and rebuilds the FQN
// index. Only the final cleanup pass may call this.
func (r *Result) RemoveTypes(pred func(TypePlan) bool) {
	kept := r.Types[:0]

	for _, t := range r.Types {
		if !pred(t) {
			kept = append(kept, t)
		}
	}

	r.Types = kept
	r.typeFQNs = make(map[string]int, len(kept))

	for i, t := range kept {
		r.typeFQNs[t.FQN] = i
	}
}

func paramsKey(params []model.TypeRef) string {
	keys := make([]string, len(params))
	for i, p := range params {
		keys[i] = p.Key()
	}

	return strings.Join(keys, ",")
}

// AddField records a field plan unless one with the same owner and name
// exists. Returns true if appended.
func (r *Result) AddField(p FieldPlan) bool {
	key := p.Owner.FQN() + "#" + p.Name
	if r.fieldKeys[key] {
		return false
	}

	r.fieldKeys[key] = true
	r.Fields = append(r.Fields, p)

	return true
}

// AddConstructor records a constructor plan unless an identically shaped one
// exists. Returns true if appended.
func (r *Result) AddConstructor(p ConstructorPlan) bool {
	key := p.Owner.FQN() + "(" + paramsKey(p.Params) + ")"
	if r.ctorKeys[key] {
		return false
	}

	r.ctorKeys[key] = true
	r.Constructors = append(r.Constructors, p)

	return true
}

// AddMethod records a method plan unless an identically shaped one exists.
// Returns true if appended.
func (r *Result) AddMethod(p MethodPlan) bool {
	key := p.Owner.FQN() + "#" + p.Name + "(" + paramsKey(p.Params) + ")"
	if r.methodKeys[key] {
		return false
	}

	r.methodKeys[key] = true
	r.Methods = append(r.Methods, p)

	return true
}

// HasMethodWithArity reports whether a method with the owner, name and
// parameter count has already been synthesized in this run.
func (r *Result) HasMethodWithArity(owner model.TypeRef, name string, arity int) bool {
	fqn := owner.FQN()

	for i := range r.Methods {
		m := &r.Methods[i]
		if m.Name == name && len(m.Params) == arity && m.Owner.FQN() == fqn {
			return true
		}
	}

	return false
}

// SetAnnotationAttr records an inferred attribute type for an annotation.
// The first inference for an attribute wins.
func (r *Result) SetAnnotationAttr(fqn, attr, typeName string) {
	attrs, ok := r.AnnotationAttrs[fqn]
	if !ok {
		attrs = make(map[string]string)
		r.AnnotationAttrs[fqn] = attrs
	}

	if _, exists := attrs[attr]; !exists {
		attrs[attr] = typeName
	}
}
