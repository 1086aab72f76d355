package stub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicestub/internal/model"
)

func TestAddType_Dedup(t *testing.T) {
	r := NewResult()

	assert.True(t, r.AddType("pkg.Widget", KindClass))
	assert.False(t, r.AddType("pkg.Widget", KindClass))
	assert.Len(t, r.Types, 1)
	assert.True(t, r.HasType("pkg.Widget"))
}

func TestAddType_KindUpgrade(t *testing.T) {
	r := NewResult()

	r.AddType("pkg.Handler", KindClass)
	assert.True(t, r.AddType("pkg.Handler", KindInterface))

	require.Len(t, r.Types, 1)
	assert.Equal(t, KindInterface, r.Types[0].Kind)

	// A specific kind never downgrades back to class.
	assert.False(t, r.AddType("pkg.Handler", KindClass))
	assert.Equal(t, KindInterface, r.Types[0].Kind)
}

func TestRemoveTypes_RebuildsIndex(t *testing.T) {
	r := NewResult()
	r.AddType("unknown.Widget", KindClass)
	r.AddType("pkg.Widget", KindClass)
	r.AddType("pkg.Other", KindClass)

	r.RemoveTypes(func(p TypePlan) bool { return !p.Anchored() })

	assert.False(t, r.HasType("unknown.Widget"))
	assert.True(t, r.HasType("pkg.Widget"))
	assert.True(t, r.HasType("pkg.Other"))

	// The index still accepts re-adds after compaction.
	assert.True(t, r.AddType("unknown.Widget", KindClass))
}

func TestTypePlan_Anchored(t *testing.T) {
	assert.True(t, TypePlan{FQN: "pkg.Widget"}.Anchored())
	assert.True(t, TypePlan{FQN: "pkg.Outer$Inner"}.Anchored())
	assert.False(t, TypePlan{FQN: "unknown.Widget"}.Anchored())
	assert.False(t, TypePlan{FQN: "Widget"}.Anchored())
}

func TestTypePlan_SimpleName(t *testing.T) {
	assert.Equal(t, "Widget", TypePlan{FQN: "pkg.Widget"}.SimpleName())
	assert.Equal(t, "Inner", TypePlan{FQN: "pkg.Outer$Inner"}.SimpleName())
	assert.Equal(t, "Widget", TypePlan{FQN: "Widget"}.SimpleName())
}

func TestAddField_Dedup(t *testing.T) {
	r := NewResult()
	owner := model.ClassRef("pkg", "Box")

	assert.True(t, r.AddField(FieldPlan{Owner: owner, Name: "size", Type: model.PrimitiveRef("int")}))
	assert.False(t, r.AddField(FieldPlan{Owner: owner, Name: "size", Type: model.StringRef()}))
	assert.Len(t, r.Fields, 1)
}

func TestAddMethod_KeyedBySignature(t *testing.T) {
	r := NewResult()
	owner := model.ClassRef("pkg", "Box")

	assert.True(t, r.AddMethod(MethodPlan{Owner: owner, Name: "get", Return: model.PrimitiveRef("int")}))
	assert.False(t, r.AddMethod(MethodPlan{Owner: owner, Name: "get", Return: model.VoidRef()}))

	// A different parameter shape is a new overload.
	assert.True(t, r.AddMethod(MethodPlan{
		Owner:  owner,
		Name:   "get",
		Return: model.PrimitiveRef("int"),
		Params: []model.TypeRef{model.PrimitiveRef("int")},
	}))

	assert.True(t, r.HasMethodWithArity(owner, "get", 0))
	assert.True(t, r.HasMethodWithArity(owner, "get", 1))
	assert.False(t, r.HasMethodWithArity(owner, "get", 2))
}

func TestAddConstructor_Dedup(t *testing.T) {
	r := NewResult()
	owner := model.ClassRef("pkg", "Box")

	assert.True(t, r.AddConstructor(ConstructorPlan{Owner: owner}))
	assert.False(t, r.AddConstructor(ConstructorPlan{Owner: owner}))
	assert.True(t, r.AddConstructor(ConstructorPlan{Owner: owner, Params: []model.TypeRef{model.StringRef()}}))
	assert.Len(t, r.Constructors, 2)
}

func TestSetAnnotationAttr_FirstWins(t *testing.T) {
	r := NewResult()

	r.SetAnnotationAttr("pkg.Mark", "value", "int")
	r.SetAnnotationAttr("pkg.Mark", "value", "String")
	r.SetAnnotationAttr("pkg.Mark", "label", "String")

	assert.Equal(t, "int", r.AnnotationAttrs["pkg.Mark"]["value"])
	assert.Equal(t, "String", r.AnnotationAttrs["pkg.Mark"]["label"])
}

func TestExport_SortedAndStable(t *testing.T) {
	r := NewResult()
	r.AddType("pkg.Zeta", KindClass)
	r.AddType("pkg.Alpha", KindInterface)
	r.AddField(FieldPlan{Owner: model.ClassRef("pkg", "Zeta"), Name: "b", Type: model.PrimitiveRef("int")})
	r.AddField(FieldPlan{Owner: model.ClassRef("pkg", "Zeta"), Name: "a", Type: model.PrimitiveRef("int"), Static: true})
	r.AddMethod(MethodPlan{Owner: model.ClassRef("pkg", "Alpha"), Name: "go", Return: model.VoidRef()})

	doc := Export(r)

	require.Len(t, doc.Types, 2)
	assert.Equal(t, "pkg.Alpha", doc.Types[0].Name)
	assert.Equal(t, "interface", doc.Types[0].Kind)
	assert.Equal(t, "pkg.Zeta", doc.Types[1].Name)

	require.Len(t, doc.Fields, 2)
	assert.Equal(t, "a", doc.Fields[0].Name)
	assert.True(t, doc.Fields[0].Static)

	require.Len(t, doc.Methods, 1)
	assert.Equal(t, "void", doc.Methods[0].Returns)
	assert.Equal(t, "public", doc.Methods[0].Visibility)

	// Exporting twice yields identical documents.
	again := Export(r)
	assert.Equal(t, doc, again)
}

func TestExportYAML(t *testing.T) {
	r := NewResult()
	r.AddType("unknown.Unknown", KindClass)

	data, err := ExportYAML(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unknown.Unknown")
}
