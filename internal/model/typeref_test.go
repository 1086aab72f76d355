package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTypeText_Primitives(t *testing.T) {
	ref := ParseTypeText("int")
	assert.True(t, ref.Primitive)
	assert.Equal(t, "int", ref.Simple)
	assert.True(t, ref.IsNumeric())

	ref = ParseTypeText("boolean")
	assert.True(t, ref.IsBoolean())

	ref = ParseTypeText("void")
	assert.True(t, ref.Void)
}

func TestParseTypeText_Qualified(t *testing.T) {
	ref := ParseTypeText("com.acme.Widget")
	assert.Equal(t, "com.acme", ref.Package)
	assert.Equal(t, "Widget", ref.Simple)
	assert.Equal(t, "com.acme.Widget", ref.FQN())
}

func TestParseTypeText_Bare(t *testing.T) {
	ref := ParseTypeText("Widget")
	assert.Equal(t, "", ref.Package)
	assert.Equal(t, "Widget", ref.Simple)
	assert.False(t, ref.Qualified())
}

func TestParseTypeText_Arrays(t *testing.T) {
	ref := ParseTypeText("String[][]")
	assert.Equal(t, 2, ref.ArrayDims)
	assert.Equal(t, "String", ref.Simple)

	elem := ref.Elem()
	assert.Equal(t, 1, elem.ArrayDims)
}

func TestParseTypeText_Varargs(t *testing.T) {
	ref := ParseTypeText("int...")
	assert.Equal(t, 1, ref.ArrayDims)
	assert.True(t, ref.Primitive)
}

func TestParseTypeText_Generics(t *testing.T) {
	ref := ParseTypeText("java.util.Map<String, com.acme.Widget>")
	assert.Equal(t, "Map", ref.Simple)
	assert.Equal(t, "java.util", ref.Package)
	assert.Len(t, ref.Args, 2)
	assert.Equal(t, "String", ref.Args[0].Simple)
	assert.Equal(t, "com.acme", ref.Args[1].Package)
}

func TestParseTypeText_Wildcard(t *testing.T) {
	ref := ParseTypeText("java.util.List<?>")
	assert.Len(t, ref.Args, 1)
	assert.Equal(t, "java.lang.Object", ref.Args[0].FQN())
}

func TestRefFromFQN_Nested(t *testing.T) {
	ref := RefFromFQN("com.acme.Outer$Inner")
	assert.Equal(t, "Inner", ref.Simple)
	assert.NotNil(t, ref.Declaring)
	assert.Equal(t, "Outer", ref.Declaring.Simple)
	assert.Equal(t, "com.acme.Outer$Inner", ref.FQN())
}

func TestRefFromFQN_RoundTrip(t *testing.T) {
	for _, fqn := range []string{
		"unknown.Unknown",
		"com.acme.Widget",
		"com.acme.Outer$Inner$Deepest",
	} {
		assert.Equal(t, fqn, RefFromFQN(fqn).FQN())
	}
}

func TestUnknownRef(t *testing.T) {
	ref := UnknownRef()
	assert.True(t, ref.IsUnknown())
	assert.Equal(t, "unknown.Unknown", ref.FQN())
}

func TestKeyDistinguishesArrays(t *testing.T) {
	scalar := ParseTypeText("com.acme.Widget")
	array := ParseTypeText("com.acme.Widget[]")
	assert.NotEqual(t, scalar.Key(), array.Key())
}

func TestIsReservedFQN(t *testing.T) {
	assert.True(t, IsReservedFQN("java.util.List"))
	assert.True(t, IsReservedFQN("javax.annotation.Nullable"))
	assert.True(t, IsReservedFQN("com.sun.misc.Thing"))
	assert.False(t, IsReservedFQN("com.acme.Widget"))
	assert.False(t, IsReservedFQN("unknown.Unknown"))
}

func TestIsJavaLangType(t *testing.T) {
	assert.True(t, IsJavaLangType("String"))
	assert.True(t, IsJavaLangType("RuntimeException"))
	assert.False(t, IsJavaLangType("Widget"))
}
