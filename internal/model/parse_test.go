package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, path, src string) (*Program, *Unit) {
	t.Helper()

	p := NewProgram()
	u, err := p.AddSource(path, []byte(src), true)
	require.NoError(t, err)
	require.NotNil(t, u)

	return p, u
}

func TestAddSource_PackageAndImports(t *testing.T) {
	_, u := load(t, "Svc.java", `
package com.acme;

import java.util.List;
import com.other.*;
import static ext.Api.FLAG;
import static ext.Helpers.*;

public class Svc {}
`)

	assert.Equal(t, "com.acme", u.Package)
	require.Len(t, u.Imports, 4)

	assert.Equal(t, ImportSingle, u.Imports[0].Kind)
	assert.Equal(t, "java.util.List", u.Imports[0].Path)
	assert.Equal(t, "List", u.Imports[0].TypeName())

	assert.Equal(t, ImportOnDemand, u.Imports[1].Kind)
	assert.Equal(t, "com.other", u.Imports[1].Path)

	assert.Equal(t, ImportStatic, u.Imports[2].Kind)
	assert.Equal(t, "FLAG", u.Imports[2].MemberName())
	assert.Equal(t, "ext.Api", u.Imports[2].OwnerFQN())

	assert.Equal(t, ImportStaticOnDemand, u.Imports[3].Kind)
	assert.Equal(t, "ext.Helpers", u.Imports[3].OwnerFQN())
}

func TestAddSource_IndexesDeclarations(t *testing.T) {
	p, _ := load(t, "Outer.java", `
package com.acme;

public class Outer {
    private int count;
    static final String NAME = "x";

    public Outer(int count) { this.count = count; }

    public int count() { return count; }

    static class Inner {
        void poke() {}
    }
}

interface Hook {
    void fire();
}
`)

	outer := p.DeclaredType("com.acme.Outer")
	require.NotNil(t, outer)
	assert.Equal(t, DeclClass, outer.Kind)

	field := outer.Field("count")
	require.NotNil(t, field)
	assert.True(t, field.Type.Primitive)
	assert.False(t, field.Static)

	name := outer.Field("NAME")
	require.NotNil(t, name)
	assert.True(t, name.Static)

	ctors := outer.MethodsNamed(CtorName)
	require.Len(t, ctors, 1)
	assert.Len(t, ctors[0].Params, 1)

	inner := p.DeclaredType("com.acme.Outer$Inner")
	require.NotNil(t, inner)
	assert.Equal(t, "com.acme.Outer$Inner", inner.Ref().FQN())

	hook := p.DeclaredType("com.acme.Hook")
	require.NotNil(t, hook)
	assert.Equal(t, DeclInterface, hook.Kind)
}

func TestAddSource_SupertypesAndEnum(t *testing.T) {
	p, _ := load(t, "Impl.java", `
package com.acme;

public class Impl extends Base implements Runnable, Closeable {
    public void run() {}
    public void close() {}
}

enum Color { RED, GREEN }
`)

	impl := p.DeclaredType("com.acme.Impl")
	require.NotNil(t, impl)
	assert.Equal(t, "Base", impl.Superclass)
	assert.Equal(t, []string{"Runnable", "Closeable"}, impl.Interfaces)

	color := p.DeclaredType("com.acme.Color")
	require.NotNil(t, color)
	assert.Equal(t, DeclEnum, color.Kind)

	red := color.Field("RED")
	require.NotNil(t, red)
	assert.True(t, red.Static)
	assert.Equal(t, "com.acme.Color", red.Type.FQN())
}

func TestAddSource_VarargsMethod(t *testing.T) {
	p, _ := load(t, "Fmt.java", `
package com.acme;

class Fmt {
    static String join(String sep, String... parts) { return sep; }
}
`)

	fmtDecl := p.DeclaredType("com.acme.Fmt")
	require.NotNil(t, fmtDecl)

	methods := fmtDecl.MethodsNamed("join")
	require.Len(t, methods, 1)

	m := methods[0]
	assert.True(t, m.Varargs)
	assert.True(t, m.Static)
	require.Len(t, m.Params, 2)
	assert.Equal(t, 1, m.Params[1].ArrayDims)
}

func TestResolveTypeName(t *testing.T) {
	p := NewProgram()

	_, err := p.AddSource("Box.java", []byte(`
package pkg;
public class Box { static class Lid {} }
`), true)
	require.NoError(t, err)

	u, err := p.AddSource("User.java", []byte(`
package pkg;
import java.util.List;
public class User {}
`), true)
	require.NoError(t, err)

	d, err := p.ResolveTypeName(u, "Box")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "pkg.Box", d.FQN)

	d, err = p.ResolveTypeName(u, "Box.Lid")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "pkg.Box$Lid", d.FQN)

	d, err = p.ResolveTypeName(u, "Missing")
	require.NoError(t, err)
	assert.Nil(t, d)
}
