package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicestub/internal/model"
	"slicestub/internal/oracle"
	"slicestub/internal/stub"
)

type source struct {
	path string
	text string
}

func buildProgram(t *testing.T, sources ...source) *model.Program {
	t.Helper()

	p := model.NewProgram()
	for _, s := range sources {
		_, err := p.AddSource(s.path, []byte(s.text), true)
		require.NoError(t, err)
	}

	return p
}

func collect(t *testing.T, cfg Config, ctx *oracle.Index, sources ...source) *stub.Result {
	t.Helper()

	res, err := New(buildProgram(t, sources...), ctx, cfg).Run()
	require.NoError(t, err)
	require.NotNil(t, res)

	return res
}

func typePlan(res *stub.Result, fqn string) (stub.TypePlan, bool) {
	for _, p := range res.Types {
		if p.FQN == fqn {
			return p, true
		}
	}

	return stub.TypePlan{}, false
}

func fieldPlan(res *stub.Result, owner, name string) (stub.FieldPlan, bool) {
	for _, p := range res.Fields {
		if p.Owner.FQN() == owner && p.Name == name {
			return p, true
		}
	}

	return stub.FieldPlan{}, false
}

func methodPlan(res *stub.Result, owner, name string) (stub.MethodPlan, bool) {
	for _, p := range res.Methods {
		if p.Owner.FQN() == owner && p.Name == name {
			return p, true
		}
	}

	return stub.MethodPlan{}, false
}

func TestCollect_CallReturnTypeFromVarInit(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"User.java", `
package pkg;
class User {
    void go(pkg.Box obj) {
        int n = obj.size();
    }
}
`})

	plan, ok := methodPlan(res, "pkg.Box", "size")
	require.True(t, ok, "expected a method plan for pkg.Box#size")
	assert.Equal(t, "int", plan.Return.Simple)
	assert.Empty(t, plan.Params)
	assert.False(t, plan.Static)

	_, ok = typePlan(res, "pkg.Box")
	assert.True(t, ok, "the owner type must be planned too")
}

func TestCollect_CallUsedForEffectAndValue(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"User.java", `
package pkg;
class User {
    void go(pkg.Gone g) {
        g.size();
        int n = g.size();
    }
}
`})

	// The effect-only occurrence comes first in source order; the typed
	// occurrence still decides the return for the whole group.
	plan, ok := methodPlan(res, "pkg.Gone", "size")
	require.True(t, ok, "expected a method plan for pkg.Gone#size")
	assert.Equal(t, "int", plan.Return.Simple)
	require.Len(t, res.Methods, 1)
}

func TestCollect_CallUsedForEffectAndValueStrict(t *testing.T) {
	prog := buildProgram(t, source{"User.java", `
package pkg;
class User {
    void go(pkg.Gone g) {
        g.size();
        int n = g.size();
    }
}
`})

	cfg := DefaultConfig()
	cfg.Strict = true

	res, err := New(prog, nil, cfg).Run()
	require.NoError(t, err, "a typed occurrence in the group gives usable context")

	plan, ok := methodPlan(res, "pkg.Gone", "size")
	require.True(t, ok)
	assert.Equal(t, "int", plan.Return.Simple)
}

func TestCollect_StaticImportConditionField(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Flags.java", `
package pkg;
import static ext.Api.FLAG;
class Flags {
    void go() {
        if (Api.FLAG) {
            done();
        }
    }
    void done() {}
}
`})

	plan, ok := fieldPlan(res, "ext.Api", "FLAG")
	require.True(t, ok, "expected a field plan for ext.Api#FLAG")
	assert.True(t, plan.Static)
	assert.True(t, plan.Type.IsBoolean())

	_, ok = typePlan(res, "ext.Api")
	assert.True(t, ok)

	// Exactly one field plan for the constant.
	count := 0
	for _, f := range res.Fields {
		if f.Name == "FLAG" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCollect_ConstantRewrittenNotStubbed(t *testing.T) {
	prog := buildProgram(t, source{"Push.java", `
package pkg;
class Push {
    void go() {
        send(PUSH_TOKEN);
    }
    void send(String token) {}
}
`})

	res, err := New(prog, nil, DefaultConfig()).Run()
	require.NoError(t, err)

	assert.Empty(t, res.Fields, "the constant must be rewritten, not stubbed")

	edits := prog.Edits(prog.SliceUnits()[0])
	require.Len(t, edits, 1)
	assert.Equal(t, `"PUSH_TOKEN"`, edits[0].Text)
}

func TestCollect_QualifiedInnerCreation(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Maker.java", `
package pkg;
import ext.Outer;
class Maker {
    Object go() {
        return new Outer().new Inner();
    }
}
`})

	_, ok := typePlan(res, "ext.Outer")
	assert.True(t, ok)

	_, ok = typePlan(res, "ext.Outer$Inner")
	assert.True(t, ok)

	require.Len(t, res.Constructors, 1)
	assert.Equal(t, "ext.Outer$Inner", res.Constructors[0].Owner.FQN())
}

func TestCollect_AmbiguityLenientRoutesToUnknown(t *testing.T) {
	sources := []source{{"Amb.java", `
package pkg;
import a.Widget;
import b.Widget;
class Amb {
    Widget w;
}
`}}

	res := collect(t, DefaultConfig(), nil, sources...)
	require.True(t, len(res.Diagnostics.Warnings) > 0)

	// Both imports anchor their own plan; the speculative unknown.Widget is
	// evicted by the cleanup pass.
	_, ok := typePlan(res, "a.Widget")
	assert.True(t, ok)
	_, ok = typePlan(res, "b.Widget")
	assert.True(t, ok)
	_, ok = typePlan(res, "unknown.Widget")
	assert.False(t, ok)
}

func TestCollect_AmbiguityStrictFails(t *testing.T) {
	prog := buildProgram(t, source{"Amb.java", `
package pkg;
import a.Widget;
import b.Widget;
class Amb {
    Widget w;
}
`})

	cfg := DefaultConfig()
	cfg.Strict = true

	_, err := New(prog, nil, cfg).Run()
	require.Error(t, err)

	var amb *AmbiguityError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "Widget", amb.Name)
	assert.ElementsMatch(t, []string{"a.Widget", "b.Widget"}, amb.Candidates)
}

func TestCollect_AnchoredEvictsUnknown(t *testing.T) {
	res := collect(t, DefaultConfig(), nil,
		source{"U1.java", `
package pkg;
class U1 {
    Thing bare;
}
`},
		source{"U2.java", `
package pkg;
import ext.Thing;
class U2 {
    Thing imported;
}
`})

	_, ok := typePlan(res, "ext.Thing")
	assert.True(t, ok)

	_, ok = typePlan(res, "unknown.Thing")
	assert.False(t, ok, "anchored plan must evict the unknown-package sibling")
}

func TestCollect_NoDuplicateTypePlans(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Mix.java", `
package pkg;
import ext.Box;
class Mix {
    Box a;
    Box b;
    Box make() { return null; }
    void use(Box c) {}
}
`})

	seen := map[string]bool{}
	for _, p := range res.Types {
		assert.False(t, seen[p.FQN], "duplicate type plan for %s", p.FQN)
		seen[p.FQN] = true
	}

	_, ok := typePlan(res, "ext.Box")
	assert.True(t, ok)
}

func TestCollect_Determinism(t *testing.T) {
	sources := []source{{"D.java", `
package pkg;
import ext.Box;
import static ext.Api.FLAG;
class D extends Base {
    Box field;
    void go(pkg.Gone g) {
        int n = g.size();
        if (Api.FLAG) {
            helper(1, 2);
        }
    }
}
`}}

	first, err := stub.ExportYAML(collect(t, DefaultConfig(), nil, sources...))
	require.NoError(t, err)

	second, err := stub.ExportYAML(collect(t, DefaultConfig(), nil, sources...))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestCollect_ImplicitCallFallsBackToEnclosing(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Solo.java", `
package pkg;
class Solo {
    void go() {
        helper(1);
    }
}
`})

	plan, ok := methodPlan(res, "pkg.Solo", "helper")
	require.True(t, ok)
	assert.True(t, plan.Return.Void, "side-effect-only calls synthesize void")
	require.Len(t, plan.Params, 1)
	assert.Equal(t, "int", plan.Params[0].Simple)

	// The enclosing class is declared in the slice: no type stub for it.
	_, ok = typePlan(res, "pkg.Solo")
	assert.False(t, ok)
}

func TestCollect_ImplicitCallPrefersSuperclass(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Child.java", `
package pkg;
import ext.Base;
class Child extends Base {
    void go() {
        inherited();
    }
}
`})

	plan, ok := methodPlan(res, "ext.Base", "inherited")
	require.True(t, ok)
	assert.True(t, plan.Return.Void)

	_, ok = methodPlan(res, "pkg.Child", "inherited")
	assert.False(t, ok)
}

func TestCollect_OracleSuppressesKnownMembers(t *testing.T) {
	ctx, err := oracle.Parse([]byte(`
types:
  ext.Base:
    methods:
      - name: inherited
`))
	require.NoError(t, err)

	res := collect(t, DefaultConfig(), ctx, source{"Child.java", `
package pkg;
import ext.Base;
class Child extends Base {
    void go() {
        inherited();
    }
}
`})

	_, ok := methodPlan(res, "ext.Base", "inherited")
	assert.False(t, ok, "a context-known member needs no stub")
}

func TestCollect_SingleInterfaceGetsDefaultMethod(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Impl.java", `
package pkg;
import ext.Hook;
class Impl implements Hook {
    void go() {
        fire();
    }
}
`})

	plan, ok := methodPlan(res, "ext.Hook", "fire")
	require.True(t, ok)
	assert.True(t, plan.DefaultOnInterface)

	tp, ok := typePlan(res, "ext.Hook")
	require.True(t, ok)
	assert.Equal(t, stub.KindInterface, tp.Kind)
}

func TestCollect_OverloadGap(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Both.java", `
package pkg;
class Box {
    public void put(String s) {}
}
class User {
    void go(Box b) {
        b.put(1, 2);
    }
}
`})

	plan, ok := methodPlan(res, "pkg.Box", "put")
	require.True(t, ok, "expected a synthesized overload")
	require.Len(t, plan.Params, 2)
	assert.Equal(t, "int", plan.Params[0].Simple)
	assert.Equal(t, stub.VisibilityPublic, plan.Visibility, "overloads copy the sibling's visibility")

	// The owner is declared in the slice: no type plan for it.
	_, ok = typePlan(res, "pkg.Box")
	assert.False(t, ok)
}

func TestCollect_ArityMatchedCallNeedsNoOverload(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Boxed.java", `
package pkg;
class Box {
    void put(Integer v) {}
}
class User {
    void go(Box b) {
        b.put(1);
    }
}
`})

	_, ok := methodPlan(res, "pkg.Box", "put")
	assert.False(t, ok, "the call resolves against the declared overload")
}

func TestCollect_VarargsCollapse(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Log.java", `
package pkg;
import ext.Log;
class User {
    void go(Log log) {
        log.write("a", "b");
    }
}
`})

	plan, ok := methodPlan(res, "ext.Log", "write")
	require.True(t, ok)
	assert.True(t, plan.Varargs)
	require.Len(t, plan.Params, 1)
	assert.Equal(t, 1, plan.Params[0].ArrayDims)
	assert.True(t, plan.Params[0].Elem().IsString())
}

func TestCollect_FieldWriteTypedFromValue(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"W.java", `
package pkg;
import ext.Counter;
class W {
    void go() {
        Counter.count = 5;
    }
}
`})

	plan, ok := fieldPlan(res, "ext.Counter", "count")
	require.True(t, ok)
	assert.True(t, plan.Static)
	assert.Equal(t, "int", plan.Type.Simple)
}

func TestCollect_ThrownAndCaughtTypes(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"T.java", `
package pkg;
import ext.AppError;
import ext.NetError;
class T {
    void go() throws AppError {
        try {
            risky();
        } catch (NetError | AppError e) {
            return;
        }
    }
    void risky() {}
}
`})

	_, ok := typePlan(res, "ext.AppError")
	assert.True(t, ok)
	_, ok = typePlan(res, "ext.NetError")
	assert.True(t, ok)
}

func TestCollect_SupertypePlans(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Impl.java", `
package pkg;
import ext.Base;
import ext.Hook;
class Impl extends Base implements Hook {
}
`})

	base, ok := typePlan(res, "ext.Base")
	require.True(t, ok)
	assert.Equal(t, stub.KindClass, base.Kind)

	hook, ok := typePlan(res, "ext.Hook")
	require.True(t, ok)
	assert.Equal(t, stub.KindInterface, hook.Kind)
}

func TestCollect_AnnotationsAndContainer(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"Marked.java", `
package pkg;
import ext.Tag;
class Marked {
    @Tag(name = "x", weight = 3)
    @Tag(name = "y")
    void a() {}

    @Deprecated
    void b() {}
}
`})

	tag, ok := typePlan(res, "ext.Tag")
	require.True(t, ok)
	assert.Equal(t, stub.KindAnnotation, tag.Kind)

	// Repeated use on one element plans the pluralized container.
	tags, ok := typePlan(res, "ext.Tags")
	require.True(t, ok)
	assert.Equal(t, stub.KindAnnotation, tags.Kind)

	attrs := res.AnnotationAttrs["ext.Tag"]
	require.NotNil(t, attrs)
	assert.Equal(t, "String", attrs["name"])
	assert.Equal(t, "int", attrs["weight"])

	// java.lang annotations are reserved.
	_, ok = typePlan(res, "java.lang.Deprecated")
	assert.False(t, ok)
}

func TestCollect_ReservedNamespacesNeverPlanned(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"J.java", `
package pkg;
import java.util.List;
import java.util.Map;
class J {
    List<String> names;
    Map<String, Integer> counts;
    void go() {
        String s = names.toString();
    }
}
`})

	for _, p := range res.Types {
		assert.False(t, model.IsReservedFQN(p.FQN), "reserved type planned: %s", p.FQN)
	}
}

func TestCollect_SliceTypeAllowlist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SliceTypes = []string{"pkg.Kept"}

	res := collect(t, cfg, nil, source{"Two.java", `
package pkg;
import ext.A;
import ext.B;
class Kept {
    void go(A a) {
        a.poke();
    }
}
class Skipped {
    void go(B b) {
        b.poke();
    }
}
`})

	_, ok := methodPlan(res, "ext.A", "poke")
	assert.True(t, ok)

	_, ok = methodPlan(res, "ext.B", "poke")
	assert.False(t, ok, "elements outside the allowlist are not visited")
}

func TestCollect_OwnerClosure(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"C.java", `
package pkg;
import ext.Box;
import ext.Item;
class C {
    void go(Box box) {
        Item item = box.take();
    }
}
`})

	// take() returns ext.Item; the closure pass must plan Item even though
	// nothing else references it directly.
	plan, ok := methodPlan(res, "ext.Box", "take")
	require.True(t, ok)
	assert.Equal(t, "ext.Item", plan.Return.FQN())

	_, ok = typePlan(res, "ext.Item")
	assert.True(t, ok)
}

func TestCollect_CanonicalizeNestedPrefix(t *testing.T) {
	ctx, err := oracle.Parse([]byte(`
types:
  ext.Outer: {}
`))
	require.NoError(t, err)

	res := collect(t, DefaultConfig(), ctx, source{"N.java", `
package pkg;
class N {
    ext.Outer.Inner field;
}
`})

	_, ok := typePlan(res, "ext.Outer$Inner")
	assert.True(t, ok, "a context-known prefix becomes the declaring type")

	_, ok = typePlan(res, "ext.Outer.Inner")
	assert.False(t, ok)
}

func TestCanonicalizeFQNIdempotent(t *testing.T) {
	ctx, err := oracle.Parse([]byte(`
types:
  ext.Outer: {}
`))
	require.NoError(t, err)

	c := New(model.NewProgram(), ctx, DefaultConfig())

	once := c.canonicalizeFQN(model.ParseTypeText("ext.Outer.Inner"))
	assert.Equal(t, "ext.Outer$Inner", once.FQN())

	twice := c.canonicalizeFQN(once)
	assert.Equal(t, once, twice)

	// A name with no type-like prefix passes through unchanged.
	plain := model.ParseTypeText("com.acme.Widget")
	assert.Equal(t, plain, c.canonicalizeFQN(plain))
}

func TestCollect_MethodReference(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"R.java", `
package pkg;
import ext.Mapper;
class R {
    Object go() {
        return Mapper::convert;
    }
}
`})

	plan, ok := methodPlan(res, "ext.Mapper", "convert")
	require.True(t, ok)
	assert.True(t, plan.Static)

	_, ok = typePlan(res, "ext.Mapper")
	assert.True(t, ok)
}

func TestCollect_ImportAnchors(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"I.java", `
package pkg;
import ext.Unused;
import static ext.Util.helper;
import java.util.List;
class I {
}
`})

	_, ok := typePlan(res, "ext.Unused")
	assert.True(t, ok, "unresolved single-type imports anchor a type plan")

	_, ok = typePlan(res, "ext.Util")
	assert.True(t, ok, "static imports anchor their owning type")

	_, ok = typePlan(res, "java.util.List")
	assert.False(t, ok)
}

func TestCollect_SuperInvocationPlansConstructor(t *testing.T) {
	res := collect(t, DefaultConfig(), nil, source{"S.java", `
package pkg;
import ext.Base;
class S extends Base {
    S(String name) {
        super(name, 3);
    }
}
`})

	require.Len(t, res.Constructors, 1)
	ctor := res.Constructors[0]
	assert.Equal(t, "ext.Base", ctor.Owner.FQN())
	require.Len(t, ctor.Params, 2)
	assert.True(t, ctor.Params[0].IsString())
	assert.Equal(t, "int", ctor.Params[1].Simple)
}
