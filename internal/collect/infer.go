package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"slicestub/internal/model"
)

// usageKind is the closed set of expression contexts the inference engine
// distinguishes. Dispatch is exhaustive: every kind has an explicit arm in
// inferExpectedType, and usageNone is an answer, not a fallthrough.
type usageKind int

const (
	usageNone usageKind = iota
	usageAssignTarget
	usageAssignSource
	usageVarInit
	usageCondition
	usageArrayIndex
	usageArrayTarget
	usageReturn
	usageArgument
	usageStringConcat
	usageArithmetic
	usageLogical
	usageUnaryNot
	usageUnaryNumeric
	usageInstanceofLeft
)

// classifyUsage decides the usage kind of an expression from its immediate
// parent node, returning the parent for the arms that need it.
func (c *Collector) classifyUsage(u *model.Unit, n *sitter.Node) (usageKind, *sitter.Node) {
	parent := n.Parent()
	if parent == nil {
		return usageNone, nil
	}

	switch parent.Type() {
	case "assignment_expression":
		if left := parent.ChildByFieldName("left"); left != nil && left.Equal(n) {
			return usageAssignTarget, parent
		}

		return usageAssignSource, parent

	case "variable_declarator":
		if value := parent.ChildByFieldName("value"); value != nil && value.Equal(n) {
			return usageVarInit, parent
		}

		return usageNone, parent

	case "if_statement", "while_statement", "do_statement":
		if cond := parent.ChildByFieldName("condition"); cond != nil && cond.Equal(n) {
			return usageCondition, parent
		}

		return usageNone, parent

	case "for_statement":
		if cond := parent.ChildByFieldName("condition"); cond != nil && cond.Equal(n) {
			return usageCondition, parent
		}

		return usageNone, parent

	case "ternary_expression":
		if cond := parent.ChildByFieldName("condition"); cond != nil && cond.Equal(n) {
			return usageCondition, parent
		}

		return usageNone, parent

	case "parenthesized_expression":
		// Condition parentheses are transparent for inference.
		return c.classifyUsage(u, parent)

	case "array_access":
		if index := parent.ChildByFieldName("index"); index != nil && index.Equal(n) {
			return usageArrayIndex, parent
		}

		return usageArrayTarget, parent

	case "return_statement":
		return usageReturn, parent

	case "argument_list":
		return usageArgument, parent

	case "binary_expression":
		return c.classifyBinaryUsage(u, parent, n)

	case "unary_expression":
		if op := parent.ChildByFieldName("operator"); op != nil && op.Type() == "!" {
			return usageUnaryNot, parent
		}

		return usageUnaryNumeric, parent

	case "instanceof_expression":
		return usageInstanceofLeft, parent

	default:
		return usageNone, parent
	}
}

func (c *Collector) classifyBinaryUsage(u *model.Unit, binary, n *sitter.Node) (usageKind, *sitter.Node) {
	op := ""
	if opNode := binary.ChildByFieldName("operator"); opNode != nil {
		op = opNode.Type()
	}

	switch op {
	case "&&", "||":
		return usageLogical, binary
	case "==", "!=", "<", ">", "<=", ">=":
		return usageArithmetic, binary
	case "+":
		if sib := siblingOperand(binary, n); sib != nil {
			if t, err := c.prog.TypeOfExpr(u, sib); err == nil && t.IsString() {
				return usageStringConcat, binary
			}

			if sib.Type() == "string_literal" || sib.Type() == "text_block" {
				return usageStringConcat, binary
			}
		}

		return usageArithmetic, binary
	default:
		return usageArithmetic, binary
	}
}

func siblingOperand(binary, n *sitter.Node) *sitter.Node {
	left := binary.ChildByFieldName("left")
	right := binary.ChildByFieldName("right")

	if left != nil && left.Equal(n) {
		return right
	}

	return left
}

// inferExpectedType infers the type an expression is expected to have from
// its usage context. ok is false when no applicable parent context exists;
// every caller has an explicit policy for that case.
func (c *Collector) inferExpectedType(u *model.Unit, n *sitter.Node) (model.TypeRef, bool) {
	return c.inferExpected(u, n, 0)
}

func (c *Collector) inferExpected(u *model.Unit, n *sitter.Node, depth int) (model.TypeRef, bool) {
	if n == nil || depth >= c.maxDepth() {
		return model.TypeRef{}, false
	}

	kind, parent := c.classifyUsage(u, n)

	switch kind {
	case usageAssignTarget:
		// A write's expected type comes from the assigned value.
		if t, err := c.prog.TypeOfExpr(u, parent.ChildByFieldName("right")); err == nil && !t.IsZero() && !t.Null {
			return t, true
		}

		return model.TypeRef{}, false

	case usageAssignSource:
		if t, err := c.prog.TypeOfExpr(u, parent.ChildByFieldName("left")); err == nil && !t.IsZero() {
			return t, true
		}

		return model.TypeRef{}, false

	case usageVarInit:
		return declaredTypeOfDeclarator(u, parent)

	case usageCondition, usageLogical, usageUnaryNot:
		return model.PrimitiveRef("boolean"), true

	case usageArrayIndex:
		return model.PrimitiveRef("int"), true

	case usageArrayTarget:
		// The expected type of the array expression is an array of whatever
		// the access itself is expected to be.
		if elem, ok := c.inferExpected(u, parent, depth+1); ok {
			return elem.WithArrayDims(elem.ArrayDims + 1), true
		}

		return model.TypeRef{}, false

	case usageReturn:
		if ret, ok := c.prog.EnclosingMethodReturn(u, n); ok && !ret.Void {
			return ret, true
		}

		return model.TypeRef{}, false

	case usageArgument:
		return c.inferArgumentType(u, parent, n)

	case usageStringConcat:
		return model.StringRef(), true

	case usageArithmetic:
		if sib := siblingOperand(parent, n); sib != nil {
			if t, err := c.prog.TypeOfExpr(u, sib); err == nil && t.IsNumeric() {
				return t, true
			}
		}

		return model.PrimitiveRef("int"), true

	case usageUnaryNumeric:
		return model.PrimitiveRef("int"), true

	case usageInstanceofLeft:
		return model.TypeRef{}, false

	case usageNone:
		return model.TypeRef{}, false

	default:
		return model.TypeRef{}, false
	}
}

// declaredTypeOfDeclarator returns the declared type of the variable or
// field a declarator initializes.
func declaredTypeOfDeclarator(u *model.Unit, declarator *sitter.Node) (model.TypeRef, bool) {
	decl := declarator.Parent()
	if decl == nil {
		return model.TypeRef{}, false
	}

	switch decl.Type() {
	case "local_variable_declaration", "field_declaration":
		if typeNode := decl.ChildByFieldName("type"); typeNode != nil {
			t := model.ParseTypeText(u.Text(typeNode))
			if !t.IsZero() {
				return t, true
			}
		}
	}

	return model.TypeRef{}, false
}

// inferArgumentType resolves the formal parameter type matching an argument
// position. It trusts the call's declared signature only when the signature
// is sane; otherwise it falls back to deriving parameter types from the
// arguments themselves, which for the asked position means no contextual
// answer.
func (c *Collector) inferArgumentType(u *model.Unit, argList, arg *sitter.Node) (model.TypeRef, bool) {
	call := argList.Parent()
	if call == nil || call.Type() != "method_invocation" {
		return model.TypeRef{}, false
	}

	index := -1

	for i, a := range model.Args(call) {
		if a.Equal(arg) {
			index = i
			break
		}
	}

	if index < 0 {
		return model.TypeRef{}, false
	}

	m, _, err := c.prog.ResolveCall(u, call)
	if err != nil || m == nil {
		return model.TypeRef{}, false
	}

	params := m.Params
	if !saneSignature(params, len(model.Args(call)), m.Varargs) {
		return model.TypeRef{}, false
	}

	if m.Varargs && index >= len(params)-1 {
		last := params[len(params)-1]
		return last.Elem(), true
	}

	if index < len(params) {
		return params[index], true
	}

	return model.TypeRef{}, false
}

// saneSignature reports whether a declared parameter list can be trusted:
// every type present, none the null type, none an un-anchored Unknown, and
// the arity matching the call.
func saneSignature(params []model.TypeRef, argc int, varargs bool) bool {
	for _, p := range params {
		if p.IsZero() || p.Null || p.IsUnknown() {
			return false
		}
	}

	if varargs {
		return argc >= len(params)-1
	}

	return argc == len(params)
}

// argType derives a parameter type from an argument expression: literals map
// to their primitive or String type, an unresolved static-field-style
// argument resolves to its owner type, and anything else uses the
// argument's own type or the Unknown sentinel.
func (c *Collector) argType(u *model.Unit, arg *sitter.Node) (model.TypeRef, error) {
	t, err := c.prog.TypeOfExpr(u, arg)
	if err == nil && !t.IsZero() && !t.Null {
		return t, nil
	}

	if arg.Type() == "field_access" {
		object := arg.ChildByFieldName("object")
		if object != nil && (object.Type() == "identifier" || object.Type() == "scoped_identifier") {
			raw := model.ParseTypeText(u.Text(object))

			owner, rerr := c.resolveOwner(u, raw, siteOf(u, arg))
			if rerr != nil {
				return model.TypeRef{}, rerr
			}

			return owner, nil
		}
	}

	return model.UnknownRef(), nil
}

// inferParamTypes synthesizes the parameter list for an unresolved call.
// The declared signature is preferred only when sane; otherwise each
// parameter derives from its argument expression. A trailing pair of
// identically typed arguments collapses into one variable-arity parameter.
func (c *Collector) inferParamTypes(u *model.Unit, call *sitter.Node) ([]model.TypeRef, bool, error) {
	args := model.Args(call)

	if call.Type() == "method_invocation" {
		if m, _, err := c.prog.ResolveCall(u, call); err == nil && m != nil {
			if len(m.Params) == len(args) && saneSignature(m.Params, len(args), false) {
				return m.Params, m.Varargs, nil
			}
		}
	}

	params := make([]model.TypeRef, 0, len(args))

	for _, arg := range args {
		t, err := c.argType(u, arg)
		if err != nil {
			return nil, false, err
		}

		params = append(params, t)
	}

	return collapseTrailingPair(params)
}

// collapseTrailingPair folds a trailing pair of identically typed
// parameters into a single variable-arity parameter.
func collapseTrailingPair(params []model.TypeRef) ([]model.TypeRef, bool, error) {
	n := len(params)
	if n < 2 {
		return params, false, nil
	}

	last, prev := params[n-1], params[n-2]
	if last.IsZero() || last.IsUnknown() || !last.Equal(prev) {
		return params, false, nil
	}

	collapsed := append([]model.TypeRef{}, params[:n-1]...)
	collapsed[n-2] = last.WithArrayDims(last.ArrayDims + 1)

	return collapsed, true, nil
}
