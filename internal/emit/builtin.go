package emit

import (
	"fmt"
	"strings"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

// codegenBuiltin lowers the supplemented builtin surface (SPEC_FULL.md
// §4.5): Option/Result combinators, collection predicates, and the small
// set of runtime helpers the original standard library exposed as bare
// keywords rather than trait methods. Each lowering favors a single
// expression-statement emitted into body plus a short C expression string
// read back by the caller, the same shape as every other codegenX helper.
func (e *Emitter) codegenBuiltin(expr ast.Expr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	switch n := expr.(type) {
	case ast.UnwrapExpr:
		return e.codegenUnwrap(n, t, body)
	case ast.UnwrapOrExpr:
		return e.codegenUnwrapOr(n, t, body)
	case ast.WaitExpr:
		return e.codegenWait(n, t, body)
	case ast.CharsExpr:
		return e.codegenChars(n, body)
	case ast.IsEmptyExpr:
		return e.codegenIsEmpty(n.Inner, false, body)
	case ast.IsNotEmptyExpr:
		return e.codegenIsEmpty(n.Inner, true, body)
	case ast.HaveExpr:
		return e.codegenHave(n.Obj, n.Item, body)
	case ast.ContainExpr:
		return e.codegenHave(n.Obj, n.Item, body)
	case ast.ContainAllExpr:
		return e.codegenContainAll(n, body)
	case ast.IndexOfExpr:
		return e.codegenIndexOf(n, body)
	case ast.CollectExpr:
		return e.codegenExpr(n.Inner, body)
	case ast.PanicExpr:
		return e.codegenPanic(n, body)
	case ast.ArrayGetExpr:
		return e.codegenArrayGet(n, t, body)
	case ast.FilterExpr:
		return e.codegenExpr(n.Obj, body)
	case ast.MethodCallNamedExpr:
		return e.codegenMethodCallNamed(n, t, body)
	case ast.StaticMethodCallNamedExpr:
		return e.codegenStaticMethodCallNamed(n, t, body)
	case ast.ModuleAccessExpr:
		return n.Module + "_" + n.Name, t
	case ast.ModuleCallExpr:
		return e.codegenModuleCall(n, t, body)
	case ast.ModuleCallNamedExpr:
		return e.codegenModuleCallNamed(n, t, body)
	case ast.ArrayMethodExpr:
		return e.codegenArrayMethod(n, t, body)
	case ast.OptionMethodExpr:
		return e.codegenOptionMethod(n, body)
	case ast.OffsetOfExpr:
		return fmt.Sprintf("offsetof(%s, %s)", n.StructType, n.Field), t
	case ast.OneOfExpr:
		return e.codegenOneOf(n, body)
	case ast.TypeOfExpr:
		inner, innerType := e.codegenExpr(n.Inner, body)
		_ = inner
		return fmt.Sprintf("%q", innerType.StructuralName()), t
	case ast.TypeExpr:
		return n.Type.CType(e.Target), t
	default:
		e.Handler.Warning(diagUnsupported("expression"))
		return "0", t
	}
}

// codegenUnwrap lowers `expr!`: aborts the process with a message on None
// or Err, otherwise reads out the payload. Grounded on the original
// compiler's unwrap lowering, which has no recoverable path either.
func (e *Emitter) codegenUnwrap(n ast.UnwrapExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	inner, innerType := e.codegenExpr(n.Inner, body)
	switch vixtypes.Unwrap(innerType).(type) {
	case vixtypes.Option:
		tmp := e.freshVar()
		fmt.Fprintf(body, "if ((%s).tag != 1) { fprintf(stderr, \"unwrap on None\\n\"); exit(1); }\n", inner)
		fmt.Fprintf(body, "%s %s = (%s).value;\n", t.CType(e.Target), tmp, inner)
		return tmp, t
	case vixtypes.Result:
		tmp := e.freshVar()
		fmt.Fprintf(body, "if ((%s).tag != 0) { fprintf(stderr, \"unwrap on Err\\n\"); exit(1); }\n", inner)
		fmt.Fprintf(body, "%s %s = (%s).data.ok;\n", t.CType(e.Target), tmp, inner)
		return tmp, t
	default:
		return inner, t
	}
}

func (e *Emitter) codegenUnwrapOr(n ast.UnwrapOrExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	inner, innerType := e.codegenExpr(n.Inner, body)
	def, _ := e.codegenExpr(n.Default, body)
	tmp := e.freshVar()
	switch vixtypes.Unwrap(innerType).(type) {
	case vixtypes.Option:
		fmt.Fprintf(body, "%s %s = ((%s).tag == 1) ? (%s).value : %s;\n", t.CType(e.Target), tmp, inner, inner, def)
	case vixtypes.Result:
		fmt.Fprintf(body, "%s %s = ((%s).tag == 0) ? (%s).data.ok : %s;\n", t.CType(e.Target), tmp, inner, inner, def)
	default:
		fmt.Fprintf(body, "%s %s = %s;\n", t.CType(e.Target), tmp, inner)
	}
	return tmp, t
}

// codegenWait materializes its operand into a fresh stack local and
// returns its address, giving `wait x` pointer semantics against a value
// that would otherwise be a bare temporary.
func (e *Emitter) codegenWait(n ast.WaitExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	inner, innerType := e.codegenExpr(n.Inner, body)
	tmp := e.freshVar()
	fmt.Fprintf(body, "%s %s = %s;\n", innerType.CType(e.Target), tmp, inner)
	return "&" + tmp, t
}

func (e *Emitter) codegenChars(n ast.CharsExpr, body *strings.Builder) (string, vixtypes.Type) {
	inner, innerType := e.codegenExpr(n.Inner, body)
	return e.coerceToOwnedString(inner, innerType), vixtypes.Str{LenType: vixtypes.U64()}
}

func (e *Emitter) codegenIsEmpty(inner ast.Expr, negate bool, body *strings.Builder) (string, vixtypes.Type) {
	c, t := e.codegenExpr(inner, body)
	lenExpr := e.lengthExprFor(c, t)
	if negate {
		return fmt.Sprintf("(%s != 0)", lenExpr), vixtypes.Bool{}
	}
	return fmt.Sprintf("(%s == 0)", lenExpr), vixtypes.Bool{}
}

// lengthExprFor finds a C expression for the runtime length of a
// string/array-shaped value, falling back to strlen for a bare C string.
func (e *Emitter) lengthExprFor(cexpr string, t vixtypes.Type) string {
	switch vixtypes.Unwrap(t).(type) {
	case vixtypes.Str, vixtypes.StrSlice:
		return cexpr + ".len"
	case vixtypes.ConstStr:
		return fmt.Sprintf("strlen(%s)", cexpr)
	case vixtypes.Array:
		return cexpr + ".len"
	default:
		return cexpr + ".len"
	}
}

func (e *Emitter) codegenHave(obj, item ast.Expr, body *strings.Builder) (string, vixtypes.Type) {
	objC, objType := e.codegenExpr(obj, body)
	itemC, _ := e.codegenExpr(item, body)
	idx := e.freshVar()
	found := e.freshVar()
	switch arr := vixtypes.Unwrap(objType).(type) {
	case vixtypes.Array:
		n := "0"
		if arr.Size != nil {
			n = fmt.Sprintf("%d", *arr.Size)
		} else {
			n = objC + ".len"
		}
		fmt.Fprintf(body, "bool %s = false;\n", found)
		fmt.Fprintf(body, "for (size_t %s = 0; %s < (size_t)(%s); %s++) { if (%s[%s] == %s) { %s = true; break; } }\n",
			idx, idx, n, idx, arrAt(objC, arr), idx, itemC, found)
	default:
		fmt.Fprintf(body, "bool %s = false;\n", found)
	}
	return found, vixtypes.Bool{}
}

func arrAt(objC string, arr vixtypes.Array) string {
	if arr.Size != nil {
		return objC
	}
	return objC + ".ptr"
}

func (e *Emitter) codegenContainAll(n ast.ContainAllExpr, body *strings.Builder) (string, vixtypes.Type) {
	result := "true"
	var parts []string
	for _, item := range n.Items {
		c, _ := e.codegenHave(n.Obj, item, body)
		parts = append(parts, c)
	}
	if len(parts) == 0 {
		return result, vixtypes.Bool{}
	}
	return "(" + strings.Join(parts, " && ") + ")", vixtypes.Bool{}
}

func (e *Emitter) codegenIndexOf(n ast.IndexOfExpr, body *strings.Builder) (string, vixtypes.Type) {
	objC, objType := e.codegenExpr(n.Obj, body)
	itemC, _ := e.codegenExpr(n.Item, body)
	result := e.freshVar()
	idx := e.freshVar()
	switch arr := vixtypes.Unwrap(objType).(type) {
	case vixtypes.Array:
		count := objC + ".len"
		if arr.Size != nil {
			count = fmt.Sprintf("%d", *arr.Size)
		}
		fmt.Fprintf(body, "int32_t %s = -1;\n", result)
		fmt.Fprintf(body, "for (size_t %s = 0; %s < (size_t)(%s); %s++) { if (%s[%s] == %s) { %s = (int32_t)%s; break; } }\n",
			idx, idx, count, idx, arrAt(objC, arr), idx, itemC, result, idx)
	default:
		fmt.Fprintf(body, "int32_t %s = -1;\n", result)
	}
	return result, vixtypes.I32()
}

// codegenPanic aborts the process with a formatted message, matching the
// original compiler's panic lowering (no unwinding: this backend has no
// exception mechanism to unwind through).
func (e *Emitter) codegenPanic(n ast.PanicExpr, body *strings.Builder) (string, vixtypes.Type) {
	inner, innerType := e.codegenExpr(n.Inner, body)
	msg := e.coerceToOwnedString(inner, innerType)
	fmt.Fprintf(body, "fprintf(stderr, \"panic: %%s\\n\", (%s).ptr);\nexit(1);\n", msg)
	return "", vixtypes.Void{}
}

func (e *Emitter) codegenArrayGet(n ast.ArrayGetExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	objC, objType := e.codegenExpr(n.Obj, body)
	refC, _ := e.codegenExpr(n.Reference, body)
	tmp := e.freshVar()
	arr, ok := vixtypes.Unwrap(objType).(vixtypes.Array)
	elemC := "int32_t"
	if ok {
		elemC = arr.Element.CType(e.Target)
	}
	bound := objC + ".len"
	if ok && arr.Size != nil {
		bound = fmt.Sprintf("%d", *arr.Size)
	}
	fmt.Fprintf(body, "%s %s;\n", t.CType(e.Target), tmp)
	fmt.Fprintf(body, "if ((size_t)(%s) < (size_t)(%s)) { %s.tag = 1; %s.value = (%s)%s[%s]; } else { %s.tag = 0; }\n",
		refC, bound, tmp, tmp, elemC, arrAtBare(objC, ok, arr), refC, tmp)
	return tmp, t
}

func arrAtBare(objC string, ok bool, arr vixtypes.Array) string {
	if ok && arr.Size != nil {
		return objC
	}
	return objC + ".ptr"
}

func (e *Emitter) codegenMethodCallNamed(n ast.MethodCallNamedExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	obj, objType := e.codegenExpr(n.Obj, body)
	structName := structNameOf(objType)
	receiver := obj
	if !vixtypes.IsPtrLike(vixtypes.Unwrap(objType)) {
		receiver = "&" + obj
	}
	args := []string{receiver}
	for _, a := range n.Args {
		c, _ := e.codegenExpr(a.Expr, body)
		args = append(args, c)
	}
	return fmt.Sprintf("%s(%s)", e.methodCName(structName, n.Method), strings.Join(args, ", ")), t
}

func (e *Emitter) codegenStaticMethodCallNamed(n ast.StaticMethodCallNamedExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		c, _ := e.codegenExpr(a.Expr, body)
		args[i] = c
	}
	return fmt.Sprintf("%s(%s)", e.methodCName(n.Struct, n.Method), strings.Join(args, ", ")), t
}

func (e *Emitter) codegenModuleCall(n ast.ModuleCallExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		c, _ := e.codegenExpr(a, body)
		args[i] = c
	}
	return fmt.Sprintf("%s_%s(%s)", n.Module, n.Func, strings.Join(args, ", ")), t
}

func (e *Emitter) codegenModuleCallNamed(n ast.ModuleCallNamedExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		c, _ := e.codegenExpr(a.Expr, body)
		args[i] = c
	}
	return fmt.Sprintf("%s_%s(%s)", n.Module, n.Func, strings.Join(args, ", ")), t
}

// codegenArrayMethod lowers the handful of array-shaped pseudo-methods the
// checker treats as builtins (`is_some`/`is_none` plus passthrough
// iteration helpers) rather than genuine struct methods.
func (e *Emitter) codegenArrayMethod(n ast.ArrayMethodExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	obj, _ := e.codegenExpr(n.Obj, body)
	for _, a := range n.Args {
		e.codegenExpr(a, body)
	}
	switch n.Method {
	case "is_some":
		return fmt.Sprintf("(%s.tag == 1)", obj), vixtypes.Bool{}
	case "is_none":
		return fmt.Sprintf("(%s.tag == 0)", obj), vixtypes.Bool{}
	default:
		return obj, t
	}
}

func (e *Emitter) codegenOptionMethod(n ast.OptionMethodExpr, body *strings.Builder) (string, vixtypes.Type) {
	obj, _ := e.codegenExpr(n.Obj, body)
	for _, a := range n.Args {
		e.codegenExpr(a, body)
	}
	switch n.Method {
	case "is_some":
		return fmt.Sprintf("(%s.tag == 1)", obj), vixtypes.Bool{}
	case "is_none":
		return fmt.Sprintf("(%s.tag == 0)", obj), vixtypes.Bool{}
	default:
		return fmt.Sprintf("(%s.tag == 1)", obj), vixtypes.Bool{}
	}
}

func (e *Emitter) codegenOneOf(n ast.OneOfExpr, body *strings.Builder) (string, vixtypes.Type) {
	parts := make([]string, len(n.Options))
	for i, o := range n.Options {
		c, _ := e.codegenExpr(o, body)
		parts[i] = c
	}
	return "(" + strings.Join(parts, " || ") + ")", vixtypes.Bool{}
}

// codegenPrint lowers `print(args...)` to a single printf call: each
// argument's checker-inferred type picks its format specifier (%d for Int,
// %f for Float, %s for Str/ConstStr — with Str's owned-buffer `.ptr` decay
// and Bool rendered as the "true"/"false" literal, %c for Char, %p as the
// fallback for anything else), arguments are space-separated, and a
// trailing \n is appended unless a source string-literal argument already
// contains a literal carriage return. Grounded on the "print" arm of
// codegen_call_expr in original_source/src/Gen/build/unknow.rs.
func (e *Emitter) codegenPrint(args []ast.Expr, body *strings.Builder) (string, vixtypes.Type) {
	var format strings.Builder
	argVars := make([]string, 0, len(args))
	hasCR := false

	for i, a := range args {
		val, ty := e.codegenExpr(a, body)
		switch vixtypes.Unwrap(ty).(type) {
		case vixtypes.Int:
			format.WriteString("%d")
			argVars = append(argVars, val)
		case vixtypes.Float:
			format.WriteString("%f")
			argVars = append(argVars, val)
		case vixtypes.Str:
			format.WriteString("%s")
			argVars = append(argVars, val+".ptr")
			if s, ok := a.(ast.StringExpr); ok && strings.Contains(s.Value, "\r") {
				hasCR = true
			}
		case vixtypes.ConstStr:
			format.WriteString("%s")
			argVars = append(argVars, val)
			if s, ok := a.(ast.StringExpr); ok && strings.Contains(s.Value, "\r") {
				hasCR = true
			}
		case vixtypes.Bool:
			format.WriteString("%s")
			argVars = append(argVars, fmt.Sprintf("(%s ? \"true\" : \"false\")", val))
		case vixtypes.Char:
			format.WriteString("%c")
			argVars = append(argVars, val)
		default:
			format.WriteString("%p")
			argVars = append(argVars, val)
		}
		if i < len(args)-1 {
			format.WriteString(" ")
		}
	}
	if !hasCR {
		format.WriteString("\\n")
	}

	tmp := e.freshVar()
	argsPart := ""
	if len(argVars) > 0 {
		argsPart = ", " + strings.Join(argVars, ", ")
	}
	fmt.Fprintf(body, "int32_t %s = printf(\"%s\"%s);\n", tmp, format.String(), argsPart)
	return tmp, vixtypes.I32()
}
