package emit

import (
	"fmt"
	"strings"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

func diagUnsupported(kind string) diag.Diagnostic {
	return diag.Diagnostic{
		Code:    diag.CodeUnsupportedBinOp,
		Message: diagUnsupportedMessage(kind),
	}
}

// codegenExpr lowers an expression to a C expression string plus its Vix
// type (read back from the checker's ExprTypes map rather than re-inferred,
// so emission never disagrees with the checker about what something is).
// Side-effecting sub-lowerings are emitted as statements into body before
// the expression string that reads their result.
func (e *Emitter) codegenExpr(expr ast.Expr, body *strings.Builder) (string, vixtypes.Type) {
	t := e.exprType(expr)
	switch n := expr.(type) {
	case ast.NumberExpr:
		return fmt.Sprintf("%d", n.Value), t
	case ast.FloatExpr:
		return fmt.Sprintf("%gf", n.Value), t
	case ast.HexNumberExpr:
		return fmt.Sprintf("0x%x", n.Value), t
	case ast.BinaryNumberExpr:
		return fmt.Sprintf("%d", n.Value), t
	case ast.OctalNumberExpr:
		return fmt.Sprintf("0%o", n.Value), t
	case ast.CharExpr:
		return fmt.Sprintf("%d", n.Value), t
	case ast.StringExpr:
		return fmt.Sprintf("%q", n.Value), t
	case ast.BoolExpr:
		if n.Value {
			return "true", t
		}
		return "false", t
	case ast.VarExpr:
		if cName, ok := e.locals[n.Name]; ok {
			return cName, t
		}
		return n.Name, t
	case ast.NoneExpr:
		return fmt.Sprintf("(%s){0}", t.CType(e.Target)), t
	case ast.SomeExpr:
		return e.codegenSome(n, t, body)
	case ast.ResultOkExpr:
		return e.codegenResultOk(n, t, body)
	case ast.ResultErrExpr:
		return e.codegenResultErr(n, t, body)
	case ast.NotExpr:
		return e.codegenNot(n, body)
	case ast.UnOpExpr:
		return e.codegenUnOp(n, t, body)
	case ast.BinOpExpr:
		return e.codegenBinOp(n, t, body)
	case ast.TupleExpr:
		return e.codegenTuple(n, t, body)
	case ast.TupleAccessExpr:
		obj, _ := e.codegenExpr(n.Obj, body)
		return fmt.Sprintf("%s.field_%d", obj, n.Index), t
	case ast.ArrayExpr:
		return e.codegenArray(n, t, body)
	case ast.IndexExpr:
		return e.codegenIndex(n, body)
	case ast.MemberAccessExpr:
		obj, objType := e.codegenExpr(n.Obj, body)
		if vixtypes.IsPtrLike(vixtypes.Unwrap(objType)) {
			return fmt.Sprintf("%s->%s", obj, n.Field), t
		}
		return fmt.Sprintf("%s.%s", obj, n.Field), t
	case ast.StructInitExpr:
		return e.codegenStructInit(n, t, body)
	case ast.CallExpr:
		return e.codegenCall(n, t, body)
	case ast.CallNamedExpr:
		return e.codegenCallNamed(n, t, body)
	case ast.MethodCallExpr:
		return e.codegenMethodCall(n, t, body)
	case ast.StaticMethodCallExpr:
		return e.codegenStaticMethodCall(n, t, body)
	case ast.FuncAddrExpr:
		return n.Name, t
	case ast.CastExpr:
		inner, _ := e.codegenExpr(n.Inner, body)
		return fmt.Sprintf("(%s)(%s)", n.Target.CType(e.Target), inner), n.Target
	case ast.ReferenceToExpr:
		return fmt.Sprintf("%dU", fnv32(n.Target.StructuralName())), t
	case ast.SizeOfExpr:
		return fmt.Sprintf("sizeof(%s)", n.Target.CType(e.Target)), t
	case ast.AlignOfExpr:
		return fmt.Sprintf("_Alignof(%s)", n.Target.CType(e.Target)), t
	case ast.PipeExpr:
		e.codegenExpr(n.Left, body)
		return e.codegenExpr(n.Right, body)
	default:
		return e.codegenBuiltin(expr, t, body)
	}
}

func (e *Emitter) codegenSome(n ast.SomeExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	inner, _ := e.codegenExpr(n.Inner, body)
	return fmt.Sprintf("(%s){ .tag = 1, .value = %s }", t.CType(e.Target), inner), t
}

func (e *Emitter) codegenResultOk(n ast.ResultOkExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	inner, _ := e.codegenExpr(n.Inner, body)
	return fmt.Sprintf("(%s){ .tag = 0, .data = { .ok = %s } }", t.CType(e.Target), inner), t
}

func (e *Emitter) codegenResultErr(n ast.ResultErrExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	inner, _ := e.codegenExpr(n.Inner, body)
	return fmt.Sprintf("(%s){ .tag = 1, .data = { .err = %s } }", t.CType(e.Target), inner), t
}

// codegenNot lowers Vix's unary `not`. Only Bool and Int operands are
// accepted; anything else is an emitter-level diagnostic, matching
// codegen_not in the original compiler.
func (e *Emitter) codegenNot(n ast.NotExpr, body *strings.Builder) (string, vixtypes.Type) {
	inner, innerType := e.codegenExpr(n.Inner, body)
	switch vixtypes.Unwrap(innerType).(type) {
	case vixtypes.Bool, vixtypes.Int:
		tmp := e.freshVar()
		fmt.Fprintf(body, "bool %s = !%s;\n", tmp, inner)
		return tmp, vixtypes.Bool{}
	default:
		e.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeInvalidOperation,
			Message: fmt.Sprintf("cannot apply `not` to type `%s`", innerType.StructuralName()),
			Help:    "`not` only applies to bool or integer values",
		})
		return inner, vixtypes.Bool{}
	}
}

func (e *Emitter) codegenUnOp(n ast.UnOpExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	inner, innerType := e.codegenExpr(n.Inner, body)
	if vixtypes.IsVoid(innerType) {
		e.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeVoidOperand,
			Message: fmt.Sprintf("operator `%s` cannot be applied to a value of type `void`", n.Op),
		})
		return inner, t
	}
	switch n.Op {
	case "&":
		return "&" + inner, t
	case "*":
		if !vixtypes.IsPtrLike(vixtypes.Unwrap(innerType)) {
			e.Handler.Error(diag.Diagnostic{
				Code:    diag.CodeInvalidOperation,
				Message: fmt.Sprintf("cannot dereference a value of type `%s`", innerType.StructuralName()),
			})
			return inner, t
		}
		return "*" + inner, t
	case "-":
		return "-" + inner, t
	default:
		return inner, t
	}
}

func (e *Emitter) codegenBinOp(n ast.BinOpExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	left, leftType := e.codegenExpr(n.Left, body)
	right, rightType := e.codegenExpr(n.Right, body)

	if vixtypes.IsVoid(leftType) || vixtypes.IsVoid(rightType) {
		e.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeVoidOperand,
			Message: fmt.Sprintf("operator `%s` cannot be applied to a value of type `void`", n.Op),
		})
		return "0", t
	}

	if n.Op == "+" && isStringLike(leftType) && isStringLike(rightType) {
		l := e.coerceToOwnedString(left, leftType)
		r := e.coerceToOwnedString(right, rightType)
		tmp := e.freshVar()
		fmt.Fprintf(body, "String %s = vix_string_concat(%s, %s);\n", tmp, l, r)
		e.markOwned(tmp)
		return tmp, vixtypes.Str{LenType: vixtypes.U64()}
	}

	return fmt.Sprintf("(%s %s %s)", left, n.Op, right), t
}

func isStringLike(t vixtypes.Type) bool {
	switch vixtypes.Unwrap(t).(type) {
	case vixtypes.Str, vixtypes.ConstStr, vixtypes.StrSlice:
		return true
	default:
		return false
	}
}

func (e *Emitter) codegenTuple(n ast.TupleExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	fields := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		c, _ := e.codegenExpr(el, body)
		fields[i] = "." + fmt.Sprintf("field_%d", i) + " = " + c
	}
	return fmt.Sprintf("(%s){ %s }", t.CType(e.Target), strings.Join(fields, ", ")), t
}

func (e *Emitter) codegenArray(n ast.ArrayExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	elems := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		c, _ := e.codegenExpr(el, body)
		elems[i] = c
	}
	arr, ok := vixtypes.Unwrap(t).(vixtypes.Array)
	elemC := "void*"
	if ok {
		elemC = arr.Element.CType(e.Target)
	}
	return fmt.Sprintf("(%s[]){ %s }", elemC, strings.Join(elems, ", ")), t
}

func (e *Emitter) codegenIndex(n ast.IndexExpr, body *strings.Builder) (string, vixtypes.Type) {
	obj, objType := e.codegenExpr(n.Obj, body)
	idxParts := make([]string, len(n.Indices))
	for i, idx := range n.Indices {
		c, _ := e.codegenExpr(idx, body)
		idxParts[i] = c
	}
	var elemType vixtypes.Type = vixtypes.Any{}
	switch arr := vixtypes.Unwrap(objType).(type) {
	case vixtypes.Array:
		elemType = arr.Element
		if arr.Size == nil {
			return fmt.Sprintf("%s.ptr[%s]", obj, strings.Join(idxParts, "][")), elemType
		}
	case vixtypes.MultiArray:
		elemType = arr.Element
	}
	return fmt.Sprintf("%s[%s]", obj, strings.Join(idxParts, "][")), elemType
}

func (e *Emitter) codegenStructInit(n ast.StructInitExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	args := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		c, _ := e.codegenExpr(f.Expr, body)
		args[i] = c
	}
	return fmt.Sprintf("%s_new(%s)", n.Struct, strings.Join(args, ", ")), t
}

func (e *Emitter) codegenCall(n ast.CallExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	if n.Name == "print" {
		return e.codegenPrint(n.Args, body)
	}
	if _, ok := e.structs[n.Name]; ok {
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			c, _ := e.codegenExpr(a, body)
			args[i] = c
		}
		return fmt.Sprintf("%s_new(%s)", n.Name, strings.Join(args, ", ")), t
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		c, _ := e.codegenExpr(a, body)
		args[i] = c
	}
	return fmt.Sprintf("%s(%s)", cName(n.Name), strings.Join(args, ", ")), t
}

func (e *Emitter) codegenCallNamed(n ast.CallNamedExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	if n.Name == "print" {
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.Expr
		}
		return e.codegenPrint(args, body)
	}
	if def, ok := e.structs[n.Name]; ok {
		args := make([]string, len(def.Fields))
		for i, f := range def.Fields {
			for _, arg := range n.Args {
				if arg.Name == f.Name {
					c, _ := e.codegenExpr(arg.Expr, body)
					args[i] = c
				}
			}
		}
		return fmt.Sprintf("%s_new(%s)", n.Name, strings.Join(args, ", ")), t
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		c, _ := e.codegenExpr(a.Expr, body)
		args[i] = c
	}
	return fmt.Sprintf("%s(%s)", cName(n.Name), strings.Join(args, ", ")), t
}

// codegenMethodCall dispatches an instance method call, taking the
// receiver's address unless it's already pointer-like, matching
// codegen_method_call's `&obj` auto-ref.
func (e *Emitter) codegenMethodCall(n ast.MethodCallExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	obj, objType := e.codegenExpr(n.Obj, body)
	structName := structNameOf(objType)
	receiver := obj
	if !vixtypes.IsPtrLike(vixtypes.Unwrap(objType)) {
		receiver = "&" + obj
	}
	args := make([]string, 0, len(n.Args)+1)
	args = append(args, receiver)
	for _, a := range n.Args {
		c, _ := e.codegenExpr(a, body)
		args = append(args, c)
	}
	return fmt.Sprintf("%s(%s)", e.methodCName(structName, n.Method), strings.Join(args, ", ")), t
}

func (e *Emitter) codegenStaticMethodCall(n ast.StaticMethodCallExpr, t vixtypes.Type, body *strings.Builder) (string, vixtypes.Type) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		c, _ := e.codegenExpr(a, body)
		args[i] = c
	}
	return fmt.Sprintf("%s(%s)", e.methodCName(n.Struct, n.Method), strings.Join(args, ", ")), t
}

func structNameOf(t vixtypes.Type) string {
	switch v := vixtypes.Unwrap(t).(type) {
	case vixtypes.Struct:
		return v.Name
	case vixtypes.Ptr:
		return structNameOf(v.Inner)
	case vixtypes.Ref:
		return structNameOf(v.Inner)
	case vixtypes.MutRef:
		return structNameOf(v.Inner)
	default:
		return ""
	}
}

// fnv32 computes an FNV-1a hash, used by codegen_reference_to to turn a
// type's structural name into a lightweight runtime type token.
func fnv32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
