package checker

import (
	"fmt"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

// InferExprType infers e's type, recording the result in ExprTypes and
// emitting diagnostics for anything that doesn't resolve. The Void gate
// (spec.md §4.4) is enforced at the statement level, not here: an
// expression is allowed to carry Void as its natural type (e.g. a call to a
// void function used as a statement) so long as it never flows into a
// variable, field, parameter, array element, tuple field, or union variant.
func (c *Checker) InferExprType(e ast.Expr) vixtypes.Type {
	t := c.inferExprType(e)
	c.ExprTypes[e] = t
	return t
}

func (c *Checker) inferExprType(e ast.Expr) vixtypes.Type {
	switch n := e.(type) {
	case ast.NumberExpr, ast.HexNumberExpr, ast.BinaryNumberExpr, ast.OctalNumberExpr:
		return vixtypes.I32()
	case ast.FloatExpr:
		return vixtypes.F32()
	case ast.StringExpr:
		return vixtypes.ConstStr{}
	case ast.BoolExpr:
		return vixtypes.Bool{}
	case ast.CharExpr:
		return vixtypes.Char8()
	case ast.NoneExpr:
		return vixtypes.Option{Inner: vixtypes.Any{}}
	case ast.SomeExpr:
		return vixtypes.Option{Inner: c.InferExprType(n.Inner)}
	case ast.ResultOkExpr:
		inner := c.InferExprType(n.Inner)
		if c.currentReturn != nil {
			if r, ok := vixtypes.Unwrap(c.currentReturn).(vixtypes.Result); ok {
				return vixtypes.Result{Ok: inner, Err: r.Err}
			}
		}
		return vixtypes.Result{Ok: inner, Err: vixtypes.Any{}}
	case ast.ResultErrExpr:
		inner := c.InferExprType(n.Inner)
		if c.currentReturn != nil {
			if r, ok := vixtypes.Unwrap(c.currentReturn).(vixtypes.Result); ok {
				return vixtypes.Result{Ok: r.Ok, Err: inner}
			}
		}
		return vixtypes.Result{Ok: vixtypes.Any{}, Err: inner}
	case ast.VarExpr:
		return c.inferVar(n)
	case ast.NotExpr:
		return vixtypes.Bool{}
	case ast.UnOpExpr:
		return c.inferUnOp(n)
	case ast.BinOpExpr:
		return c.inferBinOp(n)
	case ast.TupleExpr:
		fields := make([]vixtypes.Type, len(n.Elements))
		for i, el := range n.Elements {
			fields[i] = c.InferExprType(el)
		}
		return vixtypes.Tuple{Fields: fields}
	case ast.TupleAccessExpr:
		obj := c.InferExprType(n.Obj)
		if tup, ok := vixtypes.Unwrap(obj).(vixtypes.Tuple); ok && n.Index < len(tup.Fields) {
			return tup.Fields[n.Index]
		}
		return vixtypes.Any{}
	case ast.ArrayExpr:
		var el vixtypes.Type = vixtypes.Any{}
		if len(n.Elements) > 0 {
			el = c.InferExprType(n.Elements[0])
			for _, e2 := range n.Elements[1:] {
				c.InferExprType(e2)
			}
		}
		size := len(n.Elements)
		return vixtypes.Array{Element: el, Size: &size}
	case ast.IndexExpr:
		obj := c.InferExprType(n.Obj)
		for _, idx := range n.Indices {
			c.InferExprType(idx)
		}
		switch arr := vixtypes.Unwrap(obj).(type) {
		case vixtypes.Array:
			return arr.Element
		case vixtypes.MultiArray:
			return arr.Element
		}
		return vixtypes.Any{}
	case ast.MemberAccessExpr:
		return c.inferMemberAccess(n)
	case ast.StructInitExpr:
		for _, f := range n.Fields {
			c.InferExprType(f.Expr)
		}
		return vixtypes.Struct{Name: n.Struct}
	case ast.CallExpr:
		for _, a := range n.Args {
			c.InferExprType(a)
		}
		return c.inferCall(n.Name, n.Args, diag.Span{})
	case ast.CallNamedExpr:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			c.InferExprType(a.Expr)
			args[i] = a.Expr
		}
		return c.inferCall(n.Name, args, diag.Span{})
	case ast.MethodCallExpr:
		c.InferExprType(n.Obj)
		for _, a := range n.Args {
			c.InferExprType(a)
		}
		return c.inferMethodCall(n.Obj, n.Method)
	case ast.StaticMethodCallExpr:
		for _, a := range n.Args {
			c.InferExprType(a)
		}
		if sig, ok := c.methods[n.Struct][n.Method]; ok {
			return sig.ReturnType
		}
		return vixtypes.Any{}
	case ast.CastExpr:
		c.InferExprType(n.Inner)
		return n.Target
	case ast.ReferenceToExpr:
		return vixtypes.U32()
	case ast.SizeOfExpr, ast.AlignOfExpr:
		return vixtypes.U64()
	case ast.TypeOfExpr:
		c.InferExprType(n.Inner)
		return vixtypes.ConstStr{}
	case ast.UnwrapExpr:
		return c.inferUnwrap(c.InferExprType(n.Inner))
	case ast.UnwrapOrExpr:
		inner := c.inferUnwrap(c.InferExprType(n.Inner))
		c.InferExprType(n.Default)
		return inner
	case ast.WaitExpr:
		return vixtypes.Ptr{Inner: c.InferExprType(n.Inner)}
	case ast.CharsExpr:
		c.InferExprType(n.Inner)
		return vixtypes.Str{LenType: vixtypes.U64()}
	case ast.IsEmptyExpr, ast.IsNotEmptyExpr:
		c.InferExprType(exprOf(n))
		return vixtypes.Bool{}
	case ast.HaveExpr:
		c.InferExprType(n.Obj)
		c.InferExprType(n.Item)
		return vixtypes.Bool{}
	case ast.ContainExpr:
		c.InferExprType(n.Obj)
		c.InferExprType(n.Item)
		return vixtypes.Bool{}
	case ast.ContainAllExpr:
		c.InferExprType(n.Obj)
		for _, it := range n.Items {
			c.InferExprType(it)
		}
		return vixtypes.Bool{}
	case ast.IndexOfExpr:
		c.InferExprType(n.Obj)
		c.InferExprType(n.Item)
		return vixtypes.I32()
	case ast.CollectExpr:
		return c.InferExprType(n.Inner)
	case ast.PanicExpr:
		c.InferExprType(n.Inner)
		return vixtypes.Void{}
	case ast.PipeExpr:
		c.InferExprType(n.Left)
		return c.InferExprType(n.Right)
	case ast.ArrayGetExpr:
		obj := c.InferExprType(n.Obj)
		c.InferExprType(n.Reference)
		if arr, ok := vixtypes.Unwrap(obj).(vixtypes.Array); ok {
			return vixtypes.Option{Inner: arr.Element}
		}
		return vixtypes.Any{}
	case ast.FilterExpr:
		obj := c.InferExprType(n.Obj)
		c.InferExprType(n.Reference)
		return obj
	case ast.MethodCallNamedExpr:
		c.InferExprType(n.Obj)
		for _, a := range n.Args {
			c.InferExprType(a.Expr)
		}
		return c.inferMethodCall(n.Obj, n.Method)
	case ast.StaticMethodCallNamedExpr:
		for _, a := range n.Args {
			c.InferExprType(a.Expr)
		}
		if sig, ok := c.methods[n.Struct][n.Method]; ok {
			return sig.ReturnType
		}
		return vixtypes.Any{}
	case ast.ModuleAccessExpr:
		return vixtypes.Any{}
	case ast.ModuleCallExpr:
		for _, a := range n.Args {
			c.InferExprType(a)
		}
		return vixtypes.Any{}
	case ast.ModuleCallNamedExpr:
		for _, a := range n.Args {
			c.InferExprType(a.Expr)
		}
		return vixtypes.Any{}
	case ast.ArrayMethodExpr:
		obj := c.InferExprType(n.Obj)
		for _, a := range n.Args {
			c.InferExprType(a)
		}
		if n.Method == "is_some" || n.Method == "is_none" {
			return vixtypes.Bool{}
		}
		return obj
	case ast.OptionMethodExpr:
		for _, a := range n.Args {
			c.InferExprType(a)
		}
		return vixtypes.Bool{}
	case ast.OffsetOfExpr:
		return vixtypes.U64()
	case ast.OneOfExpr:
		for _, o := range n.Options {
			c.InferExprType(o)
		}
		return vixtypes.Bool{}
	case ast.FuncAddrExpr:
		if sig, ok := c.funcs[n.Name]; ok {
			params := make([]vixtypes.Type, len(sig.Params))
			for i, p := range sig.Params {
				params[i] = p.Type
			}
			return vixtypes.FnPtr{Params: params, ReturnType: sig.ReturnType}
		}
		return vixtypes.Any{}
	case ast.TypeExpr:
		return n.Type
	default:
		return vixtypes.Any{}
	}
}

func exprOf(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case ast.IsEmptyExpr:
		return n.Inner
	case ast.IsNotEmptyExpr:
		return n.Inner
	}
	return nil
}

func (c *Checker) inferVar(n ast.VarExpr) vixtypes.Type {
	if t, ok := c.scopes.lookup(n.Name); ok {
		return t
	}
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeUndefinedName,
		Message: fmt.Sprintf("cannot find value `%s` in this scope", n.Name),
		Help:    "check for a typo, or declare the variable before using it",
	})
	return vixtypes.Any{}
}

func (c *Checker) inferMemberAccess(n ast.MemberAccessExpr) vixtypes.Type {
	objType := c.InferExprType(n.Obj)
	base := vixtypes.Unwrap(objType)
	if p, ok := base.(vixtypes.Ptr); ok {
		base = vixtypes.Unwrap(p.Inner)
	}
	s, ok := base.(vixtypes.Struct)
	if !ok {
		return vixtypes.Any{}
	}
	def, ok := c.structs[s.Name]
	if !ok {
		return vixtypes.Any{}
	}
	for _, f := range def.Fields {
		if f.Name == n.Field {
			return f.Type
		}
	}
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeUnknownField,
		Message: fmt.Sprintf("struct `%s` has no field `%s`", s.Name, n.Field),
	})
	return vixtypes.Any{}
}

func (c *Checker) inferCall(name string, args []ast.Expr, span diag.Span) vixtypes.Type {
	// Builtins and capabilities (imports, manifest-registered library
	// functions) resolve on name alone: the original's Stmt::Call handler
	// returns as soon as it finds a match in builtin_functions or
	// imported_functions, before ever reaching the arg-count/type checks
	// reserved for user-defined functions.
	if sig, ok := c.builtins[name]; ok {
		return sig.ReturnType
	}
	if sig, ok := c.capabilities[name]; ok {
		return sig.ReturnType
	}
	if sig, ok := c.funcs[name]; ok {
		c.checkCallArgs(sig.Params, args, span)
		return sig.ReturnType
	}
	if sig, ok := c.externs[name]; ok {
		c.checkCallArgs(sig.Params, args, span)
		return sig.ReturnType
	}
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeUndefinedName,
		Message: fmt.Sprintf("cannot find function `%s` in this scope", name),
		Span:    span,
	})
	return vixtypes.Any{}
}

// checkCallArgs validates a call's argument count against params and, for
// any &/&mut-typed parameter bound to a plain variable, threads the borrow
// through the tracker for the duration of the call so aliased mutable
// arguments (spec.md scenario 6: h(x, x) where both params are &mut) are
// caught the same way a reference taken across two overlapping statements
// would be.
func (c *Checker) checkCallArgs(params []ast.Param, args []ast.Expr, span diag.Span) {
	if len(args) != len(params) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeArgumentCount,
			Message: fmt.Sprintf("expected %d argument(s), found %d", len(params), len(args)),
			Span:    span,
		})
	}

	var held []string
	for i, p := range params {
		if i >= len(args) {
			break
		}
		v, ok := args[i].(ast.VarExpr)
		if !ok {
			continue
		}
		switch p.Modifier {
		case ast.ParamByMutRef:
			if conflict, has := c.borrow.AddMutableBorrow(v.Name, span); has {
				c.Handler.Error(diag.Diagnostic{
					Code:    diag.CodeBorrowConflict,
					Message: fmt.Sprintf("cannot borrow `%s` as mutable more than once at a time", v.Name),
					Span:    span,
					Related: []diag.Span{conflict},
					Help:    "pass a second binding, or split this into two calls",
				})
			} else {
				held = append(held, v.Name)
			}
		case ast.ParamByRef:
			if conflict, has := c.borrow.AddImmutableBorrow(v.Name, span); has {
				c.Handler.Error(diag.Diagnostic{
					Code:    diag.CodeBorrowConflict,
					Message: fmt.Sprintf("cannot borrow `%s` as immutable because it is already borrowed as mutable", v.Name),
					Span:    span,
					Related: []diag.Span{conflict},
				})
			} else {
				held = append(held, v.Name)
			}
		}
	}
	// The borrows only need to coexist long enough to detect aliasing within
	// this one call; release them immediately rather than holding them for
	// the rest of the enclosing scope.
	for _, name := range held {
		c.borrow.Release(name)
	}
}

func (c *Checker) inferMethodCall(obj ast.Expr, method string) vixtypes.Type {
	objType := vixtypes.Unwrap(c.InferExprType(obj))
	if p, ok := objType.(vixtypes.Ptr); ok {
		objType = vixtypes.Unwrap(p.Inner)
	}
	s, ok := objType.(vixtypes.Struct)
	if !ok {
		return vixtypes.Any{}
	}
	if sig, ok := c.methods[s.Name][method]; ok {
		return sig.ReturnType
	}
	return vixtypes.Any{}
}

func (c *Checker) inferUnwrap(t vixtypes.Type) vixtypes.Type {
	switch v := vixtypes.Unwrap(t).(type) {
	case vixtypes.Option:
		return v.Inner
	case vixtypes.Result:
		return v.Ok
	case vixtypes.Ptr:
		return v.Inner
	case vixtypes.RawPtr:
		return v.Inner
	default:
		return vixtypes.Any{}
	}
}

func (c *Checker) inferUnOp(n ast.UnOpExpr) vixtypes.Type {
	inner := c.InferExprType(n.Inner)
	switch n.Op {
	case "&":
		if vixtypes.IsVoid(inner) {
			c.Handler.Error(diag.Diagnostic{
				Code:    diag.CodeVoidType,
				Message: "cannot take a reference to a value of type `void`",
			})
		}
		return vixtypes.Ptr{Inner: inner}
	case "*":
		if vixtypes.IsVoid(inner) {
			c.Handler.Error(diag.Diagnostic{
				Code:    diag.CodeVoidType,
				Message: "cannot dereference a value of type `void`",
			})
			return vixtypes.Any{}
		}
		if !vixtypes.IsPtrLike(vixtypes.Unwrap(inner)) {
			c.Handler.Error(diag.Diagnostic{
				Code:    diag.CodeInvalidOperation,
				Message: fmt.Sprintf("cannot dereference a value of type `%s`", inner.StructuralName()),
			})
			return vixtypes.Any{}
		}
		return derefInner(vixtypes.Unwrap(inner))
	case "-":
		return inner
	default:
		if vixtypes.IsVoid(inner) {
			c.Handler.Error(diag.Diagnostic{
				Code:    diag.CodeVoidType,
				Message: fmt.Sprintf("operator `%s` cannot be applied to a value of type `void`", n.Op),
			})
		}
		return inner
	}
}

func derefInner(t vixtypes.Type) vixtypes.Type {
	switch v := t.(type) {
	case vixtypes.Ptr:
		return v.Inner
	case vixtypes.RawPtr:
		return v.Inner
	case vixtypes.Owned:
		return v.Inner
	case vixtypes.Ref:
		return v.Inner
	case vixtypes.MutRef:
		return v.Inner
	default:
		return vixtypes.Any{}
	}
}

// binOpCompatible mirrors binop_types_compatible_str: numeric types unify by
// width-promotion, bool only unifies with bool, string types ('+' only)
// unify across Str/ConstStr, and Any is bidirectionally compatible with
// anything (an escape hatch for the builtin-heavy standard-library surface).
func binOpCompatible(op string, l, r vixtypes.Type) bool {
	l, r = vixtypes.Unwrap(l), vixtypes.Unwrap(r)
	if isAny(l) || isAny(r) {
		return true
	}
	if op == "+" && isStringy(l) && isStringy(r) {
		return true
	}
	if isNumeric(l) && isNumeric(r) {
		return true
	}
	if _, lb := l.(vixtypes.Bool); lb {
		_, rb := r.(vixtypes.Bool)
		return rb
	}
	return l.StructuralName() == r.StructuralName()
}

func isAny(t vixtypes.Type) bool {
	_, ok := t.(vixtypes.Any)
	return ok
}

func isStringy(t vixtypes.Type) bool {
	switch t.(type) {
	case vixtypes.Str, vixtypes.ConstStr, vixtypes.StrSlice:
		return true
	default:
		return false
	}
}

func isNumeric(t vixtypes.Type) bool {
	switch t.(type) {
	case vixtypes.Int, vixtypes.Float, vixtypes.Char:
		return true
	default:
		return false
	}
}

func (c *Checker) inferBinOp(n ast.BinOpExpr) vixtypes.Type {
	l := c.InferExprType(n.Left)
	r := c.InferExprType(n.Right)

	if vixtypes.IsVoid(l) || vixtypes.IsVoid(r) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeVoidType,
			Message: fmt.Sprintf("operator `%s` cannot be applied to a value of type `void`", n.Op),
		})
		return vixtypes.Any{}
	}

	if !binOpCompatible(n.Op, l, r) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeTypeMismatch,
			Message: fmt.Sprintf("mismatched types: `%s` and `%s` are not compatible with `%s`", l.StructuralName(), r.StructuralName(), n.Op),
			Help:    "convert one side to match the other's type",
		})
		return vixtypes.Any{}
	}

	switch n.Op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return vixtypes.Bool{}
	case "+":
		if isStringy(l) {
			return vixtypes.Str{LenType: vixtypes.U64()}
		}
		return wider(l, r)
	default:
		return wider(l, r)
	}
}

func wider(l, r vixtypes.Type) vixtypes.Type {
	lb, lok := l.(vixtypes.Int)
	rb, rok := r.(vixtypes.Int)
	if lok && rok {
		if lb.Bits >= rb.Bits {
			return l
		}
		return r
	}
	if _, ok := l.(vixtypes.Float); ok {
		return l
	}
	if _, ok := r.(vixtypes.Float); ok {
		return r
	}
	return l
}
