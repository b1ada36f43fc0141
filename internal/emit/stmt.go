package emit

import (
	"fmt"
	"strings"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

func (e *Emitter) codegenBlock(stmts []ast.Stmt, body *strings.Builder) {
	for _, s := range stmts {
		e.codegenStmt(s, body)
	}
}

func (e *Emitter) codegenStmt(s ast.Stmt, body *strings.Builder) {
	switch n := s.(type) {
	case ast.TypedDeclStmt:
		e.codegenTypedDecl(n, body)
	case ast.AssignStmt:
		e.codegenAssign(n, body)
	case ast.ExprStmt:
		e.codegenExpr(n.Expr, body)
	case ast.ReturnStmt:
		e.codegenReturn(n, body)
	case ast.BreakStmt:
		body.WriteString("break;\n")
	case ast.ContinueStmt:
		body.WriteString("continue;\n")
	case ast.IfStmt:
		e.codegenIf(n, body)
	case ast.WhileStmt:
		e.codegenWhile(n, body)
	case ast.ForStmt:
		e.codegenFor(n, body)
	case ast.MatchStmt:
		e.codegenMatch(n, body)
	case ast.TupleUnpackStmt:
		e.codegenTupleUnpack(n, body)
	case ast.ScopeStmt:
		e.pushScope()
		e.codegenBlock(n.Body, body)
		e.popScope(body)
	default:
		e.Handler.Warning(diagUnsupported("statement"))
	}
}

// codegenTypedDecl lowers a `let name: T = value` declaration per
// type-variant, matching the original's codegen_typed_declaration: a sized
// array is copied with one memcpy of the whole array, an owned string gets
// its own heap copy rather than aliasing the source, a ConstStr taking an
// owned string reads its `.ptr`, everything else is a plain C initializer.
func (e *Emitter) codegenTypedDecl(n ast.TypedDeclStmt, body *strings.Builder) {
	cName := "var_" + n.Name
	ctype := n.Type.CType(e.Target)

	if n.Value == nil {
		fmt.Fprintf(body, "%s %s;\n", ctype, cName)
		e.locals[n.Name] = cName
		return
	}

	valExpr, valType := e.codegenExpr(n.Value, body)

	switch vixtypes.Unwrap(n.Type).(type) {
	case vixtypes.Str:
		src := e.coerceToOwnedString(valExpr, valType)
		if _, owned := vixtypes.Unwrap(valType).(vixtypes.Str); owned {
			src = fmt.Sprintf("vix_string_from_const((%s).ptr)", valExpr)
		}
		fmt.Fprintf(body, "String %s = %s;\n", cName, src)
		e.markOwned(cName)
	case vixtypes.ConstStr:
		if _, owned := vixtypes.Unwrap(valType).(vixtypes.Str); owned {
			valExpr = "(" + valExpr + ").ptr"
		}
		fmt.Fprintf(body, "%s %s = %s;\n", ctype, cName, valExpr)
	case vixtypes.Array:
		arr := vixtypes.Unwrap(n.Type).(vixtypes.Array)
		if arr.Size != nil {
			fmt.Fprintf(body, "%s %s[%d];\n", arr.Element.CType(e.Target), cName, *arr.Size)
			fmt.Fprintf(body, "memcpy(%s, %s, sizeof(%s));\n", cName, valExpr, cName)
		} else {
			fmt.Fprintf(body, "%s %s = %s;\n", ctype, cName, valExpr)
		}
	default:
		fmt.Fprintf(body, "%s %s = %s;\n", ctype, cName, valExpr)
	}

	e.locals[n.Name] = cName
}

// coerceToOwnedString promotes a ConstStr literal to an owned String via
// vix_string_from_const, passing an already-owned String through unchanged.
func (e *Emitter) coerceToOwnedString(cexpr string, t vixtypes.Type) string {
	switch vixtypes.Unwrap(t).(type) {
	case vixtypes.ConstStr:
		return fmt.Sprintf("vix_string_from_const(%s)", cexpr)
	default:
		return cexpr
	}
}

func (e *Emitter) codegenAssign(n ast.AssignStmt, body *strings.Builder) {
	targetExpr, _ := e.codegenExpr(n.Target, body)
	valExpr, valType := e.codegenExpr(n.Value, body)
	targetType := e.exprType(n.Target)
	if _, ok := vixtypes.Unwrap(targetType).(vixtypes.Str); ok {
		valExpr = e.coerceToOwnedString(valExpr, valType)
	}
	if _, ok := vixtypes.Unwrap(targetType).(vixtypes.ConstStr); ok {
		if _, owned := vixtypes.Unwrap(valType).(vixtypes.Str); owned {
			valExpr = "(" + valExpr + ").ptr"
		}
	}
	fmt.Fprintf(body, "%s = %s;\n", targetExpr, valExpr)
}

func (e *Emitter) codegenReturn(n ast.ReturnStmt, body *strings.Builder) {
	if n.Value == nil {
		body.WriteString("return;\n")
		return
	}
	cexpr, valType := e.codegenExpr(n.Value, body)
	if vixtypes.IsVoid(valType) {
		body.WriteString("return;\n")
		return
	}
	fmt.Fprintf(body, "return %s;\n", cexpr)
}

func (e *Emitter) codegenIf(n ast.IfStmt, body *strings.Builder) {
	cond, _ := e.codegenExpr(n.Cond, body)
	fmt.Fprintf(body, "if (%s) {\n", cond)
	var thenBody strings.Builder
	e.pushScope()
	e.codegenBlock(n.Then, &thenBody)
	e.popScope(&thenBody)
	body.WriteString(indent(thenBody.String()))
	body.WriteString("}")
	if n.Else != nil {
		body.WriteString(" else {\n")
		var elseBody strings.Builder
		e.pushScope()
		e.codegenBlock(n.Else, &elseBody)
		e.popScope(&elseBody)
		body.WriteString(indent(elseBody.String()))
		body.WriteString("}")
	}
	body.WriteString("\n")
}

func (e *Emitter) codegenWhile(n ast.WhileStmt, body *strings.Builder) {
	top := e.freshLabel()
	end := e.freshLabel()
	e.loopLabels = append(e.loopLabels, loopLabels{breakLabel: end, continueLabel: top})
	defer func() { e.loopLabels = e.loopLabels[:len(e.loopLabels)-1] }()

	fmt.Fprintf(body, "%s:\n", top)
	cond, _ := e.codegenExpr(n.Cond, body)
	fmt.Fprintf(body, "if (!(%s)) goto %s;\n", cond, end)

	var loopBody strings.Builder
	e.pushScope()
	e.codegenBlock(n.Body, &loopBody)
	e.popScope(&loopBody)
	body.WriteString(loopBody.String())
	fmt.Fprintf(body, "goto %s;\n%s:\n", top, end)
}

// codegenFor lowers each iterable kind per spec.md §4.5: a sized array
// becomes an indexed goto loop over its fixed size, an unsized array the same over
// its runtime length, Result/Option run the body at most once against the
// unwrapped Ok/Some payload (their Err/None arm is simply skipped).
func (e *Emitter) codegenFor(n ast.ForStmt, body *strings.Builder) {
	iterExpr, iterType := e.codegenExpr(n.Iterable, body)
	varName := "var_" + n.Var

	switch it := vixtypes.Unwrap(iterType).(type) {
	case vixtypes.Array:
		idx := e.freshVar()
		top := e.freshLabel()
		end := e.freshLabel()
		fmt.Fprintf(body, "size_t %s = 0;\n%s:\n", idx, top)
		if it.Size != nil {
			fmt.Fprintf(body, "if (%s >= %d) goto %s;\n", idx, *it.Size, end)
		} else {
			fmt.Fprintf(body, "if (%s >= %s.len) goto %s;\n", idx, iterExpr, end)
		}
		elemC := it.Element.CType(e.Target)
		if it.Size != nil {
			fmt.Fprintf(body, "%s %s = %s[%s];\n", elemC, varName, iterExpr, idx)
		} else {
			fmt.Fprintf(body, "%s %s = %s.ptr[%s];\n", elemC, varName, iterExpr, idx)
		}
		e.loopLabels = append(e.loopLabels, loopLabels{breakLabel: end, continueLabel: top})
		e.pushScope()
		e.codegenBlock(n.Body, body)
		e.popScope(body)
		e.loopLabels = e.loopLabels[:len(e.loopLabels)-1]
		fmt.Fprintf(body, "%s++;\ngoto %s;\n%s:\n", idx, top, end)

	case vixtypes.Result:
		fmt.Fprintf(body, "if (%s.tag == 0) {\n", iterExpr)
		fmt.Fprintf(body, "    %s %s = %s.data.ok;\n", it.Ok.CType(e.Target), varName, iterExpr)
		var loopBody strings.Builder
		e.pushScope()
		e.codegenBlock(n.Body, &loopBody)
		e.popScope(&loopBody)
		body.WriteString(indent(loopBody.String()))
		body.WriteString("}\n")

	case vixtypes.Option:
		fmt.Fprintf(body, "if (%s.tag == 1) {\n", iterExpr)
		fmt.Fprintf(body, "    %s %s = %s.value;\n", it.Inner.CType(e.Target), varName, iterExpr)
		var loopBody strings.Builder
		e.pushScope()
		e.codegenBlock(n.Body, &loopBody)
		e.popScope(&loopBody)
		body.WriteString(indent(loopBody.String()))
		body.WriteString("}\n")

	default:
		e.Handler.Warning(diagUnsupported("for-loop target"))
	}
}

// codegenMatch lowers a match statement to a sequential chain of equality
// tests jumping to a shared end label, matching codegen_match in the
// original compiler exactly: no jump table, just `if (x == case) { ...
// goto end; }` per arm.
func (e *Emitter) codegenMatch(n ast.MatchStmt, body *strings.Builder) {
	subject, _ := e.codegenExpr(n.Subject, body)
	end := e.freshLabel()

	for _, arm := range n.Arms {
		val, _ := e.codegenExpr(arm.Value, body)
		fmt.Fprintf(body, "if (%s == %s) {\n", subject, val)
		var armBody strings.Builder
		e.pushScope()
		e.codegenBlock(arm.Body, &armBody)
		e.popScope(&armBody)
		body.WriteString(indent(armBody.String()))
		fmt.Fprintf(body, "goto %s;\n}\n", end)
	}
	fmt.Fprintf(body, "%s:\n", end)
}

func (e *Emitter) codegenTupleUnpack(n ast.TupleUnpackStmt, body *strings.Builder) {
	tupExpr, tupType := e.codegenExpr(n.Value, body)
	tup, ok := vixtypes.Unwrap(tupType).(vixtypes.Tuple)
	for i, name := range n.Names {
		cName := "var_" + name
		var fieldType vixtypes.Type = vixtypes.Any{}
		if ok && i < len(tup.Fields) {
			fieldType = tup.Fields[i]
		}
		fmt.Fprintf(body, "%s %s = %s.field_%d;\n", fieldType.CType(e.Target), cName, tupExpr, i)
		e.locals[name] = cName
	}
}

func diagUnsupportedMessage(kind string) string {
	return "unsupported " + kind + ", lowered to a no-op"
}
