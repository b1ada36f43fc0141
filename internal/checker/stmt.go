package checker

import (
	"fmt"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case ast.TypedDeclStmt:
		c.checkTypedDecl(n)
	case ast.AssignStmt:
		c.checkAssign(n)
	case ast.ExprStmt:
		c.InferExprType(n.Expr)
	case ast.ReturnStmt:
		c.checkReturn(n)
	case ast.BreakStmt, ast.ContinueStmt:
		// Nothing to check: loop-context validity is a parser-level
		// concern (out of scope, see SPEC_FULL.md §1).
	case ast.IfStmt:
		c.checkIf(n)
	case ast.WhileStmt:
		c.checkWhile(n)
	case ast.ForStmt:
		c.checkFor(n)
	case ast.MatchStmt:
		c.checkMatch(n)
	case ast.TupleUnpackStmt:
		c.checkTupleUnpack(n)
	case ast.ScopeStmt:
		c.scopes.push()
		c.checkBlock(n.Body)
		c.releaseScope()
	}
}

func (c *Checker) checkTypedDecl(n ast.TypedDeclStmt) {
	if c.scopes.declaredInCurrent(n.Name) {
		c.nameConflict(n.Name, n.Location)
	}
	if vixtypes.IsVoid(n.Type) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeVoidType,
			Message: fmt.Sprintf("variable `%s` cannot have type `void`", n.Name),
			Span:    spanOf(n.Location),
			Help:    "give the variable a concrete type",
		})
	}
	if n.Value != nil {
		valType := c.InferExprType(n.Value)
		if !typesCompatible(n.Type, valType) {
			c.Handler.Error(diag.Diagnostic{
				Code:    diag.CodeTypeMismatch,
				Message: fmt.Sprintf("expected `%s`, found `%s`", n.Type.StructuralName(), valType.StructuralName()),
				Span:    spanOf(n.Location),
			})
		}
	}
	c.scopes.insert(n.Name, n.Type)
	if n.Mutable {
		c.mutableNames[n.Name] = true
	}
}

// typesCompatible implements the structural, bidirectional-on-Any
// compatibility rule spec.md §4.4 names: Any unifies with anything in
// either direction, ConstStr and Str accept each other in either
// direction, otherwise types must share a structural name.
func typesCompatible(a, b vixtypes.Type) bool {
	a, b = vixtypes.Unwrap(a), vixtypes.Unwrap(b)
	if isAny(a) || isAny(b) {
		return true
	}
	_, aStr := a.(vixtypes.Str)
	_, aConst := a.(vixtypes.ConstStr)
	_, bStr := b.(vixtypes.Str)
	_, bConst := b.(vixtypes.ConstStr)
	if (aStr && bConst) || (aConst && bStr) {
		return true
	}
	return a.StructuralName() == b.StructuralName()
}

func (c *Checker) checkAssign(n ast.AssignStmt) {
	valType := c.InferExprType(n.Value)
	if v, ok := n.Target.(ast.VarExpr); ok {
		if !c.mutableNames[v.Name] {
			if _, declared := c.scopes.lookup(v.Name); declared {
				c.Handler.Error(diag.Diagnostic{
					Code:    diag.CodeImmutableAssign,
					Message: fmt.Sprintf("cannot assign twice to immutable variable `%s`", v.Name),
					Span:    spanOf(n.Location),
					Help:    fmt.Sprintf("declare `%s` as mutable", v.Name),
				})
			}
		}
	}
	targetType := c.InferExprType(n.Target)
	if !typesCompatible(targetType, valType) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeTypeMismatch,
			Message: fmt.Sprintf("expected `%s`, found `%s`", targetType.StructuralName(), valType.StructuralName()),
			Span:    spanOf(n.Location),
		})
	}
}

func (c *Checker) checkReturn(n ast.ReturnStmt) {
	var retType vixtypes.Type = vixtypes.Void{}
	if n.Value != nil {
		retType = c.InferExprType(n.Value)
	}
	if c.currentReturn == nil {
		return
	}
	if !typesCompatible(c.currentReturn, retType) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeTypeMismatch,
			Message: fmt.Sprintf("mismatched return type: expected `%s`, found `%s`", c.currentReturn.StructuralName(), retType.StructuralName()),
			Span:    spanOf(n.Location),
		})
	}
}

// controlFlowTypeOK implements the if/while gate: the condition must be
// Bool or Any (an escape hatch for values whose real type the checker
// couldn't pin down).
func controlFlowTypeOK(t vixtypes.Type) bool {
	t = vixtypes.Unwrap(t)
	if isAny(t) {
		return true
	}
	_, ok := t.(vixtypes.Bool)
	return ok
}

func (c *Checker) checkIf(n ast.IfStmt) {
	condType := c.InferExprType(n.Cond)
	if !controlFlowTypeOK(condType) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeTypeMismatch,
			Message: fmt.Sprintf("expected `bool`, found `%s`", condType.StructuralName()),
			Span:    spanOf(n.Location),
			Help:    "an `if` condition must evaluate to a boolean",
		})
	}
	c.scopes.push()
	c.checkBlock(n.Then)
	c.releaseScope()
	if n.Else != nil {
		c.scopes.push()
		c.checkBlock(n.Else)
		c.releaseScope()
	}
}

func (c *Checker) checkWhile(n ast.WhileStmt) {
	condType := c.InferExprType(n.Cond)
	if !controlFlowTypeOK(condType) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeTypeMismatch,
			Message: fmt.Sprintf("expected `bool`, found `%s`", condType.StructuralName()),
			Span:    spanOf(n.Location),
			Help:    "a `while` condition must evaluate to a boolean",
		})
	}
	c.scopes.push()
	c.checkBlock(n.Body)
	c.releaseScope()
}

// forElementType implements the for-loop iteration rule: Array/MultiArray
// bind each element, Result/Option bind the unwrapped Ok/Some payload (the
// loop body then runs at most once for these, per the original's one-shot
// desugaring), anything else is a hard error.
func (c *Checker) forElementType(n ast.ForStmt, iterType vixtypes.Type) vixtypes.Type {
	switch v := vixtypes.Unwrap(iterType).(type) {
	case vixtypes.Array:
		return v.Element
	case vixtypes.MultiArray:
		return v.Element
	case vixtypes.Result:
		return v.Ok
	case vixtypes.Option:
		return v.Inner
	case vixtypes.Any:
		return vixtypes.Any{}
	default:
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeInvalidOperation,
			Message: fmt.Sprintf("`%s` is not iterable", iterType.StructuralName()),
			Span:    spanOf(n.Location),
			Help:    "`for` iterates over an array, a multi-array, a result, or an option",
		})
		return vixtypes.Any{}
	}
}

func (c *Checker) checkFor(n ast.ForStmt) {
	iterType := c.InferExprType(n.Iterable)
	elemType := c.forElementType(n, iterType)

	c.scopes.push()
	c.scopes.insert(n.Var, elemType)
	c.checkBlock(n.Body)
	c.releaseScope()
}

func (c *Checker) checkMatch(n ast.MatchStmt) {
	c.InferExprType(n.Subject)
	for _, arm := range n.Arms {
		c.InferExprType(arm.Value)
		c.scopes.push()
		c.checkBlock(arm.Body)
		c.releaseScope()
	}
}

func (c *Checker) checkTupleUnpack(n ast.TupleUnpackStmt) {
	valType := c.InferExprType(n.Value)
	tup, ok := vixtypes.Unwrap(valType).(vixtypes.Tuple)
	if !ok {
		if !isAny(vixtypes.Unwrap(valType)) {
			c.Handler.Error(diag.Diagnostic{
				Code:    diag.CodeTypeMismatch,
				Message: fmt.Sprintf("cannot destructure `%s` as a tuple", valType.StructuralName()),
				Span:    spanOf(n.Location),
			})
		}
		for _, name := range n.Names {
			c.scopes.insert(name, vixtypes.Any{})
		}
		return
	}
	if len(tup.Fields) != len(n.Names) {
		c.Handler.Error(diag.Diagnostic{
			Code:    diag.CodeArgumentCount,
			Message: fmt.Sprintf("expected %d names to destructure, found %d", len(tup.Fields), len(n.Names)),
			Span:    spanOf(n.Location),
		})
	}
	for i, name := range n.Names {
		var t vixtypes.Type = vixtypes.Any{}
		if i < len(tup.Fields) {
			t = tup.Fields[i]
		}
		c.scopes.insert(name, t)
	}
}
