package checker_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/checker"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/manifest"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runChecker(prog *ast.Program) *checker.Checker {
	h := diag.NewHandler(100)
	c := checker.New(h)
	c.Check(prog)
	return c
}

func TestVoidVariableIsRejected(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.TypedDeclStmt{Name: "x", Type: vixtypes.Void{}, Value: ast.NumberExpr{Value: 1}},
		},
	}}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeVoidType, c.Handler.Diagnostics()[0].Code)
}

func TestUndefinedNameIsReported(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.ExprStmt{Expr: ast.VarExpr{Name: "missing"}},
		},
	}}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeUndefinedName, c.Handler.Diagnostics()[0].Code)
}

func TestDuplicateFunctionIsNameConflict(t *testing.T) {
	fn := ast.Function{Name: "dup", ReturnType: vixtypes.Void{}}
	prog := &ast.Program{Functions: []ast.Function{fn, fn}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeNameConflict, c.Handler.Diagnostics()[0].Code)
}

func TestIfConditionMustBeBool(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.IfStmt{Cond: ast.NumberExpr{Value: 1}, Then: nil},
		},
	}}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeTypeMismatch, c.Handler.Diagnostics()[0].Code)
}

func TestForOverNonIterableIsRejected(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.ForStmt{Var: "x", Iterable: ast.NumberExpr{Value: 1}, Body: nil},
		},
	}}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeInvalidOperation, c.Handler.Diagnostics()[0].Code)
}

func TestForOverArrayBindsElementType(t *testing.T) {
	one := 1
	arr := ast.ArrayExpr{Elements: []ast.Expr{ast.NumberExpr{Value: 1}}}
	body := ast.ExprStmt{Expr: ast.VarExpr{Name: "x"}}
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.ForStmt{Var: "x", Iterable: arr, Body: []ast.Stmt{body}},
		},
	}}}
	_ = one
	c := runChecker(prog)
	assert.False(t, c.Handler.HasErrors())
}

func TestUndefinedStructInImplIsRejected(t *testing.T) {
	prog := &ast.Program{Impls: []ast.ImplBlock{{StructName: "Ghost"}}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeUndefinedStruct, c.Handler.Diagnostics()[0].Code)
}

func TestUnknownFieldIsRejected(t *testing.T) {
	prog := &ast.Program{
		Structs: []ast.StructDef{{Name: "Point", Fields: []ast.StructField{{Name: "x", Type: vixtypes.I32()}}}},
		Functions: []ast.Function{{
			Name:       "main",
			ReturnType: vixtypes.Void{},
			Body: []ast.Stmt{
				ast.TypedDeclStmt{
					Name: "p", Type: vixtypes.Struct{Name: "Point"},
					Value: ast.StructInitExpr{Struct: "Point", Fields: []ast.FieldInit{{Name: "x", Expr: ast.NumberExpr{Value: 1}}}},
				},
				ast.ExprStmt{Expr: ast.MemberAccessExpr{Obj: ast.VarExpr{Name: "p"}, Field: "z"}},
			},
		}},
	}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	var found bool
	for _, d := range c.Handler.Diagnostics() {
		if d.Code == diag.CodeUnknownField {
			found = true
		}
	}
	assert.True(t, found)
}

func TestImmutableAssignIsRejected(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.TypedDeclStmt{Name: "x", Type: vixtypes.I32(), Value: ast.NumberExpr{Value: 1}, Mutable: false},
			ast.AssignStmt{Target: ast.VarExpr{Name: "x"}, Value: ast.NumberExpr{Value: 2}},
		},
	}}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	var found bool
	for _, d := range c.Handler.Diagnostics() {
		if d.Code == diag.CodeImmutableAssign {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMutableAssignIsAllowed(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.TypedDeclStmt{Name: "x", Type: vixtypes.I32(), Value: ast.NumberExpr{Value: 1}, Mutable: true},
			ast.AssignStmt{Target: ast.VarExpr{Name: "x"}, Value: ast.NumberExpr{Value: 2}},
		},
	}}}
	c := runChecker(prog)
	assert.False(t, c.Handler.HasErrors())
}

func TestFunctionNamedLikeBuiltinIsNameConflict(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{
		{Name: "print", ReturnType: vixtypes.Void{}},
	}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeNameConflict, c.Handler.Diagnostics()[0].Code)
}

func TestFunctionNamedLikeImportIsNameConflict(t *testing.T) {
	prog := &ast.Program{
		Imports:   []ast.ImportDecl{{Name: "json"}},
		Functions: []ast.Function{{Name: "json", ReturnType: vixtypes.Void{}}},
	}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeNameConflict, c.Handler.Diagnostics()[0].Code)
}

func TestManifestFunctionCallResolvesWithoutUndefinedName(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Void{},
		Body: []ast.Stmt{
			ast.ExprStmt{Expr: ast.CallExpr{Name: "sdl_init"}},
		},
	}}}
	h := diag.NewHandler(100)
	c := checker.New(h)
	c.RegisterLibraryFunctions([]manifest.FunctionSignature{
		{Name: "sdl_init", ParamTypes: []vixtypes.Type{vixtypes.I32()}, ReturnType: vixtypes.I32()},
	})
	c.Check(prog)
	assert.False(t, h.HasErrors())
}

func TestReturnTypeMismatchIsRejected(t *testing.T) {
	prog := &ast.Program{Functions: []ast.Function{{
		Name:       "main",
		ReturnType: vixtypes.Bool{},
		Body: []ast.Stmt{
			ast.ReturnStmt{Value: ast.NumberExpr{Value: 1}},
		},
	}}}
	c := runChecker(prog)
	require.True(t, c.Handler.HasErrors())
	assert.Equal(t, diag.CodeTypeMismatch, c.Handler.Diagnostics()[0].Code)
}
