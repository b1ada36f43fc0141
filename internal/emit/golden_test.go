package emit_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/checker"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/emit"
	"github.com/bahimpro2011-code/vixc/internal/registry"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: fn main() { print("hi", 7) } lowers to a single printf call
// whose format string is built from each argument's checked type.
func TestScenarioPrintBuiltin(t *testing.T) {
	prog := &ast.Program{
		Functions: []ast.Function{
			{
				Name:       "main",
				ReturnType: vixtypes.Void{},
				Body: []ast.Stmt{
					ast.ExprStmt{Expr: ast.CallExpr{Name: "print", Args: []ast.Expr{
						ast.StringExpr{Value: "hi"},
						ast.NumberExpr{Value: 7},
					}}},
				},
			},
		},
	}
	src := emitProgram(t, prog)
	assert.Contains(t, src, `printf("%s %d\n"`)
}

// Scenario 2: struct P { x, y } ; p built from fields 3 and 4, then p.x + p.y
// returned, lowers to a P_new constructor and a field-wise addition.
func TestScenarioStructConstructorAndFieldAccess(t *testing.T) {
	prog := &ast.Program{
		Structs: []ast.StructDef{
			{Name: "P", Fields: []ast.StructField{
				{Name: "x", Type: vixtypes.I32()},
				{Name: "y", Type: vixtypes.I32()},
			}},
		},
		Functions: []ast.Function{
			{
				Name:       "main",
				ReturnType: vixtypes.I32(),
				Body: []ast.Stmt{
					ast.TypedDeclStmt{
						Name: "p",
						Type: vixtypes.Struct{Name: "P"},
						Value: ast.StructInitExpr{
							Struct: "P",
							Fields: []ast.FieldInit{
								{Name: "x", Expr: ast.NumberExpr{Value: 3}},
								{Name: "y", Expr: ast.NumberExpr{Value: 4}},
							},
						},
					},
					ast.ReturnStmt{Value: ast.BinOpExpr{
						Op:    "+",
						Left:  ast.MemberAccessExpr{Obj: ast.VarExpr{Name: "p"}, Field: "x"},
						Right: ast.MemberAccessExpr{Obj: ast.VarExpr{Name: "p"}, Field: "y"},
					}},
				},
			},
		},
	}
	src := emitProgram(t, prog)
	assert.Contains(t, src, "P P_new(int32_t param_x, int32_t param_y)")
	assert.Contains(t, src, "P_new(3, 4)")
	assert.Contains(t, src, ".x +")
}

// Scenario 3: fn f() -> Option<int32> { some(5) } ; unwrap(f()) synthesizes
// the Option_int32 tagged struct and a tag check in unwrap.
func TestScenarioOptionUnwrap(t *testing.T) {
	optInt := vixtypes.Option{Inner: vixtypes.I32()}
	prog := &ast.Program{
		Functions: []ast.Function{
			{
				Name:       "f",
				ReturnType: optInt,
				Body:       []ast.Stmt{ast.ReturnStmt{Value: ast.SomeExpr{Inner: ast.NumberExpr{Value: 5}}}},
			},
			{
				Name:       "main",
				ReturnType: vixtypes.I32(),
				Body: []ast.Stmt{
					ast.ReturnStmt{Value: ast.UnwrapExpr{Inner: ast.CallExpr{Name: "f"}}},
				},
			},
		},
	}
	src := emitProgram(t, prog)
	assert.Contains(t, src, "Option_int32")
	assert.Contains(t, src, ".tag != 1")
}

// Scenario 4: let v: void = 0 is rejected with E0001 before any emission.
func TestScenarioVoidDeclarationRejected(t *testing.T) {
	prog := &ast.Program{
		Functions: []ast.Function{
			{
				Name:       "main",
				ReturnType: vixtypes.Void{},
				Body: []ast.Stmt{
					ast.TypedDeclStmt{Name: "v", Type: vixtypes.Void{}, Value: ast.NumberExpr{Value: 0}},
				},
			},
		},
	}
	handler := diag.NewHandler(100)
	c := checker.New(handler)
	c.Check(prog)
	require.True(t, handler.HasErrors())
	assert.Equal(t, diag.CodeVoidType, handler.Diagnostics()[0].Code)
}

// Scenario 5: fn g(x: int32) {} ; g(1, 2) is rejected with E0061.
func TestScenarioArgumentCountMismatch(t *testing.T) {
	prog := &ast.Program{
		Functions: []ast.Function{
			{Name: "g", Params: []ast.Param{{Name: "x", Type: vixtypes.I32()}}, ReturnType: vixtypes.Void{}},
			{
				Name:       "main",
				ReturnType: vixtypes.Void{},
				Body: []ast.Stmt{
					ast.ExprStmt{Expr: ast.CallExpr{Name: "g", Args: []ast.Expr{ast.NumberExpr{Value: 1}, ast.NumberExpr{Value: 2}}}},
				},
			},
		},
	}
	handler := diag.NewHandler(100)
	c := checker.New(handler)
	c.Check(prog)
	require.True(t, handler.HasErrors())
	found := false
	for _, d := range handler.Diagnostics() {
		if d.Code == diag.CodeArgumentCount {
			found = true
		}
	}
	assert.True(t, found)
}

// Scenario 6: h(a: &mut int32, b: &mut int32) {} ; h(x, x) with the same
// binding passed for both &mut parameters is an E0502 borrow conflict.
func TestScenarioBorrowConflictOnAliasedMutableArgs(t *testing.T) {
	prog := &ast.Program{
		Functions: []ast.Function{
			{
				Name: "h",
				Params: []ast.Param{
					{Name: "a", Type: vixtypes.MutRef{Inner: vixtypes.I32()}, Modifier: ast.ParamByMutRef},
					{Name: "b", Type: vixtypes.MutRef{Inner: vixtypes.I32()}, Modifier: ast.ParamByMutRef},
				},
				ReturnType: vixtypes.Void{},
			},
			{
				Name:       "main",
				ReturnType: vixtypes.Void{},
				Body: []ast.Stmt{
					ast.TypedDeclStmt{Name: "x", Type: vixtypes.I32(), Value: ast.NumberExpr{Value: 0}, Mutable: true},
					ast.ExprStmt{Expr: ast.CallExpr{Name: "h", Args: []ast.Expr{
						ast.VarExpr{Name: "x"},
						ast.VarExpr{Name: "x"},
					}}},
				},
			},
		},
	}
	handler := diag.NewHandler(100)
	c := checker.New(handler)
	c.Check(prog)
	require.True(t, handler.HasErrors())
	found := false
	for _, d := range handler.Diagnostics() {
		if d.Code == diag.CodeBorrowConflict {
			found = true
		}
	}
	assert.True(t, found)
}

// Scenario 7: enum E { A, B(int32), C{x: int32} } emits the tag-plus-union
// layout with E__A-style tag enumerators.
func TestScenarioEnumTagAndUnionLayout(t *testing.T) {
	reg := registry.New()
	variants := []registry.EnumVariant{
		{Name: "A"},
		{Name: "B", Type: vixtypes.I32()},
		{Name: "C", Type: vixtypes.Struct{Name: "C_Payload"}},
	}
	reg.RegisterEnum("E", variants, true)
	def, ok := reg.GenerateEnumDefinition("E", x64)
	require.True(t, ok)
	assert.Contains(t, def, "E__A")
	assert.Contains(t, def, "E__B")
	assert.Contains(t, def, "union")
}
