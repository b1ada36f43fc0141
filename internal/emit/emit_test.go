package emit_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/checker"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/emit"
	"github.com/bahimpro2011-code/vixc/internal/registry"
	"github.com/bahimpro2011-code/vixc/internal/target"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var x64 = target.X86_64()

func emitProgram(t *testing.T, prog *ast.Program) string {
	t.Helper()
	handler := diag.NewHandler(100)
	c := checker.New(handler)
	c.Check(prog)
	require.False(t, handler.HasErrors(), "unexpected checker diagnostics: %v", handler.Diagnostics())

	e := emit.New(registry.New(), x64, handler, c)
	src := e.EmitProgram(prog)
	require.False(t, handler.HasErrors(), "unexpected emitter diagnostics: %v", handler.Diagnostics())
	return src
}

func TestEmitProgramDeclaresMainShim(t *testing.T) {
	prog := &ast.Program{
		Functions: []ast.Function{
			{Name: "main", ReturnType: vixtypes.Void{}, Body: nil},
		},
	}
	src := emitProgram(t, prog)
	assert.Contains(t, src, "void vix_main(void) {")
	assert.Contains(t, src, "int main(void) {\n    vix_main();\n    return 0;\n}")
}

func TestEmitProgramRendersStructWithDefaultConstructor(t *testing.T) {
	prog := &ast.Program{
		Structs: []ast.StructDef{
			{Name: "Point", Fields: []ast.StructField{
				{Name: "x", Type: vixtypes.I32()},
				{Name: "y", Type: vixtypes.I32()},
			}},
		},
		Functions: []ast.Function{
			{Name: "main", ReturnType: vixtypes.Void{}},
		},
	}
	src := emitProgram(t, prog)
	assert.Contains(t, src, "typedef struct Point {")
	assert.Contains(t, src, "int32_t x;")
	assert.Contains(t, src, "Point Point_new(int32_t param_x, int32_t param_y)")
}

func TestEmitProgramLowersArithmeticReturn(t *testing.T) {
	prog := &ast.Program{
		Functions: []ast.Function{
			{
				Name:       "add",
				Params:     []ast.Param{{Name: "a", Type: vixtypes.I32()}, {Name: "b", Type: vixtypes.I32()}},
				ReturnType: vixtypes.I32(),
				Body: []ast.Stmt{
					ast.ReturnStmt{Value: ast.BinOpExpr{Op: "+", Left: ast.VarExpr{Name: "a"}, Right: ast.VarExpr{Name: "b"}}},
				},
			},
			{Name: "main", ReturnType: vixtypes.Void{}},
		},
	}
	src := emitProgram(t, prog)
	assert.Contains(t, src, "int32_t add(int32_t var_a, int32_t var_b) {")
	assert.Contains(t, src, "var_a + var_b")
}

func TestEmitProgramFreesOwnedStringOnScopeExit(t *testing.T) {
	prog := &ast.Program{
		Functions: []ast.Function{
			{
				Name:       "greet",
				ReturnType: vixtypes.Void{},
				Body: []ast.Stmt{
					ast.TypedDeclStmt{Name: "s", Type: vixtypes.Str{LenType: vixtypes.U64()}, Value: ast.StringExpr{Value: "hi"}, Mutable: false},
				},
			},
			{Name: "main", ReturnType: vixtypes.Void{}},
		},
	}
	src := emitProgram(t, prog)
	assert.Contains(t, src, "free(")
}
