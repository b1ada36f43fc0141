// Package emit implements the code emitter (C7): it walks a checked program
// and produces a single C99/C17 translation unit, in two passes per
// declaration kind (signatures first, then bodies) so mutually recursive
// functions compile without forward-declaration gymnastics on the caller's
// part.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/checker"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/emit/ir"
	"github.com/bahimpro2011-code/vixc/internal/registry"
	"github.com/bahimpro2011-code/vixc/internal/target"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

// Emitter holds all mutable state threaded through code generation: the
// registry of memoized compound-type definitions, fresh-name counters, the
// current function's local variable table, and the owned-variable stacks
// used to insert frees when a scope exits.
type Emitter struct {
	Reg     *registry.Registry
	Target  target.Descriptor
	Handler *diag.Handler
	Checks  *checker.Checker

	buf *ir.Buffer

	varCount   int
	labelCount int

	locals     map[string]string
	ownedVars  [][]string
	loopLabels []loopLabels

	structs map[string]ast.StructDef
	enums   map[string]ast.EnumDef
	impls   map[string]*ast.ImplBlock

	currentReturn vixtypes.Type
	stringHelpers bool
}

type loopLabels struct {
	breakLabel, continueLabel string
}

// New creates an emitter. checks must have already run Check over the same
// program so Emitter can read back inferred expression types.
func New(reg *registry.Registry, t target.Descriptor, handler *diag.Handler, checks *checker.Checker) *Emitter {
	return &Emitter{
		Reg:     reg,
		Target:  t,
		Handler: handler,
		Checks:  checks,
		buf:     ir.New(),
		locals:  make(map[string]string),
		structs: make(map[string]ast.StructDef),
		enums:   make(map[string]ast.EnumDef),
		impls:   make(map[string]*ast.ImplBlock),
	}
}

func (e *Emitter) freshVar() string {
	v := fmt.Sprintf("t%d", e.varCount)
	e.varCount++
	return v
}

func (e *Emitter) freshLabel() string {
	l := fmt.Sprintf("label_%d", e.labelCount)
	e.labelCount++
	return l
}

// EmitProgram lowers prog to a complete C translation unit. It should only
// be called after a checker.Checker has run Check over the same program
// without fatal errors.
func (e *Emitter) EmitProgram(prog *ast.Program) string {
	for _, s := range prog.Structs {
		e.structs[s.Name] = s
	}
	for _, en := range prog.Enums {
		e.enums[en.Name] = en
	}
	for i := range prog.Impls {
		e.impls[prog.Impls[i].StructName] = &prog.Impls[i]
	}

	e.emitStringRuntime()

	for _, s := range prog.Structs {
		e.emitStructDef(s)
	}
	for _, en := range prog.Enums {
		e.emitEnumDef(en)
	}
	for _, ext := range prog.Externs {
		e.emitExternDecl(ext)
	}

	for _, fn := range prog.Functions {
		e.emitFunctionSignature(fn)
	}
	for _, impl := range prog.Impls {
		e.emitConstructorSignature(impl)
		for _, m := range impl.Methods {
			e.emitMethodSignature(impl, m)
		}
	}

	for _, fn := range prog.Functions {
		e.emitFunctionBody(fn)
	}
	for _, impl := range prog.Impls {
		e.emitConstructorBody(impl)
		for _, m := range impl.Methods {
			e.emitMethodBody(impl, m)
		}
	}

	e.buf.Functions.WriteString("\nint main(void) {\n    vix_main();\n    return 0;\n}\n")

	return e.buf.Finalize()
}

// emitStringRuntime installs the String{ptr,len} typedef and its helper
// functions. It runs once per EmitProgram call, unconditionally: the
// helpers are emitted whether or not the program uses owned strings.
func (e *Emitter) emitStringRuntime() {
	e.buf.Headers.WriteString("typedef struct { char* ptr; size_t len; } String;\n\n")
	e.buf.Headers.WriteString(
		"static String vix_string_from_const(const char* s) {\n" +
			"    size_t n = strlen(s);\n" +
			"    char* buf = (char*)malloc(n + 1);\n" +
			"    memcpy(buf, s, n + 1);\n" +
			"    String out; out.ptr = buf; out.len = n;\n" +
			"    return out;\n" +
			"}\n\n")
	e.buf.Headers.WriteString(
		"static String vix_string_concat(String a, String b) {\n" +
			"    char* buf = (char*)malloc(a.len + b.len + 1);\n" +
			"    memcpy(buf, a.ptr, a.len);\n" +
			"    memcpy(buf + a.len, b.ptr, b.len);\n" +
			"    buf[a.len + b.len] = '\\0';\n" +
			"    String out; out.ptr = buf; out.len = a.len + b.len;\n" +
			"    return out;\n" +
			"}\n\n")
	e.buf.Headers.WriteString(
		"static String vix_int_to_str(int64_t v) {\n" +
			"    char tmp[32];\n" +
			"    int n = snprintf(tmp, sizeof(tmp), \"%lld\", (long long)v);\n" +
			"    char* buf = (char*)malloc((size_t)n + 1);\n" +
			"    memcpy(buf, tmp, (size_t)n + 1);\n" +
			"    String out; out.ptr = buf; out.len = (size_t)n;\n" +
			"    return out;\n" +
			"}\n\n")
}

func (e *Emitter) emitStructDef(s ast.StructDef) {
	var b strings.Builder
	fmt.Fprintf(&b, "typedef struct %s {\n", s.Name)
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "    %s %s;\n", f.Type.CType(e.Target), f.Name)
	}
	fmt.Fprintf(&b, "} %s;\n\n", s.Name)
	e.buf.AddForwardDecl(b.String())

	// Every struct gets a default field-wise constructor unless an impl
	// block supplies its own (an impl with neither constructor params nor a
	// constructor body leaves the default in place, and
	// emitConstructorSignature/emitConstructorBody emit nothing for it).
	if impl, hasImpl := e.impls[s.Name]; !hasImpl || (impl.ConstructorBody == nil && impl.ConstructorParams == nil) {
		e.emitDefaultConstructorSignature(s)
		e.emitDefaultConstructorBody(s)
	}
}

func (e *Emitter) emitDefaultConstructorSignature(s ast.StructDef) {
	params := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		params[i] = fmt.Sprintf("%s param_%s", f.Type.CType(e.Target), f.Name)
	}
	fmt.Fprintf(&e.buf.ForwardDecls, "%s %s_new(%s);\n", s.Name, s.Name, strings.Join(params, ", "))
}

func (e *Emitter) emitDefaultConstructorBody(s ast.StructDef) {
	params := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		params[i] = fmt.Sprintf("%s param_%s", f.Type.CType(e.Target), f.Name)
	}
	fmt.Fprintf(&e.buf.Functions, "%s %s_new(%s) {\n", s.Name, s.Name, strings.Join(params, ", "))
	fmt.Fprintf(&e.buf.Functions, "    %s self;\n", s.Name)
	for _, f := range s.Fields {
		fmt.Fprintf(&e.buf.Functions, "    self.%s = param_%s;\n", f.Name, f.Name)
	}
	e.buf.Functions.WriteString("    return self;\n}\n\n")
}

func (e *Emitter) emitEnumDef(en ast.EnumDef) {
	variants := make([]registry.EnumVariant, len(en.Variants))
	for i, v := range en.Variants {
		variants[i] = registry.EnumVariant{Name: v.Name, Type: v.Type}
	}
	e.Reg.RegisterEnum(en.Name, variants, en.IsPublic)
	if def, ok := e.Reg.GenerateEnumDefinition(en.Name, e.Target); ok {
		e.buf.AddForwardDecl(def + "\n")
	}
}

func (e *Emitter) emitExternDecl(ext ast.ExternDecl) {
	params := make([]string, len(ext.Params))
	for i, p := range ext.Params {
		params[i] = p.Type.CType(e.Target)
	}
	fmt.Fprintf(&e.buf.ForwardDecls, "extern %s %s(%s);\n", ext.ReturnType.CType(e.Target), ext.Name, strings.Join(params, ", "))
}

// cName maps a Vix function name to its emitted C name: `main` is renamed
// to `vix_main` since the generated translation unit supplies its own
// `main` (see EmitProgram's shim).
func cName(name string) string {
	if name == "main" {
		return "vix_main"
	}
	return name
}

func (e *Emitter) emitFunctionSignature(fn ast.Function) {
	for _, def := range e.Reg.EnsureDefined(fn.ReturnType, e.Target) {
		e.buf.AddForwardDecl(def + "\n")
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		for _, def := range e.Reg.EnsureDefined(p.Type, e.Target) {
			e.buf.AddForwardDecl(def + "\n")
		}
		params[i] = fmt.Sprintf("%s var_%s", p.Type.CType(e.Target), p.Name)
	}
	fmt.Fprintf(&e.buf.ForwardDecls, "%s %s(%s);\n", fn.ReturnType.CType(e.Target), cName(fn.Name), strings.Join(params, ", "))
}

func (e *Emitter) emitFunctionBody(fn ast.Function) {
	e.locals = make(map[string]string)
	e.ownedVars = nil
	e.currentReturn = fn.ReturnType

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s var_%s", p.Type.CType(e.Target), p.Name)
		e.locals[p.Name] = "var_" + p.Name
	}

	var body strings.Builder
	e.pushScope()
	e.codegenBlock(fn.Body, &body)
	e.popScope(&body)

	if !vixtypes.IsVoid(fn.ReturnType) && !strings.Contains(body.String(), "return") {
		// Fall through with a zero-initialized value rather than leave a
		// non-void function without a return on every path.
		fmt.Fprintf(&body, "return (%s){0};\n", fn.ReturnType.CType(e.Target))
	}

	paramList := strings.Join(params, ", ")
	if paramList == "" {
		paramList = "void"
	}
	fmt.Fprintf(&e.buf.Functions, "%s %s(%s) {\n%s}\n\n", fn.ReturnType.CType(e.Target), cName(fn.Name), paramList, indent(body.String()))
}

func (e *Emitter) emitConstructorSignature(impl ast.ImplBlock) {
	if impl.ConstructorBody == nil && impl.ConstructorParams == nil {
		return
	}
	params := make([]string, len(impl.ConstructorParams))
	for i, p := range impl.ConstructorParams {
		params[i] = fmt.Sprintf("%s param_%s", p.Type.CType(e.Target), p.Name)
	}
	fmt.Fprintf(&e.buf.ForwardDecls, "%s %s_new(%s);\n", impl.StructName, impl.StructName, strings.Join(params, ", "))
}

func (e *Emitter) emitConstructorBody(impl ast.ImplBlock) {
	if impl.ConstructorBody == nil && impl.ConstructorParams == nil {
		return
	}
	e.locals = make(map[string]string)
	for _, p := range impl.ConstructorParams {
		e.locals[p.Name] = "param_" + p.Name
	}
	params := make([]string, len(impl.ConstructorParams))
	for i, p := range impl.ConstructorParams {
		params[i] = fmt.Sprintf("%s param_%s", p.Type.CType(e.Target), p.Name)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%s self;\n", impl.StructName)
	for _, f := range impl.ConstructorBody {
		cexpr, _ := e.codegenExpr(f.Expr, &body)
		fmt.Fprintf(&body, "self.%s = %s;\n", f.Name, cexpr)
	}
	body.WriteString("return self;\n")

	fmt.Fprintf(&e.buf.Functions, "%s %s_new(%s) {\n%s}\n\n", impl.StructName, impl.StructName, strings.Join(params, ", "), indent(body.String()))
}

func (e *Emitter) methodCName(structName, method string) string {
	return structName + "_" + method
}

func (e *Emitter) emitMethodSignature(impl ast.ImplBlock, m ast.ImplMethod) {
	var params []string
	if m.SelfModifier != ast.SelfNone {
		params = append(params, fmt.Sprintf("%s* self", impl.StructName))
	}
	for _, p := range m.Params {
		params = append(params, fmt.Sprintf("%s var_%s", p.Type.CType(e.Target), p.Name))
	}
	fmt.Fprintf(&e.buf.ForwardDecls, "%s %s(%s);\n", m.ReturnType.CType(e.Target), e.methodCName(impl.StructName, m.Name), strings.Join(params, ", "))
}

func (e *Emitter) emitMethodBody(impl ast.ImplBlock, m ast.ImplMethod) {
	e.locals = make(map[string]string)
	e.ownedVars = nil
	e.currentReturn = m.ReturnType

	var params []string
	if m.SelfModifier != ast.SelfNone {
		params = append(params, fmt.Sprintf("%s* self", impl.StructName))
	}
	for _, p := range m.Params {
		params = append(params, fmt.Sprintf("%s var_%s", p.Type.CType(e.Target), p.Name))
		e.locals[p.Name] = "var_" + p.Name
	}

	var body strings.Builder
	e.pushScope()
	e.codegenBlock(m.Body, &body)
	e.popScope(&body)

	if !vixtypes.IsVoid(m.ReturnType) && !strings.Contains(body.String(), "return") {
		fmt.Fprintf(&body, "return (%s){0};\n", m.ReturnType.CType(e.Target))
	}

	fmt.Fprintf(&e.buf.Functions, "%s %s(%s) {\n%s}\n\n", m.ReturnType.CType(e.Target), e.methodCName(impl.StructName, m.Name), strings.Join(params, ", "), indent(body.String()))
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func (e *Emitter) pushScope() {
	e.ownedVars = append(e.ownedVars, nil)
}

// popScope emits free() calls for every owned variable declared directly in
// the scope being popped, mirroring codegen_scope's owned_vars diffing.
func (e *Emitter) popScope(body *strings.Builder) {
	top := e.ownedVars[len(e.ownedVars)-1]
	e.ownedVars = e.ownedVars[:len(e.ownedVars)-1]
	sort.Strings(top)
	for _, name := range top {
		fmt.Fprintf(body, "free(%s.ptr);\n", name)
	}
}

func (e *Emitter) markOwned(name string) {
	if len(e.ownedVars) == 0 {
		return
	}
	top := len(e.ownedVars) - 1
	e.ownedVars[top] = append(e.ownedVars[top], name)
}

func (e *Emitter) exprType(n ast.Expr) vixtypes.Type {
	if e.Checks != nil {
		if t, ok := e.Checks.ExprTypes[n]; ok {
			return t
		}
	}
	return vixtypes.Any{}
}
