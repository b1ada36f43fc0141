// Package checker implements the semantic checker: name resolution, type
// checking, and borrow checking over a parsed program, producing diagnostics
// through a diag.Handler and a fully-typed expression map the emitter reads
// back to avoid re-inferring types during codegen.
package checker

import (
	"fmt"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/manifest"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

// FuncSig is a callable signature: a function, extern, or impl method.
type FuncSig struct {
	Params     []ast.Param
	ReturnType vixtypes.Type
}

// Checker walks a program in two passes (collectDecls, then checkBodies),
// matching the structure of a Pratt-style two-pass checker: signatures must
// all be visible before any body is checked, so forward references between
// functions resolve regardless of declaration order.
type Checker struct {
	Handler *diag.Handler

	scopes *scopeStack
	borrow *borrowTracker

	structs map[string]ast.StructDef
	enums   map[string]ast.EnumDef
	funcs   map[string]FuncSig
	externs map[string]FuncSig
	methods map[string]map[string]FuncSig // struct name -> method name -> sig

	// builtins is the fixed set of functions every program gets for free
	// (print, len, assert, ...), never declared anywhere in source.
	builtins map[string]FuncSig

	// capabilities holds names reserved by an import or a loaded library
	// manifest: calls against them resolve without an argument-count check,
	// since neither an import nor a manifest entry carries a checkable body
	// the way a funcs/externs signature does.
	capabilities map[string]FuncSig

	currentReturn vixtypes.Type
	mutableNames  map[string]bool

	// ExprTypes records the inferred type of every expression node the
	// checker visited, keyed by pointer identity, so the emitter can look
	// types up instead of re-running inference.
	ExprTypes map[ast.Expr]vixtypes.Type
}

// New creates a checker with the builtin function table already filled in
// by registerBuiltins; callers call Check to run both phases over a program.
func New(handler *diag.Handler) *Checker {
	return &Checker{
		Handler:      handler,
		scopes:       newScopeStack(),
		borrow:       newBorrowTracker(),
		structs:      make(map[string]ast.StructDef),
		enums:        make(map[string]ast.EnumDef),
		funcs:        make(map[string]FuncSig),
		externs:      make(map[string]FuncSig),
		methods:      make(map[string]map[string]FuncSig),
		builtins:     registerBuiltins(),
		capabilities: make(map[string]FuncSig),
		ExprTypes:    make(map[ast.Expr]vixtypes.Type),
		mutableNames: make(map[string]bool),
	}
}

// registerBuiltins returns the fixed table of functions every Vix program
// may call without a matching extern or function declaration. Grounded on
// original_source/src/Token/typechecker.rs's register_builtin_functions:
// print/println/panic lower directly in the emitter, array/slots/lists are
// the collection constructors, and len/push/pop/assert/char round out the
// small set the original hard-codes rather than resolving through a table.
func registerBuiltins() map[string]FuncSig {
	anyParam := ast.Param{Name: "value", Type: vixtypes.Any{}}
	return map[string]FuncSig{
		"print":   {ReturnType: vixtypes.Void{}},
		"println": {ReturnType: vixtypes.Void{}},
		"panic":   {ReturnType: vixtypes.Void{}},
		"array":   {ReturnType: vixtypes.Void{}},
		"slots":   {ReturnType: vixtypes.Void{}},
		"lists":   {ReturnType: vixtypes.Void{}},
		"char":    {ReturnType: vixtypes.Char32()},
		"len":     {Params: []ast.Param{anyParam}, ReturnType: vixtypes.I32()},
		"push":    {Params: []ast.Param{anyParam, anyParam}, ReturnType: vixtypes.Void{}},
		"pop":     {Params: []ast.Param{anyParam}, ReturnType: vixtypes.Any{}},
		"assert":  {Params: []ast.Param{{Name: "condition", Type: vixtypes.Bool{}}}, ReturnType: vixtypes.Void{}},
	}
}

// RegisterLibraryFunctions adds a loaded manifest's exposed functions to the
// capability table, the same Any-arity-unchecked slot an import occupies
// (spec.md §4.4 phase 4). It must run before Check so a call into a
// library-provided function resolves during name resolution instead of
// falling through to the undefined-name diagnostic (E0425).
func (c *Checker) RegisterLibraryFunctions(fns []manifest.FunctionSignature) {
	for _, fn := range fns {
		c.capabilities[fn.Name] = FuncSig{ReturnType: fn.ReturnType}
	}
}

// Check runs both phases over prog. It returns once the error budget is
// exhausted or both phases complete.
func (c *Checker) Check(prog *ast.Program) {
	c.collectDecls(prog)
	if !c.Handler.ShouldContinue() {
		return
	}
	c.checkBodies(prog)
}

// collectDecls registers every top-level declaration's signature, in the
// order spec.md §4.4 names: structs, enums, externs, imports, functions,
// impl methods — so any later phase can resolve a reference regardless of
// where in the file it's declared.
func (c *Checker) collectDecls(prog *ast.Program) {
	for _, s := range prog.Structs {
		if _, exists := c.structs[s.Name]; exists {
			c.nameConflict(s.Name, s.Location)
			continue
		}
		for _, f := range s.Fields {
			if vixtypes.IsVoid(f.Type) {
				c.voidField(s.Name, f.Name, s.Location)
			}
		}
		c.structs[s.Name] = s
	}

	for _, e := range prog.Enums {
		if _, exists := c.enums[e.Name]; exists {
			c.nameConflict(e.Name, e.Location)
			continue
		}
		c.enums[e.Name] = e
	}

	for _, ext := range prog.Externs {
		c.externs[ext.Name] = FuncSig{Params: ext.Params, ReturnType: ext.ReturnType}
	}

	// An import reserves its name as an Any-typed capability (spec.md §4.4
	// phase 4): resolving what it actually exports is the out-of-scope
	// module loader's job, but the name itself must count against E0428.
	for _, im := range prog.Imports {
		c.capabilities[im.Name] = FuncSig{ReturnType: vixtypes.Any{}}
	}

	for _, fn := range prog.Functions {
		if _, exists := c.funcs[fn.Name]; exists {
			c.nameConflict(fn.Name, fn.Location)
			continue
		}
		if _, ok := c.builtins[fn.Name]; ok {
			c.builtinConflict(fn.Name, fn.Location)
		}
		if _, ok := c.capabilities[fn.Name]; ok {
			c.capabilityConflict(fn.Name, fn.Location)
		}
		for _, p := range fn.Params {
			if vixtypes.IsVoid(p.Type) {
				c.voidParam(fn.Name, p.Name, fn.Location)
			}
		}
		c.funcs[fn.Name] = FuncSig{Params: fn.Params, ReturnType: fn.ReturnType}
	}

	for _, impl := range prog.Impls {
		if _, ok := c.structs[impl.StructName]; !ok {
			c.undefinedStruct(impl.StructName, impl.Location)
			continue
		}
		if c.methods[impl.StructName] == nil {
			c.methods[impl.StructName] = make(map[string]FuncSig)
		}
		for _, m := range impl.Methods {
			c.methods[impl.StructName][m.Name] = FuncSig{Params: m.Params, ReturnType: m.ReturnType}
		}
	}
}

// checkBodies type-checks every function and impl-method body, now that all
// signatures are visible.
func (c *Checker) checkBodies(prog *ast.Program) {
	for i := range prog.Functions {
		if !c.Handler.ShouldContinue() {
			return
		}
		c.checkFunction(&prog.Functions[i])
	}
	for i := range prog.Impls {
		impl := &prog.Impls[i]
		for j := range impl.Methods {
			if !c.Handler.ShouldContinue() {
				return
			}
			c.checkMethod(impl, &impl.Methods[j])
		}
	}
}

func (c *Checker) checkFunction(fn *ast.Function) {
	c.scopes.push()
	defer c.releaseScope()

	for _, p := range fn.Params {
		c.scopes.insert(p.Name, p.Type)
	}
	prevReturn := c.currentReturn
	c.currentReturn = fn.ReturnType
	c.checkBlock(fn.Body)
	c.currentReturn = prevReturn
}

func (c *Checker) checkMethod(impl *ast.ImplBlock, m *ast.ImplMethod) {
	c.scopes.push()
	defer c.releaseScope()

	if m.SelfModifier != ast.SelfNone {
		c.scopes.insert("self", vixtypes.Ptr{Inner: vixtypes.Struct{Name: impl.StructName}})
	}
	for _, p := range m.Params {
		c.scopes.insert(p.Name, p.Type)
	}
	prevReturn := c.currentReturn
	c.currentReturn = m.ReturnType
	c.checkBlock(m.Body)
	c.currentReturn = prevReturn
}

// releaseScope pops the innermost scope and releases any borrows held by
// names that just went out of scope, matching the teacher/original's
// owned_vars-diffing release-on-exit discipline.
func (c *Checker) releaseScope() {
	names := c.scopes.pop()
	for _, n := range names {
		c.borrow.Release(n)
	}
}

func (c *Checker) checkBlock(stmts []ast.Stmt) {
	for _, s := range stmts {
		if !c.Handler.ShouldContinue() {
			return
		}
		c.checkStmt(s)
	}
}

func (c *Checker) nameConflict(name string, loc ast.Location) {
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeNameConflict,
		Message: fmt.Sprintf("the name `%s` is defined multiple times", name),
		Span:    spanOf(loc),
		Help:    fmt.Sprintf("rename one of the declarations of `%s`", name),
	})
}

func (c *Checker) builtinConflict(name string, loc ast.Location) {
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeNameConflict,
		Message: fmt.Sprintf("the name `%s` conflicts with a built-in function", name),
		Span:    spanOf(loc),
		Help:    fmt.Sprintf("built-in functions cannot be redefined; rename `%s`", name),
	})
}

func (c *Checker) capabilityConflict(name string, loc ast.Location) {
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeNameConflict,
		Message: fmt.Sprintf("the name `%s` conflicts with an imported symbol", name),
		Span:    spanOf(loc),
		Help:    fmt.Sprintf("`%s` is already imported; rename the function or drop the import", name),
	})
}

func (c *Checker) undefinedStruct(name string, loc ast.Location) {
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeUndefinedStruct,
		Message: fmt.Sprintf("undefined struct `%s`", name),
		Span:    spanOf(loc),
	})
}

func (c *Checker) voidField(structName, field string, loc ast.Location) {
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeVoidType,
		Message: fmt.Sprintf("field `%s` of struct `%s` cannot have type `void`", field, structName),
		Span:    spanOf(loc),
		Help:    "give the field a concrete type, or remove it",
	})
}

func (c *Checker) voidParam(funcName, param string, loc ast.Location) {
	c.Handler.Error(diag.Diagnostic{
		Code:    diag.CodeVoidType,
		Message: fmt.Sprintf("parameter `%s` of function `%s` cannot have type `void`", param, funcName),
		Span:    spanOf(loc),
	})
}

func spanOf(loc ast.Location) diag.Span {
	return diag.Span{Filename: loc.File, Line: loc.Line, Column: loc.Column, Start: 0, End: loc.Length}
}
