// Package ast defines the program representation the checker and emitter
// consume: a parsed Vix program, already past lexing/parsing (both out of
// scope here — see SPEC_FULL.md §6). Every node is a plain data struct; no
// behavior lives on them beyond the marker methods that let Stmt and Expr
// act as closed sum types.
package ast

import "github.com/bahimpro2011-code/vixc/internal/vixtypes"

// Program is a whole compilation unit: top-level declarations grouped by
// kind. The checker does not depend on the field order: it walks each
// list in its own fixed order (structs/enums/externs/imports before
// functions/impls) and keeps each list's entries in the order given.
type Program struct {
	Structs   []StructDef
	Enums     []EnumDef
	Externs   []ExternDecl
	Imports   []ImportDecl
	Functions []Function
	Impls     []ImplBlock
}

// ParamModifier annotates how a parameter is passed.
type ParamModifier int

const (
	ParamByValue ParamModifier = iota
	ParamByRef
	ParamByMutRef
)

// SelfModifier annotates how a method receives its receiver.
type SelfModifier int

const (
	SelfNone SelfModifier = iota
	SelfByValue
	SelfByRef
	SelfByMutRef
)

// Param is a single function or method parameter.
type Param struct {
	Name     string
	Type     vixtypes.Type
	Modifier ParamModifier
}

// Location is a source position used to anchor diagnostics.
type Location struct {
	File   string
	Line   int
	Column int
	Length int
}

// Function is a top-level function declaration.
type Function struct {
	Name       string
	Params     []Param
	ReturnType vixtypes.Type
	Body       []Stmt
	IsPublic   bool
	Location   Location
}

// StructField is one field of a struct declaration.
type StructField struct {
	Name string
	Type vixtypes.Type
}

// StructDef is a top-level struct declaration.
type StructDef struct {
	Name     string
	Fields   []StructField
	Location Location
}

// EnumVariant is one arm of an enum declaration; Type is nil for a
// payload-less variant.
type EnumVariant struct {
	Name string
	Type vixtypes.Type
}

// EnumDef is a top-level enum declaration.
type EnumDef struct {
	Name     string
	Variants []EnumVariant
	IsPublic bool
	Location Location
}

// ImplMethod is one method inside an impl block.
type ImplMethod struct {
	Name         string
	Params       []Param
	ReturnType   vixtypes.Type
	Body         []Stmt
	SelfModifier SelfModifier
	Location     Location
}

// ImplBlock attaches a constructor and methods to a struct.
type ImplBlock struct {
	StructName        string
	TraitName         string // empty if none
	ConstructorParams []Param
	ConstructorBody   []FieldInit // nil if the default field-wise constructor applies
	Methods           []ImplMethod
	Location          Location
}

// FieldInit is one `field: expr` entry in a named-argument call or
// constructor body.
type FieldInit struct {
	Name string
	Expr Expr
}

// ExternDecl declares a foreign function implemented outside the
// translation unit (e.g. by a linked library).
type ExternDecl struct {
	Name       string
	Params     []Param
	ReturnType vixtypes.Type
	HasBody    bool
}

// ImportDecl names a library or module whose symbol becomes visible as an
// Any-typed capability (spec.md §4.4 phase 4): the checker doesn't resolve
// what the import actually exports (that's the out-of-scope package
// loader's job), it just reserves the name against E0428.
type ImportDecl struct {
	Name string
}

// ---- statements ----

// Stmt is implemented by every statement node.
type Stmt interface{ isStmt() }

type TypedDeclStmt struct {
	Name     string
	Type     vixtypes.Type
	Value    Expr
	Mutable  bool
	Location Location
}

type AssignStmt struct {
	Target   Expr
	Value    Expr
	Location Location
}

type ExprStmt struct {
	Expr     Expr
	Location Location
}

type ReturnStmt struct {
	Value    Expr // nil for bare `return`
	Location Location
}

type BreakStmt struct{ Location Location }
type ContinueStmt struct{ Location Location }

type IfStmt struct {
	Cond     Expr
	Then     []Stmt
	Else     []Stmt // nil if no else branch
	Location Location
}

type WhileStmt struct {
	Cond     Expr
	Body     []Stmt
	Location Location
}

// ForStmt iterates Iterable, binding each element to Var.
type ForStmt struct {
	Var      string
	Iterable Expr
	Body     []Stmt
	Location Location
}

// MatchArm is one `value => stmts` arm of a match statement.
type MatchArm struct {
	Value Expr
	Body  []Stmt
}

type MatchStmt struct {
	Subject  Expr
	Arms     []MatchArm
	Location Location
}

// TupleUnpackStmt destructures a tuple-valued expression into named bindings.
type TupleUnpackStmt struct {
	Names    []string
	Value    Expr
	Location Location
}

// ScopeStmt introduces a nested lexical scope (e.g. a bare `{ ... }` block).
type ScopeStmt struct {
	Body     []Stmt
	Location Location
}

func (TypedDeclStmt) isStmt()   {}
func (AssignStmt) isStmt()      {}
func (ExprStmt) isStmt()        {}
func (ReturnStmt) isStmt()      {}
func (BreakStmt) isStmt()       {}
func (ContinueStmt) isStmt()    {}
func (IfStmt) isStmt()          {}
func (WhileStmt) isStmt()       {}
func (ForStmt) isStmt()         {}
func (MatchStmt) isStmt()       {}
func (TupleUnpackStmt) isStmt() {}
func (ScopeStmt) isStmt()       {}

// ---- expressions ----

// Expr is implemented by every expression node.
type Expr interface{ isExpr() }

type NumberExpr struct{ Value int32 }
type FloatExpr struct{ Value float32 }
type StringExpr struct{ Value string }
type BoolExpr struct{ Value bool }
type HexNumberExpr struct{ Value int32 }
type BinaryNumberExpr struct{ Value int32 }
type OctalNumberExpr struct{ Value int32 }
type CharExpr struct{ Value int32 }
type NoneExpr struct{}
type SomeExpr struct{ Inner Expr }
type ResultOkExpr struct{ Inner Expr }
type ResultErrExpr struct{ Inner Expr }
type VarExpr struct{ Name string }
type NotExpr struct{ Inner Expr }
type WaitExpr struct{ Inner Expr }
type UnwrapExpr struct{ Inner Expr }
type UnwrapOrExpr struct{ Inner, Default Expr }
type CharsExpr struct{ Inner Expr }
type IsEmptyExpr struct{ Inner Expr }
type IsNotEmptyExpr struct{ Inner Expr }
type CollectExpr struct{ Inner Expr }
type PanicExpr struct{ Inner Expr }

type HaveExpr struct{ Obj, Item Expr }
type ContainExpr struct{ Obj, Item Expr }
type ContainAllExpr struct {
	Obj   Expr
	Items []Expr
}
type IndexOfExpr struct{ Obj, Item Expr }
type ArrayGetExpr struct{ Obj, Reference Expr }
type FilterExpr struct{ Obj, Reference Expr }

type CallExpr struct {
	Name string
	Args []Expr
}
type CallNamedExpr struct {
	Name string
	Args []FieldInit
}
type FuncAddrExpr struct{ Name string }
type BinOpExpr struct {
	Op          string
	Left, Right Expr
}
type UnOpExpr struct {
	Op    string
	Inner Expr
}
type TupleExpr struct{ Elements []Expr }
type ArrayExpr struct{ Elements []Expr }
type IndexExpr struct {
	Obj     Expr
	Indices []Expr
}
type TupleAccessExpr struct {
	Obj   Expr
	Index int
}
type MemberAccessExpr struct {
	Obj   Expr
	Field string
}
type MethodCallExpr struct {
	Obj    Expr
	Method string
	Args   []Expr
}
type MethodCallNamedExpr struct {
	Obj    Expr
	Method string
	Args   []FieldInit
}
type StaticMethodCallExpr struct {
	Struct, Method string
	Args           []Expr
}
type StaticMethodCallNamedExpr struct {
	Struct, Method string
	Args           []FieldInit
}
type ModuleAccessExpr struct{ Module, Name string }
type ModuleCallExpr struct {
	Module, Func string
	Args         []Expr
}
type ModuleCallNamedExpr struct {
	Module, Func string
	Args         []FieldInit
}
type StructInitExpr struct {
	Struct string
	Fields []FieldInit
}
type CastExpr struct {
	Inner  Expr
	Target vixtypes.Type
}
type ReferenceToExpr struct{ Target vixtypes.Type }
type PipeExpr struct{ Left, Right Expr }
type SizeOfExpr struct{ Target vixtypes.Type }
type AlignOfExpr struct{ Target vixtypes.Type }
type TypeOfExpr struct{ Inner Expr }
type OffsetOfExpr struct{ StructType, Field string }
type OneOfExpr struct{ Options []Expr }
type ArrayMethodExpr struct {
	Obj    Expr
	Method string
	Args   []Expr
}
type OptionMethodExpr struct {
	Obj    Expr
	Method string
	Args   []Expr
}
type TypeExpr struct{ Type vixtypes.Type }

func (NumberExpr) isExpr()               {}
func (FloatExpr) isExpr()                {}
func (StringExpr) isExpr()               {}
func (BoolExpr) isExpr()                 {}
func (HexNumberExpr) isExpr()            {}
func (BinaryNumberExpr) isExpr()         {}
func (OctalNumberExpr) isExpr()          {}
func (CharExpr) isExpr()                 {}
func (NoneExpr) isExpr()                 {}
func (SomeExpr) isExpr()                 {}
func (ResultOkExpr) isExpr()             {}
func (ResultErrExpr) isExpr()            {}
func (VarExpr) isExpr()                  {}
func (NotExpr) isExpr()                  {}
func (WaitExpr) isExpr()                 {}
func (UnwrapExpr) isExpr()               {}
func (UnwrapOrExpr) isExpr()             {}
func (CharsExpr) isExpr()                {}
func (IsEmptyExpr) isExpr()              {}
func (IsNotEmptyExpr) isExpr()           {}
func (CollectExpr) isExpr()              {}
func (PanicExpr) isExpr()                {}
func (HaveExpr) isExpr()                 {}
func (ContainExpr) isExpr()              {}
func (ContainAllExpr) isExpr()           {}
func (IndexOfExpr) isExpr()              {}
func (ArrayGetExpr) isExpr()             {}
func (FilterExpr) isExpr()               {}
func (CallExpr) isExpr()                 {}
func (CallNamedExpr) isExpr()            {}
func (FuncAddrExpr) isExpr()             {}
func (BinOpExpr) isExpr()                {}
func (UnOpExpr) isExpr()                 {}
func (TupleExpr) isExpr()                {}
func (ArrayExpr) isExpr()                {}
func (IndexExpr) isExpr()                {}
func (TupleAccessExpr) isExpr()          {}
func (MemberAccessExpr) isExpr()         {}
func (MethodCallExpr) isExpr()           {}
func (MethodCallNamedExpr) isExpr()      {}
func (StaticMethodCallExpr) isExpr()     {}
func (StaticMethodCallNamedExpr) isExpr() {}
func (ModuleAccessExpr) isExpr()         {}
func (ModuleCallExpr) isExpr()           {}
func (ModuleCallNamedExpr) isExpr()      {}
func (StructInitExpr) isExpr()           {}
func (CastExpr) isExpr()                 {}
func (ReferenceToExpr) isExpr()          {}
func (PipeExpr) isExpr()                 {}
func (SizeOfExpr) isExpr()               {}
func (AlignOfExpr) isExpr()              {}
func (TypeOfExpr) isExpr()               {}
func (OffsetOfExpr) isExpr()             {}
func (OneOfExpr) isExpr()                {}
func (ArrayMethodExpr) isExpr()          {}
func (OptionMethodExpr) isExpr()         {}
func (TypeExpr) isExpr()                 {}
