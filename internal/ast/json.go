package ast

import (
	"encoding/json"
	"fmt"

	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

// DecodeProgram parses a Program from its JSON fixture form: the input
// shape cmd/vixc reads from a named file, standing in for a parser's
// output (out of scope per SPEC_FULL.md §1).
func DecodeProgram(data []byte) (*Program, error) {
	var w struct {
		Structs   []wireStruct  `json:"structs"`
		Enums     []wireEnum    `json:"enums"`
		Externs   []wireExtern  `json:"externs"`
		Imports   []wireImport  `json:"imports"`
		Functions []wireFunc    `json:"functions"`
		Impls     []wireImpl    `json:"impls"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}

	prog := &Program{}
	for _, s := range w.Structs {
		sd, err := s.resolve()
		if err != nil {
			return nil, err
		}
		prog.Structs = append(prog.Structs, sd)
	}
	for _, en := range w.Enums {
		ed, err := en.resolve()
		if err != nil {
			return nil, err
		}
		prog.Enums = append(prog.Enums, ed)
	}
	for _, ex := range w.Externs {
		ed, err := ex.resolve()
		if err != nil {
			return nil, err
		}
		prog.Externs = append(prog.Externs, ed)
	}
	for _, im := range w.Imports {
		prog.Imports = append(prog.Imports, ImportDecl{Name: im.Name})
	}
	for _, f := range w.Functions {
		fn, err := f.resolve()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	for _, im := range w.Impls {
		ib, err := im.resolve()
		if err != nil {
			return nil, err
		}
		prog.Impls = append(prog.Impls, ib)
	}
	return prog, nil
}

type wireType struct {
	raw json.RawMessage
}

func (w *wireType) UnmarshalJSON(data []byte) error {
	w.raw = append([]byte(nil), data...)
	return nil
}

func (w *wireType) decode() (vixtypes.Type, error) {
	if w == nil || len(w.raw) == 0 {
		return vixtypes.Any{}, nil
	}
	return vixtypes.DecodeJSON(w.raw)
}

type wireParam struct {
	Name     string    `json:"name"`
	Type     wireType  `json:"type"`
	Modifier string    `json:"modifier"`
}

func (p wireParam) resolve() (Param, error) {
	t, err := p.Type.decode()
	if err != nil {
		return Param{}, err
	}
	mod := ParamByValue
	switch p.Modifier {
	case "ref":
		mod = ParamByRef
	case "mut_ref":
		mod = ParamByMutRef
	}
	return Param{Name: p.Name, Type: t, Modifier: mod}, nil
}

func resolveParams(ps []wireParam) ([]Param, error) {
	out := make([]Param, len(ps))
	for i, p := range ps {
		r, err := p.resolve()
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

type wireStructField struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
}

type wireStruct struct {
	Name   string            `json:"name"`
	Fields []wireStructField `json:"fields"`
}

func (s wireStruct) resolve() (StructDef, error) {
	fields := make([]StructField, len(s.Fields))
	for i, f := range s.Fields {
		t, err := f.Type.decode()
		if err != nil {
			return StructDef{}, err
		}
		fields[i] = StructField{Name: f.Name, Type: t}
	}
	return StructDef{Name: s.Name, Fields: fields}, nil
}

type wireEnumVariant struct {
	Name string    `json:"name"`
	Type *wireType `json:"type"`
}

type wireEnum struct {
	Name     string            `json:"name"`
	Variants []wireEnumVariant `json:"variants"`
	IsPublic bool              `json:"is_public"`
}

func (en wireEnum) resolve() (EnumDef, error) {
	variants := make([]EnumVariant, len(en.Variants))
	for i, v := range en.Variants {
		var t vixtypes.Type
		if v.Type != nil {
			d, err := v.Type.decode()
			if err != nil {
				return EnumDef{}, err
			}
			t = d
		}
		variants[i] = EnumVariant{Name: v.Name, Type: t}
	}
	return EnumDef{Name: en.Name, Variants: variants, IsPublic: en.IsPublic}, nil
}

type wireExtern struct {
	Name       string      `json:"name"`
	Params     []wireParam `json:"params"`
	ReturnType wireType    `json:"return_type"`
	HasBody    bool        `json:"has_body"`
}

func (e wireExtern) resolve() (ExternDecl, error) {
	params, err := resolveParams(e.Params)
	if err != nil {
		return ExternDecl{}, err
	}
	ret, err := e.ReturnType.decode()
	if err != nil {
		return ExternDecl{}, err
	}
	return ExternDecl{Name: e.Name, Params: params, ReturnType: ret, HasBody: e.HasBody}, nil
}

type wireImport struct {
	Name string `json:"name"`
}

type wireFunc struct {
	Name       string            `json:"name"`
	Params     []wireParam       `json:"params"`
	ReturnType wireType          `json:"return_type"`
	Body       []json.RawMessage `json:"body"`
	IsPublic   bool              `json:"is_public"`
}

func (f wireFunc) resolve() (Function, error) {
	params, err := resolveParams(f.Params)
	if err != nil {
		return Function{}, err
	}
	ret, err := f.ReturnType.decode()
	if err != nil {
		return Function{}, err
	}
	body, err := decodeStmts(f.Body)
	if err != nil {
		return Function{}, err
	}
	return Function{Name: f.Name, Params: params, ReturnType: ret, Body: body, IsPublic: f.IsPublic}, nil
}

type wireFieldInit struct {
	Name string          `json:"name"`
	Expr json.RawMessage `json:"expr"`
}

func resolveFieldInits(fs []wireFieldInit) ([]FieldInit, error) {
	out := make([]FieldInit, len(fs))
	for i, f := range fs {
		e, err := decodeExpr(f.Expr)
		if err != nil {
			return nil, err
		}
		out[i] = FieldInit{Name: f.Name, Expr: e}
	}
	return out, nil
}

type wireImplMethod struct {
	Name         string            `json:"name"`
	Params       []wireParam       `json:"params"`
	ReturnType   wireType          `json:"return_type"`
	Body         []json.RawMessage `json:"body"`
	SelfModifier string            `json:"self_modifier"`
}

func (m wireImplMethod) resolve() (ImplMethod, error) {
	params, err := resolveParams(m.Params)
	if err != nil {
		return ImplMethod{}, err
	}
	ret, err := m.ReturnType.decode()
	if err != nil {
		return ImplMethod{}, err
	}
	body, err := decodeStmts(m.Body)
	if err != nil {
		return ImplMethod{}, err
	}
	self := SelfNone
	switch m.SelfModifier {
	case "value":
		self = SelfByValue
	case "ref":
		self = SelfByRef
	case "mut_ref":
		self = SelfByMutRef
	}
	return ImplMethod{Name: m.Name, Params: params, ReturnType: ret, Body: body, SelfModifier: self}, nil
}

type wireImpl struct {
	StructName        string            `json:"struct_name"`
	TraitName         string            `json:"trait_name"`
	ConstructorParams []wireParam       `json:"constructor_params"`
	ConstructorBody   []wireFieldInit   `json:"constructor_body"`
	Methods           []wireImplMethod  `json:"methods"`
}

func (im wireImpl) resolve() (ImplBlock, error) {
	cparams, err := resolveParams(im.ConstructorParams)
	if err != nil {
		return ImplBlock{}, err
	}
	var cbody []FieldInit
	if im.ConstructorBody != nil {
		cbody, err = resolveFieldInits(im.ConstructorBody)
		if err != nil {
			return ImplBlock{}, err
		}
	}
	methods := make([]ImplMethod, len(im.Methods))
	for i, m := range im.Methods {
		r, err := m.resolve()
		if err != nil {
			return ImplBlock{}, err
		}
		methods[i] = r
	}
	return ImplBlock{
		StructName:        im.StructName,
		TraitName:         im.TraitName,
		ConstructorParams: cparams,
		ConstructorBody:   cbody,
		Methods:           methods,
	}, nil
}

// ---- statements ----

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	out := make([]Stmt, len(raws))
	for i, r := range raws {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeStmt(data json.RawMessage) (Stmt, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}

	switch head.Kind {
	case "typed_decl":
		var w struct {
			Name    string          `json:"name"`
			Type    wireType        `json:"type"`
			Value   json.RawMessage `json:"value"`
			Mutable bool            `json:"mutable"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		t, err := w.Type.decode()
		if err != nil {
			return nil, err
		}
		var val Expr
		if len(w.Value) > 0 {
			val, err = decodeExpr(w.Value)
			if err != nil {
				return nil, err
			}
		}
		return TypedDeclStmt{Name: w.Name, Type: t, Value: val, Mutable: w.Mutable}, nil

	case "assign":
		var w struct {
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return AssignStmt{Target: target, Value: value}, nil

	case "expr":
		var w struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		e, err := decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		return ExprStmt{Expr: e}, nil

	case "return":
		var w struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		if len(w.Value) == 0 {
			return ReturnStmt{}, nil
		}
		e, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return ReturnStmt{Value: e}, nil

	case "break":
		return BreakStmt{}, nil
	case "continue":
		return ContinueStmt{}, nil

	case "if":
		var w struct {
			Cond json.RawMessage   `json:"cond"`
			Then []json.RawMessage `json:"then"`
			Else []json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(w.Then)
		if err != nil {
			return nil, err
		}
		var els []Stmt
		if w.Else != nil {
			els, err = decodeStmts(w.Else)
			if err != nil {
				return nil, err
			}
		}
		return IfStmt{Cond: cond, Then: then, Else: els}, nil

	case "while":
		var w struct {
			Cond json.RawMessage   `json:"cond"`
			Body []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return WhileStmt{Cond: cond, Body: body}, nil

	case "for":
		var w struct {
			Var      string            `json:"var"`
			Iterable json.RawMessage   `json:"iterable"`
			Body     []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		iter, err := decodeExpr(w.Iterable)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return ForStmt{Var: w.Var, Iterable: iter, Body: body}, nil

	case "match":
		var w struct {
			Subject json.RawMessage `json:"subject"`
			Arms    []struct {
				Value json.RawMessage   `json:"value"`
				Body  []json.RawMessage `json:"body"`
			} `json:"arms"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		subject, err := decodeExpr(w.Subject)
		if err != nil {
			return nil, err
		}
		arms := make([]MatchArm, len(w.Arms))
		for i, a := range w.Arms {
			v, err := decodeExpr(a.Value)
			if err != nil {
				return nil, err
			}
			b, err := decodeStmts(a.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = MatchArm{Value: v, Body: b}
		}
		return MatchStmt{Subject: subject, Arms: arms}, nil

	case "tuple_unpack":
		var w struct {
			Names []string        `json:"names"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		val, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return TupleUnpackStmt{Names: w.Names, Value: val}, nil

	case "scope":
		var w struct {
			Body []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return ScopeStmt{Body: body}, nil

	default:
		return nil, fmt.Errorf("decode statement: unknown kind %q", head.Kind)
	}
}

// ---- expressions ----

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	out := make([]Expr, len(raws))
	for i, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeExpr(data json.RawMessage) (Expr, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}

	switch head.Kind {
	case "number":
		var w struct {
			Value int32 `json:"value"`
		}
		json.Unmarshal(data, &w)
		return NumberExpr{Value: w.Value}, nil
	case "float":
		var w struct {
			Value float32 `json:"value"`
		}
		json.Unmarshal(data, &w)
		return FloatExpr{Value: w.Value}, nil
	case "hex_number":
		var w struct {
			Value int32 `json:"value"`
		}
		json.Unmarshal(data, &w)
		return HexNumberExpr{Value: w.Value}, nil
	case "binary_number":
		var w struct {
			Value int32 `json:"value"`
		}
		json.Unmarshal(data, &w)
		return BinaryNumberExpr{Value: w.Value}, nil
	case "octal_number":
		var w struct {
			Value int32 `json:"value"`
		}
		json.Unmarshal(data, &w)
		return OctalNumberExpr{Value: w.Value}, nil
	case "char":
		var w struct {
			Value int32 `json:"value"`
		}
		json.Unmarshal(data, &w)
		return CharExpr{Value: w.Value}, nil
	case "string":
		var w struct {
			Value string `json:"value"`
		}
		json.Unmarshal(data, &w)
		return StringExpr{Value: w.Value}, nil
	case "bool":
		var w struct {
			Value bool `json:"value"`
		}
		json.Unmarshal(data, &w)
		return BoolExpr{Value: w.Value}, nil
	case "none":
		return NoneExpr{}, nil
	case "some":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return SomeExpr{Inner: inner}, nil
	case "result_ok":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return ResultOkExpr{Inner: inner}, nil
	case "result_err":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return ResultErrExpr{Inner: inner}, nil
	case "var":
		var w struct {
			Name string `json:"name"`
		}
		json.Unmarshal(data, &w)
		return VarExpr{Name: w.Name}, nil
	case "not":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return NotExpr{Inner: inner}, nil
	case "wait":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return WaitExpr{Inner: inner}, nil
	case "unwrap":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return UnwrapExpr{Inner: inner}, nil
	case "unwrap_or":
		var w struct {
			Inner   json.RawMessage `json:"inner"`
			Default json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		inner, err := decodeExpr(w.Inner)
		if err != nil {
			return nil, err
		}
		def, err := decodeExpr(w.Default)
		if err != nil {
			return nil, err
		}
		return UnwrapOrExpr{Inner: inner, Default: def}, nil
	case "chars":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return CharsExpr{Inner: inner}, nil
	case "is_empty":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return IsEmptyExpr{Inner: inner}, nil
	case "is_not_empty":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return IsNotEmptyExpr{Inner: inner}, nil
	case "collect":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return CollectExpr{Inner: inner}, nil
	case "panic":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return PanicExpr{Inner: inner}, nil
	case "have":
		obj, item, err := decodeObjItem(data)
		if err != nil {
			return nil, err
		}
		return HaveExpr{Obj: obj, Item: item}, nil
	case "contain":
		obj, item, err := decodeObjItem(data)
		if err != nil {
			return nil, err
		}
		return ContainExpr{Obj: obj, Item: item}, nil
	case "contain_all":
		var w struct {
			Obj   json.RawMessage   `json:"obj"`
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		items, err := decodeExprs(w.Items)
		if err != nil {
			return nil, err
		}
		return ContainAllExpr{Obj: obj, Items: items}, nil
	case "index_of":
		obj, item, err := decodeObjItem(data)
		if err != nil {
			return nil, err
		}
		return IndexOfExpr{Obj: obj, Item: item}, nil
	case "array_get":
		obj, ref, err := decodeObjReference(data)
		if err != nil {
			return nil, err
		}
		return ArrayGetExpr{Obj: obj, Reference: ref}, nil
	case "filter":
		obj, ref, err := decodeObjReference(data)
		if err != nil {
			return nil, err
		}
		return FilterExpr{Obj: obj, Reference: ref}, nil
	case "call":
		var w struct {
			Name string            `json:"name"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return CallExpr{Name: w.Name, Args: args}, nil
	case "call_named":
		var w struct {
			Name string          `json:"name"`
			Args []wireFieldInit `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		args, err := resolveFieldInits(w.Args)
		if err != nil {
			return nil, err
		}
		return CallNamedExpr{Name: w.Name, Args: args}, nil
	case "func_addr":
		var w struct {
			Name string `json:"name"`
		}
		json.Unmarshal(data, &w)
		return FuncAddrExpr{Name: w.Name}, nil
	case "binop":
		var w struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		l, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return BinOpExpr{Op: w.Op, Left: l, Right: r}, nil
	case "unop":
		var w struct {
			Op    string          `json:"op"`
			Inner json.RawMessage `json:"inner"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		inner, err := decodeExpr(w.Inner)
		if err != nil {
			return nil, err
		}
		return UnOpExpr{Op: w.Op, Inner: inner}, nil
	case "tuple":
		var w struct {
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		els, err := decodeExprs(w.Elements)
		if err != nil {
			return nil, err
		}
		return TupleExpr{Elements: els}, nil
	case "array":
		var w struct {
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		els, err := decodeExprs(w.Elements)
		if err != nil {
			return nil, err
		}
		return ArrayExpr{Elements: els}, nil
	case "index":
		var w struct {
			Obj     json.RawMessage   `json:"obj"`
			Indices []json.RawMessage `json:"indices"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		indices, err := decodeExprs(w.Indices)
		if err != nil {
			return nil, err
		}
		return IndexExpr{Obj: obj, Indices: indices}, nil
	case "tuple_access":
		var w struct {
			Obj   json.RawMessage `json:"obj"`
			Index int             `json:"index"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		return TupleAccessExpr{Obj: obj, Index: w.Index}, nil
	case "member_access":
		var w struct {
			Obj   json.RawMessage `json:"obj"`
			Field string          `json:"field"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		return MemberAccessExpr{Obj: obj, Field: w.Field}, nil
	case "method_call":
		var w struct {
			Obj    json.RawMessage   `json:"obj"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return MethodCallExpr{Obj: obj, Method: w.Method, Args: args}, nil
	case "method_call_named":
		var w struct {
			Obj    json.RawMessage `json:"obj"`
			Method string          `json:"method"`
			Args   []wireFieldInit `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		args, err := resolveFieldInits(w.Args)
		if err != nil {
			return nil, err
		}
		return MethodCallNamedExpr{Obj: obj, Method: w.Method, Args: args}, nil
	case "static_method_call":
		var w struct {
			Struct string            `json:"struct"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return StaticMethodCallExpr{Struct: w.Struct, Method: w.Method, Args: args}, nil
	case "static_method_call_named":
		var w struct {
			Struct string          `json:"struct"`
			Method string          `json:"method"`
			Args   []wireFieldInit `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		args, err := resolveFieldInits(w.Args)
		if err != nil {
			return nil, err
		}
		return StaticMethodCallNamedExpr{Struct: w.Struct, Method: w.Method, Args: args}, nil
	case "module_access":
		var w struct {
			Module string `json:"module"`
			Name   string `json:"name"`
		}
		json.Unmarshal(data, &w)
		return ModuleAccessExpr{Module: w.Module, Name: w.Name}, nil
	case "module_call":
		var w struct {
			Module string            `json:"module"`
			Func   string            `json:"func"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return ModuleCallExpr{Module: w.Module, Func: w.Func, Args: args}, nil
	case "module_call_named":
		var w struct {
			Module string          `json:"module"`
			Func   string          `json:"func"`
			Args   []wireFieldInit `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		args, err := resolveFieldInits(w.Args)
		if err != nil {
			return nil, err
		}
		return ModuleCallNamedExpr{Module: w.Module, Func: w.Func, Args: args}, nil
	case "struct_init":
		var w struct {
			Struct string          `json:"struct"`
			Fields []wireFieldInit `json:"fields"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		fields, err := resolveFieldInits(w.Fields)
		if err != nil {
			return nil, err
		}
		return StructInitExpr{Struct: w.Struct, Fields: fields}, nil
	case "cast":
		var w struct {
			Inner  json.RawMessage `json:"inner"`
			Target wireType        `json:"target"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		inner, err := decodeExpr(w.Inner)
		if err != nil {
			return nil, err
		}
		target, err := w.Target.decode()
		if err != nil {
			return nil, err
		}
		return CastExpr{Inner: inner, Target: target}, nil
	case "reference_to":
		var w struct {
			Target wireType `json:"target"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		target, err := w.Target.decode()
		if err != nil {
			return nil, err
		}
		return ReferenceToExpr{Target: target}, nil
	case "pipe":
		var w struct {
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		l, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return PipeExpr{Left: l, Right: r}, nil
	case "size_of":
		var w struct {
			Target wireType `json:"target"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		target, err := w.Target.decode()
		if err != nil {
			return nil, err
		}
		return SizeOfExpr{Target: target}, nil
	case "align_of":
		var w struct {
			Target wireType `json:"target"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		target, err := w.Target.decode()
		if err != nil {
			return nil, err
		}
		return AlignOfExpr{Target: target}, nil
	case "type_of":
		inner, err := decodeInner(data)
		if err != nil {
			return nil, err
		}
		return TypeOfExpr{Inner: inner}, nil
	case "offset_of":
		var w struct {
			StructType string `json:"struct_type"`
			Field      string `json:"field"`
		}
		json.Unmarshal(data, &w)
		return OffsetOfExpr{StructType: w.StructType, Field: w.Field}, nil
	case "one_of":
		var w struct {
			Options []json.RawMessage `json:"options"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		opts, err := decodeExprs(w.Options)
		if err != nil {
			return nil, err
		}
		return OneOfExpr{Options: opts}, nil
	case "array_method":
		var w struct {
			Obj    json.RawMessage   `json:"obj"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return ArrayMethodExpr{Obj: obj, Method: w.Method, Args: args}, nil
	case "option_method":
		var w struct {
			Obj    json.RawMessage   `json:"obj"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return OptionMethodExpr{Obj: obj, Method: w.Method, Args: args}, nil
	case "type":
		var w struct {
			Type wireType `json:"type"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		t, err := w.Type.decode()
		if err != nil {
			return nil, err
		}
		return TypeExpr{Type: t}, nil
	default:
		return nil, fmt.Errorf("decode expression: unknown kind %q", head.Kind)
	}
}

func decodeInner(data json.RawMessage) (Expr, error) {
	var w struct {
		Inner json.RawMessage `json:"inner"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return decodeExpr(w.Inner)
}

func decodeObjItem(data json.RawMessage) (Expr, Expr, error) {
	var w struct {
		Obj  json.RawMessage `json:"obj"`
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, nil, err
	}
	obj, err := decodeExpr(w.Obj)
	if err != nil {
		return nil, nil, err
	}
	item, err := decodeExpr(w.Item)
	if err != nil {
		return nil, nil, err
	}
	return obj, item, nil
}

func decodeObjReference(data json.RawMessage) (Expr, Expr, error) {
	var w struct {
		Obj       json.RawMessage `json:"obj"`
		Reference json.RawMessage `json:"reference"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, nil, err
	}
	obj, err := decodeExpr(w.Obj)
	if err != nil {
		return nil, nil, err
	}
	ref, err := decodeExpr(w.Reference)
	if err != nil {
		return nil, nil, err
	}
	return obj, ref, nil
}
