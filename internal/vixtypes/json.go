package vixtypes

import (
	"encoding/json"
	"fmt"
)

// wireType is the on-the-wire shape of a Type in an AST JSON fixture: a
// "kind" discriminator plus whichever fields that kind needs. This is the
// adapter's input format, not vixtypes' own serialization of itself —
// there is no MarshalJSON here, only decoding.
type wireType struct {
	Kind       string      `json:"kind"`
	Bits       int         `json:"bits"`
	Signed     *bool       `json:"signed"`
	Name       string      `json:"name"`
	Inner      *wireType   `json:"inner"`
	Element    *wireType   `json:"element"`
	Size       *int        `json:"size"`
	Dimensions []int       `json:"dimensions"`
	Fields     []wireType  `json:"fields"`
	Variants   []wireType  `json:"variants"`
	Types      []wireType  `json:"types"`
	Ok         *wireType   `json:"ok"`
	Err        *wireType   `json:"err"`
	Params     []wireType  `json:"params"`
	ReturnType *wireType   `json:"return_type"`
	CharType   *wireType   `json:"char_type"`
	LengthType *wireType   `json:"length_type"`
	LenType    *wireType   `json:"len_type"`
}

// DecodeJSON parses a single type node from its JSON fixture form.
func DecodeJSON(data []byte) (Type, error) {
	var w wireType
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w.resolve()
}

// UnmarshalJSON lets a wireType itself be used as a nested json.Unmarshaler
// target; callers decoding a containing struct with a `vixtypes.Type` field
// should instead route through a *json.RawMessage and DecodeJSON, since Type
// is an interface with no zero value to unmarshal into directly.
func (w *wireType) UnmarshalJSON(data []byte) error {
	type alias wireType
	return json.Unmarshal(data, (*alias)(w))
}

func (w wireType) resolve() (Type, error) {
	signed := true
	if w.Signed != nil {
		signed = *w.Signed
	}
	switch w.Kind {
	case "int":
		return Int{Bits: w.Bits, Signed: signed}, nil
	case "float":
		return Float{Bits: w.Bits}, nil
	case "char":
		return Char{Bits: w.Bits, Signed: signed}, nil
	case "bool":
		return Bool{}, nil
	case "void":
		return Void{}, nil
	case "self":
		return SelfType{}, nil
	case "any":
		return Any{}, nil
	case "trait":
		return Trait{}, nil
	case "variadic":
		return Variadic{}, nil
	case "tripledot":
		return TripleDot{}, nil
	case "const_str":
		return ConstStr{}, nil
	case "str":
		lt, err := w.LenType.orDefault(U64())
		if err != nil {
			return nil, err
		}
		return Str{LenType: lt}, nil
	case "str_slice":
		ct, err := w.CharType.orDefault(Char8())
		if err != nil {
			return nil, err
		}
		lt, err := w.LengthType.orDefault(U64())
		if err != nil {
			return nil, err
		}
		return StrSlice{CharType: ct, LengthType: lt}, nil
	case "ptr":
		inner, err := w.Inner.required("ptr")
		if err != nil {
			return nil, err
		}
		return Ptr{Inner: inner}, nil
	case "raw_ptr":
		inner, err := w.Inner.required("raw_ptr")
		if err != nil {
			return nil, err
		}
		return RawPtr{Inner: inner}, nil
	case "owned":
		inner, err := w.Inner.required("owned")
		if err != nil {
			return nil, err
		}
		return Owned{Inner: inner}, nil
	case "ref":
		inner, err := w.Inner.required("ref")
		if err != nil {
			return nil, err
		}
		return Ref{Inner: inner}, nil
	case "mut_ref":
		inner, err := w.Inner.required("mut_ref")
		if err != nil {
			return nil, err
		}
		return MutRef{Inner: inner}, nil
	case "const":
		inner, err := w.Inner.required("const")
		if err != nil {
			return nil, err
		}
		return Const{Inner: inner}, nil
	case "struct":
		return Struct{Name: w.Name}, nil
	case "array":
		elem, err := w.Element.required("array")
		if err != nil {
			return nil, err
		}
		return Array{Element: elem, Size: w.Size}, nil
	case "multi_array":
		elem, err := w.Element.required("multi_array")
		if err != nil {
			return nil, err
		}
		return MultiArray{Element: elem, Dimensions: w.Dimensions}, nil
	case "tuple":
		fields, err := resolveAll(w.Fields)
		if err != nil {
			return nil, err
		}
		return Tuple{Fields: fields}, nil
	case "union":
		variants, err := resolveAll(w.Variants)
		if err != nil {
			return nil, err
		}
		return Union{Variants: variants}, nil
	case "intersection":
		types, err := resolveAll(w.Types)
		if err != nil {
			return nil, err
		}
		return Intersection{Types: types}, nil
	case "option":
		inner, err := w.Inner.required("option")
		if err != nil {
			return nil, err
		}
		return Option{Inner: inner}, nil
	case "result":
		ok, err := w.Ok.required("result.ok")
		if err != nil {
			return nil, err
		}
		errT, err := w.Err.required("result.err")
		if err != nil {
			return nil, err
		}
		return Result{Ok: ok, Err: errT}, nil
	case "fn_ptr":
		params, err := resolveAll(w.Params)
		if err != nil {
			return nil, err
		}
		ret, err := w.ReturnType.orDefault(Void{})
		if err != nil {
			return nil, err
		}
		return FnPtr{Params: params, ReturnType: ret}, nil
	default:
		return nil, fmt.Errorf("vixtypes: unknown type kind %q", w.Kind)
	}
}

func (w *wireType) required(ctx string) (Type, error) {
	if w == nil {
		return nil, fmt.Errorf("vixtypes: %s requires an inner type", ctx)
	}
	return w.resolve()
}

func (w *wireType) orDefault(def Type) (Type, error) {
	if w == nil {
		return def, nil
	}
	return w.resolve()
}

func resolveAll(ws []wireType) ([]Type, error) {
	out := make([]Type, len(ws))
	for i, w := range ws {
		t, err := w.resolve()
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
