// Package vixtypes implements the Vix type model: the closed set of types a
// program can be built from, and the four operations the rest of the
// compiler drives off them — the emitted C spelling, bit size, alignment,
// and a canonical structural name used to key memoized compound
// definitions.
package vixtypes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bahimpro2011-code/vixc/internal/target"
)

// Type is implemented by every concrete Vix type. IsType is a marker method
// (no behavior) so arbitrary structs can't accidentally satisfy the
// interface by coincidence.
type Type interface {
	IsType()
	CType(t target.Descriptor) string
	SizeBits(t target.Descriptor) int
	Alignment(t target.Descriptor) int
	StructuralName() string
}

// Sanitize collapses runs of non-alphanumeric characters in name to a single
// underscore and trims leading/trailing underscores, matching the synthesized
// identifiers the registry uses for compound type names.
func Sanitize(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if isAlnum(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ---- primitives ----

type Int struct {
	Bits   int
	Signed bool
}

func (Int) IsType() {}
func (t Int) CType(target.Descriptor) string {
	switch [2]int{t.Bits, boolInt(t.Signed)} {
	case [2]int{8, 1}:
		return "int8_t"
	case [2]int{16, 1}:
		return "int16_t"
	case [2]int{32, 1}:
		return "int32_t"
	case [2]int{64, 1}:
		return "int64_t"
	case [2]int{128, 1}:
		return "__int128"
	case [2]int{8, 0}:
		return "uint8_t"
	case [2]int{16, 0}:
		return "uint16_t"
	case [2]int{32, 0}:
		return "uint32_t"
	case [2]int{64, 0}:
		return "uint64_t"
	case [2]int{128, 0}:
		return "unsigned __int128"
	}
	if t.Signed {
		return "int" + strconv.Itoa(t.Bits) + "_t"
	}
	return "uint" + strconv.Itoa(t.Bits) + "_t"
}
func (t Int) SizeBits(target.Descriptor) int   { return t.Bits }
func (t Int) Alignment(d target.Descriptor) int { return d.AlignmentForBits(t.Bits) }
func (t Int) StructuralName() string {
	if t.Signed {
		return "int" + strconv.Itoa(t.Bits)
	}
	return "uint" + strconv.Itoa(t.Bits)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Convenience constructors matching the original's Type::i32()/u8()/etc.
func I8() Int  { return Int{8, true} }
func I16() Int { return Int{16, true} }
func I32() Int { return Int{32, true} }
func I64() Int { return Int{64, true} }
func U8() Int  { return Int{8, false} }
func U16() Int { return Int{16, false} }
func U32() Int { return Int{32, false} }
func U64() Int { return Int{64, false} }

type Float struct{ Bits int }

func (Float) IsType() {}
func (t Float) CType(target.Descriptor) string {
	switch t.Bits {
	case 32:
		return "float"
	case 64:
		return "double"
	case 128:
		return "long double"
	default:
		return fmt.Sprintf("_Float%d", t.Bits)
	}
}
func (t Float) SizeBits(target.Descriptor) int    { return t.Bits }
func (t Float) Alignment(d target.Descriptor) int { return d.AlignmentForBits(t.Bits) }
func (t Float) StructuralName() string            { return "float" + strconv.Itoa(t.Bits) }

func F32() Float { return Float{32} }
func F64() Float { return Float{64} }

type Char struct {
	Bits   int
	Signed bool
}

func (Char) IsType() {}
func (t Char) CType(target.Descriptor) string {
	switch t.Bits {
	case 8:
		return "char"
	case 32:
		return "uint32_t"
	default:
		return fmt.Sprintf("uint%d_t", t.Bits)
	}
}
func (t Char) SizeBits(target.Descriptor) int    { return t.Bits }
func (t Char) Alignment(d target.Descriptor) int { return d.AlignmentForBits(t.Bits) }
func (t Char) StructuralName() string {
	switch t.Bits {
	case 8:
		return "char"
	case 32:
		return "char32"
	default:
		return "char" + strconv.Itoa(t.Bits)
	}
}

func Char8() Char  { return Char{8, true} }
func Char32() Char { return Char{32, false} }

type Bool struct{}

func (Bool) IsType()                              {}
func (Bool) CType(target.Descriptor) string       { return "bool" }
func (Bool) SizeBits(target.Descriptor) int       { return 8 }
func (Bool) Alignment(target.Descriptor) int      { return 1 }
func (Bool) StructuralName() string               { return "bool" }

type Void struct{}

func (Void) IsType()                         {}
func (Void) CType(target.Descriptor) string  { return "void" }
func (Void) SizeBits(target.Descriptor) int  { return 0 }
func (Void) Alignment(target.Descriptor) int { return 1 }
func (Void) StructuralName() string          { return "void" }

// SelfType stands for the enclosing impl block's receiver type before
// monomorphization resolves it to a concrete struct. Its fixed size (10
// bits) and alignment are inherited unchanged from the original compiler,
// which never resolves SelfType before emission of a handful of diagnostic
// paths — see DESIGN.md.
type SelfType struct{}

func (SelfType) IsType()                         {}
func (SelfType) CType(target.Descriptor) string  { return "Self" }
func (SelfType) SizeBits(target.Descriptor) int  { return 10 }
func (SelfType) Alignment(target.Descriptor) int { return 10 }
func (SelfType) StructuralName() string          { return "Self" }

type Any struct{}

func (Any) IsType()                              {}
func (Any) CType(target.Descriptor) string        { return "void*" }
func (t Any) SizeBits(d target.Descriptor) int    { return d.PointerBits }
func (t Any) Alignment(d target.Descriptor) int   { return d.PointerAlign }
func (Any) StructuralName() string                { return "any" }

type Trait struct{}

func (Trait) IsType()                            {}
func (Trait) CType(target.Descriptor) string      { return "void*" }
func (t Trait) SizeBits(d target.Descriptor) int  { return d.PointerBits }
func (t Trait) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (Trait) StructuralName() string              { return "trait" }

type Variadic struct{}

func (Variadic) IsType()                         {}
func (Variadic) CType(target.Descriptor) string  { return "..." }
func (Variadic) SizeBits(target.Descriptor) int  { return 0 }
func (Variadic) Alignment(target.Descriptor) int { return 1 }
func (Variadic) StructuralName() string          { return "..." }

type TripleDot struct{}

func (TripleDot) IsType()                         {}
func (TripleDot) CType(target.Descriptor) string  { return "..." }
func (TripleDot) SizeBits(target.Descriptor) int  { return 0 }
func (TripleDot) Alignment(target.Descriptor) int { return 1 }
func (TripleDot) StructuralName() string          { return "..." }

// ---- strings ----

// ConstStr is a C string literal's type ("const char*" at emission).
type ConstStr struct{}

func (ConstStr) IsType()                             {}
func (ConstStr) CType(target.Descriptor) string       { return "const char*" }
func (t ConstStr) SizeBits(d target.Descriptor) int   { return d.PointerBits }
func (t ConstStr) Alignment(d target.Descriptor) int  { return d.PointerAlign }
func (ConstStr) StructuralName() string               { return "const str" }

// Str is the owned, length-tracked string type, emitted as the runtime
// String{ptr,len} struct.
type Str struct{ LenType Type }

func (Str) IsType()                        {}
func (Str) CType(target.Descriptor) string { return "String" }
func (t Str) SizeBits(d target.Descriptor) int {
	return d.PointerBits + t.LenType.SizeBits(d)
}
func (t Str) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (Str) StructuralName() string              { return "str" }

// StrSlice is a borrowed, non-owning view over character data: a pointer
// plus an explicit length, spelled as an anonymous C struct.
type StrSlice struct {
	CharType   Type
	LengthType Type
}

func (StrSlice) IsType() {}
func (t StrSlice) CType(d target.Descriptor) string {
	return fmt.Sprintf("struct { %s* ptr; %s len; }", t.CharType.CType(d), t.LengthType.CType(d))
}
func (t StrSlice) SizeBits(d target.Descriptor) int {
	return d.PointerBits + t.LengthType.SizeBits(d)
}
func (t StrSlice) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (StrSlice) StructuralName() string              { return "str" }

// ---- pointer family ----

type Ptr struct{ Inner Type }

func (Ptr) IsType()                        {}
func (t Ptr) CType(d target.Descriptor) string { return t.Inner.CType(d) + "*" }
func (t Ptr) SizeBits(d target.Descriptor) int { return d.PointerBits }
func (t Ptr) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (t Ptr) StructuralName() string           { return "*" + t.Inner.StructuralName() }

type RawPtr struct{ Inner Type }

func (RawPtr) IsType()                            {}
func (t RawPtr) CType(d target.Descriptor) string  { return t.Inner.CType(d) + "*" }
func (t RawPtr) SizeBits(d target.Descriptor) int  { return d.PointerBits }
func (t RawPtr) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (t RawPtr) StructuralName() string            { return "^" + t.Inner.StructuralName() }

type Owned struct{ Inner Type }

func (Owned) IsType()                            {}
func (t Owned) CType(d target.Descriptor) string  { return t.Inner.CType(d) + "*" }
func (t Owned) SizeBits(d target.Descriptor) int  { return d.PointerBits }
func (t Owned) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (t Owned) StructuralName() string            { return "~" + t.Inner.StructuralName() }

type Ref struct{ Inner Type }

func (Ref) IsType()                            {}
func (t Ref) CType(d target.Descriptor) string  { return t.Inner.CType(d) + "*" }
func (t Ref) SizeBits(d target.Descriptor) int  { return d.PointerBits }
func (t Ref) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (t Ref) StructuralName() string            { return "&" + t.Inner.StructuralName() }

type MutRef struct{ Inner Type }

func (MutRef) IsType()                            {}
func (t MutRef) CType(d target.Descriptor) string  { return t.Inner.CType(d) + "*" }
func (t MutRef) SizeBits(d target.Descriptor) int  { return d.PointerBits }
func (t MutRef) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (t MutRef) StructuralName() string            { return "&mut " + t.Inner.StructuralName() }

// ---- const qualifier ----

type Const struct{ Inner Type }

func (Const) IsType()                       {}
func (t Const) CType(d target.Descriptor) string { return "const " + t.Inner.CType(d) }
func (t Const) SizeBits(d target.Descriptor) int { return t.Inner.SizeBits(d) }
func (t Const) Alignment(d target.Descriptor) int { return t.Inner.Alignment(d) }
func (t Const) StructuralName() string           { return "const " + t.Inner.StructuralName() }

// Unwrap strips a Const wrapper, returning t unchanged if it isn't one.
func Unwrap(t Type) Type {
	if c, ok := t.(Const); ok {
		return c.Inner
	}
	return t
}

// MakeConst wraps t in a Const qualifier.
func MakeConst(t Type) Type { return Const{t} }

// ---- structs / arrays / tuples ----

type Struct struct{ Name string }

func (Struct) IsType()                          {}
func (t Struct) CType(target.Descriptor) string  { return t.Name }
func (t Struct) SizeBits(d target.Descriptor) int { return d.PointerBits }
func (t Struct) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (t Struct) StructuralName() string          { return t.Name }

// Array is a fixed-size array when Size != nil, or an unsized
// pointer+length view otherwise.
type Array struct {
	Element Type
	Size    *int
}

func (Array) IsType() {}
func (t Array) CType(d target.Descriptor) string {
	if t.Size != nil {
		return t.Element.CType(d)
	}
	return fmt.Sprintf("struct { %s* ptr; size_t len; }", t.Element.CType(d))
}
func (t Array) SizeBits(d target.Descriptor) int {
	if t.Size != nil {
		return t.Element.SizeBits(d) * *t.Size
	}
	return d.PointerBits + d.PointerBits
}
func (t Array) Alignment(d target.Descriptor) int { return t.Element.Alignment(d) }
func (t Array) StructuralName() string {
	if t.Size != nil {
		return fmt.Sprintf("%s[%d]", t.Element.StructuralName(), *t.Size)
	}
	return t.Element.StructuralName() + "[]"
}

type MultiArray struct {
	Element    Type
	Dimensions []int
}

func (MultiArray) IsType() {}
func (t MultiArray) CType(d target.Descriptor) string { return t.Element.CType(d) }
func (t MultiArray) SizeBits(d target.Descriptor) int {
	total := 1
	for _, dim := range t.Dimensions {
		total *= dim
	}
	return t.Element.SizeBits(d) * total
}
func (t MultiArray) Alignment(d target.Descriptor) int { return t.Element.Alignment(d) }
func (t MultiArray) StructuralName() string {
	var dims strings.Builder
	for _, d := range t.Dimensions {
		fmt.Fprintf(&dims, "[%d]", d)
	}
	return t.Element.StructuralName() + dims.String()
}

type Tuple struct{ Fields []Type }

func (Tuple) IsType() {}
func (t Tuple) CType(target.Descriptor) string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = Sanitize(f.StructuralName())
	}
	return "Tuple_" + strings.Join(names, "_")
}
func (t Tuple) SizeBits(d target.Descriptor) int {
	total := 0
	for _, f := range t.Fields {
		total += f.SizeBits(d)
	}
	return total
}
func (t Tuple) Alignment(d target.Descriptor) int {
	max := 1
	for _, f := range t.Fields {
		if a := f.Alignment(d); a > max {
			max = a
		}
	}
	return max
}
func (t Tuple) StructuralName() string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.StructuralName()
	}
	return "(" + strings.Join(names, ", ") + ")"
}

type Union struct{ Variants []Type }

func (Union) IsType() {}
func (t Union) CType(target.Descriptor) string {
	names := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		names[i] = Sanitize(v.StructuralName())
	}
	return "Union_" + strings.Join(names, "_")
}
func (t Union) SizeBits(d target.Descriptor) int {
	tagBits := d.TagBitsForVariants(len(t.Variants))
	max := 0
	for _, v := range t.Variants {
		if b := v.SizeBits(d); b > max {
			max = b
		}
	}
	return tagBits + max
}
func (t Union) Alignment(d target.Descriptor) int {
	max := 1
	for _, v := range t.Variants {
		if a := v.Alignment(d); a > max {
			max = a
		}
	}
	return max
}
func (t Union) StructuralName() string {
	names := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		names[i] = v.StructuralName()
	}
	return "(" + strings.Join(names, " | ") + ")"
}

// Intersection represents a type satisfying every listed type (used for
// trait-bound parameters); it carries the first type's representation.
type Intersection struct{ Types []Type }

func (Intersection) IsType() {}
func (t Intersection) CType(d target.Descriptor) string {
	if len(t.Types) == 0 {
		return "void"
	}
	return t.Types[0].CType(d)
}
func (t Intersection) SizeBits(d target.Descriptor) int {
	max := 0
	for _, ty := range t.Types {
		if b := ty.SizeBits(d); b > max {
			max = b
		}
	}
	return max
}
func (t Intersection) Alignment(d target.Descriptor) int {
	max := 1
	for _, ty := range t.Types {
		if a := ty.Alignment(d); a > max {
			max = a
		}
	}
	return max
}
func (t Intersection) StructuralName() string {
	names := make([]string, len(t.Types))
	for i, ty := range t.Types {
		names[i] = ty.StructuralName()
	}
	return "(" + strings.Join(names, " & ") + ")"
}

// ---- option / result ----

type Option struct{ Inner Type }

func (Option) IsType() {}
func (t Option) CType(target.Descriptor) string {
	return "Option_" + Sanitize(t.Inner.StructuralName())
}
func (t Option) SizeBits(d target.Descriptor) int  { return 8 + t.Inner.SizeBits(d) }
func (t Option) Alignment(d target.Descriptor) int {
	if a := t.Inner.Alignment(d); a > 1 {
		return a
	}
	return 1
}
func (t Option) StructuralName() string { return "Option<" + t.Inner.StructuralName() + ">" }

type Result struct{ Ok, Err Type }

func (Result) IsType() {}
func (t Result) CType(target.Descriptor) string {
	return fmt.Sprintf("Result_%s_%s", Sanitize(t.Ok.StructuralName()), Sanitize(t.Err.StructuralName()))
}
func (t Result) SizeBits(d target.Descriptor) int {
	ok, err := t.Ok.SizeBits(d), t.Err.SizeBits(d)
	if ok > err {
		return 8 + ok
	}
	return 8 + err
}
func (t Result) Alignment(d target.Descriptor) int {
	a := t.Ok.Alignment(d)
	if a < 1 {
		a = 1
	}
	return a
}
func (t Result) StructuralName() string {
	return fmt.Sprintf("Result<%s, %s>", t.Ok.StructuralName(), t.Err.StructuralName())
}

// ---- function pointers ----

type FnPtr struct {
	Params     []Type
	ReturnType Type
}

func (FnPtr) IsType() {}
func (t FnPtr) CType(d target.Descriptor) string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.CType(d)
	}
	return fmt.Sprintf("%s (*)(%s)", t.ReturnType.CType(d), strings.Join(params, ", "))
}
func (t FnPtr) SizeBits(d target.Descriptor) int  { return d.PointerBits }
func (t FnPtr) Alignment(d target.Descriptor) int { return d.PointerAlign }
func (t FnPtr) StructuralName() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.StructuralName()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), t.ReturnType.StructuralName())
}

// IsPtrLike reports whether t is one of the reference-family types that
// compile to a bare C pointer (Ptr/RawPtr/Owned/Ref/MutRef).
func IsPtrLike(t Type) bool {
	switch t.(type) {
	case Ptr, RawPtr, Owned, Ref, MutRef:
		return true
	default:
		return false
	}
}

// IsVoid reports whether t (after stripping any Const wrapper) is Void.
func IsVoid(t Type) bool {
	_, ok := Unwrap(t).(Void)
	return ok
}
