package vixtypes_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/target"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
	"github.com/stretchr/testify/assert"
)

var x64 = target.X86_64()

func TestPrimitiveCTypes(t *testing.T) {
	assert.Equal(t, "int32_t", vixtypes.I32().CType(x64))
	assert.Equal(t, "uint8_t", vixtypes.U8().CType(x64))
	assert.Equal(t, "__int128", vixtypes.Int{128, true}.CType(x64))
	assert.Equal(t, "double", vixtypes.F64().CType(x64))
	assert.Equal(t, "char", vixtypes.Char8().CType(x64))
	assert.Equal(t, "uint32_t", vixtypes.Char32().CType(x64))
	assert.Equal(t, "bool", vixtypes.Bool{}.CType(x64))
	assert.Equal(t, "void", vixtypes.Void{}.CType(x64))
}

func TestPointerFamilyCTypeIsAlwaysBareStar(t *testing.T) {
	inner := vixtypes.I32()
	assert.Equal(t, "int32_t*", vixtypes.Ptr{inner}.CType(x64))
	assert.Equal(t, "int32_t*", vixtypes.RawPtr{inner}.CType(x64))
	assert.Equal(t, "int32_t*", vixtypes.Owned{inner}.CType(x64))
	assert.Equal(t, "int32_t*", vixtypes.Ref{inner}.CType(x64))
	assert.Equal(t, "int32_t*", vixtypes.MutRef{inner}.CType(x64))
}

func TestStructuralNameInjectivity(t *testing.T) {
	// Distinct types must never collapse to the same structural name, since
	// the registry keys memoized compound definitions off it.
	a := vixtypes.Option{vixtypes.I32()}
	b := vixtypes.Option{vixtypes.I64()}
	assert.NotEqual(t, a.StructuralName(), b.StructuralName())

	c := vixtypes.Result{vixtypes.I32(), vixtypes.Bool{}}
	d := vixtypes.Result{vixtypes.Bool{}, vixtypes.I32()}
	assert.NotEqual(t, c.StructuralName(), d.StructuralName())
}

func TestSizeBitsLaws(t *testing.T) {
	// Array(T, n).SizeBits == n * T.SizeBits
	n := 4
	arr := vixtypes.Array{Element: vixtypes.I32(), Size: &n}
	assert.Equal(t, 128, arr.SizeBits(x64))

	// Option<T>.SizeBits == 8 + T.SizeBits
	opt := vixtypes.Option{vixtypes.I32()}
	assert.Equal(t, 8+32, opt.SizeBits(x64))

	// Result<Ok,Err>.SizeBits == 8 + max(Ok,Err)
	res := vixtypes.Result{vixtypes.I64(), vixtypes.Bool{}}
	assert.Equal(t, 8+64, res.SizeBits(x64))

	// Tuple.SizeBits is the sum of its fields.
	tup := vixtypes.Tuple{Fields: []vixtypes.Type{vixtypes.I32(), vixtypes.I64()}}
	assert.Equal(t, 96, tup.SizeBits(x64))

	// Union.SizeBits == tag_bits + max(variants)
	u := vixtypes.Union{Variants: []vixtypes.Type{vixtypes.I32(), vixtypes.I64()}}
	assert.Equal(t, 8+64, u.SizeBits(x64))
}

func TestSelfTypeFixedSize(t *testing.T) {
	var s vixtypes.SelfType
	assert.Equal(t, 10, s.SizeBits(x64))
	assert.Equal(t, 10, s.Alignment(x64))
}

func TestConstUnwrapRoundTrips(t *testing.T) {
	inner := vixtypes.I32()
	wrapped := vixtypes.MakeConst(inner)
	assert.True(t, wrapped.(vixtypes.Const).Inner == inner)
	assert.Equal(t, inner, vixtypes.Unwrap(wrapped))
	assert.Equal(t, inner, vixtypes.Unwrap(inner))
}

func TestSanitizeCollapsesRunsAndTrims(t *testing.T) {
	assert.Equal(t, "Option_int32", vixtypes.Sanitize("Option<int32>"))
	assert.Equal(t, "a_b", vixtypes.Sanitize("a | b"))
	assert.Equal(t, "mut_int32", vixtypes.Sanitize("&mut int32"))
}

func TestIsVoidStripsConst(t *testing.T) {
	assert.True(t, vixtypes.IsVoid(vixtypes.Void{}))
	assert.True(t, vixtypes.IsVoid(vixtypes.MakeConst(vixtypes.Void{})))
	assert.False(t, vixtypes.IsVoid(vixtypes.I32()))
}
