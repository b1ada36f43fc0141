package registry_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/registry"
	"github.com/bahimpro2011-code/vixc/internal/target"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var x64 = target.X86_64()

func TestGenerateTypeDefinitionIsEmittedOnce(t *testing.T) {
	r := registry.New()
	opt := vixtypes.Option{Inner: vixtypes.I32()}

	def1, fresh1 := r.GenerateTypeDefinition(opt, x64)
	require.True(t, fresh1)
	assert.Contains(t, def1, "Option_int32")
	assert.Contains(t, def1, "int32_t value;")

	def2, fresh2 := r.GenerateTypeDefinition(opt, x64)
	assert.False(t, fresh2)
	assert.Empty(t, def2)
}

func TestResultVoidArmUsesBytePlaceholder(t *testing.T) {
	r := registry.New()
	res := vixtypes.Result{Ok: vixtypes.Void{}, Err: vixtypes.I32()}
	def, fresh := r.GenerateTypeDefinition(res, x64)
	require.True(t, fresh)
	assert.Contains(t, def, "uint8_t ok;")
	assert.Contains(t, def, "int32_t err;")
}

func TestUnionTagWidthFollowsVariantCount(t *testing.T) {
	r := registry.New()
	variants := make([]vixtypes.Type, 300)
	for i := range variants {
		variants[i] = vixtypes.I32()
	}
	def, fresh := r.GenerateTypeDefinition(vixtypes.Union{Variants: variants[:2]}, x64)
	require.True(t, fresh)
	assert.Contains(t, def, "uint8_t tag;")

	def2, fresh2 := r.GenerateTypeDefinition(vixtypes.Union{Variants: variants}, x64)
	require.True(t, fresh2)
	assert.Contains(t, def2, "uint16_t tag;")
}

func TestEnsureDefinedOrdersChildrenBeforeParents(t *testing.T) {
	r := registry.New()
	inner := vixtypes.Option{Inner: vixtypes.I32()}
	outer := vixtypes.Result{Ok: inner, Err: vixtypes.Bool{}}

	defs := r.EnsureDefined(outer, x64)
	require.Len(t, defs, 2)
	assert.Contains(t, defs[0], "Option_int32")
	assert.Contains(t, defs[1], "Result_")
}

func TestEnsureDefinedSkipsAlreadyEmitted(t *testing.T) {
	r := registry.New()
	ty := vixtypes.Option{Inner: vixtypes.I64()}
	first := r.EnsureDefined(ty, x64)
	require.Len(t, first, 1)

	second := r.EnsureDefined(ty, x64)
	assert.Empty(t, second)
}

func TestStructuralNameInjectivityHoldsForRegistryKeys(t *testing.T) {
	r := registry.New()
	a, _ := r.GenerateTypeDefinition(vixtypes.Tuple{Fields: []vixtypes.Type{vixtypes.I32(), vixtypes.Bool{}}}, x64)
	b, _ := r.GenerateTypeDefinition(vixtypes.Tuple{Fields: []vixtypes.Type{vixtypes.Bool{}, vixtypes.I32()}}, x64)
	assert.NotEqual(t, a, b)
}

func TestGenerateEnumDefinition(t *testing.T) {
	r := registry.New()
	r.RegisterEnum("Color", []registry.EnumVariant{
		{Name: "Red"},
		{Name: "Custom", Type: vixtypes.I32()},
	}, true)

	def, ok := r.GenerateEnumDefinition("Color", x64)
	require.True(t, ok)
	assert.Contains(t, def, "Color__Red = 0,")
	assert.Contains(t, def, "Color__Custom = 1,")
	assert.Contains(t, def, "int32_t Custom;")
}

func TestStructSizeBitsSumsFieldBytes(t *testing.T) {
	r := registry.New()
	r.RegisterStruct("Point", []registry.Field{
		{Name: "x", Type: vixtypes.I32()},
		{Name: "y", Type: vixtypes.I32()},
	})
	size, ok := r.StructSizeBits("Point", x64)
	require.True(t, ok)
	assert.Equal(t, 8, size)

	_, ok = r.StructSizeBits("Missing", x64)
	assert.False(t, ok)
}
