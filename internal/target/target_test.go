package target_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/target"
	"github.com/stretchr/testify/assert"
)

func TestPresets(t *testing.T) {
	x64 := target.X86_64()
	assert.Equal(t, 64, x64.PointerBits)
	assert.Equal(t, "x86_64", x64.Name)

	x86 := target.X86()
	assert.Equal(t, 32, x86.PointerBits)
	assert.Equal(t, 32, x86.LongBits)

	arm := target.ARM64()
	assert.Equal(t, "aarch64", arm.Name)
	assert.Equal(t, 64, arm.LongBits)
}

func TestByNameDefaultsToX86_64(t *testing.T) {
	assert.Equal(t, target.X86_64(), target.ByName("bogus"))
	assert.Equal(t, target.X86(), target.ByName("x86"))
	assert.Equal(t, target.ARM64(), target.ByName("arm64"))
}

func TestAlignmentForBits(t *testing.T) {
	d := target.X86_64()
	cases := []struct {
		bits int
		want int
	}{
		{0, 1}, {1, 1}, {8, 1},
		{9, 2}, {16, 2},
		{17, 4}, {32, 4},
		{33, 8}, {64, 8},
		{65, 16}, {128, 16},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, d.AlignmentForBits(c.bits), "bits=%d", c.bits)
	}
}

func TestTagBitsForVariants(t *testing.T) {
	d := target.X86_64()
	assert.Equal(t, 8, d.TagBitsForVariants(0))
	assert.Equal(t, 8, d.TagBitsForVariants(256))
	assert.Equal(t, 16, d.TagBitsForVariants(257))
	assert.Equal(t, 16, d.TagBitsForVariants(65536))
	assert.Equal(t, 32, d.TagBitsForVariants(65537))
}
