package driver_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/driver"
	"github.com/stretchr/testify/assert"
)

func TestFromStringRecognizesAliases(t *testing.T) {
	cases := map[string]driver.TargetOS{
		"windows": driver.Windows,
		"win":      driver.Windows,
		"linux":    driver.Linux,
		"macos":    driver.MacOS,
		"mac":      driver.MacOS,
		"darwin":   driver.MacOS,
		"freebsd":  driver.FreeBSD,
	}
	for input, want := range cases {
		got, ok := driver.FromString(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
}

func TestFromStringRejectsUnknown(t *testing.T) {
	_, ok := driver.FromString("amiga")
	assert.False(t, ok)
}

func TestNewDefaultsToClang(t *testing.T) {
	d := driver.New("")
	assert.Equal(t, "clang", d.CC)
	d2 := driver.New("zig cc")
	assert.Equal(t, "zig cc", d2.CC)
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "Windows", driver.Windows.String())
	assert.Equal(t, "macOS", driver.MacOS.String())
	assert.Equal(t, "FreeBSD", driver.FreeBSD.String())
	assert.Equal(t, "Linux", driver.Linux.String())
}
