// Package ir implements the three-section IR buffer the emitter assembles a
// translation unit into: headers, forward declarations, and function
// bodies, concatenated in that order at Finalize time.
package ir

import "strings"

// standardIncludes are the fixed C headers every generated translation unit
// needs regardless of what the source program uses, grounded on
// Codegen::new's header seeding in the original compiler.
var standardIncludes = []string{
	"stdio.h", "stdlib.h", "stdint.h", "stdbool.h", "string.h", "time.h",
}

// Buffer accumulates the three text sections of a generated C file.
type Buffer struct {
	Headers      strings.Builder
	ForwardDecls strings.Builder
	Functions    strings.Builder

	seenForwardDecls map[string]bool
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{seenForwardDecls: make(map[string]bool)}
}

// AddForwardDecl appends a forward declaration or type definition, skipping
// it if byte-identical text was already added (the registry's own
// memoization already prevents most duplicates; this is a second line of
// defense for text assembled outside the registry, e.g. struct/enum defs).
func (b *Buffer) AddForwardDecl(text string) {
	if b.seenForwardDecls[text] {
		return
	}
	b.seenForwardDecls[text] = true
	b.ForwardDecls.WriteString(text)
}

// Finalize concatenates the three sections into a complete C source file.
func (b *Buffer) Finalize() string {
	var out strings.Builder
	for _, h := range standardIncludes {
		out.WriteString("#include <")
		out.WriteString(h)
		out.WriteString(">\n")
	}
	out.WriteString("\n")
	out.WriteString(b.Headers.String())
	out.WriteString("\n")
	out.WriteString(b.ForwardDecls.String())
	out.WriteString("\n")
	out.WriteString(b.Functions.String())
	return out.String()
}
