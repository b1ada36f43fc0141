// Package registry implements the type registry: memoized emission of C
// definitions for compound types (Option, Result, Tuple, Union), so each
// canonical type is defined at most once per translation unit no matter how
// many times it's referenced, plus lookup storage for user structs and enums
// (GenerateEnumDefinition is not memoized: each call returns the text again).
package registry

import (
	"fmt"
	"strings"

	"github.com/bahimpro2011-code/vixc/internal/target"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

// StructDefinition records a user struct's declared fields in order.
type StructDefinition struct {
	Name   string
	Fields []Field
}

// Field is a single struct or enum-variant field.
type Field struct {
	Name string
	Type vixtypes.Type
}

// EnumDefinition records a user enum's variants; a variant's Type is nil for
// a unit variant (no payload).
type EnumDefinition struct {
	Name     string
	Variants []EnumVariant
	IsPublic bool
}

// EnumVariant is one arm of an enum; Type is nil for a payload-less variant.
type EnumVariant struct {
	Name string
	Type vixtypes.Type
}

// Registry tracks which compound type definitions have already been
// emitted, keyed by the type's synthesized C identifier, plus the set of
// user-declared structs and enums available for lookup during emission.
type Registry struct {
	generated map[string]string
	structs   map[string]StructDefinition
	enums     map[string]EnumDefinition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		generated: make(map[string]string),
		structs:   make(map[string]StructDefinition),
		enums:     make(map[string]EnumDefinition),
	}
}

// RegisterStruct records a struct declaration for later lookup by name.
func (r *Registry) RegisterStruct(name string, fields []Field) {
	r.structs[name] = StructDefinition{Name: name, Fields: fields}
}

// RegisterEnum records an enum declaration for later lookup by name.
func (r *Registry) RegisterEnum(name string, variants []EnumVariant, isPublic bool) {
	r.enums[name] = EnumDefinition{Name: name, Variants: variants, IsPublic: isPublic}
}

// Struct looks up a previously registered struct definition.
func (r *Registry) Struct(name string) (StructDefinition, bool) {
	def, ok := r.structs[name]
	return def, ok
}

// Enum looks up a previously registered enum definition.
func (r *Registry) Enum(name string) (EnumDefinition, bool) {
	def, ok := r.enums[name]
	return def, ok
}

// StructSizeBits returns the total size in bytes (not bits) of a registered
// struct's fields, each field's bit size rounded up to whole bytes; no
// padding is added. The second return is false if name was never registered.
func (r *Registry) StructSizeBits(name string, t target.Descriptor) (int, bool) {
	def, ok := r.structs[name]
	if !ok {
		return 0, false
	}
	total := 0
	for _, f := range def.Fields {
		total += (f.Type.SizeBits(t) + 7) / 8
	}
	return total, true
}

// GenerateEnumDefinition emits the tagged-union C representation of a
// previously registered enum: a `Name_Tag` enum of `Name__Variant = i`
// constants, followed by a struct pairing the tag with a union of
// payload-carrying variants. Returns ("", false) if name isn't registered.
func (r *Registry) GenerateEnumDefinition(name string, t target.Descriptor) (string, bool) {
	def, ok := r.enums[name]
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString("typedef enum {\n")
	for i, v := range def.Variants {
		fmt.Fprintf(&b, "    %s__%s = %d,\n", name, v.Name, i)
	}
	fmt.Fprintf(&b, "} %s_Tag;\n\n", name)
	fmt.Fprintf(&b, "typedef struct {\n    %s_Tag tag;\n    union {\n", name)
	for _, v := range def.Variants {
		if v.Type != nil {
			fmt.Fprintf(&b, "        %s %s;\n", v.Type.CType(t), v.Name)
		}
	}
	fmt.Fprintf(&b, "    } data;\n} %s;\n", name)
	return b.String(), true
}

// typeID returns the synthesized C identifier for a compound type. These
// keys are what EnsureDefined/GenerateTypeDefinition memoize against.
func typeID(ty vixtypes.Type) string {
	switch v := ty.(type) {
	case vixtypes.Option:
		return "Option_" + vixtypes.Sanitize(v.Inner.StructuralName())
	case vixtypes.Result:
		return fmt.Sprintf("Result_%s_%s", vixtypes.Sanitize(v.Ok.StructuralName()), vixtypes.Sanitize(v.Err.StructuralName()))
	case vixtypes.Tuple:
		names := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			names[i] = vixtypes.Sanitize(f.StructuralName())
		}
		return "Tuple_" + strings.Join(names, "_")
	case vixtypes.Union:
		names := make([]string, len(v.Variants))
		for i, variant := range v.Variants {
			names[i] = vixtypes.Sanitize(variant.StructuralName())
		}
		return "Union_" + strings.Join(names, "_")
	default:
		return ty.CType(target.X86_64())
	}
}

// GenerateTypeDefinition emits (and memoizes) the C definition for a
// compound type. The bool return reports whether this call produced a fresh
// definition (true) or the type had already been emitted (false) — at most
// one definition per canonical type ever reaches the caller.
func (r *Registry) GenerateTypeDefinition(ty vixtypes.Type, t target.Descriptor) (string, bool) {
	switch v := ty.(type) {
	case vixtypes.Option:
		return r.generateOption(v, t)
	case vixtypes.Result:
		return r.generateResult(v, t)
	case vixtypes.Tuple:
		return r.generateTuple(v, t)
	case vixtypes.Union:
		return r.generateUnion(v, t)
	default:
		return "", false
	}
}

func (r *Registry) generateOption(v vixtypes.Option, t target.Descriptor) (string, bool) {
	id := typeID(v)
	if _, exists := r.generated[id]; exists {
		return "", false
	}
	innerC := "uint8_t"
	if !vixtypes.IsVoid(v.Inner) {
		innerC = v.Inner.CType(t)
	}
	def := fmt.Sprintf("typedef struct {\n    uint8_t tag;\n    %s value;\n} %s;\n", innerC, id)
	r.generated[id] = def
	return def, true
}

func (r *Registry) generateResult(v vixtypes.Result, t target.Descriptor) (string, bool) {
	id := typeID(v)
	if _, exists := r.generated[id]; exists {
		return "", false
	}
	okC, errC := "uint8_t", "uint8_t"
	if !vixtypes.IsVoid(v.Ok) {
		okC = v.Ok.CType(t)
	}
	if !vixtypes.IsVoid(v.Err) {
		errC = v.Err.CType(t)
	}
	def := fmt.Sprintf("typedef struct {\n    uint8_t tag;\n    union {\n        %s ok;\n        %s err;\n    } data;\n} %s;\n", okC, errC, id)
	r.generated[id] = def
	return def, true
}

func (r *Registry) generateTuple(v vixtypes.Tuple, t target.Descriptor) (string, bool) {
	id := typeID(v)
	if _, exists := r.generated[id]; exists {
		return "", false
	}
	var b strings.Builder
	b.WriteString("typedef struct {\n")
	for i, f := range v.Fields {
		fmt.Fprintf(&b, "    %s field_%d;\n", f.CType(t), i)
	}
	fmt.Fprintf(&b, "} %s;\n", id)
	def := b.String()
	r.generated[id] = def
	return def, true
}

func (r *Registry) generateUnion(v vixtypes.Union, t target.Descriptor) (string, bool) {
	id := typeID(v)
	if _, exists := r.generated[id]; exists {
		return "", false
	}
	tagBits := t.TagBitsForVariants(len(v.Variants))
	tagType := map[int]string{8: "uint8_t", 16: "uint16_t", 32: "uint32_t"}[tagBits]
	if tagType == "" {
		tagType = "uint64_t"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "typedef struct {\n    %s tag;\n    union {\n", tagType)
	for i, variant := range v.Variants {
		fmt.Fprintf(&b, "        %s variant_%d;\n", variant.CType(t), i)
	}
	fmt.Fprintf(&b, "    } data;\n} %s;\n", id)
	def := b.String()
	r.generated[id] = def
	return def, true
}

// EnsureDefined recursively emits definitions for ty and every compound type
// it's built from, children before parents, skipping anything already
// emitted. The result is appended in dependency order so a struct's forward
// declaration never references an undefined type.
func (r *Registry) EnsureDefined(ty vixtypes.Type, t target.Descriptor) []string {
	var defs []string
	r.ensureDefined(ty, t, &defs)
	return defs
}

func (r *Registry) ensureDefined(ty vixtypes.Type, t target.Descriptor, out *[]string) {
	switch v := ty.(type) {
	case vixtypes.Option:
		r.ensureDefined(v.Inner, t, out)
	case vixtypes.Result:
		r.ensureDefined(v.Ok, t, out)
		r.ensureDefined(v.Err, t, out)
	case vixtypes.Tuple:
		for _, f := range v.Fields {
			r.ensureDefined(f, t, out)
		}
	case vixtypes.Union:
		for _, variant := range v.Variants {
			r.ensureDefined(variant, t, out)
		}
	case vixtypes.Array:
		r.ensureDefined(v.Element, t, out)
	case vixtypes.MultiArray:
		r.ensureDefined(v.Element, t, out)
	case vixtypes.Ptr:
		r.ensureDefined(v.Inner, t, out)
	default:
	}
	if def, fresh := r.GenerateTypeDefinition(ty, t); fresh {
		*out = append(*out, def)
	}
}
