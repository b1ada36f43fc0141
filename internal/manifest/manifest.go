// Package manifest adapts a library package manifest (a
// vix.package.json-shaped file, mirroring the structure read by
// original_source/src/Library/package/packageJson.rs) into the flat
// Includes/Functions shape the checker and emitter need. It is a thin
// convenience over the full package/dependency loader named in spec.md §6,
// which stays out of scope.
package manifest

import (
	"fmt"
	"os"

	"github.com/buger/jsonparser"
	"golang.org/x/mod/semver"

	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
)

// FunctionSignature describes one extern function a manifest's library
// exposes, enough for the checker to register it and the emitter to emit a
// matching `extern` declaration.
type FunctionSignature struct {
	Name       string
	ParamTypes []vixtypes.Type
	ReturnType vixtypes.Type
}

// Manifest is the adapted form of a library's package.json: the C headers
// it wants included and the extern functions it exposes.
type Manifest struct {
	Name      string
	Version   string
	Includes  []string
	Functions []FunctionSignature
}

// Load reads and decodes the manifest at path, validating its declared
// version as a semver string. Field-level extraction (rather than a full
// struct unmarshal) avoids paying to decode the rest of a third-party
// package.json this adapter doesn't otherwise use.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw manifest JSON, as Load does after reading the file.
func Parse(data []byte) (Manifest, error) {
	name, err := jsonparser.GetString(data, "name")
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest missing \"name\": %w", err)
	}

	version, err := jsonparser.GetString(data, "version")
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest missing \"version\": %w", err)
	}
	canonical := version
	if len(canonical) == 0 || canonical[0] != 'v' {
		canonical = "v" + canonical
	}
	if !semver.IsValid(canonical) {
		return Manifest{}, fmt.Errorf("manifest %q has an invalid version %q", name, version)
	}

	var includes []string
	_, _ = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err == nil && dataType == jsonparser.String {
			includes = append(includes, string(value))
		}
	}, "include", "clang")

	var functions []FunctionSignature
	var parseErr error
	_, _ = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err != nil || dataType != jsonparser.Object || parseErr != nil {
			return
		}
		fn, ferr := parseFunction(value)
		if ferr != nil {
			parseErr = ferr
			return
		}
		// An empty-parameter signature can't be told apart from a manifest
		// entry the library simply forgot to fill in, so spec.md §6 treats
		// it as unusable and drops it rather than registering a capability
		// whose arity was never actually declared.
		if len(fn.ParamTypes) == 0 {
			return
		}
		functions = append(functions, fn)
	}, "functions")
	if parseErr != nil {
		return Manifest{}, parseErr
	}

	return Manifest{
		Name:      name,
		Version:   version,
		Includes:  includes,
		Functions: functions,
	}, nil
}

func parseFunction(obj []byte) (FunctionSignature, error) {
	name, err := jsonparser.GetString(obj, "name")
	if err != nil {
		return FunctionSignature{}, fmt.Errorf("function entry missing \"name\": %w", err)
	}

	returnName, err := jsonparser.GetString(obj, "return")
	if err != nil {
		returnName = "void"
	}

	var params []vixtypes.Type
	_, _ = jsonparser.ArrayEach(obj, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err == nil && dataType == jsonparser.String {
			params = append(params, typeByName(string(value)))
		}
	}, "params")

	return FunctionSignature{
		Name:       name,
		ParamTypes: params,
		ReturnType: typeByName(returnName),
	}, nil
}

// typeByName maps a manifest's primitive type name to its vixtypes.Type,
// falling back to Any for anything it doesn't recognize (a struct name from
// a library this adapter doesn't model, for instance).
func typeByName(name string) vixtypes.Type {
	switch name {
	case "i8":
		return vixtypes.I8()
	case "i16":
		return vixtypes.I16()
	case "i32":
		return vixtypes.I32()
	case "i64":
		return vixtypes.I64()
	case "u8":
		return vixtypes.U8()
	case "u16":
		return vixtypes.U16()
	case "u32":
		return vixtypes.U32()
	case "u64":
		return vixtypes.U64()
	case "f32":
		return vixtypes.F32()
	case "f64":
		return vixtypes.F64()
	case "bool":
		return vixtypes.Bool{}
	case "void":
		return vixtypes.Void{}
	case "str", "string":
		return vixtypes.ConstStr{}
	default:
		return vixtypes.Any{}
	}
}
