// Package driver shells out to a clang-compatible C compiler to turn
// generated C99/C17 source into an object file or a linked executable,
// mirroring the Clang driver in original_source/src/Gen/API/Clang.rs.
package driver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// TargetOS selects the platform-specific link flags and file extensions a
// generated build needs.
type TargetOS int

const (
	Linux TargetOS = iota
	MacOS
	Windows
	FreeBSD
	UnknownOS
)

// CurrentOS reports the OS the driver process itself is running on,
// defaulting to UnknownOS for anything runtime.GOOS doesn't name.
func CurrentOS() TargetOS {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	case "freebsd":
		return FreeBSD
	default:
		return UnknownOS
	}
}

// FromString parses a target OS name from a config file or CLI flag.
func FromString(s string) (TargetOS, bool) {
	switch strings.ToLower(s) {
	case "windows", "win":
		return Windows, true
	case "linux":
		return Linux, true
	case "macos", "mac", "darwin":
		return MacOS, true
	case "freebsd":
		return FreeBSD, true
	default:
		return UnknownOS, false
	}
}

func (t TargetOS) String() string {
	switch t {
	case Windows:
		return "Windows"
	case Linux:
		return "Linux"
	case MacOS:
		return "macOS"
	case FreeBSD:
		return "FreeBSD"
	default:
		return "Unknown"
	}
}

func (t TargetOS) executableExtension() string {
	if t == Windows {
		return ".exe"
	}
	return ""
}

func (t TargetOS) objectExtension() string {
	if t == Windows {
		return ".obj"
	}
	return ".o"
}

func (t TargetOS) executablePrefix() string {
	if t == Windows {
		return ""
	}
	return "./"
}

// Driver wraps the clang invocation used to turn generated C into a binary.
// CC defaults to "clang" but can be overridden (e.g. by internal/config) to
// point at a cross-compiler or a clang wrapper script.
type Driver struct {
	CC string
}

// New returns a Driver invoking the given compiler, defaulting to "clang".
func New(cc string) Driver {
	if cc == "" {
		cc = "clang"
	}
	return Driver{CC: cc}
}

// CompileToObject writes cCode to workDir/output.c and compiles it to an
// object file at outputPath, returning combined stderr/stdout on failure.
func (d Driver) CompileToObject(ctx context.Context, cCode, workDir, outputPath string, target TargetOS) error {
	cPath := filepath.Join(workDir, "output.c")
	if err := os.WriteFile(cPath, []byte(cCode), 0o644); err != nil {
		return fmt.Errorf("write C source: %w", err)
	}

	objPath := outputPath
	if filepath.Ext(objPath) == "" {
		objPath = outputPath + target.objectExtension()
	}

	args := []string{"-c", cPath, "-o", objPath, "-O2", "-std=c17", "-Wall", "-Wextra"}
	if target == Windows {
		args = append(args, "-D_CRT_SECURE_NO_WARNINGS")
	}

	out, err := d.run(ctx, workDir, args)
	if err != nil {
		return fmt.Errorf("object compilation failed: %w\n%s", err, out)
	}
	return nil
}

// LinkExecutable links objectFiles plus extraLibs into an executable named
// outputName (extension added per target), writing and cleaning up a small
// control-flow-guard stub object on Windows the way the original linker
// invocation does.
func (d Driver) LinkExecutable(ctx context.Context, workDir string, objectFiles []string, outputName string, extraLibs []string, target TargetOS) error {
	exePath := filepath.Join(workDir, outputName+target.executableExtension())

	var stub string
	if target == Windows {
		s, err := d.createCFGStub(ctx, workDir)
		if err != nil {
			return err
		}
		stub = s
		defer os.Remove(stub)
	}

	var args []string
	if stub != "" {
		args = append(args, stub)
	}
	args = append(args, objectFiles...)
	args = append(args, "-o", exePath)
	args = append(args, platformArgs(target)...)
	for _, lib := range extraLibs {
		args = append(args, "-l"+lib)
	}

	out, err := d.run(ctx, workDir, args)
	if err != nil {
		return fmt.Errorf("linking failed: %w\n%s", err, out)
	}
	return nil
}

// GenerateAndCompile writes cCode and directly produces a linked executable
// in one clang invocation, the fast path used when no separate object file
// is needed.
func (d Driver) GenerateAndCompile(ctx context.Context, cCode, workDir, outputName string, extraLibs []string, target TargetOS) error {
	cPath := filepath.Join(workDir, "output.c")
	if err := os.WriteFile(cPath, []byte(cCode), 0o644); err != nil {
		return fmt.Errorf("write C source: %w", err)
	}
	exePath := filepath.Join(workDir, outputName+target.executableExtension())

	var stub string
	if target == Windows {
		s, err := d.createCFGStub(ctx, workDir)
		if err != nil {
			return err
		}
		stub = s
		defer os.Remove(stub)
	}

	args := []string{}
	if stub != "" {
		args = append(args, stub)
	}
	args = append(args, cPath, "-o", exePath, "-O2", "-std=c17", "-Wall", "-Wextra")
	if target == Windows {
		args = append(args, "-D_CRT_SECURE_NO_WARNINGS")
	}
	args = append(args, platformArgs(target)...)
	for _, lib := range extraLibs {
		args = append(args, "-l"+lib)
	}

	out, err := d.run(ctx, workDir, args)
	if err != nil {
		return fmt.Errorf("compilation failed: %w\n%s", err, out)
	}
	return nil
}

// RunExecutable runs a previously built binary and surfaces its exit code
// as an error, streaming its stdio straight through to the driver's own.
func (d Driver) RunExecutable(ctx context.Context, workDir, exeName string, target TargetOS) error {
	exePath := filepath.Join(workDir, target.executablePrefix()+exeName+target.executableExtension())
	cmd := exec.CommandContext(ctx, exePath)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("program failed: %w", err)
	}
	return nil
}

// createCFGStub compiles a tiny translation unit providing the
// __guard_eh_cont_* symbols MSVC-ABI control-flow-guard checks expect,
// letting clang's Windows target link without a full CRT import library.
func (d Driver) createCFGStub(ctx context.Context, workDir string) (string, error) {
	const stubC = "unsigned int __guard_eh_cont_count = 0;\nvoid* __guard_eh_cont_table = 0;\n"
	stubPath := filepath.Join(workDir, "cfg_stub.c")
	objPath := filepath.Join(workDir, "cfg_stub.obj")
	os.Remove(stubPath)
	os.Remove(objPath)

	if err := os.WriteFile(stubPath, []byte(stubC), 0o644); err != nil {
		return "", fmt.Errorf("write CFG stub: %w", err)
	}
	out, err := d.run(ctx, workDir, []string{"-c", stubPath, "-o", objPath, "-O2"})
	if err != nil {
		return "", fmt.Errorf("CFG stub compilation failed: %w\n%s", err, out)
	}
	return objPath, nil
}

func (d Driver) run(ctx context.Context, workDir string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, d.CC, args...)
	cmd.Dir = workDir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// platformArgs returns the extra link flags each target OS needs to resolve
// the handful of runtime libraries vix-generated C always ends up calling
// into (threading, math, and on Windows the usual MSVC import set).
func platformArgs(target TargetOS) []string {
	switch target {
	case Windows:
		return []string{
			"-Xlinker", "/SUBSYSTEM:CONSOLE",
			"-lmsvcrt", "-lvcruntime", "-lucrt",
			"-luser32", "-lgdi32", "-lkernel32", "-ladvapi32",
			"-lshell32", "-lole32", "-loleaut32", "-luuid", "-lws2_32",
		}
	case Linux:
		return []string{"-lpthread", "-ldl", "-lm"}
	case MacOS:
		return []string{"-framework", "CoreFoundation", "-framework", "Security", "-lpthread", "-lm"}
	case FreeBSD:
		return []string{"-lpthread", "-lm"}
	default:
		return nil
	}
}
