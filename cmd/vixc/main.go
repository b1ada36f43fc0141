// Command vixc is the Vix-to-C compiler driver: it wires together the
// checker, the C emitter, and an external C compiler to turn a parsed
// program (read as a JSON AST fixture) into a native executable.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bahimpro2011-code/vixc/internal/ast"
	"github.com/bahimpro2011-code/vixc/internal/checker"
	"github.com/bahimpro2011-code/vixc/internal/config"
	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/bahimpro2011-code/vixc/internal/driver"
	"github.com/bahimpro2011-code/vixc/internal/emit"
	"github.com/bahimpro2011-code/vixc/internal/manifest"
	"github.com/bahimpro2011-code/vixc/internal/registry"
	"github.com/bahimpro2011-code/vixc/internal/target"
)

var formatter = diag.NewFormatter()

func formatDiagnostic(d diag.Diagnostic) {
	if len(d.LabeledSpans) > 0 && !d.Span.IsValid() {
		for _, ls := range d.LabeledSpans {
			if ls.Style == "primary" {
				d.Span = ls.Span
				break
			}
		}
		if !d.Span.IsValid() && len(d.LabeledSpans) > 0 {
			d.Span = d.LabeledSpans[0].Span
		}
	}
	formatter.Format(os.Stderr, d)
}

func debugLog(format string, a ...interface{}) {
	if os.Getenv("VIXC_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format, a...)
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vixc [flags] <command> <file>\n")
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  build <file>    Compile a Vix AST fixture to a native executable\n")
		fmt.Fprintf(os.Stderr, "  run <file>      Compile and immediately run it\n")
		fmt.Fprintf(os.Stderr, "  emit-c <file>   Print the generated C source without compiling it\n")
		fmt.Fprintf(os.Stderr, "  version         Show version information\n")
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "", "path to a vixc.yaml config file")
	targetName := flag.String("target", "", "target architecture (overrides config)")
	cc := flag.String("cc", "", "C compiler driver to invoke (overrides config)")
	output := flag.String("o", "", "output executable name (overrides config)")
	manifestPath := flag.String("manifest", "", "path to a native library manifest")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	rest := args[1:]

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *targetName != "" {
		cfg.Target = *targetName
	}
	if *cc != "" {
		cfg.CC = *cc
	}
	if *output != "" {
		cfg.OutputName = *output
	}

	switch command {
	case "build":
		runBuild(rest, cfg, *manifestPath)
	case "run":
		runRun(rest, cfg, *manifestPath)
	case "emit-c":
		runEmitC(rest, cfg, *manifestPath)
	case "version", "-v", "--version":
		runVersion()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

// compile reads the AST fixture at filename, checks it, and emits C source.
// It returns the generated source and false if any diagnostic errors were
// reported (already printed to stderr).
func compile(filename string, cfg config.Config, manifestPath string) (string, bool) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", filename, err)
		return "", false
	}

	prog, err := ast.DecodeProgram(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error decoding AST: %v\n", err)
		return "", false
	}

	handler := diag.NewHandler(cfg.MaxErrors)
	c := checker.New(handler)

	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading manifest %s: %v\n", manifestPath, err)
			return "", false
		}
		debugLog("loaded manifest %s v%s (%d functions)\n", m.Name, m.Version, len(m.Functions))
		c.RegisterLibraryFunctions(m.Functions)
	}

	c.Check(prog)

	for _, d := range handler.Diagnostics() {
		formatDiagnostic(d)
	}
	if handler.HasErrors() {
		handler.PrintSummary(os.Stderr)
		return "", false
	}

	t := target.ByName(cfg.Target)
	reg := registry.New()
	e := emit.New(reg, t, handler, c)

	src := e.EmitProgram(prog)

	for _, d := range handler.Diagnostics() {
		formatDiagnostic(d)
	}
	if handler.HasErrors() {
		handler.PrintSummary(os.Stderr)
		return "", false
	}
	return src, true
}

func runEmitC(args []string, cfg config.Config, manifestPath string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: vixc emit-c <file>\n")
		os.Exit(1)
	}
	src, ok := compile(args[0], cfg, manifestPath)
	if !ok {
		os.Exit(1)
	}
	fmt.Println(src)
}

func runBuild(args []string, cfg config.Config, manifestPath string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: vixc build <file>\n")
		os.Exit(1)
	}
	filename := args[0]
	src, ok := compile(filename, cfg, manifestPath)
	if !ok {
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "vixc_*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating work directory: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(workDir)

	outName := cfg.OutputName
	if outName == "a.out" {
		base := filepath.Base(filename)
		outName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	osTarget, ok := driver.FromString(cfg.Target)
	if !ok {
		osTarget = driver.CurrentOS()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const buildExe = "vixc_build"
	d := driver.New(cfg.CC)
	debugLog("compiling and linking in %s\n", workDir)
	if err := d.GenerateAndCompile(ctx, src, workDir, buildExe, cfg.ExtraLibs, osTarget); err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
		os.Exit(1)
	}

	built, err := filepath.Glob(filepath.Join(workDir, buildExe+"*"))
	if err != nil || len(built) == 0 {
		fmt.Fprintf(os.Stderr, "error locating built executable in %s\n", workDir)
		os.Exit(1)
	}
	finalName := outName + filepath.Ext(built[0])
	if err := copyFile(built[0], finalName); err != nil {
		fmt.Fprintf(os.Stderr, "error placing built executable: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Build successful: %s\n", finalName)
}

func runRun(args []string, cfg config.Config, manifestPath string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: vixc run <file>\n")
		os.Exit(1)
	}
	filename := args[0]
	src, ok := compile(filename, cfg, manifestPath)
	if !ok {
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "vixc_*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating work directory: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(workDir)

	osTarget, ok := driver.FromString(cfg.Target)
	if !ok {
		osTarget = driver.CurrentOS()
	}

	const exeName = "vixc_run"
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	d := driver.New(cfg.CC)
	if err := d.GenerateAndCompile(ctx, src, workDir, exeName, cfg.ExtraLibs, osTarget); err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
		os.Exit(1)
	}

	runCtx, runCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer runCancel()
	if err := d.RunExecutable(runCtx, workDir, exeName, osTarget); err != nil {
		os.Exit(1)
	}
}

func runVersion() {
	version := "dev"
	if v := os.Getenv("VIXC_VERSION"); v != "" {
		version = v
	}
	fmt.Printf("vixc version %s\n", version)
}

// copyFile copies src to dst, preserving dst's executable bit expectations
// by always creating it with 0o755 (the driver's output is always a binary).
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o755)
}
