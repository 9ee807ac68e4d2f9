// Command spy is the CLI collaborator of spec §6: seven subcommands
// (execute, parse, pyparse, redshift, imports, symtable, cleanup) plus
// a repl companion, built on flag and github.com/fatih/color like the
// teacher's cmd/ailang.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/frame"
	"github.com/spy-lang/spy/internal/importer"
	"github.com/spy-lang/spy/internal/lexer"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/parser"
	"github.com/spy-lang/spy/internal/redshift"
	"github.com/spy-lang/spy/internal/repl"
	"github.com/spy-lang/spy/internal/symtable"
	"github.com/spy-lang/spy/internal/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "print version information")
		helpFlag    = flag.Bool("help", false, "show help")
		errorMode   = flag.String("E", "eager", "error mode: eager, lazy, or warn")
		pdb         = flag.Bool("pdb", false, "attach the interp-level debugger on error (unsupported)")
		spdb        = flag.Bool("spdb", false, "attach the app-level debugger on error (unsupported)")
		pathFlag    = flag.String("path", "", "comma-separated list of additional module search roots")
		robust      = flag.Bool("robust", false, "swallow .spyc cache errors instead of failing")
		allowPy     = flag.Bool("allow-py-files", false, "allow resolving imports to .py source files")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("spy %s (%s)\n", bold(Version), Commit)
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}
	if *pdb || *spdb {
		fmt.Fprintf(os.Stderr, "%s: no debugger is attached; --pdb/--spdb are accepted but unsupported here\n", yellow("warning"))
	}

	mode, err := parseMode(*errorMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	var searchPaths []string
	if *pathFlag != "" {
		searchPaths = strings.Split(*pathFlag, ",")
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var runErr error
	switch command {
	case "execute":
		runErr = cmdExecute(args, searchPaths, mode, *robust, *allowPy)
	case "parse":
		runErr = cmdParse(args, false)
	case "pyparse":
		runErr = cmdParse(args, true)
	case "redshift":
		runErr = cmdRedshift(args, mode)
	case "imports":
		runErr = cmdImports(args, searchPaths, *robust, *allowPy)
	case "symtable":
		runErr = cmdSymtable(args)
	case "cleanup":
		runErr = cmdCleanup(args)
	case "repl":
		cmdRepl()
		return
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}

	if runErr != nil {
		printErr(runErr)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("spy - the SPy reference interpreter"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  spy <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file>      Parse, scope-check, and run a program\n", cyan("execute"))
	fmt.Printf("  %s <file>        Parse a file and print its AST\n", cyan("parse"))
	fmt.Printf("  %s <file>      Parse a .py-sourced file with the same grammar\n", cyan("pyparse"))
	fmt.Printf("  %s <file>     Redshift every top-level function and print the residual AST\n", cyan("redshift"))
	fmt.Printf("  %s <file>      Print the post-order transitive import list\n", cyan("imports"))
	fmt.Printf("  %s <file>     Print every name the scope analyzer resolved\n", cyan("symtable"))
	fmt.Printf("  %s [dir]       Remove __pycache__/*.spyc cache files\n", cyan("cleanup"))
	fmt.Printf("  %s                 Start the interactive REPL\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -E {eager,lazy,warn}   error mode for redshift (default eager)")
	fmt.Println("  -path <dirs>           comma-separated extra module search roots")
	fmt.Println("  -robust                swallow .spyc cache read/write errors")
	fmt.Println("  -allow-py-files        allow resolving imports to .py files")
	fmt.Println("  -pdb / -spdb           accepted, reported as unsupported")
	fmt.Println("  -version / -help")
}

func parseMode(s string) (redshift.Mode, error) {
	switch s {
	case "eager":
		return redshift.ModeEager, nil
	case "lazy":
		return redshift.ModeLazy, nil
	case "warn":
		return redshift.ModeWarn, nil
	default:
		return redshift.ModeEager, fmt.Errorf("unknown error mode %q (want eager, lazy, or warn)", s)
	}
}

// moduleNameFor derives a module name from a source file path the way
// the importer's FindFileOnPath would expect to find it again: the
// file's base name with its extension removed (directories are not
// part of the name).
func moduleNameFor(path string) string {
	stem := filepath.Base(path)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	return stem
}

func newImporterFor(path string, extraPaths []string, robust, allowPy bool) *importer.Importer {
	v := vm.New()
	rt := frame.NewRuntime(v)
	roots := append([]string{filepath.Dir(path)}, extraPaths...)
	if manifest, err := importer.LoadManifest(filepath.Join(filepath.Dir(path), "spy.yaml")); err == nil {
		roots = append(roots, manifest.SearchPaths...)
	}
	return importer.New(rt, roots, "", robust, allowPy)
}

func cmdExecute(args []string, extraPaths []string, mode redshift.Mode, robust, allowPy bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: spy execute <file>")
	}
	path := args[0]
	im := newImporterFor(path, extraPaths, robust, allowPy)

	root := moduleNameFor(path)
	if _, err := im.Import(root); err != nil {
		return err
	}
	loaded, err := im.ImportAll(root)
	if err != nil {
		return err
	}
	for _, m := range loaded {
		if m.Failed {
			return fmt.Errorf("import %q could not be resolved on the search path", m.Name)
		}
	}
	fmt.Printf("%s %s\n", green("✓"), path)
	return nil
}

func cmdParse(args []string, py bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: spy parse <file>")
	}
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if py && !strings.HasSuffix(path, ".py") {
		fmt.Fprintf(os.Stderr, "%s: pyparse is the same grammar as parse; %s does not look like a .py file\n", yellow("warning"), path)
	}

	l := lexer.New(string(content), path)
	p := parser.New(l, moduleNameFor(path))
	mod := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d parse error(s): %v", len(errs), errs[0])
	}
	fmt.Print(ast.Print(mod))
	return nil
}

func cmdRedshift(args []string, mode redshift.Mode) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: spy redshift <file>")
	}
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	v := vm.New()
	rt := frame.NewRuntime(v)
	moduleName := moduleNameFor(path)

	l := lexer.New(string(content), path)
	p := parser.New(l, moduleName)
	mod := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d parse error(s): %v", len(errs), errs[0])
	}
	sym, err := symtable.BuildModule(mod)
	if err != nil {
		return err
	}

	f := frame.NewModuleFrame(rt, sym, moduleName)
	if _, err := f.ExecBlock(mod.Body); err != nil {
		return err
	}

	var fns []*object.ASTFunc
	var names []string
	for _, name := range sym.LocalNames() {
		g, ok := v.LookupGlobal(fqn.New(moduleName, name))
		if !ok {
			continue
		}
		if astFn, ok := g.(*object.ASTFunc); ok {
			fns = append(fns, astFn)
			names = append(names, name)
		}
	}

	sink := &redshift.CollectSink{}
	twins, err := redshift.RedshiftAll(rt, fns, mode, sink)
	if err != nil {
		return err
	}
	for _, e := range sink.Errs {
		fmt.Fprintf(os.Stderr, "%s: %v\n", yellow("redshift warning"), e)
	}
	for i, twin := range twins {
		name := "<anonymous>"
		if i < len(names) {
			name = names[i]
		}
		fmt.Printf("%s %s\n", cyan("def"), name)
		fmt.Print(ast.Print(&ast.Module{Name: moduleName, Body: twin.Def.Body}))
	}
	return nil
}

func cmdImports(args []string, extraPaths []string, robust, allowPy bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: spy imports <file>")
	}
	path := args[0]
	im := newImporterFor(path, extraPaths, robust, allowPy)

	root := moduleNameFor(path)
	if _, err := im.Import(root); err != nil {
		return err
	}
	order, err := im.GetImportList(root)
	if err != nil {
		return err
	}
	for _, name := range order {
		fmt.Println(name)
	}
	return nil
}

func cmdSymtable(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: spy symtable <file>")
	}
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	l := lexer.New(string(content), path)
	p := parser.New(l, moduleNameFor(path))
	mod := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d parse error(s): %v", len(errs), errs[0])
	}
	sym, err := symtable.BuildModule(mod)
	if err != nil {
		return err
	}
	for _, n := range sym.LocalNames() {
		fmt.Println(n)
	}
	return nil
}

func cmdCleanup(args []string) error {
	root := "."
	if len(args) >= 1 {
		root = args[0]
	}
	var removed int
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == "__pycache__" {
			if rmErr := os.RemoveAll(p); rmErr != nil {
				return rmErr
			}
			removed++
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s removed %d cache director%s\n", green("✓"), removed, plural(removed))
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func cmdRepl() {
	v := vm.New()
	rt := frame.NewRuntime(v)
	repl.New(rt).Start(os.Stdout)
}

func printErr(err error) {
	if rep, ok := errors.As(err); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red(string(rep.Kind)), rep.Message)
		for _, a := range rep.Annotations {
			fmt.Fprintf(os.Stderr, "  %s %s (%s)\n", yellow(string(a.Severity)), a.Message, a.Loc.Start.String())
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
}
