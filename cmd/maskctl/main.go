// Package main provides the CLI entrypoint for maskctl.
//
// maskctl is the authoring-time companion of the mask engine:
//   - check: parse a YAML mask declaration file and run structural validation
//   - dump: print the parsed declarations for inspection
//
// Declarations are checked against the built-in demo entities (store and
// warehouse); hosts embed the same Validate call against their own
// registries.
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	flag "github.com/spf13/pflag"

	"entitymask/maskspec"
	"entitymask/store"
	"entitymask/warehouse"
)

func main() {
	specPath := flag.StringP("file", "f", "masks.yaml", "path to the mask declaration file")
	verbose := flag.BoolP("verbose", "v", false, "print info diagnostics as well")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	switch cmd := flag.Arg(0); cmd {
	case "check":
		os.Exit(runCheck(*specPath, *verbose))
	case "dump":
		os.Exit(runDump(*specPath))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "maskctl - authoring-time checker for mask declaration files")
	fmt.Fprintln(os.Stderr, "Commands: check | dump")
	fmt.Fprintln(os.Stderr, "Run with --help for flag usage")
}

func runCheck(path string, verbose bool) int {
	sf, err := maskspec.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	reg := maskspec.NewRegistry()
	builtins := []any{
		store.User{}, store.Project{},
		warehouse.Customer{}, warehouse.Product{}, warehouse.Order{}, warehouse.OrderItem{},
	}

	for _, entity := range builtins {
		if err := reg.BindEntity(entity); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	bindings := maskspec.NewBindingTable()
	bindings.RegisterConverter("state", store.StateConverter{})
	bindings.RegisterConverter("price", warehouse.PriceConverter{})

	diags := maskspec.Validate(sf, reg, bindings)

	for _, d := range diags.Errors {
		fmt.Fprintln(os.Stderr, "error: "+d.String())
	}

	for _, d := range diags.Warnings {
		fmt.Fprintln(os.Stderr, "warning: "+d.String())
	}

	if verbose {
		for _, d := range diags.Infos {
			fmt.Fprintln(os.Stderr, "info: "+d.String())
		}
	}

	if diags.HasErrors() {
		return 1
	}

	fmt.Printf("%s: %d mask declaration(s) ok\n", path, len(sf.Masks))

	return 0
}

func runDump(path string) int {
	sf, err := maskspec.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	spew.Dump(sf)

	return 0
}
