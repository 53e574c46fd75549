// diff is a small CLI to manually run the diff and patch implementations used for benchmarking.
//
// With -patch, the diff between x and y is applied to the given file instead of printed.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/tools/txtar"
	"znkr.io/diffpatch/internal/benchmarks"
)

type config struct {
	lib   string
	x, y  string
	txtar string
	patch string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.lib, "lib", "diffpatch", "library to use for diffing")
	flag.StringVar(&cfg.txtar, "txtar", "", "use testdata txtar file instead of two input files")
	flag.StringVar(&cfg.patch, "patch", "", "apply the diff to this file and print the result")
	flag.Parse()

	if cfg.txtar != "" {
		if flag.CommandLine.NArg() != 0 {
			fmt.Fprintf(os.Stderr, "error: usage: diff -txtar <file>\n")
			os.Exit(1)
		}
	} else {
		if flag.CommandLine.NArg() != 2 {
			fmt.Fprintf(os.Stderr, "error: usage: diff <x> <y>\n")
			os.Exit(1)
		}
		cfg.x = flag.CommandLine.Arg(0)
		cfg.y = flag.CommandLine.Arg(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	x, y, err := inputs(cfg)
	if err != nil {
		return err
	}

	if cfg.patch != "" {
		return runPatch(cfg, x, y)
	}

	var lib *benchmarks.Impl
	for _, l := range benchmarks.Impls {
		if l.Name == cfg.lib {
			lib = &l
		}
	}
	if lib == nil {
		return fmt.Errorf("lib not found %q", cfg.lib)
	}
	os.Stdout.Write(lib.Diff(x, y))
	return nil
}

func runPatch(cfg config, x, y []byte) error {
	var lib *benchmarks.PatchImpl
	for _, l := range benchmarks.PatchImpls {
		if l.Name == cfg.lib {
			lib = &l
		}
	}
	if lib == nil {
		return fmt.Errorf("patch lib not found %q", cfg.lib)
	}
	base, err := os.ReadFile(cfg.patch)
	if err != nil {
		return err
	}
	out, ok := lib.Patch(x, y, base)
	os.Stdout.Write(out)
	if !ok {
		return fmt.Errorf("patch %s: not all hunks applied", cfg.patch)
	}
	return nil
}

func inputs(cfg config) (x, y []byte, err error) {
	if cfg.txtar != "" {
		ar, err := txtar.ParseFile(cfg.txtar)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range ar.Files {
			switch f.Name {
			case "x":
				x = f.Data
			case "y":
				y = f.Data
			}
		}
		return x, y, nil
	}
	x, err = os.ReadFile(cfg.x)
	if err != nil {
		return nil, nil, err
	}
	y, err = os.ReadFile(cfg.y)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
