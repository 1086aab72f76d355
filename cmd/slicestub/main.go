// Package main provides the CLI entrypoint for slicestub.
//
// slicestub analyzes a sliced Java codebase, finds every reference whose
// definition left the slice, and prints the stub plans a generator needs to
// make the slice compile again.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	"slicestub/internal/collect"
	"slicestub/internal/model"
	"slicestub/internal/oracle"
	"slicestub/internal/stub"
)

type options struct {
	src     string
	context string
	out     string
	types   string
	strict  bool
	dump    bool
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}

	fs := pflag.NewFlagSet("slicestub", pflag.ContinueOnError)
	fs.StringVarP(&opts.src, "src", "s", "", "directory holding the sliced sources")
	fs.StringVarP(&opts.context, "context", "c", "", "context index file (yaml) describing removed types")
	fs.StringVarP(&opts.out, "out", "o", "", "write plans to this file instead of stdout")
	fs.StringVar(&opts.types, "types", "", "comma-separated FQN allowlist restricting the slice boundary")
	fs.BoolVar(&opts.strict, "strict", false, "abort on ambiguous resolutions instead of routing to unknown")
	fs.BoolVar(&opts.dump, "dump", false, "dump the raw collection result to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(opts.src) == "" {
		return nil, fmt.Errorf("--src is required")
	}

	return opts, nil
}

func splitCommaList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func run(opts *options) error {
	prog := model.NewProgram()
	if err := prog.LoadDir(opts.src, true); err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	var ctx *oracle.Index

	if opts.context != "" {
		var err error

		ctx, err = oracle.LoadFile(opts.context)
		if err != nil {
			return fmt.Errorf("load context: %w", err)
		}
	}

	cfg := collect.DefaultConfig()
	cfg.Strict = opts.strict
	cfg.SliceTypes = splitCommaList(opts.types)

	res, err := collect.New(prog, ctx, cfg).Run()

	if res != nil {
		for _, line := range res.Diagnostics.Strings() {
			fmt.Fprintln(os.Stderr, line)
		}

		if opts.dump {
			spew.Fdump(os.Stderr, res)
		}
	}

	if err != nil {
		return err
	}

	data, err := stub.ExportYAML(res)
	if err != nil {
		return fmt.Errorf("encode plans: %w", err)
	}

	if opts.out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	return os.WriteFile(opts.out, data, 0o644)
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "slicestub:", err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "slicestub:", err)
		os.Exit(1)
	}
}
