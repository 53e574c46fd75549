// Copyright 2025 Florian Zenker (flo@znkr.io)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command diffpatch computes and applies patches for files and directory trees.
//
// Usage:
//
//	diffpatch diff [flags] <base> <target>
//	diffpatch patch [flags] <base> [<patch>]
//
// diff exits with 1 if the inputs differ, patch exits with 1 if hunks were rejected. Both exit
// with 2 on errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/golang/glog"
	"znkr.io/diffpatch/internal/config"
)

type cli struct {
	Globals

	Diff  diffCmd  `cmd:"" help:"Compute the patch that turns base into target."`
	Patch patchCmd `cmd:"" help:"Apply a patch to base."`
}

// Globals holds the flags shared by all commands.
type Globals struct {
	Config  string `help:"TOML configuration file." env:"DIFFPATCH_CONFIG" placeholder:"FILE"`
	Jobs    *int   `short:"j" help:"Number of files processed concurrently (default: number of CPUs)."`
	Color   bool   `help:"Color patches and rejects written to the terminal."`
	Verbose int    `short:"v" type:"counter" help:"Increase log verbosity."`
}

func (g *Globals) load() (*config.File, error) {
	if g.Config == "" {
		return &config.File{}, nil
	}
	return config.Load(g.Config)
}

func (g *Globals) jobs(file *config.File) int {
	if g.Jobs != nil {
		return *g.Jobs
	}
	return file.Jobs
}

// env holds the process environment of a command.
type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

// exitCode is returned by commands to exit with a code other than 0 without an error message.
type exitCode int

func (c exitCode) Error() string { return "exit code " + strconv.Itoa(int(c)) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	stop()
	glog.Flush()
	os.Exit(code)
}

func run(ctx context.Context, args []string, e *env) int {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("diffpatch"),
		kong.Description("Compute and apply patches, tolerating changes to the patched text."),
		kong.UsageOnError(),
		kong.Writers(e.stdout, e.stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(e.stderr, "diffpatch: %v\n", err)
		return 2
	}
	setupLogging(c.Verbose)

	err = kctx.Run(&c.Globals, e)
	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	default:
		fmt.Fprintf(e.stderr, "diffpatch: %v\n", err)
		return 2
	}
}

func setupLogging(verbosity int) {
	// glog is configured through the standard flag set.
	flag.Set("logtostderr", "true")
	flag.Set("v", strconv.Itoa(verbosity))
}
