// Package loxcmd wires the compiler and the VM into a runnable CLI
// command, following the teacher's internal/maincmd pattern: a Cmd struct
// tagged for github.com/mna/mainer's flag parser, with Main returning a
// mainer.ExitCode.
package loxcmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/mna/glox/lang/compiler"
	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/vm"
)

const binName = "glox"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and bytecode virtual machine for the Lox programming language.

If <path> is omitted, the script is read from standard input.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Runtime behavior can also be tuned with environment variables, see
RuntimeConfig: LOX_TRACE and LOX_DISASSEMBLE.
`, binName)
)

// RuntimeConfig holds the debug toggles read from the environment,
// grounded on clox's compile-time DEBUG_TRACE_EXECUTION and
// DEBUG_PRINT_CODE flags, exposed here as env vars since glox has no
// build-time flag equivalent.
type RuntimeConfig struct {
	// Trace, set via LOX_TRACE, prints the stack and the next
	// instruction before every VM dispatch.
	Trace bool `env:"LOX_TRACE"`
	// Disassemble, set via LOX_DISASSEMBLE, dumps every compiled
	// function's chunk before running the script.
	Disassemble bool `env:"LOX_DISASSEMBLE"`
}

// Cmd is the glox command line: parse a single optional script path,
// compile it, and run it to completion.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("too many arguments: %s", c.args[1])
	}
	return nil
}

// Main parses args, then either prints help/version or runs the script
// named by the sole positional argument (or standard input if none was
// given). Exit codes follow spec.md §9's resolution: 64 for a usage or
// I/O error, 65 for a compile error, 70 for a runtime error.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return usageExitCode
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	var cfg RuntimeConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return usageExitCode
	}

	source, err := readSource(stdio, c.args)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return usageExitCode
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	return Run(ctx, stdio, cfg, source)
}

func readSource(stdio mainer.Stdio, args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(stdio.Stdin)
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return b, nil
}

// usageExitCode, compileExitCode and runtimeExitCode are glox's distinct
// failure codes, deliberately not reusing mainer's generic Failure (1) or
// InvalidArgs.
const (
	usageExitCode   mainer.ExitCode = 64
	compileExitCode mainer.ExitCode = 65
	runtimeExitCode mainer.ExitCode = 70
)

// Run compiles and executes source, reporting diagnostics to stdio.Stderr
// and returning the exit code spec.md §9 assigns to the outcome.
func Run(ctx context.Context, stdio mainer.Stdio, cfg RuntimeConfig, source []byte) mainer.ExitCode {
	interner := intern.NewTable()
	fn, diags, ok := compiler.Compile(source, interner)
	if !ok {
		for _, d := range diags {
			fmt.Fprintln(stdio.Stderr, d.String())
		}
		return compileExitCode
	}

	m := vm.New(interner)
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr
	m.Trace = cfg.Trace
	m.Disassemble = cfg.Disassemble

	if err := m.Interpret(fn); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return runtimeExitCode
	}
	return mainer.Success
}
