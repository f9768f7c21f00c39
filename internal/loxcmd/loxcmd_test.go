package loxcmd_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/glox/internal/loxcmd"
)

func stdio() (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return mainer.Stdio{Stdout: &out, Stderr: &errOut}, &out, &errOut
}

func TestRunSuccess(t *testing.T) {
	sio, out, errOut := stdio()
	code := loxcmd.Run(context.Background(), sio, loxcmd.RuntimeConfig{}, []byte(`print 1 + 1;`))
	require.Equal(t, mainer.Success, code)
	require.Equal(t, "2\n", out.String())
	require.Empty(t, errOut.String())
}

func TestRunCompileErrorExitsWithCompileCode(t *testing.T) {
	sio, _, errOut := stdio()
	code := loxcmd.Run(context.Background(), sio, loxcmd.RuntimeConfig{}, []byte(`var = 1;`))
	require.EqualValues(t, 65, code)
	require.Contains(t, errOut.String(), "Error")
}

func TestRunRuntimeErrorExitsWithRuntimeCode(t *testing.T) {
	sio, _, errOut := stdio()
	code := loxcmd.Run(context.Background(), sio, loxcmd.RuntimeConfig{}, []byte(`print undefinedThing;`))
	require.EqualValues(t, 70, code)
	require.Contains(t, errOut.String(), "Undefined variable 'undefinedThing'.")
}

func TestRunTraceWritesInstructionsToStderr(t *testing.T) {
	sio, _, errOut := stdio()
	code := loxcmd.Run(context.Background(), sio, loxcmd.RuntimeConfig{Trace: true}, []byte(`print 1;`))
	require.Equal(t, mainer.Success, code)
	require.Contains(t, errOut.String(), "OP_PRINT")
}

func TestRunDisassembleDumpsChunkBeforeRunning(t *testing.T) {
	sio, out, errOut := stdio()
	code := loxcmd.Run(context.Background(), sio, loxcmd.RuntimeConfig{Disassemble: true}, []byte(`
		fun greet() { print "hi"; }
		greet();
	`))
	require.Equal(t, mainer.Success, code)
	require.Equal(t, "hi\n", out.String())
	require.True(t, strings.Contains(errOut.String(), "== script ==") || strings.Contains(errOut.String(), "== greet =="))
}

func TestMainHelp(t *testing.T) {
	sio, out, _ := stdio()
	c := &loxcmd.Cmd{BuildVersion: "0.0.0", BuildDate: "2026-01-01"}
	code := c.Main([]string{"glox", "--help"}, sio)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "usage: glox")
}

func TestMainVersion(t *testing.T) {
	sio, out, _ := stdio()
	c := &loxcmd.Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}
	code := c.Main([]string{"glox", "--version"}, sio)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "1.2.3")
}

func TestMainMissingFileIsUsageError(t *testing.T) {
	sio, _, _ := stdio()
	c := &loxcmd.Cmd{}
	code := c.Main([]string{"glox", "does-not-exist.lox"}, sio)
	require.EqualValues(t, 64, code)
}
