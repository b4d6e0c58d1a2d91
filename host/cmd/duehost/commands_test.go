package main

import (
	"bytes"
	"context"
	"net"
	"runtime"
	"testing"

	"github.com/abiosoft/ishell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueserv/core"
	"dueserv/host/client"
	"dueserv/protocol"
	"dueserv/sim"
)

// startConsole wires a shell to a dispatcher driving a simulated board and
// captures the shell's output
func startConsole(t *testing.T, board *sim.Board) (*ishell.Shell, *bytes.Buffer) {
	t.Helper()

	deviceEnd, hostEnd := net.Pipe()
	tr := protocol.NewStreamTransport(deviceEnd)
	d := core.NewDispatcher(tr, board, nil)
	d.SetIdleHook(runtime.Gosched)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	c := client.New(hostEnd)
	shell := newShell(c)
	var out bytes.Buffer
	shell.SetOut(&out)

	t.Cleanup(func() {
		cancel()
		c.Close()
		tr.Close()
	})
	return shell, &out
}

func TestRunScriptAgainstBoard(t *testing.T) {
	board := sim.NewBoard(16)
	require.NoError(t, board.SetAnalogInput(7, 512))
	shell, out := startConsole(t, board)

	err := runScript(shell, "enq; mode 5 out; dwrite 5 1; dread 5; aread 7; awrite 9 200; sample 7 2 1ms")
	require.NoError(t, err)
	assert.Equal(t, "ACK\n1\n512\n0\t512\n1\t512\n", out.String())

	state, err := board.Snapshot(5)
	require.NoError(t, err)
	assert.Equal(t, core.Output, state.Direction)
	assert.Equal(t, core.High, state.Level)

	state, err = board.Snapshot(9)
	require.NoError(t, err)
	assert.Equal(t, core.AnalogValue(200), state.AnalogOut)
}

func TestRunScriptStopsAtBadArgument(t *testing.T) {
	board := sim.NewBoard(16)
	shell, out := startConsole(t, board)

	err := runScript(shell, "dwrite 6 1; dwrite 7 2; dwrite 8 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dwrite")
	assert.Contains(t, err.Error(), "Invalid LEVEL")

	// The statement after the failure never ran
	require.NoError(t, runScript(shell, "dread 6; dread 8"))
	assert.Equal(t, "1\n0\n", out.String())

	err = runScript(shell, "aread")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PIN required")

	err = runScript(shell, "mode 300 out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid PIN")
}

func TestSplitScript(t *testing.T) {
	stmts, err := splitScript(`enq; mode 3 out ;; dwrite 5 "1"; sample 7 3 '50ms'`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"enq"},
		{"mode", "3", "out"},
		{"dwrite", "5", "1"},
		{"sample", "7", "3", "50ms"},
	}, stmts)

	_, err = splitScript(`aread "7`)
	assert.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	pin, err := parsePin("255")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), pin)
	_, err = parsePin("256")
	assert.Error(t, err)

	dir, err := parseDirection("OUT")
	require.NoError(t, err)
	assert.Equal(t, uint8(protocol.DirOutput), dir)
	_, err = parseDirection("sideways")
	assert.Error(t, err)

	level, err := parseLevel("low")
	require.NoError(t, err)
	assert.Equal(t, uint8(protocol.LevelLow), level)
	_, err = parseLevel("2")
	assert.Error(t, err)
}
