//go:build linux

package serial

import (
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"dueserv/core"
	"dueserv/protocol"
	"dueserv/sim"
)

func TestOpenPTYPassesRawBytes(t *testing.T) {
	pty, err := OpenPTY()
	if err != nil {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}
	defer pty.Close()

	slave, err := os.OpenFile(pty.Path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer slave.Close()
	require.NoError(t, makeRaw(int(slave.Fd())))

	// Control bytes must survive the line discipline in both directions
	_, err = slave.Write([]byte{0x03, 0x04, 13})
	require.NoError(t, err)

	buf := make([]byte, 3)
	n := 0
	for n < len(buf) {
		m, err := pty.Read(buf[n:])
		require.NoError(t, err)
		n += m
	}
	assert.Equal(t, []byte{0x03, 0x04, 13}, buf)

	_, err = pty.Write([]byte{'5', 13})
	require.NoError(t, err)
	n = 0
	for n < 2 {
		m, err := slave.Read(buf[n:2])
		require.NoError(t, err)
		n += m
	}
	assert.Equal(t, []byte{'5', 13}, buf[:2])
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Zero(t, cfg.ReadTimeout)
}

func TestPTYSurvivesHostReconnect(t *testing.T) {
	pty, err := OpenPTY()
	if err != nil {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}

	board := sim.NewBoard(16)
	tr := protocol.NewStreamTransport(pty)
	defer tr.Close()
	d := core.NewDispatcher(tr, board, nil)
	d.SetIdleHook(runtime.Gosched)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// First session: one write, then hang up
	host, err := os.OpenFile(pty.Path, os.O_RDWR|unix.O_NOCTTY, 0)
	require.NoError(t, err)
	_, err = host.Write([]byte{protocol.OpDigitalWrite, 5, protocol.EncodeBiased(protocol.LevelHigh)})
	require.NoError(t, err)
	require.NoError(t, host.Close())

	// Second session: the device still answers
	host, err = os.OpenFile(pty.Path, os.O_RDWR|unix.O_NOCTTY, 0)
	require.NoError(t, err)
	defer host.Close()
	require.NoError(t, makeRaw(int(host.Fd())))

	_, err = host.Write([]byte{protocol.OpEnquiry, protocol.OpDigitalRead, 5})
	require.NoError(t, err)

	reply := make([]byte, 0, 4)
	buf := make([]byte, 4)
	for len(reply) < 4 {
		n, err := host.Read(buf)
		require.NoError(t, err)
		reply = append(reply, buf[:n]...)
	}
	assert.Equal(t, []byte{protocol.Ack, protocol.HandshakeTerm, '1', protocol.NumberTerm}, reply)
	assert.NoError(t, tr.Err())
}
