package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueserv/core"
	"dueserv/protocol"
)

func TestBoardReflectsWrites(t *testing.T) {
	b := NewBoard(8)

	require.NoError(t, b.SetDirection(5, core.Output))
	require.NoError(t, b.SetLevel(5, core.High))

	level, err := b.GetLevel(5)
	require.NoError(t, err)
	assert.Equal(t, core.High, level)

	require.NoError(t, b.SetLevel(5, 7))
	level, _ = b.GetLevel(5)
	assert.Equal(t, core.High, level, "non-zero levels drive high")

	state, err := b.Snapshot(5)
	require.NoError(t, err)
	assert.True(t, state.Configured)
	assert.Equal(t, core.Output, state.Direction)
}

func TestBoardAnalog(t *testing.T) {
	b := NewBoard(8)

	require.NoError(t, b.SetAnalogInput(7, 512))
	v, err := b.ReadAnalog(7)
	require.NoError(t, err)
	assert.Equal(t, core.AnalogValue(512), v)

	require.NoError(t, b.SetAnalog(3, 200))
	state, _ := b.Snapshot(3)
	assert.True(t, state.AnalogWrite)
	assert.Equal(t, core.AnalogValue(200), state.AnalogOut)
}

func TestBoardRejectsInvalidPins(t *testing.T) {
	b := NewBoard(4)

	assert.ErrorIs(t, b.SetLevel(4, core.High), core.ErrInvalidPin)
	assert.ErrorIs(t, b.SetLevel(core.NoPin, core.High), core.ErrInvalidPin)
	_, err := b.ReadAnalog(99)
	assert.ErrorIs(t, err, core.ErrInvalidPin)
	assert.ErrorIs(t, b.SetDirection(1, -5), core.ErrInvalidDirection)
}

// memTransport feeds a fixed byte sequence to the dispatcher
type memTransport struct {
	rx []byte
	tx []byte
}

func (m *memTransport) ReceiverReady() bool    { return len(m.rx) > 0 }
func (m *memTransport) TransmitterReady() bool { return true }
func (m *memTransport) Transmit(b byte)        { m.tx = append(m.tx, b) }
func (m *memTransport) Receive() byte {
	b := m.rx[0]
	m.rx = m.rx[1:]
	return b
}

func TestBoardUnderDispatcher(t *testing.T) {
	b := NewBoard(16)
	require.NoError(t, b.SetAnalogInput(7, 512))

	tr := &memTransport{rx: []byte{
		protocol.OpEnquiry,
		protocol.OpPinMode, 3, 11,
		protocol.OpDigitalWrite, 5, 11,
		protocol.OpDigitalRead, 5,
		protocol.OpAnalogRead, 7,
		protocol.OpDigitalRead, 40, // out of range: driver error, reply 0
	}}
	d := core.NewDispatcher(tr, b, nil)

	for len(tr.rx) > 0 || d.State() != core.StateIdle {
		d.Step()
	}

	assert.Equal(t, []byte{protocol.Ack, 10, '1', 13, '5', '1', '2', 13, '0', 13}, tr.tx)
	state, _ := b.Snapshot(3)
	assert.Equal(t, core.Output, state.Direction)
	assert.Equal(t, uint32(1), d.Stats().PinErrors)
}
