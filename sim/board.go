// Package sim provides an in-memory board for running the dispatcher
// without hardware.
package sim

import (
	"sync"

	"dueserv/core"
)

// PinState is the simulated state of one pin
type PinState struct {
	Direction   core.Direction
	Level       core.Level
	AnalogIn    core.AnalogValue // Value returned by ReadAnalog
	AnalogOut   core.AnalogValue // Last value passed to SetAnalog
	Configured  bool             // SetDirection has been called
	AnalogWrite bool             // SetAnalog has been called
}

// Board is a thread-safe core.PinDriver backed by memory.
// Digital writes are reflected by digital reads, so the host sees its own
// writes the way it would on a loopback-wired board.
type Board struct {
	mu   sync.Mutex
	size int
	pins map[core.PinID]*PinState
}

// NewBoard creates a board with pins 0..size-1
func NewBoard(size int) *Board {
	return &Board{
		size: size,
		pins: make(map[core.PinID]*PinState),
	}
}

// Size returns the number of pins
func (b *Board) Size() int {
	return b.size
}

// pin returns the state for id, creating it on first use. Must hold b.mu.
func (b *Board) pin(id core.PinID) (*PinState, error) {
	if id == core.NoPin || int64(id) >= int64(b.size) {
		return nil, core.ErrInvalidPin
	}
	p, ok := b.pins[id]
	if !ok {
		p = &PinState{Direction: core.Input}
		b.pins[id] = p
	}
	return p, nil
}

// SetDirection implements core.PinDriver.
func (b *Board) SetDirection(id core.PinID, dir core.Direction) error {
	if dir != core.Input && dir != core.Output {
		return core.ErrInvalidDirection
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pin(id)
	if err != nil {
		return err
	}
	p.Direction = dir
	p.Configured = true
	return nil
}

// SetLevel implements core.PinDriver. Any non-zero level drives the pin high.
func (b *Board) SetLevel(id core.PinID, level core.Level) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pin(id)
	if err != nil {
		return err
	}
	if level != core.Low {
		p.Level = core.High
	} else {
		p.Level = core.Low
	}
	return nil
}

// GetLevel implements core.PinDriver.
func (b *Board) GetLevel(id core.PinID) (core.Level, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pin(id)
	if err != nil {
		return core.Low, err
	}
	return p.Level, nil
}

// ReadAnalog implements core.PinDriver.
func (b *Board) ReadAnalog(id core.PinID) (core.AnalogValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pin(id)
	if err != nil {
		return 0, err
	}
	return p.AnalogIn, nil
}

// SetAnalog implements core.PinDriver.
func (b *Board) SetAnalog(id core.PinID, value core.AnalogValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pin(id)
	if err != nil {
		return err
	}
	p.AnalogOut = value
	p.AnalogWrite = true
	return nil
}

// SetAnalogInput sets the value future ReadAnalog calls return
func (b *Board) SetAnalogInput(id core.PinID, value core.AnalogValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pin(id)
	if err != nil {
		return err
	}
	p.AnalogIn = value
	return nil
}

// Snapshot returns a copy of a pin's state
func (b *Board) Snapshot(id core.PinID) (PinState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pin(id)
	if err != nil {
		return PinState{}, err
	}
	return *p, nil
}
