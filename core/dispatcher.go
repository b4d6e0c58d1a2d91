package core

import (
	"context"
	"time"

	"dueserv/protocol"
)

// Dispatcher is the command protocol state machine.
// It polls a ByteTransport for opcodes, collects argument bytes, drives a
// PinDriver and writes replies. It is single-threaded: Step and Run must
// not be called from more than one goroutine.
type Dispatcher struct {
	transport ByteTransport
	pins      PinDriver
	mapper    PinMapper

	state State

	argTimeout time.Duration    // 0 = wait forever for argument bytes
	now        func() time.Time // clock used for argTimeout
	idle       func()           // called on every empty poll, may be nil
	numericLF  bool             // append LF after the CR of numeric replies

	stats Stats
	ring  commandRing
}

// NewDispatcher creates a dispatcher in the IDLE state.
// A nil mapper maps protocol pin numbers straight through.
func NewDispatcher(transport ByteTransport, pins PinDriver, mapper PinMapper) *Dispatcher {
	if mapper == nil {
		mapper = IdentityMapper{}
	}
	return &Dispatcher{
		transport: transport,
		pins:      pins,
		mapper:    mapper,
		state:     StateIdle,
		now:       time.Now,
	}
}

// SetArgTimeout bounds the wait for each argument byte.
// When it expires the partial command is dropped and the dispatcher returns
// to IDLE. Zero (the default) waits forever.
func (d *Dispatcher) SetArgTimeout(timeout time.Duration) {
	d.argTimeout = timeout
}

// SetClock replaces the clock used for argument timeouts
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// SetIdleHook installs a function called each time a poll finds nothing to
// do, including while spinning for argument bytes or transmitter space.
// Waits stay unbounded; the hook only lets a hosted build give up the CPU.
func (d *Dispatcher) SetIdleHook(fn func()) {
	d.idle = fn
}

// SetNumericLineFeed makes numeric replies end with CR LF instead of CR,
// matching older firmware revisions.
func (d *Dispatcher) SetNumericLineFeed(enabled bool) {
	d.numericLF = enabled
}

// State returns the current protocol state
func (d *Dispatcher) State() State {
	return d.state
}

// Run steps the dispatcher until ctx is done.
// ctx is only checked while IDLE: a command that has started always runs to
// completion, including its argument waits.
func (d *Dispatcher) Run(ctx context.Context) error {
	done := ctx.Done()
	for {
		if d.state == StateIdle {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
		}
		d.Step()
	}
}

// Step performs exactly one state transition
func (d *Dispatcher) Step() {
	switch d.state {
	case StateIdle:
		d.state = d.pollOpcode()
	case StateHandshake:
		d.handshake()
		d.state = StateIdle
	case StatePinModeArgs:
		d.pinMode()
		d.state = StateIdle
	case StateDigitalWriteArgs:
		d.digitalWrite()
		d.state = StateIdle
	case StateDigitalReadArgs:
		d.digitalRead()
		d.state = StateIdle
	case StateAnalogWriteArgs:
		d.analogWrite()
		d.state = StateIdle
	case StateAnalogReadArgs:
		d.analogRead()
		d.state = StateIdle
	default:
		d.state = StateIdle
	}
}

// pollOpcode consumes at most one byte and returns the next state
func (d *Dispatcher) pollOpcode() State {
	if !d.transport.ReceiverReady() {
		d.yield()
		return StateIdle
	}

	b := d.transport.Receive()
	next, ok := stateFor(b)
	if !ok {
		d.stats.addIgnored()
		if debugEnabled {
			DebugPrintln("[DISPATCH] ignored byte " + utoa(uint32(b)))
		}
		return StateIdle
	}

	d.stats.addCommand(Opcode(b))
	return next
}

func (d *Dispatcher) handshake() {
	d.record(OpEnquiry, 0, uint32(protocol.Ack))
	d.sendTerminated(protocol.Ack)
}

func (d *Dispatcher) pinMode() {
	pin, value, ok := d.readPinValue()
	if !ok {
		return
	}
	d.record(OpPinMode, pin, uint32(value))

	dir := Direction(protocol.DecodeBiased(value))
	d.check(OpPinMode, pin, d.pins.SetDirection(d.mapper.MapPin(pin), dir))
}

func (d *Dispatcher) digitalWrite() {
	pin, value, ok := d.readPinValue()
	if !ok {
		return
	}
	d.record(OpDigitalWrite, pin, uint32(value))

	level := Level(protocol.DecodeBiased(value))
	d.check(OpDigitalWrite, pin, d.pins.SetLevel(d.mapper.MapPin(pin), level))
}

func (d *Dispatcher) digitalRead() {
	pin, ok := d.readPin()
	if !ok {
		return
	}

	level, err := d.pins.GetLevel(d.mapper.MapPin(pin))
	d.check(OpDigitalRead, pin, err)

	var v uint32
	if level > 0 {
		v = uint32(level)
	}
	d.record(OpDigitalRead, pin, v)
	d.sendNumber(v)
}

func (d *Dispatcher) analogWrite() {
	pin, value, ok := d.readPinValue()
	if !ok {
		return
	}
	d.record(OpAnalogWrite, pin, uint32(value))

	d.check(OpAnalogWrite, pin, d.pins.SetAnalog(d.mapper.MapPin(pin), AnalogValue(value)))
}

func (d *Dispatcher) analogRead() {
	pin, ok := d.readPin()
	if !ok {
		return
	}

	value, err := d.pins.ReadAnalog(d.mapper.MapPin(pin))
	d.check(OpAnalogRead, pin, err)

	d.record(OpAnalogRead, pin, uint32(value))
	d.sendNumber(uint32(value))
}

// readPin collects the single pin argument of a read command
func (d *Dispatcher) readPin() (byte, bool) {
	pin, ok := d.readWhenReady()
	if !ok {
		d.abandon()
	}
	return pin, ok
}

// readPinValue collects the pin and value arguments of a write command
func (d *Dispatcher) readPinValue() (pin, value byte, ok bool) {
	if pin, ok = d.readWhenReady(); !ok {
		d.abandon()
		return
	}
	if value, ok = d.readWhenReady(); !ok {
		d.abandon()
	}
	return
}

// readWhenReady spins until a byte is available.
// With an argument timeout set it gives up once the deadline passes.
func (d *Dispatcher) readWhenReady() (byte, bool) {
	var deadline time.Time
	if d.argTimeout > 0 {
		deadline = d.now().Add(d.argTimeout)
	}

	for !d.transport.ReceiverReady() {
		if d.argTimeout > 0 && !d.now().Before(deadline) {
			return 0, false
		}
		d.yield()
	}

	return d.transport.Receive(), true
}

// abandon drops the command being collected
func (d *Dispatcher) abandon() {
	d.stats.addTimeout()
	if debugEnabled {
		DebugPrintln("[DISPATCH] " + opcodeFor(d.state).String() + " argument timeout, back to IDLE")
	}
}

// check counts and logs pin driver errors. They are never reported to the host.
func (d *Dispatcher) check(op Opcode, pin byte, err error) {
	if err == nil {
		return
	}
	d.stats.addPinError()
	if debugEnabled {
		DebugPrintln("[DISPATCH] " + op.String() + " pin=" + utoa(uint32(pin)) + ": " + err.Error())
	}
}

func (d *Dispatcher) yield() {
	if d.idle != nil {
		d.idle()
	}
}
