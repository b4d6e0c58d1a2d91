package core

import (
	"sync"
	"sync/atomic"
)

// Stats counts dispatcher activity since boot
type Stats struct {
	Enquiries     uint32
	PinModes      uint32
	DigitalWrites uint32
	DigitalReads  uint32
	AnalogWrites  uint32
	AnalogReads   uint32

	Ignored   uint32 // Non-opcode bytes seen while idle
	PinErrors uint32 // Errors returned by the pin driver
	Timeouts  uint32 // Commands dropped by the argument timeout
}

// Commands returns the total number of recognised opcodes
func (s Stats) Commands() uint32 {
	return s.Enquiries + s.PinModes + s.DigitalWrites + s.DigitalReads + s.AnalogWrites + s.AnalogReads
}

func (s *Stats) addCommand(op Opcode) {
	switch op {
	case OpEnquiry:
		atomic.AddUint32(&s.Enquiries, 1)
	case OpPinMode:
		atomic.AddUint32(&s.PinModes, 1)
	case OpDigitalWrite:
		atomic.AddUint32(&s.DigitalWrites, 1)
	case OpDigitalRead:
		atomic.AddUint32(&s.DigitalReads, 1)
	case OpAnalogWrite:
		atomic.AddUint32(&s.AnalogWrites, 1)
	case OpAnalogRead:
		atomic.AddUint32(&s.AnalogReads, 1)
	}
}

func (s *Stats) addIgnored()  { atomic.AddUint32(&s.Ignored, 1) }
func (s *Stats) addPinError() { atomic.AddUint32(&s.PinErrors, 1) }
func (s *Stats) addTimeout()  { atomic.AddUint32(&s.Timeouts, 1) }

// Stats returns a snapshot of the counters. Safe to call while Run is active.
func (d *Dispatcher) Stats() Stats {
	s := &d.stats
	return Stats{
		Enquiries:     atomic.LoadUint32(&s.Enquiries),
		PinModes:      atomic.LoadUint32(&s.PinModes),
		DigitalWrites: atomic.LoadUint32(&s.DigitalWrites),
		DigitalReads:  atomic.LoadUint32(&s.DigitalReads),
		AnalogWrites:  atomic.LoadUint32(&s.AnalogWrites),
		AnalogReads:   atomic.LoadUint32(&s.AnalogReads),
		Ignored:       atomic.LoadUint32(&s.Ignored),
		PinErrors:     atomic.LoadUint32(&s.PinErrors),
		Timeouts:      atomic.LoadUint32(&s.Timeouts),
	}
}

// CommandEvent is one executed command kept for post-mortem analysis
type CommandEvent struct {
	Op    Opcode
	Pin   uint8
	Value uint32 // Raw argument byte for writes, reply value for reads
}

const (
	CommandRingSize = 16 // Keep last 16 commands for post-mortem
)

type commandRing struct {
	mu     sync.Mutex
	events [CommandRingSize]CommandEvent
	head   uint8 // Next write position
	count  uint8
}

func (d *Dispatcher) record(op Opcode, pin uint8, value uint32) {
	r := &d.ring
	r.mu.Lock()
	r.events[r.head] = CommandEvent{Op: op, Pin: pin, Value: value}
	r.head = (r.head + 1) % CommandRingSize
	if r.count < CommandRingSize {
		r.count++
	}
	r.mu.Unlock()
}

// RecentCommands returns the last executed commands, oldest first
func (d *Dispatcher) RecentCommands() []CommandEvent {
	r := &d.ring
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]CommandEvent, 0, r.count)
	start := (r.head + CommandRingSize - r.count) % CommandRingSize
	for i := uint8(0); i < r.count; i++ {
		out = append(out, r.events[(start+i)%CommandRingSize])
	}
	return out
}

// DumpCommandRing writes the recent commands through the debug writer
func (d *Dispatcher) DumpCommandRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[CMDS] === Command Ring Dump ===")
	for _, evt := range d.RecentCommands() {
		debugPrintln("[CMDS] " + evt.Op.String() +
			" pin=" + utoa(uint32(evt.Pin)) +
			" value=" + utoa(evt.Value))
	}
	debugPrintln("[CMDS] === End Dump ===")
}
