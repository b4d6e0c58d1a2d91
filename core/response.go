package core

import "dueserv/protocol"

// transmit waits for the transmitter and sends one byte
func (d *Dispatcher) transmit(b byte) {
	for !d.transport.TransmitterReady() {
		d.yield()
	}
	d.transport.Transmit(b)
}

// sendTerminated sends a payload byte followed by the line terminator
func (d *Dispatcher) sendTerminated(b byte) {
	d.transmit(b)
	d.transmit(protocol.HandshakeTerm)
}

// sendNumber sends v as decimal ASCII digits followed by a carriage return
func (d *Dispatcher) sendNumber(v uint32) {
	var buf [10]byte
	for _, c := range protocol.AppendDecimal(buf[:0], v) {
		d.transmit(c)
	}
	d.transmit(protocol.NumberTerm)
	if d.numericLF {
		d.transmit(protocol.NumberTermCompatLF)
	}
}
