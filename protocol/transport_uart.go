package protocol

import "tinygo.org/x/drivers"

// UARTTransport drives the protocol over a TinyGo UART.
// machine.UART satisfies drivers.UART, so the same adapter runs on every
// board with a hardware serial port.
type UARTTransport struct {
	uart drivers.UART
	rx   [1]byte
	tx   [1]byte

	// Debug counters
	rxErrors uint32
	txErrors uint32
}

// NewUARTTransport wraps an already configured UART
func NewUARTTransport(uart drivers.UART) *UARTTransport {
	return &UARTTransport{uart: uart}
}

// ReceiverReady reports whether at least one received byte is buffered
func (t *UARTTransport) ReceiverReady() bool {
	return t.uart.Buffered() > 0
}

// Receive returns the next buffered byte, or 0 when the read fails
func (t *UARTTransport) Receive() byte {
	n, err := t.uart.Read(t.rx[:])
	if err != nil || n == 0 {
		t.rxErrors++
		return 0
	}
	return t.rx[0]
}

// TransmitterReady is always true: machine.UART.Write waits for FIFO space itself
func (t *UARTTransport) TransmitterReady() bool {
	return true
}

// Transmit sends a single byte
func (t *UARTTransport) Transmit(b byte) {
	t.tx[0] = b
	if _, err := t.uart.Write(t.tx[:]); err != nil {
		t.txErrors++
	}
}

// Errors returns the receive and transmit error counts
func (t *UARTTransport) Errors() (rx, tx uint32) {
	return t.rxErrors, t.txErrors
}
