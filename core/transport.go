package core

// ByteTransport is the serial channel the dispatcher polls.
// Receive must only be called after ReceiverReady returned true, and
// Transmit only after TransmitterReady returned true.
type ByteTransport interface {
	// ReceiverReady reports whether a byte can be read without blocking
	ReceiverReady() bool

	// Receive returns the next received byte
	Receive() byte

	// TransmitterReady reports whether a byte can be sent without blocking
	TransmitterReady() bool

	// Transmit sends a single byte
	Transmit(b byte)
}
