// Package protocol implements the byte-level MATLAB pin-control protocol:
// opcode values, response terminators, the +10 bias encoding and the byte
// transports the dispatcher runs on.
package protocol

// Version represents the dueserv firmware version
const Version = "0.1.0"

// BaudRate is the fixed serial rate shared by the device and the host tools.
// It is not negotiable at runtime.
const BaudRate = 115200

// Buffer sizes
const (
	RxBufferSize = 256 // Receive FIFO capacity for stream transports
)
