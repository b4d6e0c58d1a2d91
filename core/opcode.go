package core

import "dueserv/protocol"

// Opcode is a command byte received while the dispatcher is idle
type Opcode byte

// Recognised opcodes
const (
	OpEnquiry      = Opcode(protocol.OpEnquiry)
	OpPinMode      = Opcode(protocol.OpPinMode)
	OpDigitalWrite = Opcode(protocol.OpDigitalWrite)
	OpDigitalRead  = Opcode(protocol.OpDigitalRead)
	OpAnalogWrite  = Opcode(protocol.OpAnalogWrite)
	OpAnalogRead   = Opcode(protocol.OpAnalogRead)
)

// Opcodes lists every recognised opcode
var Opcodes = []Opcode{
	OpEnquiry,
	OpPinMode,
	OpDigitalWrite,
	OpDigitalRead,
	OpAnalogWrite,
	OpAnalogRead,
}

func (op Opcode) String() string {
	switch op {
	case OpEnquiry:
		return "ENQUIRY"
	case OpPinMode:
		return "PIN_MODE"
	case OpDigitalWrite:
		return "DIGITAL_WRITE"
	case OpDigitalRead:
		return "DIGITAL_READ"
	case OpAnalogWrite:
		return "ANALOG_WRITE"
	case OpAnalogRead:
		return "ANALOG_READ"
	default:
		return "UNKNOWN"
	}
}

// State is the dispatcher's position in the protocol
type State uint8

// Dispatcher states
const (
	StateIdle State = iota
	StateHandshake
	StatePinModeArgs
	StateDigitalWriteArgs
	StateDigitalReadArgs
	StateAnalogWriteArgs
	StateAnalogReadArgs
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateHandshake:
		return "HANDSHAKE"
	case StatePinModeArgs:
		return "PIN_MODE_ARGS"
	case StateDigitalWriteArgs:
		return "DIGITAL_WRITE_ARGS"
	case StateDigitalReadArgs:
		return "DIGITAL_READ_ARGS"
	case StateAnalogWriteArgs:
		return "ANALOG_WRITE_ARGS"
	case StateAnalogReadArgs:
		return "ANALOG_READ_ARGS"
	default:
		return "INVALID"
	}
}

// stateFor returns the state an opcode moves the dispatcher to.
// ok is false for bytes that are not opcodes.
func stateFor(b byte) (s State, ok bool) {
	switch Opcode(b) {
	case OpEnquiry:
		return StateHandshake, true
	case OpPinMode:
		return StatePinModeArgs, true
	case OpDigitalWrite:
		return StateDigitalWriteArgs, true
	case OpDigitalRead:
		return StateDigitalReadArgs, true
	case OpAnalogWrite:
		return StateAnalogWriteArgs, true
	case OpAnalogRead:
		return StateAnalogReadArgs, true
	}
	return StateIdle, false
}

// opcodeFor is the inverse of stateFor for command states
func opcodeFor(s State) Opcode {
	switch s {
	case StateHandshake:
		return OpEnquiry
	case StatePinModeArgs:
		return OpPinMode
	case StateDigitalWriteArgs:
		return OpDigitalWrite
	case StateDigitalReadArgs:
		return OpDigitalRead
	case StateAnalogWriteArgs:
		return OpAnalogWrite
	case StateAnalogReadArgs:
		return OpAnalogRead
	}
	return 0
}
