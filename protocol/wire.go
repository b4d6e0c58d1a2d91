package protocol

// Opcode byte values sent by the host while the device is idle.
// Zero is deliberately unused: a failed poll on the device reads as 0.
const (
	OpPinMode      byte = 0x01
	OpDigitalWrite byte = 0x02
	OpDigitalRead  byte = 0x03
	OpAnalogWrite  byte = 0x04
	OpEnquiry      byte = 0x05 // ASCII ENQ
	OpAnalogRead   byte = 0x07
)

// Response bytes
const (
	Ack                byte = 0x06 // ASCII ACK, handshake payload
	HandshakeTerm      byte = 10   // Line feed after the ACK byte
	NumberTerm         byte = 13   // Carriage return after decimal digits
	NumberTermCompatLF byte = 10   // Optional trailer some firmware revisions send after NumberTerm
)

// ValueBias is added to logical direction and level values on the wire so
// they never collide with the 0-9 control range.
const ValueBias = 10

// Logical direction values (before biasing)
const (
	DirInput  = 0
	DirOutput = 1
)

// Logical level values (before biasing)
const (
	LevelLow  = 0
	LevelHigh = 1
)

// EncodeBiased converts a logical direction/level into its wire byte.
func EncodeBiased(v uint8) byte {
	return v + ValueBias
}

// DecodeBiased converts a wire byte back into its logical value.
// Bytes below ValueBias decode to negative values; they are passed on
// unchanged so the pin driver can reject them.
func DecodeBiased(b byte) int {
	return int(b) - ValueBias
}

// IsOpcode reports whether b is one of the recognised opcodes.
func IsOpcode(b byte) bool {
	switch b {
	case OpEnquiry, OpPinMode, OpDigitalWrite, OpDigitalRead, OpAnalogWrite, OpAnalogRead:
		return true
	}
	return false
}

// AppendDecimal appends the unsigned decimal rendering of v to dst.
// No sign and no leading zeros; zero renders as "0".
func AppendDecimal(dst []byte, v uint32) []byte {
	if v == 0 {
		return append(dst, '0')
	}

	var digits [10]byte
	pos := len(digits)
	for v > 0 {
		pos--
		digits[pos] = byte('0' + v%10)
		v /= 10
	}

	return append(dst, digits[pos:]...)
}

// ParseDecimal parses a reply produced by AppendDecimal.
// It returns false for empty input, non-digits or overflow.
func ParseDecimal(b []byte) (uint32, bool) {
	if len(b) == 0 || len(b) > 10 {
		return 0, false
	}

	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
	}
	if v > 0xFFFFFFFF {
		return 0, false
	}

	return uint32(v), true
}
