package core

import "errors"

// PinID identifies a physical pin as understood by the PinDriver
type PinID uint32

// NoPin is returned by mappers for protocol pin numbers they do not know
const NoPin PinID = 0xFFFFFFFF

// Direction is a logical pin direction, already un-biased.
// Input = 0, Output = 1; other values reach the driver unchanged.
type Direction int

// Direction values
const (
	Input  Direction = 0
	Output Direction = 1
)

// Level is a logical digital level, already un-biased.
type Level int

// Level values
const (
	Low  Level = 0
	High Level = 1
)

// AnalogValue is a raw analog sample or output value.
// Board targets report 10-bit samples (0-1023).
type AnalogValue uint16

var (
	ErrInvalidPin       = errors.New("invalid pin")
	ErrInvalidDirection = errors.New("invalid pin direction")
	ErrNotAnalog        = errors.New("pin has no analog function")
)

// PinDriver is the abstract pin interface the dispatcher uses.
// Platform-specific implementations handle actual hardware control.
type PinDriver interface {
	// SetDirection configures a pin as input or output
	SetDirection(pin PinID, dir Direction) error

	// SetLevel drives an output pin
	SetLevel(pin PinID, level Level) error

	// GetLevel reads the current digital level
	GetLevel(pin PinID) (Level, error)

	// ReadAnalog performs a one-shot analog sample
	ReadAnalog(pin PinID) (AnalogValue, error)

	// SetAnalog sets an analog (PWM) output value
	SetAnalog(pin PinID, value AnalogValue) error
}

// PinMapper translates protocol pin numbers to physical pins.
// The dispatcher treats it as a pure, total function.
type PinMapper interface {
	MapPin(n uint8) PinID
}

// IdentityMapper maps protocol pin n to PinID(n)
type IdentityMapper struct{}

// MapPin implements PinMapper.
func (IdentityMapper) MapPin(n uint8) PinID {
	return PinID(n)
}

// PinTable maps protocol pin n to table[n].
// Numbers past the end of the table map to NoPin.
type PinTable []PinID

// MapPin implements PinMapper.
func (t PinTable) MapPin(n uint8) PinID {
	if int(n) >= len(t) {
		return NoPin
	}
	return t[n]
}
