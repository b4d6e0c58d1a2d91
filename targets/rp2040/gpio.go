//go:build rp2040 || rp2350

package main

import (
	"machine"

	"dueserv/core"
)

// RPBoard implements core.PinDriver for the RP2040.
// Digital I/O goes straight to machine.Pin; analog input and PWM output are
// delegated to the ADC and PWM drivers.
type RPBoard struct {
	adc *RPADCDriver
	pwm *RPPWMDriver
}

// NewRPBoard creates the board driver but does not Init() it yet
func NewRPBoard() *RPBoard {
	return &RPBoard{
		adc: NewRPADCDriver(),
		pwm: NewRPPWMDriver(),
	}
}

// Init brings up the ADC peripheral
func (b *RPBoard) Init() error {
	return b.adc.Init()
}

func machinePin(pin core.PinID) (machine.Pin, error) {
	if pin >= numGPIO {
		return machine.NoPin, core.ErrInvalidPin
	}
	// Pins map directly to GPIO numbers: GPIO0 = 0, GPIO1 = 1, etc.
	return machine.Pin(pin), nil
}

// SetDirection configures a pin as a digital input or output
func (b *RPBoard) SetDirection(pin core.PinID, dir core.Direction) error {
	p, err := machinePin(pin)
	if err != nil {
		return err
	}

	var mode machine.PinMode
	switch dir {
	case core.Input:
		mode = machine.PinInput
	case core.Output:
		mode = machine.PinOutput
	default:
		return core.ErrInvalidDirection
	}

	b.pwm.Release(pin)
	p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

// SetLevel drives the pin; any non-zero level is high.
// A pin left in PWM mode by SetAnalog is switched back to a plain output.
func (b *RPBoard) SetLevel(pin core.PinID, level core.Level) error {
	p, err := machinePin(pin)
	if err != nil {
		return err
	}
	if b.pwm.Release(pin) {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	p.Set(level != core.Low)
	return nil
}

// GetLevel reads the pin's current level
func (b *RPBoard) GetLevel(pin core.PinID) (core.Level, error) {
	p, err := machinePin(pin)
	if err != nil {
		return core.Low, err
	}
	if p.Get() {
		return core.High, nil
	}
	return core.Low, nil
}

// ReadAnalog samples one of the ADC pins (GPIO26-GPIO29)
func (b *RPBoard) ReadAnalog(pin core.PinID) (core.AnalogValue, error) {
	if _, err := machinePin(pin); err != nil {
		return 0, err
	}
	return b.adc.Read(pin)
}

// SetAnalog sets a PWM duty cycle on the pin (0-255)
func (b *RPBoard) SetAnalog(pin core.PinID, value core.AnalogValue) error {
	p, err := machinePin(pin)
	if err != nil {
		return err
	}
	return b.pwm.Set(p, value)
}
