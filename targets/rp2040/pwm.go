//go:build rp2040 || rp2350

package main

import (
	"machine"

	"dueserv/core"
)

const (
	// pwmMax is the full-scale analog write value
	pwmMax = 255

	// pwmPeriod is 1kHz, close to the Arduino Due's default PWM frequency
	pwmPeriod = 1_000_000 // ns
)

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RPPWMDriver drives analog writes on the RP2040's 8 PWM slices.
// GPIO N belongs to slice (N>>1)&7, channel A for even pins and B for odd.
type RPPWMDriver struct {
	// Slices already configured for pwmPeriod
	slices [8]pwmPeripheral

	// Pins currently in PWM mode, and their channel
	active map[core.PinID]uint8
}

// NewRPPWMDriver creates a new RP2040 PWM driver
func NewRPPWMDriver() *RPPWMDriver {
	return &RPPWMDriver{
		active: make(map[core.PinID]uint8),
	}
}

// Set puts the pin in PWM mode if needed and applies a duty of value/255.
// Values above 255 are full on.
func (d *RPPWMDriver) Set(pin machine.Pin, value core.AnalogValue) error {
	id := core.PinID(pin)
	sliceNum := uint8((uint32(pin) >> 1) & 0x7)

	pwm := d.slices[sliceNum]
	if pwm == nil {
		pwm = getPWMPeripheral(sliceNum)
		if err := pwm.Configure(machine.PWMConfig{Period: pwmPeriod}); err != nil {
			return err
		}
		d.slices[sliceNum] = pwm
	}

	channel, ok := d.active[id]
	if !ok {
		var err error
		channel, err = pwm.Channel(pin)
		if err != nil {
			return err
		}
		d.active[id] = channel
	}

	if value > pwmMax {
		value = pwmMax
	}
	// Scale 0-255 to 0-Top()
	pwm.Set(channel, uint32(value)*pwm.Top()/pwmMax)
	return nil
}

// Release stops tracking the pin as a PWM output.
// It reports whether the pin was in PWM mode; the caller reconfigures the pin.
func (d *RPPWMDriver) Release(pin core.PinID) bool {
	channel, ok := d.active[pin]
	if !ok {
		return false
	}
	sliceNum := uint8((uint32(pin) >> 1) & 0x7)
	d.slices[sliceNum].Set(channel, 0)
	delete(d.active, pin)
	return true
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
// TinyGo defines PWM0-PWM7 as global variables of type *pwmGroup
func getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
