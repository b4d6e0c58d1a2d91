//go:build rp2040 || rp2350

package main

import (
	"machine"

	"dueserv/core"
)

// adcBits is the sample width reported over the wire, matching the
// 10-bit default of Arduino's analogRead
const adcBits = 10

// RPADCDriver samples GPIO26-GPIO29 (ADC0-ADC3) using TinyGo's machine.ADC
type RPADCDriver struct {
	// Per-channel TinyGo ADC handles, configured on first use
	channels [numADC]*machine.ADC
}

// NewRPADCDriver constructs the driver but does not Init() it yet
func NewRPADCDriver() *RPADCDriver {
	return &RPADCDriver{}
}

// Init powers up the ADC block
func (d *RPADCDriver) Init() error {
	machine.InitADC()
	return nil
}

// channel returns the configured ADC handle for a pin
func (d *RPADCDriver) channel(pin core.PinID) (*machine.ADC, error) {
	if pin < adcGPIOBase || pin >= adcGPIOBase+numADC {
		return nil, core.ErrNotAnalog
	}
	ch := pin - adcGPIOBase
	if adc := d.channels[ch]; adc != nil {
		return adc, nil
	}

	adc := &machine.ADC{Pin: machine.Pin(pin)}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return nil, err
	}
	d.channels[ch] = adc
	return adc, nil
}

// Read performs a one-shot conversion.
// machine.ADC.Get scales to 16 bits; the result is shifted down to 10.
func (d *RPADCDriver) Read(pin core.PinID) (core.AnalogValue, error) {
	adc, err := d.channel(pin)
	if err != nil {
		return 0, err
	}
	return core.AnalogValue(adc.Get() >> (16 - adcBits)), nil
}
