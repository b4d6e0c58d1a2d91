//go:build rp2040 || rp2350

package main

import "dueserv/core"

const (
	// numGPIO is the number of user GPIOs (GPIO0-GPIO29)
	numGPIO = 30

	// Protocol pin numbers 54-57 are the A0-A3 analog inputs, which sit on
	// GPIO26-GPIO29 (ADC0-ADC3)
	analogPinBase = 54
	adcGPIOBase   = 26
	numADC        = 4
)

// pinTable builds the protocol-to-GPIO mapping.
// Protocol pins 0-29 are GPIO0-GPIO29, 54-57 alias GPIO26-GPIO29.
// Every other number maps to core.NoPin.
func pinTable() core.PinTable {
	table := make(core.PinTable, analogPinBase+numADC)
	for i := range table {
		table[i] = core.NoPin
	}
	for i := 0; i < numGPIO; i++ {
		table[i] = core.PinID(i)
	}
	for i := 0; i < numADC; i++ {
		table[analogPinBase+i] = core.PinID(adcGPIOBase + i)
	}
	return table
}
