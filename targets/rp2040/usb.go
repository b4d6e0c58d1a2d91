//go:build rp2040 || rp2350

package main

import (
	"machine"
)

// InitUSB initializes USB serial communication.
// machine.Serial is USB CDC on RP2040; TinyGo's runtime sets up the descriptors.
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// USBDebugWriter writes one debug line to USB CDC.
// Output is dropped when no host has the port open.
func USBDebugWriter(s string) {
	if !machine.Serial.DTR() {
		return
	}
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte("\r\n"))
}
