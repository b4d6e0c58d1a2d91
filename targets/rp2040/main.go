//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"dueserv/core"
	"dueserv/protocol"
)

var (
	// Debug counters
	panics uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// USB CDC carries debug output only; the protocol runs on UART0
	InitUSB()
	core.SetDebugWriter(USBDebugWriter)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	uart := machine.UART0
	err = uart.Configure(machine.UARTConfig{
		BaudRate: protocol.BaudRate,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	if err != nil {
		return
	}
	transport := protocol.NewUARTTransport(uart)

	board := NewRPBoard()
	if err = board.Init(); err != nil {
		return
	}

	dispatcher := core.NewDispatcher(transport, board, pinTable())
	dispatcher.SetIdleHook(func() {
		// Yield to the debug worker and USB stack
		time.Sleep(10 * time.Microsecond)
	})

	core.DebugPrintln("[MAIN] dueserv " + protocol.Version + " dispatcher ready")

	for {
		// Recover from panics in the dispatcher to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					rx, tx := transport.Errors()
					core.DebugPrintln("[MAIN] dispatcher panic, restarting (panics=" +
						utoa(panics) + " rx_err=" + utoa(rx) + " tx_err=" + utoa(tx) + ")")
					dispatcher.DumpCommandRing()
				}
			}()
			dispatcher.Run(context.Background())
		}()
	}
}

// utoa converts uint32 to string without importing strconv (for embedded)
func utoa(n uint32) string {
	return string(protocol.AppendDecimal(nil, n))
}
