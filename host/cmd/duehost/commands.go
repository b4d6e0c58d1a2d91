package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"dueserv/host/client"
	"dueserv/protocol"
)

const clientKey = "$client"

var (
	// EnquiryCmd performs the handshake.
	EnquiryCmd = ishell.Cmd{
		Name:    "enq",
		Aliases: []string{"handshake"},
		Help:    "check the device answers with ACK",
		Func: func(c *ishell.Context) {
			if err := clientFrom(c).Enquire(context.Background()); err != nil {
				c.Err(err)
				return
			}
			c.Println("ACK")
		},
	}

	// PinModeCmd sets a pin direction.
	PinModeCmd = ishell.Cmd{
		Name:    "mode",
		Aliases: []string{"pm"},
		Help:    "PIN in|out",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PIN and DIRECTION required"))
				return
			}
			pin, err := parsePin(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			dir, err := parseDirection(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			if err := clientFrom(c).PinMode(context.Background(), pin, dir); err != nil {
				c.Err(err)
			}
		},
	}

	// DigitalWriteCmd drives a pin.
	DigitalWriteCmd = ishell.Cmd{
		Name:    "dwrite",
		Aliases: []string{"dw"},
		Help:    "PIN 0|1",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PIN and LEVEL required"))
				return
			}
			pin, err := parsePin(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			level, err := parseLevel(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			if err := clientFrom(c).DigitalWrite(context.Background(), pin, level); err != nil {
				c.Err(err)
			}
		},
	}

	// DigitalReadCmd reads a pin level.
	DigitalReadCmd = ishell.Cmd{
		Name:    "dread",
		Aliases: []string{"dr"},
		Help:    "PIN",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("PIN required"))
				return
			}
			pin, err := parsePin(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			level, err := clientFrom(c).DigitalRead(context.Background(), pin)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(level)
		},
	}

	// AnalogWriteCmd sets an analog output.
	AnalogWriteCmd = ishell.Cmd{
		Name:    "awrite",
		Aliases: []string{"aw"},
		Help:    "PIN VALUE(0-255)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PIN and VALUE required"))
				return
			}
			pin, err := parsePin(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			value, err := strconv.ParseUint(c.Args[1], 10, 8)
			if err != nil {
				c.Err(fmt.Errorf("Invalid VALUE: %v", err))
				return
			}
			if err := clientFrom(c).AnalogWrite(context.Background(), pin, uint8(value)); err != nil {
				c.Err(err)
			}
		},
	}

	// AnalogReadCmd samples an analog input.
	AnalogReadCmd = ishell.Cmd{
		Name:    "aread",
		Aliases: []string{"ar"},
		Help:    "PIN",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("PIN required"))
				return
			}
			pin, err := parsePin(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			v, err := clientFrom(c).AnalogRead(context.Background(), pin)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(v)
		},
	}

	// SampleCmd reads an analog input repeatedly.
	SampleCmd = ishell.Cmd{
		Name: "sample",
		Help: "PIN COUNT [INTERVAL(e.g. 100ms)]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PIN and COUNT required"))
				return
			}
			pin, err := parsePin(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			count, err := strconv.Atoi(c.Args[1])
			if err != nil || count < 1 {
				c.Err(fmt.Errorf("Invalid COUNT: %q", c.Args[1]))
				return
			}
			interval := 100 * time.Millisecond
			if len(c.Args) > 2 {
				if interval, err = time.ParseDuration(c.Args[2]); err != nil {
					c.Err(fmt.Errorf("Invalid INTERVAL: %v", err))
					return
				}
			}
			for i := 0; i < count; i++ {
				if i > 0 {
					time.Sleep(interval)
				}
				v, err := clientFrom(c).AnalogRead(context.Background(), pin)
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("%d\t%d\n", i, v)
			}
		},
	}

	commands = []*ishell.Cmd{
		&EnquiryCmd,
		&PinModeCmd,
		&DigitalWriteCmd,
		&DigitalReadCmd,
		&AnalogWriteCmd,
		&AnalogReadCmd,
		&SampleCmd,
	}
)

func clientFrom(c *ishell.Context) *client.Client {
	return c.Get(clientKey).(*client.Client)
}

func parsePin(s string) (uint8, error) {
	pin, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("Invalid PIN %q: must be 0-255", s)
	}
	return uint8(pin), nil
}

func parseDirection(s string) (uint8, error) {
	switch strings.ToLower(s) {
	case "in", "input", "0":
		return protocol.DirInput, nil
	case "out", "output", "1":
		return protocol.DirOutput, nil
	}
	return 0, fmt.Errorf("Invalid DIRECTION %q: use in or out", s)
}

func parseLevel(s string) (uint8, error) {
	switch strings.ToLower(s) {
	case "0", "low", "off":
		return protocol.LevelLow, nil
	case "1", "high", "on":
		return protocol.LevelHigh, nil
	}
	return 0, fmt.Errorf("Invalid LEVEL %q: use 0 or 1", s)
}
