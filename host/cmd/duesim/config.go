package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"

	"dueserv/core"
	"dueserv/protocol"
	"dueserv/sim"
)

// simConfig is the simulator's YAML configuration
type simConfig struct {
	// Port is a serial device to serve on. Empty allocates a pseudo-terminal.
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// Pins is the number of simulated physical pins
	Pins int `yaml:"pins"`
	// PinMap maps protocol pin numbers to simulated pins. Empty maps 1:1.
	PinMap map[uint8]uint32 `yaml:"pin_map"`

	// Levels and Analog seed the simulated pins, keyed by physical pin
	Levels map[uint32]int    `yaml:"levels"`
	Analog map[uint32]uint16 `yaml:"analog"`

	ArgTimeout    time.Duration `yaml:"arg_timeout"`
	CRLF          bool          `yaml:"crlf"`
	IdleSleep     time.Duration `yaml:"idle_sleep"`
	StatsInterval time.Duration `yaml:"stats_interval"`
}

func defaultConfig() simConfig {
	return simConfig{
		Baud:          protocol.BaudRate,
		Pins:          72, // Arduino Due header: D0-D53, A0-A11, DAC0-1, CANRX/TX
		IdleSleep:     100 * time.Microsecond,
		StatsInterval: time.Minute,
	}
}

func (c *simConfig) load(path string) error {
	glog.Infof("loading config file: %s", path)
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not open config file: %v", err)
	}
	if err = yaml.UnmarshalStrict(yamlFile, c); err != nil {
		return fmt.Errorf("could not parse config file: %v", err)
	}
	return c.validate()
}

func (c *simConfig) validate() error {
	if c.Pins <= 0 {
		return fmt.Errorf("pins must be positive, got %d", c.Pins)
	}
	if c.ArgTimeout < 0 {
		return fmt.Errorf("arg_timeout must not be negative")
	}
	for n, id := range c.PinMap {
		if int64(id) >= int64(c.Pins) {
			return fmt.Errorf("pin_map: protocol pin %d maps to %d, board has %d pins", n, id, c.Pins)
		}
	}
	return nil
}

// mapper returns the protocol-to-board pin mapping
func (c *simConfig) mapper() core.PinMapper {
	if len(c.PinMap) == 0 {
		return core.IdentityMapper{}
	}

	size := 0
	for n := range c.PinMap {
		if int(n)+1 > size {
			size = int(n) + 1
		}
	}
	table := make(core.PinTable, size)
	for i := range table {
		table[i] = core.NoPin
	}
	for n, id := range c.PinMap {
		table[n] = core.PinID(id)
	}
	return table
}

// newBoard builds the simulated board with its seeded values
func (c *simConfig) newBoard() (*sim.Board, error) {
	board := sim.NewBoard(c.Pins)
	for id, level := range c.Levels {
		if err := board.SetLevel(core.PinID(id), core.Level(level)); err != nil {
			return nil, fmt.Errorf("levels: pin %d: %w", id, err)
		}
	}
	for id, v := range c.Analog {
		if err := board.SetAnalogInput(core.PinID(id), core.AnalogValue(v)); err != nil {
			return nil, fmt.Errorf("analog: pin %d: %w", id, err)
		}
	}
	return board, nil
}
