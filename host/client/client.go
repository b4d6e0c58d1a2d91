// Package client is the host side of the pin-control protocol: it sends
// opcodes to a device and decodes its replies.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"dueserv/core"
	"dueserv/host/serial"
	"dueserv/protocol"
)

var (
	ErrUnexpectedReply = errors.New("unexpected reply")
	ErrClosed          = errors.New("client closed")
)

// DefaultTimeout bounds each command's reply wait
const DefaultTimeout = time.Second

// Client talks to one device. Commands are serialised: the protocol has no
// sequence numbers, so only one command may be outstanding.
type Client struct {
	port io.ReadWriter

	timeout   time.Duration
	numericLF bool

	mu      sync.Mutex // serialises commands
	rx      chan byte
	readErr error // valid once rx is closed
}

// New creates a client over an open stream and starts its reader
func New(port io.ReadWriter) *Client {
	c := &Client{
		port:    port,
		timeout: DefaultTimeout,
		rx:      make(chan byte, 64),
	}

	go c.readLoop()

	return c
}

// Connect opens a serial device with the firmware's fixed settings
func Connect(cfg *serial.Config) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	return New(port), nil
}

// SetTimeout sets the per-command reply timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SetNumericLineFeed expects numeric replies to end with CR LF instead of CR
func (c *Client) SetNumericLineFeed(enabled bool) {
	c.numericLF = enabled
}

// Close closes the underlying stream when it can be closed
func (c *Client) Close() error {
	if closer, ok := c.port.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) readLoop() {
	defer close(c.rx)

	buf := make([]byte, 64)
	for {
		n, err := c.port.Read(buf)
		for _, b := range buf[:n] {
			c.rx <- b
		}
		if err != nil {
			c.readErr = err
			return
		}
	}
}

// Enquire performs the handshake and checks for ACK followed by LF
func (c *Client) Enquire(ctx context.Context) error {
	return c.do(ctx, []byte{protocol.OpEnquiry}, func(ctx context.Context) error {
		ack, err := c.readByte(ctx)
		if err != nil {
			return err
		}
		term, err := c.readByte(ctx)
		if err != nil {
			return err
		}
		if ack != protocol.Ack || term != protocol.HandshakeTerm {
			return fmt.Errorf("%w: handshake % x", ErrUnexpectedReply, []byte{ack, term})
		}
		return nil
	})
}

// PinMode sets a pin's direction (protocol.DirInput or protocol.DirOutput)
func (c *Client) PinMode(ctx context.Context, pin, dir uint8) error {
	return c.do(ctx, []byte{protocol.OpPinMode, pin, protocol.EncodeBiased(dir)}, nil)
}

// DigitalWrite drives a pin (protocol.LevelLow or protocol.LevelHigh)
func (c *Client) DigitalWrite(ctx context.Context, pin, level uint8) error {
	return c.do(ctx, []byte{protocol.OpDigitalWrite, pin, protocol.EncodeBiased(level)}, nil)
}

// DigitalRead returns a pin's level
func (c *Client) DigitalRead(ctx context.Context, pin uint8) (uint8, error) {
	var v uint32
	err := c.do(ctx, []byte{protocol.OpDigitalRead, pin}, func(ctx context.Context) (err error) {
		v, err = c.readNumber(ctx)
		return err
	})
	if err == nil && v > 1 {
		return 0, fmt.Errorf("%w: digital level %d", ErrUnexpectedReply, v)
	}
	return uint8(v), err
}

// AnalogWrite sets an analog output value
func (c *Client) AnalogWrite(ctx context.Context, pin, value uint8) error {
	return c.do(ctx, []byte{protocol.OpAnalogWrite, pin, value}, nil)
}

// AnalogRead samples an analog input
func (c *Client) AnalogRead(ctx context.Context, pin uint8) (uint16, error) {
	var v uint32
	err := c.do(ctx, []byte{protocol.OpAnalogRead, pin}, func(ctx context.Context) (err error) {
		v, err = c.readNumber(ctx)
		return err
	})
	if err == nil && v > 0xFFFF {
		return 0, fmt.Errorf("%w: analog value %d", ErrUnexpectedReply, v)
	}
	return uint16(v), err
}

// do sends a command and runs reply (if any) under the command timeout
func (c *Client) do(ctx context.Context, cmd []byte, reply func(context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardStale()

	if _, err := c.port.Write(cmd); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	if reply == nil {
		return nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := reply(ctx); err != nil {
		return fmt.Errorf("%s reply: %w", core.Opcode(cmd[0]), err)
	}
	return nil
}

// discardStale drops bytes left over from a reply that arrived after its
// command had already timed out
func (c *Client) discardStale() {
	for {
		select {
		case _, ok := <-c.rx:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) readByte(ctx context.Context) (byte, error) {
	select {
	case b, ok := <-c.rx:
		if !ok {
			if c.readErr != nil {
				return 0, c.readErr
			}
			return 0, ErrClosed
		}
		return b, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// readNumber reads decimal digits up to the CR terminator
func (c *Client) readNumber(ctx context.Context) (uint32, error) {
	var digits []byte
	for {
		b, err := c.readByte(ctx)
		if err != nil {
			return 0, err
		}
		if b == protocol.NumberTerm {
			break
		}
		digits = append(digits, b)
		if len(digits) > 10 {
			return 0, fmt.Errorf("%w: unterminated number %q", ErrUnexpectedReply, digits)
		}
	}

	if c.numericLF {
		b, err := c.readByte(ctx)
		if err != nil {
			return 0, err
		}
		if b != protocol.NumberTermCompatLF {
			return 0, fmt.Errorf("%w: expected LF after CR, got %#x", ErrUnexpectedReply, b)
		}
	}

	v, ok := protocol.ParseDecimal(digits)
	if !ok {
		return 0, fmt.Errorf("%w: bad number %q", ErrUnexpectedReply, digits)
	}
	return v, nil
}
