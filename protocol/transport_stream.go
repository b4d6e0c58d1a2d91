package protocol

import (
	"io"
	"sync"
	"time"
)

// StreamTransport runs the protocol over a blocking io.ReadWriter such as a
// host serial port or a pseudo-terminal. A reader goroutine moves incoming
// bytes into a FIFO so the dispatcher can poll without blocking.
type StreamTransport struct {
	rw io.ReadWriter

	mu  sync.Mutex
	rx  *FifoBuffer
	err error

	done      chan struct{} // closed when the reader stops
	stop      chan struct{}
	closeOnce sync.Once
}

// NewStreamTransport creates the transport and starts its reader
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	t := &StreamTransport{
		rw:   rw,
		rx:   NewFifoBuffer(RxBufferSize),
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}

	go t.readLoop()

	return t
}

func (t *StreamTransport) readLoop() {
	defer close(t.done)

	buf := make([]byte, 64)
	for {
		n, err := t.rw.Read(buf)
		if n > 0 && !t.push(buf[:n]) {
			return
		}
		if err != nil {
			t.setErr(err)
			return
		}
	}
}

// push queues data, waiting for room instead of dropping bytes.
// Returns false if the transport was closed while waiting.
func (t *StreamTransport) push(data []byte) bool {
	for {
		t.mu.Lock()
		if t.rx.Free() > 0 {
			data = data[t.rx.Write(data):]
		}
		t.mu.Unlock()

		if len(data) == 0 {
			return true
		}

		select {
		case <-t.stop:
			return false
		case <-time.After(time.Millisecond):
		}
	}
}

func (t *StreamTransport) setErr(err error) {
	t.mu.Lock()
	if t.err == nil {
		t.err = err
	}
	t.mu.Unlock()
}

// ReceiverReady reports whether a received byte is queued
func (t *StreamTransport) ReceiverReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.rx.IsEmpty()
}

// Receive pops the oldest queued byte, or 0 if none is queued
func (t *StreamTransport) Receive() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, err := t.rx.ReadByte()
	if err != nil {
		return 0
	}
	return b
}

// TransmitterReady is false once the stream has failed or been closed
func (t *StreamTransport) TransmitterReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err == nil
}

// Transmit writes one byte to the stream
func (t *StreamTransport) Transmit(b byte) {
	if _, err := t.rw.Write([]byte{b}); err != nil {
		t.setErr(err)
	}
}

// Err returns the first read or write error seen, if any
func (t *StreamTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed when the reader goroutine exits
func (t *StreamTransport) Done() <-chan struct{} {
	return t.done
}

// Close stops the reader and closes the underlying stream when it can be closed
func (t *StreamTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.setErr(ErrClosed)
		close(t.stop)
		if c, ok := t.rw.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}
