package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTransport is an in-memory ByteTransport.
// txBusy makes TransmitterReady report false for that many polls.
type fakeTransport struct {
	mu     sync.Mutex
	rx     []byte
	tx     []byte
	txBusy int
}

func (f *fakeTransport) push(b ...byte) {
	f.mu.Lock()
	f.rx = append(f.rx, b...)
	f.mu.Unlock()
}

func (f *fakeTransport) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rx)
}

func (f *fakeTransport) sent() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.tx...)
}

func (f *fakeTransport) ReceiverReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rx) > 0
}

func (f *fakeTransport) Receive() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.rx[0]
	f.rx = f.rx[1:]
	return b
}

func (f *fakeTransport) TransmitterReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.txBusy > 0 {
		f.txBusy--
		return false
	}
	return true
}

func (f *fakeTransport) Transmit(b byte) {
	f.mu.Lock()
	f.tx = append(f.tx, b)
	f.mu.Unlock()
}

type pinCall struct {
	op    string
	pin   PinID
	value int
}

// fakePins records every call and reflects digital writes back to reads
type fakePins struct {
	calls  []pinCall
	levels map[PinID]Level
	analog map[PinID]AnalogValue
	err    error
}

func newFakePins() *fakePins {
	return &fakePins{
		levels: make(map[PinID]Level),
		analog: make(map[PinID]AnalogValue),
	}
}

func (p *fakePins) SetDirection(pin PinID, dir Direction) error {
	p.calls = append(p.calls, pinCall{"direction", pin, int(dir)})
	return p.err
}

func (p *fakePins) SetLevel(pin PinID, level Level) error {
	p.calls = append(p.calls, pinCall{"level", pin, int(level)})
	p.levels[pin] = level
	return p.err
}

func (p *fakePins) GetLevel(pin PinID) (Level, error) {
	p.calls = append(p.calls, pinCall{"get_level", pin, 0})
	return p.levels[pin], p.err
}

func (p *fakePins) ReadAnalog(pin PinID) (AnalogValue, error) {
	p.calls = append(p.calls, pinCall{"read_analog", pin, 0})
	return p.analog[pin], p.err
}

func (p *fakePins) SetAnalog(pin PinID, value AnalogValue) error {
	p.calls = append(p.calls, pinCall{"set_analog", pin, int(value)})
	return p.err
}

func newTestDispatcher() (*Dispatcher, *fakeTransport, *fakePins) {
	tr := &fakeTransport{}
	pins := newFakePins()
	return NewDispatcher(tr, pins, nil), tr, pins
}

// process steps the dispatcher until all queued input is consumed and the
// dispatcher is back in IDLE
func process(t *testing.T, d *Dispatcher, tr *fakeTransport) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if tr.pending() == 0 && d.State() == StateIdle {
			return
		}
		d.Step()
	}
	require.FailNow(t, "dispatcher did not settle", "state %s", d.State())
}
