package protocol

import "testing"

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)

	if !fifo.IsEmpty() {
		t.Error("New FIFO should be empty")
	}

	if fifo.Available() != 0 {
		t.Errorf("Empty FIFO should have 0 available, got %d", fifo.Available())
	}

	// Write some data
	data := []byte{1, 2, 3, 4, 5}
	written := fifo.Write(data)

	if written != 5 {
		t.Errorf("Expected to write 5 bytes, wrote %d", written)
	}

	if fifo.Available() != 5 {
		t.Errorf("Expected 5 bytes available, got %d", fifo.Available())
	}

	if fifo.Free() != 4 {
		t.Errorf("Expected 4 bytes free, got %d", fifo.Free())
	}

	// Read some data
	for want := byte(1); want <= 3; want++ {
		b, err := fifo.ReadByte()
		if err != nil || b != want {
			t.Errorf("Expected %d, got %d (%v)", want, b, err)
		}
	}

	if fifo.Available() != 2 {
		t.Errorf("After reading 3, expected 2 available, got %d", fifo.Available())
	}

	// Only size-1 bytes fit
	bigData := make([]byte, 12)
	for i := range bigData {
		bigData[i] = byte(i)
	}
	written = fifo.Write(bigData)
	if written != 7 {
		t.Errorf("Expected to write 7 more bytes to size-10 FIFO, wrote %d", written)
	}
	if fifo.Free() != 0 {
		t.Errorf("Expected 0 free, got %d", fifo.Free())
	}
}

func TestFifoBufferWrapAround(t *testing.T) {
	fifo := NewFifoBuffer(5)

	// Fill buffer
	fifo.Write([]byte{1, 2, 3, 4})

	// Read some
	fifo.ReadByte()
	fifo.ReadByte()

	// Write more (will wrap around)
	written := fifo.Write([]byte{5, 6})
	if written != 2 {
		t.Errorf("Expected to write 2 bytes, wrote %d", written)
	}
	if fifo.Available() != 4 {
		t.Errorf("Expected 4 bytes available after wrap, got %d", fifo.Available())
	}

	// Verify order
	var allData []byte
	for !fifo.IsEmpty() {
		b, _ := fifo.ReadByte()
		allData = append(allData, b)
	}
	if len(allData) != 4 || allData[0] != 3 || allData[1] != 4 || allData[2] != 5 || allData[3] != 6 {
		t.Errorf("Wrap-around data mismatch: got %v", allData)
	}
}

func TestFifoBufferReadEmpty(t *testing.T) {
	fifo := NewFifoBuffer(3)

	if _, err := fifo.ReadByte(); err != ErrBufferEmpty {
		t.Errorf("Expected ErrBufferEmpty from empty FIFO, got %v", err)
	}
}
