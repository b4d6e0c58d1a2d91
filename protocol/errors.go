package protocol

import "errors"

var (
	ErrBufferEmpty = errors.New("fifo buffer empty")
	ErrClosed      = errors.New("transport closed")
)
