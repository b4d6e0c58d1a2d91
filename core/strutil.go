package core

import "dueserv/protocol"

// utoa converts an unsigned integer to a string without using fmt package
func utoa(n uint32) string {
	var buf [10]byte
	return string(protocol.AppendDecimal(buf[:0], n))
}
