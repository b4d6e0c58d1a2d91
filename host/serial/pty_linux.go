//go:build linux

package serial

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// PTY is the master side of a pseudo-terminal. The slave side appears as a
// serial device at Path that host software can open like a real port.
// Hosts may open and close Path any number of times while the PTY is open.
type PTY struct {
	*os.File
	Path string

	// held keeps the slave open so the master never reads EIO when the
	// last host closes it
	held *os.File
}

// OpenPTY allocates a pseudo-terminal in raw mode
func OpenPTY() (*PTY, error) {
	fd, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/ptmx: %w", err)
	}

	// Unlock the slave side
	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to unlock pty: %w", err)
	}

	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to get pty number: %w", err)
	}

	if err := makeRaw(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}

	path := fmt.Sprintf("/dev/pts/%d", n)
	held, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to open pty slave: %w", err)
	}

	return &PTY{
		File: os.NewFile(uintptr(fd), "/dev/ptmx"),
		Path: path,
		held: held,
	}, nil
}

// Close releases both sides of the pseudo-terminal
func (p *PTY) Close() error {
	err := p.File.Close()
	if herr := p.held.Close(); err == nil {
		err = herr
	}
	return err
}

// makeRaw disables line discipline processing so opcode bytes such as
// 0x03 and 0x04 pass through untouched
func makeRaw(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}
	return nil
}

// Flush is a no-op; writes to the master are unbuffered
func (p *PTY) Flush() error {
	return nil
}
