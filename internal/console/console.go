// Package console wires a pseudo-terminal to a message buffer,
// demonstrating the canonical waitable end to end: a reader goroutine
// is an ISR-safe producer (msgbuf.Give), and a kernel task blocks in
// msgbuf.Wait to consume whatever arrives — standing in for a UART
// talking to a host-side debugger. Grounded on the teacher's
// src/kiss.go (github.com/creack/pty, a listener goroutine reading the
// master side) and src/serial_port.go (github.com/pkg/term raw mode).
package console

import (
	"bufio"
	"os"

	"github.com/creack/pty"
	"github.com/pkg/term"

	"github.com/kernelsim/statego/msgbuf"
)

// Console owns a pty pair and feeds whatever a client writes to the
// slave into buf, one line at a time.
type Console struct {
	master   *os.File
	slave    *os.File
	slaveRaw *term.Term
	buf      *msgbuf.Buffer
	done     chan struct{}
}

// Open creates a pty pair and starts the reader goroutine that feeds
// buf. buf.SetResource(c) is called so callers can recover the Console
// from the buffer they're waiting on.
//
// The slave side is reopened in raw mode (github.com/pkg/term), the same
// way the teacher's serial_port_open puts a real UART into raw mode: a
// pty's slave defaults to cooked mode (line editing, echo, signal
// generation), which a client dialing in as if it were a UART does not
// want.
func Open(buf *msgbuf.Buffer) (*Console, error) {
	ptmx, pts, err := pty.Open()
	if err != nil {
		return nil, err
	}
	raw, err := term.Open(pts.Name(), term.RawMode)
	if err != nil {
		ptmx.Close()
		pts.Close()
		return nil, err
	}
	c := &Console{master: ptmx, slave: pts, slaveRaw: raw, buf: buf, done: make(chan struct{})}
	buf.SetResource(c)
	go c.listen()
	return c, nil
}

// SlaveName is the path a client (or a host-side tool, once advertised
// via mDNS) should open to talk to this console — analogous to the
// teacher's TMP_KISSTNC_SYMLINK.
func (c *Console) SlaveName() string { return c.slave.Name() }

func (c *Console) listen() {
	r := bufio.NewScanner(c.master)
	for r.Scan() {
		line := append([]byte(nil), r.Bytes()...)
		line = append(line, '\n')
		// ISR-safe: Give never blocks, matching a real UART RX
		// interrupt handler that can't afford to wait for room.
		c.buf.Give(line)
	}
	close(c.done)
}

// Write sends bytes to the client side of the pty (the console's
// "output", e.g. for echoing or banners).
func (c *Console) Write(p []byte) (int, error) { return c.master.Write(p) }

// Close tears down the pty pair. The reader goroutine exits once the
// master read returns an error.
func (c *Console) Close() error {
	c.slaveRaw.Close()
	c.slave.Close()
	return c.master.Close()
}

// Done reports when the reader goroutine has exited (master closed).
func (c *Console) Done() <-chan struct{} { return c.done }
