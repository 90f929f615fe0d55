package handler

import (
	"io"
	"net"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"tcpsim/dump"
)

// Handler receives the events of one simulated connection.
type Handler interface {
	OnOpen(conn net.Conn)
	OnRead(conn net.Conn, b []byte)
	OnWrite(conn net.Conn, b []byte)
	// OnClose is called exactly once with the terminal state. conn is nil when
	// no connection was ever established.
	OnClose(conn net.Conn, state State, err error)
	// Prompt is called each time the loop is about to block for input.
	Prompt()
}

// Conn drives the keyboard/socket loop for one established connection.
type Conn struct {
	conn    net.Conn
	handler Handler
	config  *ConnConfig
	input   *LineReader
	poller  Poller

	wakeFd  int
	inputFd int
	// sockFd is -1 when inbound bytes are not watched
	sockFd int
}

func newConn(
	conn net.Conn,
	handler Handler,
	config *ConnConfig,
	input *LineReader,
	wakeFd, inputFd, sockFd int,
) (*Conn, error) {
	fds := []int{wakeFd, inputFd}
	if sockFd >= 0 {
		fds = append(fds, sockFd)
	}
	p, err := NewPoller(fds...)
	if err != nil {
		return nil, err
	}

	return &Conn{
		conn:    conn,
		handler: handler,
		config:  config,
		input:   input,
		poller:  p,
		wakeFd:  wakeFd,
		inputFd: inputFd,
		sockFd:  sockFd,
	}, nil
}

// run blocks until the connection reaches a terminal state.
func (c *Conn) run() (State, error) {
	defer c.poller.Close()

	b := make([]byte, c.config.BufferSize)
	for {
		// lines buffered by an earlier read are invisible to the poller
		if line, ok := c.input.Next(); ok {
			if state, err := c.onLine(line); state.Terminal() {
				return state, err
			}
			continue
		}
		if c.input.Drained() {
			return StateClosedByEOF, nil
		}

		c.handler.Prompt()
		ready, err := c.poller.Wait()
		if err != nil {
			return StateClosedByError, err
		}

		if ready.Has(c.wakeFd) {
			return StateClosedByInterrupt, nil
		}

		if ready.Has(c.inputFd) {
			if err := c.input.Fill(); err != nil {
				return StateClosedByError, err
			}
		}

		if ready.Has(c.sockFd) {
			if state, err := c.onRead(b); state.Terminal() {
				return state, err
			}
		}
	}
}

func (c *Conn) onRead(b []byte) (State, error) {
	n, err := c.conn.Read(b)
	if n > 0 {
		log.Debug().
			Stringer("remote", c.conn.RemoteAddr()).
			Int("bytes", n).
			Str("hex", dump.Hex(b[:n])).
			Msg("socket read")
		c.handler.OnRead(c.conn, b[:n])
	}
	if err != nil {
		if isPeerGone(err) {
			return StateClosedByPeer, nil
		}
		return StateClosedByError, errors.Wrap(err, "read socket")
	}
	return StateConnected, nil
}

func (c *Conn) onLine(line []byte) (State, error) {
	if IsExitCommand(line) {
		return StateClosedByUser, nil
	}

	b, err := c.encode(line)
	if err != nil {
		log.Warn().Err(err).Msg("line skipped")
		return StateConnected, nil
	}
	if len(b) == 0 {
		return StateConnected, nil
	}

	// net.Conn.Write only returns early on error
	if _, err := c.conn.Write(b); err != nil {
		if isPeerGone(err) {
			return StateClosedByPeer, nil
		}
		return StateClosedByError, errors.Wrap(err, "write socket")
	}
	log.Debug().
		Stringer("remote", c.conn.RemoteAddr()).
		Int("bytes", len(b)).
		Str("hex", dump.Hex(b)).
		Msg("socket write")
	c.handler.OnWrite(c.conn, b)
	return StateConnected, nil
}

func (c *Conn) encode(line []byte) ([]byte, error) {
	if c.config.InputMode == InputHex {
		return dump.ParseHex(string(line))
	}
	return line, nil
}

func isPeerGone(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, unix.ECONNRESET) ||
		errors.Is(err, unix.EPIPE)
}
