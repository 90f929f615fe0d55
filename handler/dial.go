package handler

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// DialError reports a failed outbound connection attempt.
type DialError struct {
	Addr string
	Err  error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("dial %s: %v", e.Addr, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }

// Refused reports whether nothing was listening at Addr.
func (e *DialError) Refused() bool {
	return errors.Is(e.Err, unix.ECONNREFUSED)
}

// Connector dials one outbound connection and forwards keyboard lines to it.
// It never reads from the socket.
type Connector struct {
	handler Handler
	config  *ConnectorConfig
	input   *os.File
	dialer  net.Dialer
}

func NewConnector(handler Handler, config *ConnectorConfig, input *os.File) *Connector {
	return &Connector{
		handler: handler,
		config:  config,
		input:   input,
	}
}

// Run returns once the session is over. Cancelling ctx ends it with
// StateClosedByInterrupt, also while dialing.
func (c *Connector) Run(ctx context.Context) (State, error) {
	state, conn, err := c.run(ctx)
	log.Debug().Stringer("state", state).Err(err).Msg("connector closed")
	c.handler.OnClose(conn, state, err)
	if conn != nil {
		conn.Close()
	}
	return state, err
}

func (c *Connector) run(ctx context.Context) (State, net.Conn, error) {
	conn, err := DialConn(ctx, &c.dialer, c.config.Address())
	if err != nil {
		if ctx.Err() != nil {
			return StateClosedByInterrupt, nil, nil
		}
		return StateClosedByError, nil, err
	}
	log.Debug().Stringer("remote", conn.RemoteAddr()).Msg("connected")
	c.handler.OnOpen(conn)

	wk, err := newWaker(ctx)
	if err != nil {
		return StateClosedByError, conn, err
	}
	defer wk.Close()

	s, err := newConn(
		conn,
		c.handler,
		c.config.ConnConfig,
		NewLineReader(c.input, c.config.BufferSize),
		wk.fd,
		int(c.input.Fd()),
		-1,
	)
	if err != nil {
		return StateClosedByError, conn, err
	}

	state, err := s.run()
	return state, conn, err
}

// DialConn opens a TCP connection to address, reporting failures as *DialError.
func DialConn(ctx context.Context, dialer *net.Dialer, address string) (net.Conn, error) {
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &DialError{Addr: address, Err: err}
	}
	return conn, nil
}
