package handler

import (
	"context"
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ListenHandler is a Handler that is also told where the listener is bound.
type ListenHandler interface {
	Handler
	OnListen(addr net.Addr)
}

// Listener accepts exactly one inbound connection and then shuttles keyboard
// lines out and socket bytes in until either side ends it.
type Listener struct {
	handler ListenHandler
	config  *ListenerConfig
	input   *os.File
}

func NewListener(handler ListenHandler, config *ListenerConfig, input *os.File) *Listener {
	return &Listener{
		handler: handler,
		config:  config,
		input:   input,
	}
}

// Run returns once the session is over. Cancelling ctx ends it with
// StateClosedByInterrupt, also while still waiting for the connection.
func (l *Listener) Run(ctx context.Context) (State, error) {
	state, conn, err := l.run(ctx)
	log.Debug().Stringer("state", state).Err(err).Msg("listener closed")
	l.handler.OnClose(conn, state, err)
	if conn != nil {
		conn.Close()
	}
	return state, err
}

func (l *Listener) run(ctx context.Context) (State, net.Conn, error) {
	wk, err := newWaker(ctx)
	if err != nil {
		return StateClosedByError, nil, err
	}
	defer wk.Close()

	conn, err := l.accept(wk)
	if errors.Is(err, errInterrupted) {
		return StateClosedByInterrupt, nil, nil
	}
	if err != nil {
		return StateClosedByError, nil, err
	}
	log.Debug().Stringer("remote", conn.RemoteAddr()).Msg("accepted")
	l.handler.OnOpen(conn)

	sockFd := -1
	if !l.config.SendOnly {
		sockFd, err = connFd(conn)
		if err != nil {
			return StateClosedByError, conn, err
		}
	}

	inputFd := int(l.input.Fd())
	c, err := newConn(
		conn,
		l.handler,
		l.config.ConnConfig,
		NewLineReader(l.input, l.config.BufferSize),
		wk.fd,
		inputFd,
		sockFd,
	)
	if err != nil {
		return StateClosedByError, conn, err
	}

	state, err := c.run()
	return state, conn, err
}

var errInterrupted = errors.New("interrupted")

func (l *Listener) accept(wk *waker) (net.Conn, error) {
	ln, err := listenTCP4(l.config.Host, l.config.Port, l.config.Backlog)
	if err != nil {
		return nil, err
	}
	// only one connection is ever served
	defer ln.Close()

	l.handler.OnListen(ln.Addr())

	p, err := NewPoller(wk.fd, ln.fd)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	for {
		ready, err := p.Wait()
		if err != nil {
			return nil, err
		}
		if ready.Has(wk.fd) {
			return nil, errInterrupted
		}
		if ready.Has(ln.fd) {
			return ln.accept()
		}
	}
}
