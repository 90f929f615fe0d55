package handler

import (
	"net"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// rawListener is a listening IPv4 socket created directly so that the
// backlog can be chosen; net.Listen always uses the system maximum.
type rawListener struct {
	fd   int
	addr *net.TCPAddr
}

func listenTCP4(host string, port, backlog int) (*rawListener, error) {
	ip := net.ParseIP(host).To4()
	if ip == nil {
		resolved, err := net.ResolveIPAddr("ip4", host)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", host)
		}
		ip = resolved.IP.To4()
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, errors.Wrap(err, "socket")
	}
	unix.CloseOnExec(fd)

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "setsockopt SO_REUSEADDR")
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "bind %s:%d", host, port)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "listen")
	}

	// port 0 resolves to the ephemeral port picked by bind
	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "getsockname")
	}
	if in4, ok := bound.(*unix.SockaddrInet4); ok {
		sa = in4
	}

	return &rawListener{
		fd:   fd,
		addr: &net.TCPAddr{IP: net.IP(sa.Addr[:]).To4(), Port: sa.Port},
	}, nil
}

func (l *rawListener) Addr() net.Addr { return l.addr }

// accept takes one pending connection and hands it to the Go runtime as a net.Conn.
// Call it only after the listener fd is readable.
func (l *rawListener) accept() (net.Conn, error) {
	for {
		nfd, _, err := unix.Accept(l.fd)
		if err == unix.EINTR || err == unix.ECONNABORTED {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "accept")
		}
		unix.CloseOnExec(nfd)

		f := os.NewFile(uintptr(nfd), "tcp-conn")
		conn, err := net.FileConn(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrap(err, "wrap accepted socket")
		}
		return conn, nil
	}
}

func (l *rawListener) Close() error {
	return unix.Close(l.fd)
}

// connFd exposes the descriptor behind conn so it can join a Poller.
func connFd(conn net.Conn) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1, errors.Errorf("%T has no file descriptor", conn)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, errors.Wrap(err, "syscall conn")
	}

	fd := -1
	if err := raw.Control(func(p uintptr) { fd = int(p) }); err != nil {
		return -1, errors.Wrap(err, "control")
	}
	return fd, nil
}
