package handler

import (
	"io"
	"net"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func findport() int {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		panic(err)
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port
	return port
}

type result struct {
	state State
	err   error
}

type recorder struct {
	listenC chan net.Addr
	openC   chan net.Conn
	readC   chan []byte
	closeC  chan result
	writes  atomic.Int32
	prompts atomic.Int32
}

func newRecorder() *recorder {
	return &recorder{
		listenC: make(chan net.Addr, 1),
		openC:   make(chan net.Conn, 1),
		readC:   make(chan []byte, 64),
		closeC:  make(chan result, 1),
	}
}

func (h *recorder) OnListen(addr net.Addr)          { h.listenC <- addr }
func (h *recorder) OnOpen(conn net.Conn)            { h.openC <- conn }
func (h *recorder) OnWrite(conn net.Conn, b []byte) { h.writes.Add(1) }
func (h *recorder) Prompt()                         { h.prompts.Add(1) }

func (h *recorder) OnRead(conn net.Conn, b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	h.readC <- cp
}

func (h *recorder) OnClose(conn net.Conn, state State, err error) {
	h.closeC <- result{state: state, err: err}
}

func (h *recorder) waitListen(t *testing.T) net.Addr {
	t.Helper()
	select {
	case addr := <-h.listenC:
		return addr
	case <-time.After(testTimeout):
		require.FailNow(t, "listener never bound")
	}
	return nil
}

func (h *recorder) waitOpen(t *testing.T) {
	t.Helper()
	select {
	case <-h.openC:
	case <-time.After(testTimeout):
		require.FailNow(t, "connection never opened")
	}
}

func (h *recorder) waitRead(t *testing.T) []byte {
	t.Helper()
	select {
	case b := <-h.readC:
		return b
	case <-time.After(testTimeout):
		require.FailNow(t, "nothing read from socket")
	}
	return nil
}

func waitResult(t *testing.T, c <-chan result) result {
	t.Helper()
	select {
	case r := <-c:
		return r
	case <-time.After(testTimeout):
		require.FailNow(t, "session did not end")
	}
	return result{}
}

func newInput(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

func readAll(t *testing.T, c net.Conn) []byte {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(testTimeout)))
	b, err := io.ReadAll(c)
	require.NoError(t, err)
	return b
}
