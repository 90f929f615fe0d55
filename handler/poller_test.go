package handler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func pipeFds(t *testing.T) (int, *os.File) {
	t.Helper()
	r, w := newInput(t)
	return int(r.Fd()), w
}

func waitAsync(p Poller) <-chan Ready {
	c := make(chan Ready, 1)
	go func() {
		ready, _ := p.Wait()
		c <- ready
	}()
	return c
}

func testPoller(t *testing.T, newPoller func(fds ...int) (Poller, error)) {
	a, aw := pipeFds(t)
	b, bw := pipeFds(t)

	p, err := newPoller(a, b)
	require.NoError(t, err)
	defer p.Close()

	readyC := waitAsync(p)
	select {
	case <-readyC:
		require.FailNow(t, "nothing was written yet")
	case <-time.After(50 * time.Millisecond):
	}

	_, err = bw.Write([]byte{1})
	require.NoError(t, err)
	ready := <-readyC
	require.True(t, ready.Has(b))
	require.False(t, ready.Has(a))

	// level triggered: unread data keeps reporting ready
	ready, err = p.Wait()
	require.NoError(t, err)
	require.True(t, ready.Has(b))

	// hang-up counts as readable
	require.NoError(t, aw.Close())
	ready, err = p.Wait()
	require.NoError(t, err)
	require.True(t, ready.Has(a))
}

func TestPoller(t *testing.T) {
	testPoller(t, NewPoller)
}

func TestPollPoller(t *testing.T) {
	testPoller(t, func(fds ...int) (Poller, error) { return newPollPoller(fds...), nil })
}

func TestPollerRegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "input"))
	require.NoError(t, err)
	defer f.Close()

	p, err := NewPoller(int(f.Fd()))
	require.NoError(t, err)
	defer p.Close()

	ready, err := p.Wait()
	require.NoError(t, err)
	require.True(t, ready.Has(int(f.Fd())))
}

func TestReadyHas(t *testing.T) {
	r := Ready{3, 7}
	require.True(t, r.Has(7))
	require.False(t, r.Has(4))
	require.False(t, r.Has(-1))
	require.False(t, Ready(nil).Has(0))
}

func TestWakerWakesPoller(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	wk, err := newWaker(ctx)
	require.NoError(t, err)
	defer wk.Close()

	p, err := NewPoller(wk.fd)
	require.NoError(t, err)
	defer p.Close()

	readyC := waitAsync(p)
	cancel()

	select {
	case ready := <-readyC:
		require.True(t, ready.Has(wk.fd))
	case <-time.After(testTimeout):
		require.FailNow(t, "waker did not wake the poller")
	}
}

func TestWakerCloseWithoutCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	wk, err := newWaker(context.Background())
	require.NoError(t, err)
	wk.Close()
}
