package async

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWaiterDone(t *testing.T) {
	w := NewWaiter(2)
	go w.Done()
	go w.Done()
	require.NoError(t, w.Wait(time.Second))
}

func TestWaiterError(t *testing.T) {
	w := NewWaiter(1)
	boom := errors.New("boom")
	w.SendError(nil)
	w.SendError(boom)
	w.SendError(errors.New("dropped"))
	require.ErrorIs(t, w.Wait(time.Second), boom)
	w.Done()
}

func TestWaiterTimeout(t *testing.T) {
	w := NewWaiter(1)
	require.ErrorIs(t, w.Wait(10*time.Millisecond), ErrTimeout)
	w.Done()
}
