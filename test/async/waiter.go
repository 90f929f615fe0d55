package async

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrTimeout = errors.New("waiter timed out")

// Waiter completes after n calls to Done or on the first reported error.
type Waiter struct {
	wg   sync.WaitGroup
	endC chan struct{}
	errC chan error
}

func NewWaiter(n int) *Waiter {
	w := &Waiter{
		endC: make(chan struct{}),
		errC: make(chan error, 1),
	}
	w.wg.Add(n)
	go func() {
		w.wg.Wait()
		close(w.endC)
	}()
	return w
}

// SendError records the first non-nil error.
func (w *Waiter) SendError(err error) {
	if err == nil {
		return
	}

	select {
	case w.errC <- err:
	default:
	}
}

func (w *Waiter) Done() {
	w.wg.Done()
}

// Wait blocks until all Done calls arrived, an error was sent or d elapsed.
func (w *Waiter) Wait(d time.Duration) error {
	select {
	case err := <-w.errC:
		return err
	default:
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-w.errC:
		return err
	case <-w.endC:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}
