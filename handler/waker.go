package handler

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// waker turns context cancellation into a readable byte on a pipe so that a
// blocked Poller.Wait returns.
type waker struct {
	r, w *os.File
	fd   int
	done chan struct{}
	wg   sync.WaitGroup
}

func newWaker(ctx context.Context) (*waker, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "wake pipe")
	}

	wk := &waker{
		r:    r,
		w:    w,
		fd:   int(r.Fd()),
		done: make(chan struct{}),
	}
	wk.wg.Add(1)
	go func() {
		defer wk.wg.Done()
		select {
		case <-ctx.Done():
			_, _ = wk.w.Write([]byte{0})
		case <-wk.done:
		}
	}()
	return wk, nil
}

func (wk *waker) Close() {
	close(wk.done)
	wk.wg.Wait()
	wk.r.Close()
	wk.w.Close()
}
