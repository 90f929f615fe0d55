package handler

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NewPoller watches fds with epoll, falling back to poll(2) when epoll
// rejects one of them (EPERM for regular files such as redirected stdin).
func NewPoller(fds ...int) (Poller, error) {
	p, err := newEpollPoller(fds...)
	if errors.Is(err, unix.EPERM) {
		return newPollPoller(fds...), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

func newEpollPoller(fds ...int) (*epollPoller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "epoll create")
	}

	for _, fd := range fds {
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
			Fd:     int32(fd),
			Events: unix.EPOLLIN | unix.EPOLLHUP | unix.EPOLLERR,
		}); err != nil {
			unix.Close(epfd)
			return nil, errors.Wrapf(err, "epoll add fd %d", fd)
		}
	}

	return &epollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, len(fds)),
	}, nil
}

func (p *epollPoller) Wait() (Ready, error) {
	for {
		n, err := unix.EpollWait(p.epfd, p.events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "epoll wait")
		}

		ready := make(Ready, 0, n)
		for i := 0; i < n; i++ {
			ready = append(ready, int(p.events[i].Fd))
		}
		return ready, nil
	}
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
