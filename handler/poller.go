package handler

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Poller blocks until at least one registered descriptor can be read.
// Hang-up and error conditions are reported as readable so the owner sees
// them on its next read.
type Poller interface {
	// Wait blocks with no timeout.
	Wait() (Ready, error)
	Close() error
}

// Ready is the set of descriptors reported by one Wait.
type Ready []int

func (r Ready) Has(fd int) bool {
	if fd < 0 {
		return false
	}
	for _, v := range r {
		if v == fd {
			return true
		}
	}
	return false
}

// pollPoller is the poll(2) fallback. Unlike epoll it accepts regular files,
// which are always readable.
type pollPoller struct {
	fds []unix.PollFd
}

func newPollPoller(fds ...int) *pollPoller {
	p := &pollPoller{fds: make([]unix.PollFd, 0, len(fds))}
	for _, fd := range fds {
		p.fds = append(p.fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	return p
}

func (p *pollPoller) Wait() (Ready, error) {
	for {
		_, err := unix.Poll(p.fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "poll")
		}

		ready := make(Ready, 0, len(p.fds))
		for i := range p.fds {
			if p.fds[i].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
				ready = append(ready, int(p.fds[i].Fd))
			}
			p.fds[i].Revents = 0
		}
		return ready, nil
	}
}

func (p *pollPoller) Close() error { return nil }
