//go:build !linux

package handler

// NewPoller watches fds with poll(2).
func NewPoller(fds ...int) (Poller, error) {
	return newPollPoller(fds...), nil
}
