package session

import (
	"sync"
	"time"
)

// poller is the cancellable handle for one session's status polling loop.
// Stop is idempotent: cancelling twice has no effect beyond the first call.
type poller struct {
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newPoller(interval time.Duration) *poller {
	return &poller{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (p *poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

func (p *poller) stopped() bool {
	select {
	case <-p.stopCh:
		return true
	default:
		return false
	}
}
