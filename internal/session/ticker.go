package session

import (
	"sync"
	"time"
)

// tickDriver is the handle for one countdown goroutine. The coordinator
// holds at most one live driver; arming a new one cancels the previous one
// first, and tickFrom discards ticks from anything but the live driver.
type tickDriver struct {
	stop chan struct{}
	once sync.Once
}

// cancel is idempotent and never blocks, so it is safe to call with the
// coordinator mutex held, including from within the driver's own tick.
func (d *tickDriver) cancel() {
	d.once.Do(func() { close(d.stop) })
}

func (c *Coordinator) startDriverLocked() {
	c.stopDriverLocked()
	d := &tickDriver{stop: make(chan struct{})}
	c.driver = d
	go c.runDriver(d)
}

func (c *Coordinator) stopDriverLocked() {
	if c.driver == nil {
		return
	}
	c.driver.cancel()
	c.driver = nil
}

func (c *Coordinator) runDriver(d *tickDriver) {
	ticker := c.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.Chan():
			c.tickFrom(d)
		}
	}
}
