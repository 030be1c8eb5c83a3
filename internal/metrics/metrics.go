package metrics

import (
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing, goroutine-safe count.
type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Add(n uint64) {
	c.value.Add(n)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
