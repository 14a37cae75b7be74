// Package procwatch polls a process id until the process disappears.
package procwatch

import (
	"context"
	"time"
)

// DefaultInterval is the polling period used when none is given.
const DefaultInterval = 3 * time.Second

// Watch blocks until the process pid is gone or ctx ends. It returns true
// when the process disappeared.
func Watch(ctx context.Context, pid int, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if !Alive(pid) {
		return true
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			if !Alive(pid) {
				return true
			}
		}
	}
}
