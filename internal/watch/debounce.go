package watch

import (
	"sync"
	"time"
)

// newDebouncer returns trigger, which calls fn once delay has passed without
// another trigger, and stop, which cancels a pending call.
func newDebouncer(delay time.Duration, fn func()) (trigger, stop func()) {
	var mu sync.Mutex
	var timer *time.Timer

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, fn)
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}
