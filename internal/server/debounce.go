package server

import "time"

// Debouncer coalesces bursts of raw change signals into single logical
// events. Editors and build tools frequently produce several filesystem
// events for one conceptual save; each incoming signal restarts a
// quiet-period timer, and exactly one event fires when the timer elapses
// with no intervening signal.
type Debouncer struct {
	quiet time.Duration
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Run consumes signals and invokes fn once per settled burst. It blocks
// until the signal channel is closed, so it is normally run on its own
// goroutine. A pending quiet period is abandoned when the channel closes.
func (d *Debouncer) Run(signals <-chan struct{}, fn func()) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case _, ok := <-signals:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if timer == nil {
				timer = time.NewTimer(d.quiet)
			} else {
				// Drain a stale fire before resetting so an expired
				// timer cannot produce a second event.
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(d.quiet)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			fn()
		}
	}
}
