package serial

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay lets a burst of device node events finish before rescanning
const settleDelay = 250 * time.Millisecond

// WatchPorts sends the current port list, then a fresh list every time the
// set of device names changes. Changes are detected with fsnotify on the
// device directory; when that is unavailable, or pollInterval is positive,
// the list is also rescanned periodically. The channel is closed when ctx is
// done.
func WatchPorts(ctx context.Context, pollInterval time.Duration) (<-chan []PortDescriptor, error) {
	initial, err := AvailablePorts()
	if err != nil {
		return nil, err
	}

	watcher := newDeviceWatcher(watchDir())
	if watcher == nil && pollInterval <= 0 {
		pollInterval = time.Second
	}

	out := make(chan []PortDescriptor, 1)
	out <- initial

	go func() {
		defer close(out)

		var events <-chan fsnotify.Event
		var errs <-chan error
		if watcher != nil {
			defer watcher.Close()
			events = watcher.Events
			errs = watcher.Errors
		}

		var tick <-chan time.Time
		if pollInterval > 0 {
			ticker := time.NewTicker(pollInterval)
			defer ticker.Stop()
			tick = ticker.C
		}

		settle := time.NewTimer(settleDelay)
		settle.Stop()
		defer settle.Stop()

		last := initial
		rescan := func() bool {
			ports, err := AvailablePorts()
			if err != nil || sameNames(last, ports) {
				return true
			}
			last = ports
			select {
			case out <- ports:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					settle.Reset(settleDelay)
				}
			case _, ok := <-errs:
				if !ok {
					errs = nil
				}
			case <-settle.C:
				if !rescan() {
					return
				}
			case <-tick:
				if !rescan() {
					return
				}
			}
		}
	}()

	return out, nil
}

func newDeviceWatcher(dir string) *fsnotify.Watcher {
	if dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}

func sameNames(a, b []PortDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}
