package hw

import (
	"context"
	"time"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

// WatchButton polls a pulled-up, active-low button for falling edges and
// calls press with the edge time. Blocks until ctx is done.
// press runs on the watcher goroutine and must only flip state.
func WatchButton(ctx context.Context, p int, interval time.Duration, press func(time.Time)) {
	pin := rpio.Pin(p)
	pin.Input()
	pin.PullUp()
	pin.Detect(rpio.FallEdge)
	defer pin.Detect(rpio.NoEdge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if pin.EdgeDetected() {
				press(now)
			}
		}
	}
}
