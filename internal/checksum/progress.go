package checksum

import "sync"

// progressBuffer is the number of progress values a subscriber may lag
// behind before the oldest are dropped.
const progressBuffer = 64

// progressFeed fans progress values out to subscribers. A slow subscriber
// loses its oldest pending value, never the newest, so every subscriber
// still sees a non-decreasing sequence that ends with the final value.
type progressFeed struct {
	mu     sync.RWMutex
	subs   map[chan float64]struct{}
	closed bool
}

// Subscribe registers a subscriber. The channel is closed when the feed is.
func (f *progressFeed) Subscribe() <-chan float64 {
	ch := make(chan float64, progressBuffer)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch
	}
	if f.subs == nil {
		f.subs = make(map[chan float64]struct{})
	}
	f.subs[ch] = struct{}{}
	return ch
}

// Publish sends v to every subscriber without blocking. Publish must only
// be called from one goroutine.
func (f *progressFeed) Publish(v float64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		// full: drop the stale head to make room
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscribers get a closed channel.
func (f *progressFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for ch := range f.subs {
		close(ch)
	}
	f.subs = nil
}
