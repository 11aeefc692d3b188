package audio

import (
	"context"
	"errors"
	"io"
	"sync"
)

// DefaultQueueDepth is the number of decoded chunks buffered between the
// decoder goroutine and the consumer.
const DefaultQueueDepth = 16

// Pipeline decodes a Source on its own goroutine and hands chunks to a single
// consumer through a bounded channel. The channel is closed at end of stream,
// on error, or on cancellation; Err tells them apart.
//
// The Pipeline owns the Source once Run is called and closes it on exit.
type Pipeline struct {
	src     Source
	chunkCh chan Chunk
	err     error // written before chunkCh is closed

	mu      sync.RWMutex
	chunks  int
	samples uint64
}

// NewPipeline creates a pipeline reading from src with a queue of depth chunks.
func NewPipeline(src Source, depth int) *Pipeline {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Pipeline{
		src:     src,
		chunkCh: make(chan Chunk, depth),
	}
}

// Chunks returns the channel of decoded chunks.
func (p *Pipeline) Chunks() <-chan Chunk {
	return p.chunkCh
}

// Err returns the error that ended the stream, or nil at a clean end of
// stream. Only valid after Chunks has been closed.
func (p *Pipeline) Err() error {
	return p.err
}

// Delivered returns how many chunks and sample frames have been queued so far.
func (p *Pipeline) Delivered() (chunks int, samples uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.chunks, p.samples
}

// Run decodes until end of stream or until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.chunkCh)
	defer p.src.Close()

	for {
		c, err := p.src.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.err = err
			}
			return
		}

		select {
		case p.chunkCh <- c:
			p.mu.Lock()
			p.chunks++
			p.samples += c.Samples()
			p.mu.Unlock()
		case <-ctx.Done():
			p.err = ctx.Err()
			return
		}
	}
}
