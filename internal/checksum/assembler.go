package checksum

import (
	"iter"

	"github.com/satindergrewal/ripcheck/internal/audio"
)

// Assembler regroups PCM chunks of any size into CD frames of exactly
// audio.BytesPerFrame bytes. Bytes that do not yet fill a frame stay
// buffered until the next Push.
type Assembler struct {
	buf []byte
}

// Push appends chunk to the buffer.
func (a *Assembler) Push(chunk []byte) {
	a.buf = append(a.buf, chunk...)
}

// Buffered returns the number of bytes waiting for a full frame.
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

// Frames yields every complete frame currently buffered. A yielded frame
// aliases the internal buffer and is only valid until the iteration ends.
func (a *Assembler) Frames() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		off := 0
		defer func() {
			n := copy(a.buf, a.buf[off:])
			a.buf = a.buf[:n]
		}()
		for len(a.buf)-off >= audio.BytesPerFrame {
			frame := a.buf[off : off+audio.BytesPerFrame : off+audio.BytesPerFrame]
			off += audio.BytesPerFrame
			if !yield(frame) {
				return
			}
		}
	}
}

// Finish checks the bytes left over at end of stream. A tail of whole
// samples shorter than a frame is dropped; anything else is an
// AlignmentError.
func (a *Assembler) Finish() error {
	n := len(a.buf)
	a.buf = a.buf[:0]
	if n%audio.BytesPerSample != 0 {
		return &AlignmentError{Leftover: n}
	}
	return nil
}
