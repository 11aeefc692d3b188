package audio

import (
	"fmt"
	"time"
)

// Redbook CD audio layout. A sample frame is one sample instant across both
// channels; a CD frame (sector) holds 588 of them.
const (
	SampleRate      = 44100
	Channels        = 2
	BitDepth        = 16
	FramesPerSecond = 75
	BytesPerSample  = Channels * BitDepth / 8          // bytes per stereo sample frame
	SamplesPerFrame = SampleRate / FramesPerSecond     // sample frames per CD frame
	BytesPerFrame   = SamplesPerFrame * BytesPerSample // bytes per CD frame (2352)
	FrameDuration   = time.Second / FramesPerSecond    // 13.3ms
)

// UnknownLength marks a Position whose length is resolved from the source.
const UnknownLength = -1

// Position is a range of sample frames on a track. Start and End are
// inclusive once Length has been resolved.
type Position struct {
	Start  uint64
	Length int64
	End    uint64
}

// NewPosition returns a position of length sample frames beginning at start.
// A negative length leaves the position unresolved.
func NewPosition(start uint64, length int64) Position {
	p := Position{Start: start, Length: length}
	if length >= 0 {
		p.End = p.end()
	}
	return p
}

// Resolved reports whether the length of p is known.
func (p Position) Resolved() bool {
	return p.Length >= 0
}

// Resolve fills in an unknown length from the total number of sample frames
// in the source. Resolved positions are returned unchanged.
func (p Position) Resolve(total uint64) (Position, error) {
	if p.Resolved() {
		return p, nil
	}
	if total <= p.Start {
		return p, fmt.Errorf("start %d is past the end of the source (%d sample frames)", p.Start, total)
	}
	p.Length = int64(total - p.Start)
	p.End = p.end()
	return p, nil
}

func (p Position) end() uint64 {
	// A zero length range has End = Start - 1, which wraps for Start 0;
	// callers reject empty ranges before seeking.
	return p.Start + uint64(p.Length) - 1
}

// Sectors returns the CD sector range covered by p as a half-open interval.
func (p Position) Sectors() (first, last uint64) {
	return p.Start / SamplesPerFrame, (p.End + 1) / SamplesPerFrame
}
