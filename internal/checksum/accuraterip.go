package checksum

import (
	"encoding/binary"

	"github.com/satindergrewal/ripcheck/internal/audio"
)

// Frames excluded at the disc edges. Drive offsets make the first and last
// CD frames of a disc unreliable, so AccurateRip leaves them out.
const (
	headSkipFrames = 4
	tailSkipFrames = 5
)

// AccurateRip computes the AccurateRip v1 checksum: every 32-bit stereo
// sample multiplied by its 1-based position in the track, summed mod 2^32.
type AccurateRip struct{}

func (AccurateRip) Kind() Kind { return KindAccurateRip }

func (AccurateRip) Update(frame []byte, acc Accumulator) Accumulator {
	acc.Track.DiscFrameCounter++
	n := acc.Track.DiscFrameCounter

	if acc.Track.Number == 1 {
		if n <= headSkipFrames {
			return acc
		}
		// Only the last sample of the fifth frame counts, at its own position.
		if n == headSkipFrames+1 {
			v := binary.LittleEndian.Uint32(frame[len(frame)-4:])
			acc.Value += audio.SamplesPerFrame * (headSkipFrames + 1) * v
			return acc
		}
	}

	if acc.Track.Number == acc.Track.Count {
		discFrameLength := int64(acc.Track.FrameLength / audio.SamplesPerFrame)
		if int64(n) > discFrameLength-tailSkipFrames {
			return acc
		}
	}

	weight := uint32(acc.BytesConsumed/audio.BytesPerSample) + 1
	var sum uint32
	for i := 0; i+audio.BytesPerSample <= len(frame); i += audio.BytesPerSample {
		sum += weight * binary.LittleEndian.Uint32(frame[i:])
		weight++
	}
	acc.Value += sum
	return acc
}
