package audio

import "encoding/binary"

// SamplesToBytes converts interleaved int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// InterleaveStereo packs a left and right channel into little-endian PCM.
// Samples are truncated to 16 bits.
func InterleaveStereo(left, right []int32) []byte {
	n := min(len(left), len(right))
	buf := make([]byte, n*BytesPerSample)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(int16(left[i])))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(int16(right[i])))
	}
	return buf
}

// window tracks the requested half-open range of a source that can only
// decode sequentially from the start of the file.
type window struct {
	start, end uint64
	set        bool
}

func (w *window) seek(start, end uint64) {
	w.start, w.end, w.set = start, end, true
}

// clip trims a chunk decoded at offset to the window. It returns ok=false
// when nothing of the chunk falls inside, and done=true once offset has
// reached the end of the window.
func (w *window) clip(offset uint64, data []byte) (c Chunk, ok, done bool) {
	if !w.set {
		return Chunk{Offset: offset, Data: data}, len(data) > 0, false
	}
	if offset >= w.end {
		return Chunk{}, false, true
	}
	n := uint64(len(data) / BytesPerSample)
	first, last := offset, offset+n // half-open
	if last <= w.start {
		return Chunk{}, false, false
	}
	if first < w.start {
		first = w.start
	}
	if last > w.end {
		last = w.end
	}
	lo := (first - offset) * BytesPerSample
	hi := (last - offset) * BytesPerSample
	return Chunk{Offset: first, Data: data[lo:hi]}, true, false
}
