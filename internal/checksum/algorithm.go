package checksum

import (
	"fmt"
	"strings"
)

// Kind names a checksum algorithm.
type Kind string

const (
	KindCRC32       Kind = "crc32"
	KindAccurateRip Kind = "accuraterip"
)

// ParseKind parses an algorithm name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindCRC32:
		return KindCRC32, nil
	case KindAccurateRip, "ar":
		return KindAccurateRip, nil
	default:
		return "", fmt.Errorf("invalid algorithm: %q (must be crc32 or accuraterip)", s)
	}
}

// TrackContext locates the track on its disc. DiscFrameCounter is 1-based
// once the first frame has been counted.
type TrackContext struct {
	Number           uint
	Count            uint
	FrameLength      uint64 // sample frames in the checksummed range
	DiscFrameCounter uint64
}

// Accumulator is the running state threaded through Update. Value wraps
// modulo 2^32. BytesConsumed counts bytes of frames already checksummed and
// is advanced by the caller after each Update.
type Accumulator struct {
	Value         uint32
	BytesConsumed uint64
	Track         TrackContext
}

// Algorithm folds one CD frame into an accumulator. Implementations hold no
// state of their own: the result depends only on the arguments.
type Algorithm interface {
	Kind() Kind
	Update(frame []byte, acc Accumulator) Accumulator
}

// New returns the algorithm for kind.
func New(kind Kind) (Algorithm, error) {
	switch kind {
	case KindCRC32:
		return CRC32{}, nil
	case KindAccurateRip:
		return AccurateRip{}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", kind)
	}
}
