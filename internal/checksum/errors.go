package checksum

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when the stream ends before any audio arrived.
	// It means the decoder failed, not that the track is silent.
	ErrNoData = errors.New("checksum: not a single buffer received")

	// ErrCancelled is returned when a session or task is aborted before
	// end of stream.
	ErrCancelled = errors.New("checksum: cancelled")

	// ErrState is returned when a session operation is called out of order.
	ErrState = errors.New("checksum: invalid session state")
)

// TruncatedRangeError reports that the stream ended before (or after) the
// expected last sample. The checksum computed so far is still returned
// alongside it, but cannot be trusted for verification.
type TruncatedRangeError struct {
	Expected uint64 // expected last sample frame
	Last     uint64 // last sample frame actually received
	Missing  int64  // Expected - Last
}

func (e *TruncatedRangeError) Error() string {
	return fmt.Sprintf("checksum: did not get all frames, %d missing (last sample %d, expected %d)",
		e.Missing, e.Last, e.Expected)
}

// AlignmentError reports leftover bytes at end of stream that do not form
// whole stereo samples, which means the decoder broke the PCM contract.
type AlignmentError struct {
	Leftover int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("checksum: %d leftover bytes at end of stream are not a multiple of 4", e.Leftover)
}

// IsFatal returns true if err means no usable checksum was produced.
// A TruncatedRangeError is not fatal: the result is returned but flagged.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var truncated *TruncatedRangeError
	return !errors.As(err, &truncated)
}
