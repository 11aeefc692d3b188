package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Chunk is a run of interleaved 16-bit little-endian stereo PCM delivered by
// a Source. Offset is the sample frame index of the first sample in Data.
type Chunk struct {
	Offset uint64
	Data   []byte
}

// Samples returns the number of sample frames in c.
func (c Chunk) Samples() uint64 {
	return uint64(len(c.Data) / BytesPerSample)
}

// Source decodes an audio file into PCM chunks. Implementations deliver
// chunks in strictly increasing offset order with no gaps or duplicates
// inside the range set by Seek, and return io.EOF once the range is done.
//
// A Source is not safe for concurrent use.
type Source interface {
	// Length returns the total number of sample frames in the file.
	Length(ctx context.Context) (uint64, error)
	// Seek restricts delivery to the half-open range [start, end).
	Seek(start, end uint64) error
	// Next returns the next chunk, or io.EOF at end of stream.
	Next(ctx context.Context) (Chunk, error)
	Close() error
}

// SeekRange restricts src to the inclusive sample frame range
// [start, endInclusive].
func SeekRange(src Source, start, endInclusive uint64) error {
	if endInclusive < start {
		return fmt.Errorf("empty range [%d, %d]", start, endInclusive)
	}
	return src.Seek(start, endInclusive+1)
}

// NotFoundError is returned by Open when the input path does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Options configures the sources returned by Open.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	ChunkBytes  int // read size for subprocess-backed sources
}

// DefaultOptions returns options that resolve ffmpeg and ffprobe from PATH.
func DefaultOptions() Options {
	return Options{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		ChunkBytes:  64 * 1024,
	}
}

// Open returns a Source for path. FLAC and Ogg Opus files are decoded in
// process; everything else goes through ffmpeg.
func Open(path string, opts Options) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return openFLAC(path)
	case ".opus":
		return openOpus(path)
	default:
		return newFFmpegSource(path, opts), nil
	}
}
