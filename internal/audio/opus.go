package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/hraban/opus.v2"
)

// maxOpusFrame is 120ms of stereo audio at 48kHz, the largest packet libopus
// will return from a single read.
const maxOpusFrame = 5760 * Channels

// opusSource decodes Ogg Opus files through libopusfile. Opus always decodes
// at 48kHz, so offsets count 48kHz sample frames; the stream is assumed to be
// stereo.
type opusSource struct {
	path   string
	f      *os.File
	stream *opus.Stream
	win    window
	pcm    []int16
	offset uint64
	done   bool
}

func openOpus(path string) (*opusSource, error) {
	f, stream, err := openOpusStream(path)
	if err != nil {
		return nil, err
	}
	return &opusSource{
		path:   path,
		f:      f,
		stream: stream,
		pcm:    make([]int16, maxOpusFrame),
	}, nil
}

func openOpusStream(path string) (*os.File, *opus.Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	stream, err := opus.NewStream(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("opus stream %s: %w", path, err)
	}
	return f, stream, nil
}

// Length decodes the whole file on a second handle; Ogg Opus has no header
// field for the total sample count.
func (s *opusSource) Length(ctx context.Context) (uint64, error) {
	f, stream, err := openOpusStream(s.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	defer stream.Close()

	pcm := make([]int16, maxOpusFrame)
	var total uint64
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := stream.Read(pcm)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return 0, fmt.Errorf("opus length %s: %w", s.path, err)
		}
		total += uint64(n)
	}
}

func (s *opusSource) Seek(start, end uint64) error {
	if s.offset > start {
		return fmt.Errorf("%s: cannot seek back to %d after decoding to %d", s.path, start, s.offset)
	}
	s.win.seek(start, end)
	return nil
}

func (s *opusSource) Next(ctx context.Context) (Chunk, error) {
	for !s.done {
		if err := ctx.Err(); err != nil {
			return Chunk{}, err
		}
		n, err := s.stream.Read(s.pcm)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				break
			}
			return Chunk{}, fmt.Errorf("decode %s at sample %d: %w", s.path, s.offset, err)
		}
		// n counts samples per channel
		data := SamplesToBytes(s.pcm[:n*Channels])
		offset := s.offset
		s.offset += uint64(n)

		c, ok, done := s.win.clip(offset, data)
		if done {
			s.done = true
			break
		}
		if ok {
			return c, nil
		}
	}
	return Chunk{}, io.EOF
}

func (s *opusSource) Close() error {
	err := s.stream.Close()
	if cerr := s.f.Close(); err == nil && !errors.Is(cerr, os.ErrClosed) {
		err = cerr
	}
	return err
}
