package audio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// flacSource decodes FLAC files in process. FLAC streams carry their total
// sample count in STREAMINFO, so Length needs no decoding pass.
type flacSource struct {
	path   string
	stream *flac.Stream
	win    window
	offset uint64 // sample frame index of the next decoded block
	done   bool
}

func openFLAC(path string) (*flacSource, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flac %s: %w", path, err)
	}
	if int(stream.Info.NChannels) != Channels || int(stream.Info.BitsPerSample) != BitDepth {
		stream.Close()
		return nil, fmt.Errorf("%s: need %d-bit stereo, got %d-bit with %d channels",
			path, BitDepth, stream.Info.BitsPerSample, stream.Info.NChannels)
	}
	return &flacSource{path: path, stream: stream}, nil
}

func (s *flacSource) Length(context.Context) (uint64, error) {
	if s.stream.Info.NSamples == 0 {
		return 0, fmt.Errorf("%s: stream does not record its length", s.path)
	}
	return s.stream.Info.NSamples, nil
}

func (s *flacSource) Seek(start, end uint64) error {
	if s.offset > start {
		return fmt.Errorf("%s: cannot seek back to %d after decoding to %d", s.path, start, s.offset)
	}
	s.win.seek(start, end)
	return nil
}

func (s *flacSource) Next(ctx context.Context) (Chunk, error) {
	for !s.done {
		if err := ctx.Err(); err != nil {
			return Chunk{}, err
		}
		frame, err := s.stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				break
			}
			return Chunk{}, fmt.Errorf("decode %s at sample %d: %w", s.path, s.offset, err)
		}
		data := InterleaveStereo(frame.Subframes[0].Samples, frame.Subframes[1].Samples)
		offset := s.offset
		s.offset += uint64(len(data) / BytesPerSample)

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

func (s *flacSource) Close() error {
	return s.stream.Close()
}
