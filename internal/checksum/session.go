package checksum

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satindergrewal/ripcheck/internal/audio"
)

// State is a step in the session lifecycle:
// Created → Started → Running → (Stopped | Failed).
type State int

const (
	StateCreated State = iota
	StateStarted
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is a finished checksum over [Start, End].
type Result struct {
	Path      string `json:"path" yaml:"path" msgpack:"path"`
	Algorithm Kind   `json:"algorithm" yaml:"algorithm" msgpack:"algorithm"`
	Track     uint   `json:"track" yaml:"track" msgpack:"track"`
	Checksum  uint32 `json:"checksum" yaml:"checksum" msgpack:"checksum"`
	Start     uint64 `json:"start" yaml:"start" msgpack:"start"`
	End       uint64 `json:"end" yaml:"end" msgpack:"end"`
	First     uint64 `json:"first_sample" yaml:"first_sample" msgpack:"first_sample"`
	Last      uint64 `json:"last_sample" yaml:"last_sample" msgpack:"last_sample"`
	Frames    uint64 `json:"frames" yaml:"frames" msgpack:"frames"`
	Bytes     uint64 `json:"bytes" yaml:"bytes" msgpack:"bytes"`
}

// Hex renders the checksum as 8 uppercase hex digits.
func (r Result) Hex() string {
	return fmt.Sprintf("%08X", r.Checksum)
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Algorithm   Algorithm
	TrackNumber uint
	TrackCount  uint
	Position    audio.Position
	// Progress receives values in [0,1] after every frame. Optional.
	Progress    func(float64)
	Logger      *zap.Logger
}

// Session runs one checksum pass over a range of a Source. It is driven by
// Start, then OnChunk per decoded chunk, then OnEndOfStream.
//
// A Session has no internal locking. All methods must be called from the
// goroutine that owns it; chunks decoded elsewhere are handed over first
// (see Task, which reads them from an audio.Pipeline channel).
type Session struct {
	algo     Algorithm
	pos      audio.Position
	progress func(float64)
	log      *zap.Logger

	state State
	acc   Accumulator
	asm   Assembler

	chunks      int
	frames      uint64
	first       uint64
	lastOffset  uint64
	lastSamples uint64

	result Result
	err    error
}

// NewSession creates a session in the Created state.
func NewSession(cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	progress := cfg.Progress
	if progress == nil {
		progress = func(float64) {}
	}
	return &Session{
		algo:     cfg.Algorithm,
		pos:      cfg.Position,
		progress: progress,
		log:      log,
		acc: Accumulator{
			Track: TrackContext{Number: cfg.TrackNumber, Count: cfg.TrackCount},
		},
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Position returns the checksummed range, resolved after Start.
func (s *Session) Position() audio.Position { return s.pos }

// Err returns the error that ended the session, if any.
func (s *Session) Err() error { return s.err }

// Result returns the result once the session has stopped.
func (s *Session) Result() (Result, bool) {
	return s.result, s.state == StateStopped
}

// Start resolves an unknown length from src and restricts src to the range.
func (s *Session) Start(ctx context.Context, src audio.Source) error {
	if s.state != StateCreated {
		return fmt.Errorf("%w: start in %s", ErrState, s.state)
	}

	pos := s.pos
	if !pos.Resolved() {
		total, err := src.Length(ctx)
		if err != nil {
			return s.Abort(fmt.Errorf("query length: %w", err))
		}
		s.log.Debug("total length", zap.Uint64("samples", total))
		if pos, err = pos.Resolve(total); err != nil {
			return s.Abort(err)
		}
	}
	if pos.Length == 0 {
		return s.Abort(fmt.Errorf("empty range at sample %d", pos.Start))
	}
	s.pos = pos
	s.acc.Track.FrameLength = uint64(pos.Length)

	firstSector, lastSector := pos.Sectors()
	s.log.Debug("checksumming range",
		zap.Uint64("first_sector", firstSector),
		zap.Uint64("last_sector", lastSector),
		zap.Uint64("start", pos.Start),
		zap.Uint64("end", pos.End),
	)

	if err := audio.SeekRange(src, pos.Start, pos.End); err != nil {
		return s.Abort(fmt.Errorf("seek: %w", err))
	}
	s.state = StateStarted
	return nil
}

// OnChunk consumes one decoded chunk, checksumming every frame it completes.
func (s *Session) OnChunk(c audio.Chunk) error {
	switch s.state {
	case StateStarted:
		s.state = StateRunning
		s.first = c.Offset
		s.log.Debug("first sample", zap.Uint64("offset", c.Offset))
	case StateRunning:
	default:
		return fmt.Errorf("%w: chunk in %s", ErrState, s.state)
	}

	s.chunks++
	s.lastOffset = c.Offset
	s.lastSamples = c.Samples()

	s.asm.Push(c.Data)
	for frame := range s.asm.Frames() {
		s.acc = s.algo.Update(frame, s.acc)
		s.acc.BytesConsumed += uint64(len(frame))
		s.frames++
		s.progress(s.fraction())
	}
	return nil
}

// fraction is the share of the range covered by checksummed frames.
func (s *Session) fraction() float64 {
	done := float64(s.first+s.acc.BytesConsumed/audio.BytesPerSample) - float64(s.pos.Start)
	p := done / float64(s.pos.Length)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// OnEndOfStream finalizes the checksum. When the last sample received is
// not the expected end of the range, the result is returned together with
// a *TruncatedRangeError.
func (s *Session) OnEndOfStream() (Result, error) {
	switch s.state {
	case StateStarted, StateRunning:
	default:
		return Result{}, fmt.Errorf("%w: end of stream in %s", ErrState, s.state)
	}

	if s.chunks == 0 {
		return Result{}, s.Abort(ErrNoData)
	}
	if err := s.asm.Finish(); err != nil {
		return Result{}, s.Abort(err)
	}

	last := s.lastOffset + s.lastSamples - 1
	s.result = Result{
		Algorithm: s.algo.Kind(),
		Track:     s.acc.Track.Number,
		Checksum:  s.acc.Value,
		Start:     s.pos.Start,
		End:       s.pos.End,
		First:     s.first,
		Last:      last,
		Frames:    s.frames,
		Bytes:     s.acc.BytesConsumed,
	}
	s.state = StateStopped

	s.log.Debug("checksum finished",
		zap.Uint64("last_sample", last),
		zap.Int64("frame_length", s.pos.Length),
		zap.String("checksum", s.result.Hex()),
		zap.Uint64("bytes", s.acc.BytesConsumed),
	)

	if last != s.pos.End {
		s.err = &TruncatedRangeError{
			Expected: s.pos.End,
			Last:     last,
			Missing:  int64(s.pos.End) - int64(last),
		}
		return s.result, s.err
	}
	s.progress(1)
	return s.result, nil
}

// Abort moves the session to Failed with err and returns err. It is a no-op
// on a session that has already stopped or failed.
func (s *Session) Abort(err error) error {
	if s.state == StateStopped || s.state == StateFailed {
		return err
	}
	s.state = StateFailed
	s.err = err
	return err
}

// Cancel aborts the session with ErrCancelled. Chunks arriving afterwards
// are rejected.
func (s *Session) Cancel() {
	s.Abort(ErrCancelled)
}
