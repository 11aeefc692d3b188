package checksum

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satindergrewal/ripcheck/internal/audio"
)

// TaskConfig describes one checksum computation over a file.
type TaskConfig struct {
	Path        string
	TrackNumber uint
	TrackCount  uint
	Start       uint64 // first sample frame
	Length      int64  // sample frames; negative means until end of file
	Algorithm   Kind
}

func (c TaskConfig) validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	if _, err := New(c.Algorithm); err != nil {
		return err
	}
	if c.Algorithm == KindAccurateRip {
		if c.TrackNumber == 0 {
			return errors.New("accuraterip needs a track number (1-based)")
		}
		if c.TrackCount < c.TrackNumber {
			return fmt.Errorf("track %d is past the track count %d", c.TrackNumber, c.TrackCount)
		}
	}
	if c.Length == 0 {
		return errors.New("length must be positive, or negative for the rest of the file")
	}
	return nil
}

// Option configures a Task.
type Option func(*Task)

// WithLogger sets the logger; task fields are added to it.
func WithLogger(l *zap.Logger) Option {
	return func(t *Task) { t.log = l }
}

// WithSource makes the task read from src instead of opening the path.
func WithSource(src audio.Source) Option {
	return func(t *Task) { t.src = src }
}

// WithSourceOptions sets the options passed to audio.Open.
func WithSourceOptions(o audio.Options) Option {
	return func(t *Task) { t.srcOpts = o }
}

// WithQueueDepth sets how many decoded chunks may wait for the checksum loop.
func WithQueueDepth(n int) Option {
	return func(t *Task) { t.queueDepth = n }
}

// Task computes a checksum over a range of one file. Decoding runs on a
// pipeline goroutine; the session is driven only from the goroutine that
// calls Run. A Task is single use.
type Task struct {
	id         string
	cfg        TaskConfig
	src        audio.Source
	srcOpts    audio.Options
	queueDepth int
	log        *zap.Logger

	session *Session
	feed    progressFeed
	ran     bool

	result Result
	ok     bool
	err    error
}

// NewTask validates cfg and opens its source. A missing file fails here
// with *audio.NotFoundError, before anything is started.
func NewTask(cfg TaskConfig, opts ...Option) (*Task, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	algo, _ := New(cfg.Algorithm)

	t := &Task{
		id:         uuid.NewString(),
		cfg:        cfg,
		srcOpts:    audio.DefaultOptions(),
		queueDepth: audio.DefaultQueueDepth,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With(
		zap.String("task_id", t.id),
		zap.String("path", cfg.Path),
		zap.String("algorithm", string(cfg.Algorithm)),
	)

	if t.src == nil {
		src, err := audio.Open(cfg.Path, t.srcOpts)
		if err != nil {
			return nil, err
		}
		t.src = src
	}

	length := cfg.Length
	if length < 0 {
		length = audio.UnknownLength
	}
	t.session = NewSession(SessionConfig{
		Algorithm:   algo,
		TrackNumber: cfg.TrackNumber,
		TrackCount:  cfg.TrackCount,
		Position:    audio.NewPosition(cfg.Start, length),
		Progress:    t.feed.Publish,
		Logger:      t.log,
	})
	return t, nil
}

// ID returns the task id used in log fields.
func (t *Task) ID() string { return t.id }

// Config returns the task configuration.
func (t *Task) Config() TaskConfig { return t.cfg }

// State returns the lifecycle state of the underlying session.
func (t *Task) State() State { return t.session.State() }

// Subscribe returns a channel of progress values in [0,1]. Values never
// decrease; the channel is closed when Run returns.
func (t *Task) Subscribe() <-chan float64 {
	return t.feed.Subscribe()
}

// Result returns the checksum once Run has produced one. It is also set
// when Run returned a *TruncatedRangeError.
func (t *Task) Result() (Result, bool) {
	return t.result, t.ok
}

// Err returns the error Run returned.
func (t *Task) Err() error {
	return t.err
}

// Run decodes the range and computes the checksum. Cancelling ctx aborts
// with ErrCancelled; the decoder is told to stop but not waited for.
func (t *Task) Run(ctx context.Context) (Result, error) {
	if t.ran {
		return Result{}, fmt.Errorf("%w: task already ran", ErrState)
	}
	t.ran = true
	defer t.feed.Close()

	t.log.Info("calculating checksum")
	if err := t.session.Start(ctx, t.src); err != nil {
		_ = t.src.Close()
		if ctx.Err() != nil {
			return t.cancelled(ctx)
		}
		return t.finish(Result{}, err)
	}

	pctx, stop := context.WithCancel(ctx)
	defer stop()
	p := audio.NewPipeline(t.src, t.queueDepth)
	go p.Run(pctx)

	for {
		select {
		case <-ctx.Done():
			return t.cancelled(ctx)
		case c, ok := <-p.Chunks():
			if !ok {
				return t.endOfStream(ctx, p)
			}
			if err := t.session.OnChunk(c); err != nil {
				return t.finish(Result{}, err)
			}
		}
	}
}

func (t *Task) endOfStream(ctx context.Context, p *audio.Pipeline) (Result, error) {
	if err := p.Err(); err != nil {
		if ctx.Err() != nil {
			return t.cancelled(ctx)
		}
		return t.finish(Result{}, t.session.Abort(fmt.Errorf("decode: %w", err)))
	}
	chunks, samples := p.Delivered()
	t.log.Debug("end of stream", zap.Int("chunks", chunks), zap.Uint64("samples", samples))

	res, err := t.session.OnEndOfStream()
	res.Path = t.cfg.Path
	return t.finish(res, err)
}

func (t *Task) cancelled(ctx context.Context) (Result, error) {
	t.session.Cancel()
	return t.finish(Result{}, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx)))
}

func (t *Task) finish(res Result, err error) (Result, error) {
	t.err = err
	if !IsFatal(err) {
		t.result, t.ok = res, true
	}

	switch {
	case err == nil:
		t.log.Info("checksum computed", zap.String("checksum", res.Hex()))
	case !IsFatal(err):
		t.log.Warn("checksum computed over incomplete range", zap.String("checksum", res.Hex()), zap.Error(err))
	case errors.Is(err, ErrCancelled):
		t.log.Info("checksum cancelled")
	default:
		t.log.Error("checksum failed", zap.Error(err))
	}
	return res, err
}
