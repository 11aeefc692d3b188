package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// ffmpegSource runs ffmpeg to decode any format it understands to 44.1kHz
// s16le stereo on stdout. Trimming to the requested range happens inside the
// filter graph, after resampling, so offsets are in output sample frames.
type ffmpegSource struct {
	path string
	opts Options
	win  window

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	buf    []byte
	offset uint64
	done   bool
}

func newFFmpegSource(path string, opts Options) *ffmpegSource {
	if opts.ChunkBytes < BytesPerSample {
		opts.ChunkBytes = DefaultOptions().ChunkBytes
	}
	// Reads stay sample aligned unless ffmpeg itself emits a torn sample.
	opts.ChunkBytes -= opts.ChunkBytes % BytesPerSample
	return &ffmpegSource{path: path, opts: opts}
}

type probeResult struct {
	Streams []struct {
		SampleRate string `json:"sample_rate"`
		TimeBase   string `json:"time_base"`
		DurationTS int64  `json:"duration_ts"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

// Length asks ffprobe for the duration of the first audio stream and
// converts it to 44.1kHz sample frames.
func (s *ffmpegSource) Length(ctx context.Context) (uint64, error) {
	cmd := exec.CommandContext(ctx, s.opts.FFprobePath,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,time_base,duration_ts,duration",
		"-of", "json",
		s.path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", s.path, err)
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (uint64, error) {
	var probe probeResult
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return 0, errors.New("no audio stream")
	}
	st := probe.Streams[0]

	if st.DurationTS > 0 {
		num, den, err := parseRational(st.TimeBase)
		if err == nil {
			return uint64(st.DurationTS) * num * SampleRate / den, nil
		}
	}
	if st.Duration != "" {
		secs, err := strconv.ParseFloat(st.Duration, 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", st.Duration, err)
		}
		return uint64(secs*SampleRate + 0.5), nil
	}
	return 0, errors.New("stream has no duration")
}

func parseRational(s string) (num, den uint64, err error) {
	a, b, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid rational %q", s)
	}
	if num, err = strconv.ParseUint(a, 10, 64); err != nil {
		return 0, 0, err
	}
	if den, err = strconv.ParseUint(b, 10, 64); err != nil {
		return 0, 0, err
	}
	if den == 0 {
		return 0, 0, fmt.Errorf("invalid rational %q", s)
	}
	return num, den, nil
}

func (s *ffmpegSource) Seek(start, end uint64) error {
	if s.cmd != nil {
		return fmt.Errorf("%s: seek after decoding started", s.path)
	}
	s.win.seek(start, end)
	s.offset = start
	return nil
}

func (s *ffmpegSource) args() []string {
	filter := fmt.Sprintf("aresample=%d,aformat=sample_fmts=s16:channel_layouts=stereo", SampleRate)
	if s.win.set {
		filter += fmt.Sprintf(",atrim=start_sample=%d:end_sample=%d", s.win.start, s.win.end)
	}
	return []string{
		"-i", s.path,
		"-vn",
		"-af", filter,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "error",
		"pipe:1",
	}
}

func (s *ffmpegSource) start(ctx context.Context) error {
	s.cmd = exec.CommandContext(ctx, s.opts.FFmpegPath, s.args()...)
	s.cmd.Stderr = &s.stderr
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout %s: %w", s.path, err)
	}
	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start %s: %w", s.path, err)
	}
	s.stdout = stdout
	s.buf = make([]byte, s.opts.ChunkBytes)
	return nil
}

func (s *ffmpegSource) Next(ctx context.Context) (Chunk, error) {
	if s.done {
		return Chunk{}, io.EOF
	}
	if s.cmd == nil {
		if err := s.start(ctx); err != nil {
			return Chunk{}, err
		}
	}

	n, err := io.ReadFull(s.stdout, s.buf)
	if n > 0 {
		data := make([]byte, n)
		copy(data, s.buf[:n])
		c := Chunk{Offset: s.offset, Data: data}
		s.offset += uint64(n / BytesPerSample)
		return c, nil
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Chunk{}, fmt.Errorf("ffmpeg read %s: %w", s.path, err)
	}

	s.done = true
	if werr := s.cmd.Wait(); werr != nil {
		return Chunk{}, fmt.Errorf("ffmpeg decode %s: %w: %s", s.path, werr, strings.TrimSpace(s.stderr.String()))
	}
	return Chunk{}, io.EOF
}

func (s *ffmpegSource) Close() error {
	if s.cmd == nil || s.done {
		return nil
	}
	s.done = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}
