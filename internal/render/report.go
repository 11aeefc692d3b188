package render

import (
	"errors"

	"github.com/satindergrewal/ripcheck/internal/checksum"
)

// Status is the outcome of one checksum task.
type Status string

const (
	StatusOK        Status = "ok"
	StatusTruncated Status = "truncated"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Report is one output row.
type Report struct {
	Path      string `json:"path" yaml:"path" msgpack:"path"`
	Algorithm string `json:"algorithm" yaml:"algorithm" msgpack:"algorithm"`
	Track     uint   `json:"track" yaml:"track" msgpack:"track"`
	Checksum  string `json:"checksum" yaml:"checksum" msgpack:"checksum"`
	Status    Status `json:"status" yaml:"status" msgpack:"status"`
	Frames    uint64 `json:"frames" yaml:"frames" msgpack:"frames"`
	Missing   int64  `json:"missing" yaml:"missing" msgpack:"missing"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty" msgpack:"error,omitempty"`
}

// NewReport builds the row for a task that ended with res and err. The
// checksum is left empty when err is fatal.
func NewReport(cfg checksum.TaskConfig, res checksum.Result, err error) Report {
	r := Report{
		Path:      cfg.Path,
		Algorithm: string(cfg.Algorithm),
		Track:     cfg.TrackNumber,
		Status:    StatusOK,
	}
	if !checksum.IsFatal(err) {
		r.Checksum = res.Hex()
		r.Frames = res.Frames
	}
	if err == nil {
		return r
	}

	r.Error = err.Error()
	var truncated *checksum.TruncatedRangeError
	switch {
	case errors.As(err, &truncated):
		r.Status = StatusTruncated
		r.Missing = truncated.Missing
	case errors.Is(err, checksum.ErrCancelled):
		r.Status = StatusCancelled
	default:
		r.Status = StatusFailed
	}
	return r
}
