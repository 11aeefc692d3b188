package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/satindergrewal/ripcheck/internal/checksum"
	"github.com/satindergrewal/ripcheck/internal/render"
)

func TestExitErrHandler_NilError(t *testing.T) {
	exitErrHandler(nil, nil)
}

func TestExitErrHandler_ExitCoder(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"failure", cli.Exit("no input files", exitFailure), exitFailure},
		{"truncated", cli.Exit("", exitTruncated), exitTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitCoder cli.ExitCoder
			if !errors.As(tt.err, &exitCoder) {
				t.Fatalf("error should be cli.ExitCoder")
			}
			if exitCoder.ExitCode() != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exitCoder.ExitCode(), tt.wantCode)
			}
		})
	}
}

func TestPlanTasks_AccurateRipNumbering(t *testing.T) {
	files := []string{"01.flac", "02.flac", "03.flac"}

	tests := []struct {
		name      string
		track     uint
		tracks    uint
		wantFirst uint
		wantCount uint
	}{
		{"defaults", 1, 0, 1, 3},
		{"offset start", 4, 0, 4, 6},
		{"explicit count", 1, 12, 1, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := planTasks(checksum.KindAccurateRip, files, 0, -1, tt.track, tt.tracks)
			if len(plans) != len(files) {
				t.Fatalf("got %d plans, want %d", len(plans), len(files))
			}
			for i, p := range plans {
				if p.Path != files[i] {
					t.Errorf("plan %d path = %q", i, p.Path)
				}
				if p.TrackNumber != tt.wantFirst+uint(i) {
					t.Errorf("plan %d track = %d, want %d", i, p.TrackNumber, tt.wantFirst+uint(i))
				}
				if p.TrackCount != tt.wantCount {
					t.Errorf("plan %d track count = %d, want %d", i, p.TrackCount, tt.wantCount)
				}
			}
		})
	}
}

func TestPlanTasks_CRC32HasNoTracks(t *testing.T) {
	plans := planTasks(checksum.KindCRC32, []string{"a.wav"}, 588, 2940, 5, 9)
	p := plans[0]
	if p.TrackNumber != 0 || p.TrackCount != 0 {
		t.Errorf("crc32 plan has track %d/%d", p.TrackNumber, p.TrackCount)
	}
	if p.Start != 588 || p.Length != 2940 || p.Algorithm != checksum.KindCRC32 {
		t.Errorf("plan = %+v", p)
	}
}

func TestExitCode(t *testing.T) {
	ok := render.Report{Status: render.StatusOK}
	truncated := render.Report{Status: render.StatusTruncated}
	failed := render.Report{Status: render.StatusFailed}
	cancelled := render.Report{Status: render.StatusCancelled}

	tests := []struct {
		name    string
		reports []render.Report
		want    int
	}{
		{"all ok", []render.Report{ok, ok}, exitOK},
		{"truncated", []render.Report{ok, truncated}, exitTruncated},
		{"failure wins", []render.Report{truncated, failed}, exitFailure},
		{"cancelled", []render.Report{ok, cancelled}, exitFailure},
		{"empty", nil, exitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.reports); got != tt.want {
				t.Errorf("exitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunTasks_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	plans := planTasks(checksum.KindAccurateRip, []string{
		filepath.Join(dir, "01.flac"),
		filepath.Join(dir, "02.flac"),
	}, 0, -1, 1, 0)

	var finished []int
	reports := runTasks(context.Background(), plans, nil, watcher{
		finished: func(i int, _ render.Report) { finished = append(finished, i) },
	})
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	for i, r := range reports {
		if r.Status != render.StatusFailed || r.Error == "" {
			t.Errorf("report %d = %+v, want failed with error", i, r)
		}
		if r.Track != uint(i+1) {
			t.Errorf("report %d track = %d", i, r.Track)
		}
	}
	if len(finished) != 2 || finished[0] != 0 || finished[1] != 1 {
		t.Errorf("finished hooks = %v", finished)
	}
}

func TestRunTasks_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plans := planTasks(checksum.KindCRC32, []string{"a.wav", "b.wav"}, 0, -1, 0, 0)
	reports := runTasks(ctx, plans, nil, watcher{})
	for i, r := range reports {
		if r.Status != render.StatusCancelled {
			t.Errorf("report %d status = %s, want cancelled", i, r.Status)
		}
	}
}
