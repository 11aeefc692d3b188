// Command ripcheck computes CRC32 and AccurateRip v1 checksums of ripped
// CD audio tracks.
//
// Usage:
//
//	ripcheck crc32 [options] FILE...
//	ripcheck accuraterip [options] FILE...
//
// Exit codes:
//   - 0: every checksum covers its full range
//   - 1: at least one file failed
//   - 2: at least one range was truncated
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitTruncated = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:           "ripcheck",
		Usage:          "Verify ripped CD audio with CRC32 and AccurateRip checksums",
		Version:        fmt.Sprintf("%s (commit: %s)", version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			crc32Command(),
			accurateRipCommand(),
			versionCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		os.Exit(exitFailure)
	}
}

// exitErrHandler preserves exit codes from cli.Exit.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() is "exit status N"
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitFailure)
}
