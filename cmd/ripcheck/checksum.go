package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/satindergrewal/ripcheck/internal/audio"
	"github.com/satindergrewal/ripcheck/internal/checksum"
	"github.com/satindergrewal/ripcheck/internal/config"
	rlog "github.com/satindergrewal/ripcheck/internal/log"
	"github.com/satindergrewal/ripcheck/internal/render"
	"github.com/satindergrewal/ripcheck/internal/tui"
)

var (
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, json, yaml, msgpack",
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn, error",
	}
)

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:  "start",
			Usage: "First sample frame to checksum",
		},
		&cli.Int64Flag{
			Name:  "length",
			Value: -1,
			Usage: "Number of sample frames to checksum; negative for the rest of the file",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Show live progress",
		},
		formatFlag,
		configFlag,
		logLevelFlag,
	}
}

func crc32Command() *cli.Command {
	return &cli.Command{
		Name:      "crc32",
		Usage:     "Compute the CRC32 of the PCM audio of each file",
		ArgsUsage: "FILE...",
		Flags:     rangeFlags(),
		Action:    checksumAction(checksum.KindCRC32),
	}
}

func accurateRipCommand() *cli.Command {
	flags := append(rangeFlags(),
		&cli.UintFlag{
			Name:  "track",
			Value: 1,
			Usage: "Track number of the first file; later files are numbered in order",
		},
		&cli.UintFlag{
			Name:  "tracks",
			Usage: "Number of tracks on the disc (default: last track numbered)",
		},
	)
	return &cli.Command{
		Name:      "accuraterip",
		Aliases:   []string{"ar"},
		Usage:     "Compute the AccurateRip v1 checksum of each file",
		ArgsUsage: "FILE...",
		Flags:     flags,
		Action:    checksumAction(checksum.KindAccurateRip),
	}
}

// settings resolves configuration: environment, then the config file, then flags.
func settings(c *cli.Context) (config.Config, error) {
	cfg := config.Load()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path, cfg); err != nil {
			return cfg, err
		}
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, nil
}

// planTasks assigns track numbers to files in argument order, starting at
// track. A zero tracks means the disc ends with the last file.
func planTasks(kind checksum.Kind, files []string, start uint64, length int64, track, tracks uint) []checksum.TaskConfig {
	if kind == checksum.KindCRC32 {
		track, tracks = 0, 0
	} else if tracks == 0 {
		tracks = track + uint(len(files)) - 1
	}

	cfgs := make([]checksum.TaskConfig, len(files))
	for i, f := range files {
		cfgs[i] = checksum.TaskConfig{
			Path:       f,
			TrackCount: tracks,
			Start:      start,
			Length:     length,
			Algorithm:  kind,
		}
		if track > 0 {
			cfgs[i].TrackNumber = track + uint(i)
		}
	}
	return cfgs
}

func checksumAction(kind checksum.Kind) cli.ActionFunc {
	return func(c *cli.Context) error {
		files := c.Args().Slice()
		if len(files) == 0 {
			return cli.Exit("no input files", exitFailure)
		}

		cfg, err := settings(c)
		if err != nil {
			return cli.Exit(err.Error(), exitFailure)
		}
		format, err := render.ParseFormat(cfg.Format)
		if err != nil {
			return cli.Exit(err.Error(), exitFailure)
		}
		logger, err := rlog.New(cfg.LogLevel)
		if err != nil {
			return cli.Exit(err.Error(), exitFailure)
		}
		defer func() { _ = logger.Sync() }()

		useTUI := c.Bool("tui")
		if useTUI && !render.IsTerminal(os.Stdout) {
			return cli.Exit("--tui needs a terminal", exitFailure)
		}

		plans := planTasks(kind, files, c.Uint64("start"), c.Int64("length"), c.Uint("track"), c.Uint("tracks"))
		opts := []checksum.Option{
			checksum.WithLogger(logger),
			checksum.WithQueueDepth(cfg.QueueDepth),
			checksum.WithSourceOptions(audio.Options{
				FFmpegPath:  cfg.FFmpegPath,
				FFprobePath: cfg.FFprobePath,
				ChunkBytes:  cfg.ChunkBytes,
			}),
		}

		var reports []render.Report
		if useTUI {
			reports, err = runWithTUI(c.Context, string(kind), plans, opts)
			if err != nil {
				return cli.Exit(err.Error(), exitFailure)
			}
		} else {
			reports = runTasks(c.Context, plans, opts, watcher{})
		}

		if err := render.NewRenderer(format).Render(reports); err != nil {
			return cli.Exit(fmt.Sprintf("render: %v", err), exitFailure)
		}
		if code := exitCode(reports); code != exitOK {
			return cli.Exit("", code)
		}
		return nil
	}
}

// watcher observes runTasks. Either hook may be nil.
type watcher struct {
	started  func(int, *checksum.Task)
	finished func(int, render.Report)
}

// runTasks runs one task per plan, in order.
func runTasks(ctx context.Context, plans []checksum.TaskConfig, opts []checksum.Option, w watcher) []render.Report {
	reports := make([]render.Report, 0, len(plans))
	for i, plan := range plans {
		if ctx.Err() != nil {
			err := fmt.Errorf("%w: %w", checksum.ErrCancelled, context.Cause(ctx))
			reports = append(reports, render.NewReport(plan, checksum.Result{}, err))
			if w.finished != nil {
				w.finished(i, reports[i])
			}
			continue
		}
		task, err := checksum.NewTask(plan, opts...)
		if err != nil {
			reports = append(reports, render.NewReport(plan, checksum.Result{}, err))
			if w.finished != nil {
				w.finished(i, reports[i])
			}
			continue
		}
		if w.started != nil {
			w.started(i, task)
		}
		res, err := task.Run(ctx)
		reports = append(reports, render.NewReport(plan, res, err))
		if w.finished != nil {
			w.finished(i, reports[i])
		}
	}
	return reports
}

func runWithTUI(ctx context.Context, title string, plans []checksum.TaskConfig, opts []checksum.Option) ([]render.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files := make([]string, len(plans))
	for i, p := range plans {
		files[i] = p.Path
	}
	p := tea.NewProgram(tui.NewModel(title, files, cancel))

	done := make(chan []render.Report, 1)
	go func() {
		reports := runTasks(ctx, plans, opts, watcher{
			started: func(i int, t *checksum.Task) {
				go tui.Forward(p, i, t.Subscribe())
			},
			finished: func(i int, r render.Report) {
				p.Send(tui.DoneMsg{Index: i, Report: r})
			},
		})
		p.Send(tui.FinishedMsg{})
		done <- reports
	}()

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	cancel()
	return <-done, nil
}

// exitCode is exitFailure if any file failed, exitTruncated if any range
// was truncated, and exitOK otherwise.
func exitCode(reports []render.Report) int {
	code := exitOK
	for _, r := range reports {
		switch r.Status {
		case render.StatusOK:
		case render.StatusTruncated:
			code = max(code, exitTruncated)
		default:
			return exitFailure
		}
	}
	return code
}
