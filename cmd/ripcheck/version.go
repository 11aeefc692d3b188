package main

import (
	"github.com/urfave/cli/v2"

	"github.com/satindergrewal/ripcheck/internal/render"
)

// VersionResponse is the output of the version command.
type VersionResponse struct {
	Version string `json:"version" yaml:"version" msgpack:"version"`
	Commit  string `json:"commit" yaml:"commit" msgpack:"commit"`
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{formatFlag},
		Action: func(c *cli.Context) error {
			f := "table"
			if c.IsSet("format") {
				f = c.String("format")
			}
			format, err := render.ParseFormat(f)
			if err != nil {
				return cli.Exit(err.Error(), exitFailure)
			}
			return render.NewRenderer(format).Render(VersionResponse{Version: version, Commit: commit})
		},
	}
}
