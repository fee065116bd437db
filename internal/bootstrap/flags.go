// Package bootstrap wires the codecanvas command line: global flags, the
// TUI launcher and the one-shot subcommands.
package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "storage-root",
			Aliases: []string{"r"},
			Usage:   "Override the directory the workspace lives in",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=cc.key=value",
		},
	}
}
