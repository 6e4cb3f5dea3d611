// Package cli provides the command-line interface for element-resolver.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/element-resolver/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to resolver.yaml (default: ./resolver.yaml, then $RESOLVER_HOME)",
		EnvVars: []string{"RESOLVER_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write engine logs to this file",
		EnvVars: []string{"RESOLVER_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Include debug messages in the log",
		EnvVars: []string{"RESOLVER_VERBOSE"},
	},
}

// NewApp builds the command tree.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "element-resolver",
		Usage:   "Resolve UI elements in Android view hierarchy dumps",
		Version: Version,
		Description: `element-resolver answers questions about a captured view hierarchy:
what is painted on top at a point, whether two labels mean the same
action, where a remembered element went after the screen changed, and
which child of a container is the likely tap target.

Examples:
  element-resolver layers window_dump.xml
  element-resolver hit-test window_dump.xml --x 540 --y 1850
  element-resolver match-text 关注 已关注
  element-resolver capture window_dump.xml --node 12 --output like.yaml
  element-resolver relocate new_dump.xml --fingerprint like.yaml
  element-resolver serve --addr :8765`,
		Flags:  GlobalFlags,
		Before: setupLogging,
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			hierarchyCommand,
			layersCommand,
			hitTestCommand,
			matchTextCommand,
			captureCommand,
			relocateCommand,
			childrenCommand,
			serveCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	app := NewApp()
	if err := app.Run(hoistFlags(app, os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(c *cli.Context) error {
	path := c.String("log-file")
	if path == "" {
		return nil
	}
	if err := logger.Init(path); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "Warning: Failed to initialize logger: %v\n", err)
		return nil
	}
	logger.SetDebug(c.Bool("verbose"))
	logger.Info("=== element-resolver %s ===", Version)
	return nil
}
