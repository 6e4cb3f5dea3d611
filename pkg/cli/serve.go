package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/server"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Serve the engine over HTTP",
	Description: `Start an HTTP API exposing every analysis. Requests carry the hierarchy
dump as JSON; jobs submitted to /api/v1/jobs stream progress from
/api/v1/jobs/{id}/events as server-sent events.

Examples:
  element-resolver serve
  element-resolver serve --addr :8765`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "Listen address (default: server.addr from config)",
			EnvVars: []string{"RESOLVER_ADDR"},
		},
	},
	Action: runServe,
}

func runServe(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return err
	}

	addr := c.String("addr")
	if addr == "" {
		addr = engine.Config().Server.Addr
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server on %s", addr)
	if err := server.New(engine).ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
